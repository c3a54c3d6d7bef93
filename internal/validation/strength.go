package validation

import "unicode/utf8"

// Strength labels.
const (
	StrengthNone   = "Enter password"
	StrengthWeak   = "Weak"
	StrengthFair   = "Fair"
	StrengthGood   = "Good"
	StrengthStrong = "Strong"
)

// Strength is the password meter reading.
type Strength struct {
	Score int    `json:"score"`
	Label string `json:"label"`
}

// PasswordStrength scores a password from 0 to 100 by length and character
// variety. It is advisory only; Credentials decides acceptance.
func PasswordStrength(password string) Strength {
	if password == "" {
		return Strength{Label: StrengthNone}
	}

	score := 0
	n := utf8.RuneCountInString(password)
	if n >= 8 {
		score += 25
	}
	if n >= 12 {
		score += 10
	}

	var lower, upper, digit, other bool
	for _, c := range password {
		switch {
		case c >= 'a' && c <= 'z':
			lower = true
		case c >= 'A' && c <= 'Z':
			upper = true
		case c >= '0' && c <= '9':
			digit = true
		default:
			other = true
		}
	}
	if lower {
		score += 15
	}
	if upper {
		score += 15
	}
	if digit {
		score += 15
	}
	if other {
		score += 20
	}
	score = min(score, 100)

	switch {
	case score < 40:
		return Strength{Score: score, Label: StrengthWeak}
	case score < 70:
		return Strength{Score: score, Label: StrengthFair}
	case score < 90:
		return Strength{Score: score, Label: StrengthGood}
	default:
		return Strength{Score: score, Label: StrengthStrong}
	}
}
