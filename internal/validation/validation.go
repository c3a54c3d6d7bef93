// Package validation implements the signup and login field checks as pure
// functions over plain step records. Nothing here touches storage or I/O;
// callers supply whatever context a rule needs (current time, whether an
// email is already registered).
package validation

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/stjohnsmed/patientportal/internal/models"
)

// Field names used as keys in Result.
const (
	FieldFirstName       = "firstName"
	FieldLastName        = "lastName"
	FieldEmail           = "email"
	FieldPhone           = "phone"
	FieldDOB             = "dob"
	FieldGender          = "gender"
	FieldInsurance       = "insurance"
	FieldEmergencyName   = "emergencyName"
	FieldEmergencyPhone  = "emergencyPhone"
	FieldAddress         = "address"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
	FieldTerms           = "terms"
	FieldPrivacy         = "privacy"
	FieldIdentifier      = "identifier"
)

// MinimumAge is the youngest age accepted at signup.
const MinimumAge = 18

// MinPasswordLength is the shortest accepted password, in characters.
const MinPasswordLength = 8

// DateLayout is the expected date of birth format.
const DateLayout = "2006-01-02"

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[\d\s\-+()]{10,}$`)
)

// Result maps a field name to its error message. An empty Result is valid.
type Result struct {
	Errors map[string]string `json:"errors,omitempty"`
}

// Valid reports whether no field failed.
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// Message returns the message recorded for field, or "".
func (r Result) Message(field string) string {
	return r.Errors[field]
}

func (r *Result) fail(field, msg string) {
	if r.Errors == nil {
		r.Errors = make(map[string]string)
	}
	r.Errors[field] = msg
}

// IsEmail reports whether s has the shape of an email address.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// IsPhone reports whether s looks like a phone number of at least ten
// digits, spaces or punctuation.
func IsPhone(s string) bool {
	return phonePattern.MatchString(s)
}

// Age returns the number of full years between birth and now.
func Age(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}

// MaxBirthDate returns the latest date of birth that satisfies MinimumAge at now.
func MaxBirthDate(now time.Time) time.Time {
	y, m, d := now.AddDate(-MinimumAge, 0, 0).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Identity validates the first signup step. emailTaken reports whether the
// email already belongs to a registered account; it is only consulted once
// the email is well formed.
func Identity(s models.IdentityStep, now time.Time, emailTaken bool) Result {
	var r Result

	if strings.TrimSpace(s.FirstName) == "" {
		r.fail(FieldFirstName, "First name is required")
	}
	if strings.TrimSpace(s.LastName) == "" {
		r.fail(FieldLastName, "Last name is required")
	}

	email := strings.TrimSpace(s.Email)
	switch {
	case email == "":
		r.fail(FieldEmail, "Email is required")
	case !IsEmail(email):
		r.fail(FieldEmail, "Please enter a valid email")
	case emailTaken:
		r.fail(FieldEmail, "An account with this email already exists")
	}

	phone := strings.TrimSpace(s.Phone)
	switch {
	case phone == "":
		r.fail(FieldPhone, "Phone number is required")
	case !IsPhone(phone):
		r.fail(FieldPhone, "Please enter a valid phone number")
	}

	dob := strings.TrimSpace(s.DOB)
	if dob == "" {
		r.fail(FieldDOB, "Date of birth is required")
	} else if birth, err := time.Parse(DateLayout, dob); err != nil {
		r.fail(FieldDOB, "Please enter a valid date of birth")
	} else if Age(birth, now) < MinimumAge {
		r.fail(FieldDOB, "You must be at least 18 years old")
	}

	if strings.TrimSpace(s.Gender) == "" {
		r.fail(FieldGender, "Please select your gender")
	}
	return r
}

// Contact validates the insurance and emergency contact step.
func Contact(s models.ContactStep) Result {
	var r Result

	if strings.TrimSpace(s.Insurance) == "" {
		r.fail(FieldInsurance, "Insurance provider is required")
	}
	if strings.TrimSpace(s.EmergencyName) == "" {
		r.fail(FieldEmergencyName, "Emergency contact name is required")
	}

	phone := strings.TrimSpace(s.EmergencyPhone)
	switch {
	case phone == "":
		r.fail(FieldEmergencyPhone, "Emergency contact phone is required")
	case !IsPhone(phone):
		r.fail(FieldEmergencyPhone, "Please enter a valid phone number")
	}

	if strings.TrimSpace(s.Address) == "" {
		r.fail(FieldAddress, "Address is required")
	}
	return r
}

// Photo validates the photo step. The photo is optional, so it always passes.
func Photo(models.PhotoStep) Result {
	return Result{}
}

// Credentials validates the password and consent step.
func Credentials(s models.CredentialsStep) Result {
	var r Result

	switch {
	case s.Password == "":
		r.fail(FieldPassword, "Password is required")
	case utf8.RuneCountInString(s.Password) < MinPasswordLength:
		r.fail(FieldPassword, "Password must be at least 8 characters")
	}

	switch {
	case s.ConfirmPassword == "":
		r.fail(FieldConfirmPassword, "Please confirm your password")
	case s.Password != s.ConfirmPassword:
		r.fail(FieldConfirmPassword, "Passwords do not match")
	}

	if !s.AcceptTerms {
		r.fail(FieldTerms, "You must accept the terms of service")
	}
	if !s.AcceptPrivacy {
		r.fail(FieldPrivacy, "You must accept the privacy policy")
	}
	return r
}

// Login validates that both login inputs are present.
func Login(identifier, password string) Result {
	var r Result
	if strings.TrimSpace(identifier) == "" || password == "" {
		r.fail(FieldIdentifier, "Please enter both email/ID and password")
	}
	return r
}
