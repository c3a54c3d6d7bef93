package models

// IdentityStep holds the fields collected on the first signup step.
type IdentityStep struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	DOB       string `json:"dob"`
	Gender    string `json:"gender"`
}

// ContactStep holds insurance and emergency contact details.
type ContactStep struct {
	Insurance      string `json:"insurance"`
	EmergencyName  string `json:"emergencyName"`
	EmergencyPhone string `json:"emergencyPhone"`
	Address        string `json:"address"`
}

// PhotoStep holds the optional profile photo.
type PhotoStep struct {
	Photo string `json:"photo,omitempty"`
}

// CredentialsStep holds the password and the two consent acknowledgements.
type CredentialsStep struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	AcceptTerms     bool   `json:"terms"`
	AcceptPrivacy   bool   `json:"privacy"`
}

// Draft is the in-memory signup record, one part per wizard step.
type Draft struct {
	Identity    IdentityStep    `json:"step1"`
	Contact     ContactStep     `json:"step2"`
	Photo       PhotoStep       `json:"step3"`
	Credentials CredentialsStep `json:"step4"`
}

// Redacted returns a copy of the draft with password fields cleared.
func (d Draft) Redacted() Draft {
	d.Credentials.Password = ""
	d.Credentials.ConfirmPassword = ""
	return d
}
