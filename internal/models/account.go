// Package models defines the core data structures for patient accounts,
// sessions, signup drafts and the dashboard collections.
package models

import "time"

// Account represents a registered patient.
type Account struct {
	// PatientID is the generated identifier, e.g. "MR-482913".
	PatientID string `json:"patientId"`
	// FirstName is the patient's given name.
	FirstName string `json:"firstName"`
	// LastName is the patient's family name.
	LastName string `json:"lastName"`
	// FullName is FirstName and LastName joined by a space.
	FullName string `json:"fullName"`
	// Email is the login email, unique across accounts.
	Email string `json:"email"`
	// Phone is the contact phone number as entered.
	Phone string `json:"phone"`
	// DOB is the date of birth in YYYY-MM-DD form.
	DOB string `json:"dob"`
	// Gender is the selected gender option.
	Gender string `json:"gender"`
	// Insurance is the insurance provider name.
	Insurance string `json:"insurance"`
	// EmergencyName is the emergency contact's name.
	EmergencyName string `json:"emergencyName"`
	// EmergencyPhone is the emergency contact's phone number.
	EmergencyPhone string `json:"emergencyPhone"`
	// Address is the postal address.
	Address string `json:"address"`
	// Photo is an optional photo reference (data URL or path).
	Photo string `json:"photo,omitempty"`
	// PasswordHash is the bcrypt hash of the password.
	PasswordHash []byte `json:"passwordHash,omitempty"`
	// CreatedAt is the registration time.
	CreatedAt time.Time `json:"createdAt"`
	// LastLogin is the time of the last successful login, nil before the first one.
	LastLogin *time.Time `json:"lastLogin"`
}

// Profile is the public part of an Account: everything except the password.
type Profile struct {
	PatientID      string     `json:"patientId"`
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	FullName       string     `json:"fullName"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone"`
	DOB            string     `json:"dob"`
	Gender         string     `json:"gender"`
	Insurance      string     `json:"insurance"`
	EmergencyName  string     `json:"emergencyName"`
	EmergencyPhone string     `json:"emergencyPhone"`
	Address        string     `json:"address"`
	Photo          string     `json:"photo,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	LastLogin      *time.Time `json:"lastLogin"`
}

// Profile returns a copy of the account with the password stripped.
func (a Account) Profile() Profile {
	return Profile{
		PatientID:      a.PatientID,
		FirstName:      a.FirstName,
		LastName:       a.LastName,
		FullName:       a.FullName,
		Email:          a.Email,
		Phone:          a.Phone,
		DOB:            a.DOB,
		Gender:         a.Gender,
		Insurance:      a.Insurance,
		EmergencyName:  a.EmergencyName,
		EmergencyPhone: a.EmergencyPhone,
		Address:        a.Address,
		Photo:          a.Photo,
		CreatedAt:      a.CreatedAt,
		LastLogin:      a.LastLogin,
	}
}
