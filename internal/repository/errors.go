// Package repository provides persistence implementations for patient
// accounts and session markers.
package repository

import "errors"

var (
	// ErrNotFound indicates a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates another account already uses the email.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrIDTaken indicates the patient id is already assigned.
	ErrIDTaken = errors.New("patient id already taken")
	// ErrNoSession indicates there is no usable session marker.
	ErrNoSession = errors.New("no active session")
)
