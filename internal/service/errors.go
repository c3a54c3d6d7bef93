// Package service implements the portal's business logic: the signup
// wizard, the credential store, login, the session lifecycle and the
// dashboard load. Persistence is delegated to repository interfaces.
package service

import (
	"errors"

	"github.com/stjohnsmed/patientportal/internal/repository"
)

// Navigation targets handed back to callers. They are reached by full
// navigation, never by an in-process call.
const (
	// LoginPath is the login entry point.
	LoginPath = "/auth"
	// DashboardPath is the dashboard entry point.
	DashboardPath = "/portal"
)

// User-facing messages.
const (
	// MsgInvalidCredentials never reveals whether the identifier or the
	// password was wrong.
	MsgInvalidCredentials = "Invalid email/ID or password. Please try again."
	// MsgMissingCredentials is shown when either login input is empty.
	MsgMissingCredentials = "Please enter both email/ID and password"
)

var (
	// ErrInvalidCredentials is returned for an unknown identifier or a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMissingCredentials is returned when the identifier or password is empty.
	ErrMissingCredentials = errors.New("missing credentials")
	// ErrEmailTaken is returned when registering an email that already has an account.
	ErrEmailTaken = errors.New("email already registered")
	// ErrIDSpaceExhausted is returned when no free patient id could be drawn.
	ErrIDSpaceExhausted = errors.New("could not allocate a unique patient id")
	// ErrNotFinalStep is returned by Submit before the wizard reaches the last step.
	ErrNotFinalStep = errors.New("signup can only be submitted from the final step")
	// ErrFinalStep is returned by Next on the last step.
	ErrFinalStep = errors.New("already on the final step")
	// ErrRedirectToLogin tells a protected page to navigate to LoginPath.
	ErrRedirectToLogin = errors.New("no valid session: redirect to login")

	// ErrNoSession is returned when no usable session marker exists.
	ErrNoSession = repository.ErrNoSession
	// ErrNotFound is returned when no account matches.
	ErrNotFound = repository.ErrNotFound
)
