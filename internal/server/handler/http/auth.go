// Package http provides the JSON API of the patient portal: login and
// session state for the auth page, the signup wizard, and the protected
// dashboard.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/stjohnsmed/patientportal/internal/models"
	"github.com/stjohnsmed/patientportal/internal/service"
)

// LoginService authenticates a client.
type LoginService interface {
	// Login checks identifier and password and opens a session for c.
	Login(ctx context.Context, c *service.Client, identifier, password string) (*models.SessionMarker, error)
}

// SessionService manages an open session.
type SessionService interface {
	// AuthRedirect returns the dashboard path when c is signed in, "" otherwise.
	AuthRedirect(ctx context.Context, c *service.Client) (string, error)
	// KeepAlive extends c's session.
	KeepAlive(ctx context.Context, c *service.Client) (*models.SessionMarker, error)
	// Logout ends c's session.
	Logout(ctx context.Context, c *service.Client) error
}

// AuthHandler handles the auth page: load check, login and logout.
type AuthHandler struct {
	Clients        ClientProvider
	LoginService   LoginService
	SessionService SessionService
	Log            *zap.Logger
}

// LoginRequest represents the JSON payload for login.
type LoginRequest struct {
	// Identifier is an email or a patient id.
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// SessionResponse describes a signed-in client.
type SessionResponse struct {
	Authenticated bool            `json:"authenticated"`
	ExpiresAt     *time.Time      `json:"expiresAt,omitempty"`
	Profile       *models.Profile `json:"profile,omitempty"`
	Redirect      string          `json:"redirect,omitempty"`
}

// State is the auth page load check. A client with a valid session is told
// to go to the dashboard; an expired session is cleared.
func (h *AuthHandler) State(w http.ResponseWriter, r *http.Request) {
	c, ok := clientFor(w, r, h.Clients)
	if !ok {
		return
	}
	target, err := h.SessionService.AuthRedirect(r.Context(), c)
	if err != nil {
		internalError(w, h.Log, "auth state", err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{Authenticated: target != "", Redirect: target})
}

// Login handles login requests. Any credential mismatch yields 401
// with the same generic message.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decode(w, r, &req) {
		return
	}
	c, ok := clientFor(w, r, h.Clients)
	if !ok {
		return
	}

	marker, err := h.LoginService.Login(r.Context(), c, req.Identifier, req.Password)
	switch {
	case errors.Is(err, service.ErrMissingCredentials):
		writeError(w, http.StatusBadRequest, service.MsgMissingCredentials)
		return
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, service.MsgInvalidCredentials)
		return
	case err != nil:
		internalError(w, h.Log, "login", err)
		return
	}

	writeJSON(w, http.StatusOK, SessionResponse{
		Authenticated: true,
		ExpiresAt:     &marker.ExpiresAt,
		Profile:       &marker.Profile,
		Redirect:      service.DashboardPath,
	})
}

// Logout clears the session and points the client back to the login page.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	c, ok := clientFor(w, r, h.Clients)
	if !ok {
		return
	}
	if err := h.SessionService.Logout(r.Context(), c); err != nil {
		internalError(w, h.Log, "logout", err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{Redirect: service.LoginPath})
}
