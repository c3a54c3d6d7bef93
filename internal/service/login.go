package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/stjohnsmed/patientportal/internal/models"
	"github.com/stjohnsmed/patientportal/internal/validation"
)

// AccountFinder is the part of the credential store the login flow needs.
type AccountFinder interface {
	// FindByIdentifier returns the account matching an email or patient id.
	FindByIdentifier(ctx context.Context, identifier string) (*models.Account, error)
	// TouchLastLogin stamps and persists the account's last login.
	TouchLastLogin(ctx context.Context, account *models.Account) error
}

// LoginService checks credentials and opens sessions.
type LoginService struct {
	accounts AccountFinder
	sessions *SessionManager
	delay    time.Duration
	log      *zap.Logger
}

// NewLoginService constructs a LoginService. delay simulates request latency
// before each lookup.
func NewLoginService(accounts AccountFinder, sessions *SessionManager, delay time.Duration, log *zap.Logger) *LoginService {
	return &LoginService{accounts: accounts, sessions: sessions, delay: delay, log: log}
}

// Login authenticates identifier (email or patient id) and password and, on
// success, writes a session marker for c and then records the last login.
// Any mismatch yields ErrInvalidCredentials and leaves all state unchanged.
// A failed session write leaves the account untouched; a failed last-login
// write clears the new session again.
func (s *LoginService) Login(ctx context.Context, c *Client, identifier, password string) (*models.SessionMarker, error) {
	if !validation.Login(identifier, password).Valid() {
		return nil, ErrMissingCredentials
	}
	if err := simulateLatency(ctx, s.delay); err != nil {
		return nil, err
	}

	account, err := s.accounts.FindByIdentifier(ctx, identifier)
	if errors.Is(err, ErrNotFound) {
		CheckPassword(dummyHash(), password)
		s.log.Info("login failed", zap.String("client", c.ID))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !CheckPassword(account.PasswordHash, password) {
		s.log.Info("login failed", zap.String("client", c.ID))
		return nil, ErrInvalidCredentials
	}

	marker, err := s.sessions.Establish(ctx, c, account.Profile())
	if err != nil {
		return nil, err
	}
	if err := s.accounts.TouchLastLogin(ctx, account); err != nil {
		if clearErr := s.sessions.Logout(ctx, c); clearErr != nil {
			s.log.Warn("rollback of session failed", zap.String("client", c.ID), zap.Error(clearErr))
		}
		return nil, err
	}

	s.log.Info("login succeeded",
		zap.String("client", c.ID),
		zap.String("patient_id", account.PatientID),
		zap.Time("expires_at", marker.ExpiresAt),
	)
	return marker, nil
}
