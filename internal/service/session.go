package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/stjohnsmed/patientportal/internal/models"
)

// DefaultSessionTimeout is the idle interval before a session expires.
const DefaultSessionTimeout = 15 * time.Minute

// SessionManager creates, checks, extends and ends session markers.
type SessionManager struct {
	timeout time.Duration
	now     func() time.Time
	log     *zap.Logger
}

// NewSessionManager returns a manager issuing sessions that last timeout.
func NewSessionManager(timeout time.Duration, log *zap.Logger) *SessionManager {
	if timeout <= 0 {
		timeout = DefaultSessionTimeout
	}
	return &SessionManager{timeout: timeout, now: time.Now, log: log}
}

// Timeout returns the session lifetime.
func (m *SessionManager) Timeout() time.Duration {
	return m.timeout
}

// Establish writes a fresh marker for profile and arms the client's timer.
func (m *SessionManager) Establish(ctx context.Context, c *Client, profile models.Profile) (*models.SessionMarker, error) {
	marker := models.SessionMarker{
		Authenticated: true,
		ExpiresAt:     m.now().Add(m.timeout),
		Profile:       profile,
	}
	if err := c.Sessions.Save(ctx, marker); err != nil {
		return nil, err
	}
	c.Timer.Arm()
	return &marker, nil
}

// Current returns the client's valid marker. A missing, inconsistent or
// expired marker yields ErrNoSession; an expired one is also cleared.
func (m *SessionManager) Current(ctx context.Context, c *Client) (*models.SessionMarker, error) {
	marker, err := c.Sessions.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !marker.Valid(m.now()) {
		if err := c.Sessions.Clear(ctx); err != nil {
			m.log.Warn("failed to clear expired session", zap.String("client", c.ID), zap.Error(err))
		}
		c.Timer.Cancel()
		m.log.Info("session expired", zap.String("client", c.ID), zap.String("patient_id", marker.Profile.PatientID))
		return nil, ErrNoSession
	}
	return marker, nil
}

// KeepAlive extends a valid session by a full timeout and rearms the timer.
func (m *SessionManager) KeepAlive(ctx context.Context, c *Client) (*models.SessionMarker, error) {
	marker, err := m.Current(ctx, c)
	if err != nil {
		return nil, err
	}
	marker.ExpiresAt = m.now().Add(m.timeout)
	if err := c.Sessions.Save(ctx, *marker); err != nil {
		return nil, err
	}
	c.Timer.Arm()
	return marker, nil
}

// Logout clears the marker and cancels the timer.
func (m *SessionManager) Logout(ctx context.Context, c *Client) error {
	c.Timer.Cancel()
	if err := c.Sessions.Clear(ctx); err != nil {
		return err
	}
	m.log.Info("logged out", zap.String("client", c.ID))
	return nil
}

// AuthRedirect is the login page's load check: it returns DashboardPath when
// the client already has a valid session and "" otherwise.
func (m *SessionManager) AuthRedirect(ctx context.Context, c *Client) (string, error) {
	_, err := m.Current(ctx, c)
	switch {
	case err == nil:
		return DashboardPath, nil
	case errors.Is(err, ErrNoSession):
		return "", nil
	default:
		return "", err
	}
}
