package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/stjohnsmed/patientportal/internal/mockdata"
	"github.com/stjohnsmed/patientportal/internal/models"
)

// Dashboard serves the protected dashboard page.
type Dashboard struct {
	sessions *SessionManager
	now      func() time.Time
	log      *zap.Logger
}

// NewDashboard constructs a Dashboard.
func NewDashboard(sessions *SessionManager, log *zap.Logger) *Dashboard {
	return &Dashboard{sessions: sessions, now: time.Now, log: log}
}

// Load checks the client's session and returns the cached profile with the
// mock collections. Without a valid session it returns ErrRedirectToLogin.
// The credential store is never read or written.
func (d *Dashboard) Load(ctx context.Context, c *Client) (*models.Dashboard, error) {
	marker, err := d.sessions.Current(ctx, c)
	if errors.Is(err, ErrNoSession) {
		return nil, ErrRedirectToLogin
	}
	if err != nil {
		return nil, err
	}
	c.Timer.Arm()

	data := mockdata.Generate(d.now(), marker.Profile)
	d.log.Debug("dashboard loaded", zap.String("client", c.ID), zap.String("patient_id", marker.Profile.PatientID))

	return &models.Dashboard{
		Profile:        marker.Profile,
		SessionExpiry:  marker.ExpiresAt,
		UnreadMessages: mockdata.UnreadMessages(data),
		UnreadAlerts:   mockdata.UnreadNotifications(data),
		Data:           data,
	}, nil
}
