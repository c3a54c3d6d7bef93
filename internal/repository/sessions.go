package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/stjohnsmed/patientportal/internal/models"
	"github.com/stjohnsmed/patientportal/internal/storage"
)

// SessionRepository stores the session marker as three separate entries:
// the authenticated flag, the expiry in epoch milliseconds and the profile JSON.
type SessionRepository struct {
	store storage.Storage
	log   *zap.Logger
}

// NewSessionRepository creates a SessionRepository over store.
func NewSessionRepository(store storage.Storage, log *zap.Logger) *SessionRepository {
	return &SessionRepository{store: store, log: log}
}

// Save writes all three entries.
func (r *SessionRepository) Save(ctx context.Context, m models.SessionMarker) error {
	profile, err := json.Marshal(m.Profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := r.store.SetItem(ctx, storage.KeyAuthenticated, strconv.FormatBool(m.Authenticated)); err != nil {
		return fmt.Errorf("save session flag: %w", err)
	}
	if err := r.store.SetItem(ctx, storage.KeySessionExpiry, strconv.FormatInt(m.ExpiresAt.UnixMilli(), 10)); err != nil {
		return fmt.Errorf("save session expiry: %w", err)
	}
	if err := r.store.SetItem(ctx, storage.KeyCurrentUser, string(profile)); err != nil {
		return fmt.Errorf("save session profile: %w", err)
	}
	return nil
}

// Load reads the marker. It returns ErrNoSession unless all three entries are
// present, the flag is "true" and both the expiry and the profile parse.
// Expiry is not checked here.
func (r *SessionRepository) Load(ctx context.Context) (*models.SessionMarker, error) {
	flag, okFlag, err := r.store.GetItem(ctx, storage.KeyAuthenticated)
	if err != nil {
		return nil, fmt.Errorf("load session flag: %w", err)
	}
	expiry, okExpiry, err := r.store.GetItem(ctx, storage.KeySessionExpiry)
	if err != nil {
		return nil, fmt.Errorf("load session expiry: %w", err)
	}
	user, okUser, err := r.store.GetItem(ctx, storage.KeyCurrentUser)
	if err != nil {
		return nil, fmt.Errorf("load session profile: %w", err)
	}
	if !okFlag || !okExpiry || !okUser || flag != "true" {
		return nil, ErrNoSession
	}

	ms, err := strconv.ParseInt(expiry, 10, 64)
	if err != nil {
		r.log.Warn("unreadable session expiry", zap.String("value", expiry), zap.Error(err))
		return nil, ErrNoSession
	}
	var profile models.Profile
	if err := json.Unmarshal([]byte(user), &profile); err != nil {
		r.log.Warn("unreadable session profile", zap.Error(err))
		return nil, ErrNoSession
	}

	return &models.SessionMarker{
		Authenticated: true,
		ExpiresAt:     time.UnixMilli(ms),
		Profile:       profile,
	}, nil
}

// Clear removes all three entries.
func (r *SessionRepository) Clear(ctx context.Context) error {
	if err := r.store.RemoveItem(ctx, storage.SessionKeys...); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
