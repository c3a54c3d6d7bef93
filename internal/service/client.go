package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/stjohnsmed/patientportal/internal/models"
)

// SessionStore persists one client's session marker.
type SessionStore interface {
	// Save writes the marker.
	Save(ctx context.Context, m models.SessionMarker) error
	// Load returns the stored marker or ErrNoSession.
	Load(ctx context.Context) (*models.SessionMarker, error)
	// Clear removes the marker.
	Clear(ctx context.Context) error
}

// Client is the state of one browser or terminal: its session marker, its
// signup wizard and an optional session timer. It is passed explicitly to the
// login, session and dashboard operations.
type Client struct {
	// ID identifies the client, e.g. the identity cookie value.
	ID string
	// Sessions stores this client's session marker.
	Sessions SessionStore
	// Wizard holds this client's signup draft.
	Wizard *Wizard
	// Timer, when set, is armed on login and dashboard load and rearmed on keep-alive.
	Timer *SessionTimer
}

// ClientFactory builds the client for a new id.
type ClientFactory func(id string) *Client

type registryEntry struct {
	client   *Client
	lastSeen time.Time
}

// ClientRegistry lazily creates clients by id and keeps them until they go idle.
type ClientRegistry struct {
	mu      sync.Mutex
	clients map[string]*registryEntry
	factory ClientFactory
	now     func() time.Time
}

// NewClientRegistry returns an empty registry that builds clients with factory.
func NewClientRegistry(factory ClientFactory) *ClientRegistry {
	return &ClientRegistry{
		clients: make(map[string]*registryEntry),
		factory: factory,
		now:     time.Now,
	}
}

// Client returns the client for id, creating it on first use.
func (r *ClientRegistry) Client(id string) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.clients[id]
	if !ok {
		e = &registryEntry{client: r.factory(id)}
		r.clients[id] = e
	}
	e.lastSeen = r.now()
	return e.client
}

// Len returns the number of live clients.
func (r *ClientRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Sweep drops clients not seen for longer than idle, discarding their wizard
// drafts and cancelling their timers. Stored session markers are untouched.
func (r *ClientRegistry) Sweep(idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-idle)
	removed := 0
	for id, e := range r.clients {
		if e.lastSeen.Before(cutoff) {
			e.client.Timer.Cancel()
			delete(r.clients, id)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep every interval until ctx is done.
func (r *ClientRegistry) StartSweeper(ctx context.Context, interval, idle time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := r.Sweep(idle); n > 0 {
					log.Info("evicted idle clients", zap.Int("removed", n))
				}
			}
		}
	}()
}
