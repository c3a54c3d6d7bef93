// Package storage provides the key/value "local storage" the portal persists
// its state in: the account collection under one key and the three session
// entries under their own keys.
package storage

import (
	"context"
	"sync"
)

// Well-known keys.
const (
	// KeyUsers holds the JSON array of registered accounts.
	KeyUsers = "hospital_users"
	// KeyAuthenticated holds "true" while a session is active.
	KeyAuthenticated = "auth_isAuthenticated"
	// KeySessionExpiry holds the session expiry in epoch milliseconds.
	KeySessionExpiry = "auth_sessionExpiry"
	// KeyCurrentUser holds the JSON profile of the logged-in patient.
	KeyCurrentUser = "auth_currentUser"
)

// SessionKeys lists the entries that together form a session marker.
var SessionKeys = []string{KeyAuthenticated, KeySessionExpiry, KeyCurrentUser}

// Storage is a string key/value store with localStorage semantics.
type Storage interface {
	// GetItem returns the value for key and whether it was present.
	GetItem(ctx context.Context, key string) (string, bool, error)
	// SetItem stores value under key, replacing any previous value.
	SetItem(ctx context.Context, key, value string) error
	// RemoveItem deletes the given keys. Missing keys are ignored.
	RemoveItem(ctx context.Context, keys ...string) error
}

// MemoryStorage is an in-process Storage, safe for concurrent use.
type MemoryStorage struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string]string)}
}

func (m *MemoryStorage) GetItem(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *MemoryStorage) SetItem(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *MemoryStorage) RemoveItem(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.items, k)
	}
	return nil
}

// Len returns the number of stored items.
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// prefixed namespaces every key of an underlying Storage.
type prefixed struct {
	base   Storage
	prefix string
}

// Prefixed returns a Storage that stores every key as "<namespace>:<key>" in base.
// It lets many clients share one backing store without seeing each other's
// session entries.
func Prefixed(base Storage, namespace string) Storage {
	return &prefixed{base: base, prefix: namespace + ":"}
}

func (p *prefixed) GetItem(ctx context.Context, key string) (string, bool, error) {
	return p.base.GetItem(ctx, p.prefix+key)
}

func (p *prefixed) SetItem(ctx context.Context, key, value string) error {
	return p.base.SetItem(ctx, p.prefix+key, value)
}

func (p *prefixed) RemoveItem(ctx context.Context, keys ...string) error {
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = p.prefix + k
	}
	return p.base.RemoveItem(ctx, full...)
}
