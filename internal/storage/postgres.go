package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// PostgresStorage implements Storage on the storage_items table.
// Items are scoped by Namespace; the shared namespace is "".
type PostgresStorage struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
	// Namespace isolates one client's items from another's.
	Namespace string
}

// NewPostgresStorage creates a PostgresStorage for the shared namespace.
func NewPostgresStorage(db *sql.DB) *PostgresStorage {
	return &PostgresStorage{DB: db}
}

// WithNamespace returns a PostgresStorage over the same database scoped to namespace.
func (s *PostgresStorage) WithNamespace(namespace string) *PostgresStorage {
	return &PostgresStorage{DB: s.DB, Namespace: namespace}
}

// GetItem fetches a single value.
func (s *PostgresStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.DB.QueryRowContext(ctx, `
		SELECT value FROM storage_items WHERE namespace = $1 AND key = $2
	`, s.Namespace, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get item %q: %w", key, err)
	}
	return value, true, nil
}

// SetItem upserts a value.
func (s *PostgresStorage) SetItem(ctx context.Context, key, value string) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO storage_items (namespace, key, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (namespace, key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = now()
	`, s.Namespace, key, value)
	if err != nil {
		return fmt.Errorf("set item %q: %w", key, err)
	}
	return nil
}

// RemoveItem deletes keys in a single statement.
func (s *PostgresStorage) RemoveItem(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := s.DB.ExecContext(ctx, `
		DELETE FROM storage_items WHERE namespace = $1 AND key = ANY($2)
	`, s.Namespace, pq.Array(keys))
	if err != nil {
		return fmt.Errorf("remove items: %w", err)
	}
	return nil
}
