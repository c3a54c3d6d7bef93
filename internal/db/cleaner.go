package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/stjohnsmed/patientportal/internal/storage"
)

const deleteExpiredSessions = `
    DELETE FROM storage_items
     WHERE key = ANY($1)
       AND namespace IN (
           SELECT namespace FROM storage_items
            WHERE key = $2
              AND CASE WHEN value ~ '^[0-9]+$' THEN value::BIGINT END <= $3
       )
`

// StartExpiredSessionCleaner removes session markers whose expiry has
// passed, every interval, until ctx is done. Clients that never come back
// would otherwise leave their markers in storage_items forever.
func StartExpiredSessionCleaner(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().UnixMilli()
				res, err := db.ExecContext(ctx, deleteExpiredSessions,
					pq.Array(storage.SessionKeys), storage.KeySessionExpiry, cutoff)
				if err != nil {
					log.Error("failed to clean expired sessions", zap.Error(err))
					continue
				}
				if rows, _ := res.RowsAffected(); rows > 0 {
					log.Info("cleaned expired sessions", zap.Int64("removed", rows))
				}
			}
		}
	}()
}
