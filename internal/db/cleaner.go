package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

const deleteExpiredSessionsQuery = `
    DELETE FROM sessions
     WHERE expires_at < $1
`

// StartSessionCleaner runs a background sweep of the sessions table: every
// interval it deletes the login sessions whose expires_at lies in the past,
// so bearer tokens stop authenticating and the table stays bounded. It
// returns immediately; the sweep stops once ctx is cancelled.
func StartSessionCleaner(
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
				removed, err := deleteExpiredSessions(ctx, db, time.Now().UTC())
				if err != nil {
					log.Error("failed to clean expired sessions", zap.Error(err))
					continue
				}
				if removed > 0 {
					log.Info("cleaned expired sessions", zap.Int64("removed", removed))
				}
			}
		}
	}()
}

// deleteExpiredSessions removes sessions that expired before now and reports
// how many rows went away.
func deleteExpiredSessions(ctx context.Context, db *sql.DB, now time.Time) (int64, error) {
	res, err := db.ExecContext(ctx, deleteExpiredSessionsQuery, now)
	if err != nil {
		return 0, err
	}
	removed, _ := res.RowsAffected()
	return removed, nil
}
