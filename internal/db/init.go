package db

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT 'normal'
);

CREATE TABLE IF NOT EXISTS org_units (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS divisions (
    id TEXT PRIMARY KEY,
    org_unit_id TEXT NOT NULL REFERENCES org_units(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    UNIQUE (org_unit_id, name)
);

CREATE TABLE IF NOT EXISTS user_divisions (
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    division_id TEXT NOT NULL REFERENCES divisions(id) ON DELETE CASCADE,
    PRIMARY KEY (user_id, division_id)
);

CREATE TABLE IF NOT EXISTS accounts (
    id TEXT PRIMARY KEY,
    division_id TEXT NOT NULL REFERENCES divisions(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    username TEXT NOT NULL,
    password TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS sessions (
    token TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    expires_at TIMESTAMPTZ NOT NULL
);
`

func InitPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return db, nil
}

// Seed makes sure every organisational unit and division in units exists.
// Existing rows are kept, so seeding is safe on every start.
func Seed(ctx context.Context, db *sql.DB, units map[string][]string) error {
	if len(units) == 0 {
		return nil
	}

	names := make([]string, 0, len(units))
	for name := range units {
		names = append(names, name)
	}
	sort.Strings(names)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, name := range names {
		var unitID string
		err := tx.QueryRowContext(ctx, `
			INSERT INTO org_units (id, name) VALUES ($1, $2)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id
		`, uuid.NewString(), name).Scan(&unitID)
		if err != nil {
			return fmt.Errorf("seed org unit %q: %w", name, err)
		}

		for _, division := range units[name] {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO divisions (id, org_unit_id, name) VALUES ($1, $2, $3)
				ON CONFLICT (org_unit_id, name) DO NOTHING
			`, uuid.NewString(), unitID, division)
			if err != nil {
				return fmt.Errorf("seed division %q: %w", division, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
