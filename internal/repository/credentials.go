package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/atinyakov/credkeeper/internal/models"
)

// Scope selects which divisions a user can see.
type Scope int

const (
	// ScopeAll covers every division.
	ScopeAll Scope = iota
	// ScopeOrgUnits covers every division of each unit the user belongs to.
	ScopeOrgUnits
	// ScopeDivisions covers only the user's own divisions.
	ScopeDivisions
)

// PostgresCredentialRepository implements credential tree operations
// against a PostgreSQL database.
type PostgresCredentialRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresCredentialRepository creates a new PostgresCredentialRepository.
func NewPostgresCredentialRepository(db *sql.DB) *PostgresCredentialRepository {
	return &PostgresCredentialRepository{DB: db}
}

// DivisionID resolves a division by its unit and division names.
func (r *PostgresCredentialRepository) DivisionID(ctx context.Context, orgUnit, division string) (string, error) {
	var id string
	err := r.DB.QueryRowContext(ctx, `
		SELECT d.id FROM divisions d
		  JOIN org_units o ON o.id = d.org_unit_id
		 WHERE o.name = $1 AND d.name = $2
	`, orgUnit, division).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("DivisionID: %w", err)
	}
	return id, nil
}

// VisibleDivisionIDs lists the divisions userID can see under scope.
func (r *PostgresCredentialRepository) VisibleDivisionIDs(ctx context.Context, userID string, scope Scope) ([]string, error) {
	var (
		rows *sql.Rows
		err  error
	)
	switch scope {
	case ScopeAll:
		rows, err = r.DB.QueryContext(ctx, `SELECT id FROM divisions`)
	case ScopeOrgUnits:
		rows, err = r.DB.QueryContext(ctx, `
			SELECT d.id FROM divisions d
			 WHERE d.org_unit_id IN (
				SELECT m.org_unit_id FROM user_divisions ud
				  JOIN divisions m ON m.id = ud.division_id
				 WHERE ud.user_id = $1)
		`, userID)
	default:
		rows, err = r.DB.QueryContext(ctx, `SELECT division_id FROM user_divisions WHERE user_id = $1`, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("VisibleDivisionIDs: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Tree returns the credential tree restricted to divisionIDs, ordered by
// unit name, division name and account creation.
func (r *PostgresCredentialRepository) Tree(ctx context.Context, divisionIDs []string) (models.CredentialTree, error) {
	tree := models.CredentialTree{}
	if len(divisionIDs) == 0 {
		return tree, nil
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT o.id, o.name, d.id, d.name, a.id, a.name, a.username, a.password
		  FROM divisions d
		  JOIN org_units o ON o.id = d.org_unit_id
		  LEFT JOIN accounts a ON a.division_id = d.id
		 WHERE d.id = ANY($1)
		 ORDER BY o.name, d.name, a.created_at, a.id
	`, pq.Array(divisionIDs))
	if err != nil {
		return nil, fmt.Errorf("Tree: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			unitID, unit, divID, div   string
			accID, name, user, secret sql.NullString
		)
		if err := rows.Scan(&unitID, &unit, &divID, &div, &accID, &name, &user, &secret); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		if n := len(tree); n == 0 || tree[n-1].ID != unitID {
			tree = append(tree, models.OrgUnitCredentials{ID: unitID, Name: unit, Divisions: []models.DivisionCredentials{}})
		}
		ou := &tree[len(tree)-1]
		if n := len(ou.Divisions); n == 0 || ou.Divisions[n-1].ID != divID {
			ou.Divisions = append(ou.Divisions, models.DivisionCredentials{ID: divID, Name: div, Accounts: []models.Account{}})
		}
		if !accID.Valid {
			continue
		}
		d := &ou.Divisions[len(ou.Divisions)-1]
		d.Accounts = append(d.Accounts, models.Account{
			ID:       accID.String,
			Name:     name.String,
			Username: user.String,
			Password: secret.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return tree, nil
}

// AddAccount stores a in divisionID.
func (r *PostgresCredentialRepository) AddAccount(ctx context.Context, divisionID string, a models.Account) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO accounts (id, division_id, name, username, password) VALUES ($1, $2, $3, $4, $5)`,
		a.ID, divisionID, a.Name, a.Username, a.Password,
	)
	if err != nil {
		return fmt.Errorf("AddAccount: %w", err)
	}
	return nil
}

// UpdateAccount rewrites the oldest account of divisionID matching the
// old name/username/password triple. No match yields ErrNotFound.
func (r *PostgresCredentialRepository) UpdateAccount(ctx context.Context, divisionID string, old, updated models.Account) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE accounts SET name = $1, username = $2, password = $3
		 WHERE id = (
			SELECT id FROM accounts
			 WHERE division_id = $4 AND name = $5 AND username = $6 AND password = $7
			 ORDER BY created_at, id
			 LIMIT 1)
	`, updated.Name, updated.Username, updated.Password, divisionID, old.Name, old.Username, old.Password)
	if err != nil {
		return fmt.Errorf("UpdateAccount: %w", err)
	}
	return expectRow(res)
}
