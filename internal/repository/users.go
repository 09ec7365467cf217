package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/credkeeper/internal/models"
)

// PostgresUserRepository stores users and their division memberships.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository with the given database connection.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

// CreateUser inserts u. A taken username yields ErrDuplicate.
func (r *PostgresUserRepository) CreateUser(ctx context.Context, u models.User) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, role) VALUES ($1, $2, $3, $4)`,
		u.ID, u.Username, u.PasswordHash, string(u.Role),
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("CreateUser: %w", err)
	}
	return nil
}

// UserByUsername loads the user with the given username.
func (r *PostgresUserRepository) UserByUsername(ctx context.Context, username string) (models.User, error) {
	return r.user(ctx, `SELECT id, username, password_hash, role FROM users WHERE username = $1`, username)
}

// UserByID loads the user with the given id.
func (r *PostgresUserRepository) UserByID(ctx context.Context, id string) (models.User, error) {
	return r.user(ctx, `SELECT id, username, password_hash, role FROM users WHERE id = $1`, id)
}

func (r *PostgresUserRepository) user(ctx context.Context, query, arg string) (models.User, error) {
	var (
		u    models.User
		role string
	)
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Username, &u.PasswordHash, &role)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	u.Role = models.Role(role)
	return u, nil
}

const profileQuery = `
	SELECT u.id, u.username, u.role, o.id, o.name, d.name
	  FROM users u
	  LEFT JOIN user_divisions ud ON ud.user_id = u.id
	  LEFT JOIN divisions d ON d.id = ud.division_id
	  LEFT JOIN org_units o ON o.id = d.org_unit_id
`

// Profile returns the user's profile with its memberships grouped by
// organisational unit.
func (r *PostgresUserRepository) Profile(ctx context.Context, userID string) (models.UserProfile, error) {
	profiles, err := r.profiles(ctx, profileQuery+` WHERE u.id = $1 ORDER BY o.name, d.name`, userID)
	if err != nil {
		return models.UserProfile{}, err
	}
	if len(profiles) == 0 {
		return models.UserProfile{}, ErrNotFound
	}
	return profiles[0], nil
}

// ListProfiles returns every user ordered by username.
func (r *PostgresUserRepository) ListProfiles(ctx context.Context) ([]models.UserProfile, error) {
	return r.profiles(ctx, profileQuery+` ORDER BY u.username, u.id, o.name, d.name`)
}

func (r *PostgresUserRepository) profiles(ctx context.Context, query string, args ...any) ([]models.UserProfile, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}
	defer rows.Close()

	out := []models.UserProfile{}
	for rows.Next() {
		var (
			id, username, role     string
			unitID, unit, division sql.NullString
		)
		if err := rows.Scan(&id, &username, &role, &unitID, &unit, &division); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		if n := len(out); n == 0 || out[n-1].ID != id {
			out = append(out, models.UserProfile{
				ID:                  id,
				Username:            username,
				Role:                models.Role(role),
				OrganisationalUnits: []models.OrgUnitMembership{},
			})
		}
		if !unitID.Valid {
			continue
		}
		p := &out[len(out)-1]
		if n := len(p.OrganisationalUnits); n == 0 || p.OrganisationalUnits[n-1].ID != unitID.String {
			p.OrganisationalUnits = append(p.OrganisationalUnits, models.OrgUnitMembership{
				ID:        unitID.String,
				Name:      unit.String,
				Divisions: []string{},
			})
		}
		ou := &p.OrganisationalUnits[len(p.OrganisationalUnits)-1]
		ou.Divisions = append(ou.Divisions, division.String)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

// SetRole changes the role of userID.
func (r *PostgresUserRepository) SetRole(ctx context.Context, userID string, role models.Role) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE users SET role = $1 WHERE id = $2`, string(role), userID)
	if err != nil {
		return fmt.Errorf("SetRole: %w", err)
	}
	return expectRow(res)
}

// AddMembership makes userID a member of divisionID. An existing
// membership yields ErrDuplicate.
func (r *PostgresUserRepository) AddMembership(ctx context.Context, userID, divisionID string) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO user_divisions (user_id, division_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, divisionID,
	)
	if err != nil {
		return fmt.Errorf("AddMembership: %w", err)
	}
	if err := expectRow(res); errors.Is(err, ErrNotFound) {
		return ErrDuplicate
	} else if err != nil {
		return err
	}
	return nil
}

// RemoveMembership drops userID from divisionID. A missing membership
// yields ErrNotFound.
func (r *PostgresUserRepository) RemoveMembership(ctx context.Context, userID, divisionID string) error {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM user_divisions WHERE user_id = $1 AND division_id = $2`,
		userID, divisionID,
	)
	if err != nil {
		return fmt.Errorf("RemoveMembership: %w", err)
	}
	return expectRow(res)
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
