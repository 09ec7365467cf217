package repository

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/atinyakov/credkeeper/internal/models"
)

func setupMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unfulfilled expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

func TestCreateUser(t *testing.T) {
	db, mock := setupMock(t)
	repo := NewPostgresUserRepository(db)
	u := models.User{ID: "u1", Username: "alice", PasswordHash: "h", Role: models.RoleNormal}

	query := regexp.QuoteMeta(`INSERT INTO users (id, username, password_hash, role) VALUES ($1, $2, $3, $4)`)
	mock.ExpectExec(query).WithArgs("u1", "alice", "h", "normal").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(query).WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectExec(query).WillReturnError(errors.New("conn reset"))

	if err := repo.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.CreateUser(context.Background(), u); !errors.Is(err, ErrDuplicate) {
		t.Errorf("want ErrDuplicate, got %v", err)
	}
	if err := repo.CreateUser(context.Background(), u); err == nil || errors.Is(err, ErrDuplicate) {
		t.Errorf("want wrapped driver error, got %v", err)
	}
}

func TestUserByUsername(t *testing.T) {
	db, mock := setupMock(t)
	repo := NewPostgresUserRepository(db)

	query := regexp.QuoteMeta(`SELECT id, username, password_hash, role FROM users WHERE username = $1`)
	mock.ExpectQuery(query).WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "role"}).AddRow("u1", "alice", "h", "admin"))
	mock.ExpectQuery(query).WithArgs("nobody").WillReturnError(sql.ErrNoRows)

	u, err := repo.UserByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Role != models.RoleAdmin || u.ID != "u1" {
		t.Errorf("got %+v", u)
	}
	if _, err := repo.UserByUsername(context.Background(), "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}

func TestListProfiles_GroupsMemberships(t *testing.T) {
	db, mock := setupMock(t)
	repo := NewPostgresUserRepository(db)

	rows := sqlmock.NewRows([]string{"id", "username", "role", "oid", "oname", "dname"}).
		AddRow("u1", "alice", "admin", "o1", "News management", "Finances").
		AddRow("u1", "alice", "admin", "o1", "News management", "Writing").
		AddRow("u1", "alice", "admin", "o2", "Software reviews", "Writing").
		AddRow("u2", "bob", "normal", nil, nil, nil)
	mock.ExpectQuery(`SELECT u.id, u.username, u.role, o.id, o.name, d.name`).WillReturnRows(rows)

	got, err := repo.ListProfiles(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []models.UserProfile{
		{
			ID: "u1", Username: "alice", Role: models.RoleAdmin,
			OrganisationalUnits: []models.OrgUnitMembership{
				{ID: "o1", Name: "News management", Divisions: []string{"Finances", "Writing"}},
				{ID: "o2", Name: "Software reviews", Divisions: []string{"Writing"}},
			},
		},
		{ID: "u2", Username: "bob", Role: models.RoleNormal, OrganisationalUnits: []models.OrgUnitMembership{}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ListProfiles =\n%+v\nwant\n%+v", got, want)
	}
}

func TestProfile_NotFound(t *testing.T) {
	db, mock := setupMock(t)
	repo := NewPostgresUserRepository(db)

	mock.ExpectQuery(`WHERE u.id = \$1`).WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "role", "oid", "oname", "dname"}))

	if _, err := repo.Profile(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}

func TestMembershipAndRole(t *testing.T) {
	db, mock := setupMock(t)
	repo := NewPostgresUserRepository(db)
	ctx := context.Background()

	mock.ExpectExec(`UPDATE users SET role`).WithArgs("management", "u2").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE users SET role`).WithArgs("admin", "ghost").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO user_divisions`).WithArgs("u2", "d1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO user_divisions`).WithArgs("u2", "d1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM user_divisions`).WithArgs("u2", "d1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM user_divisions`).WithArgs("u2", "d1").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.SetRole(ctx, "u2", models.RoleManagement); err != nil {
		t.Errorf("SetRole: %v", err)
	}
	if err := repo.SetRole(ctx, "ghost", models.RoleAdmin); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetRole unknown user: want ErrNotFound, got %v", err)
	}
	if err := repo.AddMembership(ctx, "u2", "d1"); err != nil {
		t.Errorf("AddMembership: %v", err)
	}
	if err := repo.AddMembership(ctx, "u2", "d1"); !errors.Is(err, ErrDuplicate) {
		t.Errorf("AddMembership twice: want ErrDuplicate, got %v", err)
	}
	if err := repo.RemoveMembership(ctx, "u2", "d1"); err != nil {
		t.Errorf("RemoveMembership: %v", err)
	}
	if err := repo.RemoveMembership(ctx, "u2", "d1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("RemoveMembership twice: want ErrNotFound, got %v", err)
	}
}

func TestSessions(t *testing.T) {
	db, mock := setupMock(t)
	repo := NewPostgresSessionRepository(db)
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO sessions (token, user_id, expires_at) VALUES ($1, $2, $3)`)).
		WithArgs("tok", "u1", now.Add(time.Hour)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT user_id FROM sessions WHERE token = $1 AND expires_at > $2`)).
		WithArgs("tok", now).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("u1"))
	mock.ExpectQuery(`SELECT user_id FROM sessions`).
		WithArgs("stale", now).
		WillReturnError(sql.ErrNoRows)

	if err := repo.CreateSession(ctx, "tok", "u1", now.Add(time.Hour)); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	userID, err := repo.SessionUser(ctx, "tok", now)
	if err != nil || userID != "u1" {
		t.Errorf("SessionUser = %q, %v; want u1", userID, err)
	}
	if _, err := repo.SessionUser(ctx, "stale", now); !errors.Is(err, ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}

func TestVisibleDivisionIDs(t *testing.T) {
	tests := []struct {
		name  string
		scope Scope
		query string
		args  bool
	}{
		{"admin", ScopeAll, `SELECT id FROM divisions`, false},
		{"management", ScopeOrgUnits, `WHERE d.org_unit_id IN`, true},
		{"normal", ScopeDivisions, `SELECT division_id FROM user_divisions WHERE user_id = $1`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMock(t)
			exp := mock.ExpectQuery(regexp.QuoteMeta(tt.query))
			if tt.args {
				exp = exp.WithArgs("u1")
			}
			exp.WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("d1").AddRow("d2"))

			ids, err := NewPostgresCredentialRepository(db).VisibleDivisionIDs(context.Background(), "u1", tt.scope)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(ids, []string{"d1", "d2"}) {
				t.Errorf("ids = %v", ids)
			}
		})
	}
}

func TestTree(t *testing.T) {
	db, mock := setupMock(t)
	repo := NewPostgresCredentialRepository(db)

	rows := sqlmock.NewRows([]string{"oid", "oname", "did", "dname", "aid", "aname", "auser", "apass"}).
		AddRow("o1", "News management", "d1", "Finances", nil, nil, nil, nil).
		AddRow("o1", "News management", "d2", "Writing", "a1", "WordPress", "editor", "p1").
		AddRow("o1", "News management", "d2", "Writing", "a2", "Slack", "ed", "p2")
	mock.ExpectQuery(`WHERE d.id = ANY\(\$1\)`).
		WithArgs(pq.Array([]string{"d1", "d2"})).
		WillReturnRows(rows)

	tree, err := repo.Tree(context.Background(), []string{"d1", "d2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := models.CredentialTree{{
		ID: "o1", Name: "News management",
		Divisions: []models.DivisionCredentials{
			{ID: "d1", Name: "Finances", Accounts: []models.Account{}},
			{ID: "d2", Name: "Writing", Accounts: []models.Account{
				{ID: "a1", Name: "WordPress", Username: "editor", Password: "p1"},
				{ID: "a2", Name: "Slack", Username: "ed", Password: "p2"},
			}},
		},
	}}
	if !reflect.DeepEqual(tree, want) {
		t.Errorf("Tree =\n%+v\nwant\n%+v", tree, want)
	}

	empty, err := repo.Tree(context.Background(), nil)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Errorf("Tree(nil) = %v, %v; want empty non-nil tree", empty, err)
	}
}

func TestAccounts(t *testing.T) {
	db, mock := setupMock(t)
	repo := NewPostgresCredentialRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT d.id FROM divisions d`).WithArgs("News management", "Writing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("d2"))
	mock.ExpectQuery(`SELECT d.id FROM divisions d`).WithArgs("News management", "Gossip").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`INSERT INTO accounts`).WithArgs("a3", "d2", "Slack", "ed", "pw").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE accounts SET name = \$1`).
		WithArgs("WP", "editor", "p9", "d2", "WordPress", "editor", "p1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE accounts SET name = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	id, err := repo.DivisionID(ctx, "News management", "Writing")
	if err != nil || id != "d2" {
		t.Errorf("DivisionID = %q, %v", id, err)
	}
	if _, err := repo.DivisionID(ctx, "News management", "Gossip"); !errors.Is(err, ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
	if err := repo.AddAccount(ctx, "d2", models.Account{ID: "a3", Name: "Slack", Username: "ed", Password: "pw"}); err != nil {
		t.Errorf("AddAccount: %v", err)
	}
	old := models.Account{Name: "WordPress", Username: "editor", Password: "p1"}
	if err := repo.UpdateAccount(ctx, "d2", old, models.Account{Name: "WP", Username: "editor", Password: "p9"}); err != nil {
		t.Errorf("UpdateAccount: %v", err)
	}
	if err := repo.UpdateAccount(ctx, "d2", old, old); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateAccount stale triple: want ErrNotFound, got %v", err)
	}
}
