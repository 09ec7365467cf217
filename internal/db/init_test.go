package db_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/atinyakov/credkeeper/internal/db"
)

func TestInitPostgres_ErrorPaths(t *testing.T) {
	cases := []struct {
		name       string
		dsn        string
		wantSubstr string
	}{
		{"invalid DSN", "some=random", "ping postgres"},
		{"empty DSN", "", "ping postgres"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := db.InitPostgres(tc.dsn)
			if err == nil {
				t.Fatalf("InitPostgres(%q) did not return error", tc.dsn)
			}
			if !strings.Contains(err.Error(), tc.wantSubstr) {
				t.Errorf("InitPostgres(%q) error = %q; want substring %q", tc.dsn, err.Error(), tc.wantSubstr)
			}
		})
	}
}

func TestSeed(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer conn.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO org_units").
		WithArgs(sqlmock.AnyArg(), "News management").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("o1"))
	mock.ExpectExec("INSERT INTO divisions").
		WithArgs(sqlmock.AnyArg(), "o1", "Writing").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO divisions").
		WithArgs(sqlmock.AnyArg(), "o1", "Finances").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("INSERT INTO org_units").
		WithArgs(sqlmock.AnyArg(), "Software reviews").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("o2"))
	mock.ExpectCommit()

	err = db.Seed(context.Background(), conn, map[string][]string{
		"Software reviews": nil,
		"News management":  {"Writing", "Finances"},
	})
	if err != nil {
		t.Fatalf("Seed returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestSeed_RollsBackOnError(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer conn.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO org_units").WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	err = db.Seed(context.Background(), conn, map[string][]string{"News management": {"Writing"}})
	if err == nil || !strings.Contains(err.Error(), `seed org unit "News management"`) {
		t.Fatalf("Seed error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}

	if err := db.Seed(context.Background(), conn, nil); err != nil {
		t.Errorf("empty seed must be a no-op, got %v", err)
	}
}
