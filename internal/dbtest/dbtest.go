// Package dbtest opens a migrated PostgreSQL database for repository
// integration tests. Tests are skipped unless GALLERY_TEST_DB_DSN is set.
package dbtest

import (
	"database/sql"
	"io"
	"log/slog"
	"os"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/JaimeStill/gallery/internal/schema"
)

// EnvDSN names the postgres:// URL of a disposable test database.
const EnvDSN = "GALLERY_TEST_DB_DSN"

// Open migrates the test database, truncates every catalog table and returns
// a handle closed at test cleanup.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv(EnvDSN)
	if dsn == "" {
		t.Skipf("%s not set", EnvDSN)
	}

	if err := schema.Up(dsn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`TRUNCATE workflow_favorites, favorites, workflow_stats, workflows, prompts, users RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Fatalf("truncate: %v", err)
	}

	return db
}

// Logger discards output.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
