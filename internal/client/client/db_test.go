package client

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/qrscan/internal/client/models"
	_ "modernc.org/sqlite"
)

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	if err != nil {
		t.Fatalf("tableExists query failed: %v", err)
	}
	return n > 0
}

func TestInitDatabase_CreatesDBAndGooseVersionTable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "app.db")

	db, err := InitDatabase(ctx, dsn)
	if err != nil {
		t.Fatalf("InitDatabase error: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("db.PingContext failed: %v", err)
	}

	for _, table := range []string{"goose_db_version", "metadata", "scans", "codes"} {
		if !tableExists(t, db, table) {
			t.Fatalf("expected %s table to exist after migrations", table)
		}
	}
}

func TestRunMigrations_IsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "app.db")

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("sql.Open error: %v", err)
	}
	defer db.Close()

	if err := RunMigrations(ctx, db); err != nil {
		t.Fatalf("RunMigrations (first) error: %v", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		t.Fatalf("RunMigrations (second) should be idempotent, got error: %v", err)
	}

	if !tableExists(t, db, "goose_db_version") {
		t.Fatalf("expected goose_db_version table to exist after repeated migrations")
	}
}

func TestInitDatabase_UsesSqliteDriver(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "app.db")

	db, err := InitDatabase(ctx, dsn)
	if err != nil {
		t.Fatalf("InitDatabase error: %v", err)
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS __smoke (id INTEGER PRIMARY KEY, v TEXT)`)
	if err != nil {
		t.Fatalf("create smoke table failed: %v", err)
	}
	_, err = db.ExecContext(ctx, `INSERT INTO __smoke(v) VALUES ('ok')`)
	if err != nil {
		t.Fatalf("insert smoke row failed: %v", err)
	}
	var got string
	if err := db.QueryRowContext(ctx, `SELECT v FROM __smoke LIMIT 1`).Scan(&got); err != nil {
		t.Fatalf("select smoke row failed: %v", err)
	}
	if got != "ok" {
		t.Fatalf("unexpected smoke value: %q", got)
	}
}

func TestNewRepositories_SharesDatabase(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := InitDatabase(ctx, ":memory:")
	if err != nil {
		t.Fatalf("InitDatabase error: %v", err)
	}
	defer db.Close()

	repos := NewRepositories(db)
	if err := repos.Scans.Prepend(ctx, models.ScanRecord{ID: "1", Code: "A"}); err != nil {
		t.Fatalf("Prepend: %v", err)
	}
	if err := repos.Metadata.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := repos.Scans.List(ctx)
	if err != nil || len(got) != 1 || got[0].Code != "A" {
		t.Fatalf("List = %v, %v", got, err)
	}
}

func TestInitDatabase_CreatesParentDirectory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "state", "nested", "app.db")

	db, err := InitDatabase(ctx, dsn)
	if err != nil {
		t.Fatalf("InitDatabase error: %v", err)
	}
	defer db.Close()

	if !tableExists(t, db, "scans") {
		t.Fatalf("expected scans table in %s", dsn)
	}
}
