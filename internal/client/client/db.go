package client

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/qrscan/internal/client/migrations"
	"github.com/dmitrijs2005/qrscan/internal/client/repositories/codes"
	"github.com/dmitrijs2005/qrscan/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/qrscan/internal/client/repositories/scans"
	"github.com/dmitrijs2005/qrscan/internal/filex"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// Repositories groups the local cache stores.
type Repositories struct {
	Metadata metadata.Repository
	Scans    scans.Repository
	Codes    codes.Repository
}

func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Metadata: metadata.NewSQLiteRepository(db),
		Scans:    scans.NewSQLiteRepository(db),
		Codes:    codes.NewSQLiteRepository(db),
	}
}

// RunMigrations applies the embedded cache migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.Migrations)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// InitDatabase opens the SQLite cache at dsn and migrates it. A plain file
// path gets its parent directory created.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if err := filex.EnsureParentDir(dsn); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
