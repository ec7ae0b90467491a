package scans

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/qrscan/internal/client/models"
	"github.com/dmitrijs2005/qrscan/internal/dbx"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.ScanRecord, error) {
	query := `select id, code, event_category, event_label, ts from scans order by position`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select scans: %w", err)
	}
	defer rows.Close()

	var result []models.ScanRecord
	for rows.Next() {
		var (
			item models.ScanRecord
			ts   string
		)
		if err := rows.Scan(&item.ID, &item.Code, &item.EventCategory, &item.EventLabel, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan scans row: %w", err)
		}
		item.Timestamp = dbx.ParseTime(ts)
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scans rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) ReplaceAll(ctx context.Context, records []models.ScanRecord) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `delete from scans`); err != nil {
			return fmt.Errorf("failed to clear scans: %w", err)
		}
		query := `insert into scans (position, id, code, event_category, event_label, ts) values (?, ?, ?, ?, ?, ?)`
		for i, rec := range records {
			_, err := tx.ExecContext(ctx, query, i, rec.ID, rec.Code, rec.EventCategory, rec.EventLabel, dbx.FormatTime(rec.Timestamp))
			if err != nil {
				return fmt.Errorf("failed to insert scan %q: %w", rec.Code, err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) Prepend(ctx context.Context, rec models.ScanRecord) error {
	query := `insert into scans (position, id, code, event_category, event_label, ts)
		select coalesce(min(position), 0) - 1, ?, ?, ?, ?, ? from scans`
	_, err := r.db.ExecContext(ctx, query, rec.ID, rec.Code, rec.EventCategory, rec.EventLabel, dbx.FormatTime(rec.Timestamp))
	if err != nil {
		return fmt.Errorf("failed to insert scan %q: %w", rec.Code, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, code string) error {
	res, err := r.db.ExecContext(ctx, `delete from scans where code = ?`, code)
	if err != nil {
		return fmt.Errorf("failed to delete scan: %w", err)
	}
	return dbx.ExpectOne(res)
}
