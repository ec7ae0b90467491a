package codes

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

func (r *SQLiteRepository) List(ctx context.Context) ([]models.CreatedCodeRecord, error) {
	rows, err := r.db.QueryContext(ctx, `select id, content, image_ref, ts from codes order by position`)
	if err != nil {
		return nil, fmt.Errorf("failed to select codes: %w", err)
	}
	defer rows.Close()

	var result []models.CreatedCodeRecord
	for rows.Next() {
		var (
			item models.CreatedCodeRecord
			ts   string
		)
		if err := rows.Scan(&item.ID, &item.Content, &item.ImageRef, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan codes row: %w", err)
		}
		item.Timestamp = dbx.ParseTime(ts)
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate codes rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) ReplaceAll(ctx context.Context, records []models.CreatedCodeRecord) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `delete from codes`); err != nil {
			return fmt.Errorf("failed to clear codes: %w", err)
		}
		for i, rec := range records {
			if err := insert(ctx, tx, i, rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) Prepend(ctx context.Context, rec models.CreatedCodeRecord) error {
	var head int
	if err := r.db.QueryRowContext(ctx, `select coalesce(min(position), 0) from codes`).Scan(&head); err != nil {
		return fmt.Errorf("failed to read codes head: %w", err)
	}
	return insert(ctx, r.db, head-1, rec)
}

func (r *SQLiteRepository) Delete(ctx context.Context, content string) error {
	res, err := r.db.ExecContext(ctx, `delete from codes where content = ?`, content)
	if err != nil {
		return fmt.Errorf("failed to delete code: %w", err)
	}
	return dbx.ExpectOne(res)
}

func insert(ctx context.Context, db dbx.DBTX, position int, rec models.CreatedCodeRecord) error {
	query := `insert into codes (position, id, content, image_ref, ts) values (?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query, position, rec.ID, rec.Content, rec.ImageRef, dbx.FormatTime(rec.Timestamp))
	if err != nil {
		return fmt.Errorf("failed to insert code %q: %w", rec.Content, err)
	}
	return nil
}
