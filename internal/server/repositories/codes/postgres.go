package codes

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/qrscan/internal/dbx"
	"github.com/dmitrijs2005/qrscan/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, deviceID string) ([]models.Code, error) {
	query :=
		`SELECT id, device_id, content, created_at
		 FROM codes
		 WHERE device_id = $1
		 ORDER BY created_at DESC, id DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, deviceID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	codes := make([]models.Code, 0)
	for rows.Next() {
		var c models.Code
		if err := rows.Scan(&c.ID, &c.DeviceID, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		codes = append(codes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return codes, nil
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Code) (bool, error) {
	query :=
		`INSERT INTO codes (device_id, content)
         VALUES ($1, $2)
		 ON CONFLICT (device_id, content) DO NOTHING
		 `

	res, err := r.db.ExecContext(ctx, query, c.DeviceID, c.Content)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}

	return n == 1, nil
}
