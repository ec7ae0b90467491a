// Package history is the PostgreSQL store of scan events.
package history

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

func (r *PostgresRepository) List(ctx context.Context, deviceID string) ([]models.ScanEvent, error) {
	query :=
		`SELECT id, device_id, platform, code, event_category, event_name, created_at
		 FROM scan_events
		 WHERE device_id = $1
		 ORDER BY created_at DESC, id DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, deviceID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	events := make([]models.ScanEvent, 0)
	for rows.Next() {
		var e models.ScanEvent
		if err := rows.Scan(&e.ID, &e.DeviceID, &e.Platform, &e.Code, &e.EventCategory, &e.EventName, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return events, nil
}

func (r *PostgresRepository) Append(ctx context.Context, e *models.ScanEvent) (*models.ScanEvent, error) {
	query :=
		`INSERT INTO scan_events (device_id, platform, code, event_category, event_name)
         VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		e.DeviceID, e.Platform, e.Code, e.EventCategory, e.EventName).Scan(&e.ID, &e.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return e, nil
}
