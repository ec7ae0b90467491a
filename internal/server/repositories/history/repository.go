package history

import (
	"context"

	"github.com/dmitrijs2005/qrscan/internal/server/models"
)

// Repository stores scan events per device.
type Repository interface {
	// List returns the device's events, newest first.
	List(ctx context.Context, deviceID string) ([]models.ScanEvent, error)
	// Append stores e and fills its ID and CreatedAt.
	Append(ctx context.Context, e *models.ScanEvent) (*models.ScanEvent, error)
}
