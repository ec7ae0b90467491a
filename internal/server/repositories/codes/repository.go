// Package codes is the PostgreSQL store of generated codes.
package codes

import (
	"context"

	"github.com/dmitrijs2005/qrscan/internal/server/models"
)

type Repository interface {
	List(ctx context.Context, deviceID string) ([]models.Code, error)
	// Create stores c. Content already stored for the device is kept as is
	// and reported as created=false.
	Create(ctx context.Context, c *models.Code) (created bool, err error)
}
