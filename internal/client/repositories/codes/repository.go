// Package codes persists the local cache of created codes. It mirrors
// package scans with its own table and key column (content).
package codes

import (
	"context"

	"github.com/dmitrijs2005/qrscan/internal/client/models"
)

type Repository interface {
	List(ctx context.Context) ([]models.CreatedCodeRecord, error)
	ReplaceAll(ctx context.Context, records []models.CreatedCodeRecord) error
	Prepend(ctx context.Context, r models.CreatedCodeRecord) error
	Delete(ctx context.Context, content string) error
}
