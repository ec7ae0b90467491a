package scans

import (
	"context"

	"github.com/dmitrijs2005/qrscan/internal/client/models"
)

// Repository is the scan cache.
type Repository interface {
	// List returns the cached scans, head first.
	List(ctx context.Context) ([]models.ScanRecord, error)

	// ReplaceAll swaps the whole cache for records, keeping their order.
	ReplaceAll(ctx context.Context, records []models.ScanRecord) error

	// Prepend stores r at the head.
	Prepend(ctx context.Context, r models.ScanRecord) error

	// Delete removes the scan with the given code. Missing codes yield
	// common.ErrorNotFound.
	Delete(ctx context.Context, code string) error
}
