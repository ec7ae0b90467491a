package client

import (
	"context"

	"github.com/dmitrijs2005/qrscan/internal/client/models"
)

// Client is the remote activity log. Every call obtains a fresh credential
// before touching the network and returns a *CallError on failure.
type Client interface {
	FetchScans(ctx context.Context) ([]models.ScanRecord, error)
	AppendScan(ctx context.Context, req AppendScanRequest) (models.ScanRecord, error)
	FetchCodes(ctx context.Context) ([]models.CreatedCodeRecord, error)
	CreateCode(ctx context.Context, req CreateCodeRequest) (models.CreatedCodeRecord, error)
}

// AppendScanRequest is a scan to append. The device id and platform are
// added by the client.
type AppendScanRequest struct {
	Code          string
	EventCategory string
	EventName     string
}

// CreateCodeRequest is a created code to register. ImageRef is kept locally
// only; the remote receives the content.
type CreateCodeRequest struct {
	Content  string
	ImageRef string
}
