package history

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/qrscan/internal/client/client"
	"github.com/dmitrijs2005/qrscan/internal/client/models"
	"github.com/dmitrijs2005/qrscan/internal/logging"
)

type (
	Scans = Collection[models.ScanRecord, models.ScanEvent]
	Codes = Collection[models.CreatedCodeRecord, models.CodeEvent]
)

// Engine owns the actor and both record collections.
type Engine struct {
	actor *Actor
	Scans *Scans
	Codes *Codes
}

// NewEngine starts the actor. Either cache may be nil.
func NewEngine(remote client.Client, scanCache Cache[models.ScanRecord], codeCache Cache[models.CreatedCodeRecord], log logging.Logger) *Engine {
	if log == nil {
		log = logging.Nop()
	}
	a := NewActor()
	return &Engine{
		actor: a,
		Scans: NewCollection[models.ScanRecord, models.ScanEvent]("scans", a, scanRemote{c: remote}, scanCache, log),
		Codes: NewCollection[models.CreatedCodeRecord, models.CodeEvent]("codes", a, codeRemote{c: remote}, codeCache, log),
	}
}

// Restore loads both collections from the local cache.
func (e *Engine) Restore(ctx context.Context) error {
	return errors.Join(e.Scans.Restore(ctx), e.Codes.Restore(ctx))
}

// Refresh reloads both collections from the remote. A failure of one does
// not prevent the other.
func (e *Engine) Refresh(ctx context.Context) error {
	return errors.Join(e.Scans.LoadRemote(ctx), e.Codes.LoadRemote(ctx))
}

// Close stops the actor. Later calls fail with ErrClosed.
func (e *Engine) Close() {
	e.actor.Close()
}

type scanRemote struct {
	c client.Client
}

func (r scanRemote) Fetch(ctx context.Context) ([]models.ScanRecord, error) {
	return r.c.FetchScans(ctx)
}

func (r scanRemote) Append(ctx context.Context, key string, meta models.ScanEvent) (models.ScanRecord, error) {
	meta = meta.WithDefaults(key)
	return r.c.AppendScan(ctx, client.AppendScanRequest{
		Code:          key,
		EventCategory: meta.Category,
		EventName:     meta.Label,
	})
}

type codeRemote struct {
	c client.Client
}

func (r codeRemote) Fetch(ctx context.Context) ([]models.CreatedCodeRecord, error) {
	return r.c.FetchCodes(ctx)
}

func (r codeRemote) Append(ctx context.Context, key string, meta models.CodeEvent) (models.CreatedCodeRecord, error) {
	return r.c.CreateCode(ctx, client.CreateCodeRequest{Content: key, ImageRef: meta.ImageRef})
}
