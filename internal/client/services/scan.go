package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/qrscan/internal/client/dispatch"
	"github.com/dmitrijs2005/qrscan/internal/client/models"
	"github.com/dmitrijs2005/qrscan/internal/client/redirect"
	"github.com/dmitrijs2005/qrscan/internal/logging"
)

// Classifier classifies payloads.
type Classifier interface {
	Classify(payload string) dispatch.Classification
}

// Resolver performs the external action for a classification.
type Resolver interface {
	Resolve(ctx context.Context, c dispatch.Classification) (redirect.Outcome, error)
}

// ScanRecorder records a scan in history. *history.Scans implements it.
type ScanRecorder interface {
	RecordLocalEvent(ctx context.Context, key string, meta models.ScanEvent) (bool, error)
}

// Detector is the capture side of the pipeline. *capture.Controller
// implements it.
type Detector interface {
	OnDetected(fn func(payload string))
}

// Resolution is the outcome of resolving one payload.
type Resolution struct {
	Classification dispatch.Classification
	Outcome        redirect.Outcome
	Err            error
}

// Recording is the outcome of recording one payload in history.
type Recording struct {
	Payload  string
	Inserted bool
	Err      error
}

// ScanPipeline connects detection to redirect and history.
type ScanPipeline struct {
	ctx        context.Context
	classifier Classifier
	resolver   Resolver
	recorder   ScanRecorder
	log        logging.Logger

	wg         sync.WaitGroup
	mu         sync.Mutex
	onResolved func(Resolution)
	onRecorded func(Recording)
}

// NewScanPipeline returns a pipeline whose background work runs under ctx.
func NewScanPipeline(ctx context.Context, classifier Classifier, resolver Resolver, recorder ScanRecorder, log logging.Logger) *ScanPipeline {
	if log == nil {
		log = logging.Nop()
	}
	return &ScanPipeline{
		ctx:        ctx,
		classifier: classifier,
		resolver:   resolver,
		recorder:   recorder,
		log:        log,
	}
}

// Attach subscribes the pipeline to d.
func (p *ScanPipeline) Attach(d Detector) {
	d.OnDetected(p.Handle)
}

// OnResolved registers an observer for resolutions.
func (p *ScanPipeline) OnResolved(fn func(Resolution)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onResolved = fn
}

// OnRecorded registers an observer for history recordings. It is called
// from a background goroutine.
func (p *ScanPipeline) OnRecorded(fn func(Recording)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onRecorded = fn
}

// Handle processes one detected payload. The history append starts first
// and runs concurrently with the redirect.
func (p *ScanPipeline) Handle(payload string) {
	c := p.classifier.Classify(payload)
	p.log.Info(p.ctx, "payload detected", "kind", c.Kind.String())

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		inserted, err := p.recorder.RecordLocalEvent(p.ctx, payload, models.ScanEvent{})
		if err != nil {
			p.log.Warn(p.ctx, "scan not recorded", "error", err)
		}
		p.mu.Lock()
		fn := p.onRecorded
		p.mu.Unlock()
		if fn != nil {
			fn(Recording{Payload: payload, Inserted: inserted, Err: err})
		}
	}()

	out, err := p.resolver.Resolve(p.ctx, c)
	if err != nil {
		p.log.Warn(p.ctx, "redirect failed", "kind", c.Kind.String(), "error", err)
	}
	p.mu.Lock()
	fn := p.onResolved
	p.mu.Unlock()
	if fn != nil {
		fn(Resolution{Classification: c, Outcome: out, Err: err})
	}
}

// Wait blocks until every history append started by Handle has finished.
func (p *ScanPipeline) Wait() {
	p.wg.Wait()
}
