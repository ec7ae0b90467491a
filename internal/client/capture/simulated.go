package capture

import (
	"context"
	"errors"
	"sync"
)

var ErrAlreadyLocked = errors.New("configuration already locked")

// SimulatedDevice is an in-memory camera used by the terminal harness,
// where decoded frames arrive on stdin instead of from a sensor.
type SimulatedDevice struct {
	MaxZoomFactor float64
	Torch         bool
	// LockErr, when set, is returned by LockForConfiguration.
	LockErr error
	// TorchErr, when set, is returned by ApplyTorch.
	TorchErr error

	mu      sync.Mutex
	started bool
	locked  bool
	zoom    float64
	torchOn bool
	starts  int
}

func (d *SimulatedDevice) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.started = true
	d.starts++
	return nil
}

func (d *SimulatedDevice) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.started = false
}

func (d *SimulatedDevice) MaxZoom() float64 { return d.MaxZoomFactor }

func (d *SimulatedDevice) HasTorch() bool { return d.Torch }

func (d *SimulatedDevice) LockForConfiguration() error {
	if d.LockErr != nil {
		return d.LockErr
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.locked {
		return ErrAlreadyLocked
	}
	d.locked = true
	return nil
}

func (d *SimulatedDevice) UnlockForConfiguration() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.locked = false
}

func (d *SimulatedDevice) ApplyZoom(factor float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.zoom = factor
}

func (d *SimulatedDevice) ApplyTorch(on bool) error {
	if d.TorchErr != nil {
		return d.TorchErr
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.torchOn = on
	return nil
}

// Running reports whether Start was called without a later Stop.
func (d *SimulatedDevice) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.started
}

// Starts counts Start calls.
func (d *SimulatedDevice) Starts() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.starts
}

// Locked reports whether the configuration lock is held.
func (d *SimulatedDevice) Locked() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.locked
}

// AppliedZoom is the last zoom factor pushed to the hardware.
func (d *SimulatedDevice) AppliedZoom() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.zoom
}

// StaticAuthorizer answers permission checks from fixed values.
type StaticAuthorizer struct {
	mu       sync.Mutex
	status   PermissionStatus
	grant    bool
	requests int
}

// NewStaticAuthorizer starts in status and answers prompts with grant.
func NewStaticAuthorizer(status PermissionStatus, grant bool) *StaticAuthorizer {
	return &StaticAuthorizer{status: status, grant: grant}
}

func (a *StaticAuthorizer) Status() PermissionStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

func (a *StaticAuthorizer) Request(ctx context.Context) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.requests++
	if a.grant {
		a.status = PermissionGranted
	} else {
		a.status = PermissionDenied
	}
	return a.grant, nil
}

// SetStatus simulates a change made in system settings.
func (a *StaticAuthorizer) SetStatus(s PermissionStatus) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status = s
}

// Requests counts system prompts shown.
func (a *StaticAuthorizer) Requests() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.requests
}
