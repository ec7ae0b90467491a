package capture

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/dmitrijs2005/qrscan/internal/clockx"
	"github.com/dmitrijs2005/qrscan/internal/common"
	"github.com/dmitrijs2005/qrscan/internal/logging"
)

const (
	// DefaultCooldown is the window after a detection during which no
	// further detection is dispatched.
	DefaultCooldown = 2 * time.Second

	// MinZoom is the lower zoom bound; the upper bound is Device.MaxZoom.
	MinZoom = 1.0
)

// Controller owns one live decoding session. Create one per capture view
// and drop it with the view.
type Controller struct {
	dev      Device
	auth     Authorizer
	clock    clockx.Clock
	log      logging.Logger
	cooldown time.Duration

	// configMu serializes zoom/torch changes; the hardware bracket itself
	// is Device.LockForConfiguration.
	configMu sync.Mutex

	mu            sync.Mutex
	state         State
	cooldownUntil time.Time
	cooldownGen   uint64
	cooldownTimer clockx.Timer
	zoom          float64
	torch         bool
	onDetected    func(payload string)
	onTransition  func(from, to State)
}

// Option customizes a Controller.
type Option func(*Controller)

// WithCooldown overrides DefaultCooldown.
func WithCooldown(d time.Duration) Option {
	return func(c *Controller) { c.cooldown = d }
}

// WithLogger sets the controller logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// NewController returns an idle controller for dev.
func NewController(dev Device, auth Authorizer, clk clockx.Clock, opts ...Option) *Controller {
	c := &Controller{
		dev:      dev,
		auth:     auth,
		clock:    clk,
		log:      logging.Nop(),
		cooldown: DefaultCooldown,
		state:    StateIdle,
		zoom:     MinZoom,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnDetected registers the detection callback. It runs on the goroutine
// that delivered the frame, outside the controller lock.
func (c *Controller) OnDetected(fn func(payload string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onDetected = fn
}

// OnTransition registers an observer for state changes. The observer is
// called with the controller lock held and must not call back into it.
func (c *Controller) OnTransition(fn func(from, to State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onTransition = fn
}

// State returns the current session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Zoom returns the last zoom factor applied to the device.
func (c *Controller) Zoom() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zoom
}

// TorchOn reports whether the torch is lit.
func (c *Controller) TorchOn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.torch
}

// CooldownUntil returns the end of the current cooldown window, or the zero
// time outside a cooldown.
func (c *Controller) CooldownUntil() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateCooldown {
		return time.Time{}
	}
	return c.cooldownUntil
}

// Activate starts (or restarts) the session. The first activation goes
// through permission acquisition; a stopped session restarts directly while
// permission is still granted. Once denied, every call fails with
// common.ErrPermissionDenied.
func (c *Controller) Activate(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case StateDenied:
		c.mu.Unlock()
		return common.ErrPermissionDenied
	case StateRunning, StateDetecting, StateCooldown, StateRequestingPermission:
		c.mu.Unlock()
		return nil
	case StateStopped:
		if c.auth.Status() == PermissionGranted {
			err := c.startLocked(ctx)
			c.mu.Unlock()
			return err
		}
	}
	prev := c.state
	c.setStateLocked(StateRequestingPermission)
	c.mu.Unlock()

	granted, err := c.acquirePermission(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateRequestingPermission {
		// Deactivated while the prompt was up.
		return nil
	}
	if err != nil {
		c.setStateLocked(prev)
		return fmt.Errorf("permission request failed: %w", err)
	}
	if !granted {
		c.setStateLocked(StateDenied)
		c.log.Warn(ctx, "camera permission denied")
		return common.ErrPermissionDenied
	}
	return c.startLocked(ctx)
}

func (c *Controller) acquirePermission(ctx context.Context) (bool, error) {
	switch c.auth.Status() {
	case PermissionGranted:
		return true, nil
	case PermissionDenied, PermissionRestricted:
		return false, nil
	default:
		return c.auth.Request(ctx)
	}
}

func (c *Controller) startLocked(ctx context.Context) error {
	if err := c.dev.Start(); err != nil {
		c.setStateLocked(StateStopped)
		return fmt.Errorf("start capture: %w", err)
	}
	c.setStateLocked(StateRunning)
	c.log.Debug(ctx, "capture running")
	return nil
}

// Deactivate stops the session. It is a no-op when nothing is running.
func (c *Controller) Deactivate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateRunning, StateDetecting, StateCooldown:
		c.stopCooldownLocked()
		c.dev.Stop()
		c.setStateLocked(StateStopped)
	case StateRequestingPermission:
		c.setStateLocked(StateStopped)
	}
}

// HandleFrame is called by the decoding pipeline for every decoded payload.
// Only a running session dispatches; frames arriving during detection or
// cooldown are dropped. It reports whether the payload was dispatched.
func (c *Controller) HandleFrame(payload string) bool {
	c.mu.Lock()
	if c.state != StateRunning {
		c.mu.Unlock()
		return false
	}
	c.setStateLocked(StateDetecting)
	handler := c.onDetected
	c.mu.Unlock()

	if handler != nil {
		handler(payload)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateDetecting {
		return true
	}
	c.cooldownGen++
	gen := c.cooldownGen
	c.cooldownUntil = c.clock.Now().Add(c.cooldown)
	c.cooldownTimer = c.clock.AfterFunc(c.cooldown, func() { c.finishCooldown(gen) })
	c.setStateLocked(StateCooldown)
	return true
}

func (c *Controller) finishCooldown(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateCooldown || c.cooldownGen != gen {
		return
	}
	c.cooldownTimer = nil
	c.setStateLocked(StateRunning)
}

// Resume ends the cooldown if its window has elapsed. Calls made before the
// window ends are ignored; the cooldown timer resumes the session then.
func (c *Controller) Resume() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateCooldown {
		return c.state == StateRunning
	}
	if c.clock.Now().Before(c.cooldownUntil) {
		return false
	}
	c.stopCooldownLocked()
	c.setStateLocked(StateRunning)
	return true
}

func (c *Controller) stopCooldownLocked() {
	if c.cooldownTimer != nil {
		c.cooldownTimer.Stop()
		c.cooldownTimer = nil
	}
	c.cooldownGen++
}

// SetZoom clamps factor into [MinZoom, Device.MaxZoom] and applies it.
// Out-of-range input is clamped, not rejected. NaN maps to MinZoom. A configuration lock failure
// leaves the previous zoom in place.
func (c *Controller) SetZoom(factor float64) (float64, error) {
	c.configMu.Lock()
	defer c.configMu.Unlock()

	effective := clamp(factor, MinZoom, c.dev.MaxZoom())

	if err := c.dev.LockForConfiguration(); err != nil {
		return c.Zoom(), fmt.Errorf("set zoom: %w: %w", common.ErrLockUnavailable, err)
	}
	c.dev.ApplyZoom(effective)
	c.dev.UnlockForConfiguration()

	c.mu.Lock()
	c.zoom = effective
	c.mu.Unlock()
	return effective, nil
}

// ToggleTorch flips the torch and returns the new setting. Devices without
// a torch fail with common.ErrCapabilityUnsupported.
func (c *Controller) ToggleTorch() (bool, error) {
	c.configMu.Lock()
	defer c.configMu.Unlock()

	current := c.TorchOn()
	if !c.dev.HasTorch() {
		return current, common.ErrCapabilityUnsupported
	}

	if err := c.dev.LockForConfiguration(); err != nil {
		return current, fmt.Errorf("toggle torch: %w: %w", common.ErrLockUnavailable, err)
	}
	err := c.dev.ApplyTorch(!current)
	c.dev.UnlockForConfiguration()
	if err != nil {
		return current, fmt.Errorf("toggle torch: %w", err)
	}

	c.mu.Lock()
	c.torch = !current
	c.mu.Unlock()
	return !current, nil
}

// RemediationPrompt describes how to recover from a denial. ok is false
// unless the session is denied.
func (c *Controller) RemediationPrompt() (p Remediation, ok bool) {
	if c.State() != StateDenied {
		return Remediation{}, false
	}
	return Remediation{
		Title:       "Camera access needed",
		Message:     "Scanning needs camera access. Enable it in system settings and reopen the scanner.",
		SettingsURI: SettingsURI,
	}, true
}

func (c *Controller) setStateLocked(s State) {
	if c.state == s {
		return
	}
	from := c.state
	c.state = s
	if c.onTransition != nil {
		c.onTransition(from, s)
	}
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo || math.IsNaN(hi) {
		hi = lo
	}
	if v < lo || math.IsNaN(v) {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
