package capture

import "context"

// State is the capture session state.
type State int

const (
	StateIdle State = iota
	StateRequestingPermission
	StateDenied
	StateRunning
	StateDetecting
	StateCooldown
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequestingPermission:
		return "requestingPermission"
	case StateDenied:
		return "denied"
	case StateRunning:
		return "running"
	case StateDetecting:
		return "detecting"
	case StateCooldown:
		return "cooldown"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// PermissionStatus mirrors the platform camera authorization status.
type PermissionStatus int

const (
	PermissionNotDetermined PermissionStatus = iota
	PermissionGranted
	PermissionDenied
	PermissionRestricted
)

// Authorizer is the platform permission capability.
type Authorizer interface {
	Status() PermissionStatus
	// Request shows the system prompt and reports whether access was granted.
	Request(ctx context.Context) (bool, error)
}

// Device is the camera hardware handle. Configuration calls (ApplyZoom,
// ApplyTorch) are only made between LockForConfiguration and
// UnlockForConfiguration.
type Device interface {
	Start() error
	Stop()
	MaxZoom() float64
	HasTorch() bool
	LockForConfiguration() error
	UnlockForConfiguration()
	ApplyZoom(factor float64)
	ApplyTorch(on bool) error
}

// SettingsURI opens the app's page in system settings.
const SettingsURI = "app-settings:"

// Remediation is the blocking prompt shown after a permission denial.
type Remediation struct {
	Title       string
	Message     string
	SettingsURI string
}
