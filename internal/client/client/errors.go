package client

import (
	"errors"
	"fmt"
)

// Phase is a step of a remote call.
//
//	NotStarted -> CredentialPending -> CredentialFailed | Requesting
//	Requesting -> NetworkFailed | Responded
//	Responded  -> ParseFailed | Completed
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseCredentialPending
	PhaseCredentialFailed
	PhaseRequesting
	PhaseNetworkFailed
	PhaseResponded
	PhaseParseFailed
	PhaseCompleted
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "notStarted"
	case PhaseCredentialPending:
		return "credentialPending"
	case PhaseCredentialFailed:
		return "credentialFailed"
	case PhaseRequesting:
		return "requesting"
	case PhaseNetworkFailed:
		return "networkFailed"
	case PhaseResponded:
		return "responded"
	case PhaseParseFailed:
		return "parseFailed"
	case PhaseCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition follows p.
func (p Phase) Terminal() bool {
	switch p {
	case PhaseCredentialFailed, PhaseNetworkFailed, PhaseParseFailed, PhaseCompleted:
		return true
	}
	return false
}

// CallError is a failed remote call. It unwraps to one of
// common.ErrAuthCredentialUnavailable, common.ErrNetworkFailure or
// common.ErrInvalidResponseShape.
type CallError struct {
	Op     string
	Phase  Phase
	Status int
	Err    error
}

func (e *CallError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d): %v", e.Op, e.Phase, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Phase, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

// PhaseOf returns the terminal phase recorded in err, or PhaseNotStarted.
func PhaseOf(err error) Phase {
	var ce *CallError
	if errors.As(err, &ce) {
		return ce.Phase
	}
	return PhaseNotStarted
}
