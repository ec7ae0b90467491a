package history

import "errors"

var (
	// ErrStaleResponse is returned by LoadRemote when a newer reload was
	// applied first. Local state is left as the newer reload set it.
	ErrStaleResponse = errors.New("stale remote response discarded")

	ErrEmptyKey = errors.New("empty record key")
	ErrClosed   = errors.New("history engine closed")
)
