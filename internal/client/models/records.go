// Package models defines the client-side history records and the metadata
// passed when a new local event is recorded.
//
// Scans and created codes are independent entity types: they come from
// different endpoints, carry different fields and are deduplicated in
// separate key sets.
package models

import "time"

// DefaultScanCategory is the event category sent for decoded scans.
const DefaultScanCategory = "scan"

// ScanRecord is a scan the remote activity log has durably accepted.
type ScanRecord struct {
	ID string
	// Code is the decoded payload text and the canonical dedup key.
	Code          string
	EventCategory string
	EventLabel    string
	Timestamp     time.Time
}

// Key returns the canonical dedup key.
func (r ScanRecord) Key() string { return r.Code }

// CreatedCodeRecord is a code the user generated and the remote accepted.
type CreatedCodeRecord struct {
	ID string
	// Content is the payload encoded into the generated code and the
	// canonical dedup key.
	Content string
	// ImageRef points at the rendered image produced by the renderer.
	ImageRef  string
	Timestamp time.Time
}

// Key returns the canonical dedup key.
func (r CreatedCodeRecord) Key() string { return r.Content }

// ScanEvent is the metadata attached to a scan append.
type ScanEvent struct {
	Category string
	Label    string
}

// WithDefaults fills Category and Label when empty. Label defaults to the
// scanned code so a reload can recover the key from eventName.
func (e ScanEvent) WithDefaults(code string) ScanEvent {
	if e.Category == "" {
		e.Category = DefaultScanCategory
	}
	if e.Label == "" {
		e.Label = code
	}
	return e
}

// CodeEvent is the metadata attached to a created-code append.
type CodeEvent struct {
	ImageRef string
}
