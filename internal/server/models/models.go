// Package models defines the rows stored by the history backend.
package models

import "time"

// ScanEvent is one accepted scan in a device's activity log.
type ScanEvent struct {
	ID            string    `db:"id" json:"id"`
	DeviceID      string    `db:"device_id" json:"deviceId"`
	Platform      string    `db:"platform" json:"platform,omitempty"`
	Code          string    `db:"code" json:"code"`
	EventCategory string    `db:"event_category" json:"eventCategory"`
	EventName     string    `db:"event_name" json:"eventName"`
	CreatedAt     time.Time `db:"created_at" json:"timestamp"`
}

// Code is a code a device generated.
type Code struct {
	ID        string    `db:"id" json:"id"`
	DeviceID  string    `db:"device_id" json:"-"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
