// Package services contains the history backend's business logic.
// HistoryService scopes every read and write to the device named by the
// caller's verified credential.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/qrscan/internal/common"
	"github.com/dmitrijs2005/qrscan/internal/server/models"
	"github.com/dmitrijs2005/qrscan/internal/server/repositories/repomanager"
)

// AppendScanInput is a scan event as posted by a device.
type AppendScanInput struct {
	DeviceID      string
	Platform      string
	Code          string
	EventCategory string
	EventName     string
}

type HistoryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewHistoryService(db *sql.DB, m repomanager.RepositoryManager) *HistoryService {
	return &HistoryService{db: db, repomanager: m}
}

// ListScans returns the scan events of deviceID, newest first.
func (s *HistoryService) ListScans(ctx context.Context, deviceID string) ([]models.ScanEvent, error) {
	repo := s.repomanager.History(s.db)
	events, err := repo.List(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("error listing scans: %w", err)
	}
	return events, nil
}

// AppendScan stores a scan event for deviceID. The body may name the device
// too; a different one is rejected with common.ErrorForbidden. The code is
// stored verbatim since devices key their history by it; only a blank code
// is rejected. An empty event name falls back to the code.
func (s *HistoryService) AppendScan(ctx context.Context, deviceID string, in AppendScanInput) (*models.ScanEvent, error) {
	if in.DeviceID != "" && in.DeviceID != deviceID {
		return nil, common.ErrorForbidden
	}

	code := in.Code
	if isBlank(code) {
		code = in.EventName
	}
	if isBlank(code) {
		return nil, common.ErrorEmptyCode
	}

	e := &models.ScanEvent{
		DeviceID:      deviceID,
		Platform:      in.Platform,
		Code:          code,
		EventCategory: in.EventCategory,
		EventName:     in.EventName,
	}
	if e.EventName == "" {
		e.EventName = code
	}

	repo := s.repomanager.History(s.db)
	saved, err := repo.Append(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("error appending scan: %w", err)
	}
	return saved, nil
}

// ListCodes returns the codes created by deviceID, newest first.
func (s *HistoryService) ListCodes(ctx context.Context, deviceID string) ([]models.Code, error) {
	repo := s.repomanager.Codes(s.db)
	codes, err := repo.List(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("error listing codes: %w", err)
	}
	return codes, nil
}

// CreateCode registers content verbatim for deviceID and reports whether it
// was new.
func (s *HistoryService) CreateCode(ctx context.Context, deviceID, content string) (bool, error) {
	if isBlank(content) {
		return false, common.ErrorEmptyContent
	}

	repo := s.repomanager.Codes(s.db)
	created, err := repo.Create(ctx, &models.Code{DeviceID: deviceID, Content: content})
	if err != nil {
		return false, fmt.Errorf("error creating code: %w", err)
	}
	return created, nil
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }
