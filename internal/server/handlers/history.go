package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/qrscan/internal/common"
	"github.com/dmitrijs2005/qrscan/internal/server/models"
	"github.com/dmitrijs2005/qrscan/internal/server/services"
)

type appendScanRequest struct {
	Code          string `json:"code"`
	DeviceID      string `json:"deviceId"`
	Platform      string `json:"platform"`
	EventCategory string `json:"eventCategory"`
	EventName     string `json:"eventName"`
}

type createCodeRequest struct {
	Content string `json:"content"`
}

func (s *HTTPServer) ping(w http.ResponseWriter, r *http.Request) {
	if _, err := fmt.Fprintln(w, "OK"); err != nil {
		s.logger.Debug(r.Context(), "ping write failed", "error", err)
	}
}

func (s *HTTPServer) listScans(w http.ResponseWriter, r *http.Request) {
	events, err := s.history.ListScans(r.Context(), deviceIDFrom(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if events == nil {
		events = []models.ScanEvent{}
	}
	s.writeJSON(w, r, http.StatusOK, map[string]any{"data": events})
}

func (s *HTTPServer) appendScan(w http.ResponseWriter, r *http.Request) {
	var req appendScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed body", http.StatusBadRequest)
		return
	}

	e, err := s.history.AppendScan(r.Context(), deviceIDFrom(r.Context()), services.AppendScanInput{
		DeviceID:      req.DeviceID,
		Platform:      req.Platform,
		Code:          req.Code,
		EventCategory: req.EventCategory,
		EventName:     req.EventName,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, e)
}

func (s *HTTPServer) listCodes(w http.ResponseWriter, r *http.Request) {
	codes, err := s.history.ListCodes(r.Context(), deviceIDFrom(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if codes == nil {
		codes = []models.Code{}
	}
	s.writeJSON(w, r, http.StatusOK, map[string]any{"items": codes})
}

func (s *HTTPServer) createCode(w http.ResponseWriter, r *http.Request) {
	var req createCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed body", http.StatusBadRequest)
		return
	}

	if _, err := s.history.CreateCode(r.Context(), deviceIDFrom(r.Context()), req.Content); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// fail maps service errors to statuses. Unknown errors are logged and
// reported as 500 without detail.
func (s *HTTPServer) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorEmptyCode), errors.Is(err, common.ErrorEmptyContent):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, common.ErrorForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error(r.Context(), "encode response", "error", err)
	}
}
