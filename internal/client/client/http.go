package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/qrscan/internal/client/credentials"
	"github.com/dmitrijs2005/qrscan/internal/client/models"
	"github.com/dmitrijs2005/qrscan/internal/clockx"
	"github.com/dmitrijs2005/qrscan/internal/common"
	"github.com/dmitrijs2005/qrscan/internal/logging"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	PathHistory       = "/history"
	PathHistoryAppend = "/history/append"
	PathCodes         = "/codes"
	PathCodesCreate   = "/codes/create"

	maxBodySize = 4 << 20
	tracerName  = "qrscan/history"
)

// HTTPClient talks to the remote activity log over HTTP+JSON.
type HTTPClient struct {
	baseURL  string
	creds    credentials.Provider
	deviceID string
	platform string

	http   *retryablehttp.Client
	clock  clockx.Clock
	log    logging.Logger
	tracer trace.Tracer
}

type Option func(*HTTPClient)

// WithRetryMax sets how many times a failed request is retried. The default
// is zero: sync failures surface immediately.
func WithRetryMax(n int) Option {
	return func(c *HTTPClient) { c.http.RetryMax = n }
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http.HTTPClient = hc }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) {
		c.log = l
		c.http.Logger = leveledLogger{l: l}
	}
}

func WithClock(clk clockx.Clock) Option {
	return func(c *HTTPClient) { c.clock = clk }
}

// WithTracerProvider sets where call spans go. The default is the global
// provider installed by otelx.Init.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *HTTPClient) { c.tracer = tp.Tracer(tracerName) }
}

// NewHTTPClient returns a client for baseURL identifying as deviceID.
func NewHTTPClient(baseURL string, creds credentials.Provider, deviceID, platform string, opts ...Option) *HTTPClient {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 0
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	c := &HTTPClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		creds:    creds,
		deviceID: deviceID,
		platform: platform,
		http:     rc,
		clock:    clockx.Real(),
		tracer:   otel.Tracer(tracerName),
	}
	WithLogger(logging.Nop())(c)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// call tracks one request through the phases.
type call struct {
	op    string
	phase Phase
	log   logging.Logger
	span  trace.Span
}

func (c *call) enter(ctx context.Context, p Phase) {
	c.log.Debug(ctx, "call phase", "op", c.op, "from", c.phase.String(), "to", p.String())
	c.phase = p
	c.span.AddEvent(p.String())
}

func (c *call) fail(ctx context.Context, p Phase, status int, err error) error {
	c.enter(ctx, p)
	ce := &CallError{Op: c.op, Phase: p, Status: status, Err: err}
	c.span.RecordError(ce)
	c.span.SetStatus(codes.Error, ce.Error())
	c.span.End()
	c.log.Warn(ctx, "remote call failed", "op", c.op, "phase", p.String(), "status", status, "error", err)
	return ce
}

// do runs the credential -> request -> response sequence and returns the
// body of a 2xx response. On success the caller finishes the call with
// complete or fail(PhaseParseFailed); on error the call is already closed.
func (h *HTTPClient) do(ctx context.Context, op, method, path string, payload any) (*call, []byte, error) {
	ctx, span := h.tracer.Start(ctx, "history."+op, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", path),
	)
	c := &call{op: op, phase: PhaseNotStarted, log: h.log, span: span}

	c.enter(ctx, PhaseCredentialPending)
	token, err := h.creds.Token(ctx)
	if err != nil {
		if !errors.Is(err, common.ErrAuthCredentialUnavailable) {
			err = fmt.Errorf("%w: %w", common.ErrAuthCredentialUnavailable, err)
		}
		return c, nil, c.fail(ctx, PhaseCredentialFailed, 0, err)
	}
	if token == "" {
		return c, nil, c.fail(ctx, PhaseCredentialFailed, 0, common.ErrAuthCredentialUnavailable)
	}

	c.enter(ctx, PhaseRequesting)
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return c, nil, c.fail(ctx, PhaseNetworkFailed, 0, fmt.Errorf("%w: encode request: %w", common.ErrNetworkFailure, err))
		}
		body = bytes.NewReader(raw)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, h.baseURL+path, body)
	if err != nil {
		return c, nil, c.fail(ctx, PhaseNetworkFailed, 0, fmt.Errorf("%w: %w", common.ErrNetworkFailure, err))
	}
	req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := h.http.Do(req)
	if err != nil {
		return c, nil, c.fail(ctx, PhaseNetworkFailed, 0, fmt.Errorf("%w: %w", common.ErrNetworkFailure, err))
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return c, nil, c.fail(ctx, PhaseNetworkFailed, resp.StatusCode, fmt.Errorf("%w: read body: %w", common.ErrNetworkFailure, err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("%w: unexpected status %d", common.ErrNetworkFailure, resp.StatusCode)
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			err = fmt.Errorf("%w: %w", err, common.ErrorUnauthorized)
		}
		return c, nil, c.fail(ctx, PhaseNetworkFailed, resp.StatusCode, err)
	}

	c.enter(ctx, PhaseResponded)
	return c, raw, nil
}

func (c *call) complete(ctx context.Context) {
	c.enter(ctx, PhaseCompleted)
	c.span.SetStatus(codes.Ok, "")
	c.span.End()
}

func (h *HTTPClient) fetch(ctx context.Context, op, path string) (*call, []gjson.Result, error) {
	c, body, err := h.do(ctx, op, http.MethodGet, path, nil)
	if err != nil {
		return c, nil, err
	}
	entries, shape, err := MatchCollection(body)
	if err != nil {
		return c, nil, c.fail(ctx, PhaseParseFailed, 0, err)
	}
	c.span.SetAttributes(attribute.String("history.shape", shape), attribute.Int("history.entries", len(entries)))
	return c, entries, nil
}

func (h *HTTPClient) FetchScans(ctx context.Context) ([]models.ScanRecord, error) {
	c, entries, err := h.fetch(ctx, "fetchScans", PathHistory)
	if err != nil {
		return nil, err
	}
	records, dropped := decodeAll(entries, decodeScan)
	if dropped > 0 {
		h.log.Debug(ctx, "dropped malformed scan entries", "count", dropped)
	}
	c.complete(ctx)
	return records, nil
}

func (h *HTTPClient) FetchCodes(ctx context.Context) ([]models.CreatedCodeRecord, error) {
	c, entries, err := h.fetch(ctx, "fetchCodes", PathCodes)
	if err != nil {
		return nil, err
	}
	records, dropped := decodeAll(entries, decodeCode)
	if dropped > 0 {
		h.log.Debug(ctx, "dropped malformed code entries", "count", dropped)
	}
	c.complete(ctx)
	return records, nil
}

type appendScanBody struct {
	Code          string `json:"code"`
	DeviceID      string `json:"deviceId"`
	Platform      string `json:"platform"`
	EventCategory string `json:"eventCategory"`
	EventName     string `json:"eventName"`
}

// AppendScan appends a scan. On a 2xx the returned record carries the id
// and timestamp echoed by the remote when present, else local values.
func (h *HTTPClient) AppendScan(ctx context.Context, req AppendScanRequest) (models.ScanRecord, error) {
	c, body, err := h.do(ctx, "appendScan", http.MethodPost, PathHistoryAppend, appendScanBody{
		Code:          req.Code,
		DeviceID:      h.deviceID,
		Platform:      h.platform,
		EventCategory: req.EventCategory,
		EventName:     req.EventName,
	})
	if err != nil {
		return models.ScanRecord{}, err
	}

	rec := models.ScanRecord{
		ID:            uuid.NewString(),
		Code:          req.Code,
		EventCategory: req.EventCategory,
		EventLabel:    req.EventName,
		Timestamp:     h.clock.Now(),
	}
	h.applyEcho(body, &rec.ID, &rec.Timestamp)
	c.complete(ctx)
	return rec, nil
}

type createCodeBody struct {
	Content string `json:"content"`
}

// CreateCode registers a created code. 204 No Content is success.
func (h *HTTPClient) CreateCode(ctx context.Context, req CreateCodeRequest) (models.CreatedCodeRecord, error) {
	c, body, err := h.do(ctx, "createCode", http.MethodPost, PathCodesCreate, createCodeBody{Content: req.Content})
	if err != nil {
		return models.CreatedCodeRecord{}, err
	}

	rec := models.CreatedCodeRecord{
		ID:        uuid.NewString(),
		Content:   req.Content,
		ImageRef:  req.ImageRef,
		Timestamp: h.clock.Now(),
	}
	h.applyEcho(body, &rec.ID, &rec.Timestamp)
	c.complete(ctx)
	return rec, nil
}

// applyEcho copies id and timestamp from an optional object response, bare
// or wrapped in "data".
func (h *HTTPClient) applyEcho(body []byte, id *string, ts *time.Time) {
	if len(bytes.TrimSpace(body)) == 0 || !gjson.ValidBytes(body) {
		return
	}
	root := gjson.ParseBytes(body)
	if d := root.Get("data"); d.IsObject() {
		root = d
	}
	if !root.IsObject() {
		return
	}
	if v := firstScalar(root, "id", "_id"); v != "" {
		*id = v
	}
	if t := parseTimestamp(firstScalar(root, "createdAt", "updatedAt", "timestamp")); !t.IsZero() {
		*ts = t
	}
}
