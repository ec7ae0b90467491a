// Package handlers exposes the history backend over HTTP.
//
// Routes:
//
//	GET  /ping             liveness, no credential
//	GET  /history          {"data": [ScanEvent...]}, newest first
//	POST /history/append   201 with the stored ScanEvent
//	GET  /codes            {"items": [Code...]}, newest first
//	POST /codes/create     204, whether or not the content was new
//
// Every route but /ping requires "Authorization: Bearer <jwt>"; the token
// subject is the device the request is scoped to.
package handlers

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/qrscan/internal/logging"
	"github.com/dmitrijs2005/qrscan/internal/server/models"
	"github.com/dmitrijs2005/qrscan/internal/server/services"
	"github.com/gorilla/mux"
)

// HistoryService is the business logic behind the routes.
// *services.HistoryService implements it.
type HistoryService interface {
	ListScans(ctx context.Context, deviceID string) ([]models.ScanEvent, error)
	AppendScan(ctx context.Context, deviceID string, in services.AppendScanInput) (*models.ScanEvent, error)
	ListCodes(ctx context.Context, deviceID string) ([]models.Code, error)
	CreateCode(ctx context.Context, deviceID, content string) (bool, error)
}

type HTTPServer struct {
	address           string
	history           HistoryService
	logger            logging.Logger
	jwtSecret         []byte
	readHeaderTimeout time.Duration
}

func NewHTTPServer(a string, l logging.Logger, hs HistoryService, secretKey string, readHeaderTimeout time.Duration) *HTTPServer {
	return &HTTPServer{
		address:           a,
		logger:            l.With("module", "http_server"),
		history:           hs,
		jwtSecret:         []byte(secretKey),
		readHeaderTimeout: readHeaderTimeout,
	}
}

// Router builds the route table.
func (s *HTTPServer) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/ping", s.ping).Methods(http.MethodGet)

	api := r.NewRoute().Subrouter()
	api.Use(s.accessTokenMiddleware)
	api.HandleFunc("/history", s.listScans).Methods(http.MethodGet)
	api.HandleFunc("/history/append", s.appendScan).Methods(http.MethodPost)
	api.HandleFunc("/codes", s.listCodes).Methods(http.MethodGet)
	api.HandleFunc("/codes/create", s.createCode).Methods(http.MethodPost)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *HTTPServer) serve(ctx context.Context, listen net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: s.readHeaderTimeout,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cancel()
		<-stopped
		return err
	}
	<-stopped

	return nil
}
