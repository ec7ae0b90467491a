package server

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/qrscan/internal/logging"
	"github.com/dmitrijs2005/qrscan/internal/server/config"
	"github.com/dmitrijs2005/qrscan/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/qrscan/internal/server/services"
	"github.com/stretchr/testify/require"
)

func TestRun_StopsOnCancelAndClosesDB(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.EndpointAddr = "127.0.0.1:0"

	app := &App{
		config:         cfg,
		logger:         logging.Nop(),
		db:             db,
		historyService: services.NewHistoryService(db, repomanager.NewPostgresRepositoryManager()),
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_ListenFailureClosesDB(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.EndpointAddr = "256.0.0.1:bad"

	app := &App{config: cfg, logger: logging.Nop(), db: db}

	done := make(chan struct{})
	go func() {
		app.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewApp_BadDSN(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DatabaseDSN = "not a dsn ::"

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewApp(ctx, cfg)
	require.Error(t, err)
}
