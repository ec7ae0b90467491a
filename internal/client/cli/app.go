package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/qrscan/internal/client/capture"
	"github.com/dmitrijs2005/qrscan/internal/client/client"
	"github.com/dmitrijs2005/qrscan/internal/client/config"
	"github.com/dmitrijs2005/qrscan/internal/client/credentials"
	"github.com/dmitrijs2005/qrscan/internal/client/device"
	"github.com/dmitrijs2005/qrscan/internal/client/dispatch"
	"github.com/dmitrijs2005/qrscan/internal/client/history"
	"github.com/dmitrijs2005/qrscan/internal/client/redirect"
	"github.com/dmitrijs2005/qrscan/internal/client/services"
	"github.com/dmitrijs2005/qrscan/internal/clockx"
	"github.com/dmitrijs2005/qrscan/internal/logging"
	"github.com/dmitrijs2005/qrscan/internal/otelx"
)

// App is the application context: it owns the cache database, the history
// engine and the capture session for the lifetime of the process.
type App struct {
	config *config.Config
	log    logging.Logger
	reader *bufio.Reader
	out    io.Writer

	db       *sql.DB
	engine   *history.Engine
	capture  *capture.Controller
	pipeline *services.ScanPipeline
	codes    *services.CodeService

	shutdownTracing func(context.Context) error
	cancel          context.CancelFunc
	closeOnce       sync.Once
}

// NewApp builds the application context on stdin/stdout. Secrets missing
// from c are read from the terminal without echo.
func NewApp(c *config.Config) (*App, error) {
	log := logging.NewTextLogger(os.Stderr, slog.LevelWarn)
	return newApp(context.Background(), c, os.Stdin, os.Stdout, clockx.Real(), log)
}

func newApp(ctx context.Context, c *config.Config, in io.Reader, out io.Writer, clk clockx.Clock, log logging.Logger) (*App, error) {
	cfg := *c
	out = &syncWriter{w: out}
	a := &App{config: &cfg, log: log, reader: bufio.NewReader(in), out: out}

	if err := a.readSecrets(); err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}
	repos := client.NewRepositories(db)

	deviceID, err := device.Identity(ctx, repos.Metadata, cfg.KeystorePassphrase)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error loading device identifier: %w", err)
	}
	log.Debug(ctx, "device identifier loaded", "device_id", deviceID)

	tp, shutdownTracing, err := otelx.Init(ctx, log, otelx.Config{
		Endpoint:    cfg.OTLPEndpoint,
		Protocol:    cfg.OTLPProtocol,
		Insecure:    cfg.OTLPInsecure,
		SampleRatio: cfg.TraceSampleRatio,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error initializing tracing: %w", err)
	}

	creds := credentials.NewJWTProvider([]byte(cfg.CredentialSecret), deviceID, cfg.Platform, cfg.CredentialTTL, clk)
	opts := []client.Option{
		client.WithRetryMax(cfg.HTTPRetryMax),
		client.WithLogger(log),
		client.WithClock(clk),
	}
	if tp != nil {
		opts = append(opts, client.WithTracerProvider(tp))
	}
	remote := client.NewHTTPClient(cfg.ServerBaseURL, creds, deviceID, cfg.Platform, opts...)
	engine := history.NewEngine(remote, repos.Scans, repos.Codes, log)

	dev := &capture.SimulatedDevice{MaxZoomFactor: cfg.MaxZoom, Torch: cfg.HasTorch}
	auth := &terminalAuthorizer{app: a, status: capture.PermissionNotDetermined}
	ctrl := capture.NewController(dev, auth, clk,
		capture.WithCooldown(cfg.CooldownWindow),
		capture.WithLogger(log),
	)

	opener := newPrintingOpener(out, cfg.WalletURI, cfg.WalletInstalled)
	classifier := dispatch.NewClassifier(opener, cfg.PaymentSchemes...)
	resolver := redirect.NewResolver(opener, terminalPrompter{app: a}, ctrl, clk, redirect.Config{
		WalletURI:    cfg.WalletURI,
		StoreURL:     cfg.StoreURL,
		SearchURL:    cfg.SearchURL,
		SourceMarker: cfg.SourceMarker,
		ResumeDelay:  cfg.ResumeDelay,
	}, log)

	runCtx, cancel := context.WithCancel(ctx)
	pipeline := services.NewScanPipeline(runCtx, classifier, resolver, engine.Scans, log)
	pipeline.Attach(ctrl)
	pipeline.OnResolved(a.printResolution)
	pipeline.OnRecorded(a.printRecording)

	a.db = db
	a.engine = engine
	a.capture = ctrl
	a.pipeline = pipeline
	a.codes = services.NewCodeService(services.RendererFunc(renderPlaceholder), engine.Codes)
	a.cancel = cancel
	a.shutdownTracing = shutdownTracing
	return a, nil
}

func (a *App) readSecrets() error {
	if a.config.CredentialSecret == "" {
		secret, err := GetSecret(a.out, "Credential secret")
		if err != nil {
			return fmt.Errorf("error reading credential secret: %w", err)
		}
		a.config.CredentialSecret = string(secret)
	}
	if a.config.KeystorePassphrase == "" {
		pass, err := GetSecret(a.out, "Keystore passphrase")
		if err != nil {
			return fmt.Errorf("error reading keystore passphrase: %w", err)
		}
		a.config.KeystorePassphrase = string(pass)
	}
	return nil
}

// Run restores the cached history, refreshes it from the server, activates
// the capture session and runs the REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "qrscan (type 'help' for commands)")

	if err := a.engine.Restore(ctx); err != nil {
		fmt.Fprintf(a.out, "! cached history unavailable: %v\n", err)
	}
	_ = a.Refresh(ctx)
	_ = a.Start(ctx)

	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) status() string {
	return a.capture.State().String()
}

// Close tears the context down: it waits for in-flight history appends,
// stops capture and the history actor, flushes pending spans and closes the
// database. Only the first call has an effect.
func (a *App) Close() error {
	var err error
	a.closeOnce.Do(func() {
		a.pipeline.Wait()
		a.cancel()
		a.capture.Deactivate()
		a.engine.Close()
		if a.shutdownTracing != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if serr := a.shutdownTracing(ctx); serr != nil {
				a.log.Warn(ctx, "tracing shutdown failed", "error", serr)
			}
			cancel()
		}
		err = a.db.Close()
	})
	return err
}
