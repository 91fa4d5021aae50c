// Package server wires storage, providers and transports together and runs
// the career vault server until it receives a shutdown signal.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrijs2005/careervault/internal/ai"
	"github.com/dmitrijs2005/careervault/internal/ai/gemini"
	"github.com/dmitrijs2005/careervault/internal/logging"
	"github.com/dmitrijs2005/careervault/internal/server/audit"
	"github.com/dmitrijs2005/careervault/internal/server/config"
	"github.com/dmitrijs2005/careervault/internal/server/reports"
	"github.com/dmitrijs2005/careervault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/careervault/internal/server/services"

	gs "github.com/dmitrijs2005/careervault/internal/server/grpc"
)

// openDB opens the pgx-backed pool; tests replace it.
var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

type App struct {
	config       *config.Config
	logger       logging.Logger
	db           *sql.DB
	vaultService *services.VaultService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogBackend, c.Debug)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	cache, err := audit.NewCache(c.AuditCacheSize, c.AuditTTL)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("audit cache init error: %w", err)
	}

	opts := []services.Option{services.WithRescoreConcurrency(c.RescoreConcurrency)}
	opts = append(opts, providerOptions(ctx, c, logger)...)
	if exp := newExporter(ctx, c, logger); exp != nil {
		opts = append(opts, services.WithExporter(exp))
	}

	vs := services.NewVaultService(db, rm, cache, logger, opts...)

	return &App{config: c, logger: logger, db: db, vaultService: vs}, nil
}

// providerOptions enables provider-backed matching and copy when an API key
// is configured. Without one the service stays on lexical scoring.
func providerOptions(ctx context.Context, c *config.Config, logger logging.Logger) []services.Option {
	if c.GeminiAPIKey == "" {
		logger.Info(ctx, "text generation disabled, using lexical matching")
		return nil
	}

	gen, err := gemini.NewGenerator(ctx, c.GeminiAPIKey, c.GeminiModel)
	if err != nil {
		logger.Warn(ctx, "text generation unavailable, using lexical matching", "error", err)
		return nil
	}

	guard := ai.NewGuard(gen, ai.Options{
		Timeout:       c.ProviderTimeout,
		RatePerSecond: c.ProviderRate,
		Burst:         ai.DefaultBurst,
	}, logger)

	logger.Info(ctx, "text generation enabled", "model", gen.Model())
	return []services.Option{
		services.WithScorer(gemini.NewScorer(guard, logger)),
		services.WithCopywriter(guard),
		services.WithMatchBudget(2 * c.ProviderTimeout),
	}
}

func newExporter(ctx context.Context, c *config.Config, logger logging.Logger) services.ReportExporter {
	if c.S3Bucket == "" {
		logger.Info(ctx, "audit export disabled")
		return nil
	}

	exp, err := reports.NewExporter(ctx, reports.Config{
		Region:    c.S3Region,
		AccessKey: c.S3RootUser,
		SecretKey: c.S3RootPassword,
		Bucket:    c.S3Bucket,
		Endpoint:  c.S3BaseEndpoint,
	})
	if err != nil {
		logger.Warn(ctx, "audit export unavailable", "error", err)
		return nil
	}
	return exp
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.vaultService, app.config.SecretKey)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func newMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
}

func (app *App) startMetricsServer(ctx context.Context) {
	srv := newMetricsServer(app.config.MetricsAddr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	app.logger.Info(ctx, "Starting metrics server", "address", app.config.MetricsAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, "metrics server failed", "error", err)
	}
}

// Run serves until ctx is cancelled or a shutdown signal arrives.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	if app.config.MetricsAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startMetricsServer(ctx)
		}()
	}

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "db close error", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}
