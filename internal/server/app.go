// Package server wires the QuestStore gRPC service to PostgreSQL and S3 and
// runs it next to a Prometheus metrics endpoint.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/tokenquest/internal/logging"
	"github.com/dmitrijs2005/tokenquest/internal/server/config"
	gs "github.com/dmitrijs2005/tokenquest/internal/server/grpc"
	"github.com/dmitrijs2005/tokenquest/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/tokenquest/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

// openDB is a seam so tests can run without PostgreSQL.
var openDB = func(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	server   *gs.GRPCServer
	registry *prometheus.Registry
}

// NewApp connects to the database, migrates it and builds the services.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(logging.NewWriter(c.LogFile), logging.Options{Level: c.LogLevel, JSON: true})

	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return newApp(c, logger, db, rm), nil
}

func newApp(c *config.Config, logger logging.Logger, db *sql.DB, rm repomanager.RepositoryManager) *App {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	us := services.NewUserService(db, rm, c, logger)
	ds := services.NewDocumentService(db, rm, logger)
	bs := services.NewBackupService(c, logger)

	return &App{
		config:   c,
		logger:   logger,
		db:       db,
		server:   gs.NewGRPCServer(c.EndpointAddrGRPC, logger, us, ds, bs, us.Tokens(), gs.NewMetrics(registry)),
		registry: registry,
	}
}

// Run serves gRPC and metrics until ctx is cancelled or either fails, then
// closes the database.
func (app *App) Run(ctx context.Context) error {
	app.logger.Info(ctx, "Starting app...")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.server.Run(gctx) })
	if app.config.MetricsAddr != "" {
		g.Go(func() error { return app.serveMetrics(gctx) })
	}

	err := g.Wait()
	if cerr := app.db.Close(); cerr != nil {
		err = errors.Join(err, fmt.Errorf("close db: %w", cerr))
	}

	app.logger.Info(ctx, "App stopped")
	return err
}

func (app *App) metricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := app.db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("OK"))
	})
	return mux
}

func (app *App) serveMetrics(ctx context.Context) error {
	srv := &http.Server{
		Addr:              app.config.MetricsAddr,
		Handler:           app.metricsHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	app.logger.Info(ctx, "Starting metrics server", "address", app.config.MetricsAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
