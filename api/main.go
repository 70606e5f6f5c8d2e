package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"events-venues/clock"
	"events-venues/config"
	"events-venues/data/repository"
	"events-venues/data/service"
	"events-venues/geocode"
	"events-venues/logger"
)

type application struct {
	cfg     *config.Config
	log     *zap.Logger
	clock   clock.Clock
	db      *sql.DB
	store   repository.Store
	catalog *service.Catalog
	metrics *httpMetrics
}

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to an optional YAML config file")
	flag.Parse()

	cfg, errs := config.Load(*configPath)
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
		}
		os.Exit(1)
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("configuration loaded", zap.Any("config", cfg.LogSummary()))

	app := &application{
		cfg:     cfg,
		log:     log,
		clock:   clock.NewSystem(cfg.Location()),
		metrics: newHTTPMetrics(),
	}

	defer app.closeDB()
	store, err := app.openStore(ctx)
	if err != nil {
		return err
	}
	app.store = store

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if err := app.metrics.Register(registry); err != nil {
		return fmt.Errorf("failed to register http metrics: %w", err)
	}

	var queue service.LocationQueue
	if cfg.GeocodingEnabled() {
		gm := geocode.NewMetrics()
		if err := gm.Register(registry); err != nil {
			return fmt.Errorf("failed to register geocode metrics: %w", err)
		}
		worker := geocode.NewWorker(
			geocode.NewMapbox(cfg.MapboxURL, cfg.MapboxToken, nil, cfg.GeocodeTimeout),
			store, gm, log.Named("geocode"),
			geocode.Options{
				Workers:    cfg.GeocodeWorkers,
				QueueSize:  cfg.GeocodeQueueSize,
				MaxElapsed: cfg.GeocodeMaxElapsed,

				BackfillInterval: cfg.GeocodeBackfillInterval,
			})
		worker.Start(ctx)
		defer worker.Stop()
		queue = worker
	} else {
		log.Info("geocoding disabled, venues keep default coordinates")
	}

	app.catalog = service.NewCatalog(store, app.clock, queue, log.Named("catalog"))

	if cfg.SeedData {
		if err := app.seed(ctx); err != nil {
			return err
		}
	}
	if w, ok := queue.(*geocode.Worker); ok {
		if _, err := w.Backfill(ctx); err != nil {
			log.Warn("geocode backfill failed", zap.Error(err))
		}
	}

	return app.serve(ctx, app.routes(registry))
}

// serve runs the HTTP server until ctx is cancelled, then drains it.
func (app *application) serve(ctx context.Context, handler http.Handler) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", app.cfg.Port),
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorLog:     zap.NewStdLog(app.log),
	}

	errCh := make(chan error, 1)
	go func() {
		app.log.Info("starting server", zap.String("addr", srv.Addr), zap.String("env", app.cfg.Env))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	app.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
