package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/gradeswap/internal/adapters/http/api"
	"github.com/okian/gradeswap/internal/adapters/repository"
	app "github.com/okian/gradeswap/internal/app"
	"github.com/okian/gradeswap/internal/config"
	"github.com/okian/gradeswap/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 30 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	handler, svc, err := buildHandler(ctx, cfg, loggerInstance)
	if err != nil {
		loggerInstance.Fatal(ctx, "failed to build service", logger.Error(err))
	}

	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	loggerInstance.Info(ctx, "server stopped")
}

// buildHandler loads the copy pool, wires the service and returns the root
// HTTP handler.
func buildHandler(ctx context.Context, cfg *config.Config, log logger.Logger) (http.Handler, *app.Service, error) {
	store := repository.NewMemoryStore()
	if cfg.DataFile != "" {
		var err error
		store, err = repository.LoadDatasetFile(ctx, cfg.DataFile)
		if err != nil {
			return nil, nil, err
		}
		log.Info(ctx, "dataset loaded",
			logger.String("data_file", cfg.DataFile),
			logger.Int("copies", store.Count(ctx)),
		)
	} else {
		log.Warn(ctx, "no data_file configured; starting with an empty pool")
	}

	svc := app.New(store, store,
		app.WithLogger(log),
		app.WithDefaultExamModel(cfg.DefaultExamModel),
		app.WithMaxSuggestions(cfg.MaxSuggestions),
		app.WithMaxPlanSwaps(cfg.MaxPlanSwaps),
		app.WithExploreConcurrency(cfg.ExploreConcurrency),
		app.WithDonorPolicy(cfg.DonorMaxRankDrop, cfg.DonorMaxAverageDrop),
	)

	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(ctx, mux)
	return api.RequestID(mux), svc, nil
}

// startServiceMetricsUpdater refreshes pool gauges until ctx is done.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = svc.GetStats(ctx)
		}
	}
}
