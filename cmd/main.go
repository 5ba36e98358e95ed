package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/xcheck/internal/adapters/http/api"
	"github.com/okian/xcheck/internal/adapters/http/swagger"
	"github.com/okian/xcheck/internal/adapters/report"
	"github.com/okian/xcheck/internal/adapters/resultsdb"
	app "github.com/okian/xcheck/internal/app"
	"github.com/okian/xcheck/internal/config"
	"github.com/okian/xcheck/internal/domain/county"
	"github.com/okian/xcheck/internal/engine"
	"github.com/okian/xcheck/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to sync logger: " + err.Error() + "\n")
		}
	}()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if cfg.LogFormat == string(logger.FormatJSON) {
		if err := logger.Init(logger.WithFormat(logger.FormatJSON)); err != nil {
			os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
			os.Exit(1)
		}
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, err := run(ctx, cfg)
	if err != nil {
		logger.Get().Error(ctx, "cross-check failed", logger.Error(err))
		stop()
		os.Exit(1)
	}

	if cfg.Addr == "" {
		return
	}
	if err := serve(ctx, cfg, svc); err != nil {
		logger.Get().Error(ctx, "results server failed", logger.Error(err))
		stop()
		os.Exit(1)
	}
}

// run checks every log under cfg.LogsDir and writes the reports.
func run(ctx context.Context, cfg *config.Config) (*app.Service, error) {
	log := logger.Get()

	rules, err := cfg.Rules()
	if err != nil {
		return nil, err
	}

	var counties *county.Table
	if cfg.CountiesFile != "" {
		if counties, err = county.Load(cfg.CountiesFile); err != nil {
			return nil, err
		}
		log.Info(ctx, "county table loaded", logger.String("file", cfg.CountiesFile), logger.Int("counties", counties.Len()))
	}

	eng, err := engine.New(rules,
		engine.WithCounties(counties),
		engine.WithWorkers(cfg.WorkerCount),
		engine.WithQueueSize(cfg.QueueSize),
		engine.WithLogger(log.Named("engine")),
	)
	if err != nil {
		return nil, err
	}

	loader := app.NewLoader(eng.Rules(),
		app.WithExtension(cfg.LogExt),
		app.WithParallelism(cfg.WorkerCount),
	)
	batch, err := loader.Load(ctx, cfg.LogsDir, cfg.Modes())
	if err != nil {
		return nil, err
	}
	log.Info(ctx, "logs loaded", logger.Int("logs", batch.Count()), logger.Int("rejected", len(batch.Rejected)))

	svc := app.New(eng, app.WithLogger(log))
	runs, err := svc.Check(ctx, batch)
	if err != nil {
		return nil, err
	}

	if err := report.NewExporter(cfg.OutDir, eng.Rules().BandNames()).Export(ctx, runs...); err != nil {
		return nil, err
	}

	if cfg.DBPath != "" {
		if err := save(ctx, cfg.DBPath, runs); err != nil {
			return nil, err
		}
	}
	return svc, nil
}

func save(ctx context.Context, path string, runs []*engine.Run) error {
	db, err := resultsdb.Open(ctx, path)
	if err != nil {
		return err
	}
	defer db.Close()
	for _, r := range runs {
		if err := db.SaveRun(ctx, r); err != nil {
			return fmt.Errorf("save %s run: %w", r.Mode, err)
		}
	}
	return nil
}

// serve exposes the results API until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config, svc *app.Service) error {
	log := logger.Get()

	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc, cfg.MaxStandingsLimit).Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info(ctx, "server stopped")
	return nil
}
