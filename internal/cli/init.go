// Package cli provides the initialization shared by cmd/monthgroup,
// cmd/monthgroup-server and cmd/monthgroup-worker.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"monthgroup/internal/amqp"
	"monthgroup/internal/backend"
	"monthgroup/internal/cache"
	"monthgroup/internal/config"
	"monthgroup/internal/core"
	"monthgroup/internal/jobs"
	"monthgroup/internal/log"
	"monthgroup/internal/services"
	"monthgroup/internal/storage"
)

// SetupLogger builds the process logger at the given level and makes it
// the slog default.
func SetupLogger(level string) *log.Logger {
	return SetupLoggerTo(os.Stdout, level)
}

// SetupLoggerTo is SetupLogger writing to w.
func SetupLoggerTo(w io.Writer, level string) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Level = log.ParseLevel(level)
	cfg.Output = w
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// InitSQLite opens the run history database, applying migrations.
// Returns the repository or exits the process on failure.
func InitSQLite(logger *log.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath, logger)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", dbPath)
		os.Exit(1)
	}
	return repo
}

// LoadJobs reads the jobs file. A missing file yields an empty set so the
// inline evaluation surfaces work without any configured jobs.
func LoadJobs(logger *log.Logger, path string) (*jobs.Set, error) {
	logger = logger.WithComponent(log.ComponentJobs)
	set, err := jobs.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Jobs file not found, no jobs configured", "path", path)
		return &jobs.Set{}, nil
	}
	if err != nil {
		return nil, err
	}
	logger.Info("Loaded jobs", "path", path, "count", len(set.Jobs))
	return set, nil
}

// OpenAMQP connects to the broker when a URL is configured. A failed
// connection is logged and nil is returned; callers run without queueing.
func OpenAMQP(logger *log.Logger, cfg *config.Config) *amqp.Client {
	if cfg.AMQPURL == "" {
		return nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Warn("Failed to initialize AMQP client, continuing without queueing", log.FieldError, err)
		return nil
	}
	logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client
}

// App holds the wired components every entry point needs.
type App struct {
	Config  *config.Config
	Logger  *log.Logger
	Backend *backend.BackendResult
	Store   *storage.SQLiteRepository
	AMQP    *amqp.Client
	Jobs    *jobs.Set
	Caches  *cache.Manager
	Results *cache.LRUCache[core.Result]
	Service *services.GroupingService
}

// NewApp opens the range backend, run history, broker and jobs described
// by cfg and wires them into a GroupingService. The cache sweeper is
// started and stopped with Close.
func NewApp(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	be, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, err
	}

	set, err := LoadJobs(logger, cfg.JobsFile)
	if err != nil {
		_ = be.Close()
		return nil, err
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath, logger)
	if err != nil {
		_ = be.Close()
		return nil, fmt.Errorf("run history: %w", err)
	}

	app := &App{
		Config:  cfg,
		Logger:  logger,
		Backend: be,
		Store:   repo,
		AMQP:    OpenAMQP(logger, cfg),
		Jobs:    set,
		Caches:  cache.NewManager(logger),
		Results: cache.NewLRUCache[core.Result](cfg.CacheSize, cfg.CacheTTL),
	}
	app.Caches.Register(app.Results)
	if cfg.CacheTTL > 0 {
		app.Caches.Start(ctx, cfg.CacheTTL)
	}

	deps := services.Deps{
		Reader:      be.Backend,
		Writer:      be.Backend,
		Cache:       app.Results,
		Store:       repo,
		Concurrency: cfg.RunConcurrency,
		Logger:      logger,
	}
	if app.AMQP != nil {
		deps.Publisher = app.AMQP
	}
	app.Service = services.NewGroupingService(deps)
	logger.Info("Application initialized",
		log.FieldOperation, log.OpStartup,
		"backend", string(bcfg.Type),
		"jobs", len(set.Jobs),
		"amqp", app.AMQP != nil)
	return app, nil
}

// Close releases everything NewApp opened.
func (a *App) Close() error {
	a.Caches.Stop()
	var errs []error
	if a.AMQP != nil {
		errs = append(errs, a.AMQP.Close())
	}
	errs = append(errs, a.Store.Close(), a.Backend.Close())
	return errors.Join(errs...)
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown, "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		cancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}

		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup has run.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
