package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"monthgroup/internal/cli"
	"monthgroup/internal/config"
	apphttp "monthgroup/internal/http"
	"monthgroup/internal/log"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(config.Load().LogLevel)
	cfg := cli.LoadAndValidateConfig(logger)

	app, err := cli.NewApp(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize application", log.FieldError, err)
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Options{
		Service:            app.Service,
		Jobs:               app.Jobs,
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Ready:              app.Store.Ping,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		metrics := srv.Metrics()
		logger.Info("Request totals",
			"requests", metrics.TotalRequests,
			"server_errors", metrics.ServerErrors,
			"avg_latency", metrics.AverageLatency())
		if err := app.Close(); err != nil {
			logger.Error("Failed to close application", log.FieldError, err)
		}
	})

	logger.Info("Starting monthgroup server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"jobs", len(app.Jobs.Jobs),
		"amqp_enabled", app.AMQP != nil)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
