package main

import (
	"context"
	"errors"
	"os"
	"time"

	"monthgroup/internal/cli"
	"monthgroup/internal/config"
	"monthgroup/internal/log"
	"monthgroup/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(config.Load().LogLevel).WithComponent(log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting monthgroup-worker")

	app, err := cli.NewApp(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize application", log.FieldError, err)
		os.Exit(1)
	}

	scheduler, err := worker.NewScheduler(app.Service, app.Jobs, cfg.SchedulerTimezone, logger)
	if err != nil {
		logger.Error("Failed to initialize scheduler", log.FieldError, err)
		os.Exit(1)
	}

	if app.AMQP == nil && len(scheduler.Jobs()) == 0 {
		logger.Error("Nothing to do: no AMQP connection and no scheduled jobs")
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := scheduler.Stop(ctx); err != nil {
			logger.Warn("Scheduled runs still in progress at shutdown", log.FieldError, err)
		}
		if err := app.Close(); err != nil {
			logger.Error("Failed to close application", log.FieldError, err)
		}
	})

	for _, name := range scheduler.Jobs() {
		next, _ := scheduler.Next(name)
		logger.Info("Next scheduled run", log.FieldJob, name, "at", next)
	}
	scheduler.Start()

	if app.AMQP != nil {
		runWorker := worker.NewRunWorker(app.Service, app.Jobs, logger)
		go func() {
			err := app.AMQP.ConsumeRunRequests(ctx, runWorker.HandleRunRequest)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Run request consumption stopped", log.FieldError, err)
			}
		}()
	} else {
		logger.Info("AMQP disabled, only scheduled jobs will run")
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
