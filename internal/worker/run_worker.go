// Package worker runs report jobs on request from the queue and on cron
// schedules.
package worker

import (
	"context"
	"errors"
	"fmt"

	"monthgroup/internal/amqp"
	"monthgroup/internal/core"
	"monthgroup/internal/jobs"
	"monthgroup/internal/log"
	"monthgroup/internal/storage"
)

// JobRunner runs one job and records it.
type JobRunner interface {
	Run(ctx context.Context, job jobs.Job, trigger string) (storage.Run, core.Result, error)
}

// RunWorker turns queued run requests into job runs.
type RunWorker struct {
	runner JobRunner
	jobs   *jobs.Set
	logger *log.Logger
}

func NewRunWorker(runner JobRunner, set *jobs.Set, logger *log.Logger) *RunWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &RunWorker{runner: runner, jobs: set, logger: logger.WithComponent(log.ComponentWorker)}
}

// HandleRunRequest runs the requested job. Requests that cannot succeed on
// retry (unknown job, data the grouping rejects) are acknowledged; other
// failures are returned so the message is requeued.
func (w *RunWorker) HandleRunRequest(ctx context.Context, msg *amqp.RunRequestMessage) error {
	job, err := w.jobs.Find(msg.Job)
	if errors.Is(err, jobs.ErrJobNotFound) {
		w.logger.WarnContext(ctx, "Run request for unknown job dropped",
			log.FieldRequestID, msg.RequestID,
			log.FieldJob, msg.Job)
		return nil
	}

	trigger := msg.Trigger
	if trigger == "" {
		trigger = storage.TriggerQueue
	}

	run, _, err := w.runner.Run(ctx, job, trigger)
	if err != nil {
		if core.KindOf(err) != "" {
			w.logger.WarnContext(ctx, "Job rejected its data, not retrying",
				log.FieldRequestID, msg.RequestID,
				log.FieldJob, job.Name,
				log.FieldRunID, run.ID,
				log.FieldErrorKind, string(core.KindOf(err)),
				log.FieldError, core.Message(err))
			return nil
		}
		return fmt.Errorf("run job %s: %w", job.Name, err)
	}

	w.logger.InfoContext(ctx, "Run request completed",
		log.FieldRequestID, msg.RequestID,
		log.FieldJob, job.Name,
		log.FieldRunID, run.ID,
		log.FieldGroups, run.GroupCount)
	return nil
}
