package worker

import (
	"context"
	"fmt"
	"time"

	"monthgroup/internal/jobs"
	"monthgroup/internal/log"
	"monthgroup/internal/storage"

	"github.com/robfig/cron/v3"
)

// Scheduler runs every job that has a schedule on its cron expression.
type Scheduler struct {
	cron    *cron.Cron
	runner  JobRunner
	logger  *log.Logger
	entries map[string]cron.EntryID
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewScheduler registers the scheduled jobs of set in the given IANA
// timezone.
func NewScheduler(runner JobRunner, set *jobs.Set, timezone string, logger *log.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = log.Discard()
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduler timezone %q: %w", timezone, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		runner:  runner,
		logger:  logger.WithComponent(log.ComponentScheduler),
		entries: make(map[string]cron.EntryID),
		ctx:     ctx,
		cancel:  cancel,
	}

	for _, job := range set.Scheduled() {
		id, err := s.cron.AddFunc(job.Schedule, s.runFunc(job))
		if err != nil {
			cancel()
			return nil, fmt.Errorf("schedule job %s: %w", job.Name, err)
		}
		s.entries[job.Name] = id
		s.logger.Info("Job scheduled", log.FieldJob, job.Name, "schedule", job.Schedule, "timezone", loc.String())
	}
	return s, nil
}

func (s *Scheduler) runFunc(job jobs.Job) func() {
	return func() {
		run, _, err := s.runner.Run(s.ctx, job, storage.TriggerSchedule)
		if err != nil {
			s.logger.Error("Scheduled run failed", log.FieldOperation, log.OpSchedule, log.FieldJob, job.Name, log.FieldRunID, run.ID, log.FieldError, err)
			return
		}
		s.logger.Info("Scheduled run completed", log.FieldOperation, log.OpSchedule, log.FieldJob, job.Name, log.FieldRunID, run.ID, log.FieldGroups, run.GroupCount)
	}
}

// Jobs returns the names of the scheduled jobs.
func (s *Scheduler) Jobs() []string {
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	return names
}

// Next returns the next activation time of job. Before Start it is computed
// from the schedule.
func (s *Scheduler) Next(job string) (time.Time, bool) {
	id, ok := s.entries[job]
	if !ok {
		return time.Time{}, false
	}
	entry := s.cron.Entry(id)
	if entry.Next.IsZero() {
		return entry.Schedule.Next(time.Now().In(s.cron.Location())), true
	}
	return entry.Next, true
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scheduler started", "jobs", len(s.entries))
}

// Stop stops new activations, cancels running ones and waits for them to
// return or for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	s.cancel()
	select {
	case <-done.Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop: %w", ctx.Err())
	}
}
