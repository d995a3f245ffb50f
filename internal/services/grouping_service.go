package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"monthgroup/internal/cache"
	"monthgroup/internal/core"
	"monthgroup/internal/jobs"
	"monthgroup/internal/log"
	"monthgroup/internal/sheets"
	"monthgroup/internal/storage"

	"golang.org/x/sync/errgroup"
)

// ErrNoPublisher is returned by Enqueue when no message broker is configured.
var ErrNoPublisher = errors.New("run requests cannot be queued: AMQP not configured")

// RunStore records and looks up report runs.
type RunStore interface {
	SaveRun(ctx context.Context, run storage.Run) (storage.Run, error)
	GetRun(ctx context.Context, id string) (storage.Run, error)
	ListRuns(ctx context.Context, job string, limit int) ([]storage.Run, error)
}

// RunPublisher queues a job run for a worker and returns the request ID.
type RunPublisher interface {
	PublishRunRequest(ctx context.Context, job, trigger string) (string, error)
}

// Input carries the three ranges and the filter inline.
type Input struct {
	Range           [][]any `json:"range"`
	GroupByRange    [][]any `json:"group_by_range"`
	GroupByValues   [][]any `json:"group_by_values"`
	FilterText      string  `json:"filter_text,omitempty"`
	FilterColNumber int     `json:"filter_col_number,omitempty"`
}

// Deps wires a GroupingService. Reader is needed for Run; the rest are
// optional.
type Deps struct {
	Reader      sheets.RangeReader
	Writer      sheets.ResultWriter
	Cache       cache.Cache[core.Result]
	Store       RunStore
	Publisher   RunPublisher
	Concurrency int
	Logger      *log.Logger
}

// GroupingService evaluates inline data and runs configured jobs.
type GroupingService struct {
	reader      sheets.RangeReader
	writer      sheets.ResultWriter
	cache       cache.Cache[core.Result]
	store       RunStore
	publisher   RunPublisher
	concurrency int
	logger      *log.Logger
	events      *log.StructuredLogger
}

func NewGroupingService(deps Deps) *GroupingService {
	logger := deps.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentGrouper)
	concurrency := deps.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &GroupingService{
		reader:      deps.Reader,
		writer:      deps.Writer,
		cache:       deps.Cache,
		store:       deps.Store,
		publisher:   deps.Publisher,
		concurrency: concurrency,
		logger:      logger,
		events:      log.NewStructuredLogger(logger),
	}
}

// Evaluate groups inline matrices. Results are cached by a fingerprint of
// the whole input.
func (s *GroupingService) Evaluate(ctx context.Context, in Input) (core.Result, error) {
	res, hit, err := s.evaluate(in)
	if err != nil {
		return core.Result{}, err
	}
	s.events.LogGroupCompleted(ctx, "", "inline", len(in.Range), len(res.Rows), hit)
	return res, nil
}

func (s *GroupingService) evaluate(in Input) (core.Result, bool, error) {
	var key string
	if s.cache != nil {
		k, err := cache.Fingerprint(in.Range, in.GroupByRange, in.GroupByValues, in.FilterText, in.FilterColNumber)
		if err == nil {
			key = k
			if res, ok := s.cache.Get(key); ok {
				return res, true, nil
			}
		}
	}

	res, err := core.Group(in.Range, in.GroupByRange, in.GroupByValues, in.FilterText, in.FilterColNumber)
	if err != nil {
		return core.Result{}, false, err
	}
	if key != "" {
		s.cache.Set(key, res)
	}
	return res, false, nil
}

// Run reads the job's ranges in one call, groups them, writes the result to
// the job's output cell when set and records the run. The recorded run is
// returned even when the job fails.
func (s *GroupingService) Run(ctx context.Context, job jobs.Job, trigger string) (storage.Run, core.Result, error) {
	start := time.Now()
	run := storage.Run{JobName: job.Name, Trigger: trigger, CreatedAt: start}

	res, err := s.execute(ctx, job, &run)
	run.DurationMS = time.Since(start).Milliseconds()
	if err != nil {
		run.Status = storage.StatusFailed
		run.Error = core.Message(err)
		s.events.LogError(ctx, "Job run failed", err, log.ComponentGrouper, log.OpRun,
			log.NewFields().WithJob(job.Name, trigger))
	} else {
		run.Status = storage.StatusSucceeded
		run.Result = res
		run.GroupCount = len(res.Rows)
	}

	if s.store != nil {
		saved, saveErr := s.store.SaveRun(ctx, run)
		if saveErr != nil {
			s.logger.ErrorContext(ctx, "Failed to record run", log.FieldOperation, log.OpRecord, log.FieldJob, job.Name, log.FieldError, saveErr)
			if err == nil {
				err = fmt.Errorf("record run: %w", saveErr)
			}
		} else {
			run = saved
		}
	}
	return run, res, err
}

func (s *GroupingService) execute(ctx context.Context, job jobs.Job, run *storage.Run) (core.Result, error) {
	if s.reader == nil {
		return core.Result{}, errors.New("no range reader configured")
	}
	data, err := s.reader.ReadRanges(ctx, job.Ranges()...)
	if err != nil {
		return core.Result{}, fmt.Errorf("read ranges: %w", err)
	}
	if len(data) != 3 {
		return core.Result{}, fmt.Errorf("read ranges: got %d matrices, want 3", len(data))
	}
	run.RowCount = len(data[0])
	s.logger.DebugContext(ctx, "Ranges read",
		log.FieldOperation, log.OpRead,
		log.FieldJob, job.Name,
		log.FieldRange, strings.Join(job.Ranges(), ","),
		log.FieldRows, run.RowCount)

	res, hit, err := s.evaluate(Input{
		Range:           data[0],
		GroupByRange:    data[1],
		GroupByValues:   data[2],
		FilterText:      job.FilterText,
		FilterColNumber: job.FilterColNumber,
	})
	if err != nil {
		return core.Result{}, err
	}

	if job.Output != "" {
		if s.writer == nil {
			return core.Result{}, fmt.Errorf("job %s has an output but no writer is configured", job.Name)
		}
		if err := s.writer.WriteResult(ctx, job.Output, res.Matrix()); err != nil {
			return core.Result{}, fmt.Errorf("write result: %w", err)
		}
		s.logger.DebugContext(ctx, "Result written",
			log.FieldOperation, log.OpWrite,
			log.FieldJob, job.Name,
			log.FieldOutput, job.Output)
	}

	s.events.LogGroupCompleted(ctx, job.Name, run.Trigger, run.RowCount, len(res.Rows), hit)
	return res, nil
}

// RunAll runs every job with bounded concurrency. All runs complete and are
// recorded; the first error is returned.
func (s *GroupingService) RunAll(ctx context.Context, list []jobs.Job, trigger string) ([]storage.Run, error) {
	runs := make([]storage.Run, len(list))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, job := range list {
		i, job := i, job
		g.Go(func() error {
			run, _, err := s.Run(ctx, job, trigger)
			runs[i] = run
			if err != nil {
				return fmt.Errorf("job %s: %w", job.Name, err)
			}
			return nil
		})
	}
	err := g.Wait()
	s.logger.InfoContext(ctx, "Run batch completed", "jobs", len(list), log.FieldTrigger, trigger, log.FieldSuccess, err == nil)
	return runs, err
}

// Enqueue asks a worker to run job.
func (s *GroupingService) Enqueue(ctx context.Context, job, trigger string) (string, error) {
	if s.publisher == nil {
		return "", ErrNoPublisher
	}
	id, err := s.publisher.PublishRunRequest(ctx, job, trigger)
	if err != nil {
		return "", fmt.Errorf("publish run request: %w", err)
	}
	s.logger.InfoContext(ctx, "Run request queued", log.FieldOperation, log.OpPublish, log.FieldJob, job, log.FieldRequestID, id)
	return id, nil
}

// ListRuns returns recorded runs, newest first.
func (s *GroupingService) ListRuns(ctx context.Context, job string, limit int) ([]storage.Run, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.ListRuns(ctx, job, limit)
}

// GetRun returns one recorded run.
func (s *GroupingService) GetRun(ctx context.Context, id string) (storage.Run, error) {
	if s.store == nil {
		return storage.Run{}, fmt.Errorf("%w: %s", storage.ErrRunNotFound, id)
	}
	return s.store.GetRun(ctx, id)
}
