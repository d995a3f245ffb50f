// Package storage keeps the history of report runs in SQLite.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"monthgroup/internal/core"
	"monthgroup/internal/log"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var ErrRunNotFound = errors.New("run not found")

type RunStatus string

const (
	StatusSucceeded RunStatus = "succeeded"
	StatusFailed    RunStatus = "failed"
)

// Triggers record what started a run.
const (
	TriggerHTTP     = "http"
	TriggerCLI      = "cli"
	TriggerQueue    = "queue"
	TriggerSchedule = "schedule"
)

const (
	defaultListLimit = 50
	// Fixed width so stored timestamps order lexically.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// Run is one recorded execution of a job.
type Run struct {
	ID         string      `json:"id"`
	JobName    string      `json:"job"`
	Trigger    string      `json:"trigger"`
	Status     RunStatus   `json:"status"`
	RowCount   int         `json:"row_count"`
	GroupCount int         `json:"group_count"`
	Result     core.Result `json:"result"`
	Error      string      `json:"error,omitempty"`
	DurationMS int64       `json:"duration_ms"`
	CreatedAt  time.Time   `json:"created_at"`
}

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	logger  *log.Logger
}

// NewSQLiteRepository opens (creating if needed) the database at dbPath and
// migrates it.
func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentStorage)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite serialises writers; one connection avoids SQLITE_BUSY under
	// concurrent runs.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("SQLite repository ready", "path", dbPath, "schema_version", version)
	return &SQLiteRepository{db: db, queries: New(db), logger: logger}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// SaveRun inserts run, assigning an ID and timestamp when missing, and
// returns the stored value.
func (r *SQLiteRepository) SaveRun(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	run.CreatedAt = run.CreatedAt.UTC()
	if run.Status == "" {
		run.Status = StatusSucceeded
	}

	resultJSON, err := json.Marshal(run.Result)
	if err != nil {
		return Run{}, fmt.Errorf("encode run result: %w", err)
	}

	err = r.queries.CreateReportRun(ctx, CreateReportRunParams{
		ID:           run.ID,
		JobName:      run.JobName,
		Trigger:      run.Trigger,
		Status:       string(run.Status),
		RowCount:     int64(run.RowCount),
		GroupCount:   int64(run.GroupCount),
		ResultJson:   string(resultJSON),
		ErrorMessage: run.Error,
		DurationMs:   run.DurationMS,
		CreatedAt:    run.CreatedAt.Format(timeLayout),
	})
	if err != nil {
		return Run{}, fmt.Errorf("create report run: %w", err)
	}

	r.logger.DebugContext(ctx, "Report run saved",
		log.FieldRunID, run.ID,
		log.FieldJob, run.JobName,
		"status", run.Status)
	return run, nil
}

// GetRun returns the run with id or ErrRunNotFound.
func (r *SQLiteRepository) GetRun(ctx context.Context, id string) (Run, error) {
	row, err := r.queries.GetReportRun(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get report run: %w", err)
	}
	return toRun(row)
}

// ListRuns returns the newest runs first, for one job or for all when job is
// empty. A non-positive limit uses the default of 50.
func (r *SQLiteRepository) ListRuns(ctx context.Context, job string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	var (
		rows []ReportRun
		err  error
	)
	if job == "" {
		rows, err = r.queries.ListReportRuns(ctx, int64(limit))
	} else {
		rows, err = r.queries.ListReportRunsByJob(ctx, ListReportRunsByJobParams{JobName: job, Limit: int64(limit)})
	}
	if err != nil {
		return nil, fmt.Errorf("list report runs: %w", err)
	}

	runs := make([]Run, 0, len(rows))
	for _, row := range rows {
		run, err := toRun(row)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// LatestRun returns the most recent run of job or ErrRunNotFound.
func (r *SQLiteRepository) LatestRun(ctx context.Context, job string) (Run, error) {
	runs, err := r.ListRuns(ctx, job, 1)
	if err != nil {
		return Run{}, err
	}
	if len(runs) == 0 {
		return Run{}, fmt.Errorf("%w: no runs for job %s", ErrRunNotFound, job)
	}
	return runs[0], nil
}

// PruneRuns deletes runs created before olderThan and returns how many were
// removed.
func (r *SQLiteRepository) PruneRuns(ctx context.Context, olderThan time.Time) (int64, error) {
	n, err := r.queries.DeleteReportRunsBefore(ctx, olderThan.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("prune report runs: %w", err)
	}
	if n > 0 {
		r.logger.InfoContext(ctx, "Pruned report runs", "removed", n, "older_than", olderThan)
	}
	return n, nil
}

func toRun(row ReportRun) (Run, error) {
	createdAt, err := time.Parse(timeLayout, row.CreatedAt)
	if err != nil {
		return Run{}, fmt.Errorf("parse created_at of run %s: %w", row.ID, err)
	}
	var result core.Result
	if err := json.Unmarshal([]byte(row.ResultJson), &result); err != nil {
		return Run{}, fmt.Errorf("decode result of run %s: %w", row.ID, err)
	}
	return Run{
		ID:         row.ID,
		JobName:    row.JobName,
		Trigger:    row.Trigger,
		Status:     RunStatus(row.Status),
		RowCount:   int(row.RowCount),
		GroupCount: int(row.GroupCount),
		Result:     result,
		Error:      row.ErrorMessage,
		DurationMS: row.DurationMs,
		CreatedAt:  createdAt,
	}, nil
}
