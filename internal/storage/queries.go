package storage

import (
	"context"
)

const reportRunColumns = `id, job_name, trigger, status, row_count, group_count, result_json, error_message, duration_ms, created_at`

const createReportRun = `INSERT INTO report_runs (` + reportRunColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

type CreateReportRunParams struct {
	ID           string
	JobName      string
	Trigger      string
	Status       string
	RowCount     int64
	GroupCount   int64
	ResultJson   string
	ErrorMessage string
	DurationMs   int64
	CreatedAt    string
}

func (q *Queries) CreateReportRun(ctx context.Context, arg CreateReportRunParams) error {
	_, err := q.db.ExecContext(ctx, createReportRun,
		arg.ID,
		arg.JobName,
		arg.Trigger,
		arg.Status,
		arg.RowCount,
		arg.GroupCount,
		arg.ResultJson,
		arg.ErrorMessage,
		arg.DurationMs,
		arg.CreatedAt,
	)
	return err
}

const getReportRun = `SELECT ` + reportRunColumns + ` FROM report_runs WHERE id = ?`

func (q *Queries) GetReportRun(ctx context.Context, id string) (ReportRun, error) {
	row := q.db.QueryRowContext(ctx, getReportRun, id)
	var i ReportRun
	err := row.Scan(
		&i.ID,
		&i.JobName,
		&i.Trigger,
		&i.Status,
		&i.RowCount,
		&i.GroupCount,
		&i.ResultJson,
		&i.ErrorMessage,
		&i.DurationMs,
		&i.CreatedAt,
	)
	return i, err
}

const listReportRuns = `SELECT ` + reportRunColumns + ` FROM report_runs
ORDER BY created_at DESC, rowid DESC
LIMIT ?`

func (q *Queries) ListReportRuns(ctx context.Context, limit int64) ([]ReportRun, error) {
	return q.listRuns(ctx, listReportRuns, limit)
}

const listReportRunsByJob = `SELECT ` + reportRunColumns + ` FROM report_runs
WHERE job_name = ?
ORDER BY created_at DESC, rowid DESC
LIMIT ?`

type ListReportRunsByJobParams struct {
	JobName string
	Limit   int64
}

func (q *Queries) ListReportRunsByJob(ctx context.Context, arg ListReportRunsByJobParams) ([]ReportRun, error) {
	return q.listRuns(ctx, listReportRunsByJob, arg.JobName, arg.Limit)
}

const deleteReportRunsBefore = `DELETE FROM report_runs WHERE created_at < ?`

func (q *Queries) DeleteReportRunsBefore(ctx context.Context, createdAt string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteReportRunsBefore, createdAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (q *Queries) listRuns(ctx context.Context, query string, args ...interface{}) ([]ReportRun, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ReportRun
	for rows.Next() {
		var i ReportRun
		if err := rows.Scan(
			&i.ID,
			&i.JobName,
			&i.Trigger,
			&i.Status,
			&i.RowCount,
			&i.GroupCount,
			&i.ResultJson,
			&i.ErrorMessage,
			&i.DurationMs,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
