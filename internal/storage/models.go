package storage

// ReportRun mirrors a row of report_runs.
type ReportRun struct {
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
