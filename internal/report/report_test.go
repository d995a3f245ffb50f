package report

import (
	"math"
	"strings"
	"testing"
	"time"

	"monthgroup/internal/core"
	"monthgroup/internal/jobs"
	"monthgroup/internal/storage"
)

func TestFormatTotal(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{10, "10"},
		{0.1 + 0.2, "0.30000000000000004"},
		{-12.5, "-12.5"},
		{math.NaN(), "n/a"},
		{math.Inf(1), "n/a"},
	}
	for _, tt := range tests {
		if got := FormatTotal(tt.in); got != tt.want {
			t.Fatalf("FormatTotal(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResult(t *testing.T) {
	res := core.Result{Rows: []core.ResultRow{
		{Label: "Feb 2023", Total: 5},
		{Label: "Jan 2023", Total: 30},
	}}
	got := Result("Trades", res)
	want := "# Trades\n\n| Month | Total |\n|:--|--:|\n| Feb 2023 | 5 |\n| Jan 2023 | 30 |\n"
	if got != want {
		t.Fatalf("Result() =\n%s\nwant\n%s", got, want)
	}

	if got := Result("", core.Result{}); got != "_No data._\n" {
		t.Fatalf("empty Result() = %q", got)
	}
}

func TestRuns(t *testing.T) {
	runs := []storage.Run{
		{
			ID: "0123456789abcdef", JobName: "monthly", Trigger: storage.TriggerCLI,
			Status: storage.StatusFailed, RowCount: 3, Error: "bad | pipe",
			CreatedAt: time.Date(2023, 1, 5, 10, 0, 0, 0, time.UTC),
		},
	}
	got := Runs(runs)
	for _, want := range []string{"| 01234567 | monthly | cli | failed | 3 | 0 |", "2023-01-05T10:00:00Z", `bad \| pipe`} {
		if !strings.Contains(got, want) {
			t.Fatalf("Runs() missing %q:\n%s", want, got)
		}
	}
	if Runs(nil) != "_No runs recorded._\n" {
		t.Fatalf("empty Runs() = %q", Runs(nil))
	}
}

func TestRun(t *testing.T) {
	ok := storage.Run{ID: "id", JobName: "monthly", Status: storage.StatusSucceeded,
		Result: core.Result{Rows: []core.ResultRow{{Label: "Jan 2023", Total: 1}}}}
	if got := Run(ok); !strings.Contains(got, "| Jan 2023 | 1 |") {
		t.Fatalf("Run() missing result table:\n%s", got)
	}

	failed := storage.Run{ID: "id", JobName: "monthly", Status: storage.StatusFailed, Error: "boom"}
	got := Run(failed)
	if !strings.Contains(got, "> boom") || strings.Contains(got, "| Month |") {
		t.Fatalf("Run() for failure:\n%s", got)
	}
}

func TestJobs(t *testing.T) {
	list := []jobs.Job{{Name: "monthly", Range: "A!A:C", Schedule: "0 6 * * *"}}
	at := time.Date(2023, 1, 6, 6, 0, 0, 0, time.UTC)
	got := Jobs(list, func(string) (time.Time, bool) { return at, true })
	if !strings.Contains(got, "| monthly | A!A:C |") || !strings.Contains(got, "2023-01-06T06:00:00Z") {
		t.Fatalf("Jobs() =\n%s", got)
	}
	if Jobs(nil, nil) != "_No jobs configured._\n" {
		t.Fatalf("empty Jobs()")
	}
}
