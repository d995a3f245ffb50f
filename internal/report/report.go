// Package report renders grouping results and run history as markdown.
package report

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"monthgroup/internal/core"
	"monthgroup/internal/jobs"
	"monthgroup/internal/storage"
)

// FormatTotal prints a group total without float noise. NaN and infinities
// come from a poisoned group and print as "n/a".
func FormatTotal(total float64) string {
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return "n/a"
	}
	return decimal.NewFromFloat(total).String()
}

// Result renders a grouped report as a two column table under title.
func Result(title string, res core.Result) string {
	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "# %s\n\n", title)
	}
	if res.IsEmpty() {
		b.WriteString("_No data._\n")
		return b.String()
	}
	b.WriteString("| Month | Total |\n|:--|--:|\n")
	for _, row := range res.Rows {
		fmt.Fprintf(&b, "| %s | %s |\n", row.Label, FormatTotal(row.Total))
	}
	return b.String()
}

// Runs renders run history, newest first.
func Runs(runs []storage.Run) string {
	if len(runs) == 0 {
		return "_No runs recorded._\n"
	}
	var b strings.Builder
	b.WriteString("| ID | Job | Trigger | Status | Rows | Groups | Duration | Started |\n")
	b.WriteString("|:--|:--|:--|:--|--:|--:|--:|:--|\n")
	for _, r := range runs {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %d | %d | %dms | %s |\n",
			shortID(r.ID), r.JobName, r.Trigger, r.Status, r.RowCount, r.GroupCount,
			r.DurationMS, r.CreatedAt.UTC().Format(time.RFC3339))
	}
	for _, r := range runs {
		if r.Error != "" {
			fmt.Fprintf(&b, "\n- `%s` %s: %s", shortID(r.ID), r.JobName, escape(r.Error))
		}
	}
	b.WriteString("\n")
	return b.String()
}

// Run renders one run followed by its result.
func Run(r storage.Run) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.JobName)
	fmt.Fprintf(&b, "- **Run:** `%s`\n", r.ID)
	fmt.Fprintf(&b, "- **Status:** %s (%s)\n", r.Status, r.Trigger)
	fmt.Fprintf(&b, "- **Rows read:** %d\n", r.RowCount)
	fmt.Fprintf(&b, "- **Duration:** %dms\n\n", r.DurationMS)
	if r.Status == storage.StatusFailed {
		fmt.Fprintf(&b, "> %s\n", escape(r.Error))
		return b.String()
	}
	b.WriteString(Result("", r.Result))
	return b.String()
}

// Jobs renders the configured jobs. next may be nil.
func Jobs(list []jobs.Job, next func(name string) (time.Time, bool)) string {
	if len(list) == 0 {
		return "_No jobs configured._\n"
	}
	var b strings.Builder
	b.WriteString("| Job | Range | Group by | Values | Output | Schedule | Next run |\n")
	b.WriteString("|:--|:--|:--|:--|:--|:--|:--|\n")
	for _, j := range list {
		nextRun := ""
		if next != nil {
			if t, ok := next(j.Name); ok {
				nextRun = t.Format(time.RFC3339)
			}
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
			j.Name, j.Range, j.GroupByRange, j.GroupByValues, j.Output, j.Schedule, nextRun)
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
