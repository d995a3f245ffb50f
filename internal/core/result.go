package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Result is the grouped report. An empty Result stands for "no data" and is
// rendered as the empty string rather than an empty list.
type Result struct {
	Rows []ResultRow
}

// IsEmpty reports whether no row contributed to any group.
func (r Result) IsEmpty() bool {
	return len(r.Rows) == 0
}

// Value returns "" for an empty result, otherwise [][]any{{label, total}, ...}.
func (r Result) Value() any {
	if r.IsEmpty() {
		return ""
	}
	return r.Matrix()
}

// Matrix returns the rows as cells ready to write to a sheet. An empty result
// is a single "" cell.
func (r Result) Matrix() [][]any {
	if r.IsEmpty() {
		return [][]any{{""}}
	}
	out := make([][]any, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = []any{row.Label, row.Total}
	}
	return out
}

// MarshalJSON encodes an empty result as "" and rows as [label, total] pairs.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.IsEmpty() {
		return []byte(`""`), nil
	}
	return json.Marshal(r.Rows)
}

func (r *Result) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte(`""`)) || bytes.Equal(data, []byte("null")) {
		r.Rows = nil
		return nil
	}
	var rows []ResultRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	r.Rows = rows
	return nil
}

// MarshalJSON encodes the row as [label, total]; NaN and infinities become null.
func (row ResultRow) MarshalJSON() ([]byte, error) {
	var total any = row.Total
	if math.IsNaN(row.Total) || math.IsInf(row.Total, 0) {
		total = nil
	}
	return json.Marshal([]any{row.Label, total})
}

func (row *ResultRow) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("result row: want 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &row.Label); err != nil {
		return fmt.Errorf("result row label: %w", err)
	}
	var total *float64
	if err := json.Unmarshal(pair[1], &total); err != nil {
		return fmt.Errorf("result row total: %w", err)
	}
	if total == nil {
		row.Total = math.NaN()
	} else {
		row.Total = *total
	}
	return nil
}
