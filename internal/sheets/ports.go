// Package sheets defines the ports used to read input ranges and write
// grouped results back to a spreadsheet.
//
// Ranges use A1 notation with a sheet prefix: "Trades!A2:F", "Trades!B2:B200",
// "Report!A2".
package sheets

import (
	"context"
	"errors"
)

var ErrRangeNotFound = errors.New("range not found")

// Ports for outbound adapters.
type (
	// RangeReader returns one value matrix per requested range, in order.
	// Cells are float64 for numbers and serial dates, string, bool or nil.
	RangeReader interface {
		ReadRanges(ctx context.Context, ranges ...string) ([][][]any, error)
	}

	// ResultWriter clears target and writes rows from its top-left cell.
	ResultWriter interface {
		WriteResult(ctx context.Context, target string, rows [][]any) error
	}

	// ReadWriter is implemented by every backend.
	ReadWriter interface {
		RangeReader
		ResultWriter
	}
)
