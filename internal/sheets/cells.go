package sheets

import "math"

// WritableCells copies rows replacing NaN and infinite totals with "", since
// neither the Sheets API nor xlsx can store them.
func WritableCells(rows [][]any) [][]any {
	out := make([][]any, len(rows))
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, v := range row {
			if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
				cells[j] = ""
				continue
			}
			cells[j] = v
		}
		out[i] = cells
	}
	return out
}
