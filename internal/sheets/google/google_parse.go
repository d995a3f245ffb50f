package google

import (
	"encoding/json"

	ports "monthgroup/internal/sheets"
)

// toCells normalises API values: json.Number becomes float64, every other
// JSON scalar is kept as decoded.
func toCells(values [][]interface{}) [][]any {
	out := make([][]any, len(values))
	for i, row := range values {
		cells := make([]any, len(row))
		for j, v := range row {
			if n, ok := v.(json.Number); ok {
				if f, err := n.Float64(); err == nil {
					cells[j] = f
					continue
				}
			}
			cells[j] = v
		}
		out[i] = cells
	}
	return out
}

// alignRanges restores the row counts the API trims. Bounded ranges are padded
// to their declared height; open-ended ranges starting on the same row are
// padded to the tallest among them so aligned columns stay aligned.
func alignRanges(ranges []string, values [][][]any) [][][]any {
	spans := make([]ports.Span, len(ranges))
	tallest := map[int]int{}
	for i, rng := range ranges {
		sp, err := ports.ParseSpan(rng)
		if err != nil {
			continue
		}
		spans[i] = sp
		if sp.Height() == 0 && len(values[i]) > tallest[sp.FirstRow] {
			tallest[sp.FirstRow] = len(values[i])
		}
	}
	for i := range values {
		sp := spans[i]
		if sp.FirstCol == 0 && sp.FirstRow == 0 && sp.LastCol == 0 {
			continue
		}
		if h := sp.Height(); h > 0 {
			values[i] = ports.PadRows(values[i], h)
		} else {
			values[i] = ports.PadRows(values[i], tallest[sp.FirstRow])
		}
	}
	return values
}
