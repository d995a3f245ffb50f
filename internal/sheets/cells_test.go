package sheets

import (
	"math"
	"testing"
)

func TestWritableCells(t *testing.T) {
	in := [][]any{{"Jan 2023", 15.0}, {"Feb 2023", math.NaN()}, {"Mar 2023", math.Inf(1)}}
	got := WritableCells(in)

	if got[0][1] != 15.0 {
		t.Errorf("finite total changed: %v", got[0][1])
	}
	if got[1][1] != "" || got[2][1] != "" {
		t.Errorf("non-finite totals not blanked: %v %v", got[1][1], got[2][1])
	}
	if !math.IsNaN(in[1][1].(float64)) {
		t.Error("input was modified")
	}
}
