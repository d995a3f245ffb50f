package core

// groupedTotals accumulates sums per key and remembers first-insertion order.
type groupedTotals struct {
	order  []MonthYear
	totals map[MonthYear]float64
}

func newGroupedTotals() *groupedTotals {
	return &groupedTotals{totals: make(map[MonthYear]float64)}
}

func (g *groupedTotals) add(k MonthYear, amount float64) {
	if _, ok := g.totals[k]; !ok {
		g.order = append(g.order, k)
	}
	g.totals[k] += amount
}

// Group is GroupByMonthYear with the filter given the way a spreadsheet
// formula passes it: a comma separated list and a 1-based column. Filtering
// applies only when both are set.
func Group(rng, groupByRange, groupByValues [][]any, filterText string, filterCol int) (Result, error) {
	var filter *FilterSpec
	if filterText != "" && filterCol != 0 {
		filter = NewFilterSpec(filterText, filterCol)
	}
	return GroupByMonthYear(rng, groupByRange, groupByValues, filter)
}

// GroupByMonthYear buckets the rows of rng by the month and year of the date
// in groupByRange and sums the matching cell of groupByValues per bucket.
//
// Rows with a blank date or rejected by filter contribute nothing. The
// returned rows are in reverse order of first appearance, so ascending input
// yields the most recent month first. The three ranges are aligned by index;
// only the first cell of each groupByRange and groupByValues row is read.
func GroupByMonthYear(rng, groupByRange, groupByValues [][]any, filter *FilterSpec) (Result, error) {
	if len(groupByRange) != len(groupByValues) {
		return Result{}, validationError(ErrLengthMismatch)
	}
	if len(rng) > len(groupByRange) {
		return Result{}, validationError(ErrRangeTooLong)
	}

	grouped := newGroupedTotals()
	for i, record := range rng {
		date := firstCell(groupByRange[i])
		if IsBlank(date) {
			continue
		}
		if filter != nil && !filter.Match(record) {
			continue
		}
		t, err := DateOf(date)
		if err != nil {
			return Result{}, runtimeError(i, err)
		}
		grouped.add(KeyOf(t), AmountOf(firstCell(groupByValues[i])))
	}

	rows := make([]ResultRow, 0, len(grouped.order))
	for i := len(grouped.order) - 1; i >= 0; i-- {
		k := grouped.order[i]
		rows = append(rows, ResultRow{Label: k.Label(), Total: grouped.totals[k]})
	}
	return Result{Rows: rows}, nil
}

func firstCell(row []any) any {
	if len(row) == 0 {
		return nil
	}
	return row[0]
}
