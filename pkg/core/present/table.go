// Package present pivots computed period records into a metric x period table
// and renders it as CSV, Markdown or JSON.
package present

import (
	"quarterly_financials/pkg/core/catalog"
	"quarterly_financials/pkg/core/compute"
	"quarterly_financials/pkg/core/period"
)

// Table is row-major: one row per catalog row, one column per period.
type Table struct {
	Periods []period.Key `json:"periods"` // newest first
	Rows    []Row        `json:"rows"`
}

// Row holds one metric across all periods. A nil value is a blank cell.
type Row struct {
	Metric string     `json:"metric"`
	Label  string     `json:"label"`
	Values []*float64 `json:"values"`
}

// Pivot builds the table. Rows follow the catalog's declared order and
// columns are sorted by (fiscal year, quarter) descending.
func Pivot(points compute.Points, cat *catalog.Catalog) *Table {
	keys := points.Keys()

	t := &Table{Periods: keys, Rows: make([]Row, 0, len(cat.Rows))}
	for _, r := range cat.Rows {
		row := Row{Metric: r.Metric, Label: r.Label, Values: make([]*float64, len(keys))}
		for i, k := range keys {
			if v, ok := points.Get(k, r.Metric); ok {
				v := v
				row.Values[i] = &v
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Header returns the header row: an empty corner cell followed by period keys.
func (t *Table) Header() []string {
	h := make([]string, 0, len(t.Periods)+1)
	h = append(h, "")
	for _, k := range t.Periods {
		h = append(h, k.String())
	}
	return h
}

// Records returns header and rows as strings. Blank cells are empty strings.
func (t *Table) Records() [][]string {
	out := make([][]string, 0, len(t.Rows)+1)
	out = append(out, t.Header())
	for _, r := range t.Rows {
		rec := make([]string, 0, len(r.Values)+1)
		rec = append(rec, r.Label)
		for _, v := range r.Values {
			rec = append(rec, FormatValue(v))
		}
		out = append(out, rec)
	}
	return out
}

// Cell returns the value of metric in period p.
func (t *Table) Cell(metric string, p period.Key) (float64, bool) {
	col := -1
	for i, k := range t.Periods {
		if k == p {
			col = i
			break
		}
	}
	if col < 0 {
		return 0, false
	}
	for _, r := range t.Rows {
		if r.Metric == metric && r.Values[col] != nil {
			return *r.Values[col], true
		}
	}
	return 0, false
}
