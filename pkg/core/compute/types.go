// Package compute derives a normalized quarterly statement from SEC company facts.
//
// Pipeline: Extract -> SynthesizeQ4 -> Derive. Each stage takes and mutates
// an explicitly owned Points value; nothing is kept between runs.
package compute

import (
	"quarterly_financials/pkg/core/period"
)

// Record maps metric name to value for one period. A missing metric is blank.
type Record map[string]float64

// Points maps each period to its record.
type Points map[period.Key]Record

// record returns the record for key, creating it if needed.
func (p Points) record(key period.Key) Record {
	r, ok := p[key]
	if !ok {
		r = make(Record)
		p[key] = r
	}
	return r
}

// Keys returns the period keys newest first.
func (p Points) Keys() []period.Key {
	keys := make([]period.Key, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	period.SortDescending(keys)
	return keys
}

// Get returns a metric value for a period.
func (p Points) Get(key period.Key, metric string) (float64, bool) {
	v, ok := p[key][metric]
	return v, ok
}

// Count returns the number of populated cells.
func (p Points) Count() int {
	n := 0
	for _, r := range p {
		n += len(r)
	}
	return n
}
