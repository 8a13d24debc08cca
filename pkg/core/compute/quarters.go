package compute

import (
	"log"

	"quarterly_financials/pkg/core/catalog"
	"quarterly_financials/pkg/core/period"
)

var firstThreeQuarters = []period.Label{period.Q1, period.Q2, period.Q3}

// SynthesizeQ4 replaces every FY record with a standalone Q4 record.
//
// Passthrough metrics are copied from FY unchanged. Additive metrics get
// FY - (Q1+Q2+Q3), and only when all three quarters carry the metric.
// Values already present in Q4 are kept. FY keys are always removed.
func SynthesizeQ4(points Points, cat *catalog.Catalog) {
	var annual []period.Key
	for k := range points {
		if k.IsAnnual() {
			annual = append(annual, k)
		}
	}
	period.SortDescending(annual)

	for _, fyKey := range annual {
		fy := points[fyKey]
		q4Key := fyKey.WithLabel(period.Q4)
		q4 := points[q4Key]
		synthesized := make(Record)

		for metric, total := range fy {
			if _, exists := q4[metric]; exists {
				continue
			}

			if cat.AggregationOf(metric) == catalog.Passthrough {
				synthesized[metric] = total
				continue
			}

			sum, ok := sumQuarters(points, fyKey, metric)
			if !ok {
				continue
			}
			synthesized[metric] = total - sum
		}

		if len(synthesized) > 0 {
			rec := points.record(q4Key)
			for m, v := range synthesized {
				rec[m] = v
			}
		}
		delete(points, fyKey)

		log.Printf("[Normalizer] %s -> %s: %d/%d metrics synthesized", fyKey, q4Key, len(synthesized), len(fy))
	}
}

// sumQuarters adds Q1..Q3 of the fiscal year. It fails unless all three are present.
func sumQuarters(points Points, fyKey period.Key, metric string) (float64, bool) {
	var sum float64
	for _, l := range firstThreeQuarters {
		v, ok := points[fyKey.WithLabel(l)][metric]
		if !ok {
			return 0, false
		}
		sum += v
	}
	return sum, true
}
