package compute

import (
	"quarterly_financials/pkg/core/catalog"
)

// Derive computes every derived metric whose inputs are all present, for each
// period independently. Existing values are never overwritten.
func Derive(points Points, cat *catalog.Catalog) error {
	order, err := cat.EvaluationOrder()
	if err != nil {
		return err
	}

	for _, rec := range points {
		for _, d := range order {
			if _, exists := rec[d.Name]; exists {
				continue
			}
			if v, ok := d.Apply(rec); ok {
				rec[d.Name] = v
			}
		}
	}
	return nil
}
