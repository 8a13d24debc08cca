package catalog

import "fmt"

// EvaluationOrder returns the derived metrics sorted so that every metric
// comes after the derived metrics it reads. Ties keep declaration order.
func (c *Catalog) EvaluationOrder() ([]DerivedMetric, error) {
	index := make(map[string]int, len(c.Derived))
	for i, d := range c.Derived {
		index[d.Name] = i
	}

	// pending[i] counts derived inputs of metric i not yet emitted
	pending := make([]int, len(c.Derived))
	dependents := make(map[string][]int)
	for i, d := range c.Derived {
		for _, in := range d.Inputs {
			if _, ok := index[in]; ok {
				pending[i]++
				dependents[in] = append(dependents[in], i)
			}
		}
	}

	order := make([]DerivedMetric, 0, len(c.Derived))
	done := make([]bool, len(c.Derived))
	for len(order) < len(c.Derived) {
		next := -1
		for i := range c.Derived {
			if !done[i] && pending[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			return nil, fmt.Errorf("%w: derived metrics form a cycle", ErrInvalidCatalog)
		}
		done[next] = true
		order = append(order, c.Derived[next])
		for _, dep := range dependents[c.Derived[next].Name] {
			pending[dep]--
		}
	}
	return order, nil
}
