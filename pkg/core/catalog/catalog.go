// Package catalog defines the metric catalog: which XBRL concepts feed each
// primary metric, how annual figures decompose into quarters, and how
// derived metrics are computed from other metrics in the same period.
package catalog

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// ErrInvalidCatalog is returned by Validate and Load.
var ErrInvalidCatalog = errors.New("invalid metric catalog")

// Aggregation tells the period normalizer how an annual value relates to its quarters.
type Aggregation string

const (
	// Additive metrics sum across quarters: Q4 = FY - (Q1+Q2+Q3).
	Additive Aggregation = "additive"
	// Passthrough metrics are snapshots or year-to-date figures; the FY value is copied into Q4.
	Passthrough Aggregation = "passthrough"
)

// Op is the arithmetic a derived metric applies to its inputs.
type Op string

const (
	OpSum        Op = "sum"        // inputs[0] + inputs[1] + ...
	OpDifference Op = "difference" // inputs[0] - (inputs[1] + ...)
)

// PrimaryMetric is a metric read straight from company facts.
type PrimaryMetric struct {
	Name        string      `yaml:"name" json:"name"`
	Concept     string      `yaml:"concept" json:"concept"`
	Unit        string      `yaml:"unit,omitempty" json:"unit,omitempty"`
	Aggregation Aggregation `yaml:"aggregation" json:"aggregation"`
}

// DerivedMetric is computed from other metrics of the same period.
type DerivedMetric struct {
	Name   string   `yaml:"name" json:"name"`
	Op     Op       `yaml:"op" json:"op"`
	Inputs []string `yaml:"inputs" json:"inputs"`
}

// Row is one line of the presented table.
type Row struct {
	Metric string `yaml:"metric" json:"metric"`
	Label  string `yaml:"label" json:"label"`
}

// Catalog is static configuration for one pipeline run.
type Catalog struct {
	Taxonomy    string          `yaml:"taxonomy" json:"taxonomy"`
	DefaultUnit string          `yaml:"default_unit" json:"default_unit"`
	Primary     []PrimaryMetric `yaml:"primary" json:"primary"`
	Derived     []DerivedMetric `yaml:"derived" json:"derived"`
	Rows        []Row           `yaml:"rows" json:"rows"`
}

// Apply evaluates the metric against a period record.
// It returns false when any input is missing.
func (d DerivedMetric) Apply(record map[string]float64) (float64, bool) {
	if len(d.Inputs) == 0 {
		return 0, false
	}
	vals := make([]float64, len(d.Inputs))
	for i, in := range d.Inputs {
		v, ok := record[in]
		if !ok {
			return 0, false
		}
		vals[i] = v
	}

	switch d.Op {
	case OpSum:
		var total float64
		for _, v := range vals {
			total += v
		}
		return total, true
	case OpDifference:
		result := vals[0]
		for _, v := range vals[1:] {
			result -= v
		}
		return result, true
	}
	return 0, false
}

// UnitFor returns the unit bucket the metric is read from.
func (c *Catalog) UnitFor(m PrimaryMetric) string {
	if m.Unit != "" {
		return m.Unit
	}
	return c.DefaultUnit
}

// AggregationOf returns the aggregation of a primary metric.
// Names not in the primary list are treated as additive.
func (c *Catalog) AggregationOf(metric string) Aggregation {
	for _, m := range c.Primary {
		if m.Name == metric {
			return m.Aggregation
		}
	}
	return Additive
}

// Label returns the display label for a metric, falling back to its name.
func (c *Catalog) Label(metric string) string {
	for _, r := range c.Rows {
		if r.Metric == metric {
			return r.Label
		}
	}
	return metric
}

// RowMetrics returns the metrics shown in the table, in display order.
func (c *Catalog) RowMetrics() []string {
	out := make([]string, len(c.Rows))
	for i, r := range c.Rows {
		out[i] = r.Metric
	}
	return out
}

// Parse decodes a YAML catalog. Top-level sections absent from the document
// keep their default values.
func Parse(data []byte) (*Catalog, error) {
	cat := Default()
	if err := yaml.UnmarshalStrict(data, cat); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return cat, nil
}

// Load reads a YAML catalog override from disk.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// YAML renders the catalog in the format accepted by Parse.
func (c *Catalog) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate checks names, aggregation tags, derived inputs and rows.
func (c *Catalog) Validate() error {
	if c.Taxonomy == "" {
		return fmt.Errorf("%w: taxonomy is required", ErrInvalidCatalog)
	}

	known := make(map[string]bool)
	for _, m := range c.Primary {
		if m.Name == "" || m.Concept == "" {
			return fmt.Errorf("%w: primary metric needs name and concept (%+v)", ErrInvalidCatalog, m)
		}
		if known[m.Name] {
			return fmt.Errorf("%w: duplicate metric %q", ErrInvalidCatalog, m.Name)
		}
		switch m.Aggregation {
		case Additive, Passthrough:
		case "":
			return fmt.Errorf("%w: metric %q has no aggregation (additive or passthrough)", ErrInvalidCatalog, m.Name)
		default:
			return fmt.Errorf("%w: metric %q has unknown aggregation %q", ErrInvalidCatalog, m.Name, m.Aggregation)
		}
		if c.UnitFor(m) == "" {
			return fmt.Errorf("%w: metric %q has no unit and no default unit is set", ErrInvalidCatalog, m.Name)
		}
		known[m.Name] = true
	}

	for _, d := range c.Derived {
		if d.Name == "" {
			return fmt.Errorf("%w: derived metric without name", ErrInvalidCatalog)
		}
		if known[d.Name] {
			return fmt.Errorf("%w: duplicate metric %q", ErrInvalidCatalog, d.Name)
		}
		if d.Op != OpSum && d.Op != OpDifference {
			return fmt.Errorf("%w: derived metric %q has unsupported op %q", ErrInvalidCatalog, d.Name, d.Op)
		}
		if len(d.Inputs) == 0 {
			return fmt.Errorf("%w: derived metric %q has no inputs", ErrInvalidCatalog, d.Name)
		}
		known[d.Name] = true
	}
	for _, d := range c.Derived {
		for _, in := range d.Inputs {
			if !known[in] {
				return fmt.Errorf("%w: derived metric %q depends on unknown metric %q", ErrInvalidCatalog, d.Name, in)
			}
		}
	}
	if _, err := c.EvaluationOrder(); err != nil {
		return err
	}

	for _, r := range c.Rows {
		if !known[r.Metric] {
			return fmt.Errorf("%w: row references unknown metric %q", ErrInvalidCatalog, r.Metric)
		}
	}
	return nil
}
