package compute

import (
	"fmt"
	"log"

	"quarterly_financials/pkg/core/catalog"
	"quarterly_financials/pkg/models"
)

// Compute runs the full pipeline on one company's facts.
// The only errors are a malformed facts document or an invalid catalog;
// missing data just leaves cells blank.
func Compute(facts *models.CompanyFacts, cat *catalog.Catalog) (Points, error) {
	if err := facts.Validate(); err != nil {
		return nil, err
	}
	if cat == nil {
		cat = catalog.Default()
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}

	points := Extract(facts, cat)
	SynthesizeQ4(points, cat)
	if err := Derive(points, cat); err != nil {
		return nil, fmt.Errorf("failed to derive metrics: %w", err)
	}

	log.Printf("[Pipeline] %s: %d periods, %d values", facts.EntityName, len(points), points.Count())
	return points, nil
}
