package compute

import (
	"log"

	"quarterly_financials/pkg/core/catalog"
	"quarterly_financials/pkg/core/period"
	"quarterly_financials/pkg/models"
)

// Extract reads every primary metric of the catalog from the facts document.
//
// Concepts or units that are not disclosed, and observations without a
// fiscal year/period pair, are skipped. When several observations map to the
// same period key (comparatives repeated in later filings) the last one wins.
func Extract(facts *models.CompanyFacts, cat *catalog.Catalog) Points {
	points := make(Points)

	for _, m := range cat.Primary {
		unit := cat.UnitFor(m)
		obs := facts.Lookup(cat.Taxonomy, m.Concept, unit)
		if len(obs) == 0 {
			log.Printf("[Extractor] %s: no %s:%s observations in %s", m.Name, cat.Taxonomy, m.Concept, unit)
			continue
		}

		written := 0
		for _, o := range obs {
			fy, fp, ok := o.Period()
			if !ok {
				continue
			}
			key, err := period.NewKey(fy, period.Label(fp))
			if err != nil {
				continue
			}
			points.record(key)[m.Name] = o.Val
			written++
		}
		log.Printf("[Extractor] %s: %d/%d observations mapped", m.Name, written, len(obs))
	}

	return points
}
