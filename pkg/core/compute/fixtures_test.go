package compute

import (
	"quarterly_financials/pkg/core/period"
	"quarterly_financials/pkg/models"
)

type obs struct {
	fy  int
	fp  string
	val float64
}

// factsBuilder assembles a companyfacts document in the us-gaap taxonomy.
type factsBuilder struct {
	cf *models.CompanyFacts
}

func newFacts() *factsBuilder {
	return &factsBuilder{cf: &models.CompanyFacts{
		EntityName: "Test Corp",
		Facts:      map[string]map[string]*models.Concept{"us-gaap": {}},
	}}
}

func (b *factsBuilder) add(concept, unit string, points ...obs) *factsBuilder {
	c := b.cf.Facts["us-gaap"][concept]
	if c == nil {
		c = &models.Concept{Units: map[string][]models.Observation{}}
		b.cf.Facts["us-gaap"][concept] = c
	}
	for _, p := range points {
		fy, fp := p.fy, p.fp
		c.Units[unit] = append(c.Units[unit], models.Observation{Val: p.val, FY: &fy, FP: &fp})
	}
	return b
}

func (b *factsBuilder) build() *models.CompanyFacts {
	return b.cf
}

func key(s string) period.Key {
	k, err := period.ParseKey(s)
	if err != nil {
		panic(err)
	}
	return k
}
