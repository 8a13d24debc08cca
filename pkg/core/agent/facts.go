package agent

import (
	"sort"
	"strconv"
	"strings"

	"quarterly_financials/pkg/models"
)

// SearchFactKeys lists concept names in a taxonomy containing query, case-insensitively.
func SearchFactKeys(facts *models.CompanyFacts, taxonomy, query string) []string {
	query = strings.ToLower(query)
	var keys []string
	for name := range facts.Facts[taxonomy] {
		if strings.Contains(strings.ToLower(name), query) {
			keys = append(keys, name)
		}
	}
	sort.Strings(keys)
	return keys
}

// FactPoints returns the observations of a concept keyed by period ("24Q1"),
// read from its USD bucket or, failing that, the alphabetically first unit.
func FactPoints(facts *models.CompanyFacts, taxonomy, concept string) map[string]float64 {
	c := facts.Facts[taxonomy][concept]
	if c == nil || len(c.Units) == 0 {
		return nil
	}

	obs, ok := c.Units["USD"]
	if !ok {
		units := make([]string, 0, len(c.Units))
		for u := range c.Units {
			units = append(units, u)
		}
		sort.Strings(units)
		obs = c.Units[units[0]]
	}

	points := make(map[string]float64)
	for _, o := range obs {
		fy, fp, ok := o.Period()
		if !ok {
			continue
		}
		year := strconv.Itoa(fy % 100)
		if len(year) == 1 {
			year = "0" + year
		}
		points[year+fp] = o.Val
	}
	return points
}
