package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedFacts is returned when a company facts document is not shaped
// like the SEC companyfacts payload. Missing concepts or units are not
// malformed; they are simply absent data.
var ErrMalformedFacts = errors.New("malformed company facts")

// CompanyFacts mirrors https://data.sec.gov/api/xbrl/companyfacts/CIK##########.json
type CompanyFacts struct {
	CIK        json.Number                    `json:"cik"`
	EntityName string                         `json:"entityName"`
	Facts      map[string]map[string]*Concept `json:"facts"` // taxonomy -> concept -> data
}

// Concept holds every disclosed observation of one accounting concept,
// bucketed by unit of measure ("USD", "shares", "USD/shares").
type Concept struct {
	Label       string                   `json:"label"`
	Description string                   `json:"description"`
	Units       map[string][]Observation `json:"units"`
}

// Observation is a single disclosed fact.
// FY and FP describe the filing the value was reported in and may be null.
type Observation struct {
	Val   float64 `json:"val"`
	FY    *int    `json:"fy"`
	FP    *string `json:"fp"`
	Form  string  `json:"form,omitempty"`
	Filed string  `json:"filed,omitempty"`
	Start string  `json:"start,omitempty"`
	End   string  `json:"end,omitempty"`
	Accn  string  `json:"accn,omitempty"`
	Frame string  `json:"frame,omitempty"`
}

// Period returns the fiscal year and period label, and false when either is missing.
func (o Observation) Period() (int, string, bool) {
	if o.FY == nil || o.FP == nil || *o.FY == 0 || *o.FP == "" {
		return 0, "", false
	}
	return *o.FY, *o.FP, true
}

// DecodeCompanyFacts parses a raw companyfacts document.
// Structural problems are reported as ErrMalformedFacts.
func DecodeCompanyFacts(data []byte) (*CompanyFacts, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFacts, err)
	}
	if _, ok := top["facts"]; !ok {
		return nil, fmt.Errorf("%w: missing \"facts\" object", ErrMalformedFacts)
	}

	var cf CompanyFacts
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFacts, err)
	}
	if err := cf.Validate(); err != nil {
		return nil, err
	}
	return &cf, nil
}

// Validate checks the structure of an in-memory document.
func (cf *CompanyFacts) Validate() error {
	if cf == nil {
		return fmt.Errorf("%w: nil document", ErrMalformedFacts)
	}
	if cf.Facts == nil {
		return fmt.Errorf("%w: missing \"facts\" object", ErrMalformedFacts)
	}
	for taxonomy, concepts := range cf.Facts {
		if concepts == nil {
			return fmt.Errorf("%w: taxonomy %q is not an object", ErrMalformedFacts, taxonomy)
		}
		for name, concept := range concepts {
			if concept == nil {
				return fmt.Errorf("%w: concept %s:%s is not an object", ErrMalformedFacts, taxonomy, name)
			}
		}
	}
	return nil
}

// Lookup returns the observations for concept in unit, or nil when absent.
func (cf *CompanyFacts) Lookup(taxonomy, concept, unit string) []Observation {
	if cf == nil {
		return nil
	}
	c := cf.Facts[taxonomy][concept]
	if c == nil {
		return nil
	}
	return c.Units[unit]
}
