package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"

	"quarterly_financials/pkg/core/catalog"
	"quarterly_financials/pkg/core/compute"
	"quarterly_financials/pkg/core/llm"
	"quarterly_financials/pkg/core/period"
	"quarterly_financials/pkg/core/prompt"
	"quarterly_financials/pkg/core/utils"
	"quarterly_financials/pkg/models"

	"github.com/google/uuid"
)

// searchHints narrows the concept list sent for each metric.
var searchHints = map[string][]string{
	"revenue":              {"Revenue", "Sales"},
	"cogs":                 {"CostOf"},
	"gross_profit":         {"GrossProfit"},
	"r_and_d":              {"ResearchAndDevelopment"},
	"s_and_m":              {"SellingAndMarketing", "SellingGeneral", "Marketing"},
	"g_and_a":              {"GeneralAndAdministrative", "SellingGeneral"},
	"operating_expenses":   {"OperatingExpenses", "CostsAndExpenses"},
	"operating_income":     {"OperatingIncome"},
	"depreciation":         {"Depreciation"},
	"amortization":         {"Amortization"},
	"ebitda":               {"OperatingIncome", "Depreciation"},
	"net_income":           {"NetIncome", "ProfitLoss"},
	"diluted_shares":       {"DilutedShares", "WeightedAverageNumberOfDiluted"},
	"eps_diluted":          {"EarningsPerShareDiluted"},
	"operating_cash_flow":  {"OperatingActivities"},
	"capital_expenditures": {"PaymentsToAcquireProperty", "CapitalExpenditure"},
	"free_cash_flow":       {"OperatingActivities", "PaymentsToAcquireProperty"},
}

const maxConceptsPerMetric = 8

var yearLabels = []period.Label{period.Q1, period.Q2, period.Q3, period.Q4, period.FY}

// Filler runs the blank-filling loop against one company's computed points.
type Filler struct {
	mgr       *Manager
	catalog   *catalog.Catalog
	BatchSize int
	MaxRounds int
}

// Report summarizes a Filler run.
type Report struct {
	RunID     string `json:"run_id"`
	Rounds    int    `json:"rounds"`
	Filled    int    `json:"filled"`
	Abandoned int    `json:"abandoned"`
	Remaining int    `json:"remaining"`
}

// NewFiller creates a filler. A nil catalog means catalog.Default().
func NewFiller(mgr *Manager, cat *catalog.Catalog) *Filler {
	if cat == nil {
		cat = catalog.Default()
	}
	return &Filler{mgr: mgr, catalog: cat, BatchSize: 25, MaxRounds: 20}
}

type fillRequest struct {
	Blanks   []Blank                       `json:"blanks"`
	Labels   map[string]string             `json:"labels"`
	Computed map[string]compute.Record     `json:"computed"`
	Facts    map[string]map[string]float64 `json:"facts"`
}

type fillResponse struct {
	Fills []Fill `json:"fills"`
}

// Run asks the model for blanks until none remain, a round makes no
// progress, or MaxRounds is reached. Points are updated in place and
// derived metrics are recomputed after every round.
func (f *Filler) Run(ctx context.Context, facts *models.CompanyFacts, points compute.Points) (*Report, error) {
	report := &Report{RunID: uuid.New().String()}
	metrics := f.catalog.RowMetrics()
	abandoned := AbandonSet{}

	for report.Rounds < f.MaxRounds {
		blanks := NextBlanks(points, metrics, abandoned, f.BatchSize)
		if len(blanks) == 0 {
			break
		}
		report.Rounds++

		req, err := f.buildPrompt(facts, points, blanks)
		if err != nil {
			return report, err
		}

		reply, err := f.mgr.ExecutePrompt(ctx, AgentFiller, req, prompt.SystemPrompt(prompt.FillerID), f.options())
		if err != nil {
			report.Remaining = len(NextBlanks(points, metrics, abandoned, 0))
			return report, fmt.Errorf("agent round %d failed: %w", report.Rounds, err)
		}

		var resp fillResponse
		if _, err := utils.SmartParse(reply, &resp); err != nil {
			log.Printf("[Agent] %s round %d: unparseable reply: %v", report.RunID, report.Rounds, err)
			break
		}

		filled, gaveUp, err := ApplyFills(points, metrics, resp.Fills, abandoned)
		if err != nil {
			log.Printf("[Agent] %s round %d: %v", report.RunID, report.Rounds, err)
		}
		report.Filled += filled
		report.Abandoned += gaveUp
		log.Printf("[Agent] %s round %d: %d blanks, %d filled, %d abandoned", report.RunID, report.Rounds, len(blanks), filled, gaveUp)

		if err := compute.Derive(points, f.catalog); err != nil {
			return report, err
		}
		if filled+gaveUp == 0 {
			break
		}
	}

	report.Remaining = len(NextBlanks(points, metrics, abandoned, 0))
	return report, nil
}

func (f *Filler) options() map[string]interface{} {
	opts := f.mgr.Options(AgentFiller)
	opts[llm.OptionJSONMode] = true
	return opts
}

func (f *Filler) buildPrompt(facts *models.CompanyFacts, points compute.Points, blanks []Blank) (string, error) {
	req := fillRequest{
		Blanks:   blanks,
		Labels:   make(map[string]string),
		Computed: make(map[string]compute.Record),
		Facts:    make(map[string]map[string]float64),
	}

	// Every period of a blank's fiscal year: a Q4 is FY minus Q1..Q3, and a
	// quarter is often only visible next to its neighbours.
	wanted := make(map[string]bool)
	for _, b := range blanks {
		req.Labels[b.Key] = f.catalog.Label(b.Key)
		k, err := b.periodKey()
		if err != nil {
			continue
		}
		for _, l := range yearLabels {
			pk := k.WithLabel(l)
			wanted[pk.String()] = true
			if r, ok := points[pk]; ok {
				req.Computed[pk.String()] = r
			}
		}
	}

	seen := make(map[string]bool)
	for _, b := range blanks {
		for _, concept := range f.candidateConcepts(facts, b.Key) {
			if seen[concept] {
				continue
			}
			seen[concept] = true
			pts := make(map[string]float64)
			for p, v := range FactPoints(facts, f.catalog.Taxonomy, concept) {
				if wanted[p] {
					pts[p] = v
				}
			}
			if len(pts) > 0 {
				req.Facts[concept] = pts
			}
		}
	}

	b, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal agent request: %w", err)
	}
	return string(b), nil
}

func (f *Filler) candidateConcepts(facts *models.CompanyFacts, metric string) []string {
	hints, ok := searchHints[metric]
	if !ok {
		hints = []string{strings.ReplaceAll(metric, "_", "")}
	}

	var out []string
	seen := make(map[string]bool)
	for _, h := range hints {
		for _, k := range SearchFactKeys(facts, f.catalog.Taxonomy, h) {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	sort.Strings(out)
	if len(out) > maxConceptsPerMetric {
		out = out[:maxConceptsPerMetric]
	}
	return out
}
