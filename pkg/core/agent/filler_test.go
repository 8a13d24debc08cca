package agent

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"quarterly_financials/pkg/core/catalog"
	"quarterly_financials/pkg/core/compute"
	"quarterly_financials/pkg/core/period"
	"quarterly_financials/pkg/models"
)

// scriptedProvider replays canned replies and records every prompt it receives.
type scriptedProvider struct {
	mu      sync.Mutex
	replies []string
	err     error
	prompts []string
}

func (p *scriptedProvider) GenerateResponse(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompts = append(p.prompts, prompt)
	if p.err != nil {
		return "", p.err
	}
	if len(p.replies) == 0 {
		return `{"fills": []}`, nil
	}
	reply := p.replies[0]
	p.replies = p.replies[1:]
	return reply, nil
}

func (p *scriptedProvider) AdaptInstructions(raw string) string { return raw }

func grossProfitCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		Taxonomy:    "us-gaap",
		DefaultUnit: "USD",
		Primary: []catalog.PrimaryMetric{
			{Name: "revenue", Concept: "Revenues", Aggregation: catalog.Additive},
			{Name: "cogs", Concept: "CostOfGoodsAndServicesSold", Aggregation: catalog.Additive},
		},
		Derived: []catalog.DerivedMetric{
			{Name: "gross_profit", Op: catalog.OpDifference, Inputs: []string{"revenue", "cogs"}},
		},
		Rows: []catalog.Row{
			{Metric: "revenue", Label: "Revenue"},
			{Metric: "cogs", Label: "Cost of Goods Sold"},
			{Metric: "gross_profit", Label: "Gross Profits"},
		},
	}
}

func testFacts() *models.CompanyFacts {
	fy24, fy23 := 2024, 2023
	q1 := "Q1"
	return &models.CompanyFacts{
		Facts: map[string]map[string]*models.Concept{
			"us-gaap": {
				"CostOfRevenue": {Units: map[string][]models.Observation{
					"USD": {
						{Val: 40, FY: &fy24, FP: &q1},
						{Val: 30, FY: &fy23, FP: &q1},
					},
				}},
			},
		},
	}
}

func mustKey(t *testing.T, s string) period.Key {
	t.Helper()
	k, err := period.ParseKey(s)
	if err != nil {
		t.Fatalf("ParseKey(%q): %v", s, err)
	}
	return k
}

func newTestFiller(p *scriptedProvider) *Filler {
	mgr := NewManager(Config{ActiveProvider: "scripted"})
	mgr.RegisterProvider("scripted", p)
	return NewFiller(mgr, grossProfitCatalog())
}

func TestFiller_FillsAndRederives(t *testing.T) {
	p := &scriptedProvider{replies: []string{
		"```json\n{\"fills\": [{\"key\": \"cogs\", \"year\": 2024, \"quarter\": \"Q1\", \"value\": 40}]}\n```",
	}}
	q1 := mustKey(t, "24Q1")
	points := compute.Points{q1: {"revenue": 100}}

	report, err := newTestFiller(p).Run(context.Background(), testFacts(), points)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Rounds != 1 || report.Filled != 1 || report.Remaining != 0 {
		t.Errorf("report = %+v, want 1 round, 1 filled, 0 remaining", report)
	}
	if report.RunID == "" {
		t.Error("expected a run id")
	}
	if got := points[q1]["gross_profit"]; got != 60 {
		t.Errorf("gross_profit = %v, want 60", got)
	}
}

func TestFiller_PromptCarriesBlankYearsOnly(t *testing.T) {
	p := &scriptedProvider{}
	points := compute.Points{mustKey(t, "24Q1"): {"revenue": 100}}

	if _, err := newTestFiller(p).Run(context.Background(), testFacts(), points); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(p.prompts) != 1 {
		t.Fatalf("expected 1 prompt, got %d", len(p.prompts))
	}

	var req fillRequest
	if err := json.Unmarshal([]byte(p.prompts[0]), &req); err != nil {
		t.Fatalf("prompt is not JSON: %v", err)
	}
	if len(req.Blanks) != 1 || req.Blanks[0].Key != "cogs" || req.Blanks[0].Year != 2024 {
		t.Errorf("blanks = %+v", req.Blanks)
	}
	if req.Computed["24Q1"]["revenue"] != 100 {
		t.Errorf("computed = %v", req.Computed)
	}
	pts := req.Facts["CostOfRevenue"]
	if pts["24Q1"] != 40 {
		t.Errorf("expected 24Q1 CostOfRevenue in facts, got %v", pts)
	}
	if _, ok := pts["23Q1"]; ok {
		t.Error("facts outside the blanks' fiscal years should not be sent")
	}
	if req.Labels["cogs"] != "Cost of Goods Sold" {
		t.Errorf("labels = %v", req.Labels)
	}
}

func TestFiller_Q4PromptCarriesWholeFiscalYear(t *testing.T) {
	fy24, fy23 := 2024, 2023
	q1, q2, q3, fy := "Q1", "Q2", "Q3", "FY"
	facts := &models.CompanyFacts{
		Facts: map[string]map[string]*models.Concept{
			"us-gaap": {
				"Revenues": {Units: map[string][]models.Observation{
					"USD": {
						{Val: 100, FY: &fy24, FP: &q1},
						{Val: 110, FY: &fy24, FP: &q2},
						{Val: 120, FY: &fy24, FP: &q3},
						{Val: 460, FY: &fy24, FP: &fy},
						{Val: 90, FY: &fy23, FP: &q1},
					},
				}},
			},
		},
	}
	points := compute.Points{
		mustKey(t, "24Q1"): {"revenue": 100, "cogs": 40, "gross_profit": 60},
		mustKey(t, "24Q2"): {"revenue": 110, "cogs": 44, "gross_profit": 66},
		mustKey(t, "24Q3"): {"revenue": 120, "cogs": 48, "gross_profit": 72},
		mustKey(t, "24Q4"): {"cogs": 52},
	}
	p := &scriptedProvider{}

	if _, err := newTestFiller(p).Run(context.Background(), facts, points); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(p.prompts) == 0 {
		t.Fatal("expected a prompt")
	}

	var req fillRequest
	if err := json.Unmarshal([]byte(p.prompts[0]), &req); err != nil {
		t.Fatalf("prompt is not JSON: %v", err)
	}
	if len(req.Blanks) != 1 || req.Blanks[0].Key != "revenue" || req.Blanks[0].Quarter != "Q4" {
		t.Fatalf("blanks = %+v", req.Blanks)
	}

	want := map[string]float64{"24Q1": 100, "24Q2": 110, "24Q3": 120, "24FY": 460}
	got := req.Facts["Revenues"]
	for pk, v := range want {
		if got[pk] != v {
			t.Errorf("facts[Revenues][%s] = %v, want %v", pk, got[pk], v)
		}
	}
	if _, ok := got["23Q1"]; ok {
		t.Error("prior-year facts should not be sent")
	}
	for _, pk := range []string{"24Q1", "24Q2", "24Q3"} {
		if _, ok := req.Computed[pk]["revenue"]; !ok {
			t.Errorf("computed %s missing revenue: %v", pk, req.Computed[pk])
		}
	}
	if req.Computed["24Q4"]["cogs"] != 52 {
		t.Errorf("computed 24Q4 = %v", req.Computed["24Q4"])
	}
}

func TestFiller_AbandonStopsAsking(t *testing.T) {
	p := &scriptedProvider{replies: []string{
		`{"fills": [{"key": "cogs", "year": 2024, "quarter": "Q1", "value": "~"}]}`,
	}}
	points := compute.Points{mustKey(t, "24Q1"): {"revenue": 100}}

	report, err := newTestFiller(p).Run(context.Background(), testFacts(), points)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	// Round 2 asks for gross_profit, gets nothing back, and stops.
	if report.Rounds != 2 || report.Abandoned != 1 || report.Filled != 0 {
		t.Errorf("report = %+v", report)
	}
	if report.Remaining != 1 {
		t.Errorf("remaining = %d, want 1", report.Remaining)
	}
	if _, ok := points[mustKey(t, "24Q1")]["cogs"]; ok {
		t.Error("abandoned cell must stay blank")
	}
}

func TestFiller_ProviderError(t *testing.T) {
	boom := errors.New("quota exceeded")
	p := &scriptedProvider{err: boom}
	points := compute.Points{mustKey(t, "24Q1"): {"revenue": 100}}

	report, err := newTestFiller(p).Run(context.Background(), testFacts(), points)
	if !errors.Is(err, boom) {
		t.Fatalf("expected provider error, got %v", err)
	}
	if report == nil || report.Rounds != 1 || report.Remaining != 1 {
		t.Errorf("report = %+v", report)
	}
}

func TestFiller_RespectsMaxRounds(t *testing.T) {
	p := &scriptedProvider{replies: []string{
		`{"fills": [{"key": "cogs", "year": 2024, "quarter": "Q1", "value": "~"}]}`,
		`{"fills": [{"key": "gross_profit", "year": 2024, "quarter": "Q1", "value": "~"}]}`,
	}}
	f := newTestFiller(p)
	f.MaxRounds = 1
	points := compute.Points{mustKey(t, "24Q1"): {"revenue": 100}}

	report, err := f.Run(context.Background(), testFacts(), points)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Rounds != 1 || len(p.prompts) != 1 {
		t.Errorf("expected a single round, got %+v with %d prompts", report, len(p.prompts))
	}
}
