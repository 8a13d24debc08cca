package compute

import (
	"math"
	"testing"

	"quarterly_financials/pkg/core/catalog"
)

func TestSynthesizeQ4_AdditiveSubtraction(t *testing.T) {
	points := Points{
		key("24Q1"): {"revenue": 100},
		key("24Q2"): {"revenue": 110},
		key("24Q3"): {"revenue": 120},
		key("24FY"): {"revenue": 460},
	}

	SynthesizeQ4(points, catalog.Default())

	got, ok := points.Get(key("24Q4"), "revenue")
	if !ok {
		t.Fatal("expected synthesized Q4 revenue")
	}
	if math.Abs(got-130) > 1e-9 {
		t.Errorf("Q4 revenue = %f, want 130", got)
	}
	if _, ok := points[key("24FY")]; ok {
		t.Error("FY key must be removed")
	}
}

func TestSynthesizeQ4_PartialQuartersSkipAdditive(t *testing.T) {
	points := Points{
		key("24Q1"): {"revenue": 100, "cogs": 40},
		key("24Q3"): {"revenue": 120, "cogs": 45},
		key("24Q2"): {"cogs": 42},
		key("24FY"): {"revenue": 460, "cogs": 170},
	}

	SynthesizeQ4(points, catalog.Default())

	if _, ok := points.Get(key("24Q4"), "revenue"); ok {
		t.Error("revenue is missing in Q2, Q4 must not be synthesized")
	}
	if got, _ := points.Get(key("24Q4"), "cogs"); got != 43 {
		t.Errorf("Q4 cogs = %v, want 43", got)
	}
}

func TestSynthesizeQ4_PassthroughCopied(t *testing.T) {
	points := Points{
		key("23Q1"): {"eps_diluted": 1.1, "operating_cash_flow": 30},
		key("23Q2"): {"eps_diluted": 1.2, "operating_cash_flow": 70},
		key("23Q3"): {"eps_diluted": 1.3, "operating_cash_flow": 100},
		key("23FY"): {"eps_diluted": 5.0, "operating_cash_flow": 150, "diluted_shares": 90},
	}

	SynthesizeQ4(points, catalog.Default())

	want := map[string]float64{"eps_diluted": 5.0, "operating_cash_flow": 150, "diluted_shares": 90}
	for m, v := range want {
		if got, ok := points.Get(key("23Q4"), m); !ok || got != v {
			t.Errorf("Q4 %s = %v (present=%v), want %v copied from FY", m, got, ok, v)
		}
	}
}

func TestSynthesizeQ4_AnnualOnlyProducesNothing(t *testing.T) {
	points := Points{
		key("22FY"): {"net_income": 500},
	}

	SynthesizeQ4(points, catalog.Default())

	if len(points) != 0 {
		t.Errorf("expected no periods for FY-only additive data, got %v", points)
	}
}

func TestSynthesizeQ4_RemovesEveryAnnualKey(t *testing.T) {
	points := Points{
		key("21FY"): {"revenue": 1},
		key("22FY"): {"d_and_a": 2},
		key("23FY"): {},
		key("23Q1"): {"revenue": 3},
	}

	SynthesizeQ4(points, catalog.Default())

	for k := range points {
		if k.IsAnnual() {
			t.Errorf("annual key %s survived", k)
		}
	}
	if _, ok := points.Get(key("22Q4"), "d_and_a"); !ok {
		t.Error("passthrough d_and_a should be copied into 22Q4")
	}
}

func TestSynthesizeQ4_KeepsExistingQ4Values(t *testing.T) {
	points := Points{
		key("24Q1"): {"revenue": 100},
		key("24Q2"): {"revenue": 110},
		key("24Q3"): {"revenue": 120},
		key("24Q4"): {"revenue": 999, "eps_diluted": 2},
		key("24FY"): {"revenue": 460, "eps_diluted": 7},
	}

	SynthesizeQ4(points, catalog.Default())

	if got, _ := points.Get(key("24Q4"), "revenue"); got != 999 {
		t.Errorf("existing Q4 revenue overwritten: %v", got)
	}
	if got, _ := points.Get(key("24Q4"), "eps_diluted"); got != 2 {
		t.Errorf("existing Q4 eps overwritten: %v", got)
	}
}

func TestSynthesizeQ4_OtherYearsIgnored(t *testing.T) {
	points := Points{
		key("23Q1"): {"revenue": 100},
		key("23Q2"): {"revenue": 110},
		key("23Q3"): {"revenue": 120},
		key("24FY"): {"revenue": 460},
	}

	SynthesizeQ4(points, catalog.Default())

	if _, ok := points[key("24Q4")]; ok {
		t.Error("quarters of a different fiscal year must not be used")
	}
	if _, ok := points[key("23Q4")]; ok {
		t.Error("no FY for 2023, so no Q4")
	}
}

func TestSynthesizeQ4_UnknownMetricIsAdditive(t *testing.T) {
	points := Points{
		key("24Q1"): {"custom": 1},
		key("24Q2"): {"custom": 2},
		key("24Q3"): {"custom": 3},
		key("24FY"): {"custom": 10},
	}

	SynthesizeQ4(points, catalog.Default())

	if got, _ := points.Get(key("24Q4"), "custom"); got != 4 {
		t.Errorf("custom Q4 = %v, want 4", got)
	}
}
