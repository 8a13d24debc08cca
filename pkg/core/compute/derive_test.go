package compute

import (
	"testing"

	"quarterly_financials/pkg/core/catalog"
)

func TestDerive_Ebitda(t *testing.T) {
	points := Points{
		key("24Q1"): {"operating_income": 50, "depreciation": 10, "d_and_a": 15},
		key("24Q2"): {"operating_income": 50, "depreciation": 10},
	}

	if err := Derive(points, catalog.Default()); err != nil {
		t.Fatalf("Derive failed: %v", err)
	}

	if got, _ := points.Get(key("24Q1"), "amortization"); got != 5 {
		t.Errorf("amortization = %v, want 5", got)
	}
	if got, ok := points.Get(key("24Q1"), "ebitda"); !ok || got != 65 {
		t.Errorf("ebitda = %v (present=%v), want 65", got, ok)
	}
	if _, ok := points.Get(key("24Q2"), "ebitda"); ok {
		t.Error("24Q2 lacks amortization inputs, ebitda must be absent")
	}
}

func TestDerive_IffInputsPresent(t *testing.T) {
	cat := catalog.Default()
	points := Points{
		key("24Q1"): {"revenue": 100, "cogs": 60, "r_and_d": 1, "s_and_m": 2, "g_and_a": 3, "operating_cash_flow": 40, "capital_expenditures": 15},
		key("24Q2"): {"revenue": 100, "r_and_d": 1, "g_and_a": 3, "operating_cash_flow": 40},
		key("24Q3"): {},
	}

	if err := Derive(points, cat); err != nil {
		t.Fatalf("Derive failed: %v", err)
	}

	for k, rec := range points {
		for _, d := range cat.Derived {
			_, present := rec[d.Name]
			allInputs := true
			for _, in := range d.Inputs {
				if _, ok := rec[in]; !ok {
					allInputs = false
				}
			}
			if present != allInputs {
				t.Errorf("%s %s: present=%v but inputs present=%v", k, d.Name, present, allInputs)
			}
		}
	}

	if got, _ := points.Get(key("24Q1"), "gross_profit"); got != 40 {
		t.Errorf("gross_profit = %v, want 40", got)
	}
	if got, _ := points.Get(key("24Q1"), "operating_expenses"); got != 6 {
		t.Errorf("operating_expenses = %v, want 6", got)
	}
	if got, _ := points.Get(key("24Q1"), "free_cash_flow"); got != 25 {
		t.Errorf("free_cash_flow = %v, want 25", got)
	}
}

func TestDerive_DoesNotOverwrite(t *testing.T) {
	points := Points{
		key("24Q1"): {"revenue": 100, "cogs": 60, "gross_profit": 41},
	}

	if err := Derive(points, catalog.Default()); err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	if got, _ := points.Get(key("24Q1"), "gross_profit"); got != 41 {
		t.Errorf("gross_profit overwritten: %v", got)
	}
	if got, _ := points.Get(key("24Q1"), "revenue"); got != 100 {
		t.Errorf("inputs must be untouched, revenue = %v", got)
	}
}

func TestDerive_OutOfOrderDeclaration(t *testing.T) {
	cat := catalog.Default()
	cat.Derived = []catalog.DerivedMetric{
		{Name: "ebitda", Op: catalog.OpSum, Inputs: []string{"operating_income", "depreciation", "amortization"}},
		{Name: "amortization", Op: catalog.OpDifference, Inputs: []string{"d_and_a", "depreciation"}},
	}
	points := Points{
		key("24Q1"): {"operating_income": 50, "depreciation": 10, "d_and_a": 15},
	}

	if err := Derive(points, cat); err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	if got, _ := points.Get(key("24Q1"), "ebitda"); got != 65 {
		t.Errorf("ebitda = %v, want 65", got)
	}
}
