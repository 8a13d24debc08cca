package catalog

// Default returns the built-in catalog for US GAAP filers.
// Each call returns a fresh copy that callers may modify.
func Default() *Catalog {
	return &Catalog{
		Taxonomy:    "us-gaap",
		DefaultUnit: "USD",
		Primary: []PrimaryMetric{
			{Name: "revenue", Concept: "RevenueFromContractWithCustomerExcludingAssessedTax", Aggregation: Additive},
			{Name: "cogs", Concept: "CostOfRevenue", Aggregation: Additive},

			{Name: "r_and_d", Concept: "ResearchAndDevelopmentExpense", Aggregation: Additive},
			{Name: "s_and_m", Concept: "SellingAndMarketingExpense", Aggregation: Additive},
			{Name: "g_and_a", Concept: "GeneralAndAdministrativeExpense", Aggregation: Additive},

			{Name: "operating_income", Concept: "OperatingIncomeLoss", Aggregation: Additive},

			{Name: "depreciation", Concept: "Depreciation", Aggregation: Additive},
			{Name: "d_and_a", Concept: "DepreciationDepletionAndAmortization", Aggregation: Passthrough},

			{Name: "net_income", Concept: "NetIncomeLoss", Aggregation: Additive},

			{Name: "diluted_shares", Concept: "WeightedAverageNumberOfDilutedSharesOutstanding", Unit: "shares", Aggregation: Passthrough},
			{Name: "eps_diluted", Concept: "EarningsPerShareDiluted", Unit: "USD/shares", Aggregation: Passthrough},

			// Cash flow statement items are reported year-to-date.
			{Name: "operating_cash_flow", Concept: "NetCashProvidedByUsedInOperatingActivities", Aggregation: Passthrough},
			{Name: "capital_expenditures", Concept: "PaymentsToAcquirePropertyPlantAndEquipment", Aggregation: Passthrough},
		},
		Derived: []DerivedMetric{
			{Name: "gross_profit", Op: OpDifference, Inputs: []string{"revenue", "cogs"}},
			{Name: "operating_expenses", Op: OpSum, Inputs: []string{"r_and_d", "s_and_m", "g_and_a"}},
			{Name: "amortization", Op: OpDifference, Inputs: []string{"d_and_a", "depreciation"}},
			{Name: "ebitda", Op: OpSum, Inputs: []string{"operating_income", "depreciation", "amortization"}},
			{Name: "free_cash_flow", Op: OpDifference, Inputs: []string{"operating_cash_flow", "capital_expenditures"}},
		},
		Rows: []Row{
			{Metric: "revenue", Label: "Revenue"},
			{Metric: "cogs", Label: "Cost of Goods Sold"},
			{Metric: "gross_profit", Label: "Gross Profits"},
			{Metric: "r_and_d", Label: "R&D"},
			{Metric: "s_and_m", Label: "S&M"},
			{Metric: "g_and_a", Label: "G&A"},
			{Metric: "operating_expenses", Label: "Operating Expenses"},
			{Metric: "operating_income", Label: "Operating Income"},
			{Metric: "depreciation", Label: "Depreciation"},
			{Metric: "amortization", Label: "Amortization"},
			{Metric: "ebitda", Label: "EBITDA"},
			{Metric: "net_income", Label: "Net Income"},
			{Metric: "diluted_shares", Label: "Diluted Shares"},
			{Metric: "eps_diluted", Label: "Earning per FDS"},
			{Metric: "operating_cash_flow", Label: "Operating Cashflow"},
			{Metric: "capital_expenditures", Label: "Capital Expenditure"},
			{Metric: "free_cash_flow", Label: "Free Cashflow"},
		},
	}
}
