package domain

import "github.com/shopspring/decimal"

// Per-branch cost breakdown of a solved plan.
type BranchTotals struct {
	Branch        int             `json:"branch"`
	Withdrawn     decimal.Decimal `json:"withdrawn"`
	Stops         int             `json:"stops"`
	LogisticCost  decimal.Decimal `json:"logistic_cost"`
	FinancialCost decimal.Decimal `json:"financial_cost"`
	MileageFee    decimal.Decimal `json:"mileage_fee"`
	Total         decimal.Decimal `json:"total"`
}

// Dispatch is one route run on one day.
type Dispatch struct {
	Day      int             `json:"day"`
	Route    int             `json:"route"`
	Branches []int           `json:"branches"`
	Amount   decimal.Decimal `json:"amount"`
}

// MileageFee is a fleet charge of Fixed + max(0, Coefficient·(R − Threshold)),
// where R is the total cash withdrawn. It is prorated by each branch's share of R.
type MileageFee struct {
	Fixed       float64 `json:"fixed" yaml:"fixed"`
	Threshold   float64 `json:"threshold" yaml:"threshold"`
	Coefficient float64 `json:"coefficient" yaml:"coefficient"`
}

func (f MileageFee) Enabled() bool {
	return f.Fixed != 0 || f.Coefficient != 0
}

type PlanSummary struct {
	Branches      []BranchTotals  `json:"branches"`
	Dispatches    []Dispatch      `json:"dispatches"`
	Withdrawn     decimal.Decimal `json:"withdrawn"`
	LogisticCost  decimal.Decimal `json:"logistic_cost"`
	FinancialCost decimal.Decimal `json:"financial_cost"`
	MileageFee    decimal.Decimal `json:"mileage_fee"`
	Total         decimal.Decimal `json:"total"`
}

// GainReport compares the plan optimized with financial cost against the plan
// optimized on logistics alone.
type GainReport struct {
	DailyRate float64 `json:"daily_rate"`
	// TotalWithRate is the objective of the solve that prices idle cash.
	TotalWithRate float64 `json:"total_with_rate"`
	// LogisticCost is the objective of the zero-rate solve.
	LogisticCost float64 `json:"logistic_cost"`
	// FinancialBase is opening cash plus end-of-day cash before the last day,
	// taken from the zero-rate solve and not yet multiplied by the rate.
	FinancialBase float64 `json:"financial_base"`
	Gain          float64 `json:"gain"`

	Statuses       []string `json:"statuses"`
	StatusesAtZero []string `json:"statuses_at_zero"`
}
