package dto

import (
	"fmt"
	"time"

	"cash-routing-service/internal/domain"
)

// Params mirrors domain.Params on the wire. Zero amounts are inferred from
// the tables.
type Params struct {
	Days               int     `json:"days"`
	Branches           int     `json:"branches"`
	Routes             int     `json:"routes"`
	LastDaysCollection []int   `json:"last_days_collection"`
	ExtraBoxPercent    float64 `json:"extra_box_percent"`
	DailyInterestRate  float64 `json:"daily_interest_rate"`
	// AnnualInterestPercent replaces daily_interest_rate when set.
	AnnualInterestPercent float64 `json:"annual_interest_percent"`
	Debug                 bool    `json:"debug"`
	Solver                string  `json:"solver"`
	Threads               int     `json:"threads"`
	Parallelism           int     `json:"parallelism"`
	TimeLimit             string  `json:"time_limit"`
	MIPRelGap             float64 `json:"mip_rel_gap"`
	BigM                  float64 `json:"big_m"`
}

type SolveRequest struct {
	Scenario   domain.Scenario    `json:"scenario"`
	Params     Params             `json:"params"`
	MileageFee *domain.MileageFee `json:"mileage_fee,omitempty"`
}

// ToDomain merges the request over defaults. Request fields win when set.
func (p Params) ToDomain(s *domain.Scenario, defaults domain.Params) (domain.Params, error) {
	out := defaults
	out.Days, out.Branches, out.Routes = p.Days, p.Branches, p.Routes
	out.LastDaysCollection = p.LastDaysCollection
	out.ExtraBoxPercent = p.ExtraBoxPercent
	out.DailyInterestRate = p.DailyInterestRate
	if p.AnnualInterestPercent != 0 {
		out.DailyInterestRate = domain.DailyRateFromAnnual(p.AnnualInterestPercent)
	}
	out.Debug = p.Debug
	out.BigM = p.BigM
	if p.Solver != "" {
		out.Backend = p.Solver
	}
	if p.Threads != 0 {
		out.Threads = p.Threads
	}
	if p.Parallelism != 0 {
		out.Parallelism = p.Parallelism
	}
	if p.MIPRelGap != 0 {
		out.MIPRelGap = p.MIPRelGap
	}
	if p.TimeLimit != "" {
		d, err := time.ParseDuration(p.TimeLimit)
		if err != nil || d < 0 {
			return domain.Params{}, fmt.Errorf("%w: time_limit %q is not a duration", domain.ErrInvalidInput, p.TimeLimit)
		}
		out.TimeLimit = d
	}
	return out.WithDimensions(s), nil
}
