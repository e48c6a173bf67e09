package domain

import (
	"math"
	"time"
)

// Scenario holds the six input tables of a cash-routing problem.
// Matrices are indexed [row][column] exactly as loaded.
type Scenario struct {
	// Incidence is routes x branches, entries in {0,1}.
	Incidence   [][]float64 `json:"incidence"`
	RouteCost   []float64   `json:"route_cost"`
	OpeningCash []float64   `json:"opening_cash"`
	BoxCapacity []float64   `json:"box_capacity"`
	// BusinessDays is routes x days, entries in {0,1}.
	BusinessDays [][]float64 `json:"business_days"`
	// Collection is branches x days.
	Collection [][]float64 `json:"collection"`
}

// Scalar parameters of a solve.
type Params struct {
	Days     int `yaml:"days"`
	Branches int `yaml:"branches"`
	Routes   int `yaml:"routes"`

	// LastDaysCollection lists the days on which every branch must be visited at least once.
	LastDaysCollection []int   `yaml:"last_days_collection"`
	ExtraBoxPercent    float64 `yaml:"extra_box_percent"`
	DailyInterestRate  float64 `yaml:"daily_interest_rate"`

	Debug     bool          `yaml:"debug"`
	Backend   string        `yaml:"solver"`
	Threads   int           `yaml:"threads"`
	TimeLimit time.Duration `yaml:"time_limit"`
	MIPRelGap float64       `yaml:"mip_rel_gap"`

	// Parallelism above 1 solves sub-problems concurrently.
	Parallelism int `yaml:"parallelism"`

	// BigM overrides the per-route linking constant derived from the data.
	// It must dominate the derived bound.
	BigM float64 `yaml:"big_m"`
}

// Dimensions infers (days, branches, routes) from the table shapes.
func (s *Scenario) Dimensions() (days, branches, routes int) {
	routes = len(s.Incidence)
	if routes > 0 {
		branches = len(s.Incidence[0])
	}
	for i, row := range s.Collection {
		if i == 0 || len(row) < days {
			days = len(row)
		}
	}
	return days, branches, routes
}

// WithDimensions fills zero amounts from the table shapes.
func (p Params) WithDimensions(s *Scenario) Params {
	days, branches, routes := s.Dimensions()
	if p.Days == 0 {
		p.Days = days
	}
	if p.Branches == 0 {
		p.Branches = branches
	}
	if p.Routes == 0 {
		p.Routes = routes
	}
	return p
}

// EffectiveCapacity is the box capacity of branch b extended by extra.
func (s *Scenario) EffectiveCapacity(b int, extra float64) float64 {
	return s.BoxCapacity[b] * (1.0 + extra)
}

// MaxCollection is the largest single-day collection of branch b within the horizon.
func (s *Scenario) MaxCollection(b, days int) float64 {
	m := math.Inf(-1)
	for d := 0; d < days && d < len(s.Collection[b]); d++ {
		m = math.Max(m, s.Collection[b][d])
	}
	return m
}

// CashBound is the most cash branch b can ever hold: opening plus every collection.
func (s *Scenario) CashBound(b, days int) float64 {
	total := s.OpeningCash[b]
	for d := 0; d < days; d++ {
		total += s.Collection[b][d]
	}
	return total
}

// IsSeparable reports whether each route serves exactly its own branch: the
// incidence matrix is a single cell or a square matrix whose off-diagonal
// entries are all zero.
func IsSeparable(incidence [][]float64) bool {
	n := len(incidence)
	if n == 0 {
		return false
	}
	if n == 1 && len(incidence[0]) == 1 {
		return true
	}
	for r, row := range incidence {
		if len(row) != n {
			return false
		}
		for b, v := range row {
			if r != b && v != 0 {
				return false
			}
		}
	}
	return true
}

// DailyRateFromAnnual converts an annual percentage into the equivalent
// compound daily rate.
func DailyRateFromAnnual(annualPercent float64) float64 {
	return math.Pow(1.0+annualPercent/100.0, 1.0/365.0) - 1.0
}

// Validate checks the scenario against the requested amounts. Every error
// wraps ErrInvalidInput.
func Validate(s *Scenario, p Params) error {
	if s == nil {
		return invalidf("scenario is nil")
	}
	if p.DailyInterestRate < 0 {
		return ErrNegativeInterest
	}
	if math.IsNaN(p.DailyInterestRate) || math.IsInf(p.DailyInterestRate, 0) {
		return invalidf("daily interest rate must be finite, got %v", p.DailyInterestRate)
	}
	if math.IsNaN(p.ExtraBoxPercent) || math.IsInf(p.ExtraBoxPercent, 0) {
		return invalidf("extra box percent must be finite, got %v", p.ExtraBoxPercent)
	}
	if p.Days < 1 || p.Branches < 1 || p.Routes < 1 {
		return invalidf("days, branches and routes must be positive (days=%d branches=%d routes=%d)",
			p.Days, p.Branches, p.Routes)
	}
	if p.Threads < 0 || p.Parallelism < 0 {
		return invalidf("threads and parallelism cannot be negative")
	}
	if p.BigM < 0 || math.IsNaN(p.BigM) {
		return invalidf("big-M cannot be negative, got %v", p.BigM)
	}

	if len(s.Incidence) < p.Routes {
		return invalidf("route incidence has %d rows, need %d routes", len(s.Incidence), p.Routes)
	}
	for r, row := range s.Incidence {
		if r < p.Routes && len(row) < p.Branches {
			return invalidf("route incidence row %d has %d columns, need %d branches", r, len(row), p.Branches)
		}
		for b, v := range row {
			if v != 0 && v != 1 {
				return invalidf("route incidence [%d][%d] = %v, want 0 or 1", r, b, v)
			}
		}
	}
	if len(s.RouteCost) < p.Routes {
		return invalidf("route cost has %d rows, need %d routes", len(s.RouteCost), p.Routes)
	}
	if len(s.OpeningCash) < p.Branches {
		return invalidf("opening cash has %d rows, need %d branches", len(s.OpeningCash), p.Branches)
	}
	if len(s.BoxCapacity) < p.Branches {
		return invalidf("box capacity has %d rows, need %d branches", len(s.BoxCapacity), p.Branches)
	}
	if len(s.BusinessDays) < p.Routes {
		return invalidf("business days has %d rows, need %d routes", len(s.BusinessDays), p.Routes)
	}
	for r := 0; r < p.Routes; r++ {
		row := s.BusinessDays[r]
		if len(row) < p.Days {
			return invalidf("business days row %d has %d columns, need %d days", r, len(row), p.Days)
		}
		for d := 0; d < p.Days; d++ {
			if row[d] != 0 && row[d] != 1 {
				return invalidf("business days [%d][%d] = %v, want 0 or 1", r, d, row[d])
			}
		}
	}
	if len(s.Collection) < p.Branches {
		return invalidf("collection has %d rows, need %d branches", len(s.Collection), p.Branches)
	}
	for b := 0; b < p.Branches; b++ {
		if len(s.Collection[b]) < p.Days {
			return invalidf("collection row %d has %d columns, need %d days", b, len(s.Collection[b]), p.Days)
		}
	}
	for _, d := range p.LastDaysCollection {
		if d < 0 || d >= p.Days {
			return invalidf("last collection day %d outside horizon [0,%d)", d, p.Days)
		}
	}
	return nil
}
