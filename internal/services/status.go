package services

import (
	"cash-routing-service/internal/domain"
	"cash-routing-service/internal/milp"
)

// describeStatus returns the label for a solver outcome plus the diagnostic
// suffixes that apply to the sub-problem regardless of that outcome.
func describeStatus(s *domain.Scenario, p domain.Params, sp subproblem, outcome milp.Status) string {
	return domain.StatusLabel(outcome) + diagnose(s, p, sp)
}

func diagnose(s *domain.Scenario, p domain.Params, sp subproblem) string {
	var suffix string
	if boxExceeded(s, p, sp.branches) {
		suffix += domain.SuffixBoxExceeded
	}
	if mandatoryDaysClosed(s, p, sp.routes) {
		suffix += domain.SuffixMandatoryDays
	}
	return suffix
}

// boxExceeded reports whether some branch collects more in a single day than
// its box can hold.
func boxExceeded(s *domain.Scenario, p domain.Params, branches []int) bool {
	for _, b := range branches {
		if s.MaxCollection(b, p.Days) > s.EffectiveCapacity(b, p.ExtraBoxPercent) {
			return true
		}
	}
	return false
}

// mandatoryDaysClosed reports whether the only route of a sub-problem has no
// business day among the mandatory collection days.
func mandatoryDaysClosed(s *domain.Scenario, p domain.Params, routes []int) bool {
	if len(routes) != 1 || len(p.LastDaysCollection) == 0 {
		return false
	}
	r := routes[0]
	for _, d := range p.LastDaysCollection {
		if s.BusinessDays[r][d] == 1 {
			return false
		}
	}
	return true
}
