package services

import (
	"fmt"
	"math"
	"sort"

	"cash-routing-service/internal/domain"

	"github.com/shopspring/decimal"
)

// Withdrawals at or below this amount are solver noise.
const withdrawEps = 1e-6

// Summarize prices a solved plan per branch: cash withdrawn, stops, the share
// of route costs, the financial cost of idle cash and the optional mileage
// fee. Sub-problems without an objective are left out.
func Summarize(s *domain.Scenario, p domain.Params, res *domain.SolveResult, fee domain.MileageFee) (*domain.PlanSummary, error) {
	if res == nil {
		return nil, fmt.Errorf("summarize: %w", domain.ErrNotEvaluable)
	}

	rate := decimal.NewFromFloat(p.DailyInterestRate)
	totals := make(map[int]*domain.BranchTotals)
	var order []int
	var dispatches []domain.Dispatch

	for _, sp := range res.Subproblems {
		if !sp.HasObjective() {
			continue
		}
		values := make(map[string]float64, len(sp.Variables))
		for _, v := range sp.Variables {
			values[v.Name] = v.Value
		}

		for _, b := range sp.Branches {
			bt := &domain.BranchTotals{Branch: b}
			totals[b] = bt
			order = append(order, b)

			idle := decimal.NewFromFloat(s.OpeningCash[b])
			for d := 0; d < p.Days-1; d++ {
				idle = idle.Add(decimal.NewFromFloat(values[domain.EName(b, d)]))
			}
			bt.FinancialCost = rate.Mul(idle)

			for d := 0; d < p.Days; d++ {
				for _, r := range sp.Routes {
					if t := values[domain.TName(b, d, r)]; t > withdrawEps {
						bt.Withdrawn = bt.Withdrawn.Add(decimal.NewFromFloat(t))
						bt.Stops++
					}
				}
			}
		}

		for d := 0; d < p.Days; d++ {
			for _, r := range sp.Routes {
				if values[domain.XName(d, r)] <= 0.5 {
					continue
				}
				dispatch := domain.Dispatch{Day: d, Route: r}
				for _, b := range sp.Branches {
					if t := values[domain.TName(b, d, r)]; t > withdrawEps {
						dispatch.Branches = append(dispatch.Branches, b)
						dispatch.Amount = dispatch.Amount.Add(decimal.NewFromFloat(t))
					}
				}

				// A route can run without withdrawing anything; its cost then
				// falls on the branches it serves.
				payers := dispatch.Branches
				if len(payers) == 0 {
					for _, b := range sp.Branches {
						if s.Incidence[r][b] == 1 {
							payers = append(payers, b)
						}
					}
				}
				if len(payers) > 0 {
					share := decimal.NewFromFloat(s.RouteCost[r]).Div(decimal.NewFromInt(int64(len(payers))))
					for _, b := range payers {
						totals[b].LogisticCost = totals[b].LogisticCost.Add(share)
					}
				}
				dispatch.Amount = dispatch.Amount.Round(2)
				dispatches = append(dispatches, dispatch)
			}
		}
	}

	if len(order) == 0 {
		return nil, fmt.Errorf("summarize: %w", domain.ErrNotEvaluable)
	}
	sort.Ints(order)
	sort.SliceStable(dispatches, func(i, j int) bool {
		if dispatches[i].Day != dispatches[j].Day {
			return dispatches[i].Day < dispatches[j].Day
		}
		return dispatches[i].Route < dispatches[j].Route
	})

	sum := &domain.PlanSummary{Dispatches: dispatches}
	for _, b := range order {
		sum.Withdrawn = sum.Withdrawn.Add(totals[b].Withdrawn)
	}

	if fee.Enabled() {
		charge := mileageCharge(fee, sum.Withdrawn)
		for _, b := range order {
			bt := totals[b]
			switch {
			case sum.Withdrawn.IsPositive():
				bt.MileageFee = charge.Mul(bt.Withdrawn).Div(sum.Withdrawn)
			default:
				bt.MileageFee = charge.Div(decimal.NewFromInt(int64(len(order))))
			}
		}
	}

	for _, b := range order {
		bt := totals[b]
		bt.Total = bt.LogisticCost.Add(bt.FinancialCost).Add(bt.MileageFee)

		sum.LogisticCost = sum.LogisticCost.Add(bt.LogisticCost)
		sum.FinancialCost = sum.FinancialCost.Add(bt.FinancialCost)
		sum.MileageFee = sum.MileageFee.Add(bt.MileageFee)
		sum.Total = sum.Total.Add(bt.Total)

		bt.Withdrawn = bt.Withdrawn.Round(2)
		bt.LogisticCost = bt.LogisticCost.Round(2)
		bt.FinancialCost = bt.FinancialCost.Round(2)
		bt.MileageFee = bt.MileageFee.Round(2)
		bt.Total = bt.Total.Round(2)
		sum.Branches = append(sum.Branches, *bt)
	}
	sum.Withdrawn = sum.Withdrawn.Round(2)
	sum.LogisticCost = sum.LogisticCost.Round(2)
	sum.FinancialCost = sum.FinancialCost.Round(2)
	sum.MileageFee = sum.MileageFee.Round(2)
	sum.Total = sum.Total.Round(2)
	return sum, nil
}

func mileageCharge(fee domain.MileageFee, withdrawn decimal.Decimal) decimal.Decimal {
	r, _ := withdrawn.Float64()
	variable := math.Max(0, fee.Coefficient*(r-fee.Threshold))
	return decimal.NewFromFloat(fee.Fixed).Add(decimal.NewFromFloat(variable))
}
