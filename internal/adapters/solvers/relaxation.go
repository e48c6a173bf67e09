package solvers

import (
	"errors"
	"fmt"
	"math"

	"cash-routing-service/internal/milp"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

var errFreeVariable = errors.New("variables without a finite lower bound are not supported")

const (
	emptyRowTol = 1e-7
	// simplexTol is the zero threshold inside lp.Simplex. At 0 the Bland pivot
	// rejects near-zero replacements on cash models and can cycle in the LU
	// refactorization.
	simplexTol = 1e-9
)

// relaxation is the outcome of one LP solve at a branch-and-bound node.
type relaxation struct {
	status    milp.Status
	objective float64
	values    []float64
}

// stdRow is a row over shifted variables y = x - lower: either Σ a·y = rhs or
// Σ a·y <= rhs.
type stdRow struct {
	terms []milp.Term
	eq    bool
	rhs   float64
}

// solveRelaxation solves the LP relaxation of m with variable bounds replaced
// by lower/upper. Fixed variables are substituted out, rows left without
// variables are checked directly and ranged rows become slack rows, so the
// standard form handed to lp.Simplex has no zero rows or columns.
func solveRelaxation(m *milp.Model, lower, upper []float64) (rel relaxation, err error) {
	n := len(m.Vars)
	values := make([]float64, n)
	fixed := make([]bool, n)
	for i := 0; i < n; i++ {
		if math.IsInf(lower[i], -1) {
			return relaxation{}, fmt.Errorf("relaxation: var %q: %w", m.Vars[i].Name, errFreeVariable)
		}
		values[i] = lower[i]
		fixed[i] = upper[i]-lower[i] <= 0
	}

	rows := make([]stdRow, 0, len(m.Rows)+n)
	for _, r := range m.Rows {
		shift := 0.0
		terms := make([]milp.Term, 0, len(r.Terms))
		for _, t := range r.Terms {
			shift += t.Coef * lower[t.Var]
			if !fixed[t.Var] {
				terms = append(terms, t)
			}
		}
		lo, up := r.Lower-shift, r.Upper-shift

		if len(terms) == 0 {
			if lo > emptyRowTol*(1+math.Abs(r.Lower)) || up < -emptyRowTol*(1+math.Abs(r.Upper)) {
				return relaxation{status: milp.StatusInfeasible}, nil
			}
			continue
		}

		if r.Lower == r.Upper {
			rows = append(rows, stdRow{terms: terms, eq: true, rhs: lo})
			continue
		}
		if !math.IsInf(up, 1) {
			rows = append(rows, stdRow{terms: terms, rhs: up})
		}
		if !math.IsInf(lo, -1) {
			neg := make([]milp.Term, len(terms))
			for k, t := range terms {
				neg[k] = milp.Term{Var: t.Var, Coef: -t.Coef}
			}
			rows = append(rows, stdRow{terms: neg, rhs: -lo})
		}
	}
	for i := 0; i < n; i++ {
		if !fixed[i] && !math.IsInf(upper[i], 1) {
			rows = append(rows, stdRow{terms: []milp.Term{{Var: i, Coef: 1}}, rhs: upper[i] - lower[i]})
		}
	}

	// Columns that appear in no row sit at their lower bound unless their
	// cost pulls them to +inf.
	col := make([]int, n)
	for i := range col {
		col[i] = -1
	}
	nStruct := 0
	for _, r := range rows {
		for _, t := range r.terms {
			if col[t.Var] < 0 {
				col[t.Var] = nStruct
				nStruct++
			}
		}
	}
	for i := 0; i < n; i++ {
		if !fixed[i] && col[i] < 0 && m.Vars[i].Cost < 0 {
			return relaxation{status: milp.StatusUnbounded}, nil
		}
	}

	if len(rows) == 0 {
		return relaxation{status: milp.StatusOptimal, objective: m.Evaluate(values), values: values}, nil
	}

	nEq, nLe := 0, 0
	for _, r := range rows {
		if r.eq {
			nEq++
		} else {
			nLe++
		}
	}
	if nEq > nStruct {
		return relaxation{}, fmt.Errorf("relaxation: %d equality rows over %d columns", nEq, nStruct)
	}

	cols := nStruct + nLe
	A := mat.NewDense(len(rows), cols, nil)
	b := make([]float64, len(rows))
	c := make([]float64, cols)
	for i := 0; i < n; i++ {
		if col[i] >= 0 {
			c[col[i]] = m.Vars[i].Cost
		}
	}

	slack := nStruct
	for i, r := range rows {
		for _, t := range r.terms {
			A.Set(i, col[t.Var], A.At(i, col[t.Var])+t.Coef)
		}
		if !r.eq {
			A.Set(i, slack, 1)
			slack++
		}
		b[i] = r.rhs
		if b[i] < 0 {
			for j := 0; j < cols; j++ {
				if v := A.At(i, j); v != 0 {
					A.Set(i, j, -v)
				}
			}
			b[i] = -b[i]
		}
	}

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("relaxation: simplex panic: %v", p)
		}
	}()

	_, x, serr := lp.Simplex(c, A, b, simplexTol, nil)
	switch {
	case errors.Is(serr, lp.ErrInfeasible):
		return relaxation{status: milp.StatusInfeasible}, nil
	case errors.Is(serr, lp.ErrUnbounded):
		return relaxation{status: milp.StatusUnbounded}, nil
	case serr != nil:
		return relaxation{}, fmt.Errorf("relaxation: simplex: %w", serr)
	}

	for i := 0; i < n; i++ {
		if col[i] >= 0 {
			values[i] = lower[i] + x[col[i]]
		}
	}
	return relaxation{status: milp.StatusOptimal, objective: m.Evaluate(values), values: values}, nil
}
