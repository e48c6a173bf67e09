// Package milp holds a solver-agnostic mixed-integer linear model.
//
// A Model is a list of bounded variables with objective costs and a list of
// ranged rows (lower <= Σ coef·var <= upper) over sparse terms. Backends in
// internal/adapters/solvers translate it to their own representation.
package milp

import (
	"errors"
	"fmt"
	"math"
)

// VarType is the integrality class of a variable.
type VarType int

const (
	Continuous VarType = iota
	Integer
)

func (t VarType) String() string {
	switch t {
	case Continuous:
		return "Continuous"
	case Integer:
		return "Integer"
	default:
		return fmt.Sprintf("VarType(%d)", int(t))
	}
}

type Var struct {
	Name  string
	Lower float64
	Upper float64
	Cost  float64
	Type  VarType
}

// Term is one coefficient of a row.
type Term struct {
	Var  int
	Coef float64
}

type Row struct {
	Name  string
	Terms []Term
	Lower float64
	Upper float64
}

// Model is minimized. Offset is a constant added to the objective.
type Model struct {
	Name   string
	Vars   []Var
	Rows   []Row
	Offset float64
}

func New(name string) *Model {
	return &Model{Name: name}
}

// AddBinary adds a {0,1} variable and returns its index.
func (m *Model) AddBinary(name string, cost float64) int {
	m.Vars = append(m.Vars, Var{Name: name, Lower: 0, Upper: 1, Cost: cost, Type: Integer})
	return len(m.Vars) - 1
}

// AddContinuous adds a continuous variable and returns its index.
func (m *Model) AddContinuous(name string, lower, upper, cost float64) int {
	m.Vars = append(m.Vars, Var{Name: name, Lower: lower, Upper: upper, Cost: cost, Type: Continuous})
	return len(m.Vars) - 1
}

// AddInteger adds a general integer variable and returns its index.
func (m *Model) AddInteger(name string, lower, upper, cost float64) int {
	m.Vars = append(m.Vars, Var{Name: name, Lower: lower, Upper: upper, Cost: cost, Type: Integer})
	return len(m.Vars) - 1
}

// AddCost adds c to the objective coefficient of variable v.
func (m *Model) AddCost(v int, c float64) {
	m.Vars[v].Cost += c
}

// AddRow appends a ranged row. Zero coefficients are dropped and repeated
// variables are merged.
func (m *Model) AddRow(name string, lower float64, terms []Term, upper float64) {
	m.Rows = append(m.Rows, Row{Name: name, Terms: compact(terms), Lower: lower, Upper: upper})
}

func (m *Model) AddEq(name string, terms []Term, rhs float64) {
	m.AddRow(name, rhs, terms, rhs)
}

func (m *Model) AddLe(name string, terms []Term, rhs float64) {
	m.AddRow(name, math.Inf(-1), terms, rhs)
}

func (m *Model) AddGe(name string, terms []Term, rhs float64) {
	m.AddRow(name, rhs, terms, math.Inf(1))
}

func (m *Model) NumVars() int { return len(m.Vars) }

func (m *Model) NumRows() int { return len(m.Rows) }

func (m *Model) NumNonzeros() int {
	n := 0
	for _, r := range m.Rows {
		n += len(r.Terms)
	}
	return n
}

// NumIntegers counts integer variables.
func (m *Model) NumIntegers() int {
	n := 0
	for _, v := range m.Vars {
		if v.Type == Integer {
			n++
		}
	}
	return n
}

// VarIndex returns the index of the variable with the given name.
func (m *Model) VarIndex(name string) (int, bool) {
	for i, v := range m.Vars {
		if v.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Validate checks that every row references existing variables and that all
// bounds are ordered.
func (m *Model) Validate() error {
	if m == nil {
		return errors.New("validate model: model is nil")
	}
	for i, v := range m.Vars {
		if math.IsNaN(v.Lower) || math.IsNaN(v.Upper) || math.IsNaN(v.Cost) {
			return fmt.Errorf("validate model: var %q (#%d): NaN bound or cost", v.Name, i)
		}
		if v.Lower > v.Upper {
			return fmt.Errorf("validate model: var %q (#%d): lower %g > upper %g", v.Name, i, v.Lower, v.Upper)
		}
	}
	for i, r := range m.Rows {
		if math.IsNaN(r.Lower) || math.IsNaN(r.Upper) {
			return fmt.Errorf("validate model: row %q (#%d): NaN bound", r.Name, i)
		}
		if r.Lower > r.Upper {
			return fmt.Errorf("validate model: row %q (#%d): lower %g > upper %g", r.Name, i, r.Lower, r.Upper)
		}
		for _, t := range r.Terms {
			if t.Var < 0 || t.Var >= len(m.Vars) {
				return fmt.Errorf("validate model: row %q (#%d): unknown var index %d", r.Name, i, t.Var)
			}
			if math.IsNaN(t.Coef) || math.IsInf(t.Coef, 0) {
				return fmt.Errorf("validate model: row %q (#%d): invalid coefficient %g", r.Name, i, t.Coef)
			}
		}
	}
	return nil
}

// Evaluate returns the objective value of an assignment.
func (m *Model) Evaluate(values []float64) float64 {
	z := m.Offset
	for i, v := range m.Vars {
		if i < len(values) {
			z += v.Cost * values[i]
		}
	}
	return z
}

// Activity returns Σ coef·value for row i.
func (m *Model) Activity(i int, values []float64) float64 {
	a := 0.0
	for _, t := range m.Rows[i].Terms {
		a += t.Coef * values[t.Var]
	}
	return a
}

func compact(terms []Term) []Term {
	out := make([]Term, 0, len(terms))
	pos := make(map[int]int, len(terms))
	for _, t := range terms {
		if t.Coef == 0 {
			continue
		}
		if j, ok := pos[t.Var]; ok {
			out[j].Coef += t.Coef
			continue
		}
		pos[t.Var] = len(out)
		out = append(out, t)
	}

	// Merged duplicates can cancel out.
	kept := out[:0]
	for _, t := range out {
		if t.Coef != 0 {
			kept = append(kept, t)
		}
	}
	return kept
}
