package services

import (
	"errors"
	"math"
	"testing"

	"cash-routing-service/internal/domain"
	"cash-routing-service/internal/milp"

	"github.com/google/go-cmp/cmp"
)

// singleBranch is one branch served by one route over three days that must
// be emptied on days 1 and 2 to stay within its box.
func singleBranch() (*domain.Scenario, domain.Params) {
	s := &domain.Scenario{
		Incidence:    [][]float64{{1}},
		RouteCost:    []float64{100},
		OpeningCash:  []float64{0},
		BoxCapacity:  []float64{15},
		BusinessDays: [][]float64{{1, 1, 1}},
		Collection:   [][]float64{{10, 10, 10}},
	}
	return s, domain.Params{Days: 3, Branches: 1, Routes: 1}
}

func rowByName(t *testing.T, m *milp.Model, name string) milp.Row {
	t.Helper()
	for _, r := range m.Rows {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("row %q not found", name)
	return milp.Row{}
}

func TestBuildModelVariableOrder(t *testing.T) {
	s, p := singleBranch()

	m, err := BuildModel(s, p, []int{0}, []int{0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var names []string
	for _, v := range m.Vars {
		names = append(names, v.Name)
	}
	want := []string{
		"x_0_0", "x_1_0", "x_2_0",
		"e_0_0", "e_0_1", "e_0_2",
		"t_0_0_0", "t_0_1_0", "t_0_2_0",
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("variables mismatch (-want +got):\n%s", diff)
	}
	if m.NumIntegers() != 3 {
		t.Fatalf("expected 3 binaries, got %d", m.NumIntegers())
	}
	if m.Vars[0].Cost != 100 {
		t.Fatalf("expected route cost 100 on x_0_0, got %v", m.Vars[0].Cost)
	}
}

func TestBuildModelRows(t *testing.T) {
	s, p := singleBranch()
	s.OpeningCash[0] = 4

	m, err := BuildModel(s, p, []int{0}, []int{0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bal0 := rowByName(t, m, "balance_0_0")
	if bal0.Lower != 14 || bal0.Upper != 14 {
		t.Fatalf("balance_0_0 rhs = [%v,%v], want 14", bal0.Lower, bal0.Upper)
	}
	bal1 := rowByName(t, m, "balance_0_1")
	if bal1.Lower != 10 || len(bal1.Terms) != 3 {
		t.Fatalf("balance_0_1 = %+v", bal1)
	}

	link := rowByName(t, m, "link_1_0")
	// M = opening 4 + collections 30.
	if got := link.Terms[len(link.Terms)-1].Coef; got != -34 {
		t.Fatalf("link coefficient = %v, want -34", got)
	}

	box := rowByName(t, m, "box_0_2")
	if box.Upper != 15 {
		t.Fatalf("box upper = %v, want 15", box.Upper)
	}

	w0 := rowByName(t, m, "withdraw_0_0")
	if w0.Upper != 4 {
		t.Fatalf("withdraw_0_0 upper = %v, want opening cash 4", w0.Upper)
	}
	w2 := rowByName(t, m, "withdraw_0_2")
	if w2.Upper != 0 || len(w2.Terms) != 2 {
		t.Fatalf("withdraw_0_2 = %+v", w2)
	}

	cal := rowByName(t, m, "calendar_2_0")
	if cal.Upper != 1 {
		t.Fatalf("calendar upper = %v, want 1", cal.Upper)
	}

	for _, r := range m.Rows {
		if r.Name == "mandatory_0" {
			t.Fatalf("mandatory row built without last days")
		}
	}
}

func TestBuildModelInterestCost(t *testing.T) {
	s, p := singleBranch()
	s.OpeningCash[0] = 50
	p.DailyInterestRate = 0.01

	m, err := BuildModel(s, p, []int{0}, []int{0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(m.Offset-0.5) > 1e-12 {
		t.Fatalf("offset = %v, want 0.5", m.Offset)
	}
	for _, name := range []string{"e_0_0", "e_0_1"} {
		i, _ := m.VarIndex(name)
		if m.Vars[i].Cost != 0.01 {
			t.Fatalf("%s cost = %v, want 0.01", name, m.Vars[i].Cost)
		}
	}
	last, _ := m.VarIndex("e_0_2")
	if m.Vars[last].Cost != 0 {
		t.Fatalf("last day cash must not be priced, got %v", m.Vars[last].Cost)
	}
}

func TestBuildModelMandatoryRow(t *testing.T) {
	s, p := singleBranch()
	p.LastDaysCollection = []int{1, 2}

	m, err := BuildModel(s, p, []int{0}, []int{0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	row := rowByName(t, m, "mandatory_0")
	if row.Lower != 1 || !math.IsInf(row.Upper, 1) || len(row.Terms) != 2 {
		t.Fatalf("mandatory_0 = %+v", row)
	}
}

func TestBuildModelZeroRowCoversNonIncidentBranches(t *testing.T) {
	s := &domain.Scenario{
		Incidence:    [][]float64{{1, 0}, {1, 1}},
		RouteCost:    []float64{10, 20},
		OpeningCash:  []float64{0, 0},
		BoxCapacity:  []float64{10, 10},
		BusinessDays: [][]float64{{1, 1}, {1, 1}},
		Collection:   [][]float64{{5, 5}, {5, 5}},
	}
	p := domain.Params{Days: 2, Branches: 2, Routes: 2}

	m, err := BuildModel(s, p, []int{0, 1}, []int{0, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	zero := rowByName(t, m, "zero_0_0")
	t10, _ := m.VarIndex("t_1_0_0")
	if len(zero.Terms) != 1 || zero.Terms[0].Var != t10 {
		t.Fatalf("zero_0_0 = %+v, want only t_1_0_0", zero)
	}
	if got := rowByName(t, m, "zero_0_1"); len(got.Terms) != 0 {
		t.Fatalf("zero_0_1 should be empty, got %+v", got)
	}
}

func TestRouteBigM(t *testing.T) {
	s, p := singleBranch()

	got, err := RouteBigM(s, p, []int{0}, []int{0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0] != 30 {
		t.Fatalf("big-M = %v, want 30", got[0])
	}

	p.BigM = 30_000_000
	got, err = RouteBigM(s, p, []int{0}, []int{0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0] != 30_000_000 {
		t.Fatalf("big-M override = %v", got[0])
	}

	p.BigM = 29
	if _, err := BuildModel(s, p, []int{0}, []int{0}); !errors.Is(err, domain.ErrBuild) {
		t.Fatalf("expected ErrBuild for an undersized big-M, got %v", err)
	}
}

func TestBuildModelRejectsRouteOutsideTables(t *testing.T) {
	s, p := singleBranch()

	if _, err := BuildModel(s, p, []int{0}, []int{1}); !errors.Is(err, domain.ErrBuild) {
		t.Fatalf("expected ErrBuild, got %v", err)
	}
	if _, err := BuildModel(s, p, nil, []int{0}); !errors.Is(err, domain.ErrBuild) {
		t.Fatalf("expected ErrBuild for empty scope, got %v", err)
	}
}

func TestPlanSubproblems(t *testing.T) {
	s := &domain.Scenario{Incidence: [][]float64{{1, 0}, {0, 1}}}
	p := domain.Params{Branches: 2, Routes: 2}

	separable, subs := planSubproblems(s, p)
	if !separable || len(subs) != 2 {
		t.Fatalf("expected 2 separable sub-problems, got %v %d", separable, len(subs))
	}
	if diff := cmp.Diff([]int{1}, subs[1].branches); diff != "" {
		t.Fatalf("branches mismatch (-want +got):\n%s", diff)
	}

	s.Incidence = [][]float64{{1, 1}}
	p.Routes = 1
	separable, subs = planSubproblems(s, p)
	if separable || len(subs) != 1 {
		t.Fatalf("expected one global sub-problem, got %v %d", separable, len(subs))
	}
	if diff := cmp.Diff([]int{0, 1}, subs[0].branches); diff != "" {
		t.Fatalf("branches mismatch (-want +got):\n%s", diff)
	}
}
