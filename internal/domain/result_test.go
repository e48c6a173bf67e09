package domain

import (
	"testing"

	"cash-routing-service/internal/milp"

	"github.com/google/go-cmp/cmp"
)

func ptr(v float64) *float64 { return &v }

func TestSolveResultAccessors(t *testing.T) {
	res := &SolveResult{
		Separable: true,
		Subproblems: []SubproblemResult{
			{
				Index: 0, Status: LabelOptimal, Outcome: milp.StatusOptimal, Objective: ptr(10),
				Variables: []Variable{{Name: EName(0, 0), Value: 4}, {Name: XName(0, 0), Value: 1}},
			},
			{
				Index: 1, Status: LabelOptimal, Outcome: milp.StatusOptimal, Objective: ptr(2.5),
				Variables: []Variable{{Name: EName(1, 0), Value: 7}},
			},
		},
	}

	if diff := cmp.Diff([]string{LabelOptimal, LabelOptimal}, res.Statuses()); diff != "" {
		t.Fatalf("statuses mismatch (-want +got):\n%s", diff)
	}
	if got := len(res.Variables()); got != 3 {
		t.Fatalf("variables = %d, want 3", got)
	}
	total, ok := res.TotalObjective()
	if !ok || total != 12.5 {
		t.Fatalf("TotalObjective() = (%v,%v), want (12.5,true)", total, ok)
	}
	if !res.AllOptimal() {
		t.Fatalf("expected all optimal")
	}
	if v, ok := res.EndOfDayCash(1, 0); !ok || v != 7 {
		t.Fatalf("EndOfDayCash(1,0) = (%v,%v), want (7,true)", v, ok)
	}
	if _, ok := res.EndOfDayCash(2, 0); ok {
		t.Fatalf("EndOfDayCash for unknown branch should be missing")
	}

	res.Subproblems[1].Objective = nil
	res.Subproblems[1].Outcome = milp.StatusInfeasible
	if _, ok := res.TotalObjective(); ok {
		t.Fatalf("TotalObjective must fail when a sub-problem has no objective")
	}
	if res.AllOptimal() {
		t.Fatalf("AllOptimal must be false with an infeasible sub-problem")
	}
}

func TestFingerprint(t *testing.T) {
	s, p := twoBranchScenario()
	base := Fingerprint(s, p, "bnb")

	p2 := p
	p2.Debug = true
	p2.Parallelism = 4
	if got := Fingerprint(s, p2, "bnb"); got != base {
		t.Fatalf("debug and parallelism must not change the fingerprint")
	}

	p3 := p
	p3.LastDaysCollection = []int{2, 1, 2}
	p4 := p
	p4.LastDaysCollection = []int{1, 2}
	if Fingerprint(s, p3, "bnb") != Fingerprint(s, p4, "bnb") {
		t.Fatalf("last days order and duplicates must not change the fingerprint")
	}

	if Fingerprint(s, p, "highs") == base {
		t.Fatalf("backend must change the fingerprint")
	}

	s.Collection[0][1] = 11
	if Fingerprint(s, p, "bnb") == base {
		t.Fatalf("table change must change the fingerprint")
	}
}
