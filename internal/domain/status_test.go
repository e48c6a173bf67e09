package domain

import (
	"testing"

	"cash-routing-service/internal/milp"
)

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		status milp.Status
		want   string
	}{
		{milp.StatusOptimal, "Resuelto (Óptimo)"},
		{milp.StatusInfeasible, "No factible"},
		{milp.StatusUnbounded, "No acotado"},
		{milp.StatusUndefined, "Error no definido (Undefined)"},
		{milp.StatusNotSolved, "No resuelto"},
		{milp.StatusFeasible, "Estado desconocido (Feasible)"},
	}

	for _, tt := range tests {
		if got := StatusLabel(tt.status); got != tt.want {
			t.Fatalf("StatusLabel(%s) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		label string
		want  milp.Status
		ok    bool
	}{
		{"Resuelto (Óptimo)", milp.StatusOptimal, true},
		{"Resuelto (Òptimo)", milp.StatusOptimal, true},
		{"Resuelto", milp.StatusOptimal, true},
		{"Resuelto (Óptimo), capacidad de buzón superada", milp.StatusOptimal, true},
		{"No factible, capacidad de buzón superada, día/s obligatorio/s infactible/s", milp.StatusInfeasible, true},
		{"no acotado", milp.StatusUnbounded, true},
		{"Error no definido (Undefined)", milp.StatusUndefined, true},
		{"No resuelto", milp.StatusNotSolved, true},
		{"Estado desconocido (Feasible)", milp.StatusFeasible, true},
		{"Error de resolución", milp.StatusUndefined, false},
	}

	for _, tt := range tests {
		got, ok := ParseStatus(tt.label)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("ParseStatus(%q) = (%s,%v), want (%s,%v)", tt.label, got, ok, tt.want, tt.ok)
		}
	}

	if IsOptimalLabel("No resuelto") {
		t.Fatalf("No resuelto must not be optimal")
	}
}

func TestParseVarName(t *testing.T) {
	tests := []struct {
		name string
		want VarRef
		ok   bool
	}{
		{XName(2, 1), VarRef{Kind: 'x', Branch: -1, Day: 2, Route: 1}, true},
		{EName(3, 0), VarRef{Kind: 'e', Branch: 3, Day: 0, Route: -1}, true},
		{TName(1, 4, 2), VarRef{Kind: 't', Branch: 1, Day: 4, Route: 2}, true},
		{"t_1_2", VarRef{}, false},
		{"y_1_2", VarRef{}, false},
		{"x_a_2", VarRef{}, false},
	}

	for _, tt := range tests {
		got, ok := ParseVarName(tt.name)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("ParseVarName(%q) = (%+v,%v), want (%+v,%v)", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}
