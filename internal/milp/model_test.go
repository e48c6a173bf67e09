package milp

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAddRowCompactsTerms(t *testing.T) {
	m := New("compact")
	a := m.AddContinuous("a", 0, math.Inf(1), 0)
	b := m.AddContinuous("b", 0, math.Inf(1), 0)
	c := m.AddContinuous("c", 0, math.Inf(1), 0)

	m.AddLe("row", []Term{{a, 1}, {b, 0}, {a, 2}, {c, 1}, {c, -1}}, 5)

	got := m.Rows[0].Terms
	want := []Term{{Var: a, Coef: 3}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("terms mismatch (-want +got):\n%s", diff)
	}
	if m.NumNonzeros() != 1 {
		t.Fatalf("nonzeros = %d, want 1", m.NumNonzeros())
	}
}

func TestValidate(t *testing.T) {
	m := New("v")
	x := m.AddBinary("x", 1)
	m.AddGe("ok", []Term{{x, 1}}, 0)
	if err := m.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m.Rows = append(m.Rows, Row{Name: "bad", Terms: []Term{{Var: 7, Coef: 1}}, Lower: 0, Upper: 1})
	if err := m.Validate(); err == nil {
		t.Fatalf("expected error for unknown variable index")
	}

	m2 := New("bounds")
	m2.AddContinuous("y", 2, 1, 0)
	if err := m2.Validate(); err == nil {
		t.Fatalf("expected error for inverted bounds")
	}
}

func TestEvaluateAndActivity(t *testing.T) {
	m := New("eval")
	x := m.AddBinary("x", 4)
	y := m.AddContinuous("y", 0, 10, 0.5)
	m.Offset = 1
	m.AddLe("r", []Term{{x, 2}, {y, 1}}, 9)

	values := []float64{1, 6}
	if got := m.Evaluate(values); got != 8 {
		t.Fatalf("objective = %v, want 8", got)
	}
	if got := m.Activity(0, values); got != 8 {
		t.Fatalf("activity = %v, want 8", got)
	}
	if m.NumIntegers() != 1 {
		t.Fatalf("integers = %d, want 1", m.NumIntegers())
	}
	if i, ok := m.VarIndex("y"); !ok || i != y {
		t.Fatalf("VarIndex(y) = %d,%v", i, ok)
	}
}

func TestWriteLP(t *testing.T) {
	m := New("demo")
	x := m.AddBinary("x", 3)
	y := m.AddContinuous("y", 0, math.Inf(1), 0.5)
	m.Offset = 2
	m.AddLe("link", []Term{{y, 1}, {x, -10}}, 0)
	m.AddEq("bal", []Term{{y, 1}}, 4)
	m.AddGe("need", []Term{{x, 1}}, 1)

	var buf bytes.Buffer
	if err := m.WriteLP(&buf); err != nil {
		t.Fatalf("WriteLP: %v", err)
	}

	want := strings.Join([]string{
		`\ Problem: demo`,
		"Minimize",
		" obj: 3 x + 0.5 y + 2",
		"Subject To",
		" link: y - 10 x <= 0",
		" bal: y = 4",
		" need: x >= 1",
		"Bounds",
		" y >= 0",
		"Binaries",
		" x",
		"End",
		"",
	}, "\n")
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Fatalf("lp mismatch (-want +got):\n%s", diff)
	}
}

func TestNewConfig(t *testing.T) {
	c := NewConfig(WithThreads(4), WithOutput(true), nil, WithNodeLimit(10))
	if c.Threads != 4 || !c.Output || c.NodeLimit != 10 {
		t.Fatalf("config = %+v", c)
	}
}
