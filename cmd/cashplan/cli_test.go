package main

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cash-routing-service/internal/adapters/tables"
	"cash-routing-service/internal/domain"
)

func writeScenario(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	s := &domain.Scenario{
		Incidence:    [][]float64{{1}},
		RouteCost:    []float64{100},
		OpeningCash:  []float64{0},
		BoxCapacity:  []float64{15},
		BusinessDays: [][]float64{{1, 1, 1}},
		Collection:   [][]float64{{10, 10, 10}},
	}
	if err := tables.WriteScenario(dir, s); err != nil {
		t.Fatalf("write scenario: %v", err)
	}
	return dir
}

func TestParseFlagsOverridesParamsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	yml := "days: 30\nsolver: highs\ntime_limit: 2m\nparallelism: 3\nmileage_fee: {fixed: 1500}\n"
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	o, err := parseFlags(fs, []string{"-params", path, "-solver", "bnb", "-last-days", "1, 2", "a", "b"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	p := o.params
	if p.Days != 30 || p.Backend != "bnb" || p.TimeLimit != 2*time.Minute || p.Parallelism != 3 {
		t.Fatalf("params = %+v", p)
	}
	if len(p.LastDaysCollection) != 2 || p.LastDaysCollection[1] != 2 {
		t.Fatalf("last days = %v", p.LastDaysCollection)
	}
	if o.fee.Fixed != 1500 {
		t.Fatalf("fee = %+v, want the file's fee", o.fee)
	}
	if len(o.dirs) != 2 || o.dirs[0] != "a" {
		t.Fatalf("dirs = %v", o.dirs)
	}
}

func TestParseFlagsAnnualInterest(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	o, err := parseFlags(fs, []string{"-annual-interest", "40"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if o.params.DailyInterestRate != domain.DailyRateFromAnnual(40) {
		t.Fatalf("rate = %v", o.params.DailyInterestRate)
	}
	if len(o.dirs) != 1 || o.dirs[0] != "." {
		t.Fatalf("dirs = %v, want current directory", o.dirs)
	}

	fs = flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(&bytes.Buffer{})
	if _, err := parseFlags(fs, []string{"-last-days", "x"}); err == nil {
		t.Fatalf("expected an error for a bad day list")
	}
}

func TestRunAllContinuesPastFailures(t *testing.T) {
	good := writeScenario(t)
	lpDir := t.TempDir()

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	o, err := parseFlags(fs, []string{"-solver", "bnb", "-fee-fixed", "10", "-dump-lp", lpDir,
		filepath.Join(t.TempDir(), "missing"), good})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	a, err := newApp(o)
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	defer a.Close()

	var out bytes.Buffer
	if failed := a.runAll(context.Background(), &out); failed != 1 {
		t.Fatalf("failed = %d, want 1\n%s", failed, out.String())
	}
	text := out.String()
	for _, want := range []string{"error:", domain.LabelOptimal, "total objective: 200.00", "210.00"} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q:\n%s", want, text)
		}
	}

	if _, err := os.Stat(filepath.Join(lpDir, filepath.Base(good)+"_0.lp")); err != nil {
		t.Fatalf("LP file not written: %v", err)
	}
}
