package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"cash-routing-service/internal/adapters/repositories"
	"cash-routing-service/internal/adapters/tables"
	"cash-routing-service/internal/config"
	"cash-routing-service/internal/domain"
	"cash-routing-service/internal/milp"
	"cash-routing-service/internal/platform/db"
	"cash-routing-service/internal/ports"
	"cash-routing-service/internal/services"

	"github.com/golang/glog"
)

type options struct {
	dirs   []string
	params domain.Params
	fee    domain.MileageFee
	gain   bool
	dumpLP string
	save   bool
}

// parseFlags reads flags into options. Values from -params are the base and
// flags given on the command line override them.
func parseFlags(fs *flag.FlagSet, args []string) (options, error) {
	var (
		o          options
		p          domain.Params
		lastDays   string
		annual     float64
		paramsPath string
	)
	fs.IntVar(&p.Days, "days", 0, "amount of days (0 infers it from the tables)")
	fs.IntVar(&p.Branches, "branches", 0, "amount of branches (0 infers it from the tables)")
	fs.IntVar(&p.Routes, "routes", 0, "amount of routes (0 infers it from the tables)")
	fs.StringVar(&lastDays, "last-days", "", "comma-separated days on which every branch must be collected")
	fs.Float64Var(&p.ExtraBoxPercent, "extra-box", 0, "extra box capacity as a fraction, e.g. 0.1")
	fs.Float64Var(&p.DailyInterestRate, "interest", 0, "daily interest rate")
	fs.Float64Var(&annual, "annual-interest", 0, "annual interest percent, converted to a compound daily rate")
	fs.StringVar(&p.Backend, "solver", "", "solver backend: highs or bnb")
	fs.IntVar(&p.Threads, "threads", 0, "solver threads hint")
	fs.IntVar(&p.Parallelism, "parallel", 1, "sub-problems solved concurrently")
	fs.DurationVar(&p.TimeLimit, "time-limit", 0, "time limit per sub-problem")
	fs.Float64Var(&p.MIPRelGap, "gap", 0, "relative MIP gap")
	fs.BoolVar(&p.Debug, "debug", false, "log model sizes and solved variables")
	fs.StringVar(&paramsPath, "params", "", "YAML parameters file")
	fs.BoolVar(&o.gain, "gain", false, "also report the gain against the zero-rate plan")
	fs.StringVar(&o.dumpLP, "dump-lp", "", "write each sub-problem in LP format into this directory")
	fs.BoolVar(&o.save, "save", false, "persist runs to the configured database")
	fs.Float64Var(&o.fee.Fixed, "fee-fixed", 0, "fixed mileage fee")
	fs.Float64Var(&o.fee.Threshold, "fee-threshold", 0, "withdrawn cash covered by the fixed fee")
	fs.Float64Var(&o.fee.Coefficient, "fee-coef", 0, "mileage fee per unit of cash above the threshold")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if paramsPath != "" {
		pf, err := config.LoadParams(paramsPath)
		if err != nil {
			return options{}, err
		}
		p = overlay(pf.Params, p, set)
		if !set["fee-fixed"] && !set["fee-threshold"] && !set["fee-coef"] {
			o.fee = pf.MileageFee
		}
	}
	if set["last-days"] {
		days, err := parseDays(lastDays)
		if err != nil {
			return options{}, err
		}
		p.LastDaysCollection = days
	}
	if set["annual-interest"] {
		p.DailyInterestRate = domain.DailyRateFromAnnual(annual)
	}

	o.params = p
	o.dirs = fs.Args()
	if len(o.dirs) == 0 {
		o.dirs = []string{"."}
	}
	return o, nil
}

// overlay copies the flags named in set from flags onto base.
func overlay(base, flags domain.Params, set map[string]bool) domain.Params {
	if set["days"] {
		base.Days = flags.Days
	}
	if set["branches"] {
		base.Branches = flags.Branches
	}
	if set["routes"] {
		base.Routes = flags.Routes
	}
	if set["extra-box"] {
		base.ExtraBoxPercent = flags.ExtraBoxPercent
	}
	if set["interest"] {
		base.DailyInterestRate = flags.DailyInterestRate
	}
	if set["solver"] {
		base.Backend = flags.Backend
	}
	if set["threads"] {
		base.Threads = flags.Threads
	}
	if set["parallel"] || base.Parallelism == 0 {
		base.Parallelism = flags.Parallelism
	}
	if set["time-limit"] {
		base.TimeLimit = flags.TimeLimit
	}
	if set["gap"] {
		base.MIPRelGap = flags.MIPRelGap
	}
	if set["debug"] {
		base.Debug = flags.Debug
	}
	return base
}

func parseDays(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("last-days: %q is not a day", part)
		}
		out = append(out, d)
	}
	return out, nil
}

type app struct {
	opts    options
	planner *services.Planner
	conn    *sql.DB
}

func newApp(opts options) (*app, error) {
	a := &app{opts: opts, planner: services.NewPlanner(nil, nil)}
	if !opts.save {
		return a, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	conn, err := db.OpenDriver(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return nil, err
	}
	if err := repositories.InitSchema(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	a.conn = conn
	a.planner.Runs = repositories.NewSQLRunRepository(conn, cfg.DBDriver)
	return a, nil
}

func (a *app) Close() {
	if a.conn != nil {
		_ = a.conn.Close()
	}
}

// runAll solves every data directory and returns how many failed. A failing
// scenario is reported and the batch goes on.
func (a *app) runAll(ctx context.Context, w io.Writer) int {
	failed := 0
	for _, dir := range a.opts.dirs {
		if err := a.runOne(ctx, w, dir); err != nil {
			failed++
			fmt.Fprintf(w, "error: %v\n\n", err)
			glog.Errorf("op=cashplan dir=%s err=%v", dir, err)
		}
		if ctx.Err() != nil {
			break
		}
	}
	return failed
}

func (a *app) runOne(ctx context.Context, w io.Writer, dir string) error {
	fmt.Fprintf(w, "== %s\n", dir)

	var src ports.ScenarioSource = tables.NewDir(dir)
	s, err := src.LoadScenario(ctx)
	if err != nil {
		return err
	}
	p := a.opts.params.WithDimensions(s)

	var opts []services.SolveOption
	if a.opts.dumpLP != "" {
		opts = append(opts, services.WithModelSink(lpWriter(a.opts.dumpLP, filepath.Base(dir))))
	}

	run, err := a.planner.Solve(ctx, s, p, opts...)
	if run != nil && run.Result != nil {
		printResult(w, run)
	}
	if err != nil {
		return err
	}

	sum, err := services.Summarize(s, p, run.Result, a.opts.fee)
	switch {
	case errors.Is(err, domain.ErrNotEvaluable):
		fmt.Fprintln(w, "summary: not available")
	case err != nil:
		return err
	default:
		printSummary(w, sum)
	}

	if a.opts.gain {
		rep, err := a.planner.Gain(ctx, s, p)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "gain: %.6f (total with rate %.2f, logistic %.2f, financial base %.2f)\n",
			rep.Gain, rep.TotalWithRate, rep.LogisticCost, rep.FinancialBase)
	}
	if a.opts.save {
		fmt.Fprintf(w, "run: %s\n", run.ID)
	}
	fmt.Fprintln(w)
	return nil
}

func lpWriter(dir, prefix string) func(int, *milp.Model) error {
	return func(i int, m *milp.Model) error {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		f, err := os.Create(filepath.Join(dir, fmt.Sprintf("%s_%d.lp", prefix, i)))
		if err != nil {
			return err
		}
		err = m.WriteLP(f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		return err
	}
}

func printResult(w io.Writer, run *domain.Run) {
	res := run.Result
	mode := "global"
	if res.Separable {
		mode = "separable"
	}
	fmt.Fprintf(w, "solver %s, %d sub-problem(s), %s\n", res.Backend, len(res.Subproblems), mode)
	for _, sp := range res.Subproblems {
		if sp.HasObjective() {
			fmt.Fprintf(w, "  [%d] %s  objective=%.2f\n", sp.Index, sp.Status, *sp.Objective)
			continue
		}
		fmt.Fprintf(w, "  [%d] %s\n", sp.Index, sp.Status)
	}
	if total, ok := res.TotalObjective(); ok {
		fmt.Fprintf(w, "total objective: %.2f\n", total)
	} else {
		fmt.Fprintln(w, "total objective: n/a")
	}
}

func printSummary(w io.Writer, sum *domain.PlanSummary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "branch\twithdrawn\tstops\tlogistic\tfinancial\tmileage\ttotal\t")
	for _, b := range sum.Branches {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t%s\t%s\t\n", b.Branch,
			b.Withdrawn.StringFixed(2), b.Stops, b.LogisticCost.StringFixed(2),
			b.FinancialCost.StringFixed(2), b.MileageFee.StringFixed(2), b.Total.StringFixed(2))
	}
	fmt.Fprintf(tw, "all\t%s\t\t%s\t%s\t%s\t%s\t\n",
		sum.Withdrawn.StringFixed(2), sum.LogisticCost.StringFixed(2),
		sum.FinancialCost.StringFixed(2), sum.MileageFee.StringFixed(2), sum.Total.StringFixed(2))
	_ = tw.Flush()

	for _, d := range sum.Dispatches {
		fmt.Fprintf(w, "  day %d route %d branches %v amount %s\n", d.Day, d.Route, d.Branches, d.Amount.StringFixed(2))
	}
}
