// Command cashplan solves cash-routing scenarios stored as CSV tables.
//
//	cashplan -interest 0.0002 -last-days 28,29 data/branch_a data/branch_b
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"cash-routing-service/internal/config"

	"github.com/golang/glog"
)

func main() {
	opts, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if opts.params.Debug {
		_ = flag.Set("logtostderr", "true")
	}
	defer glog.Flush()
	config.LoadDotEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app, err := newApp(opts)
	if err != nil {
		glog.Exit(err)
	}
	defer app.Close()

	if failed := app.runAll(ctx, os.Stdout); failed > 0 {
		glog.Flush()
		os.Exit(1)
	}
}
