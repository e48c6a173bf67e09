package main

import (
	"flag"

	"cash-routing-service/internal/adapters/repositories"
	"cash-routing-service/internal/config"
	"cash-routing-service/internal/platform/db"

	"github.com/golang/glog"
)

// dbtool initializes the run store schema on the configured database.
func main() {
	flag.Parse()
	defer glog.Flush()

	if !config.LoadDotEnv() {
		glog.Info("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		glog.Exit(err)
	}
	if cfg.DBDriver == db.DriverPostgres && cfg.DatabaseURL == "" {
		glog.Exit("DATABASE_URL is required")
	}

	conn, err := db.OpenDriver(cfg.DBDriver, cfg.DSN())
	if err != nil {
		glog.Exit(err)
	}
	defer conn.Close()

	glog.Infof("Initializing database schema driver=%s...", cfg.DBDriver)
	if err := repositories.InitSchema(conn); err != nil {
		glog.Exitf("schema initialization failed: %v", err)
	}
	glog.Info("Schema ready.")
}
