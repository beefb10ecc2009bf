// Command cleanup runs one reconciliation pass and prints its report. It is
// meant for cron or a Kubernetes CronJob when the API's own ticker is off.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/MarxCha/guelaguetza-connect-sub001/internal/app"
	"github.com/MarxCha/guelaguetza-connect-sub001/internal/platform/config"
	"github.com/MarxCha/guelaguetza-connect-sub001/internal/platform/logging"
)

func main() {
	timeout := flag.Int("timeout-minutes", 0, "reclaim reservations older than this; 0 uses CLEANUP_TIMEOUT_MINUTES")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.New("info").Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	log := logging.NewWithWriter(os.Stderr, cfg.LogLevel)
	if *timeout <= 0 {
		*timeout = cfg.CleanupTimeoutMinutes
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", "err", err)
		os.Exit(1)
	}
	report := a.Services.Reconciliation.RunCleanupJob(ctx, *timeout)
	if err := a.Close(); err != nil {
		log.Warn("shutdown cleanup failed", "err", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(report)
	if !report.Success {
		os.Exit(1)
	}
}
