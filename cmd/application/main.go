package main

import (
	"context"
	"errors"
	"flag"
	"gomarket_sync/config"
	"gomarket_sync/internal/app"
	"gomarket_sync/internal/core/errs"
	"gomarket_sync/internal/syncer"
	"gomarket_sync/pkg/logger"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to YAML config (empty: defaults and environment only)")
	interval := flag.Duration("interval", 0, "repeat sync with this interval; 0 runs once")
	timeout := flag.Duration("timeout", 30*time.Minute, "timeout of a single sync run")
	flag.Parse()

	log := logger.NewLogger(nil, "[main]")

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Error(err, "Failed to load config")
		return 1
	}
	logger.SetGlobalLevel(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Error(err, "Invalid config")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := app.NewSyncServer(cfg, nil)
	if *interval > 0 {
		log.Info("Started sync scheduler, interval %s", *interval)
		if err := server.RunScheduled(ctx, *interval, *timeout); err != nil {
			log.Error(err, "Scheduler stopped with error")
			return 1
		}
		return 0
	}

	if err := server.RunOnce(ctx, *timeout); err != nil {
		stage := "unknown"
		var stageErr *syncer.StageError
		if errors.As(err, &stageErr) {
			stage = stageErr.Stage
		}
		kind, _ := errs.KindOf(err)
		log.Error(err, "Sync failed: stage=%s kind=%s", stage, kind)
		return 1
	}
	log.Info("Sync finished")
	return 0
}
