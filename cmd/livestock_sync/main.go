package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"livestock-sync/internal/livestock_sync/helper"
	"livestock-sync/internal/livestock_sync/registry"
	"livestock-sync/internal/livestock_sync/scheduler"
	"livestock-sync/internal/livestock_sync/selector"
	"livestock-sync/internal/livestock_sync/source"
	"livestock-sync/internal/middleware/logger"
	"livestock-sync/pkg/config"
)

// 1회 실행: 농장 동기화 → 개체 목록 갱신 → 이력 상세 갱신 후 종료.
func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML config file")
	envPath := flag.String("env", ".env", "path to the .env file")
	flag.Parse()

	cfg, err := config.Load(*configPath, *envPath)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	log, err := logger.NewLogger(cfg.Log.Debug)
	if err != nil {
		panic(err)
	}
	defer func(log *zap.Logger) {
		_ = log.Sync()
	}(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Starting livestock sync run...")
	stores := helper.MustMongo(ctx, cfg.Mongo.URI, cfg.Mongo.DBName, cfg.Mongo.ServerSelectionTimeout)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := stores.Close(closeCtx); err != nil {
			log.Warn("Mongo disconnect failed", zap.Error(err))
		}
	}()

	reg := registry.NewMongoRegistry(stores)
	worker := &scheduler.Worker{
		Log:      log,
		Registry: reg,
		Sources: &source.Adapters{
			Client:     source.NewClient(log, cfg.Sources.Timeout),
			Endpoints:  cfg.Endpoints(),
			FarmAPIKey: cfg.Sources.FarmAPIKey,
			ServiceKey: cfg.Sources.ServiceKey,
		},
		Selector:       selector.New(reg, cfg.Sync.Threshold, cfg.Sync.BatchLimit),
		Routing:        cfg.Routing(),
		HistoryOptions: cfg.Detail.Options,
		Pacer:          scheduler.NewPacer(cfg.Sync.Pacing),
	}

	report := worker.RunOnce(ctx, time.Now())
	if report.Interrupted {
		log.Warn("Sync run interrupted before the batch finished")
	}
}
