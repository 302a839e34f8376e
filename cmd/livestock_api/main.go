package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"livestock-sync/internal/livestock_sync/api"
	"livestock-sync/internal/livestock_sync/helper"
	"livestock-sync/internal/livestock_sync/metrics"
	"livestock-sync/internal/livestock_sync/registry"
	"livestock-sync/internal/livestock_sync/scheduler"
	"livestock-sync/internal/livestock_sync/selector"
	"livestock-sync/internal/livestock_sync/source"
	"livestock-sync/internal/middleware/logger"
	"livestock-sync/pkg/config"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML config file")
	envPath := flag.String("env", ".env", "path to the .env file")
	flag.Parse()

	cfg, err := config.Load(*configPath, *envPath)
	if err != nil {
		panic(err)
	}
	if err := cfg.Validate(); err != nil {
		panic(err)
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

	log.Info("Starting Livestock Sync Service...")
	stores := helper.MustMongo(ctx, cfg.Mongo.URI, cfg.Mongo.DBName, cfg.Mongo.ServerSelectionTimeout)

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	syncMetrics, err := metrics.NewSyncMetrics(promReg)
	if err != nil {
		panic(err)
	}

	// 1) 정기 동기화 (Asia/Seoul 기준 0/6/12/18시)
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
		Metrics:        syncMetrics,
		Routing:        cfg.Routing(),
		HistoryOptions: cfg.Detail.Options,
		Pacer:          scheduler.NewPacer(cfg.Sync.Pacing),
		Schedule:       scheduler.Schedule{Location: cfg.Location(), AnchorHours: cfg.Sync.AnchorHours},
	}
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Run(ctx)
	}()

	// 2) 조회 API
	srv := &api.Server{
		Reader:  reg,
		Metrics: promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}),
		Ping: func(ctx context.Context) error {
			return stores.Client.Ping(ctx, nil)
		},
	}
	r := srv.Router()
	_ = r.SetTrustedProxies(nil)
	httpSrv := &http.Server{Addr: cfg.Server.Addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		log.Info("Livestock Sync Service is running", zap.String("address", cfg.Server.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown failed", zap.Error(err))
	}
	<-workerDone
	if err := stores.Close(shutdownCtx); err != nil {
		log.Warn("Mongo disconnect failed", zap.Error(err))
	}
}
