// Import Scheduler — повторяет импорт по расписанию.
//
// По IMPORT_CRON создаёт batch из сохранённых настроек
// (файл и язык последнего импорта). Без IMPORT_CRON не запускается.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/ContentImport/internal/bootstrap"
	"github.com/shaiso/ContentImport/internal/config"
	"github.com/shaiso/ContentImport/internal/repo"
	"github.com/shaiso/ContentImport/internal/scheduler"
	"github.com/shaiso/ContentImport/internal/telemetry"
)

func main() {
	logger := telemetry.SetupLogger()
	logger.Info("starting import-scheduler")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Import.Cron == "" {
		logger.Error("IMPORT_CRON is not set, nothing to schedule")
		os.Exit(1)
	}

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// DB pool
	pool, err := repo.NewPool(ctx, cfg.DBURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connected")

	if err := repo.EnsureSchema(ctx, pool); err != nil {
		logger.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}

	schedCfg := scheduler.Config{
		Settings: repo.NewSettingsRepo(pool),
		Batches:  repo.NewBatchRepo(pool),
		CronExpr: cfg.Import.Cron,
		Logger:   logger,
	}

	mqConn, publisher := bootstrap.ConnectMQ(ctx, cfg.RabbitMQURL, "import-scheduler", logger)
	if mqConn != nil {
		defer mqConn.Close()
		schedCfg.Publisher = publisher
	}

	sched, err := scheduler.New(schedCfg)
	if err != nil {
		logger.Error("invalid schedule", "cron", cfg.Import.Cron, "error", err)
		os.Exit(1)
	}

	if err := sched.Start(ctx); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              ":" + cfg.SchedulerPort,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)

	sched.Stop()
	logger.Info("import-scheduler stopped")
}
