// Import Worker — выполняет batch импорта.
//
// Worker:
//   - Получает batch из RabbitMQ или находит PENDING batch в БД
//   - Выполняет шаги batch: по оркестратору на язык
//   - Сохраняет прогресс после каждого шага
//
// Batch выполняются строго по одному.
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
	"golang.org/x/sync/errgroup"

	"github.com/shaiso/ContentImport/internal/batch"
	"github.com/shaiso/ContentImport/internal/bootstrap"
	"github.com/shaiso/ContentImport/internal/config"
	"github.com/shaiso/ContentImport/internal/repo"
	"github.com/shaiso/ContentImport/internal/telemetry"
	"github.com/shaiso/ContentImport/internal/worker"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting import-worker")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
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

	catalog, err := bootstrap.NewCatalog(cfg, pool, cfg.Import.BatchLimit, logger)
	if err != nil {
		logger.Error("failed to load job catalog", "error", err)
		os.Exit(1)
	}

	batches := repo.NewBatchRepo(pool)

	runner := batch.NewRunner(batch.Config{
		Steppers: batch.NewOrchestratorFactory(batch.OrchestratorConfig{
			Manager:           catalog.Manager,
			BaseID:            cfg.Import.BaseJob,
			TranslationBaseID: cfg.Import.TranslationJob,
			DefaultLocale:     cfg.Import.DefaultLocale,
			Logger:            logger,
		}),
		Store:    batches,
		MaxSteps: cfg.Import.MaxSteps,
		Logger:   logger,
	})

	// RabbitMQ (опционально)
	mqConn, _ := bootstrap.ConnectMQ(ctx, cfg.RabbitMQURL, "import-worker", logger)
	if mqConn != nil {
		defer mqConn.Close()
	}

	w := worker.New(worker.Config{
		Batches: batches,
		Runner:  runner,
		Conn:    mqConn,
		Logger:  logger,
	})

	if err := w.Start(ctx); err != nil {
		logger.Error("failed to start worker", "error", err)
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
		Addr:              ":" + cfg.WorkerPort,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("http server error", "error", err)
	}

	// Останавливаем worker и ждём текущий batch
	w.Stop()
	logger.Info("import-worker stopped")
}
