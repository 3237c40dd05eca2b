// Import API — HTTP API импорта продуктов.
//
// API:
//   - Принимает файл продуктов и язык, создаёт batch
//   - Показывает прогресс и итог batch
//   - Останавливает и сбрасывает зависшие jobs
//
// Выполняет batch import-worker.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/ContentImport/internal/api"
	"github.com/shaiso/ContentImport/internal/bootstrap"
	"github.com/shaiso/ContentImport/internal/config"
	"github.com/shaiso/ContentImport/internal/repo"
	"github.com/shaiso/ContentImport/internal/telemetry"
)

var (
	startTime   = time.Now()
	healthTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "content_import_api_health_checks_total",
		Help: "Total health checks handled by import-api",
	})
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting import-api")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Подключаемся к базе данных
	pool, err := repo.NewPool(ctx, cfg.DBURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	if err := repo.EnsureSchema(ctx, pool); err != nil {
		logger.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}

	// API не выполняет jobs, лимит шага не нужен.
	catalog, err := bootstrap.NewCatalog(cfg, pool, 0, logger)
	if err != nil {
		logger.Error("failed to load job catalog", "error", err)
		os.Exit(1)
	}

	apiCfg := api.Config{
		Batches:   repo.NewBatchRepo(pool),
		Settings:  repo.NewSettingsRepo(pool),
		States:    catalog.States,
		Jobs:      catalog.Manager,
		Languages: catalog.Languages,
		BaseJob:   cfg.Import.BaseJob,
		Logger:    logger,
	}

	mqConn, publisher := bootstrap.ConnectMQ(ctx, cfg.RabbitMQURL, "import-api", logger)
	if mqConn != nil {
		defer mqConn.Close()
		apiCfg.Publisher = publisher
	}

	handler := api.NewHandler(apiCfg)

	mux := http.NewServeMux()

	// Health и metrics
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		healthTotal.Inc()
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %s", time.Since(startTime))
	})
	mux.Handle("/metrics", promhttp.Handler())

	// Регистрируем API маршруты
	handler.RegisterRoutes(mux)

	addr := ":" + cfg.APIPort

	// Создаём HTTP сервер с возможностью graceful shutdown
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		logger.Info("listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	// Graceful shutdown с таймаутом 10 секунд
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("stopped")
}
