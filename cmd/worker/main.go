package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vpetrenko/jobfit/internal/bootstrap"
	"github.com/vpetrenko/jobfit/internal/config"
	"github.com/vpetrenko/jobfit/internal/observability/logging"
	"github.com/vpetrenko/jobfit/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("worker", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewWorker(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		slog.Info("worker_metrics_listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("worker_metrics_server_error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker_subscribed", "subject", cfg.NATSCleanupSubject)
	err = app.Queue.SubscribeCleanup(ctx, func(handlerCtx context.Context, locator string) error {
		started := time.Now()
		workerMetrics.StartCleanup()

		deleteCtx, cancel := context.WithTimeout(handlerCtx, 30*time.Second)
		defer cancel()
		deleteErr := app.Storage.Delete(deleteCtx, locator)

		workerMetrics.FinishCleanup("worker", time.Since(started), deleteErr)
		if deleteErr != nil {
			return deleteErr
		}
		slog.Info("temporary_document_deleted", "locator", locator)
		return nil
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
