package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/aswathylr-builds/order-confirmation/activities"
	"github.com/aswathylr-builds/order-confirmation/codec"
	"github.com/aswathylr-builds/order-confirmation/config"
	"github.com/aswathylr-builds/order-confirmation/health"
	"github.com/aswathylr-builds/order-confirmation/logging"
	"github.com/aswathylr-builds/order-confirmation/store"
	"github.com/aswathylr-builds/order-confirmation/workflows"
)

func main() {
	logger := logging.New("order-confirmation-worker")
	cfg := config.LoadWorker()

	clientOptions := client.Options{
		HostPort: cfg.Host,
		Logger:   logging.Temporal(logger),
	}

	if cfg.EncryptionEnabled {
		key, created, err := codec.LoadOrCreateKey(cfg.KeyFile)
		if err != nil {
			logger.Error("Failed to load encryption key", "error", err)
			os.Exit(1)
		}
		if created {
			logger.Info("Generated new encryption key", "path", cfg.KeyFile)
		}
		dataConverter, err := codec.NewEncryptionDataConverter(key)
		if err != nil {
			logger.Error("Failed to create encryption data converter", "error", err)
			os.Exit(1)
		}
		clientOptions.DataConverter = dataConverter
		logger.Info("Encryption enabled for worker")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessions, err := store.OpenSQLite(ctx, cfg.SessionDB)
	if err != nil {
		logger.Error("Unable to open session store", "path", cfg.SessionDB, "error", err)
		os.Exit(1)
	}
	defer sessions.Close()

	c, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("Unable to create Temporal client", "error", err)
		os.Exit(1)
	}
	defer c.Close()

	w := worker.New(c, config.TaskQueue, worker.Options{})

	w.RegisterWorkflow(workflows.CheckoutNotificationWorkflow)

	notificationActivities := activities.NewNotificationActivities(cfg.DispatcherURL, sessions)
	w.RegisterActivity(notificationActivities.SendOrderConfirmation)
	w.RegisterActivity(notificationActivities.RecordLastOrder)
	w.RegisterActivity(notificationActivities.RecordOrderStatus)

	logger.Info("Worker starting", "task_queue", config.TaskQueue,
		"dispatcher_url", cfg.DispatcherURL, "temporal_host", cfg.Host, "session_db", cfg.SessionDB)

	healthServer := health.NewServer(cfg.HealthPort, logger)
	healthServer.RegisterChecker(health.NewTemporalChecker(c))
	healthServer.RegisterChecker(health.NewPingChecker("sessions", sessions))
	healthServer.RegisterChecker(health.NewHTTPChecker("dispatcher", dispatcherHealthURL(cfg.DispatcherURL)))

	if err := healthServer.Start(); err != nil {
		logger.Error("Failed to start health check server", "error", err)
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Worker started successfully")
		if err := w.Run(worker.InterruptCh()); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-sigCh:
		logger.Info("Received shutdown signal, gracefully stopping...")
	case err := <-errCh:
		logger.Error("Worker error", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()

	logger.Info("Stopping worker...")
	w.Stop()

	logger.Info("Stopping health check server...")
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Health server shutdown error", "error", err)
	}

	logger.Info("Worker shutdown complete")
}

// dispatcherHealthURL points at the dispatcher service's liveness endpoint
func dispatcherHealthURL(dispatcherURL string) string {
	return strings.TrimSuffix(dispatcherURL, "/send-order-confirmation") + "/health/live"
}
