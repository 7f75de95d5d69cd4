package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/aswathylr-builds/order-confirmation/channels"
	"github.com/aswathylr-builds/order-confirmation/config"
	"github.com/aswathylr-builds/order-confirmation/dispatcher"
	"github.com/aswathylr-builds/order-confirmation/events"
	"github.com/aswathylr-builds/order-confirmation/health"
	"github.com/aswathylr-builds/order-confirmation/logging"
	"github.com/aswathylr-builds/order-confirmation/metrics"
)

const serviceName = "order-confirmation-dispatcher"

func main() {
	logger := logging.New(serviceName)
	cfg := config.LoadServer()

	if cfg.Email.ServiceID == "" || cfg.Email.TemplateID == "" || cfg.Email.UserID == "" {
		logger.Warn("EmailJS credentials are incomplete, email sends will be rejected by the provider")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	serverMetrics := metrics.NewServerMetrics(registry, "dispatcher")

	opts := []dispatcher.Option{
		dispatcher.WithLogger(logger),
		dispatcher.WithMetrics(serverMetrics),
	}
	publisher := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	if publisher != nil {
		defer publisher.Close()
		opts = append(opts, dispatcher.WithPublisher(publisher))
		logger.Info("Publishing notification events", "topic", cfg.KafkaTopic)
	}

	d := dispatcher.New(
		channels.NewEmailChannel(cfg.Email, logger),
		channels.NewWhatsAppChannel(logger),
		opts...,
	)

	healthServer := health.NewServer(cfg.Port, logger)
	healthServer.RegisterChecker(health.NewHTTPChecker("emailjs", emailJSOrigin(cfg.Email.URL)))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Mount("/send-order-confirmation", d.Handler())
	healthServer.Register(r)
	r.Handle("/metrics", metrics.Handler(registry))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Dispatcher listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("Received shutdown signal, gracefully stopping...")
	case err := <-errCh:
		logger.Error("Server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}
	logger.Info("Dispatcher shutdown complete")
}

// emailJSOrigin trims the send path so the health probe hits the API root
func emailJSOrigin(sendURL string) string {
	return strings.TrimSuffix(sendURL, "/api/v1.0/email/send")
}
