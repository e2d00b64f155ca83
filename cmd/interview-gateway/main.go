package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tjfontaine/interview-gateway/internal/api/gemini"
	"github.com/tjfontaine/interview-gateway/internal/config"
	"github.com/tjfontaine/interview-gateway/internal/frontdoor/survey"
	"github.com/tjfontaine/interview-gateway/internal/interview"
	"github.com/tjfontaine/interview-gateway/internal/metrics"
	"github.com/tjfontaine/interview-gateway/internal/server"
	"github.com/tjfontaine/interview-gateway/internal/storage"
	"github.com/tjfontaine/interview-gateway/internal/storage/memory"
	"github.com/tjfontaine/interview-gateway/internal/storage/sqlite"
	"github.com/tjfontaine/interview-gateway/internal/telemetry"
)

const serviceName = "interview-gateway"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, closeLog, err := newLogger(cfg.Server)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer closeLog()
	slog.SetDefault(logger)

	// Initialize OpenTelemetry
	shutdownTracer, err := telemetry.InitTracer(serviceName, telemetry.Config{Enabled: cfg.Tracing.Enabled}, logger)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}()

	audit, err := openAuditLog(cfg.Audit)
	if err != nil {
		log.Fatalf("Failed to open audit log: %v", err)
	}
	defer audit.Close()

	client := gemini.NewClient(cfg.Gemini.APIKey,
		gemini.WithBaseURL(cfg.Gemini.BaseURL),
		gemini.WithModel(cfg.Gemini.Model),
		gemini.WithTimeout(cfg.Gemini.Timeout),
	)

	serviceOpts := []interview.Option{interview.WithLogger(logger)}
	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector(cfg.Metrics.Namespace, nil)
		serviceOpts = append(serviceOpts, interview.WithMetrics(collector))
	}

	svc := interview.NewService(client, audit, serviceOpts...)

	srv := server.New(cfg.Server.Port, logger, cfg.Server.RequestTimeout)
	survey.NewHandler(svc).Register(srv.Router)
	if collector != nil {
		srv.Router.Handle(cfg.Metrics.Path, collector.Handler())
	}

	logger.Info("interview gateway configured",
		slog.String("model", client.Model()),
		slog.String("audit_backend", cfg.Audit.Backend),
		slog.Bool("metrics", cfg.Metrics.Enabled),
		slog.Bool("tracing", cfg.Tracing.Enabled),
		slog.Bool("debug", cfg.Server.Debug),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		return
	case <-sigChan:
	}

	logger.Info("Shutdown signal received, stopping gateway...")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Gateway shutdown complete")
}

// newLogger builds the JSON logger, teeing to server.log_file when set.
func newLogger(cfg config.ServerConfig) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	var w io.Writer = os.Stdout
	closeFn := func() {}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		w = io.MultiWriter(os.Stdout, f)
		closeFn = func() { f.Close() }
	}

	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	return logger, closeFn, nil
}

func openAuditLog(cfg config.AuditConfig) (storage.AuditLog, error) {
	switch cfg.Backend {
	case config.AuditBackendSQLite:
		return sqlite.New(cfg.SQLite.Path)
	case config.AuditBackendMemory, "":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown audit backend %q", cfg.Backend)
	}
}
