package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"condoflow/internal/amqp"
	"condoflow/internal/auth"
	"condoflow/internal/backend"
	"condoflow/internal/config"
	apphttp "condoflow/internal/http"
	"condoflow/internal/insight"
	applog "condoflow/internal/log"
	"condoflow/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: applog.ParseLevel(os.Getenv("LOG_LEVEL")),
	}))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// Choose data backend (default: memory).
	factory := backend.NewFactory(logger)
	result, err := factory.CreateStore(context.Background(), backend.Config{
		Type:         backend.Type(cfg.DataBackend),
		SQLiteDBPath: cfg.SQLiteDBPath,
	})
	if err != nil {
		logger.Error("Failed to initialize data backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	st := result.Store
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	}()

	// AMQP is optional; without it report jobs render inline only.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	// Gemini is optional; the static fallback line is used without a key.
	var summarizer insight.Summarizer = insight.Static{}
	if cfg.GeminiAPIKey != "" {
		gemini, err := insight.NewGemini(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error("Failed to initialize Gemini client", "error", err)
			os.Exit(1)
		}
		defer gemini.Close()
		summarizer = gemini
		logger.Info("Gemini insight enabled", "model", cfg.GeminiModel)
	} else {
		logger.Info("Gemini disabled - using static insight")
	}

	sessions := auth.NewManager(cfg.JWTSecret, cfg.AdminEmail, cfg.AdminPassword, cfg.SessionTTL)
	if !sessions.Enabled() {
		logger.Warn("Authentication disabled - set ADMIN_PASSWORD and JWT_SECRET to protect the API")
	}

	srv := apphttp.NewServer(":"+cfg.Port,
		services.NewUnitService(st),
		services.NewReadingService(st),
		services.NewRegistrationService(st),
		services.NewReportService(st, amqpClient, cfg.CondoName),
		services.NewDashboardService(st, summarizer),
		sessions)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting condoflow server", "port", cfg.Port, "backend", cfg.DataBackend, "condo", cfg.CondoName)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
