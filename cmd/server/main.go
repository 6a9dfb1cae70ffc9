package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stripe/stripe-go/v83"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nexusshop/orderapi/internal/api"
	"github.com/nexusshop/orderapi/internal/config"
	"github.com/nexusshop/orderapi/internal/paypal"
	"github.com/nexusshop/orderapi/internal/repository/postgres"
	"github.com/nexusshop/orderapi/internal/resend"
	"github.com/nexusshop/orderapi/internal/service"
	"github.com/nexusshop/orderapi/internal/supplier"
	"github.com/nexusshop/orderapi/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	// Initialize logger
	logger, err := newLogger(cfg)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	logger.Info("Starting order API server",
		zap.String("environment", cfg.Environment),
		zap.String("port", cfg.Port),
	)

	// The Stripe SDK reads the key from this package-level variable
	stripe.Key = cfg.Stripe.SecretKey

	// Connect to database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("Connected to database")

	repos := postgres.NewRepositories(db, logger)

	// External clients
	paypalClient := paypal.NewClient(cfg.PayPal, logger)
	resendClient := resend.NewClient(cfg.Resend.APIKey, logger)
	supplierClient := supplier.NewClient(logger)

	// Services
	emailService := service.NewEmailService(cfg, repos, resendClient, logger)
	fulfillmentService := service.NewFulfillmentService(repos, supplierClient, emailService, cfg.Worker.RetryDelay, logger)
	affiliateService := service.NewAffiliateService(repos, logger)
	paymentService := service.NewPaymentService(cfg, repos, paypalClient, logger)
	webhookService := service.NewWebhookService(cfg, repos, fulfillmentService, affiliateService, logger)

	services := &api.Services{
		Payments:    paymentService,
		Webhooks:    webhookService,
		Fulfillment: fulfillmentService,
		Affiliates:  affiliateService,
		Emails:      emailService,
	}

	router := api.NewRouter(cfg, repos, services, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Background retry sweeper
	sweeper := worker.NewRetrySweeper(fulfillmentService, cfg.Worker.SweepInterval, logger)
	go sweeper.Run(ctx)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Environment == "production" {
		zapCfg := zap.NewProductionConfig()
		if level, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
			zapCfg.Level = zap.NewAtomicLevelAt(level)
		}
		return zapCfg.Build()
	}
	return zap.NewDevelopment()
}
