package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/3dstuff/store-bff-go/internal/config"
	"github.com/3dstuff/store-bff-go/internal/domain"
	"github.com/3dstuff/store-bff-go/internal/handler"
	"github.com/3dstuff/store-bff-go/internal/infra/cache"
	"github.com/3dstuff/store-bff-go/internal/infra/client"
	"github.com/3dstuff/store-bff-go/internal/infra/formsubmit"
	"github.com/3dstuff/store-bff-go/internal/infra/observability"
	"github.com/3dstuff/store-bff-go/internal/infra/resilience"
	"github.com/3dstuff/store-bff-go/internal/infra/static"
	"github.com/3dstuff/store-bff-go/internal/port"
	"github.com/3dstuff/store-bff-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Bool("payments_enabled", cfg.PaymentsEnabled()),
		zap.Bool("credit_card_enabled", cfg.CreditCardEnabled()),
		zap.Duration("poll_interval", cfg.PollInterval),
		zap.Duration("poll_budget", cfg.PollBudget),
		zap.Duration("session_ttl", cfg.SessionTTL),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "store-bff")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Caches ---
	productCache := cache.New[[]domain.Product](cfg.CacheTTL)
	installmentCache := cache.New[[]domain.InstallmentOption](cfg.CacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("commerce-backend")

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	// The commerce backend serves every concern when configured. Without
	// it the store degrades: static catalog, mail relay for contact,
	// payments blocked with a typed configuration error.
	var paymentBackend port.PaymentBackend
	var productSource port.ProductSource
	var productWriter port.ProductWriter
	var companySource port.CompanyInfoSource
	var contactRelay port.ContactRelay

	if cfg.PaymentsEnabled() {
		logger.Info("using commerce backend",
			zap.String("backend_url", cfg.BackendBaseURL),
		)
		backend := client.NewBackend(httpClient, cfg.BackendBaseURL, cb, resilienceCfg, logger)
		paymentBackend = backend
		productSource = backend
		productWriter = backend
		companySource = backend
		contactRelay = backend
	} else {
		logger.Warn("commerce backend not configured, running in fallback mode")
		catalog, err := static.NewCatalog(cfg.StaticCatalogPath, logger)
		if err != nil {
			logger.Fatal("failed to load static catalog", zap.Error(err))
		}
		productSource = catalog
		contactRelay = formsubmit.NewRelay(
			httpClient,
			cfg.FormRelayEndpoint,
			cfg.FormRelaySubject,
			cfg.FormRelaySource,
			logger,
		)
	}

	// --- Services ---
	checkoutSvc := service.NewCheckout(
		paymentBackend,
		productSource,
		installmentCache,
		metrics,
		logger,
		service.CheckoutOptions{
			PollInterval:      cfg.PollInterval,
			PollBudget:        cfg.PollBudget,
			SessionTTL:        cfg.SessionTTL,
			CreditCardEnabled: cfg.CreditCardEnabled(),
		},
	)

	catalogSvc := service.NewCatalog(
		productSource,
		productWriter,
		companySource,
		productCache,
		metrics,
		logger,
		domain.CompanyInfo{
			Name:  cfg.CompanyName,
			Email: cfg.CompanyEmail,
		},
	)

	contactSvc := service.NewContact(contactRelay, metrics, logger)

	authSvc := service.NewAuth(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.AdminUser, cfg.AdminPasswordHash, logger)
	if authSvc.Enabled() {
		logger.Info("admin auth enabled", zap.String("admin_user", cfg.AdminUser))
	} else {
		logger.Warn("admin auth not configured, admin routes unavailable")
	}

	// --- Router ---
	router := handler.NewRouter(checkoutSvc, catalogSvc, contactSvc, authSvc, metrics, cfg.AllowedOrigins, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
