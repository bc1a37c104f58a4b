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

	"go.uber.org/zap"

	domain "github.com/darfidda/storefront/internal/domain"
	"github.com/darfidda/storefront/internal/handlers"
	"github.com/darfidda/storefront/internal/platform/config"
	pfirestore "github.com/darfidda/storefront/internal/platform/firestore"
	"github.com/darfidda/storefront/internal/platform/observability"
	"github.com/darfidda/storefront/internal/repositories"
	"github.com/darfidda/storefront/internal/repositories/catalogjson"
	firestoreRepo "github.com/darfidda/storefront/internal/repositories/firestore"
	"github.com/darfidda/storefront/internal/repositories/memory"
	"github.com/darfidda/storefront/internal/services"
	"github.com/darfidda/storefront/internal/submission"
)

func main() {
	ctx := context.Background()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("storefront")
	ctx = observability.WithLogger(ctx, logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	eventLogger := observability.EventLogger(logger)

	catalogRepo, err := catalogjson.NewProductRepository(cfg.Catalog.Source, cfg.Catalog.Timeout)
	if err != nil {
		logger.Fatal("failed to initialise catalog repository", zap.Error(err))
	}

	catalog, err := services.NewCatalogService(services.CatalogServiceDeps{
		Products: catalogRepo,
		Logger:   eventLogger,
	})
	if err != nil {
		logger.Fatal("failed to initialise catalog service", zap.Error(err))
	}
	if err := catalog.Load(ctx); err != nil {
		logger.Fatal("failed to load product catalogue", zap.Error(err))
	}

	var (
		cartRepo  repositories.CartRepository
		orderRepo repositories.OrderRepository
	)
	var firestoreProvider *pfirestore.Provider
	switch cfg.Cart.Backend {
	case "firestore":
		firestoreProvider = pfirestore.NewProvider(cfg.Firestore)
		if _, err := firestoreProvider.Client(ctx); err != nil {
			logger.Fatal("failed to initialise firestore client", zap.Error(err))
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := firestoreProvider.Close(closeCtx); err != nil {
				logger.Warn("firestore close error", zap.Error(err))
			}
		}()

		cartRepo, err = firestoreRepo.NewCartRepository(firestoreProvider, cfg.Firestore.CartsCollection, cfg.Cart.StorageKey)
		if err != nil {
			logger.Fatal("failed to initialise cart repository", zap.Error(err))
		}
		orderRepo, err = firestoreRepo.NewOrderRepository(firestoreProvider, cfg.Firestore.OrdersCollection)
		if err != nil {
			logger.Fatal("failed to initialise order repository", zap.Error(err))
		}
	default:
		cartRepo = memory.NewCartRepository()
		orderRepo = memory.NewOrderRepository()
	}

	pricing, err := services.NewPricingEngine(services.PricingEngineDeps{
		DeliveryCharge: cfg.Pricing.DeliveryCharge,
	})
	if err != nil {
		logger.Fatal("failed to initialise pricing engine", zap.Error(err))
	}

	registry := make([]domain.Promotion, 0, len(cfg.Promotions.Codes))
	for code, entry := range cfg.Promotions.Codes {
		registry = append(registry, domain.Promotion{Code: code, Rate: entry.Rate, Message: entry.Message})
	}
	promotions, err := services.NewPromotionService(services.PromotionServiceDeps{
		Codes:  registry,
		Logger: eventLogger,
	})
	if err != nil {
		logger.Fatal("failed to initialise promotion service", zap.Error(err))
	}

	cart, err := services.NewCartService(services.CartServiceDeps{
		Carts:      cartRepo,
		Catalog:    catalog,
		Pricing:    pricing,
		Promotions: promotions,
		Logger:     eventLogger,
	})
	if err != nil {
		logger.Fatal("failed to initialise cart service", zap.Error(err))
	}
	if err := cart.Restore(ctx); err != nil {
		logger.Warn("cart restore failed; starting with an empty cart", zap.Error(err))
	}
	cart.OnChange(func(state services.CartState) {
		logger.Debug("cart changed",
			zap.Int("item_count", state.ItemCount),
			zap.Int64("final_total", state.Totals.FinalTotal),
		)
	})

	var submitter services.OrderSubmitter
	if cfg.Submission.Endpoint != "" {
		submitter, err = submission.NewFormSubmitter(cfg.Submission.Endpoint, cfg.Submission.Timeout)
		if err != nil {
			logger.Fatal("failed to initialise order submitter", zap.Error(err))
		}
	} else {
		logger.Warn("no submission endpoint configured; orders will be logged only")
		submitter = loggingSubmitter{logger: logger}
	}

	checkout, err := services.NewCheckoutService(services.CheckoutServiceDeps{
		Cart:      cart,
		Submitter: submitter,
		Orders:    orderRepo,
		Logger:    eventLogger,
	})
	if err != nil {
		logger.Fatal("failed to initialise checkout service", zap.Error(err))
	}

	router := handlers.NewRouter(
		handlers.WithMiddlewares(
			observability.TraceMiddleware(cfg.Firestore.ProjectID),
			observability.InjectLoggerMiddleware(logger),
			observability.RequestLoggerMiddleware(cfg.Firestore.ProjectID),
			observability.RecoveryMiddleware(logger),
		),
		handlers.WithProductRoutes(handlers.NewCatalogHandlers(catalog).Routes),
		handlers.WithCartRoutes(handlers.NewCartHandlers(cart).Routes),
		handlers.WithCheckoutRoutes(handlers.NewCheckoutHandlers(checkout).Routes),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdownCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-shutdownCtx.Done():
		logger.Info("shutdown signal received")
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(closeCtx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}
}

// loggingSubmitter stands in when no external endpoint is configured, so local
// development still completes checkouts.
type loggingSubmitter struct {
	logger *zap.Logger
}

func (s loggingSubmitter) Submit(ctx context.Context, order services.OrderSubmission) error {
	s.logger.Info("order submission (dry run)",
		zap.String("reference", order.Reference),
		zap.String("name", order.Name),
	)
	return nil
}
