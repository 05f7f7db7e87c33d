package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kimotaku1/Ecommerce-forever/internal/handlers"
	"github.com/kimotaku1/Ecommerce-forever/internal/payments"
	"github.com/kimotaku1/Ecommerce-forever/internal/platform/auth"
	"github.com/kimotaku1/Ecommerce-forever/internal/platform/config"
	"github.com/kimotaku1/Ecommerce-forever/internal/platform/events"
	pfirestore "github.com/kimotaku1/Ecommerce-forever/internal/platform/firestore"
	"github.com/kimotaku1/Ecommerce-forever/internal/platform/idempotency"
	"github.com/kimotaku1/Ecommerce-forever/internal/platform/observability"
	firestoreRepo "github.com/kimotaku1/Ecommerce-forever/internal/repositories/firestore"
	"github.com/kimotaku1/Ecommerce-forever/internal/services"
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

	logger := baseLogger.Named("api")
	ctx = observability.WithLogger(ctx, logger)

	cfg, err := config.Load()
	if err != nil {
		var validation *config.ValidationError
		if errors.As(err, &validation) {
			logger.Fatal("invalid configuration", zap.Strings("fields", validation.Fields()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	firestoreProvider := pfirestore.NewProvider(cfg.Firestore)
	firestoreClient, err := firestoreProvider.Client(ctx)
	if err != nil {
		logger.Fatal("failed to initialise firestore client", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := firestoreProvider.Close(closeCtx); err != nil {
			logger.Warn("firestore close error", zap.Error(err))
		}
	}()

	orderRepo, err := firestoreRepo.NewOrderRepository(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise order repository", zap.Error(err))
	}
	accountRepo, err := firestoreRepo.NewAccountRepository(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise account repository", zap.Error(err))
	}
	productRepo, err := firestoreRepo.NewProductRepository(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise product repository", zap.Error(err))
	}
	newsletterRepo, err := firestoreRepo.NewNewsletterRepository(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise newsletter repository", zap.Error(err))
	}

	tokenManager, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		logger.Fatal("failed to initialise token manager", zap.Error(err))
	}

	var gateway payments.Gateway
	if strings.TrimSpace(cfg.Gateway.MerchantID) != "" {
		esewa, err := payments.NewEsewaGateway(cfg.Gateway)
		if err != nil {
			logger.Fatal("failed to initialise payment gateway", zap.Error(err))
		}
		gateway = esewa
	} else {
		logger.Warn("payment gateway not configured; gateway checkout disabled")
	}

	var eventPublisher services.OrderEventPublisher
	var pubsubClient *pubsub.Client
	if strings.TrimSpace(cfg.PubSub.Topic) != "" {
		pubsubClient, err = pubsub.NewClient(ctx, cfg.PubSub.ProjectID)
		if err != nil {
			logger.Fatal("failed to initialise pubsub client", zap.Error(err))
		}
		topic := pubsubClient.Topic(cfg.PubSub.Topic)
		publisher, err := events.NewPubSubOrderEventPublisher(topic)
		if err != nil {
			logger.Fatal("failed to initialise order event publisher", zap.Error(err))
		}
		eventPublisher = publisher
	} else {
		logger.Warn("order events topic not configured; event publishing disabled")
	}
	defer func() {
		if pubsubClient != nil {
			if err := pubsubClient.Close(); err != nil {
				logger.Warn("pubsub close error", zap.Error(err))
			}
		}
	}()

	idempotencyStore := idempotency.NewFirestoreStore(firestoreClient)
	idempotencyMiddleware := idempotency.Middleware(
		idempotencyStore,
		idempotency.WithHeader(cfg.Idempotency.Header),
		idempotency.WithTTL(cfg.Idempotency.TTL),
		idempotency.WithLogger(observability.NewPrintfAdapter(logger.Named("idempotency"))),
	)

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	var cleanupWG sync.WaitGroup
	cleanupTicker := time.NewTicker(cfg.Idempotency.CleanupInterval)
	cleanupWG.Add(1)
	go func() {
		defer cleanupWG.Done()
		cleanupLogger := logger.Named("idempotency")
		for {
			select {
			case <-cleanupTicker.C:
				runCtx, cancel := context.WithTimeout(cleanupCtx, time.Minute)
				removed, err := idempotencyStore.CleanupExpired(runCtx, time.Now().UTC(), cfg.Idempotency.CleanupBatchSize)
				cancel()
				if err != nil {
					cleanupLogger.Error("idempotency cleanup error", zap.Error(err))
					continue
				}
				if removed > 0 {
					cleanupLogger.Info("idempotency cleanup removed records", zap.Int("count", removed))
				}
			case <-cleanupCtx.Done():
				return
			}
		}
	}()

	accountService, err := services.NewAccountService(services.AccountServiceDeps{
		Accounts:      accountRepo,
		Tokens:        tokenManager,
		Clock:         time.Now,
		AdminEmail:    cfg.Auth.AdminEmail,
		AdminPassword: cfg.Auth.AdminPassword,
	})
	if err != nil {
		logger.Fatal("failed to initialise account service", zap.Error(err))
	}

	cartService, err := services.NewCartService(services.CartServiceDeps{
		Accounts: accountRepo,
	})
	if err != nil {
		logger.Fatal("failed to initialise cart service", zap.Error(err))
	}

	catalogService, err := services.NewCatalogService(services.CatalogServiceDeps{
		Products: productRepo,
		Clock:    time.Now,
	})
	if err != nil {
		logger.Fatal("failed to initialise catalog service", zap.Error(err))
	}

	orderService, err := services.NewOrderService(services.OrderServiceDeps{
		Orders:      orderRepo,
		Accounts:    accountRepo,
		Gateway:     gateway,
		Events:      eventPublisher,
		Clock:       time.Now,
		DeliveryFee: cfg.Orders.DeliveryFee,
	})
	if err != nil {
		logger.Fatal("failed to initialise order service", zap.Error(err))
	}

	newsletterService, err := services.NewNewsletterService(services.NewsletterServiceDeps{
		Subscriptions: newsletterRepo,
		Clock:         time.Now,
	})
	if err != nil {
		logger.Fatal("failed to initialise newsletter service", zap.Error(err))
	}

	userHandlers := handlers.NewUserHandlers(accountService)
	cartHandlers := handlers.NewCartHandlers(cartService)
	catalogHandlers := handlers.NewCatalogHandlers(catalogService)
	orderHandlers := handlers.NewOrderHandlers(orderService)
	newsletterHandlers := handlers.NewNewsletterHandlers(newsletterService)

	healthHandlers := handlers.NewHealthHandlers()
	healthHandlers.AddCheck("firestore", func(ctx context.Context) error {
		checkCtx, cancel := context.WithTimeout(ctx, 1500*time.Millisecond)
		defer cancel()
		_, err := firestoreProvider.Client(checkCtx)
		return err
	})

	projectID := cfg.Firestore.ProjectID
	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.TraceMiddleware(projectID),
		observability.RecoveryMiddleware(logger.Named("http")),
		observability.RequestLoggerMiddleware(projectID),
	}

	authMiddleware := auth.Middleware(tokenManager)
	adminOnly := auth.RequireRole(auth.RoleAdmin)

	router := handlers.NewRouter(
		handlers.WithMiddlewares(middlewares...),
		handlers.WithHealthHandlers(healthHandlers),
		handlers.WithUserRoutes(userHandlers.Routes),
		handlers.WithProductRoutes(catalogHandlers.Routes),
		handlers.WithCartRoutes(cartHandlers.Routes),
		handlers.WithCartMiddlewares(authMiddleware),
		handlers.WithOrderRoutes(orderHandlers.Routes),
		handlers.WithOrderMiddlewares(authMiddleware, idempotencyMiddleware),
		handlers.WithNewsletterRoutes(newsletterHandlers.Routes),
		handlers.WithAdminRoutes(func(r chi.Router) {
			r.Route("/orders", orderHandlers.AdminRoutes)
			r.Route("/products", catalogHandlers.AdminRoutes)
		}),
		handlers.WithAdminMiddlewares(authMiddleware, adminOnly),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("storefront api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	cleanupTicker.Stop()
	cleanupCancel()
	cleanupWG.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
