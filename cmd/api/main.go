package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/eshop-service/internal/api/http"
	"github.com/spec-kit/eshop-service/internal/api/http/handlers"
	"github.com/spec-kit/eshop-service/internal/auth"
	"github.com/spec-kit/eshop-service/internal/cache"
	"github.com/spec-kit/eshop-service/internal/config"
	"github.com/spec-kit/eshop-service/internal/events"
	"github.com/spec-kit/eshop-service/internal/observability"
	"github.com/spec-kit/eshop-service/internal/persistence"
	"github.com/spec-kit/eshop-service/internal/repository"
	"github.com/spec-kit/eshop-service/internal/service"
	"github.com/spec-kit/eshop-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), persistence.DefaultMigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	exemptRules, err := auth.ParseRules(cfg.ExemptRoutesOrDefault())
	if err != nil {
		logger.Fatal("invalid AUTH_EXEMPT_ROUTES", zap.Error(err))
	}
	policy, err := auth.NewPolicyMatcher(exemptRules)
	if err != nil {
		logger.Fatal("invalid AUTH_EXEMPT_ROUTES", zap.Error(err))
	}
	codec := auth.NewTokenCodec(cfg.Auth.JWTSecret, auth.WithTTL(cfg.Auth.TokenTTL))

	metrics := observability.NewMetrics()
	authMiddleware := auth.NewMiddleware(auth.NewGate(policy, codec), metrics)

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	productRepo := repository.NewProductRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)

	var productCache *cache.ProductCache
	if cfg.Cache.Enabled {
		productCache = cache.NewProductCache(redis.Client, cfg.Cache.ProductTTL)
	}

	dispatcher := events.NewInMemoryDispatcher()
	notifications := worker.NewNotificationWorker(service.NewNotificationService(logger, cfg.Notification), logger, 0)
	notifications.Subscribe(dispatcher, service.NotificationEvents...)
	notifications.Start(ctx)

	credentials := auth.NewCredentialVerifier(userRepo, codec, cfg.Auth.BcryptCost)
	authService := service.NewAuthService(userRepo, credentials, dispatcher)
	userService := service.NewUserService(userRepo)
	catalogService := service.NewCatalogService(categoryRepo, productRepo, productCache, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, dispatcher)

	app := fiber.New(fiber.Config{
		AppName:       cfg.App.Name,
		CaseSensitive: true,
		ErrorHandler:  httptransport.ErrorHandler,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, httptransport.MiddlewareConfig{
		Timeout:     cfg.App.RequestTimeout(),
		CORSOrigins: cfg.App.CORSOrigins,
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		APIPrefix:  cfg.App.APIPrefix,
		UploadsDir: cfg.App.UploadsDir,
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Users:          handlers.NewUsersHandler(authService, userService, metrics),
		Categories:     handlers.NewCategoriesHandler(catalogService),
		Products:       handlers.NewProductsHandler(catalogService),
		Orders:         handlers.NewOrdersHandler(orderService),
		AuthMiddleware: authMiddleware,
		LoginLimiter:   httptransport.NewLoginLimiter(cfg.Auth.LoginRatePerMinute),
		Metrics:        metrics.Handler(),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
	notifications.Stop()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
