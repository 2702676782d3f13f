package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/warranty-service/internal/api/http"
	"github.com/spec-kit/warranty-service/internal/api/http/handlers"
	"github.com/spec-kit/warranty-service/internal/auth"
	"github.com/spec-kit/warranty-service/internal/config"
	"github.com/spec-kit/warranty-service/internal/events"
	"github.com/spec-kit/warranty-service/internal/observability"
	"github.com/spec-kit/warranty-service/internal/persistence"
	"github.com/spec-kit/warranty-service/internal/repository"
	"github.com/spec-kit/warranty-service/internal/service"
	"github.com/spec-kit/warranty-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	store := repository.NewStore(pg.PoolHandle())
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokens, store.Accounts())

	authService := service.NewAuthService(store, tokens, logger, cfg.Auth.BcryptCost)
	accountService := service.NewAccountService(store, logger)
	productService := service.NewProductService(store, logger, cfg.Warranty.PurchaseTolerance())
	ticketService := service.NewTicketService(store, dispatcher, logger, cfg.Warranty.TicketNumberPrefix)

	notificationService := service.NewNotificationService(cfg.Notification, logger)
	notificationService.RegisterHandlers(dispatcher)

	notifier := worker.NewWarrantyNotifier(store, redis.Client, dispatcher, logger, cfg.Warranty.NotifyInterval())
	go notifier.Run(ctx)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Auth:           handlers.NewAuthHandler(authService),
		Products:       handlers.NewProductsHandler(productService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		StaffTickets:   handlers.NewStaffTicketsHandler(ticketService),
		Admin:          handlers.NewAdminHandler(accountService, ticketService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)
	cancel()

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
