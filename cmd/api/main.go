package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/marketplace-service/internal/api/http"
	"github.com/spec-kit/marketplace-service/internal/api/http/handlers"
	"github.com/spec-kit/marketplace-service/internal/audit"
	"github.com/spec-kit/marketplace-service/internal/auth"
	"github.com/spec-kit/marketplace-service/internal/config"
	"github.com/spec-kit/marketplace-service/internal/events"
	"github.com/spec-kit/marketplace-service/internal/observability"
	"github.com/spec-kit/marketplace-service/internal/persistence"
	"github.com/spec-kit/marketplace-service/internal/repository"
	"github.com/spec-kit/marketplace-service/internal/service"
	"github.com/spec-kit/marketplace-service/internal/uploads"
	"github.com/spec-kit/marketplace-service/internal/worker"
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

	store, err := persistence.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open record store", zap.Error(err))
	}
	defer store.Close()

	ingestor, err := uploads.NewDiskIngestor(cfg.Uploads, logger)
	if err != nil {
		logger.Fatal("failed to init upload dir", zap.Error(err))
	}

	auditLog := audit.New(cfg.Storage.AuditLog, logger)
	dispatcher := events.NewInMemoryDispatcher()

	listingRepo := repository.NewListingRepository(store, ingestor, logger)
	userRepo := repository.NewUserRepository(store)
	paymentRepo := repository.NewPaymentRepository(store, cfg.Payment)

	moderation := service.NewModerationService(service.ModerationDependencies{
		ListingRepo: listingRepo,
		UserRepo:    userRepo,
		PaymentRepo: paymentRepo,
		Authorizer:  auth.IsAdmin,
		AuditLog:    auditLog,
		Dispatcher:  dispatcher,
	})
	stats := service.NewStatsService(listingRepo, userRepo, paymentRepo)

	notifications := service.NewNotificationService(dispatcher, logger)
	worker.StartNotificationWorker(notifications)
	worker.StartStatsWorker(ctx, stats, logger, cfg.App.StatsSnapshotInterval())

	tokens := auth.NewTokenManager(cfg.Admin.JWTSecret, cfg.Admin.TokenTTLMinutes)
	adminMiddleware := auth.NewAdminMiddleware(tokens)

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:          handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, store),
		Listings:        handlers.NewListingsHandler(listingRepo, userRepo, ingestor, dispatcher),
		Users:           handlers.NewUsersHandler(userRepo),
		Payments:        handlers.NewPaymentsHandler(paymentRepo, dispatcher),
		Admin:           handlers.NewAdminHandler(moderation, stats, tokens, cfg.Admin),
		AdminMiddleware: adminMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
