package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/hotel-reservation-service/internal/api/http"
	"github.com/spec-kit/hotel-reservation-service/internal/api/http/handlers"
	"github.com/spec-kit/hotel-reservation-service/internal/auth"
	"github.com/spec-kit/hotel-reservation-service/internal/config"
	"github.com/spec-kit/hotel-reservation-service/internal/events"
	"github.com/spec-kit/hotel-reservation-service/internal/observability"
	"github.com/spec-kit/hotel-reservation-service/internal/persistence"
	"github.com/spec-kit/hotel-reservation-service/internal/repository"
	"github.com/spec-kit/hotel-reservation-service/internal/service"
	"github.com/spec-kit/hotel-reservation-service/internal/storage"
	"github.com/spec-kit/hotel-reservation-service/internal/worker"
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

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	customerRepo := repository.NewCustomerRepository(pool)
	roomRepo := repository.NewRoomRepository(pool)
	transactionRepo := repository.NewTransactionRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger)
	worker.StartNotificationWorker(notificationService)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:          userRepo,
		PasswordResetRepo: resetRepo,
	})
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	var cacheTTL = cfg.Cache.TTL()
	if !cfg.Cache.Enabled {
		cacheTTL = 0
	}
	reservationService := service.NewReservationService(service.ReservationDependencies{
		UserRepo:        userRepo,
		CustomerRepo:    customerRepo,
		RoomRepo:        roomRepo,
		TransactionRepo: transactionRepo,
		AvatarStore:     storage.NewDiskStore(cfg.Storage.BasePath),
		Cache:           redis.ClientHandle(),
		CacheTTL:        cacheTTL,
		BcryptCost:      cfg.Auth.BcryptCost,
		Dispatcher:      dispatcher,
		Logger:          logger,
	})

	app := fiber.New()
	metrics := observability.NewMetrics()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	authHandler := handlers.NewAuthHandler(authService)
	customersHandler := handlers.NewCustomersHandler(reservationService)
	reservationsHandler := handlers.NewReservationsHandler(reservationService)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		Auth:           authHandler,
		Customers:      customersHandler,
		Reservations:   reservationsHandler,
		AuthMiddleware: authMiddleware,
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
