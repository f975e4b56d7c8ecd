package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/atendo-hq/atendo/internal/api/http"
	"github.com/atendo-hq/atendo/internal/api/http/handlers"
	"github.com/atendo-hq/atendo/internal/auth"
	"github.com/atendo-hq/atendo/internal/config"
	"github.com/atendo-hq/atendo/internal/events"
	"github.com/atendo-hq/atendo/internal/observability"
	"github.com/atendo-hq/atendo/internal/persistence"
	"github.com/atendo-hq/atendo/internal/repository"
	"github.com/atendo-hq/atendo/internal/service"
	"github.com/atendo-hq/atendo/internal/worker"
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
	roleRepo := repository.NewRoleRepository(pool)
	sessionRepo := repository.NewLoginSessionRepository(pool)
	networkRepo := repository.NewNetworkRepository(pool)
	teamRepo := repository.NewTeamRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	stageRepo := repository.NewTicketStageRepository(pool)
	stageEventRepo := repository.NewStageEventRepository(pool)
	typeRepo := repository.NewTicketTypeRepository(pool)
	serviceRepo := repository.NewServiceRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)
	costumerRepo := repository.NewCostumerRepository(pool)
	locationRepo := repository.NewLocationRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()
	unreadCounter := persistence.NewUnreadCounter(redis)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:    userRepo,
		RoleRepo:    roleRepo,
		SessionRepo: sessionRepo,
		NetworkRepo: networkRepo,
		Dispatcher:  dispatcher,
		DB:          pool,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		StageRepo:      stageRepo,
		StageEventRepo: stageEventRepo,
		TypeRepo:       typeRepo,
		ServiceRepo:    serviceRepo,
		CostumerRepo:   costumerRepo,
		Dispatcher:     dispatcher,
		DB:             pool,
	})
	messageService := service.NewMessageService(service.MessageDependencies{
		MessageRepo: messageRepo,
		TeamRepo:    teamRepo,
		UserRepo:    userRepo,
		Counter:     unreadCounter,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	directoryService := service.NewDirectoryService(service.DirectoryDependencies{
		CostumerRepo: costumerRepo,
		LocationRepo: locationRepo,
		TeamRepo:     teamRepo,
		UserRepo:     userRepo,
		TypeRepo:     typeRepo,
		ServiceRepo:  serviceRepo,
		DB:           pool,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, networkRepo, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	usersHandler := handlers.NewUsersHandler(authService, httptransport.NetworkIDFromContext)
	ticketsHandler := handlers.NewTicketsHandler(ticketService, httptransport.NetworkIDFromContext)
	messagesHandler := handlers.NewMessagesHandler(messageService, httptransport.NetworkIDFromContext)
	directoryHandler := handlers.NewDirectoryHandler(directoryService)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		Users:          usersHandler,
		Tickets:        ticketsHandler,
		Messages:       messagesHandler,
		Directory:      directoryHandler,
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
