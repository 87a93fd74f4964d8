package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/reshla/blacklist-service/internal/api/http"
	"github.com/reshla/blacklist-service/internal/api/http/handlers"
	"github.com/reshla/blacklist-service/internal/auth"
	"github.com/reshla/blacklist-service/internal/config"
	"github.com/reshla/blacklist-service/internal/events"
	"github.com/reshla/blacklist-service/internal/lifecycle"
	"github.com/reshla/blacklist-service/internal/observability"
	"github.com/reshla/blacklist-service/internal/persistence"
	"github.com/reshla/blacklist-service/internal/repository"
	"github.com/reshla/blacklist-service/internal/service"
	"github.com/reshla/blacklist-service/internal/worker"
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
	reportRepo := repository.NewReportRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	actionRepo := repository.NewModeratorActionRepository(pool)
	profileRepo := repository.NewProfileRepository(pool)
	rolesRepo := repository.NewRolesRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()
	rules := lifecycle.Rules{
		ThresholdVotes: cfg.Voting.ThresholdVotes,
		Window:         cfg.Voting.Window(),
	}

	authService := service.NewAuthService(*cfg, userRepo)
	rolesService := service.NewRolesService(rolesRepo, redis.Client, dispatcher, logger)
	reportService := service.NewReportService(service.ReportDependencies{
		ReportRepo:  reportRepo,
		CommentRepo: commentRepo,
		ActionRepo:  actionRepo,
		Rules:       rules,
		Dispatcher:  dispatcher,
	})
	publisherService := service.NewPublisherService(profileRepo, reportRepo, cfg.Publisher, dispatcher, logger)
	moderationService := service.NewModerationService(service.ModerationDependencies{
		ReportRepo:  reportRepo,
		ActionRepo:  actionRepo,
		CommentRepo: commentRepo,
		Roles:       rolesService,
		Publisher:   publisherService,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notify)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Reports:        handlers.NewReportsHandler(reportService),
		Moderation:     handlers.NewModerationHandler(moderationService, reportService),
		Roles:          handlers.NewRolesHandler(rolesService),
		Blacklist:      handlers.NewBlacklistHandler(profileRepo),
		AuthMiddleware: authMiddleware,
		RoleChecker:    rolesService,
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
