package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

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
	app := cli.App{
		Name:  "checkvotes",
		Usage: "sweep voting-stage reports into the moderation queue",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "threshold",
				Usage:   "vote count a report must exceed to enter moderation",
				EnvVars: []string{"VOTING_THRESHOLD_VOTES"},
			},
			&cli.IntFlag{
				Name:    "window-hours",
				Usage:   "voting window length in hours",
				EnvVars: []string{"VOTING_WINDOW_HOURS"},
			},
		},
		Action: runSweep,
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runSweep(cctx *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cctx.IsSet("threshold") {
		cfg.Voting.ThresholdVotes = cctx.Int("threshold")
	}
	if cctx.IsSet("window-hours") {
		cfg.Voting.WindowHours = cctx.Int("window-hours")
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(cctx.Context, 5*time.Minute)
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("failed to connect postgres: %w", err)
	}
	defer pg.Close()

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger, cfg.Notify))

	pool := pg.PoolHandle()
	poller := service.NewPollerService(service.PollerDependencies{
		ReportRepo:  repository.NewReportRepository(pool),
		CommentRepo: repository.NewCommentRepository(pool),
		Rules: lifecycle.Rules{
			ThresholdVotes: cfg.Voting.ThresholdVotes,
			Window:         cfg.Voting.Window(),
		},
		Dispatcher: dispatcher,
		Logger:     logger,
		Metrics:    observability.NewMetrics(),
	})

	result, err := poller.Run(ctx)
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	logger.Info("sweep finished",
		zap.Int("scanned", result.Scanned),
		zap.Int("promoted", result.Promoted),
		zap.Int("expired", result.Expired),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed))
	return nil
}
