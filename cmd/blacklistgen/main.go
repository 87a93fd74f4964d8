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
	"github.com/reshla/blacklist-service/internal/domain"
	"github.com/reshla/blacklist-service/internal/observability"
	"github.com/reshla/blacklist-service/internal/persistence"
	"github.com/reshla/blacklist-service/internal/repository"
	"github.com/reshla/blacklist-service/internal/service"
	apperrors "github.com/reshla/blacklist-service/pkg/util/errorutil"
)

func main() {
	app := cli.App{
		Name:  "blacklistgen",
		Usage: "publish the blacklist artifacts for one approved report",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "report-id",
				Usage:    "id of the approved report to publish",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Usage:   "root directory for per-subject profile artifacts",
				EnvVars: []string{"PUBLISHER_DATA_DIR"},
			},
			&cli.StringFlag{
				Name:    "ledger",
				Usage:   "path of the flat blacklist ledger file",
				EnvVars: []string{"PUBLISHER_LEDGER_PATH"},
			},
		},
		Action: runPublish,
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runPublish(cctx *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cctx.IsSet("data-dir") {
		cfg.Publisher.DataDir = cctx.String("data-dir")
	}
	if cctx.IsSet("ledger") {
		cfg.Publisher.LedgerPath = cctx.String("ledger")
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(cctx.Context, time.Minute)
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("failed to connect postgres: %w", err)
	}
	defer pg.Close()

	pool := pg.PoolHandle()
	reportRepo := repository.NewReportRepository(pool)
	publisher := service.NewPublisherService(
		repository.NewProfileRepository(pool), reportRepo, cfg.Publisher, nil, logger)

	reportID := cctx.String("report-id")
	report, err := reportRepo.GetByID(ctx, reportID)
	if err != nil {
		return fmt.Errorf("failed to load report %s: %w", reportID, err)
	}
	if report.Status != domain.ReportStatusApproved {
		return apperrors.NewInvalidState("only approved reports can be published", map[string]any{
			"id":     reportID,
			"status": report.Status,
		})
	}

	profile, err := publisher.Publish(ctx, report)
	if err != nil {
		return fmt.Errorf("publish failed: %w", err)
	}

	logger.Info("published blacklist entry",
		zap.String("subject_id", profile.SubjectID),
		zap.String("report_id", reportID))
	return nil
}
