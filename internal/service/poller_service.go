package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/reshla/blacklist-service/internal/domain"
	"github.com/reshla/blacklist-service/internal/events"
	"github.com/reshla/blacklist-service/internal/lifecycle"
	"github.com/reshla/blacklist-service/internal/observability"
	"github.com/reshla/blacklist-service/internal/repository"
	apperrors "github.com/reshla/blacklist-service/pkg/util/errorutil"
)

// PollerService sweeps the voting queue and commits transitions decided by
// the lifecycle engine. It is invoked on an external schedule and must be
// safe to run concurrently with itself: every status write carries the
// expected current status, so a lost race is a skip, not a double-apply.
type PollerService struct {
	reports    repository.ReportRepository
	comments   repository.CommentRepository
	rules      lifecycle.Rules
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	now        func() time.Time
}

// PollerDependencies bundles collaborators for the poller.
type PollerDependencies struct {
	ReportRepo  repository.ReportRepository
	CommentRepo repository.CommentRepository
	Rules       lifecycle.Rules
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Metrics     *observability.Metrics
}

// SweepResult summarizes one poller run.
type SweepResult struct {
	Scanned  int
	Promoted int
	Expired  int
	Skipped  int
	Failed   int
}

// NewPollerService constructs the service.
func NewPollerService(deps PollerDependencies) *PollerService {
	rules := deps.Rules
	if rules.ThresholdVotes == 0 {
		rules = lifecycle.DefaultRules()
	}
	return &PollerService{
		reports:    deps.ReportRepo,
		comments:   deps.CommentRepo,
		rules:      rules,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
		now:        time.Now,
	}
}

// Run performs one sweep. A failure to list the voting queue aborts the run;
// a failure on an individual report is logged and the sweep continues.
func (s *PollerService) Run(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	voting := domain.ReportStatusVoting
	reports, err := s.reports.List(ctx, repository.ReportFilter{Status: &voting})
	if err != nil {
		s.logger.Error("failed to list voting reports", zap.Error(err))
		return result, err
	}
	result.Scanned = len(reports)
	s.logger.Info("sweeping voting queue", zap.Int("reports", len(reports)))

	now := s.now()
	for i := range reports {
		report := &reports[i]
		decision := s.rules.Evaluate(report, now)
		if !decision.Transition {
			continue
		}
		if err := s.apply(ctx, report, decision); err != nil {
			if apperrors.IsCode(err, "CONFLICT") {
				// Someone else transitioned it first; next run sees the
				// current state.
				result.Skipped++
				s.logger.Info("report transitioned concurrently; skipping",
					zap.String("report_id", report.ID))
				continue
			}
			result.Failed++
			s.logger.Error("failed to transition report",
				zap.String("report_id", report.ID), zap.Error(err))
			continue
		}
		switch decision.Reason {
		case lifecycle.ReasonThresholdReached:
			result.Promoted++
		case lifecycle.ReasonDeadlineElapsed:
			result.Expired++
		}
		s.metrics.RecordSweep(string(decision.Reason))
	}

	s.logger.Info("sweep complete",
		zap.Int("scanned", result.Scanned),
		zap.Int("promoted", result.Promoted),
		zap.Int("expired", result.Expired),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

func (s *PollerService) apply(ctx context.Context, report *domain.Report, decision lifecycle.Decision) error {
	if err := s.reports.UpdateStatus(ctx, report.ID, decision.Next, decision.LowPriority, domain.ReportStatusVoting); err != nil {
		return err
	}

	body := transitionCommentBody(decision)
	comment := &domain.ReportComment{ReportID: report.ID, Body: body}
	if err := s.comments.Create(ctx, comment); err != nil {
		s.logger.Warn("failed to append transition comment",
			zap.String("report_id", report.ID), zap.Error(err))
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventReportStatusChanged,
			ReportID:  report.ID,
			Timestamp: s.now(),
			Payload: events.ReportStatusChangedPayload{
				OldStatus:   domain.ReportStatusVoting,
				NewStatus:   decision.Next,
				LowPriority: decision.LowPriority,
				Reason:      string(decision.Reason),
			},
		})
	}
	return nil
}

func transitionCommentBody(decision lifecycle.Decision) string {
	if decision.Reason == lifecycle.ReasonThresholdReached {
		return "Vote threshold reached. This report has been moved to the moderation queue."
	}
	return "Voting window expired. This report awaits manual review by a moderator."
}
