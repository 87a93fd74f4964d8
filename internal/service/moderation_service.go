package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/reshla/blacklist-service/internal/domain"
	"github.com/reshla/blacklist-service/internal/events"
	"github.com/reshla/blacklist-service/internal/lifecycle"
	"github.com/reshla/blacklist-service/internal/repository"
	apperrors "github.com/reshla/blacklist-service/pkg/util/errorutil"
)

// ModerationService applies manual approve/reject decisions to reports in the
// moderation queue.
type ModerationService struct {
	reports    repository.ReportRepository
	actions    repository.ModeratorActionRepository
	comments   repository.CommentRepository
	roles      RoleSet
	publisher  Publisher
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// RoleSet answers whether a username may moderate.
type RoleSet interface {
	IsModerator(ctx context.Context, username string) (bool, error)
}

// ModerationDependencies bundles collaborators for the moderation service.
type ModerationDependencies struct {
	ReportRepo  repository.ReportRepository
	ActionRepo  repository.ModeratorActionRepository
	CommentRepo repository.CommentRepository
	Roles       RoleSet
	Publisher   Publisher
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewModerationService constructs the service.
func NewModerationService(deps ModerationDependencies) *ModerationService {
	return &ModerationService{
		reports:    deps.ReportRepo,
		actions:    deps.ActionRepo,
		comments:   deps.CommentRepo,
		roles:      deps.Roles,
		publisher:  deps.Publisher,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// Approve publishes the blacklist entry and then moves a moderation-queue
// report to approved. Publishing happens before the status commit; if it
// fails the report stays in moderation and the call can be retried from
// scratch.
func (s *ModerationService) Approve(ctx context.Context, moderator *domain.User, reportID, comment string) (*domain.Report, error) {
	return s.decide(ctx, moderator, reportID, domain.ActionApprove, comment)
}

// Reject moves a moderation-queue report to rejected.
func (s *ModerationService) Reject(ctx context.Context, moderator *domain.User, reportID, comment string) (*domain.Report, error) {
	return s.decide(ctx, moderator, reportID, domain.ActionReject, comment)
}

func (s *ModerationService) decide(ctx context.Context, moderator *domain.User, reportID string, action domain.ModeratorActionType, comment string) (*domain.Report, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, apperrors.NewValidationError("moderator comment required", nil)
	}
	if moderator == nil {
		return nil, apperrors.NewUnauthorized("moderator required")
	}

	allowed, err := s.roles.IsModerator(ctx, moderator.Username)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.NewForbidden("moderator role required")
	}

	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}

	decision, ok := lifecycle.Decide(report.Status, action)
	if !ok {
		return nil, apperrors.NewInvalidState("report is not in the moderation queue", map[string]any{
			"id":     reportID,
			"status": report.Status,
		})
	}

	// Publish before committing the transition: a publish failure leaves the
	// report in moderation, so the same Approve call can simply be retried.
	// Publish is idempotent by subject, so a crash between the two steps is
	// also re-executable.
	if action == domain.ActionApprove {
		if _, err := s.publisher.Publish(ctx, report); err != nil {
			s.logger.Error("publish before approve failed",
				zap.String("report_id", reportID), zap.Error(err))
			return nil, err
		}
	}

	if err := s.reports.UpdateStatus(ctx, reportID, decision.Next, false, domain.ReportStatusModeration); err != nil {
		return nil, err
	}
	report.Status = decision.Next
	report.LowPriority = false

	// The audit row is appended only once the transition is durable, so a
	// moderator who loses the race never leaves an action for a decision
	// that was not applied.
	entry := &domain.ModeratorAction{
		ReportID:    reportID,
		ModeratorID: moderator.ID,
		Action:      action,
		Comment:     comment,
	}
	if err := s.actions.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to append moderator action",
			zap.String("report_id", reportID), zap.Error(err))
	}

	body := moderationCommentBody(action, comment)
	if err := s.appendComment(ctx, reportID, moderator.ID, body); err != nil {
		s.logger.Warn("failed to append moderation comment",
			zap.String("report_id", reportID), zap.Error(err))
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventReportStatusChanged,
		ReportID: reportID,
		ActorID:  moderator.ID,
		Payload: events.ReportStatusChangedPayload{
			OldStatus: domain.ReportStatusModeration,
			NewStatus: decision.Next,
			Reason:    string(decision.Reason),
			Comment:   comment,
		},
	})
	return report, nil
}

func (s *ModerationService) appendComment(ctx context.Context, reportID, authorID, body string) error {
	comment := &domain.ReportComment{ReportID: reportID, AuthorID: &authorID, Body: body}
	return s.comments.Create(ctx, comment)
}

func (s *ModerationService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func moderationCommentBody(action domain.ModeratorActionType, comment string) string {
	switch action {
	case domain.ActionApprove:
		return fmt.Sprintf("Report approved. Moderator comment: %s", comment)
	default:
		return fmt.Sprintf("Report rejected. Moderator comment: %s", comment)
	}
}
