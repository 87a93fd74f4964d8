package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/reshla/blacklist-service/internal/domain"
	"github.com/reshla/blacklist-service/internal/events"
	"github.com/reshla/blacklist-service/internal/lifecycle"
	"github.com/reshla/blacklist-service/internal/repository"
	apperrors "github.com/reshla/blacklist-service/pkg/util/errorutil"
)

// ReportService coordinates report submission, listing and voting.
type ReportService struct {
	reports    repository.ReportRepository
	comments   repository.CommentRepository
	actions    repository.ModeratorActionRepository
	rules      lifecycle.Rules
	dispatcher events.Dispatcher
	now        func() time.Time
}

// ReportDependencies bundles collaborators for the report service.
type ReportDependencies struct {
	ReportRepo  repository.ReportRepository
	CommentRepo repository.CommentRepository
	ActionRepo  repository.ModeratorActionRepository
	Rules       lifecycle.Rules
	Dispatcher  events.Dispatcher
}

// ReportCreateInput is the structured submission payload. Subject metadata is
// validated here instead of being pattern-matched out of free text later.
type ReportCreateInput struct {
	SubjectID     string
	SubjectHandle string
	Reason        string
	Proofs        []ProofInput
}

// ProofInput describes one evidence reference.
type ProofInput struct {
	URL      string
	FileName string
}

// ReportDetail aggregates a report with its proofs, comments, actions and the
// viewer's vote flag.
type ReportDetail struct {
	Report   domain.Report
	Comments []domain.ReportComment
	Actions  []domain.ModeratorAction
	HasVoted bool
}

// NewReportService constructs the service.
func NewReportService(deps ReportDependencies) *ReportService {
	rules := deps.Rules
	if rules.ThresholdVotes == 0 {
		rules = lifecycle.DefaultRules()
	}
	return &ReportService{
		reports:    deps.ReportRepo,
		comments:   deps.CommentRepo,
		actions:    deps.ActionRepo,
		rules:      rules,
		dispatcher: deps.Dispatcher,
		now:        time.Now,
	}
}

// Create opens a new report in the voting state.
func (s *ReportService) Create(ctx context.Context, submitterID string, input ReportCreateInput) (*domain.Report, error) {
	subjectID := strings.TrimSpace(input.SubjectID)
	handle := strings.TrimSpace(strings.TrimPrefix(input.SubjectHandle, "@"))
	reason := strings.TrimSpace(input.Reason)

	if subjectID == "" || handle == "" || reason == "" {
		return nil, apperrors.NewValidationError("subject_id, subject_handle and reason required", nil)
	}

	now := s.now()
	report := &domain.Report{
		SubjectID:      subjectID,
		SubjectHandle:  handle,
		Reason:         reason,
		Status:         domain.ReportStatusVoting,
		SubmittedBy:    submitterID,
		VotingDeadline: s.rules.Deadline(now),
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}

	if len(input.Proofs) > 0 {
		proofs := make([]domain.ProofReference, 0, len(input.Proofs))
		for _, p := range input.Proofs {
			if strings.TrimSpace(p.URL) == "" {
				continue
			}
			proofs = append(proofs, domain.ProofReference{URL: p.URL, FileName: p.FileName})
		}
		if err := s.reports.AddProofs(ctx, report.ID, proofs); err != nil {
			return nil, err
		}
		report.Proofs = proofs
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventReportCreated,
		ReportID: report.ID,
		ActorID:  submitterID,
		Payload: events.ReportCreatedPayload{
			SubjectID:      report.SubjectID,
			SubjectHandle:  report.SubjectHandle,
			Reason:         report.Reason,
			VotingDeadline: report.VotingDeadline,
		},
	})
	return report, nil
}

// List returns reports filtered by status ("all" lists everything).
func (s *ReportService) List(ctx context.Context, status string, limit, offset int) ([]domain.Report, error) {
	filter := repository.ReportFilter{Limit: limit, Offset: offset}
	if status != "" && status != "all" {
		st := domain.ReportStatus(status)
		switch st {
		case domain.ReportStatusVoting, domain.ReportStatusModeration, domain.ReportStatusApproved, domain.ReportStatusRejected:
			filter.Status = &st
		default:
			return nil, apperrors.NewValidationError("unknown status filter", map[string]any{"status": status})
		}
	}
	return s.reports.List(ctx, filter)
}

// ListBySubmitter returns the caller's own reports.
func (s *ReportService) ListBySubmitter(ctx context.Context, submitterID string, limit, offset int) ([]domain.Report, error) {
	return s.reports.List(ctx, repository.ReportFilter{
		SubmittedBy: &submitterID,
		Limit:       limit,
		Offset:      offset,
	})
}

// Get returns a report with its proofs, comments, moderator actions and the
// viewer's vote flag.
func (s *ReportService) Get(ctx context.Context, reportID, viewerID string) (*ReportDetail, error) {
	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	proofs, err := s.reports.ListProofs(ctx, reportID)
	if err != nil {
		return nil, err
	}
	report.Proofs = proofs

	comments, err := s.comments.ListByReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	actions, err := s.actions.ListByReport(ctx, reportID)
	if err != nil {
		return nil, err
	}

	detail := &ReportDetail{Report: *report, Comments: comments, Actions: actions}
	if viewerID != "" {
		voted, err := s.reports.HasVoted(ctx, reportID, viewerID)
		if err != nil {
			return nil, err
		}
		detail.HasVoted = voted
	}
	return detail, nil
}

// Vote records one affirmative vote and returns the updated count.
func (s *ReportService) Vote(ctx context.Context, reportID, voterID string) (int, error) {
	count, err := s.reports.RecordVote(ctx, reportID, voterID)
	if err != nil {
		return 0, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventVoteRecorded,
		ReportID: reportID,
		ActorID:  voterID,
		Payload:  events.VoteRecordedPayload{VoteCount: count},
	})
	return count, nil
}

// AddComment appends a public comment to a report.
func (s *ReportService) AddComment(ctx context.Context, reportID, authorID, body string) (*domain.ReportComment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("comment body required", nil)
	}
	if _, err := s.reports.GetByID(ctx, reportID); err != nil {
		return nil, err
	}
	comment := &domain.ReportComment{ReportID: reportID, Body: body}
	if authorID != "" {
		comment.AuthorID = &authorID
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Resubmit puts a report back into a fresh voting round. Only the original
// submitter may resubmit; previously recorded votes are discarded.
func (s *ReportService) Resubmit(ctx context.Context, reportID, callerID, newReason string) (*domain.Report, error) {
	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.SubmittedBy != callerID {
		return nil, apperrors.NewForbidden("only the submitter may resubmit a report")
	}
	if report.Status == domain.ReportStatusVoting {
		return nil, apperrors.NewInvalidState("report is already in a voting round", map[string]any{
			"id": reportID,
		})
	}

	reason := report.Reason
	if trimmed := strings.TrimSpace(newReason); trimmed != "" {
		reason = trimmed
	}
	deadline := s.rules.Deadline(s.now())
	if err := s.reports.Resubmit(ctx, reportID, reason, deadline); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventReportStatusChanged,
		ReportID: reportID,
		ActorID:  callerID,
		Payload: events.ReportStatusChangedPayload{
			OldStatus: report.Status,
			NewStatus: domain.ReportStatusVoting,
			Reason:    "resubmitted",
		},
	})
	return s.reports.GetByID(ctx, reportID)
}

func (s *ReportService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
