package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/reshla/blacklist-service/internal/domain"
	"github.com/reshla/blacklist-service/internal/repository"
	apperrors "github.com/reshla/blacklist-service/pkg/util/errorutil"
)

// fakeReportRepo mimics the Postgres-backed report repository, including the
// optimistic status precondition and the one-vote-per-user constraint.
type fakeReportRepo struct {
	mu        sync.Mutex
	reports   map[string]*domain.Report
	votes     map[string]map[string]bool
	proofs    map[string][]domain.ProofReference
	seq       int
	listErr   error
	updateErr map[string]error
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{
		reports:   make(map[string]*domain.Report),
		votes:     make(map[string]map[string]bool),
		proofs:    make(map[string][]domain.ProofReference),
		updateErr: make(map[string]error),
	}
}

func (f *fakeReportRepo) add(report *domain.Report) *domain.Report {
	f.mu.Lock()
	defer f.mu.Unlock()
	if report.ID == "" {
		f.seq++
		report.ID = "report-" + strconv.Itoa(f.seq)
	}
	f.reports[report.ID] = report
	return report
}

func (f *fakeReportRepo) Create(_ context.Context, report *domain.Report) error {
	now := time.Now()
	report.CreatedAt = now
	report.UpdatedAt = now
	f.add(report)
	return nil
}

func (f *fakeReportRepo) GetByID(_ context.Context, id string) (*domain.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	report, ok := f.reports[id]
	if !ok {
		return nil, apperrors.NewNotFound("report", map[string]any{"id": id})
	}
	clone := *report
	return &clone, nil
}

func (f *fakeReportRepo) List(_ context.Context, filter repository.ReportFilter) ([]domain.Report, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Report
	for _, report := range f.reports {
		if filter.Status != nil && report.Status != *filter.Status {
			continue
		}
		if filter.SubmittedBy != nil && report.SubmittedBy != *filter.SubmittedBy {
			continue
		}
		result = append(result, *report)
	}
	return result, nil
}

func (f *fakeReportRepo) UpdateStatus(_ context.Context, id string, next domain.ReportStatus, lowPriority bool, expected domain.ReportStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.updateErr[id]; ok {
		return err
	}
	report, ok := f.reports[id]
	if !ok {
		return apperrors.NewNotFound("report", map[string]any{"id": id})
	}
	if report.Status != expected {
		return apperrors.NewConflict("report status changed concurrently", nil)
	}
	report.Status = next
	report.LowPriority = lowPriority
	report.UpdatedAt = time.Now()
	return nil
}

func (f *fakeReportRepo) RecordVote(_ context.Context, reportID, voterID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	report, ok := f.reports[reportID]
	if !ok {
		return 0, apperrors.NewNotFound("report", map[string]any{"id": reportID})
	}
	if report.Status != domain.ReportStatusVoting {
		return 0, apperrors.NewInvalidState("report is not accepting votes", nil)
	}
	if f.votes[reportID] == nil {
		f.votes[reportID] = make(map[string]bool)
	}
	if f.votes[reportID][voterID] {
		return 0, apperrors.NewAlreadyVoted(reportID)
	}
	f.votes[reportID][voterID] = true
	report.VoteCount++
	return report.VoteCount, nil
}

func (f *fakeReportRepo) HasVoted(_ context.Context, reportID, voterID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.votes[reportID][voterID], nil
}

func (f *fakeReportRepo) Resubmit(_ context.Context, id string, reason string, deadline time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	report, ok := f.reports[id]
	if !ok {
		return apperrors.NewNotFound("report", map[string]any{"id": id})
	}
	report.Status = domain.ReportStatusVoting
	report.LowPriority = false
	report.VoteCount = 0
	report.Reason = reason
	report.VotingDeadline = deadline
	delete(f.votes, id)
	return nil
}

func (f *fakeReportRepo) AddProofs(_ context.Context, reportID string, proofs []domain.ProofReference) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.proofs[reportID] = append(f.proofs[reportID], proofs...)
	return nil
}

func (f *fakeReportRepo) ListProofs(_ context.Context, reportID string) ([]domain.ProofReference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.proofs[reportID], nil
}

type fakeCommentRepo struct {
	mu       sync.Mutex
	comments []domain.ReportComment
}

func (f *fakeCommentRepo) Create(_ context.Context, comment *domain.ReportComment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	comment.ID = "comment-" + strconv.Itoa(len(f.comments)+1)
	comment.CreatedAt = time.Now()
	f.comments = append(f.comments, *comment)
	return nil
}

func (f *fakeCommentRepo) ListByReport(_ context.Context, reportID string) ([]domain.ReportComment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.ReportComment
	for _, comment := range f.comments {
		if comment.ReportID == reportID {
			result = append(result, comment)
		}
	}
	return result, nil
}

func (f *fakeCommentRepo) forReport(reportID string) []domain.ReportComment {
	result, _ := f.ListByReport(context.Background(), reportID)
	return result
}

type fakeActionRepo struct {
	mu      sync.Mutex
	actions []domain.ModeratorAction
}

func (f *fakeActionRepo) Create(_ context.Context, action *domain.ModeratorAction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	action.ID = "action-" + strconv.Itoa(len(f.actions)+1)
	action.CreatedAt = time.Now()
	f.actions = append(f.actions, *action)
	return nil
}

func (f *fakeActionRepo) ListByReport(_ context.Context, reportID string) ([]domain.ModeratorAction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.ModeratorAction
	for _, action := range f.actions {
		if action.ReportID == reportID {
			result = append(result, action)
		}
	}
	return result, nil
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*domain.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]*domain.Profile)}
}

func (f *fakeProfileRepo) Create(_ context.Context, profile *domain.Profile) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.profiles[profile.SubjectID]; ok {
		return false, nil
	}
	clone := *profile
	f.profiles[profile.SubjectID] = &clone
	return true, nil
}

func (f *fakeProfileRepo) Get(_ context.Context, subjectID string) (*domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	profile, ok := f.profiles[subjectID]
	if !ok {
		return nil, apperrors.NewNotFound("profile", nil)
	}
	clone := *profile
	return &clone, nil
}

func (f *fakeProfileRepo) List(_ context.Context, _, _ int) ([]domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Profile
	for _, profile := range f.profiles {
		result = append(result, *profile)
	}
	return result, nil
}

type fakeRolesRepo struct {
	mu    sync.Mutex
	roles domain.Roles
	audit []domain.RoleAuditEntry
}

func (f *fakeRolesRepo) Get(_ context.Context) (*domain.Roles, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := f.roles
	return &clone, nil
}

func (f *fakeRolesRepo) Update(_ context.Context, roles *domain.Roles, expectedVersion int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.roles.Version != expectedVersion {
		return apperrors.NewConflict("role document changed concurrently", nil)
	}
	roles.Version = expectedVersion + 1
	roles.UpdatedAt = time.Now()
	f.roles = *roles
	return nil
}

func (f *fakeRolesRepo) AppendAudit(_ context.Context, entry *domain.RoleAuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry.ID = "audit-" + strconv.Itoa(len(f.audit)+1)
	entry.CreatedAt = time.Now()
	f.audit = append(f.audit, *entry)
	return nil
}

type fakeRoleSet struct {
	moderators map[string]bool
}

func (f *fakeRoleSet) IsModerator(_ context.Context, username string) (bool, error) {
	return f.moderators[username], nil
}

type fakePublisher struct {
	mu       sync.Mutex
	calls    int
	lastID   string
	failWith error
}

func (f *fakePublisher) Publish(_ context.Context, report *domain.Report) (*domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastID = report.ID
	if f.failWith != nil {
		return nil, f.failWith
	}
	return &domain.Profile{SubjectID: report.SubjectID}, nil
}
