package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/reshla/blacklist-service/internal/domain"
	apperrors "github.com/reshla/blacklist-service/pkg/util/errorutil"
)

type moderationFixture struct {
	svc       *ModerationService
	reports   *fakeReportRepo
	actions   *fakeActionRepo
	comments  *fakeCommentRepo
	publisher *fakePublisher
}

func newModerationFixture() *moderationFixture {
	reports := newFakeReportRepo()
	actions := &fakeActionRepo{}
	comments := &fakeCommentRepo{}
	publisher := &fakePublisher{}
	svc := NewModerationService(ModerationDependencies{
		ReportRepo:  reports,
		ActionRepo:  actions,
		CommentRepo: comments,
		Roles:       &fakeRoleSet{moderators: map[string]bool{"mod": true}},
		Publisher:   publisher,
		Logger:      zap.NewNop(),
	})
	return &moderationFixture{svc: svc, reports: reports, actions: actions, comments: comments, publisher: publisher}
}

func (f *moderationFixture) seedModerationReport(id string) *domain.Report {
	return f.reports.add(&domain.Report{
		ID:            id,
		SubjectID:     "sub-" + id,
		SubjectHandle: "handle",
		Reason:        "scam",
		Status:        domain.ReportStatusModeration,
		VoteCount:     35,
		CreatedAt:     time.Now().Add(-30 * time.Hour),
	})
}

func moderator() *domain.User {
	return &domain.User{ID: "user-mod", Username: "mod"}
}

func TestApproveRequiresComment(t *testing.T) {
	f := newModerationFixture()
	f.seedModerationReport("r1")

	_, err := f.svc.Approve(context.Background(), moderator(), "r1", "   ")
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	report, _ := f.reports.GetByID(context.Background(), "r1")
	assert.Equal(t, domain.ReportStatusModeration, report.Status, "no state change on validation failure")
	assert.Empty(t, f.actions.actions)
	assert.Zero(t, f.publisher.calls)
}

func TestRejectRequiresComment(t *testing.T) {
	f := newModerationFixture()
	f.seedModerationReport("r1")

	_, err := f.svc.Reject(context.Background(), moderator(), "r1", "")
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestApproveRequiresModeratorRole(t *testing.T) {
	f := newModerationFixture()
	f.seedModerationReport("r1")

	outsider := &domain.User{ID: "user-2", Username: "guest"}
	_, err := f.svc.Approve(context.Background(), outsider, "r1", "looks legit")
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	report, _ := f.reports.GetByID(context.Background(), "r1")
	assert.Equal(t, domain.ReportStatusModeration, report.Status)
}

func TestApproveOutsideModerationQueueFails(t *testing.T) {
	f := newModerationFixture()
	for _, status := range []domain.ReportStatus{
		domain.ReportStatusVoting,
		domain.ReportStatusApproved,
		domain.ReportStatusRejected,
	} {
		report := f.seedModerationReport("r-" + string(status))
		report.Status = status

		_, err := f.svc.Approve(context.Background(), moderator(), report.ID, "verified")
		assert.True(t, apperrors.IsCode(err, "INVALID_STATE"), "status %s", status)
	}
	assert.Empty(t, f.actions.actions)
	assert.Zero(t, f.publisher.calls)
}

func TestApproveHappyPath(t *testing.T) {
	f := newModerationFixture()
	f.seedModerationReport("r1")

	report, err := f.svc.Approve(context.Background(), moderator(), "r1", "verified via screenshot")
	require.NoError(t, err)
	assert.Equal(t, domain.ReportStatusApproved, report.Status)

	stored, _ := f.reports.GetByID(context.Background(), "r1")
	assert.Equal(t, domain.ReportStatusApproved, stored.Status)

	require.Len(t, f.actions.actions, 1)
	assert.Equal(t, domain.ActionApprove, f.actions.actions[0].Action)
	assert.Equal(t, "verified via screenshot", f.actions.actions[0].Comment)
	assert.Equal(t, "user-mod", f.actions.actions[0].ModeratorID)

	assert.Equal(t, 1, f.publisher.calls)
	assert.Equal(t, "r1", f.publisher.lastID)

	comments := f.comments.forReport("r1")
	require.Len(t, comments, 1)
	assert.Contains(t, comments[0].Body, "approved")
}

func TestRejectHappyPath(t *testing.T) {
	f := newModerationFixture()
	f.seedModerationReport("r1")

	report, err := f.svc.Reject(context.Background(), moderator(), "r1", "insufficient evidence")
	require.NoError(t, err)
	assert.Equal(t, domain.ReportStatusRejected, report.Status)

	require.Len(t, f.actions.actions, 1)
	assert.Equal(t, domain.ActionReject, f.actions.actions[0].Action)
	assert.Zero(t, f.publisher.calls, "reject never publishes")

	comments := f.comments.forReport("r1")
	require.Len(t, comments, 1)
	assert.Contains(t, comments[0].Body, "rejected")
}

func TestApprovePublishFailurePropagates(t *testing.T) {
	f := newModerationFixture()
	f.seedModerationReport("r1")
	f.publisher.failWith = apperrors.NewCollaboratorUnavailable("artifact store", assert.AnError)

	_, err := f.svc.Approve(context.Background(), moderator(), "r1", "verified")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "COLLABORATOR_UNAVAILABLE"))
	assert.Equal(t, 1, f.publisher.calls)

	report, _ := f.reports.GetByID(context.Background(), "r1")
	assert.Equal(t, domain.ReportStatusModeration, report.Status,
		"failed publish must not commit the transition")
	assert.Empty(t, f.actions.actions)
}

func TestApproveRetryAfterPublishFailure(t *testing.T) {
	f := newModerationFixture()
	f.seedModerationReport("r1")
	f.publisher.failWith = apperrors.NewCollaboratorUnavailable("artifact store", assert.AnError)

	_, err := f.svc.Approve(context.Background(), moderator(), "r1", "verified")
	require.Error(t, err)

	// Artifact store recovers; the same call succeeds end to end.
	f.publisher.failWith = nil
	report, err := f.svc.Approve(context.Background(), moderator(), "r1", "verified")
	require.NoError(t, err)
	assert.Equal(t, domain.ReportStatusApproved, report.Status)
	assert.Equal(t, 2, f.publisher.calls)

	stored, _ := f.reports.GetByID(context.Background(), "r1")
	assert.Equal(t, domain.ReportStatusApproved, stored.Status)
	require.Len(t, f.actions.actions, 1)
}

func TestRejectConflictLeavesNoAction(t *testing.T) {
	f := newModerationFixture()
	f.seedModerationReport("r1")
	f.reports.updateErr["r1"] = apperrors.NewConflict("report status changed concurrently", nil)

	_, err := f.svc.Reject(context.Background(), moderator(), "r1", "insufficient evidence")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))

	assert.Empty(t, f.actions.actions, "a lost race must not leave an audit row")
	assert.Empty(t, f.comments.forReport("r1"))
}

func TestApproveUnknownReport(t *testing.T) {
	f := newModerationFixture()

	_, err := f.svc.Approve(context.Background(), moderator(), "missing", "verified")
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}
