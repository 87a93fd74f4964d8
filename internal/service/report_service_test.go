package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reshla/blacklist-service/internal/domain"
	apperrors "github.com/reshla/blacklist-service/pkg/util/errorutil"
)

func newTestReportService(reports *fakeReportRepo, now time.Time) *ReportService {
	svc := NewReportService(ReportDependencies{
		ReportRepo:  reports,
		CommentRepo: &fakeCommentRepo{},
		ActionRepo:  &fakeActionRepo{},
	})
	svc.now = func() time.Time { return now }
	return svc
}

func TestCreateOpensVotingRound(t *testing.T) {
	reports := newFakeReportRepo()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestReportService(reports, now)

	report, err := svc.Create(context.Background(), "user-1", ReportCreateInput{
		SubjectID:     " 123456789 ",
		SubjectHandle: "@scammer",
		Reason:        "fake_escrow",
		Proofs: []ProofInput{
			{URL: "https://imgur.com/a/proof1"},
			{URL: "   "},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ReportStatusVoting, report.Status)
	assert.Equal(t, "123456789", report.SubjectID)
	assert.Equal(t, "scammer", report.SubjectHandle, "leading @ is stripped")
	assert.Equal(t, "user-1", report.SubmittedBy)
	assert.Equal(t, now.Add(24*time.Hour), report.VotingDeadline)
	require.Len(t, report.Proofs, 1, "blank proof URLs are dropped")
}

func TestCreateRejectsMissingFields(t *testing.T) {
	svc := newTestReportService(newFakeReportRepo(), time.Now())

	cases := []ReportCreateInput{
		{SubjectHandle: "scammer", Reason: "fake_escrow"},
		{SubjectID: "1", Reason: "fake_escrow"},
		{SubjectID: "1", SubjectHandle: "scammer"},
		{SubjectID: "  ", SubjectHandle: "scammer", Reason: "fake_escrow"},
	}
	for _, input := range cases {
		_, err := svc.Create(context.Background(), "user-1", input)
		assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"), "%+v", input)
	}
}

func TestListRejectsUnknownStatus(t *testing.T) {
	svc := newTestReportService(newFakeReportRepo(), time.Now())

	_, err := svc.List(context.Background(), "pending", 10, 0)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestListFiltersByStatus(t *testing.T) {
	reports := newFakeReportRepo()
	svc := newTestReportService(reports, time.Now())

	reports.add(&domain.Report{ID: "r1", Status: domain.ReportStatusVoting})
	reports.add(&domain.Report{ID: "r2", Status: domain.ReportStatusModeration})
	reports.add(&domain.Report{ID: "r3", Status: domain.ReportStatusVoting})

	voting, err := svc.List(context.Background(), "voting", 10, 0)
	require.NoError(t, err)
	assert.Len(t, voting, 2)

	all, err := svc.List(context.Background(), "all", 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestVoteCountsOncePerUser(t *testing.T) {
	reports := newFakeReportRepo()
	svc := newTestReportService(reports, time.Now())
	reports.add(&domain.Report{ID: "r1", Status: domain.ReportStatusVoting})

	count, err := svc.Vote(context.Background(), "r1", "voter-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = svc.Vote(context.Background(), "r1", "voter-1")
	assert.True(t, apperrors.IsCode(err, "ALREADY_VOTED"))

	count, err = svc.Vote(context.Background(), "r1", "voter-2")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestVoteOutsideVotingState(t *testing.T) {
	reports := newFakeReportRepo()
	svc := newTestReportService(reports, time.Now())
	reports.add(&domain.Report{ID: "r1", Status: domain.ReportStatusModeration})

	_, err := svc.Vote(context.Background(), "r1", "voter-1")
	assert.True(t, apperrors.IsCode(err, "INVALID_STATE"))
}

func TestGetIncludesViewerVoteFlag(t *testing.T) {
	reports := newFakeReportRepo()
	svc := newTestReportService(reports, time.Now())
	reports.add(&domain.Report{ID: "r1", Status: domain.ReportStatusVoting})

	_, err := svc.Vote(context.Background(), "r1", "voter-1")
	require.NoError(t, err)

	detail, err := svc.Get(context.Background(), "r1", "voter-1")
	require.NoError(t, err)
	assert.True(t, detail.HasVoted)

	detail, err = svc.Get(context.Background(), "r1", "voter-2")
	require.NoError(t, err)
	assert.False(t, detail.HasVoted)
}

func TestAddCommentValidation(t *testing.T) {
	reports := newFakeReportRepo()
	svc := newTestReportService(reports, time.Now())
	reports.add(&domain.Report{ID: "r1", Status: domain.ReportStatusVoting})

	_, err := svc.AddComment(context.Background(), "r1", "user-1", "  ")
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	_, err = svc.AddComment(context.Background(), "missing", "user-1", "hello")
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))

	comment, err := svc.AddComment(context.Background(), "r1", "user-1", "hello")
	require.NoError(t, err)
	require.NotNil(t, comment.AuthorID)
	assert.Equal(t, "user-1", *comment.AuthorID)
}

func TestResubmitResetsVotingRound(t *testing.T) {
	reports := newFakeReportRepo()
	now := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	svc := newTestReportService(reports, now)

	reports.add(&domain.Report{
		ID:          "r1",
		Status:      domain.ReportStatusRejected,
		Reason:      "fake_escrow",
		SubmittedBy: "user-1",
		VoteCount:   12,
	})
	_, votedErr := reports.RecordVote(context.Background(), "r1", "voter-1")
	assert.True(t, apperrors.IsCode(votedErr, "INVALID_STATE"))

	report, err := svc.Resubmit(context.Background(), "r1", "user-1", "new evidence attached")
	require.NoError(t, err)
	assert.Equal(t, domain.ReportStatusVoting, report.Status)
	assert.Equal(t, 0, report.VoteCount)
	assert.Equal(t, "new evidence attached", report.Reason)
	assert.Equal(t, now.Add(24*time.Hour), report.VotingDeadline)
}

func TestResubmitKeepsReasonWhenBlank(t *testing.T) {
	reports := newFakeReportRepo()
	svc := newTestReportService(reports, time.Now())
	reports.add(&domain.Report{
		ID:          "r1",
		Status:      domain.ReportStatusRejected,
		Reason:      "fake_escrow",
		SubmittedBy: "user-1",
	})

	report, err := svc.Resubmit(context.Background(), "r1", "user-1", "   ")
	require.NoError(t, err)
	assert.Equal(t, "fake_escrow", report.Reason)
}

func TestResubmitSubmitterOnly(t *testing.T) {
	reports := newFakeReportRepo()
	svc := newTestReportService(reports, time.Now())
	reports.add(&domain.Report{ID: "r1", Status: domain.ReportStatusRejected, SubmittedBy: "user-1"})

	_, err := svc.Resubmit(context.Background(), "r1", "user-2", "")
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestResubmitWhileVotingFails(t *testing.T) {
	reports := newFakeReportRepo()
	svc := newTestReportService(reports, time.Now())
	reports.add(&domain.Report{ID: "r1", Status: domain.ReportStatusVoting, SubmittedBy: "user-1"})

	_, err := svc.Resubmit(context.Background(), "r1", "user-1", "")
	assert.True(t, apperrors.IsCode(err, "INVALID_STATE"))
}
