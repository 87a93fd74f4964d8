package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reshla/blacklist-service/internal/domain"
)

func votingReport(votes int, createdAt time.Time, rules Rules) *domain.Report {
	return &domain.Report{
		ID:             "r-1",
		SubjectID:      "123456789",
		Status:         domain.ReportStatusVoting,
		VoteCount:      votes,
		CreatedAt:      createdAt,
		VotingDeadline: rules.Deadline(createdAt),
	}
}

func TestEvaluateThresholdReached(t *testing.T) {
	rules := DefaultRules()
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// 31 votes two hours in, well before the deadline.
	report := votingReport(31, t0, rules)
	decision := rules.Evaluate(report, t0.Add(2*time.Hour))

	require.True(t, decision.Transition)
	assert.Equal(t, domain.ReportStatusModeration, decision.Next)
	assert.False(t, decision.LowPriority)
	assert.Equal(t, ReasonThresholdReached, decision.Reason)
}

func TestEvaluateThresholdIsStrictlyGreater(t *testing.T) {
	rules := DefaultRules()
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	report := votingReport(30, t0, rules)
	decision := rules.Evaluate(report, t0.Add(2*time.Hour))

	assert.False(t, decision.Transition, "exactly 30 votes must not promote")
}

func TestEvaluateDeadlineElapsedBelowThreshold(t *testing.T) {
	rules := DefaultRules()
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	report := votingReport(5, t0, rules)
	decision := rules.Evaluate(report, t0.Add(25*time.Hour))

	require.True(t, decision.Transition)
	assert.Equal(t, domain.ReportStatusModeration, decision.Next)
	assert.True(t, decision.LowPriority)
	assert.Equal(t, ReasonDeadlineElapsed, decision.Reason)
}

func TestEvaluateDeadlineBoundaryInclusive(t *testing.T) {
	rules := DefaultRules()
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	report := votingReport(0, t0, rules)
	decision := rules.Evaluate(report, report.VotingDeadline)

	assert.True(t, decision.Transition, "deadline instant counts as elapsed")
}

func TestEvaluateNoTransitionWhileWindowOpen(t *testing.T) {
	rules := DefaultRules()
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	report := votingReport(5, t0, rules)
	decision := rules.Evaluate(report, t0.Add(2*time.Hour))

	assert.False(t, decision.Transition)
	assert.Equal(t, ReasonNone, decision.Reason)
}

func TestEvaluateIgnoresNonVotingStatuses(t *testing.T) {
	rules := DefaultRules()
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for _, status := range []domain.ReportStatus{
		domain.ReportStatusModeration,
		domain.ReportStatusApproved,
		domain.ReportStatusRejected,
	} {
		report := votingReport(100, t0, rules)
		report.Status = status
		decision := rules.Evaluate(report, t0.Add(48*time.Hour))
		assert.False(t, decision.Transition, "status %s must never auto-transition", status)
	}
}

func TestEvaluateNeverSkipsModeration(t *testing.T) {
	rules := DefaultRules()
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Regardless of vote count or age, the engine only ever targets the
	// moderation queue; approved/rejected require a moderator.
	for _, votes := range []int{0, 5, 30, 31, 500} {
		for _, age := range []time.Duration{time.Hour, 23 * time.Hour, 25 * time.Hour, 30 * 24 * time.Hour} {
			report := votingReport(votes, t0, rules)
			decision := rules.Evaluate(report, t0.Add(age))
			if decision.Transition {
				assert.Equal(t, domain.ReportStatusModeration, decision.Next)
			}
		}
	}
}

func TestDecideModeratorActions(t *testing.T) {
	decision, ok := Decide(domain.ReportStatusModeration, domain.ActionApprove)
	require.True(t, ok)
	assert.Equal(t, domain.ReportStatusApproved, decision.Next)

	decision, ok = Decide(domain.ReportStatusModeration, domain.ActionReject)
	require.True(t, ok)
	assert.Equal(t, domain.ReportStatusRejected, decision.Next)
}

func TestDecideRejectsWrongState(t *testing.T) {
	for _, status := range []domain.ReportStatus{
		domain.ReportStatusVoting,
		domain.ReportStatusApproved,
		domain.ReportStatusRejected,
	} {
		_, ok := Decide(status, domain.ActionApprove)
		assert.False(t, ok, "approve must be rejected in status %s", status)
	}
}

func TestDeadlineDefaultsWindow(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	rules := Rules{ThresholdVotes: 10}
	assert.Equal(t, t0.Add(24*time.Hour), rules.Deadline(t0))

	rules = Rules{ThresholdVotes: 10, Window: time.Hour}
	assert.Equal(t, t0.Add(time.Hour), rules.Deadline(t0))
}
