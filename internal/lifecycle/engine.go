// Package lifecycle holds the report status state machine. It is deliberately
// free of persistence concerns: callers feed it a report snapshot and commit
// whatever transition it decides.
package lifecycle

import (
	"time"

	"github.com/reshla/blacklist-service/internal/domain"
)

// DefaultThresholdVotes is the affirmative vote count a report must exceed to
// enter the moderation queue before its deadline.
const DefaultThresholdVotes = 30

// DefaultWindow is the length of the voting window from report creation.
const DefaultWindow = 24 * time.Hour

// Rules parameterizes the state machine.
type Rules struct {
	ThresholdVotes int
	Window         time.Duration
}

// DefaultRules returns the production voting policy.
func DefaultRules() Rules {
	return Rules{ThresholdVotes: DefaultThresholdVotes, Window: DefaultWindow}
}

// Reason explains why a decision was taken.
type Reason string

const (
	ReasonNone              Reason = ""
	ReasonThresholdReached  Reason = "threshold_reached"
	ReasonDeadlineElapsed   Reason = "deadline_elapsed"
	ReasonModeratorApproved Reason = "moderator_approved"
	ReasonModeratorRejected Reason = "moderator_rejected"
)

// Decision is the outcome of evaluating a report against the rules.
type Decision struct {
	Transition  bool
	Next        domain.ReportStatus
	LowPriority bool
	Reason      Reason
}

// Evaluate applies the automated transition rule to a report snapshot. Only
// reports in the voting state ever transition here; everything else is a
// no-op, which is what makes poller re-runs safe.
func (r Rules) Evaluate(report *domain.Report, now time.Time) Decision {
	if report.Status != domain.ReportStatusVoting {
		return Decision{}
	}
	if report.VoteCount > r.ThresholdVotes {
		return Decision{
			Transition: true,
			Next:       domain.ReportStatusModeration,
			Reason:     ReasonThresholdReached,
		}
	}
	if !now.Before(report.VotingDeadline) {
		// Below threshold at deadline: deliver to moderators for manual
		// disposition rather than silently dropping the report.
		return Decision{
			Transition:  true,
			Next:        domain.ReportStatusModeration,
			LowPriority: true,
			Reason:      ReasonDeadlineElapsed,
		}
	}
	return Decision{}
}

// Decide applies a moderator action to a report in the moderation state.
// It does not validate the comment or the caller; that is the moderation
// service's job.
func Decide(current domain.ReportStatus, action domain.ModeratorActionType) (Decision, bool) {
	if current != domain.ReportStatusModeration {
		return Decision{}, false
	}
	switch action {
	case domain.ActionApprove:
		return Decision{Transition: true, Next: domain.ReportStatusApproved, Reason: ReasonModeratorApproved}, true
	case domain.ActionReject:
		return Decision{Transition: true, Next: domain.ReportStatusRejected, Reason: ReasonModeratorRejected}, true
	default:
		return Decision{}, false
	}
}

// Deadline computes the voting deadline for a report created at the given time.
func (r Rules) Deadline(createdAt time.Time) time.Time {
	window := r.Window
	if window <= 0 {
		window = DefaultWindow
	}
	return createdAt.Add(window)
}
