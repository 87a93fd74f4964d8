package dto

import (
	"time"

	"github.com/reshla/blacklist-service/internal/domain"
)

// CreateReportRequest payload.
type CreateReportRequest struct {
	SubjectID     string         `json:"subject_id"`
	SubjectHandle string         `json:"subject_handle"`
	Reason        string         `json:"reason"`
	Proofs        []ProofRequest `json:"proofs"`
}

// ProofRequest describes one evidence reference.
type ProofRequest struct {
	URL      string `json:"url"`
	FileName string `json:"file_name,omitempty"`
}

// ReportSummary response.
type ReportSummary struct {
	ID             string              `json:"id"`
	SubjectID      string              `json:"subject_id"`
	SubjectHandle  string              `json:"subject_handle"`
	Reason         string              `json:"reason"`
	Status         domain.ReportStatus `json:"status"`
	LowPriority    bool                `json:"low_priority"`
	VoteCount      int                 `json:"vote_count"`
	SubmittedBy    string              `json:"submitted_by"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	VotingDeadline time.Time           `json:"voting_deadline"`
}

// ReportDetailResponse provides full report info.
type ReportDetailResponse struct {
	ReportSummary
	Proofs   []ProofResponse           `json:"proofs"`
	Comments []CommentResponse         `json:"comments"`
	Actions  []ModeratorActionResponse `json:"actions"`
	HasVoted bool                      `json:"has_voted"`
}

// ProofResponse metadata.
type ProofResponse struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	FileName string `json:"file_name,omitempty"`
}

// CommentResponse represents one feed entry.
type CommentResponse struct {
	ID        string    `json:"id"`
	AuthorID  *string   `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// ModeratorActionResponse represents one audit trail entry.
type ModeratorActionResponse struct {
	ID          string                     `json:"id"`
	ModeratorID string                     `json:"moderator_id"`
	Action      domain.ModeratorActionType `json:"action"`
	Comment     string                     `json:"comment"`
	CreatedAt   time.Time                  `json:"created_at"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Body string `json:"body"`
}

// ResubmitReportRequest payload. Reason is optional; blank keeps the original.
type ResubmitReportRequest struct {
	Reason string `json:"reason"`
}

// ModerationDecisionRequest payload for approve/reject.
type ModerationDecisionRequest struct {
	Comment string `json:"comment"`
}

// VoteResponse returns the updated tally.
type VoteResponse struct {
	ReportID  string `json:"report_id"`
	VoteCount int    `json:"vote_count"`
}

// ProfileResponse is one published blacklist entry.
type ProfileResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Reason    string    `json:"reason"`
	BannedAt  time.Time `json:"banned_at"`
	ReportURL string    `json:"report_url"`
	Proofs    []string  `json:"proofs"`
}
