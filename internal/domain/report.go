package domain

import "time"

// ReportStatus enumerates lifecycle states for reports.
type ReportStatus string

const (
	ReportStatusVoting     ReportStatus = "voting"
	ReportStatusModeration ReportStatus = "moderation"
	ReportStatusApproved   ReportStatus = "approved"
	ReportStatusRejected   ReportStatus = "rejected"
)

// Terminal reports whether no further status change is permitted.
func (s ReportStatus) Terminal() bool {
	return s == ReportStatusApproved || s == ReportStatusRejected
}

// Report is the aggregate for a pending accusation against a subject.
type Report struct {
	ID            string
	SubjectID     string
	SubjectHandle string
	Reason        string
	Status        ReportStatus
	// LowPriority marks reports that entered the moderation queue by
	// deadline expiry rather than by reaching the vote threshold.
	LowPriority    bool
	VoteCount      int
	SubmittedBy    string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	VotingDeadline time.Time
	Proofs         []ProofReference
}

// ProofReference points at an evidence image hosted by the evidence store.
type ProofReference struct {
	ID       string
	ReportID string
	URL      string
	FileName string
}

// ReportComment is one entry in a report's public commentary feed.
type ReportComment struct {
	ID        string
	ReportID  string
	AuthorID  *string
	Body      string
	CreatedAt time.Time
}
