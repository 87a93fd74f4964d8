package domain

import "time"

// Profile is the published blacklist artifact for one subject. It is created
// once when a report is approved and never mutated afterwards except through
// explicit re-review.
type Profile struct {
	SubjectID string    `json:"id"`
	Handle    string    `json:"username"`
	Reason    string    `json:"reason"`
	BannedAt  time.Time `json:"banned_at"`
	ReportURL string    `json:"report_url"`
	Proofs    []string  `json:"proofs"`
}
