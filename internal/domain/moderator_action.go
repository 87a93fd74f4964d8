package domain

import "time"

// ModeratorActionType captures the manual disposition of a report.
type ModeratorActionType string

const (
	ActionApprove ModeratorActionType = "approve"
	ActionReject  ModeratorActionType = "reject"
)

// ModeratorAction is an immutable audit trail entry owned by a report.
type ModeratorAction struct {
	ID          string
	ReportID    string
	ModeratorID string
	Action      ModeratorActionType
	Comment     string
	CreatedAt   time.Time
}
