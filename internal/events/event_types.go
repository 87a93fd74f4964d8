package events

import (
	"time"

	"github.com/reshla/blacklist-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventReportCreated       EventType = "report_created"
	EventReportStatusChanged EventType = "report_status_changed"
	EventVoteRecorded        EventType = "vote_recorded"
	EventReportPublished     EventType = "report_published"
	EventRolesChanged        EventType = "roles_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ReportID  string      `json:"report_id,omitempty"`
	ActorID   string      `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ReportCreatedPayload payload.
type ReportCreatedPayload struct {
	SubjectID      string    `json:"subject_id"`
	SubjectHandle  string    `json:"subject_handle"`
	Reason         string    `json:"reason"`
	VotingDeadline time.Time `json:"voting_deadline"`
}

// ReportStatusChangedPayload payload.
type ReportStatusChangedPayload struct {
	OldStatus   domain.ReportStatus `json:"old_status"`
	NewStatus   domain.ReportStatus `json:"new_status"`
	LowPriority bool                `json:"low_priority,omitempty"`
	Reason      string              `json:"reason,omitempty"`
	Comment     string              `json:"comment,omitempty"`
}

// VoteRecordedPayload payload.
type VoteRecordedPayload struct {
	VoteCount int `json:"vote_count"`
}

// ReportPublishedPayload payload.
type ReportPublishedPayload struct {
	SubjectID  string `json:"subject_id"`
	ProfileURL string `json:"profile_url"`
}

// RolesChangedPayload payload.
type RolesChangedPayload struct {
	Admins     []string `json:"admins"`
	Moderators []string `json:"moderators"`
	Version    int      `json:"version"`
}
