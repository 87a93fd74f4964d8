package dto

import "time"

// RolesResponse is the shared role document.
type RolesResponse struct {
	Admins     []string  `json:"admins"`
	Moderators []string  `json:"moderators"`
	Version    int       `json:"version"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// UpdateRolesRequest replaces the role document. ExpectedVersion guards
// against concurrent edits.
type UpdateRolesRequest struct {
	Admins          []string `json:"admins"`
	Moderators      []string `json:"moderators"`
	ExpectedVersion int      `json:"expected_version"`
}
