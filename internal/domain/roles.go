package domain

import "time"

// Roles is the single shared role document. Admins are implicitly moderators.
type Roles struct {
	Admins     []string
	Moderators []string
	Version    int
	UpdatedAt  time.Time
}

// IsAdmin reports whether the username is an admin.
func (r Roles) IsAdmin(username string) bool {
	return contains(r.Admins, username)
}

// IsModerator reports whether the username may act on the moderation queue.
func (r Roles) IsModerator(username string) bool {
	return contains(r.Moderators, username) || contains(r.Admins, username)
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

// RoleAuditEntry records one role document change.
type RoleAuditEntry struct {
	ID        string
	Actor     string
	OldRoles  Roles
	NewRoles  Roles
	CreatedAt time.Time
}
