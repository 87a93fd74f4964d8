package domain

import "time"

// User is a dashboard account that can submit and vote on reports. Whether a
// user may moderate is decided by the role document, not by a column here.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
