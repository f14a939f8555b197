package entity

import "time"

// Audit actions recorded for user writes
const (
	AuditUserCreated    = "user_created"
	AuditUserUpdated    = "user_updated"
	AuditAvatarUploaded = "avatar_uploaded"
)

// AuditLog is an append-only record of a write against a user
type AuditLog struct {
	ID        string
	UserID    string
	Email     string
	Action    string
	IP        string
	UserAgent string
	Metadata  map[string]any
	CreatedAt time.Time
}
