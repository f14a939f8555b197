package entity

import (
	"time"
)

// User is the aggregate root for the user directory.
// Password holds the bcrypt hash, never the plaintext.
type User struct {
	ID        string
	Email     string
	Username  string
	Password  string
	AvatarURL string
	CreatedAt time.Time
	UpdatedAt time.Time
}
