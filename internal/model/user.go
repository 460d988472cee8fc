package model

import "time"

// User is an account that owns tasks. Usernames are bare identifiers,
// unique across all users.
type User struct {
	ID        uint   `gorm:"primaryKey"`
	Username  string `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
