// Package entity defines the domain entities for the auth feature.
package entity

import (
	"time"

	"survey_backend/internal/shared/identity"
)

// User represents an account that can sign in and own survey entries.
type User struct {
	// ID is an opaque UUID assigned at provisioning.
	ID string `gorm:"primaryKey;size:36"`

	// Username must be unique across all users.
	Username string `gorm:"uniqueIndex;size:255;not null"`

	// Password is the bcrypt hash; plaintext is never stored.
	Password string `gorm:"size:255;not null"`

	// Role decides what the user may see and change.
	Role identity.Role `gorm:"size:16;not null;default:user"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Caller returns the identity used for authorization decisions.
func (u *User) Caller() identity.Caller {
	return identity.Caller{ID: u.ID, Role: u.Role}
}
