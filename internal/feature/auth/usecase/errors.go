// Package usecase implements the business logic for the auth feature.
package usecase

import "errors"

var (
	// ErrUserNotFound is returned when a user cannot be found by username or ID.
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameTaken is returned when attempting to create a user with a username that already exists.
	ErrUsernameTaken = errors.New("username already exists")

	// ErrInvalidCredentials is returned by Login for an unknown user or a wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrForbidden is returned when a non-admin attempts to manage users.
	ErrForbidden = errors.New("access denied")

	// ErrInvalidUser is returned when a provisioning request breaks a user rule.
	ErrInvalidUser = errors.New("invalid user")
)
