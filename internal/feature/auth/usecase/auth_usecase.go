package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"survey_backend/internal/feature/auth/domain/entity"
	"survey_backend/internal/shared/identity"
)

const (
	// minPasswordLength is the minimum number of characters in a password.
	minPasswordLength = 8

	// dummyHash keeps Login's timing constant when the username is unknown.
	dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
)

// UserRepository abstracts persistence of user accounts.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type UserRepository interface {
	// Create persists a new user. It returns ErrUsernameTaken on a duplicate username.
	Create(ctx context.Context, user *entity.User) error

	// FindByUsername returns ErrUserNotFound when no user matches.
	FindByUsername(ctx context.Context, username string) (*entity.User, error)

	// FindByID returns ErrUserNotFound when no user matches.
	FindByID(ctx context.Context, id string) (*entity.User, error)

	// Delete removes a user; storage cascades the removal to the user's survey entries.
	// It returns ErrUserNotFound when no row was affected.
	Delete(ctx context.Context, id string) error
}

// JWTGenerator defines the interface for JWT token generation.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (platform/jwt).
type JWTGenerator interface {
	GenerateToken(userID, username string, role identity.Role) (string, error)
}

// EntryCacheInvalidator drops cached survey listings once a user's entries disappear.
type EntryCacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// authUsecase implements authentication and user provisioning.
type authUsecase struct {
	users        UserRepository
	jwtGenerator JWTGenerator
	entryCache   EntryCacheInvalidator
	newID        func() string
}

// NewAuthUsecase creates a new authUsecase. entryCache may be nil when listings are not cached.
func NewAuthUsecase(users UserRepository, jwtGenerator JWTGenerator, entryCache EntryCacheInvalidator) *authUsecase {
	return &authUsecase{
		users:        users,
		jwtGenerator: jwtGenerator,
		entryCache:   entryCache,
		newID:        uuid.NewString,
	}
}

// Login authenticates the user and returns a signed token together with the account.
// The bcrypt comparison runs even for unknown usernames.
func (u *authUsecase) Login(ctx context.Context, username, password string) (string, *entity.User, error) {
	user, err := u.users.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return "", nil, fmt.Errorf("find user: %w", err)
	}

	passwordHash := dummyHash
	if err == nil {
		passwordHash = user.Password
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))
	if err != nil || compareErr != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := u.jwtGenerator.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return token, user, nil
}

// Me returns the account behind caller.
func (u *authUsecase) Me(ctx context.Context, caller identity.Caller) (*entity.User, error) {
	return u.users.FindByID(ctx, caller.ID)
}

// CreateUser provisions a new account. Only admins may call it.
func (u *authUsecase) CreateUser(ctx context.Context, caller identity.Caller, username, password string, role identity.Role) (*entity.User, error) {
	if !caller.Role.IsAdmin() {
		return nil, ErrForbidden
	}
	return u.createUser(ctx, username, password, role)
}

// DeleteUser removes an account and, through the storage cascade, all of its survey entries.
// Only admins may call it.
func (u *authUsecase) DeleteUser(ctx context.Context, caller identity.Caller, id string) error {
	if !caller.Role.IsAdmin() {
		return ErrForbidden
	}
	if caller.ID == id {
		return fmt.Errorf("%w: admins cannot delete their own account", ErrInvalidUser)
	}
	if err := u.users.Delete(ctx, id); err != nil {
		return err
	}
	if u.entryCache != nil {
		if err := u.entryCache.Invalidate(ctx); err != nil {
			slog.Warn("entry cache invalidation failed", "error", err, "user_id", id)
		}
	}
	return nil
}

// EnsureAdmin creates an admin account named username unless one already exists.
// It reports whether a user was created.
func (u *authUsecase) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	_, err := u.users.FindByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return false, fmt.Errorf("find user: %w", err)
	}
	if _, err := u.createUser(ctx, username, password, identity.RoleAdmin); err != nil {
		return false, err
	}
	return true, nil
}

func (u *authUsecase) createUser(ctx context.Context, username, password string, role identity.Role) (*entity.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidUser)
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if role == "" {
		role = identity.RoleUser
	}
	if _, err := identity.ParseRole(string(role)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidUser, err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &entity.User{
		ID:       u.newID(),
		Username: username,
		Password: string(hashed),
		Role:     role,
	}
	if err := u.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// validatePassword checks whether the password meets the length requirement.
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters long", ErrInvalidUser, minPasswordLength)
	}
	return nil
}
