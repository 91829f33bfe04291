// Package jwtmw issues and verifies the bearer tokens used by the API.
package jwtmw

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"survey_backend/internal/shared/identity"
)

// Claim names carried by every token.
const (
	claimSubject  = "sub"
	claimRole     = "role"
	claimUsername = "username"
)

// Generator defines the interface for JWT token generation.
type Generator interface {
	// GenerateToken creates a signed JWT token for the given user.
	GenerateToken(userID, username string, role identity.Role) (string, error)
}

// generator implements the Generator interface.
type generator struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewGenerator creates a new JWT generator with the provided secret and expiration duration.
func NewGenerator(secret string, expiration time.Duration) Generator {
	return &generator{
		secret:     []byte(secret),
		expiration: expiration,
		now:        time.Now,
	}
}

// GenerateToken creates a signed JWT token with standard claims plus the user's role.
func (g *generator) GenerateToken(userID, username string, role identity.Role) (string, error) {
	now := g.now()
	claims := jwt.MapClaims{
		claimSubject:  userID,
		claimRole:     string(role),
		claimUsername: username,
		"exp":         now.Add(g.expiration).Unix(),
		"iat":         now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}
