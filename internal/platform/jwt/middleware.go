package jwtmw

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"survey_backend/internal/shared/identity"
)

// Gin context keys set by AuthRequired.
const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
)

// AuthRequired returns a Gin middleware function that validates JWT tokens signed
// with secret and restricts access to authenticated users only.
func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Get Authorization header
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tokenStr := strings.TrimPrefix(auth, "Bearer ")

		// 2. Refuse to verify against an empty key
		if secret == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "server misconfigured"})
			return
		}

		// 3. Parse and verify JWT signature (HMAC only)
		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		// 4. Extract identity claims; a token without both is unusable
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		sub, _ := claims[claimSubject].(string)
		rawRole, _ := claims[claimRole].(string)
		role, err := identity.ParseRole(rawRole)
		if sub == "" || err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(ContextUserID, sub)
		c.Set(ContextUserRole, role)

		c.Next()
	}
}

// CallerFrom returns the identity stored by AuthRequired.
func CallerFrom(c *gin.Context) (identity.Caller, bool) {
	id := c.GetString(ContextUserID)
	role, ok := c.Get(ContextUserRole)
	if id == "" || !ok {
		return identity.Caller{}, false
	}
	r, ok := role.(identity.Role)
	if !ok {
		return identity.Caller{}, false
	}
	return identity.Caller{ID: id, Role: r}, true
}
