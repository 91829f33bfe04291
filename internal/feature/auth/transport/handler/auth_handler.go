// Package handler provides HTTP handlers for the auth feature.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"survey_backend/internal/feature/auth/domain/entity"
	"survey_backend/internal/feature/auth/transport/http/dto"
	"survey_backend/internal/feature/auth/usecase"
	jwtmw "survey_backend/internal/platform/jwt"
	"survey_backend/internal/shared/identity"
)

// AuthUsecase defines the account operations used by the handler.
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type AuthUsecase interface {
	Login(ctx context.Context, username, password string) (string, *entity.User, error)
	Me(ctx context.Context, caller identity.Caller) (*entity.User, error)
	CreateUser(ctx context.Context, caller identity.Caller, username, password string, role identity.Role) (*entity.User, error)
	DeleteUser(ctx context.Context, caller identity.Caller, id string) error
}

// AuthHandler handles HTTP requests for sign-in and user provisioning.
type AuthHandler struct {
	auth AuthUsecase
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login handles POST /api/auth/login.
// - 400 on a malformed body
// - 401 on unknown username or wrong password
// - 200 with the token and account on success
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	token, user, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			slog.Warn("login failed", "error", err, "username", req.Username, "remote_addr", c.ClientIP())
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
			return
		}
		slog.Error("login failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	slog.Info("user login successful", "username", req.Username, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.LoginRes{Token: token, User: toUserRes(user)})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	caller, ok := jwtmw.CallerFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	user, err := h.auth.Me(c.Request.Context(), caller)
	if err != nil {
		// A valid token for a deleted account is treated as unauthenticated.
		if errors.Is(err, usecase.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		slog.Error("me failed", "error", err, "user_id", caller.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, toUserRes(user))
}

// CreateUser handles POST /api/users (admin only).
func (h *AuthHandler) CreateUser(c *gin.Context) {
	caller, ok := jwtmw.CallerFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req dto.CreateUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("create user validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	user, err := h.auth.CreateUser(c.Request.Context(), caller, req.Username, req.Password, identity.Role(req.Role))
	if err != nil {
		h.fail(c, "create user failed", err)
		return
	}
	slog.Info("user created", "id", user.ID, "username", user.Username, "role", user.Role, "by", caller.ID)
	c.JSON(http.StatusCreated, toUserRes(user))
}

// DeleteUser handles DELETE /api/users/:id (admin only).
func (h *AuthHandler) DeleteUser(c *gin.Context) {
	caller, ok := jwtmw.CallerFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id := c.Param("id")
	if err := h.auth.DeleteUser(c.Request.Context(), caller, id); err != nil {
		h.fail(c, "delete user failed", err)
		return
	}
	slog.Info("user deleted", "id", id, "by", caller.ID)
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

func (h *AuthHandler) fail(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, usecase.ErrForbidden):
		slog.Warn(msg, "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, usecase.ErrInvalidUser):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrUsernameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "username already exists"})
	case errors.Is(err, usecase.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	default:
		slog.Error(msg, "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func toUserRes(u *entity.User) dto.UserRes {
	return dto.UserRes{ID: u.ID, Username: u.Username, Role: string(u.Role), CreatedAt: u.CreatedAt}
}
