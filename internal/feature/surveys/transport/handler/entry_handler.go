// Package handler provides HTTP handlers for the surveys feature.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"survey_backend/internal/feature/surveys/domain/entity"
	"survey_backend/internal/feature/surveys/transport/http/dto"
	"survey_backend/internal/feature/surveys/usecase"
	jwtmw "survey_backend/internal/platform/jwt"
	"survey_backend/internal/shared/identity"
)

// EntryUsecase defines the survey entry operations used by the handler.
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type EntryUsecase interface {
	ListAll(ctx context.Context, caller identity.Caller) ([]entity.Entry, error)
	ListByUser(ctx context.Context, caller identity.Caller, userID string) ([]entity.Entry, error)
	Get(ctx context.Context, caller identity.Caller, id string) (*entity.Entry, error)
	Create(ctx context.Context, caller identity.Caller, f entity.Fields) (*entity.Entry, error)
	Update(ctx context.Context, caller identity.Caller, id string, f entity.Fields) (*entity.Entry, error)
	Delete(ctx context.Context, caller identity.Caller, id string) error
	Validate(f entity.Fields) error
}

// EntryHandler handles HTTP requests for survey entries.
type EntryHandler struct {
	uc EntryUsecase
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(uc EntryUsecase) *EntryHandler {
	return &EntryHandler{uc: uc}
}

// ListAll handles GET /api/surveys.
func (h *EntryHandler) ListAll(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	entries, err := h.uc.ListAll(c.Request.Context(), caller)
	if err != nil {
		h.fail(c, "list surveys failed", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewEntryListRes(entries))
}

// ListByUser handles GET /api/surveys/user/:userId.
func (h *EntryHandler) ListByUser(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	entries, err := h.uc.ListByUser(c.Request.Context(), caller, c.Param("userId"))
	if err != nil {
		h.fail(c, "list user surveys failed", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewEntryListRes(entries))
}

// Get handles GET /api/surveys/:id.
func (h *EntryHandler) Get(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	e, err := h.uc.Get(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		h.fail(c, "get survey failed", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewEntryRes(e))
}

// Create handles POST /api/surveys.
func (h *EntryHandler) Create(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	f, err := h.bind(c)
	if err != nil {
		h.fail(c, "create survey bind failed", err)
		return
	}
	e, err := h.uc.Create(c.Request.Context(), caller, f)
	if err != nil {
		h.fail(c, "create survey failed", err)
		return
	}
	slog.Info("survey created", "id", e.ID, "user_id", caller.ID)
	c.JSON(http.StatusCreated, dto.NewEntryRes(e))
}

// Update handles PUT /api/surveys/:id.
func (h *EntryHandler) Update(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	f, err := h.bind(c)
	if err != nil {
		h.fail(c, "update survey bind failed", err)
		return
	}
	e, err := h.uc.Update(c.Request.Context(), caller, c.Param("id"), f)
	if err != nil {
		h.fail(c, "update survey failed", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewEntryRes(e))
}

// Delete handles DELETE /api/surveys/:id.
func (h *EntryHandler) Delete(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if err := h.uc.Delete(c.Request.Context(), caller, id); err != nil {
		h.fail(c, "delete survey failed", err)
		return
	}
	slog.Info("survey deleted", "id", id, "user_id", caller.ID)
	c.JSON(http.StatusOK, dto.MessageRes{Message: "Survey entry deleted successfully"})
}

func callerOrAbort(c *gin.Context) (identity.Caller, bool) {
	caller, ok := jwtmw.CallerFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorRes{Error: "unauthorized"})
	}
	return caller, ok
}

// fail maps usecase errors to HTTP responses. Internal details only reach the log.
func (h *EntryHandler) fail(c *gin.Context, msg string, err error) {
	var vErr *usecase.ValidationError
	switch {
	case errors.As(err, &vErr):
		res := dto.ValidationErrorRes{Errors: make([]dto.FieldErrorRes, 0, len(vErr.Violations))}
		for _, v := range vErr.Violations {
			res.Errors = append(res.Errors, dto.FieldErrorRes{Field: v.Field, Message: v.Message})
		}
		slog.Warn(msg, "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, res)
	case errors.Is(err, usecase.ErrForbidden):
		slog.Warn(msg, "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusForbidden, dto.ErrorRes{Error: "forbidden"})
	case errors.Is(err, usecase.ErrEntryNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorRes{Error: "survey entry not found"})
	case errors.Is(err, usecase.ErrReferentialIntegrity):
		slog.Warn(msg, "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusConflict, dto.ErrorRes{Error: "referential integrity violation"})
	default:
		slog.Error(msg, "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusInternalServerError, dto.ErrorRes{Error: "internal server error"})
	}
}

// bind decodes the request body. Mistyped fields are reported together with every
// violation the validator finds in the rest of the body.
func (h *EntryHandler) bind(c *gin.Context) (entity.Fields, error) {
	var req dto.EntryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return entity.Fields{}, &usecase.ValidationError{Violations: []usecase.FieldViolation{
			{Field: "body", Message: "Request body must be a JSON object"},
		}}
	}
	f := req.ToFields()
	typeErrs := req.TypeErrors()
	if len(typeErrs) == 0 {
		return f, nil
	}

	out := &usecase.ValidationError{}
	mistyped := make(map[string]bool, len(typeErrs))
	for _, te := range typeErrs {
		out.Violations = append(out.Violations, usecase.FieldViolation{Field: te.Field, Message: te.Message})
		mistyped[te.Field] = true
	}
	var vErr *usecase.ValidationError
	if errors.As(h.uc.Validate(f), &vErr) {
		for _, v := range vErr.Violations {
			if !mistyped[v.Field] {
				out.Violations = append(out.Violations, v)
			}
		}
	}
	return f, out
}
