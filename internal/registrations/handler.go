package registrations

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/recepoint/backend/internal/marathons"
	"github.com/recepoint/backend/internal/middleware"
	"github.com/recepoint/backend/internal/models"
	"github.com/recepoint/backend/pkg/response"
)

// duplicateMessage is the response body for a repeat submission.
const duplicateMessage = "You have already placed a registration on the marathon!!"

// Store is the persistence surface the handler depends on.
type Store interface {
	ListByRegistrant(ctx context.Context, email, search string) ([]models.Registration, error)
	Update(ctx context.Context, id uuid.UUID, u models.RegistrationUpdate) (*models.Registration, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Submitter runs the registration-submission workflow.
type Submitter interface {
	Submit(ctx context.Context, in SubmitInput) (*models.Registration, error)
}

// SubmitRequest is the body for POST /registration.
type SubmitRequest struct {
	Email          string `json:"email" binding:"required,email"`
	FirstName      string `json:"first_name" binding:"required"`
	LastName       string `json:"last_name"`
	ContactNo      string `json:"contact_no"`
	AdditionalInfo string `json:"additional_info"`
	MarathonID     string `json:"marathon_id" binding:"required"`
}

// UpdateRequest is the body for PUT /registrationUpdate/:id. The email and
// marathon reference are not editable.
type UpdateRequest struct {
	FirstName      string `json:"first_name" binding:"required"`
	LastName       string `json:"last_name"`
	ContactNo      string `json:"contact_no"`
	AdditionalInfo string `json:"additional_info"`
}

// Handler handles registration HTTP endpoints.
type Handler struct {
	store    Store
	workflow Submitter
	logger   *zap.Logger
}

// NewHandler creates a registrations handler.
func NewHandler(store Store, workflow Submitter, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, workflow: workflow, logger: logger}
}

// Submit handles POST /registration (public). A repeat submission for the
// same (email, marathon) pair returns 403 without side effects.
func (h *Handler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	marathonID, err := uuid.Parse(req.MarathonID)
	if err != nil {
		response.BadRequest(c, "invalid marathon_id")
		return
	}

	reg, err := h.workflow.Submit(c.Request.Context(), SubmitInput{
		MarathonID:     marathonID,
		Email:          req.Email,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		ContactNo:      req.ContactNo,
		AdditionalInfo: req.AdditionalInfo,
	})
	if errors.Is(err, ErrDuplicate) {
		response.Forbidden(c, duplicateMessage)
		return
	}
	if errors.Is(err, marathons.ErrNotFound) {
		response.NotFound(c, "marathon not found")
		return
	}
	if err != nil {
		h.logger.Error("submit registration failed", zap.Error(err), zap.String("marathon_id", req.MarathonID))
		response.Internal(c, "failed to submit registration")
		return
	}
	response.Created(c, reg)
}

// ListByRegistrant handles GET /registationsSpecific/:email (gated). The
// path email must match the token identity; the optional search query
// filters on the marathon title, case-insensitive.
func (h *Handler) ListByRegistrant(c *gin.Context) {
	email := c.Param("email")
	if email != middleware.UserEmail(c) {
		response.Forbidden(c, "forbidden access")
		return
	}
	list, err := h.store.ListByRegistrant(c.Request.Context(), email, c.Query("search"))
	if err != nil {
		h.logger.Error("list registrations failed", zap.Error(err), zap.String("email", email))
		response.Internal(c, "failed to list registrations")
		return
	}
	response.OK(c, list)
}

// Update handles PUT /registrationUpdate/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid registration id")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	reg, err := h.store.Update(c.Request.Context(), id, models.RegistrationUpdate{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		ContactNo:      req.ContactNo,
		AdditionalInfo: req.AdditionalInfo,
	})
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c, "registration not found")
		return
	}
	if err != nil {
		h.logger.Error("update registration failed", zap.Error(err), zap.String("id", id.String()))
		response.Internal(c, "failed to update registration")
		return
	}
	response.OK(c, reg)
}

// Delete handles DELETE /registation/:id. The marathon counter is left
// as-is.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid registration id")
		return
	}
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		h.logger.Error("delete registration failed", zap.Error(err), zap.String("id", id.String()))
		response.Internal(c, "failed to delete registration")
		return
	}
	response.NoContent(c)
}
