package marathons

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/recepoint/backend/internal/middleware"
	"github.com/recepoint/backend/internal/models"
	"github.com/recepoint/backend/pkg/response"
)

// recentLimit is the fixed size of the homepage preview listing.
const recentLimit = 6

// Store is the persistence surface the handler depends on.
type Store interface {
	Create(ctx context.Context, m *models.Marathon) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Marathon, error)
	ListByCreator(ctx context.Context, email string, ascending bool) ([]models.Marathon, error)
	ListRecent(ctx context.Context, limit int) ([]models.Marathon, error)
	Update(ctx context.Context, id uuid.UUID, u models.MarathonUpdate) (*models.Marathon, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreateRequest is the body for POST /marathon.
type CreateRequest struct {
	Title             string `json:"title" binding:"required"`
	Image             string `json:"image"`
	Location          string `json:"location"`
	Distance          string `json:"distance"`
	Description       string `json:"description"`
	RegistrationStart string `json:"registration_start" binding:"required"`
	RegistrationEnd   string `json:"registration_end" binding:"required"`
	MarathonStart     string `json:"marathon_start" binding:"required"`
	CreatorEmail      string `json:"creator_email" binding:"required,email"`
	CreatorName       string `json:"creator_name"`
}

// UpdateRequest is the body for PUT /marathonUpdate/:id (full-field replace).
type UpdateRequest struct {
	Title             string `json:"title" binding:"required"`
	Image             string `json:"image"`
	Location          string `json:"location"`
	Distance          string `json:"distance"`
	Description       string `json:"description"`
	RegistrationStart string `json:"registration_start" binding:"required"`
	RegistrationEnd   string `json:"registration_end" binding:"required"`
	MarathonStart     string `json:"marathon_start" binding:"required"`
}

// Handler handles marathon HTTP endpoints.
type Handler struct {
	store  Store
	cache  *Cache
	logger *zap.Logger
}

// NewHandler creates a marathon handler.
func NewHandler(store Store, cache *Cache, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, cache: cache, logger: logger}
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// List handles GET /marathons (gated). The email query parameter names the
// listing owner and must match the token identity; sort=asc|desc orders by
// creation date (default desc).
func (h *Handler) List(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		response.BadRequest(c, "email query parameter required")
		return
	}
	if email != middleware.UserEmail(c) {
		response.Forbidden(c, "forbidden access")
		return
	}
	list, err := h.store.ListByCreator(c.Request.Context(), email, c.Query("sort") == "asc")
	if err != nil {
		h.logger.Error("list marathons failed", zap.Error(err), zap.String("email", email))
		response.Internal(c, "failed to list marathons")
		return
	}
	response.OK(c, list)
}

// ListRecent handles GET /limitMarathons (public). Returns the 6 most recent
// marathons, served cache-aside from Redis.
func (h *Handler) ListRecent(c *gin.Context) {
	ctx := c.Request.Context()
	if list, ok := h.cache.GetRecent(ctx); ok {
		response.OK(c, list)
		return
	}
	list, err := h.store.ListRecent(ctx, recentLimit)
	if err != nil {
		h.logger.Error("list recent marathons failed", zap.Error(err))
		response.Internal(c, "failed to list marathons")
		return
	}
	h.cache.SetRecent(ctx, list)
	response.OK(c, list)
}

// GetByID handles GET /marathons/:id (public).
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid marathon id")
		return
	}
	m, err := h.store.GetByID(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c, "marathon not found")
		return
	}
	if err != nil {
		h.logger.Error("get marathon failed", zap.Error(err), zap.String("id", id.String()))
		response.Internal(c, "failed to get marathon")
		return
	}
	response.OK(c, m)
}

// ListByCreator handles GET /marathonsSpecific/:email (gated). The path
// email must match the token identity.
func (h *Handler) ListByCreator(c *gin.Context) {
	email := c.Param("email")
	if email != middleware.UserEmail(c) {
		response.Forbidden(c, "forbidden access")
		return
	}
	list, err := h.store.ListByCreator(c.Request.Context(), email, false)
	if err != nil {
		h.logger.Error("list marathons by creator failed", zap.Error(err), zap.String("email", email))
		response.Internal(c, "failed to list marathons")
		return
	}
	response.OK(c, list)
}

// Create handles POST /marathon (gated). The creator email embedded in the
// payload must match the token identity.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.CreatorEmail != middleware.UserEmail(c) {
		response.Forbidden(c, "forbidden access")
		return
	}
	regStart, err := parseTime(req.RegistrationStart)
	if err != nil {
		response.BadRequest(c, "invalid registration_start")
		return
	}
	regEnd, err := parseTime(req.RegistrationEnd)
	if err != nil {
		response.BadRequest(c, "invalid registration_end")
		return
	}
	start, err := parseTime(req.MarathonStart)
	if err != nil {
		response.BadRequest(c, "invalid marathon_start")
		return
	}

	m := &models.Marathon{
		Title:             req.Title,
		Image:             req.Image,
		Location:          req.Location,
		Distance:          req.Distance,
		Description:       req.Description,
		RegistrationStart: regStart,
		RegistrationEnd:   regEnd,
		MarathonStart:     start,
		CreatorEmail:      req.CreatorEmail,
		CreatorName:       req.CreatorName,
	}
	if err := h.store.Create(c.Request.Context(), m); err != nil {
		h.logger.Error("create marathon failed", zap.Error(err))
		response.Internal(c, "failed to create marathon")
		return
	}
	h.cache.Invalidate(c.Request.Context())
	response.Created(c, m)
}

// Update handles PUT /marathonUpdate/:id. Full replace of the editable
// fields; the registration counter and creator identity are untouched.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid marathon id")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	regStart, err := parseTime(req.RegistrationStart)
	if err != nil {
		response.BadRequest(c, "invalid registration_start")
		return
	}
	regEnd, err := parseTime(req.RegistrationEnd)
	if err != nil {
		response.BadRequest(c, "invalid registration_end")
		return
	}
	start, err := parseTime(req.MarathonStart)
	if err != nil {
		response.BadRequest(c, "invalid marathon_start")
		return
	}

	m, err := h.store.Update(c.Request.Context(), id, models.MarathonUpdate{
		Title:             req.Title,
		Image:             req.Image,
		Location:          req.Location,
		Distance:          req.Distance,
		Description:       req.Description,
		RegistrationStart: regStart,
		RegistrationEnd:   regEnd,
		MarathonStart:     start,
	})
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c, "marathon not found")
		return
	}
	if err != nil {
		h.logger.Error("update marathon failed", zap.Error(err), zap.String("id", id.String()))
		response.Internal(c, "failed to update marathon")
		return
	}
	h.cache.Invalidate(c.Request.Context())
	response.OK(c, m)
}

// Delete handles DELETE /marathon/:id. Registrations for the marathon are
// not cascaded.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid marathon id")
		return
	}
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		h.logger.Error("delete marathon failed", zap.Error(err), zap.String("id", id.String()))
		response.Internal(c, "failed to delete marathon")
		return
	}
	h.cache.Invalidate(c.Request.Context())
	response.NoContent(c)
}
