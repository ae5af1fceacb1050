package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/recepoint/backend/pkg/response"
)

// CookieName is the cookie holding the identity token.
const CookieName = "token"

// IssueRequest is the body for POST /jwt.
type IssueRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Handler handles token issuance and logout endpoints.
type Handler struct {
	tokens     *TokenService
	production bool
	logger     *zap.Logger
}

// NewHandler creates an auth handler. production controls cookie flags:
// Secure+SameSite=None when true (cross-site frontend), Lax otherwise.
func NewHandler(tokens *TokenService, production bool, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{tokens: tokens, production: production, logger: logger}
}

// IssueToken handles POST /jwt. Issues a signed token for the given email
// and delivers it as an HTTP-only cookie.
func (h *Handler) IssueToken(c *gin.Context) {
	var req IssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	token, err := h.tokens.Issue(req.Email)
	if err != nil {
		h.logger.Error("issue token failed", zap.Error(err))
		response.Internal(c, "failed to issue token")
		return
	}

	h.setCookie(c, token, int(h.tokens.ExpireAfter().Seconds()))
	response.OK(c, gin.H{"success": true})
}

// Logout handles GET /logout. Instructs the client to clear the cookie;
// the token itself stays valid until natural expiry (stateless tokens).
func (h *Handler) Logout(c *gin.Context) {
	h.setCookie(c, "", -1)
	response.OK(c, gin.H{"success": true})
}

func (h *Handler) setCookie(c *gin.Context, token string, maxAge int) {
	if h.production {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
	}
	c.SetCookie(CookieName, token, maxAge, "/", "", h.production, true)
}
