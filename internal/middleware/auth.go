package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/recepoint/backend/internal/auth"
	"github.com/recepoint/backend/pkg/response"
)

// ContextUserEmail is the key for the verified identity email in gin context.
const ContextUserEmail = "user_email"

// Auth returns a middleware that verifies the token cookie and binds the
// identity email into the request context. The decision is synchronous: a
// missing or invalid token aborts the chain before the handler runs.
// Resource ownership is not checked here; each gated handler compares the
// bound email against the requested resource owner itself.
func Auth(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(auth.CookieName)
		if err != nil || token == "" {
			response.Unauthorized(c, "missing token")
			c.Abort()
			return
		}
		email, err := tokens.Verify(token)
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		c.Set(ContextUserEmail, email)
		c.Next()
	}
}

// UserEmail returns the verified identity email bound by Auth.
func UserEmail(c *gin.Context) string {
	return c.GetString(ContextUserEmail)
}
