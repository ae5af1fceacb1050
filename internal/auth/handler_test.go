package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(production bool) (*gin.Engine, *TokenService) {
	gin.SetMode(gin.TestMode)
	tokens := NewTokenService("test-secret", 20)
	h := NewHandler(tokens, production, nil)
	r := gin.New()
	r.POST("/jwt", h.IssueToken)
	r.GET("/logout", h.Logout)
	return r, tokens
}

func TestIssueToken(t *testing.T) {
	router, tokens := newTestRouter(false)

	req := httptest.NewRequest(http.MethodPost, "/jwt", strings.NewReader(`{"email":"runner@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, CookieName, cookie.Name)
	assert.True(t, cookie.HttpOnly, "cookie must be HTTP-only")
	assert.False(t, cookie.Secure, "non-production cookie is not Secure")
	assert.Equal(t, 20*24*60*60, cookie.MaxAge)

	email, err := tokens.Verify(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "runner@example.com", email)
}

func TestIssueToken_InvalidBody(t *testing.T) {
	router, _ := newTestRouter(false)

	tests := []struct {
		name string
		body string
	}{
		{name: "missing email", body: `{}`},
		{name: "malformed email", body: `{"email":"not-an-email"}`},
		{name: "not json", body: `hello`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/jwt", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Empty(t, rr.Result().Cookies())
		})
	}
}

func TestIssueToken_ProductionCookieFlags(t *testing.T) {
	router, _ := newTestRouter(true)

	req := httptest.NewRequest(http.MethodPost, "/jwt", strings.NewReader(`{"email":"runner@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].Secure, "production cookie must be Secure")
	assert.Equal(t, http.SameSiteNoneMode, cookies[0].SameSite)
}

func TestLogout_ClearsCookie(t *testing.T) {
	router, _ := newTestRouter(false)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0, "cookie must expire immediately")
}
