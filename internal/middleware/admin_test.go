package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsteinbach/mineral-catalog/internal/utils"
)

const testSecret = "test-secret"

// runAdminAuth sends a request through the AdminAuth middleware and reports
// the response code plus whether the wrapped handler ran.
func runAdminAuth(t *testing.T, authHeader string) (int, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/showcases", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	reached := false
	h := AdminAuth(testSecret)(func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusNoContent)
	})
	require.NoError(t, h(c))
	return rec.Code, reached
}

func TestAdminAuthMissingHeader(t *testing.T) {
	code, reached := runAdminAuth(t, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, reached, "handler must not run without a token")
}

func TestAdminAuthMalformedHeader(t *testing.T) {
	code, reached := runAdminAuth(t, "Basic abc123")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, reached)
}

func TestAdminAuthInvalidToken(t *testing.T) {
	code, reached := runAdminAuth(t, "Bearer not.a.token")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, reached)
}

func TestAdminAuthWrongSecret(t *testing.T) {
	tok, err := utils.NewSessionToken("other-secret", 30)
	require.NoError(t, err)
	code, reached := runAdminAuth(t, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, reached)
}

func TestAdminAuthExpiredToken(t *testing.T) {
	tok, err := utils.NewSessionToken(testSecret, -5)
	require.NoError(t, err)
	code, reached := runAdminAuth(t, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, reached)
}

func TestAdminAuthValidToken(t *testing.T) {
	tok, err := utils.NewSessionToken(testSecret, 30)
	require.NoError(t, err)
	code, reached := runAdminAuth(t, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusNoContent, code)
	assert.True(t, reached, "handler must run for a valid session")
}
