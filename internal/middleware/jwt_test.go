package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agriport/farm2market/internal/utils"
)

func okHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user_id":  c.Get("user_id"),
		"role":     c.Get("role"),
		"approved": c.Get("approved"),
	})
}

func doRequest(t *testing.T, mw echo.MiddlewareFunc, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := mw(okHandler)(c)
	require.NoError(t, err)
	return rec
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	token, err := utils.SignUserToken("user-1", "farmer", true)
	require.NoError(t, err)

	rec := doRequest(t, JWTMiddleware, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user_id":"user-1"`)
	assert.Contains(t, rec.Body.String(), `"role":"farmer"`)
	assert.Contains(t, rec.Body.String(), `"approved":true`)
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	rec := doRequest(t, JWTMiddleware, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddleware_BadToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	rec := doRequest(t, JWTMiddleware, "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddleware_WrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	token, err := utils.SignUserToken("user-1", "buyer", true)
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "another-secret")
	rec := doRequest(t, JWTMiddleware, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoles(t *testing.T) {
	e := echo.New()

	run := func(role string, mw echo.MiddlewareFunc) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != "" {
			c.Set("role", role)
		}
		_ = mw(okHandler)(c)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, run("farmer", RequireRoles("farmer")))
	assert.Equal(t, http.StatusOK, run("admin", RequireRoles("farmer", "admin")))
	assert.Equal(t, http.StatusForbidden, run("buyer", RequireRoles("farmer")))
	assert.Equal(t, http.StatusForbidden, run("", RequireRoles("farmer")))
}

func TestRequireApproved(t *testing.T) {
	e := echo.New()

	run := func(approved any) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if approved != nil {
			c.Set("approved", approved)
		}
		_ = RequireApproved(okHandler)(c)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, run(true))
	assert.Equal(t, http.StatusForbidden, run(false))
	assert.Equal(t, http.StatusForbidden, run(nil))
}
