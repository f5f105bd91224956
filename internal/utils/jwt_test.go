package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndExtract(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := SignUserToken("user-42", "buyer", true)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	c := e.NewContext(req, httptest.NewRecorder())

	id, err := ExtractUserIDFromToken(c)
	require.NoError(t, err)
	assert.Equal(t, "user-42", id)
}

func TestExtract_MissingHeader(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	_, err := ExtractUserIDFromToken(c)
	assert.Error(t, err)
}

func TestExtract_TamperedToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	token, err := SignUserToken("user-42", "buyer", false)
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token+"x")
	c := e.NewContext(req, httptest.NewRecorder())

	_, err = ExtractUserIDFromToken(c)
	assert.Error(t, err)
}
