package controller

import (
	"net/http"
	"testing"

	"github.com/ashascraft/storefront-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthController_LoginLogout(t *testing.T) {
	env := setupControllerTest(t)
	_, created, err := env.authService.EnsureAdmin("Owner@AshasCraft.test", "kantha-stitch-42", "Asha")
	require.NoError(t, err)
	require.True(t, created)

	w := env.request(t, http.MethodPost, "/api/v1/auth/login", jsonBody{"email": "owner@ashascraft.test", "password": "kantha-stitch-42"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "admin", user["role"])
	assert.NotContains(t, user, "password_hash")
	access := body["tokens"].(map[string]interface{})["access_token"].(string)
	require.NotEmpty(t, access)

	w = env.request(t, http.MethodGet, "/api/v1/auth/me", nil, "Authorization", "Bearer "+access)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "owner@ashascraft.test", decode(t, w)["user"].(map[string]interface{})["email"])

	w = env.request(t, http.MethodPost, "/api/v1/auth/logout", nil, "Authorization", "Bearer "+access)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, http.MethodGet, "/api/v1/auth/me", nil, "Authorization", "Bearer "+access)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, errors.AuthTokenRevoked, decode(t, w)["error"])
}

func TestAuthController_Login_Rejects(t *testing.T) {
	env := setupControllerTest(t)
	_, _, err := env.authService.EnsureAdmin("owner@ashascraft.test", "kantha-stitch-42", "")
	require.NoError(t, err)

	w := env.request(t, http.MethodPost, "/api/v1/auth/login", jsonBody{"email": "owner@ashascraft.test", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, errors.AuthInvalidCredentials, decode(t, w)["error"])

	w = env.request(t, http.MethodPost, "/api/v1/auth/login", jsonBody{"email": "nobody@ashascraft.test", "password": "kantha-stitch-42"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, errors.AuthInvalidCredentials, decode(t, w)["error"])

	w = env.request(t, http.MethodPost, "/api/v1/auth/login", jsonBody{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	fields := decode(t, w)["fields"].(map[string]interface{})
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
}
