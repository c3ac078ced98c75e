package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/placement-cell/internal/config"
	"github.com/jonathan/placement-cell/internal/server/middleware"
	"github.com/jonathan/placement-cell/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestAuthHandler creates an AuthHandler over an in-memory store.
func setupTestAuthHandler(_ *testing.T) (*AuthHandler, *memStore) {
	passwordConfig := &config.PasswordConfig{
		BcryptCost: 10, // Lower cost for faster tests
	}
	jwtConfig := &config.JWTConfig{
		Secret:          testJWTSecret,
		ExpirationHours: 24,
		Issuer:          config.DefaultTokenIssuer,
	}

	store := newMemStore()
	userSvc := NewUserService(store, passwordConfig)
	jwtSvc := NewJWTService(jwtConfig)
	return NewAuthHandler(userSvc, jwtSvc), store
}

func postJSON(path string, body any) *http.Request {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAuthHandler_Register_InvalidJSON(t *testing.T) {
	handler, _ := setupTestAuthHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader([]byte("invalid json")))
	w := httptest.NewRecorder()

	handler.Register(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid request body")
}

func TestAuthHandler_Register_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		reqBody map[string]string
	}{
		{"missing username", map[string]string{"email": "a@tnp.com", "password": "password123", "role": "student"}},
		{"invalid email", map[string]string{"username": "a", "email": "invalid-email", "password": "password123", "role": "student"}},
		{"password too short", map[string]string{"username": "a", "email": "a@tnp.com", "password": "short", "role": "student"}},
		{"missing role", map[string]string{"username": "a", "email": "a@tnp.com", "password": "password123"}},
		{"unknown role", map[string]string{"username": "a", "email": "a@tnp.com", "password": "password123", "role": "dean"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, store := setupTestAuthHandler(t)
			w := httptest.NewRecorder()

			handler.Register(w, postJSON("/api/auth/register", tt.reqBody))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "validation error")
			assert.Empty(t, store.users)
		})
	}
}

func TestAuthHandler_Register_Success(t *testing.T) {
	handler, store := setupTestAuthHandler(t)
	w := httptest.NewRecorder()

	handler.Register(w, postJSON("/api/auth/register", map[string]string{
		"username": "student1", "email": "student1@college.edu", "password": "password123", "role": "student",
	}))

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp types.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.User)
	assert.Equal(t, types.RoleStudent, resp.User.Role)
	assert.NotEmpty(t, resp.Token)
	assert.NotContains(t, w.Body.String(), "password123")

	stored, err := store.GetUserByEmail(t.Context(), "student1@college.edu")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEqual(t, "password123", stored.PasswordHash)
}

func TestAuthHandler_Login_InvalidJSON(t *testing.T) {
	handler, _ := setupTestAuthHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader([]byte("invalid json")))
	w := httptest.NewRecorder()

	handler.Login(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid request body")
}

func TestAuthHandler_Login_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		reqBody map[string]string
	}{
		{"missing email", map[string]string{"password": "password123"}},
		{"invalid email format", map[string]string{"email": "invalid-email", "password": "password123"}},
		{"missing password", map[string]string{"email": "test@example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := setupTestAuthHandler(t)
			w := httptest.NewRecorder()

			handler.Login(w, postJSON("/api/auth/login", tt.reqBody))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "validation error")
		})
	}
}

func TestAuthHandler_Login_GenericFailure(t *testing.T) {
	handler, _ := setupTestAuthHandler(t)
	w := httptest.NewRecorder()
	handler.Register(w, postJSON("/api/auth/register", map[string]string{
		"username": "officer", "email": "officer@tnp.com", "password": "password123", "role": "tnp_officer",
	}))
	require.Equal(t, http.StatusCreated, w.Code)

	unknown := httptest.NewRecorder()
	handler.Login(unknown, postJSON("/api/auth/login", map[string]string{"email": "ghost@tnp.com", "password": "password123"}))
	wrong := httptest.NewRecorder()
	handler.Login(wrong, postJSON("/api/auth/login", map[string]string{"email": "officer@tnp.com", "password": "password124"}))

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, unknown.Body.String(), wrong.Body.String())
}

func TestAuthHandler_Me(t *testing.T) {
	handler, store := setupTestAuthHandler(t)

	t.Run("no principal", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Me(w, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("deleted account", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req = req.WithContext(middleware.WithPrincipal(req.Context(), types.Principal{UserID: uuid.New(), Role: types.RoleAdmin}))
		w := httptest.NewRecorder()
		handler.Me(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("existing account", func(t *testing.T) {
		user, err := store.CreateUser(t.Context(), "admin", "admin@tnp.com", "hash", types.RoleAdmin)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req = req.WithContext(middleware.WithPrincipal(req.Context(), types.Principal{UserID: user.ID, Role: user.Role}))
		w := httptest.NewRecorder()
		handler.Me(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"username":"admin"`)
	})
}
