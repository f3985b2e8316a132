package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homeroomhq/homeroom-api/internal/config"
	"github.com/homeroomhq/homeroom-api/internal/service/auth"
)

func newAuthHandlerForTest(t *testing.T) (*AuthHandler, *memUserStore) {
	t.Helper()

	userStore := newMemUserStore()
	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            "test-secret-key-thats-long-enough-for-hmac",
		TokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)

	return NewAuthHandler(userStore, jwtService, auth.NewBcryptHasher(4)), userStore
}

func postJSON(t *testing.T, handler http.HandlerFunc, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestRegister(t *testing.T) {
	t.Parallel()

	handler, userStore := newAuthHandlerForTest(t)

	rec := postJSON(t, handler.Register, "/api/auth/register", RegisterRequest{
		Email:    "parent@example.com",
		Password: "a-long-enough-password",
	})

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEqual(t, uuid.Nil, resp.UserID)
	assert.NotEmpty(t, resp.Token)

	stored, ok := userStore.users[resp.UserID]
	require.True(t, ok)
	assert.Equal(t, "parent@example.com", stored.Email)
	assert.NotEqual(t, "a-long-enough-password", stored.HashedPassword)
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	handler, _ := newAuthHandlerForTest(t)

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{name: "bad email", req: RegisterRequest{Email: "not-an-email", Password: "a-long-enough-password"}},
		{name: "short password", req: RegisterRequest{Email: "parent@example.com", Password: "short"}},
		{name: "missing password", req: RegisterRequest{Email: "parent@example.com"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec := postJSON(t, handler.Register, "/api/auth/register", tc.req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	handler, _ := newAuthHandlerForTest(t)

	req := RegisterRequest{Email: "parent@example.com", Password: "a-long-enough-password"}
	rec := postJSON(t, handler.Register, "/api/auth/register", req)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, handler.Register, "/api/auth/register", req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	handler, _ := newAuthHandlerForTest(t)

	rec := postJSON(t, handler.Register, "/api/auth/register", RegisterRequest{
		Email:    "parent@example.com",
		Password: "a-long-enough-password",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, handler.Login, "/api/auth/login", LoginRequest{
		Email:    "parent@example.com",
		Password: "a-long-enough-password",
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
}

func TestLoginInvalidCredentials(t *testing.T) {
	t.Parallel()

	handler, _ := newAuthHandlerForTest(t)

	rec := postJSON(t, handler.Register, "/api/auth/register", RegisterRequest{
		Email:    "parent@example.com",
		Password: "a-long-enough-password",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	t.Run("wrong password", func(t *testing.T) {
		rec := postJSON(t, handler.Login, "/api/auth/login", LoginRequest{
			Email:    "parent@example.com",
			Password: "wrong-password",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown email", func(t *testing.T) {
		rec := postJSON(t, handler.Login, "/api/auth/login", LoginRequest{
			Email:    "stranger@example.com",
			Password: "a-long-enough-password",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
