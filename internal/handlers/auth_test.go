package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitstack/apiserver/internal/audit"
	"github.com/fitstack/apiserver/internal/token"
)

func TestRegisterThenLogin(t *testing.T) {
	env := newTestEnv(t)

	registeredToken, user := env.registerUser(t, "alice", "alice@example.com", "pw123")
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotZero(t, user.ID)

	// The stored hash must never equal the raw password and must never
	// leak through the JSON surface.
	stored, err := env.users.GetByID(t.Context(), user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "pw123", stored.PasswordHash)
	assert.NotEmpty(t, stored.PasswordHash)

	var login AuthResponse
	status := env.doJSON(t, http.MethodPost, "/auth/login", "", LoginRequest{
		Email:    "alice@example.com",
		Password: "pw123",
	}, &login)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, user.ID, login.User.ID)

	// Both tokens must authenticate /auth/me.
	for _, bearer := range []string{registeredToken, login.Token} {
		var me map[string]any
		status := env.doJSON(t, http.MethodGet, "/auth/me", bearer, nil, &me)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "alice", me["username"])
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "alice", "alice@example.com", "pw123")

	var errResp ErrorResponse
	status := env.doJSON(t, http.MethodPost, "/auth/register", "", RegisterRequest{
		Username: "alice",
		Email:    "other@example.com",
		Password: "pw123",
	}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "username already taken", errResp.Error)

	status = env.doJSON(t, http.MethodPost, "/auth/register", "", RegisterRequest{
		Username: "alice2",
		Email:    "alice@example.com",
		Password: "pw123",
	}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "user with this email already exists", errResp.Error)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name string
		req  RegisterRequest
	}{
		{"missing username", RegisterRequest{Email: "a@example.com", Password: "pw"}},
		{"missing email", RegisterRequest{Username: "a", Password: "pw"}},
		{"malformed email", RegisterRequest{Username: "a", Email: "not-an-email", Password: "pw"}},
		{"missing password", RegisterRequest{Username: "a", Email: "a@example.com"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status := env.doJSON(t, http.MethodPost, "/auth/register", "", tc.req, nil)
			assert.Equal(t, http.StatusBadRequest, status)
		})
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "alice", "alice@example.com", "pw123")

	var errResp ErrorResponse
	status := env.doJSON(t, http.MethodPost, "/auth/login", "", LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong",
	}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid credentials", errResp.Error)

	// Unknown account gets the identical response so callers cannot
	// probe which emails are registered.
	status = env.doJSON(t, http.MethodPost, "/auth/login", "", LoginRequest{
		Email:    "nobody@example.com",
		Password: "pw123",
	}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid credentials", errResp.Error)
}

func TestAuthMiddlewareRejections(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "alice", "alice@example.com", "pw123")

	var errResp ErrorResponse
	status := env.doJSON(t, http.MethodGet, "/auth/me", "", nil, &errResp)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "unauthorized: token missing", errResp.Error)

	status = env.doJSON(t, http.MethodGet, "/auth/me", "garbage-token", nil, &errResp)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "unauthorized: invalid or expired token", errResp.Error)

	// Tokens signed with another secret are rejected the same way.
	foreign := token.NewIssuer("another-secret", time.Hour)
	forged, err := foreign.Issue(1)
	require.NoError(t, err)
	status = env.doJSON(t, http.MethodGet, "/auth/me", forged, nil, &errResp)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "unauthorized: invalid or expired token", errResp.Error)
}

func TestAuditTrail(t *testing.T) {
	env := newTestEnv(t)
	_, user := env.registerUser(t, "alice", "alice@example.com", "pw123")

	env.doJSON(t, http.MethodPost, "/auth/login", "", LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong",
	}, nil)
	env.doJSON(t, http.MethodPost, "/auth/login", "", LoginRequest{
		Email:    "alice@example.com",
		Password: "pw123",
	}, nil)

	require.Len(t, env.auditor.events, 3)
	assert.Equal(t, audit.KindRegister, env.auditor.events[0].Kind)
	assert.True(t, env.auditor.events[0].Success)

	failed := env.auditor.events[1]
	assert.Equal(t, audit.KindLogin, failed.Kind)
	assert.False(t, failed.Success)
	assert.Equal(t, user.ID, failed.UserID)

	succeeded := env.auditor.events[2]
	assert.Equal(t, audit.KindLogin, succeeded.Kind)
	assert.True(t, succeeded.Success)
	assert.Equal(t, "alice@example.com", succeeded.Subject)
}
