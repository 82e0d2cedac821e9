package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/clinic-booking/internal/auth"
	"github.com/wolfman30/clinic-booking/internal/identity"
)

var testStudent = identity.Identity{UserID: 10, Role: identity.RoleStudent, FullName: "Ana Cruz"}

func newTokens(t *testing.T) *auth.Tokens {
	t.Helper()
	tokens, err := auth.NewTokens("secret", time.Hour)
	require.NoError(t, err)
	return tokens
}

func signedToken(t *testing.T, tokens *auth.Tokens, id identity.Identity) string {
	t.Helper()
	token, err := tokens.Issue(id)
	require.NoError(t, err)
	return token
}

func serve(mw func(http.Handler) http.Handler, req *http.Request) (*httptest.ResponseRecorder, identity.Identity, bool) {
	rec := httptest.NewRecorder()
	var (
		got    identity.Identity
		called bool
	)
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		got, _ = identity.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rec, req)
	return rec, got, called
}

func TestAuthenticateMissingVerifier(t *testing.T) {
	rec, _, called := serve(Authenticate(nil), httptest.NewRequest(http.MethodGet, "/api/appointments", nil))

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateMissingHeader(t *testing.T) {
	rec, _, called := serve(Authenticate(newTokens(t)), httptest.NewRequest(http.MethodGet, "/api/appointments", nil))

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"detail":"Not authenticated"}`, rec.Body.String())
}

func TestAuthenticateInvalidToken(t *testing.T) {
	other, err := auth.NewTokens("wrong", time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/appointments", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, other, testStudent))

	rec, _, called := serve(Authenticate(newTokens(t)), req)

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"detail":"Invalid token"}`, rec.Body.String())
}

func TestAuthenticateValidToken(t *testing.T) {
	tokens := newTokens(t)
	req := httptest.NewRequest(http.MethodGet, "/api/appointments", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, tokens, testStudent))

	rec, got, called := serve(Authenticate(tokens), req)

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testStudent, got)
}

func TestAuthenticateQueryTokenOnlyForWebsocket(t *testing.T) {
	tokens := newTokens(t)
	token := signedToken(t, tokens, testStudent)

	req := httptest.NewRequest(http.MethodGet, "/api/chat/ws?token="+token, nil)
	rec, _, called := serve(Authenticate(tokens), req)
	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/chat/ws?token="+token, nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	_, got, called := serve(Authenticate(tokens), req)
	assert.True(t, called)
	assert.Equal(t, testStudent, got)
}

func TestRequireRoles(t *testing.T) {
	mw := RequireRoles(identity.RoleAdmin, identity.RoleSuperAdmin)

	rec, _, called := serve(mw, httptest.NewRequest(http.MethodPut, "/api/appointments/1", nil))
	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPut, "/api/appointments/1", nil)
	rec, _, called = serve(mw, req.WithContext(identity.WithIdentity(req.Context(), testStudent)))
	assert.False(t, called)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	staff := identity.Identity{UserID: 2, Role: identity.RoleAdmin}
	rec, _, called = serve(mw, req.WithContext(identity.WithIdentity(req.Context(), staff)))
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}
