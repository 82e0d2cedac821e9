package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/wolfman30/clinic-booking/internal/auth"
	"github.com/wolfman30/clinic-booking/internal/http/httpjson"
	"github.com/wolfman30/clinic-booking/internal/identity"
)

// TokenVerifier turns a bearer token into the caller's identity.
type TokenVerifier interface {
	Verify(token string) (identity.Identity, error)
}

// Authenticate enforces an HMAC-signed JWT and stores the caller identity in
// the request context. Browsers cannot set headers on websocket upgrades, so
// a "token" query parameter is accepted for those requests.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil {
				httpjson.Error(w, http.StatusUnauthorized, "Authentication disabled")
				return
			}
			tokenString := bearerToken(r)
			if tokenString == "" {
				httpjson.Error(w, http.StatusUnauthorized, "Not authenticated")
				return
			}
			caller, err := verifier.Verify(tokenString)
			if err != nil {
				detail := "Invalid token"
				if errors.Is(err, auth.ErrExpiredToken) {
					detail = "Token expired"
				}
				httpjson.Error(w, http.StatusUnauthorized, detail)
				return
			}
			ctx := identity.WithIdentity(r.Context(), caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if isWebsocketUpgrade(r) {
		return r.URL.Query().Get("token")
	}
	return ""
}

func isWebsocketUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

// RequireRoles rejects authenticated callers whose role is not listed.
// It must run after Authenticate.
func RequireRoles(roles ...identity.Role) func(http.Handler) http.Handler {
	allowed := make(map[identity.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := identity.FromContext(r.Context())
			if !ok {
				httpjson.Error(w, http.StatusUnauthorized, "Not authenticated")
				return
			}
			if _, ok := allowed[caller.Role]; !ok {
				httpjson.Error(w, http.StatusForbidden, "Not authorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
