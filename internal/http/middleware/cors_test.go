package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORS(t *testing.T) {
	tests := []struct {
		name        string
		allowed     []string
		method      string
		origin      string
		preflight   bool
		wantOrigin  string
		wantStatus  int
		wantHandler bool
	}{
		{"listed origin", []string{"https://clinic.example.edu"}, http.MethodGet, "https://clinic.example.edu", false, "https://clinic.example.edu", http.StatusOK, true},
		{"unknown origin", []string{"https://clinic.example.edu"}, http.MethodGet, "https://unknown.example", false, "", http.StatusOK, true},
		{"wildcard", []string{" * "}, http.MethodGet, "https://random.example", false, "https://random.example", http.StatusOK, true},
		{"no origin header", []string{"*"}, http.MethodGet, "", false, "", http.StatusOK, true},
		{"preflight", []string{"https://clinic.example.edu"}, http.MethodOptions, "https://clinic.example.edu", true, "https://clinic.example.edu", http.StatusNoContent, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			})
			req := httptest.NewRequest(tc.method, "/api/appointments", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			if tc.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rec := httptest.NewRecorder()

			CORS(tc.allowed)(handler).ServeHTTP(rec, req)

			assert.Equal(t, tc.wantHandler, called)
			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, tc.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			if tc.wantOrigin != "" {
				assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Methods"))
				assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
			}
		})
	}
}
