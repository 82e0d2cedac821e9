package httpjson

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	w := httptest.NewRecorder()
	Error(w, http.StatusForbidden, "Only students can book appointments")

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"detail":"Only students can book appointments"}`, w.Body.String())
}

func TestMessage(t *testing.T) {
	w := httptest.NewRecorder()
	Message(w, http.StatusOK, "Appointment updated successfully")
	assert.JSONEq(t, `{"message":"Appointment updated successfully"}`, w.Body.String())
}

func TestDecode(t *testing.T) {
	var body struct {
		Message string `json:"message"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"message":"book"}`))
	require.NoError(t, Decode(r, &body))
	assert.Equal(t, "book", body.Message)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	assert.Error(t, Decode(r, &body))
}
