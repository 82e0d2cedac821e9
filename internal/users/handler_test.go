package users

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/clinic-booking/internal/identity"
	"github.com/wolfman30/clinic-booking/pkg/logging"
)

func post(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func TestHandlerRegisterAndLogin(t *testing.T) {
	svc, _, _ := newTestService()
	h := NewHandler(svc, logging.New("error"))

	w := httptest.NewRecorder()
	h.Register(w, post(`{"full_name":"Ana","email":"ana@school.edu","password":"secret1"}`))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Registration successful"}`, w.Body.String())

	w = httptest.NewRecorder()
	h.Register(w, post(`{"full_name":"Ana","email":"ana@school.edu","password":"secret1"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"detail":"Email already registered"}`, w.Body.String())

	w = httptest.NewRecorder()
	h.Login(w, post(`{"email":"ana@school.edu","password":"secret1"}`))
	require.Equal(t, http.StatusOK, w.Code)
	var resp LoginResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, identity.RoleStudent, resp.Role)
	assert.NotEmpty(t, resp.Token)

	w = httptest.NewRecorder()
	h.Login(w, post(`{"email":"ana@school.edu","password":"nope-nope"}`))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	h.Login(w, post(`{`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlerStaffRoutes(t *testing.T) {
	svc, _, _ := newTestService()
	h := NewHandler(svc, logging.New("error"))
	asSuper := func(r *http.Request) *http.Request {
		return r.WithContext(identity.WithIdentity(r.Context(), superAdmin))
	}

	_, err := svc.Register(context.Background(), RegisterRequest{FullName: "Student", Email: "s@school.edu", Password: "secret1"})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	h.CreateStaff(w, asSuper(post(`{"full_name":"Joy","email":"joy@clinic.com","password":"secret1","role":"admin"}`)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "as admin")

	w = httptest.NewRecorder()
	h.CreateStaff(w, asSuper(post(`{"full_name":"Joy","email":"joy2@clinic.com","password":"secret1","role":"doctor"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	h.ListStaff(w, asSuper(httptest.NewRequest(http.MethodGet, "/api/users", nil)))
	require.Equal(t, http.StatusOK, w.Code)
	var staff []User
	require.NoError(t, json.NewDecoder(w.Body).Decode(&staff))
	require.Len(t, staff, 1)
	assert.NotContains(t, w.Body.String(), "password")

	w = httptest.NewRecorder()
	h.ListStaff(w, httptest.NewRequest(http.MethodGet, "/api/users", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	del := func(id string) *httptest.ResponseRecorder {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", id)
		r := asSuper(httptest.NewRequest(http.MethodDelete, "/", nil))
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
		rec := httptest.NewRecorder()
		h.Delete(rec, r)
		return rec
	}
	assert.Equal(t, http.StatusBadRequest, del("1").Code, "self delete")
	assert.Equal(t, http.StatusOK, del("2").Code)
	assert.Equal(t, http.StatusNotFound, del("2").Code)
	assert.Equal(t, http.StatusBadRequest, del("x").Code)
}
