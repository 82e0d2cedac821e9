package users

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/clinic-booking/internal/http/httpjson"
	"github.com/wolfman30/clinic-booking/internal/identity"
	"github.com/wolfman30/clinic-booking/pkg/logging"
)

// Handler handles HTTP requests for accounts
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new users handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Register handles POST /api/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if _, err := h.service.Register(r.Context(), req); err != nil {
		h.writeServiceError(w, err, "Registration failed")
		return
	}
	httpjson.Message(w, http.StatusOK, "Registration successful")
}

// Login handles POST /api/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err, "Login failed")
		return
	}
	httpjson.Write(w, http.StatusOK, resp)
}

// CreateStaff handles POST /api/admin/create-user.
func (h *Handler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	caller, _ := identity.FromContext(r.Context())
	var req CreateStaffRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	user, err := h.service.CreateStaff(r.Context(), caller, req)
	if err != nil {
		h.writeServiceError(w, err, "Failed to create user")
		return
	}
	httpjson.Message(w, http.StatusOK, "User created successfully as "+string(user.Role))
}

// ListStaff handles GET /api/users.
func (h *Handler) ListStaff(w http.ResponseWriter, r *http.Request) {
	caller, _ := identity.FromContext(r.Context())
	users, err := h.service.ListStaff(r.Context(), caller)
	if err != nil {
		h.writeServiceError(w, err, "Failed to list users")
		return
	}
	httpjson.Write(w, http.StatusOK, users)
}

// Delete handles DELETE /api/users/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, _ := identity.FromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpjson.Error(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	if err := h.service.Delete(r.Context(), caller, id); err != nil {
		h.writeServiceError(w, err, "Failed to delete user")
		return
	}
	httpjson.Message(w, http.StatusOK, "User deleted successfully")
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		httpjson.Error(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, ErrForbidden):
		httpjson.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrNotFound):
		httpjson.Error(w, http.StatusNotFound, "User not found")
	case errors.Is(err, ErrEmailTaken):
		httpjson.Error(w, http.StatusBadRequest, "Email already registered")
	case errors.Is(err, ErrSelfDelete), IsValidation(err):
		httpjson.Error(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error(fallback, "error", err)
		httpjson.Error(w, http.StatusInternalServerError, fallback)
	}
}
