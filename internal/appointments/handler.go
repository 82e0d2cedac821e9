package appointments

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/clinic-booking/internal/http/httpjson"
	"github.com/wolfman30/clinic-booking/internal/identity"
	"github.com/wolfman30/clinic-booking/pkg/logging"
)

// Handler handles HTTP requests for appointments
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new appointments handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// List handles GET /api/appointments.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity.FromContext(r.Context())
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	appts, err := h.service.List(r.Context(), caller)
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err, "user_id", caller.UserID)
		httpjson.Error(w, http.StatusInternalServerError, "Failed to list appointments")
		return
	}
	httpjson.Write(w, http.StatusOK, appts)
}

// Create handles POST /api/appointments.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity.FromContext(r.Context())
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	var req CreateRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	appt, err := h.service.Book(r.Context(), caller, req)
	if err != nil {
		h.writeServiceError(w, err, "Failed to book appointment")
		return
	}
	httpjson.Write(w, http.StatusCreated, httpjson.MessageBody{
		Message: "Appointment booked successfully",
		ID:      appt.ID,
	})
}

// Update handles PUT /api/appointments/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity.FromContext(r.Context())
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	id, ok := appointmentID(w, r)
	if !ok {
		return
	}
	var req UpdateRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.UpdateStatus(r.Context(), caller, id, req); err != nil {
		h.writeServiceError(w, err, "Failed to update appointment")
		return
	}
	httpjson.Message(w, http.StatusOK, "Appointment updated successfully")
}

// Delete handles DELETE /api/appointments/{id}: pending appointments are
// canceled, anything else is deleted.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity.FromContext(r.Context())
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	id, ok := appointmentID(w, r)
	if !ok {
		return
	}

	outcome, err := h.service.Remove(r.Context(), caller, id)
	if err != nil {
		h.writeServiceError(w, err, "Failed to remove appointment")
		return
	}
	msg := "Appointment record deleted successfully"
	if outcome == OutcomeCanceled {
		msg = "Appointment canceled successfully"
	}
	httpjson.Message(w, http.StatusOK, msg)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrForbidden):
		httpjson.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrNotFound):
		httpjson.Error(w, http.StatusNotFound, "Appointment not found")
	case IsValidation(err):
		httpjson.Error(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error(fallback, "error", err)
		httpjson.Error(w, http.StatusInternalServerError, fallback)
	}
}

func appointmentID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpjson.Error(w, http.StatusBadRequest, "Invalid appointment id")
		return 0, false
	}
	return id, true
}
