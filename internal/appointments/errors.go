package appointments

import "errors"

var (
	// ErrNotFound is returned when an appointment does not exist
	ErrNotFound = errors.New("appointment not found")

	// ErrForbidden is returned when the caller's role or ownership does not allow the operation
	ErrForbidden = errors.New("not authorized")

	ErrInvalidServiceType = errors.New("service_type must be Medical Consultation or Medical Clearance")
	ErrInvalidUrgency     = errors.New("urgency must be Normal or Urgent")
	ErrInvalidDate        = errors.New("appointment_date must be YYYY-MM-DD")
	ErrPastDate           = errors.New("appointment_date cannot be in the past")
	ErrInvalidTime        = errors.New("appointment_time must be HH:MM or HH:MM:SS")
	ErrMissingReason      = errors.New("reason is required")
	ErrInvalidBookingMode = errors.New("booking_mode must be standard or chatbot")
	ErrInvalidStatus      = errors.New("invalid status")
)

var validationErrors = []error{
	ErrInvalidServiceType,
	ErrInvalidUrgency,
	ErrInvalidDate,
	ErrPastDate,
	ErrInvalidTime,
	ErrMissingReason,
	ErrInvalidBookingMode,
	ErrInvalidStatus,
}

// IsValidation reports whether err came from request validation.
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
