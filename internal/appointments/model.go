package appointments

import (
	"strings"
	"time"
)

const (
	// DateLayout is the wire and storage format of appointment dates.
	DateLayout = "2006-01-02"
	// TimeLayout is the wire and storage format of appointment times.
	TimeLayout = "15:04:05"
)

// ServiceType is the kind of clinic visit requested.
type ServiceType string

const (
	ServiceConsultation ServiceType = "Medical Consultation"
	ServiceClearance    ServiceType = "Medical Clearance"
)

// Valid reports whether s is a service the clinic offers.
func (s ServiceType) Valid() bool {
	return s == ServiceConsultation || s == ServiceClearance
}

// Urgency is the triage level chosen by the student.
type Urgency string

const (
	UrgencyNormal Urgency = "Normal"
	UrgencyUrgent Urgency = "Urgent"
)

// Valid reports whether u is a known urgency.
func (u Urgency) Valid() bool {
	return u == UrgencyNormal || u == UrgencyUrgent
}

// Status is the review state of an appointment.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusFinished Status = "finished"
	StatusCanceled Status = "canceled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusFinished, StatusCanceled:
		return true
	}
	return false
}

// BookingMode records how an appointment was created.
type BookingMode string

const (
	BookingModeStandard BookingMode = "standard"
	BookingModeChatbot  BookingMode = "chatbot"
)

// Valid reports whether m is a known provenance tag.
func (m BookingMode) Valid() bool {
	return m == BookingModeStandard || m == BookingModeChatbot
}

// Appointment is a stored clinic booking.
type Appointment struct {
	ID              int64       `json:"id"`
	StudentID       int64       `json:"student_id"`
	StudentName     string      `json:"student_name,omitempty"`
	StudentEmail    string      `json:"student_email,omitempty"`
	AppointmentDate string      `json:"appointment_date"`
	AppointmentTime string      `json:"appointment_time"`
	ServiceType     ServiceType `json:"service_type"`
	Urgency         Urgency     `json:"urgency"`
	Reason          string      `json:"reason"`
	BookingMode     BookingMode `json:"booking_mode"`
	Status          Status      `json:"status"`
	AdminNote       *string     `json:"admin_note"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// CreateRequest is the body of a booking.
type CreateRequest struct {
	AppointmentDate string      `json:"appointment_date"`
	AppointmentTime string      `json:"appointment_time"`
	ServiceType     ServiceType `json:"service_type"`
	Urgency         Urgency     `json:"urgency"`
	Reason          string      `json:"reason"`
	BookingMode     BookingMode `json:"booking_mode"`
}

// Normalize validates the request against today's date and rewrites the date,
// time and booking mode into their canonical forms.
func (r *CreateRequest) Normalize(today time.Time) error {
	if !r.ServiceType.Valid() {
		return ErrInvalidServiceType
	}
	if !r.Urgency.Valid() {
		return ErrInvalidUrgency
	}
	date, err := ParseDate(r.AppointmentDate, today)
	if err != nil {
		return err
	}
	clock, err := NormalizeTime(r.AppointmentTime)
	if err != nil {
		return err
	}
	r.Reason = strings.TrimSpace(r.Reason)
	if r.Reason == "" {
		return ErrMissingReason
	}
	if r.BookingMode == "" {
		r.BookingMode = BookingModeStandard
	}
	if !r.BookingMode.Valid() {
		return ErrInvalidBookingMode
	}
	r.AppointmentDate = date.Format(DateLayout)
	r.AppointmentTime = clock
	return nil
}

// UpdateRequest is the body of an admin status change.
type UpdateRequest struct {
	Status    Status  `json:"status"`
	AdminNote *string `json:"admin_note"`
}

// ListFilter scopes a listing. A zero StudentID lists every student.
type ListFilter struct {
	StudentID int64
}

// ParseDate parses a YYYY-MM-DD date and rejects days before today.
func ParseDate(value string, today time.Time) (time.Time, error) {
	date, err := time.ParseInLocation(DateLayout, strings.TrimSpace(value), today.Location())
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	if date.Before(StartOfDay(today)) {
		return time.Time{}, ErrPastDate
	}
	return date, nil
}

// NormalizeTime accepts HH:MM or HH:MM:SS (24 hour) and returns HH:MM:SS.
func NormalizeTime(value string) (string, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{TimeLayout, "15:04"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(TimeLayout), nil
		}
	}
	return "", ErrInvalidTime
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// FormatClock renders an HH:MM:SS time as a 12-hour clock, e.g. "2:00 PM".
func FormatClock(value string) string {
	t, err := time.Parse(TimeLayout, value)
	if err != nil {
		return value
	}
	return t.Format("3:04 PM")
}

// FormatDay renders a YYYY-MM-DD date as e.g. "Tuesday, October 20, 2026".
func FormatDay(value string) string {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return value
	}
	return t.Format("Monday, January 2, 2006")
}
