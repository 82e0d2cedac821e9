package chatbot

import (
	"strings"
	"time"

	"github.com/wolfman30/clinic-booking/internal/appointments"
)

// Step is where a user's booking conversation currently stands.
type Step string

const (
	StepIdle          Step = "idle"
	StepAskingService Step = "asking_service"
	StepAskingDate    Step = "asking_date"
	StepAskingTime    Step = "asking_time"
	StepAskingUrgency Step = "asking_urgency"
	StepAskingReason  Step = "asking_reason"
	StepSaving        Step = "saving"
)

// Valid reports whether s is one of the known steps.
func (s Step) Valid() bool {
	switch s {
	case StepIdle, StepAskingService, StepAskingDate, StepAskingTime, StepAskingUrgency, StepAskingReason, StepSaving:
		return true
	}
	return false
}

// Field is one slot of a booking request.
type Field int

const (
	FieldService Field = iota
	FieldDate
	FieldTime
	FieldUrgency
	FieldReason
)

// requiredFields is the order slots are asked in.
var requiredFields = []Field{FieldService, FieldDate, FieldTime, FieldUrgency, FieldReason}

func (f Field) String() string {
	switch f {
	case FieldService:
		return "service_type"
	case FieldDate:
		return "appointment_date"
	case FieldTime:
		return "appointment_time"
	case FieldUrgency:
		return "urgency"
	case FieldReason:
		return "reason"
	}
	return "unknown"
}

// askingStep is the step that waits for f.
func (f Field) askingStep() Step {
	switch f {
	case FieldService:
		return StepAskingService
	case FieldDate:
		return StepAskingDate
	case FieldTime:
		return StepAskingTime
	case FieldUrgency:
		return StepAskingUrgency
	default:
		return StepAskingReason
	}
}

// BookingData is the partially filled request. Empty strings mean "not yet provided".
type BookingData struct {
	ServiceType appointments.ServiceType `json:"service_type,omitempty"`
	Date        string                   `json:"appointment_date,omitempty"`
	Time        string                   `json:"appointment_time,omitempty"`
	Urgency     appointments.Urgency     `json:"urgency,omitempty"`
	Reason      string                   `json:"reason,omitempty"`
}

// IsEmpty reports whether no slot has been filled.
func (d BookingData) IsEmpty() bool {
	return d == BookingData{}
}

// Merge overwrites d with every slot that is set in found.
func (d *BookingData) Merge(found BookingData) {
	if found.ServiceType != "" {
		d.ServiceType = found.ServiceType
	}
	if found.Date != "" {
		d.Date = found.Date
	}
	if found.Time != "" {
		d.Time = found.Time
	}
	if found.Urgency != "" {
		d.Urgency = found.Urgency
	}
	if found.Reason != "" {
		d.Reason = found.Reason
	}
}

// valid reports whether slot f holds an acceptable value as of today.
func (d BookingData) valid(f Field, today time.Time) bool {
	switch f {
	case FieldService:
		return d.ServiceType.Valid()
	case FieldDate:
		_, err := appointments.ParseDate(d.Date, today)
		return err == nil
	case FieldTime:
		normalized, err := appointments.NormalizeTime(d.Time)
		return err == nil && normalized == d.Time
	case FieldUrgency:
		return d.Urgency.Valid()
	case FieldReason:
		return strings.TrimSpace(d.Reason) != ""
	}
	return false
}

// firstMissing returns the first slot, in asking order, that is absent or no
// longer valid. ok is false when the request is complete.
func (d BookingData) firstMissing(today time.Time) (Field, bool) {
	for _, f := range requiredFields {
		if !d.valid(f, today) {
			return f, true
		}
	}
	return 0, false
}

// State is one user's conversation.
type State struct {
	Step Step        `json:"step"`
	Data BookingData `json:"data"`
}

// NewState returns the initial {idle, {}} state.
func NewState() State {
	return State{Step: StepIdle}
}
