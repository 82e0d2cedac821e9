package chatbot

import (
	"context"

	"github.com/wolfman30/clinic-booking/internal/appointments"
	"github.com/wolfman30/clinic-booking/internal/identity"
)

// BookingRequest is a complete booking collected by the assistant.
type BookingRequest struct {
	Owner       identity.Identity
	Date        string
	Time        string
	ServiceType appointments.ServiceType
	Urgency     appointments.Urgency
	Reason      string
}

func newBookingRequest(owner identity.Identity, d BookingData) BookingRequest {
	return BookingRequest{
		Owner:       owner,
		Date:        d.Date,
		Time:        d.Time,
		ServiceType: d.ServiceType,
		Urgency:     d.Urgency,
		Reason:      d.Reason,
	}
}

// Committer persists a finished booking. It is called at most once per
// completed conversation and is never retried.
type Committer interface {
	Commit(ctx context.Context, req BookingRequest) error
}

// CommitterFunc adapts a function to Committer.
type CommitterFunc func(ctx context.Context, req BookingRequest) error

func (f CommitterFunc) Commit(ctx context.Context, req BookingRequest) error {
	return f(ctx, req)
}

// AppointmentBooker is the slice of appointments.Service the committer needs.
type AppointmentBooker interface {
	Book(ctx context.Context, caller identity.Identity, req appointments.CreateRequest) (*appointments.Appointment, error)
}

// AppointmentCommitter stores assistant bookings as pending appointments
// tagged with the chatbot booking mode.
type AppointmentCommitter struct {
	booker AppointmentBooker
}

func NewAppointmentCommitter(booker AppointmentBooker) *AppointmentCommitter {
	if booker == nil {
		panic("chatbot: appointment booker required")
	}
	return &AppointmentCommitter{booker: booker}
}

func (c *AppointmentCommitter) Commit(ctx context.Context, req BookingRequest) error {
	_, err := c.booker.Book(ctx, req.Owner, appointments.CreateRequest{
		AppointmentDate: req.Date,
		AppointmentTime: req.Time,
		ServiceType:     req.ServiceType,
		Urgency:         req.Urgency,
		Reason:          req.Reason,
		BookingMode:     appointments.BookingModeChatbot,
	})
	return err
}
