package appointments

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/clinic-booking/internal/identity"
	"github.com/wolfman30/clinic-booking/pkg/logging"
)

var appointmentsTracer = otel.Tracer("clinic.internal.appointments")

// RemoveOutcome says what Remove did to the appointment.
type RemoveOutcome string

const (
	OutcomeCanceled RemoveOutcome = "canceled"
	OutcomeDeleted  RemoveOutcome = "deleted"
)

// Service applies role rules and validation on top of a Repository.
type Service struct {
	repo   Repository
	logger *logging.Logger
	now    func() time.Time
}

// NewService constructs an appointments service.
func NewService(repo Repository, logger *logging.Logger) *Service {
	if repo == nil {
		panic("appointments: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// WithClock overrides the clock used for past-date checks.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Book creates a pending appointment owned by the caller. Only students book.
func (s *Service) Book(ctx context.Context, caller identity.Identity, req CreateRequest) (*Appointment, error) {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.book")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("clinic.student_id", caller.UserID),
		attribute.String("clinic.booking_mode", string(req.BookingMode)),
	)

	if !caller.Role.CanBook() {
		return nil, fmt.Errorf("%w: only students can book appointments", ErrForbidden)
	}
	if err := req.Normalize(s.now()); err != nil {
		return nil, err
	}

	appt, err := s.repo.Create(ctx, caller.UserID, &req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.logger.Info("appointment booked",
		"appointment_id", appt.ID,
		"student_id", caller.UserID,
		"booking_mode", appt.BookingMode,
		"urgency", appt.Urgency,
	)
	return appt, nil
}

// List returns the caller's own appointments, or all of them for staff.
func (s *Service) List(ctx context.Context, caller identity.Identity) ([]*Appointment, error) {
	filter := ListFilter{}
	if !caller.Role.IsStaff() {
		filter.StudentID = caller.UserID
	}
	return s.repo.List(ctx, filter)
}

// UpdateStatus records an admin decision on an appointment.
func (s *Service) UpdateStatus(ctx context.Context, caller identity.Identity, id int64, req UpdateRequest) error {
	if !caller.Role.IsStaff() {
		return fmt.Errorf("%w: only admins can update appointments", ErrForbidden)
	}
	if !req.Status.Valid() {
		return ErrInvalidStatus
	}
	if err := s.repo.UpdateStatus(ctx, id, req.Status, req.AdminNote); err != nil {
		return err
	}
	s.logger.Info("appointment status updated", "appointment_id", id, "status", req.Status, "by", caller.UserID)
	return nil
}

// Remove cancels a pending appointment and hard-deletes any other. Students
// may only remove their own.
func (s *Service) Remove(ctx context.Context, caller identity.Identity, id int64) (RemoveOutcome, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if !caller.Role.IsStaff() && appt.StudentID != caller.UserID {
		return "", ErrForbidden
	}

	if appt.Status == StatusPending {
		if err := s.repo.UpdateStatus(ctx, id, StatusCanceled, appt.AdminNote); err != nil {
			return "", err
		}
		s.logger.Info("appointment canceled", "appointment_id", id, "by", caller.UserID)
		return OutcomeCanceled, nil
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return "", err
	}
	s.logger.Info("appointment deleted", "appointment_id", id, "by", caller.UserID)
	return OutcomeDeleted, nil
}
