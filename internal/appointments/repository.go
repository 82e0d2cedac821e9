package appointments

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Repository defines the interface for appointment storage
type Repository interface {
	Create(ctx context.Context, studentID int64, req *CreateRequest) (*Appointment, error)
	GetByID(ctx context.Context, id int64) (*Appointment, error)
	List(ctx context.Context, filter ListFilter) ([]*Appointment, error)
	UpdateStatus(ctx context.Context, id int64, status Status, adminNote *string) error
	Delete(ctx context.Context, id int64) error
}

// InMemoryRepository keeps appointments in process memory. It backs local
// development when no DATABASE_URL is configured, and tests.
type InMemoryRepository struct {
	mu           sync.RWMutex
	nextID       int64
	appointments map[int64]*Appointment
	now          func() time.Time
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		appointments: make(map[int64]*Appointment),
		now:          time.Now,
	}
}

// Create stores a pending appointment.
func (r *InMemoryRepository) Create(_ context.Context, studentID int64, req *CreateRequest) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	now := r.now().UTC()
	appt := &Appointment{
		ID:              r.nextID,
		StudentID:       studentID,
		AppointmentDate: req.AppointmentDate,
		AppointmentTime: req.AppointmentTime,
		ServiceType:     req.ServiceType,
		Urgency:         req.Urgency,
		Reason:          req.Reason,
		BookingMode:     req.BookingMode,
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	r.appointments[appt.ID] = appt

	copied := *appt
	return &copied, nil
}

// GetByID returns a copy of the appointment.
func (r *InMemoryRepository) GetByID(_ context.Context, id int64) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	appt, ok := r.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *appt
	return &copied, nil
}

// List returns appointments newest slot first.
func (r *InMemoryRepository) List(_ context.Context, filter ListFilter) ([]*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Appointment, 0, len(r.appointments))
	for _, appt := range r.appointments {
		if filter.StudentID != 0 && appt.StudentID != filter.StudentID {
			continue
		}
		copied := *appt
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AppointmentDate != out[j].AppointmentDate {
			return out[i].AppointmentDate > out[j].AppointmentDate
		}
		if out[i].AppointmentTime != out[j].AppointmentTime {
			return out[i].AppointmentTime > out[j].AppointmentTime
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// UpdateStatus sets the review status and note.
func (r *InMemoryRepository) UpdateStatus(_ context.Context, id int64, status Status, adminNote *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.appointments[id]
	if !ok {
		return ErrNotFound
	}
	appt.Status = status
	appt.AdminNote = adminNote
	appt.UpdatedAt = r.now().UTC()
	return nil
}

// Delete removes the appointment.
func (r *InMemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.appointments[id]; !ok {
		return ErrNotFound
	}
	delete(r.appointments, id)
	return nil
}
