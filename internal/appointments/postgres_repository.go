package appointments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores appointments in the relational database.
type PostgresRepository struct {
	db pgxQuerier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func newPostgresRepositoryWithQuerier(db pgxQuerier) *PostgresRepository {
	if db == nil {
		panic("appointments: querier required")
	}
	return &PostgresRepository{db: db}
}

const appointmentColumns = `
	a.id, a.student_id, u.full_name, u.email,
	a.appointment_date::text, a.appointment_time::text,
	a.service_type, a.urgency, a.reason, a.booking_mode, a.status, a.admin_note,
	a.created_at, a.updated_at`

// Create inserts a pending appointment.
func (r *PostgresRepository) Create(ctx context.Context, studentID int64, req *CreateRequest) (*Appointment, error) {
	query := `
		INSERT INTO appointments (student_id, appointment_date, appointment_time, service_type, urgency, reason, booking_mode, status)
		VALUES ($1, $2::date, $3::time, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	appt := &Appointment{
		StudentID:       studentID,
		AppointmentDate: req.AppointmentDate,
		AppointmentTime: req.AppointmentTime,
		ServiceType:     req.ServiceType,
		Urgency:         req.Urgency,
		Reason:          req.Reason,
		BookingMode:     req.BookingMode,
		Status:          StatusPending,
	}
	if err := r.db.QueryRow(ctx, query,
		studentID,
		req.AppointmentDate,
		req.AppointmentTime,
		string(req.ServiceType),
		string(req.Urgency),
		req.Reason,
		string(req.BookingMode),
		string(StatusPending),
	).Scan(&appt.ID, &appt.CreatedAt, &appt.UpdatedAt); err != nil {
		return nil, fmt.Errorf("appointments: insert failed: %w", err)
	}
	return appt, nil
}

// GetByID fetches one appointment with its student's name.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Appointment, error) {
	query := `SELECT` + appointmentColumns + `
		FROM appointments a
		JOIN users u ON a.student_id = u.id
		WHERE a.id = $1
	`
	appt, err := scanAppointment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("appointments: select failed: %w", err)
	}
	return appt, nil
}

// List returns appointments ordered by slot, newest first.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]*Appointment, error) {
	query := `SELECT` + appointmentColumns + `
		FROM appointments a
		JOIN users u ON a.student_id = u.id`
	var args []any
	if filter.StudentID != 0 {
		query += `
		WHERE a.student_id = $1`
		args = append(args, filter.StudentID)
	}
	query += `
		ORDER BY a.appointment_date DESC, a.appointment_time DESC, a.id DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("appointments: list failed: %w", err)
	}
	defer rows.Close()

	out := make([]*Appointment, 0)
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("appointments: scan failed: %w", err)
		}
		out = append(out, appt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: list failed: %w", err)
	}
	return out, nil
}

// UpdateStatus sets the review status and note.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id int64, status Status, adminNote *string) error {
	query := `
		UPDATE appointments
		SET status = $1, admin_note = $2, updated_at = NOW()
		WHERE id = $3
	`
	ct, err := r.db.Exec(ctx, query, string(status), adminNote, id)
	if err != nil {
		return fmt.Errorf("appointments: update failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the appointment row.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("appointments: delete failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var appt Appointment
	var service, urgency, mode, status string
	if err := row.Scan(
		&appt.ID,
		&appt.StudentID,
		&appt.StudentName,
		&appt.StudentEmail,
		&appt.AppointmentDate,
		&appt.AppointmentTime,
		&service,
		&urgency,
		&appt.Reason,
		&mode,
		&status,
		&appt.AdminNote,
		&appt.CreatedAt,
		&appt.UpdatedAt,
	); err != nil {
		return nil, err
	}
	appt.ServiceType = ServiceType(service)
	appt.Urgency = Urgency(urgency)
	appt.BookingMode = BookingMode(mode)
	appt.Status = Status(status)
	return &appt, nil
}
