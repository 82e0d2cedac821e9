package appointments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/clinic-booking/internal/identity"
	"github.com/wolfman30/clinic-booking/pkg/logging"
)

var (
	student      = identity.Identity{UserID: 10, Role: identity.RoleStudent, FullName: "Student One"}
	otherStudent = identity.Identity{UserID: 11, Role: identity.RoleStudent, FullName: "Student Two"}
	admin        = identity.Identity{UserID: 2, Role: identity.RoleAdmin, FullName: "Clinic Admin"}
)

func newTestService() (*Service, *InMemoryRepository) {
	repo := NewInMemoryRepository()
	svc := NewService(repo, logging.New("error")).WithClock(func() time.Time { return testToday })
	return svc, repo
}

func TestServiceBook(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	appt, err := svc.Book(ctx, student, validRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(1), appt.ID)
	assert.Equal(t, student.UserID, appt.StudentID)
	assert.Equal(t, StatusPending, appt.Status)
	assert.Equal(t, BookingModeStandard, appt.BookingMode)
	assert.Equal(t, "14:00:00", appt.AppointmentTime)
}

func TestServiceBook_OnlyStudents(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Book(context.Background(), admin, validRequest())
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestServiceList_ScopesStudents(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Book(ctx, student, validRequest())
	require.NoError(t, err)
	later := validRequest()
	later.AppointmentDate = "2026-11-02"
	_, err = svc.Book(ctx, otherStudent, later)
	require.NoError(t, err)

	mine, err := svc.List(ctx, student)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, student.UserID, mine[0].StudentID)

	all, err := svc.List(ctx, admin)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "2026-11-02", all[0].AppointmentDate, "newest slot first")
}

func TestServiceUpdateStatus(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	appt, err := svc.Book(ctx, student, validRequest())
	require.NoError(t, err)

	note := "bring your school ID"
	require.NoError(t, svc.UpdateStatus(ctx, admin, appt.ID, UpdateRequest{Status: StatusApproved, AdminNote: &note}))

	stored, err := repo.GetByID(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, stored.Status)
	require.NotNil(t, stored.AdminNote)
	assert.Equal(t, note, *stored.AdminNote)

	assert.ErrorIs(t, svc.UpdateStatus(ctx, student, appt.ID, UpdateRequest{Status: StatusApproved}), ErrForbidden)
	assert.ErrorIs(t, svc.UpdateStatus(ctx, admin, appt.ID, UpdateRequest{Status: "lost"}), ErrInvalidStatus)
	assert.ErrorIs(t, svc.UpdateStatus(ctx, admin, 999, UpdateRequest{Status: StatusRejected}), ErrNotFound)
}

func TestServiceRemove_CancelsPendingThenDeletes(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	appt, err := svc.Book(ctx, student, validRequest())
	require.NoError(t, err)

	_, err = svc.Remove(ctx, otherStudent, appt.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	outcome, err := svc.Remove(ctx, student, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCanceled, outcome)
	stored, err := repo.GetByID(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCanceled, stored.Status)

	outcome, err = svc.Remove(ctx, admin, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDeleted, outcome)
	_, err = repo.GetByID(ctx, appt.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Remove(ctx, admin, appt.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
