package users

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/wolfman30/clinic-booking/internal/identity"
	"github.com/wolfman30/clinic-booking/pkg/logging"
)

type stubIssuer struct {
	issued []identity.Identity
	err    error
}

func (s *stubIssuer) Issue(id identity.Identity) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.issued = append(s.issued, id)
	return "token-for-" + id.FullName, nil
}

var superAdmin = identity.Identity{UserID: 1, Role: identity.RoleSuperAdmin, FullName: "Super Admin"}

func newTestService() (*Service, *InMemoryRepository, *stubIssuer) {
	repo := NewInMemoryRepository()
	issuer := &stubIssuer{}
	svc := NewService(repo, issuer, logging.New("error")).WithHashCost(bcrypt.MinCost)
	return svc, repo, issuer
}

func TestRegisterAndLogin(t *testing.T) {
	svc, repo, issuer := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{FullName: " Maria Santos ", Email: "Maria@School.EDU", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, identity.RoleStudent, user.Role)
	assert.Equal(t, "maria@school.edu", user.Email)

	stored, err := repo.GetByEmail(ctx, "maria@school.edu")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.PasswordHash)

	resp, err := svc.Login(ctx, LoginRequest{Email: "maria@school.edu", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "token-for-Maria Santos", resp.Token)
	assert.Equal(t, identity.RoleStudent, resp.Role)
	assert.Equal(t, user.ID, resp.UserID)
	require.Len(t, issuer.issued, 1)

	_, err = svc.Login(ctx, LoginRequest{Email: "maria@school.edu", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, LoginRequest{Email: "nobody@school.edu", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{FullName: "", Email: "a@b.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidName)
	_, err = svc.Register(ctx, RegisterRequest{FullName: "A", Email: "not-an-email", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidEmail)
	_, err = svc.Register(ctx, RegisterRequest{FullName: "A", Email: "a@b.com", Password: "123"})
	assert.ErrorIs(t, err, ErrInvalidPassword)

	_, err = svc.Register(ctx, RegisterRequest{FullName: "A", Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterRequest{FullName: "B", Email: "A@b.com", Password: "secret2"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin_IssuerFailure(t *testing.T) {
	svc, _, issuer := newTestService()
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterRequest{FullName: "A", Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)

	issuer.err = errors.New("signing broke")
	_, err = svc.Login(ctx, LoginRequest{Email: "a@b.com", Password: "secret1"})
	assert.EqualError(t, err, "signing broke")
}

func TestStaffManagement(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{FullName: "Student", Email: "s@school.edu", Password: "secret1"})
	require.NoError(t, err)

	req := CreateStaffRequest{
		RegisterRequest: RegisterRequest{FullName: "Nurse Joy", Email: "joy@clinic.com", Password: "secret1"},
		Role:            identity.RoleAdmin,
	}
	_, err = svc.CreateStaff(ctx, identity.Identity{UserID: 9, Role: identity.RoleAdmin}, req)
	assert.ErrorIs(t, err, ErrForbidden)

	bad := req
	bad.Role = identity.RoleStudent
	_, err = svc.CreateStaff(ctx, superAdmin, bad)
	assert.ErrorIs(t, err, ErrInvalidRole)

	admin, err := svc.CreateStaff(ctx, superAdmin, req)
	require.NoError(t, err)
	assert.Equal(t, identity.RoleAdmin, admin.Role)
	assert.Equal(t, int64(2), admin.ID)

	staff, err := svc.ListStaff(ctx, superAdmin)
	require.NoError(t, err)
	require.Len(t, staff, 1)
	assert.Equal(t, "joy@clinic.com", staff[0].Email)

	_, err = svc.ListStaff(ctx, identity.Identity{UserID: 3, Role: identity.RoleStudent})
	assert.ErrorIs(t, err, ErrForbidden)

	assert.ErrorIs(t, svc.Delete(ctx, superAdmin, superAdmin.UserID), ErrSelfDelete)
	require.NoError(t, svc.Delete(ctx, superAdmin, admin.ID))
	assert.ErrorIs(t, svc.Delete(ctx, superAdmin, admin.ID), ErrNotFound)
}

func TestSeedDefaults(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	created, err := svc.SeedDefaults(ctx, DefaultAccounts)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	created, err = svc.SeedDefaults(ctx, DefaultAccounts)
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	super, err := repo.GetByEmail(ctx, "superadmin@clinic.com")
	require.NoError(t, err)
	assert.Equal(t, identity.RoleSuperAdmin, super.Role)

	resp, err := svc.Login(ctx, LoginRequest{Email: "admin@clinic.com", Password: "admin123"})
	require.NoError(t, err)
	assert.Equal(t, identity.RoleAdmin, resp.Role)
}
