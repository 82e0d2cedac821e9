package users

import (
	"context"
	"errors"

	"github.com/wolfman30/clinic-booking/internal/identity"
)

// DefaultAccount is a staff account created at startup when missing.
type DefaultAccount struct {
	FullName string
	Email    string
	Password string
	Role     identity.Role
}

// DefaultAccounts are the bootstrap staff logins of a fresh install.
var DefaultAccounts = []DefaultAccount{
	{FullName: "Super Admin", Email: "superadmin@clinic.com", Password: "admin123", Role: identity.RoleSuperAdmin},
	{FullName: "Clinic Admin", Email: "admin@clinic.com", Password: "admin123", Role: identity.RoleAdmin},
}

// SeedDefaults creates each account whose email is not registered yet and
// returns how many were created.
func (s *Service) SeedDefaults(ctx context.Context, accounts []DefaultAccount) (int, error) {
	created := 0
	for _, acct := range accounts {
		_, err := s.repo.GetByEmail(ctx, acct.Email)
		if err == nil {
			s.logger.Debug("default user already exists", "email", acct.Email)
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return created, err
		}
		req := RegisterRequest{FullName: acct.FullName, Email: acct.Email, Password: acct.Password}
		if err := req.Normalize(); err != nil {
			return created, err
		}
		if _, err := s.create(ctx, req, acct.Role); err != nil {
			if errors.Is(err, ErrEmailTaken) {
				continue
			}
			return created, err
		}
		created++
	}
	return created, nil
}
