package users

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/wolfman30/clinic-booking/internal/identity"
	"github.com/wolfman30/clinic-booking/pkg/logging"
)

// TokenIssuer signs bearer tokens for authenticated users.
type TokenIssuer interface {
	Issue(id identity.Identity) (string, error)
}

// Service implements registration, login and staff account management.
type Service struct {
	repo     Repository
	tokens   TokenIssuer
	logger   *logging.Logger
	hashCost int
}

// NewService constructs a users service.
func NewService(repo Repository, tokens TokenIssuer, logger *logging.Logger) *Service {
	if repo == nil {
		panic("users: repository required")
	}
	if tokens == nil {
		panic("users: token issuer required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, tokens: tokens, logger: logger, hashCost: bcrypt.DefaultCost}
}

// WithHashCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (s *Service) WithHashCost(cost int) *Service {
	s.hashCost = cost
	return s
}

// Register creates a student account.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if err := req.Normalize(); err != nil {
		return nil, err
	}
	return s.create(ctx, req, identity.RoleStudent)
}

// CreateStaff creates an admin or super admin account. Only super admins may.
func (s *Service) CreateStaff(ctx context.Context, caller identity.Identity, req CreateStaffRequest) (*User, error) {
	if caller.Role != identity.RoleSuperAdmin {
		return nil, ErrForbidden
	}
	if err := req.Normalize(); err != nil {
		return nil, err
	}
	return s.create(ctx, req.RegisterRequest, req.Role)
}

func (s *Service) create(ctx context.Context, req RegisterRequest, role identity.Role) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("users: hash password: %w", err)
	}
	user, err := s.repo.Create(ctx, NewUser{
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("user created", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// Login checks credentials and issues a token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Identity())
	if err != nil {
		return nil, err
	}
	return &LoginResponse{Token: token, Role: user.Role, UserID: user.ID, FullName: user.FullName}, nil
}

// ListStaff returns admin and super admin accounts. Only super admins may.
func (s *Service) ListStaff(ctx context.Context, caller identity.Identity) ([]*User, error) {
	if caller.Role != identity.RoleSuperAdmin {
		return nil, ErrForbidden
	}
	return s.repo.ListByRoles(ctx, identity.RoleAdmin, identity.RoleSuperAdmin)
}

// Delete removes an account. Super admins cannot delete themselves.
func (s *Service) Delete(ctx context.Context, caller identity.Identity, id int64) error {
	if caller.Role != identity.RoleSuperAdmin {
		return ErrForbidden
	}
	if caller.UserID == id {
		return ErrSelfDelete
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", "user_id", id, "by", caller.UserID)
	return nil
}
