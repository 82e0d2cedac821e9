package users

import (
	"net/mail"
	"strings"
	"time"

	"github.com/wolfman30/clinic-booking/internal/identity"
)

const minPasswordLength = 6

// User is a stored account. PasswordHash never leaves the service.
type User struct {
	ID           int64         `json:"id"`
	FullName     string        `json:"full_name"`
	Email        string        `json:"email"`
	Role         identity.Role `json:"role"`
	PasswordHash string        `json:"-"`
	CreatedAt    time.Time     `json:"created_at"`
}

// Identity returns the token identity of the user.
func (u *User) Identity() identity.Identity {
	return identity.Identity{UserID: u.ID, Role: u.Role, FullName: u.FullName}
}

// RegisterRequest is the body of a student self-registration.
type RegisterRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Normalize trims and validates the request.
func (r *RegisterRequest) Normalize() error {
	r.FullName = strings.TrimSpace(r.FullName)
	if r.FullName == "" {
		return ErrInvalidName
	}
	email, err := normalizeEmail(r.Email)
	if err != nil {
		return err
	}
	r.Email = email
	if len(r.Password) < minPasswordLength {
		return ErrInvalidPassword
	}
	return nil
}

// CreateStaffRequest is the body of a super-admin account creation.
type CreateStaffRequest struct {
	RegisterRequest
	Role identity.Role `json:"role"`
}

// Normalize validates the embedded fields and the staff role.
func (r *CreateStaffRequest) Normalize() error {
	if err := r.RegisterRequest.Normalize(); err != nil {
		return err
	}
	if !r.Role.IsStaff() {
		return ErrInvalidRole
	}
	return nil
}

// LoginRequest is the body of a login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned on successful login.
type LoginResponse struct {
	Token    string        `json:"token"`
	Role     identity.Role `json:"role"`
	UserID   int64         `json:"user_id"`
	FullName string        `json:"full_name"`
}

// NewUser is what the repository persists.
type NewUser struct {
	FullName     string
	Email        string
	PasswordHash string
	Role         identity.Role
}

func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil || addr.Name != "" {
		return "", ErrInvalidEmail
	}
	return strings.ToLower(addr.Address), nil
}
