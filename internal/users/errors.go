package users

import "errors"

var (
	// ErrNotFound is returned when a user does not exist
	ErrNotFound = errors.New("user not found")

	// ErrEmailTaken is returned when registering an email that already has an account
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned for an unknown email or wrong password
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrForbidden is returned when the caller may not manage accounts
	ErrForbidden = errors.New("only super admins can manage admin accounts")

	// ErrSelfDelete is returned when a super admin tries to delete their own account
	ErrSelfDelete = errors.New("you cannot delete your own account")

	ErrInvalidName     = errors.New("full_name is required")
	ErrInvalidEmail    = errors.New("a valid email is required")
	ErrInvalidPassword = errors.New("password must be at least 6 characters")
	ErrInvalidRole     = errors.New("invalid role specified")
)

// IsValidation reports whether err came from request validation.
func IsValidation(err error) bool {
	for _, target := range []error{ErrInvalidName, ErrInvalidEmail, ErrInvalidPassword, ErrInvalidRole} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
