package identity

import "context"

// Role is the capability attached to an authenticated user.
type Role string

const (
	RoleStudent    Role = "student"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// CanBook reports whether the role may request appointments.
func (r Role) CanBook() bool { return r == RoleStudent }

// IsStaff reports whether the role may manage appointments.
func (r Role) IsStaff() bool { return r == RoleAdmin || r == RoleSuperAdmin }

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID   int64
	Role     Role
	FullName string
}

type ctxKey string

const identityKey ctxKey = "clinic.identity"

// WithIdentity stores the caller identity in context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext extracts the caller identity if present.
func FromContext(ctx context.Context) (Identity, bool) {
	val := ctx.Value(identityKey)
	if val == nil {
		return Identity{}, false
	}
	id, ok := val.(Identity)
	return id, ok && id.UserID != 0
}
