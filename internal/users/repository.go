package users

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wolfman30/clinic-booking/internal/identity"
)

// Repository defines the interface for account storage
type Repository interface {
	Create(ctx context.Context, user NewUser) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ListByRoles(ctx context.Context, roles ...identity.Role) ([]*User, error)
	Delete(ctx context.Context, id int64) error
}

// InMemoryRepository keeps accounts in process memory for local runs and tests.
type InMemoryRepository struct {
	mu      sync.RWMutex
	nextID  int64
	byID    map[int64]*User
	byEmail map[string]int64
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byID:    make(map[int64]*User),
		byEmail: make(map[string]int64),
	}
}

// Create stores a new account, rejecting duplicate emails.
func (r *InMemoryRepository) Create(_ context.Context, nu NewUser) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[nu.Email]; exists {
		return nil, ErrEmailTaken
	}
	r.nextID++
	user := &User{
		ID:           r.nextID,
		FullName:     nu.FullName,
		Email:        nu.Email,
		Role:         nu.Role,
		PasswordHash: nu.PasswordHash,
		CreatedAt:    time.Now().UTC(),
	}
	r.byID[user.ID] = user
	r.byEmail[user.Email] = user.ID

	copied := *user
	return &copied, nil
}

// GetByEmail looks an account up by its normalized email.
func (r *InMemoryRepository) GetByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *r.byID[id]
	return &copied, nil
}

// ListByRoles returns accounts holding any of the roles, oldest first.
func (r *InMemoryRepository) ListByRoles(_ context.Context, roles ...identity.Role) ([]*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	want := make(map[identity.Role]bool, len(roles))
	for _, role := range roles {
		want[role] = true
	}
	out := make([]*User, 0)
	for _, user := range r.byID {
		if want[user.Role] {
			copied := *user
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Delete removes the account.
func (r *InMemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	delete(r.byEmail, user.Email)
	delete(r.byID, id)
	return nil
}
