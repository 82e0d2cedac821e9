package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wolfman30/clinic-booking/internal/identity"
)

const uniqueViolation = "23505"

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores accounts in the users table.
type PostgresRepository struct {
	db pgxQuerier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("users: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func newPostgresRepositoryWithQuerier(db pgxQuerier) *PostgresRepository {
	if db == nil {
		panic("users: querier required")
	}
	return &PostgresRepository{db: db}
}

// Create inserts an account.
func (r *PostgresRepository) Create(ctx context.Context, nu NewUser) (*User, error) {
	query := `
		INSERT INTO users (full_name, email, password, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	user := &User{FullName: nu.FullName, Email: nu.Email, Role: nu.Role, PasswordHash: nu.PasswordHash}
	if err := r.db.QueryRow(ctx, query, nu.FullName, nu.Email, nu.PasswordHash, string(nu.Role)).
		Scan(&user.ID, &user.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("users: insert failed: %w", err)
	}
	return user, nil
}

// GetByEmail fetches an account with its password hash.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, full_name, email, password, role, created_at
		FROM users
		WHERE email = $1
	`
	var user User
	var role string
	if err := r.db.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.FullName,
		&user.Email,
		&user.PasswordHash,
		&role,
		&user.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("users: select failed: %w", err)
	}
	user.Role = identity.Role(role)
	return &user, nil
}

// ListByRoles returns accounts holding any of the roles, oldest first.
func (r *PostgresRepository) ListByRoles(ctx context.Context, roles ...identity.Role) ([]*User, error) {
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, string(role))
	}
	query := `
		SELECT id, full_name, email, role, created_at
		FROM users
		WHERE role = ANY($1)
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query, names)
	if err != nil {
		return nil, fmt.Errorf("users: list failed: %w", err)
	}
	defer rows.Close()

	out := make([]*User, 0)
	for rows.Next() {
		var user User
		var role string
		if err := rows.Scan(&user.ID, &user.FullName, &user.Email, &role, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("users: scan failed: %w", err)
		}
		user.Role = identity.Role(role)
		out = append(out, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("users: list failed: %w", err)
	}
	return out, nil
}

// Delete removes the account. Appointments cascade in the schema.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("users: delete failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
