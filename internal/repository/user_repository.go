package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kisanlink/agrimandi/internal/model"
)

// UserRepository provides access to user accounts.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new user repository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// UpsertByPhone returns the user for a phone number, creating the row on
// first successful OTP verification. New accounts default to the farmer role.
func (r *UserRepository) UpsertByPhone(ctx context.Context, phone string) (*model.User, error) {
	query := `
		INSERT INTO users (phone, role)
		VALUES ($1, 'farmer')
		ON CONFLICT (phone) DO UPDATE SET updated_at = NOW()
		RETURNING id, phone, COALESCE(name, ''), COALESCE(district, ''), COALESCE(state, ''),
		          role, created_at, updated_at
	`

	u := &model.User{}
	err := r.pool.QueryRow(ctx, query, phone).Scan(
		&u.ID, &u.Phone, &u.Name, &u.District, &u.State,
		&u.Role, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert user by phone: %w", err)
	}
	return u, nil
}

// GetByID fetches a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `
		SELECT id, phone, COALESCE(name, ''), COALESCE(district, ''), COALESCE(state, ''),
		       role, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	u := &model.User{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Phone, &u.Name, &u.District, &u.State,
		&u.Role, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

// UpdateProfile sets the optional profile fields on a user.
func (r *UserRepository) UpdateProfile(ctx context.Context, id int64, name, district, state string) error {
	query := `
		UPDATE users
		SET name = NULLIF($2, ''), district = NULLIF($3, ''), state = NULLIF($4, ''),
		    updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.pool.Exec(ctx, query, id, name, district, state)
	if err != nil {
		return fmt.Errorf("update user %d profile: %w", id, err)
	}
	return nil
}
