package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"echopub/internal/core/domain"
	"echopub/internal/core/port"
)

// UserRepository implements port.UserRepository using pgxpool.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.pool.QueryRow(ctx, `SELECT id, name, email, phone, role, balance, view_average,
    country_code, city, region, created_at, updated_at
FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Role, &u.Balance, &u.ViewAverage,
			&u.CountryCode, &u.City, &u.Region, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, port.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) SetViewAverage(ctx context.Context, userID string, average int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET view_average = $2, updated_at = now() WHERE id = $1`, userID, average)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return port.ErrUserNotFound
	}
	return nil
}
