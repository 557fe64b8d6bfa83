package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/pennywise-app/pennywise/internal/platform/db"
	"github.com/pennywise-app/pennywise/internal/shared"
)

const uniqueViolation = "23505"

// PostgresStore implements Store backed by PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs the live store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Mode reports the live persistence mode.
func (s *PostgresStore) Mode() Mode { return ModeLive }

// Close releases the connection pool.
func (s *PostgresStore) Close() { s.pool.Close() }

// FindByEmail fetches a user by email, case-insensitively.
func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	const query = `
		SELECT id, email, password_hash, name, age, is_active, created_at, updated_at
		FROM users
		WHERE lower(email) = lower($1)`

	user := &User{}
	err := s.pool.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Name,
		&user.Age, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("users: find by email: %w", err)
	}
	return user, nil
}

// CreateUserWithProfile inserts the user and its profile atomically.
func (s *PostgresStore) CreateUserWithProfile(ctx context.Context, params CreateUserParams) (*UserWithProfile, error) {
	now := time.Now().UTC()
	result := &UserWithProfile{
		User: User{
			ID:           uuid.NewString(),
			Email:        params.Email,
			PasswordHash: params.PasswordHash,
			Name:         params.Name,
			Age:          params.Age,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		MonthlyIncome: decimal.Zero,
		SpendingLimit: decimal.Zero,
	}

	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		const insertUser = `
			INSERT INTO users (id, email, password_hash, name, age, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`
		if _, err := tx.Exec(ctx, insertUser,
			result.ID, result.Email, result.PasswordHash, result.Name,
			result.Age, result.IsActive, now,
		); err != nil {
			return err
		}

		const insertProfile = `
			INSERT INTO user_profiles (user_id, monthly_income, spending_limit, created_at, updated_at)
			VALUES ($1, 0, 0, $2, $2)`
		_, err := tx.Exec(ctx, insertProfile, result.ID, now)
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, shared.ErrConflict
		}
		return nil, fmt.Errorf("users: create: %w", err)
	}
	return result, nil
}

// GetUserWithProfile performs the left join against the profile table,
// substituting zero defaults when no profile row exists. Inactive users
// are filtered out.
func (s *PostgresStore) GetUserWithProfile(ctx context.Context, id string) (*UserWithProfile, error) {
	const query = `
		SELECT u.id, u.email, u.password_hash, u.name, u.age, u.is_active,
		       u.created_at, u.updated_at,
		       COALESCE(p.monthly_income, 0)::text,
		       COALESCE(p.spending_limit, 0)::text,
		       COALESCE(p.financial_goals, '')
		FROM users u
		LEFT JOIN user_profiles p ON p.user_id = u.id
		WHERE u.id = $1 AND u.is_active`

	result := &UserWithProfile{}
	var income, limit string
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&result.ID, &result.Email, &result.PasswordHash, &result.Name,
		&result.Age, &result.IsActive, &result.CreatedAt, &result.UpdatedAt,
		&income, &limit, &result.FinancialGoals,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("users: get with profile: %w", err)
	}
	if result.MonthlyIncome, err = decimal.NewFromString(income); err != nil {
		return nil, fmt.Errorf("users: parse income: %w", err)
	}
	if result.SpendingLimit, err = decimal.NewFromString(limit); err != nil {
		return nil, fmt.Errorf("users: parse limit: %w", err)
	}
	return result, nil
}

// UpdateUser applies a merge-on-present update. Absent fields keep their
// current values; an unknown id affects zero rows and is not an error.
func (s *PostgresStore) UpdateUser(ctx context.Context, id string, params UpdateUserParams) (int64, error) {
	const query = `
		UPDATE users SET
			name = COALESCE($2, name),
			age = COALESCE($3::int, age),
			is_active = COALESCE($4::bool, is_active),
			updated_at = $5
		WHERE id = $1`

	tag, err := s.pool.Exec(ctx, query, id, params.Name, params.Age, params.IsActive, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("users: update user: %w", err)
	}
	return tag.RowsAffected(), nil
}

// UpdateProfile applies a merge-on-present update to the profile row.
func (s *PostgresStore) UpdateProfile(ctx context.Context, userID string, params UpdateProfileParams) (int64, error) {
	const query = `
		UPDATE user_profiles SET
			monthly_income = COALESCE($2::numeric, monthly_income),
			spending_limit = COALESCE($3::numeric, spending_limit),
			financial_goals = COALESCE($4, financial_goals),
			updated_at = $5
		WHERE user_id = $1`

	tag, err := s.pool.Exec(ctx, query, userID,
		decimalParam(params.MonthlyIncome), decimalParam(params.SpendingLimit),
		params.FinancialGoals, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("users: update profile: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteUser removes the user row; the profile follows via ON DELETE CASCADE.
func (s *PostgresStore) DeleteUser(ctx context.Context, id string) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("users: delete user: %w", err)
	}
	return tag.RowsAffected(), nil
}

func decimalParam(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

var _ Store = (*PostgresStore)(nil)
