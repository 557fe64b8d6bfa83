package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pennywise-app/pennywise/internal/auth"
	"github.com/pennywise-app/pennywise/internal/shared"
)

// Service wraps user domain business rules over the selected store.
type Service struct {
	store     Store
	jwtSecret []byte
	jwtTTL    time.Duration
}

// NewService constructs a Service.
func NewService(store Store, jwtSecret []byte, jwtTTL time.Duration) *Service {
	return &Service{store: store, jwtSecret: jwtSecret, jwtTTL: jwtTTL}
}

// RegisterParams carries a registration request.
type RegisterParams struct {
	Email    string
	Password string
	Name     string
	Age      *int
}

// Register creates the user and its profile, returning the record and a
// signed access token. A duplicate email yields shared.ErrConflict.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*UserWithProfile, string, error) {
	if params.Age != nil && (*params.Age < 13 || *params.Age > 120) {
		return nil, "", shared.NewValidationError("age", "must be between 13 and 120")
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return nil, "", fmt.Errorf("users: hash password: %w", err)
	}

	user, err := s.store.CreateUserWithProfile(ctx, CreateUserParams{
		Email:        params.Email,
		PasswordHash: hash,
		Name:         params.Name,
		Age:          params.Age,
	})
	if err != nil {
		return nil, "", err
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.jwtTTL)
	if err != nil {
		return nil, "", fmt.Errorf("users: sign token: %w", err)
	}
	return user, token, nil
}

// Login validates credentials and returns the user with a fresh token.
func (s *Service) Login(ctx context.Context, email, password string) (*UserWithProfile, string, error) {
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, "", shared.ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !user.IsActive || !auth.CheckPassword(user.PasswordHash, password) {
		return nil, "", shared.ErrInvalidCredentials
	}

	full, err := s.store.GetUserWithProfile(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.jwtTTL)
	if err != nil {
		return nil, "", fmt.Errorf("users: sign token: %w", err)
	}
	return full, token, nil
}

// GetUserWithProfile fetches the merged user/profile record.
func (s *Service) GetUserWithProfile(ctx context.Context, id string) (*UserWithProfile, error) {
	return s.store.GetUserWithProfile(ctx, id)
}

// UpdateUser applies a partial update and returns the refreshed record.
func (s *Service) UpdateUser(ctx context.Context, id string, params UpdateUserParams) (*UserWithProfile, error) {
	if params.Age != nil && (*params.Age < 13 || *params.Age > 120) {
		return nil, shared.NewValidationError("age", "must be between 13 and 120")
	}
	rows, err := s.store.UpdateUser(ctx, id, params)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, shared.ErrNotFound
	}
	return s.store.GetUserWithProfile(ctx, id)
}

// UpdateProfile applies a partial profile update and returns the record.
func (s *Service) UpdateProfile(ctx context.Context, userID string, params UpdateProfileParams) (*UserWithProfile, error) {
	if params.MonthlyIncome != nil && params.MonthlyIncome.IsNegative() {
		return nil, shared.NewValidationError("monthlyIncome", "must not be negative")
	}
	if params.SpendingLimit != nil && params.SpendingLimit.IsNegative() {
		return nil, shared.NewValidationError("spendingLimit", "must not be negative")
	}
	rows, err := s.store.UpdateProfile(ctx, userID, params)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, shared.ErrNotFound
	}
	return s.store.GetUserWithProfile(ctx, userID)
}

// GetStats returns the merged record plus the profile completion score.
func (s *Service) GetStats(ctx context.Context, id string) (*Stats, error) {
	user, err := s.store.GetUserWithProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	completion := ProfileCompletion(Profile{
		UserID:        user.ID,
		MonthlyIncome: user.MonthlyIncome,
		SpendingLimit: user.SpendingLimit,
	})
	return &Stats{UserWithProfile: *user, ProfileCompletion: completion}, nil
}

// DeleteUser removes the account and its profile.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	rows, err := s.store.DeleteUser(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return shared.ErrNotFound
	}
	return nil
}
