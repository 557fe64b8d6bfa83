package users

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pennywise-app/pennywise/internal/shared"
)

// MemoryStore is the in-memory fallback for the user domain. It emulates
// the relational read/write semantics of the live store: email uniqueness,
// the user/profile left join and idempotent merge-on-present updates.
// State is process-local and non-durable.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]User    // keyed by user id
	emails   map[string]string  // lowercased email -> user id
	profiles map[string]Profile // keyed by owning user id
}

// NewMemoryStore constructs an empty fallback store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]User),
		emails:   make(map[string]string),
		profiles: make(map[string]Profile),
	}
}

// Mode reports the fallback persistence mode.
func (s *MemoryStore) Mode() Mode { return ModeFallback }

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() {}

// FindByEmail fetches a user by email, case-insensitively.
func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[strings.ToLower(email)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	user := s.users[id]
	return &user, nil
}

// CreateUserWithProfile inserts the user and its profile atomically under
// a single lock acquisition, enforcing email uniqueness at write time.
func (s *MemoryStore) CreateUserWithProfile(_ context.Context, params CreateUserParams) (*UserWithProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(params.Email)
	if _, exists := s.emails[key]; exists {
		return nil, shared.ErrConflict
	}

	now := time.Now().UTC()
	user := User{
		ID:           uuid.NewString(),
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		Name:         params.Name,
		Age:          params.Age,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	profile := Profile{
		UserID:        user.ID,
		MonthlyIncome: decimal.Zero,
		SpendingLimit: decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	s.users[user.ID] = user
	s.emails[key] = user.ID
	s.profiles[user.ID] = profile

	return &UserWithProfile{
		User:          user,
		MonthlyIncome: profile.MonthlyIncome,
		SpendingLimit: profile.SpendingLimit,
	}, nil
}

// GetUserWithProfile performs the in-memory left join: the user row with
// profile fields merged in, zero defaults when no profile row exists, and
// inactive users filtered out.
func (s *MemoryStore) GetUserWithProfile(_ context.Context, id string) (*UserWithProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok || !user.IsActive {
		return nil, shared.ErrNotFound
	}

	result := &UserWithProfile{
		User:          user,
		MonthlyIncome: decimal.Zero,
		SpendingLimit: decimal.Zero,
	}
	if profile, ok := s.profiles[id]; ok {
		result.MonthlyIncome = profile.MonthlyIncome
		result.SpendingLimit = profile.SpendingLimit
		result.FinancialGoals = profile.FinancialGoals
	}
	return result, nil
}

// UpdateUser applies a merge-on-present update. An unknown id affects zero
// rows, matching the idempotent UPDATE ... WHERE behaviour of the live store.
func (s *MemoryStore) UpdateUser(_ context.Context, id string, params UpdateUserParams) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return 0, nil
	}
	if params.Name != nil {
		user.Name = *params.Name
	}
	if params.Age != nil {
		age := *params.Age
		user.Age = &age
	}
	if params.IsActive != nil {
		user.IsActive = *params.IsActive
	}
	user.UpdatedAt = time.Now().UTC()
	s.users[id] = user
	return 1, nil
}

// UpdateProfile applies a merge-on-present update to the profile row.
func (s *MemoryStore) UpdateProfile(_ context.Context, userID string, params UpdateProfileParams) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.profiles[userID]
	if !ok {
		return 0, nil
	}
	if params.MonthlyIncome != nil {
		profile.MonthlyIncome = *params.MonthlyIncome
	}
	if params.SpendingLimit != nil {
		profile.SpendingLimit = *params.SpendingLimit
	}
	if params.FinancialGoals != nil {
		profile.FinancialGoals = *params.FinancialGoals
	}
	profile.UpdatedAt = time.Now().UTC()
	s.profiles[userID] = profile
	return 1, nil
}

// DeleteUser removes the user and cascades to its profile, mirroring the
// live store's ON DELETE CASCADE.
func (s *MemoryStore) DeleteUser(_ context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return 0, nil
	}
	delete(s.users, id)
	delete(s.emails, strings.ToLower(user.Email))
	delete(s.profiles, id)
	return 1, nil
}

var _ Store = (*MemoryStore)(nil)
