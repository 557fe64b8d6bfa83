package users

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/pennywise-app/pennywise/internal/shared"
)

func newTestUser(t *testing.T, store *MemoryStore, email string) *UserWithProfile {
	t.Helper()
	user, err := store.CreateUserWithProfile(context.Background(), CreateUserParams{
		Email:        email,
		PasswordHash: "hash",
		Name:         "Test User",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func TestCreateUserWithProfileDefaults(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore()

	user := newTestUser(t, store, "alice@example.com")

	if user.ID == "" {
		t.Fatal("expected generated id")
	}
	if !user.IsActive {
		t.Fatal("expected user active by default")
	}
	if user.Age != nil {
		t.Fatalf("expected nil age, got %v", *user.Age)
	}
	if !user.MonthlyIncome.IsZero() || !user.SpendingLimit.IsZero() {
		t.Fatal("expected zero profile defaults")
	}
}

func TestCreateUserDuplicateEmailConflict(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore()
	newTestUser(t, store, "bob@example.com")

	_, err := store.CreateUserWithProfile(context.Background(), CreateUserParams{
		Email:        "BOB@Example.COM",
		PasswordHash: "hash",
		Name:         "Impostor",
	})
	if !errors.Is(err, shared.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestFindByEmailCaseInsensitive(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore()
	created := newTestUser(t, store, "Carol@Example.com")

	found, err := store.FindByEmail(context.Background(), "carol@example.COM")
	if err != nil {
		t.Fatalf("find by email: %v", err)
	}
	if found.ID != created.ID {
		t.Fatalf("id mismatch: got %q want %q", found.ID, created.ID)
	}
}

func TestGetUserWithProfileFiltersInactive(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore()
	user := newTestUser(t, store, "dave@example.com")

	inactive := false
	if _, err := store.UpdateUser(context.Background(), user.ID, UpdateUserParams{IsActive: &inactive}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	_, err := store.GetUserWithProfile(context.Background(), user.ID)
	if !errors.Is(err, shared.ErrNotFound) {
		t.Fatalf("expected not found for inactive user, got %v", err)
	}
}

func TestUpdateUserMergeOnPresent(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore()
	user := newTestUser(t, store, "erin@example.com")

	age := 30
	rows, err := store.UpdateUser(context.Background(), user.ID, UpdateUserParams{Age: &age})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected 1 row affected, got %d", rows)
	}

	got, err := store.GetUserWithProfile(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	// Only the supplied field changed.
	if got.Name != user.Name || got.Email != user.Email {
		t.Fatal("unspecified fields must be untouched")
	}
	if got.Age == nil || *got.Age != 30 {
		t.Fatalf("expected age 30, got %v", got.Age)
	}
	if !got.UpdatedAt.After(user.UpdatedAt) && !got.UpdatedAt.Equal(user.UpdatedAt) {
		t.Fatal("expected UpdatedAt refreshed")
	}
}

func TestUpdateUnknownIDIsNoop(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore()

	name := "Nobody"
	rows, err := store.UpdateUser(context.Background(), "missing", UpdateUserParams{Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if rows != 0 {
		t.Fatalf("expected 0 rows affected, got %d", rows)
	}

	income := decimal.NewFromInt(100)
	rows, err = store.UpdateProfile(context.Background(), "missing", UpdateProfileParams{MonthlyIncome: &income})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if rows != 0 {
		t.Fatalf("expected 0 rows affected, got %d", rows)
	}
}

func TestUpdateProfileMergeOnPresent(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore()
	user := newTestUser(t, store, "frank@example.com")

	goals := "pay off mortgage"
	if _, err := store.UpdateProfile(context.Background(), user.ID, UpdateProfileParams{FinancialGoals: &goals}); err != nil {
		t.Fatalf("set goals: %v", err)
	}
	limit := decimal.NewFromInt(1200)
	if _, err := store.UpdateProfile(context.Background(), user.ID, UpdateProfileParams{SpendingLimit: &limit}); err != nil {
		t.Fatalf("set limit: %v", err)
	}

	got, err := store.GetUserWithProfile(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.FinancialGoals != goals {
		t.Fatalf("goals overwritten: %q", got.FinancialGoals)
	}
	if !got.SpendingLimit.Equal(limit) {
		t.Fatalf("limit mismatch: %s", got.SpendingLimit)
	}
	if !got.MonthlyIncome.IsZero() {
		t.Fatalf("income must stay zero, got %s", got.MonthlyIncome)
	}
}

func TestDeleteUserCascadesProfile(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore()
	user := newTestUser(t, store, "grace@example.com")

	rows, err := store.DeleteUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected 1 row affected, got %d", rows)
	}

	if _, err := store.GetUserWithProfile(context.Background(), user.ID); !errors.Is(err, shared.ErrNotFound) {
		t.Fatalf("expected user gone, got %v", err)
	}
	if _, ok := store.profiles[user.ID]; ok {
		t.Fatal("expected profile cascade-deleted")
	}

	// Email becomes reusable after deletion.
	if _, err := store.CreateUserWithProfile(context.Background(), CreateUserParams{
		Email:        "grace@example.com",
		PasswordHash: "hash",
		Name:         "Grace II",
	}); err != nil {
		t.Fatalf("re-register after delete: %v", err)
	}
}
