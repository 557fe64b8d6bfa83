package users

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pennywise-app/pennywise/internal/shared"
)

func newTestService() *Service {
	return NewService(NewMemoryStore(), []byte("test-secret"), time.Hour)
}

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()
	svc := newTestService()

	user, token, err := svc.Register(context.Background(), RegisterParams{
		Email:    "alice@example.com",
		Password: "correct horse",
		Name:     "Alice",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.True(t, user.IsActive)

	loggedIn, loginToken, err := svc.Login(context.Background(), "alice@example.com", "correct horse")
	require.NoError(t, err)
	require.NotEmpty(t, loginToken)
	assert.Equal(t, user.ID, loggedIn.ID)

	_, _, err = svc.Login(context.Background(), "alice@example.com", "wrong password")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()
	svc := newTestService()

	params := RegisterParams{Email: "bob@example.com", Password: "password123", Name: "Bob"}
	_, _, err := svc.Register(context.Background(), params)
	require.NoError(t, err)

	_, _, err = svc.Register(context.Background(), params)
	assert.ErrorIs(t, err, shared.ErrConflict)
}

func TestRegisterAgeValidation(t *testing.T) {
	t.Parallel()
	svc := newTestService()

	age := 12
	_, _, err := svc.Register(context.Background(), RegisterParams{
		Email:    "kid@example.com",
		Password: "password123",
		Name:     "Kid",
		Age:      &age,
	})
	verr, ok := shared.AsValidation(err)
	require.True(t, ok, "expected validation error, got %v", err)
	assert.Contains(t, verr.Fields, "age")
}

func TestUpdateUserNotFound(t *testing.T) {
	t.Parallel()
	svc := newTestService()

	name := "Ghost"
	_, err := svc.UpdateUser(context.Background(), "missing", UpdateUserParams{Name: &name})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGetStats(t *testing.T) {
	t.Parallel()
	svc := newTestService()

	user, _, err := svc.Register(context.Background(), RegisterParams{
		Email:    "carol@example.com",
		Password: "password123",
		Name:     "Carol",
	})
	require.NoError(t, err)

	stats, err := svc.GetStats(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, stats.ProfileCompletion)

	limit := decimal.NewFromInt(500)
	_, err = svc.UpdateProfile(context.Background(), user.ID, UpdateProfileParams{SpendingLimit: &limit})
	require.NoError(t, err)

	stats, err = svc.GetStats(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 65, stats.ProfileCompletion)
}

func TestUpdateProfileRejectsNegative(t *testing.T) {
	t.Parallel()
	svc := newTestService()

	user, _, err := svc.Register(context.Background(), RegisterParams{
		Email:    "dan@example.com",
		Password: "password123",
		Name:     "Dan",
	})
	require.NoError(t, err)

	negative := decimal.NewFromInt(-10)
	_, err = svc.UpdateProfile(context.Background(), user.ID, UpdateProfileParams{MonthlyIncome: &negative})
	_, ok := shared.AsValidation(err)
	assert.True(t, ok, "expected validation error, got %v", err)
}
