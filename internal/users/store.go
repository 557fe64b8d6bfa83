package users

import (
	"context"
	"log/slog"

	"github.com/pennywise-app/pennywise/internal/app"
	"github.com/pennywise-app/pennywise/internal/platform/db"
)

// Mode identifies which persistence path a store runs against.
type Mode string

const (
	// ModeLive means the store talks to the real backing database.
	ModeLive Mode = "live"
	// ModeFallback means the store runs against the in-memory emulation.
	ModeFallback Mode = "fallback"
)

// Store defines the persistence operations of the user domain. Both the
// PostgreSQL store and the in-memory fallback implement it; callers never
// branch on the active mode.
type Store interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	CreateUserWithProfile(ctx context.Context, params CreateUserParams) (*UserWithProfile, error)
	GetUserWithProfile(ctx context.Context, id string) (*UserWithProfile, error)
	UpdateUser(ctx context.Context, id string, params UpdateUserParams) (int64, error)
	UpdateProfile(ctx context.Context, userID string, params UpdateProfileParams) (int64, error)
	DeleteUser(ctx context.Context, id string) (int64, error)
	Mode() Mode
	Close()
}

// OpenStore selects the persistence mode exactly once. It attempts the live
// PostgreSQL connection within the configured timeout and commits to the
// in-memory fallback on any failure. The decision is never re-evaluated.
func OpenStore(ctx context.Context, cfg *app.Config, logger *slog.Logger) Store {
	pool, err := db.New(ctx, cfg.PGDSN, cfg.StoreConnectTimeout)
	if err != nil {
		logger.Warn("postgres unreachable, using in-memory user store",
			slog.Any("error", err))
		return NewMemoryStore()
	}
	logger.Info("user store connected", slog.String("mode", string(ModeLive)))
	return NewPostgresStore(pool)
}
