package transactions

import (
	"context"
	"log/slog"
	"time"

	"github.com/pennywise-app/pennywise/internal/app"
	"github.com/pennywise-app/pennywise/internal/platform/docstore"
)

// Mode identifies which persistence path a store runs against.
type Mode string

const (
	ModeLive     Mode = "live"
	ModeFallback Mode = "fallback"
)

// Store defines the persistence operations of the transaction domain.
// The MongoDB store and the in-memory fallback implement identical
// semantics; grouping results must be numerically equal across both.
type Store interface {
	Insert(ctx context.Context, txn *Transaction) (*Transaction, error)
	Find(ctx context.Context, filter Filter, page, pageSize int) ([]Transaction, int64, error)
	FindByID(ctx context.Context, id string) (*Transaction, error)
	UpdateByID(ctx context.Context, id string, txn *Transaction) error
	DeleteByID(ctx context.Context, id string) error
	FindRecurring(ctx context.Context) ([]Transaction, error)
	GroupByType(ctx context.Context, userID string, from, to time.Time) (map[Type]TypeAggregate, error)
	GroupByCategoryAndType(ctx context.Context, userID string, from, to time.Time) ([]CategoryTypeAggregate, error)
	Mode() Mode
	Close(ctx context.Context)
}

// OpenStore selects the persistence mode exactly once. It attempts the live
// MongoDB connection within the configured timeout and commits to the
// in-memory fallback on any failure. The decision is never re-evaluated.
func OpenStore(ctx context.Context, cfg *app.Config, logger *slog.Logger) Store {
	client, err := docstore.New(ctx, cfg.MongoURI, cfg.StoreConnectTimeout)
	if err != nil {
		logger.Warn("mongodb unreachable, using in-memory transaction store",
			slog.Any("error", err))
		return NewMemoryStore()
	}
	logger.Info("transaction store connected", slog.String("mode", string(ModeLive)))
	return NewMongoStore(client, cfg.MongoDB)
}
