package transactions

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pennywise-app/pennywise/internal/shared"
)

// Service coordinates transaction business rules and the aggregation
// engine over the selected store. It never depends on which persistence
// mode is active.
type Service struct {
	store  Store
	cache  *Cache
	logger *slog.Logger
	clock  func() time.Time
}

// NewService wires a Store with the cache helper.
func NewService(store Store, cache *Cache, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		cache:  cache,
		logger: logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// CreateParams carries the client-supplied transaction fields. A zero
// Date defaults to the time of creation.
type CreateParams struct {
	Amount          decimal.Decimal
	Description     string
	Category        Category
	Type            Type
	Date            time.Time
	Tags            []string
	IsRecurring     bool
	RecurringPeriod RecurringPeriod
}

// Create validates, normalizes and persists a new transaction.
func (s *Service) Create(ctx context.Context, userID string, params CreateParams) (*Transaction, error) {
	txn := &Transaction{
		UserID:          userID,
		Amount:          params.Amount,
		Description:     params.Description,
		Category:        params.Category,
		Type:            params.Type,
		Date:            params.Date,
		Tags:            params.Tags,
		IsRecurring:     params.IsRecurring,
		RecurringPeriod: params.RecurringPeriod,
	}
	if err := Validate(txn); err != nil {
		return nil, err
	}
	Normalize(txn)

	created, err := s.store.Insert(ctx, txn)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)
	return created, nil
}

// FindForUser lists transactions matching the filter, newest first.
func (s *Service) FindForUser(ctx context.Context, filter Filter, page, pageSize int) ([]Transaction, shared.Pagination, error) {
	items, total, err := s.store.Find(ctx, filter, page, pageSize)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(page, pageSize, int(total)), nil
}

// GetByID fetches a transaction owned by userID.
func (s *Service) GetByID(ctx context.Context, userID, id string) (*Transaction, error) {
	txn, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if txn.UserID != userID {
		return nil, shared.ErrNotFound
	}
	return txn, nil
}

// Update replaces the transaction after full re-validation and
// re-normalization of the supplied fields.
func (s *Service) Update(ctx context.Context, userID, id string, params CreateParams) (*Transaction, error) {
	existing, err := s.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	txn := &Transaction{
		UserID:          userID,
		Amount:          params.Amount,
		Description:     params.Description,
		Category:        params.Category,
		Type:            params.Type,
		Date:            params.Date,
		Tags:            params.Tags,
		IsRecurring:     params.IsRecurring,
		RecurringPeriod: params.RecurringPeriod,
	}
	if txn.Date.IsZero() {
		txn.Date = existing.Date
	}
	if err := Validate(txn); err != nil {
		return nil, err
	}
	Normalize(txn)

	if err := s.store.UpdateByID(ctx, id, txn); err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)
	return s.store.FindByID(ctx, id)
}

// Delete removes a transaction owned by userID. No soft delete.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.GetByID(ctx, userID, id); err != nil {
		return err
	}
	if err := s.store.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

// GetSummary reports income, expenses, balance and transaction count over
// the period window. Unknown period tokens fall back to 30 days; missing
// data yields zeros, never an error.
func (s *Service) GetSummary(ctx context.Context, userID, period string) (*Summary, error) {
	from, to := shared.PeriodWindow(period, s.clock())

	key, err := s.cache.BuildKey(ctx, userID, "summary", period)
	if err != nil {
		s.logger.Warn("summary cache key", slog.Any("error", err))
		return s.loadSummary(ctx, userID, from, to)
	}

	summary := &Summary{}
	err = s.cache.FetchJSON(ctx, key, summary, func(ctx context.Context) (interface{}, error) {
		return s.loadSummary(ctx, userID, from, to)
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (s *Service) loadSummary(ctx context.Context, userID string, from, to time.Time) (*Summary, error) {
	byType, err := s.store.GroupByType(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	income := byType[TypeIncome].Total
	expenses := byType[TypeExpense].Total.Abs()
	return &Summary{
		Income:           income,
		Expenses:         expenses,
		Balance:          income.Sub(expenses),
		TransactionCount: byType[TypeIncome].Count + byType[TypeExpense].Count,
	}, nil
}

// GetTopCategories ranks categories by transaction count over the last
// periodDays days. Totals are absolute amounts regardless of type.
func (s *Service) GetTopCategories(ctx context.Context, userID string, periodDays, limit int) ([]TopCategory, error) {
	if limit <= 0 {
		limit = 10
	}
	from, to := shared.DaysWindow(periodDays, s.clock())

	key, err := s.cache.BuildKey(ctx, userID, "topcategories",
		strconv.Itoa(periodDays), strconv.Itoa(limit))
	if err != nil {
		s.logger.Warn("top categories cache key", slog.Any("error", err))
		return s.loadTopCategories(ctx, userID, from, to, limit)
	}

	result := make([]TopCategory, 0, limit)
	err = s.cache.FetchJSON(ctx, key, &result, func(ctx context.Context) (interface{}, error) {
		return s.loadTopCategories(ctx, userID, from, to, limit)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) loadTopCategories(ctx context.Context, userID string, from, to time.Time, limit int) ([]TopCategory, error) {
	rows, err := s.store.GroupByCategoryAndType(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	grouped := make(map[Category]TopCategory)
	for _, row := range rows {
		agg := grouped[row.Category]
		agg.Category = row.Category
		agg.Total = agg.Total.Add(row.Total.Abs())
		agg.Count += row.Count
		grouped[row.Category] = agg
	}

	result := make([]TopCategory, 0, len(grouped))
	for _, agg := range grouped {
		result = append(result, agg)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		if cmp := result[i].Total.Cmp(result[j].Total); cmp != 0 {
			return cmp > 0
		}
		return result[i].Category < result[j].Category
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Service) invalidate(ctx context.Context, userID string) {
	if err := s.cache.Bump(ctx, userID); err != nil {
		s.logger.Warn("cache bump", slog.String("userId", userID), slog.Any("error", err))
	}
}
