package transactions

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pennywise-app/pennywise/internal/shared"
)

// MemoryStore is the in-memory fallback for the transaction domain: an
// insertion-ordered keyed collection emulating the document store's
// filtering, pagination and grouping semantics. State is process-local
// and non-durable.
type MemoryStore struct {
	mu    sync.RWMutex
	docs  map[string]Transaction
	order []string // ids in insertion order
}

// NewMemoryStore constructs an empty fallback store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]Transaction)}
}

// Mode reports the fallback persistence mode.
func (s *MemoryStore) Mode() Mode { return ModeFallback }

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close(context.Context) {}

// Insert assigns an id and storage defaults, then appends the document.
func (s *MemoryStore) Insert(_ context.Context, txn *Transaction) (*Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	stored := *txn
	stored.ID = uuid.NewString()
	if stored.Date.IsZero() {
		stored.Date = now
	}
	if stored.Tags == nil {
		stored.Tags = []string{}
	}
	stored.CreatedAt = now
	stored.UpdatedAt = now

	s.docs[stored.ID] = stored
	s.order = append(s.order, stored.ID)
	return &stored, nil
}

// Find applies the conjunctive filter, sorts by date descending and
// paginates with offset semantics. The total count covers the whole
// filtered set, not just the returned page.
func (s *MemoryStore) Find(_ context.Context, filter Filter, page, pageSize int) ([]Transaction, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]Transaction, 0)
	for _, id := range s.order {
		doc := s.docs[id]
		if matches(doc, filter) {
			matched = append(matched, doc)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Date.After(matched[j].Date)
	})

	total := int64(len(matched))
	if pageSize <= 0 {
		pageSize = shared.DefaultPageSize
	}
	if page <= 0 {
		page = 1
	}
	skip := (page - 1) * pageSize
	if skip >= len(matched) {
		return []Transaction{}, total, nil
	}
	end := skip + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end], total, nil
}

// FindByID fetches a single document.
func (s *MemoryStore) FindByID(_ context.Context, id string) (*Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &doc, nil
}

// UpdateByID replaces the full document, keeping id, creation timestamp
// and insertion position.
func (s *MemoryStore) UpdateByID(_ context.Context, id string, txn *Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.docs[id]
	if !ok {
		return shared.ErrNotFound
	}
	stored := *txn
	stored.ID = existing.ID
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = time.Now().UTC()
	if stored.Tags == nil {
		stored.Tags = []string{}
	}
	s.docs[id] = stored
	return nil
}

// DeleteByID removes the document permanently.
func (s *MemoryStore) DeleteByID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; !ok {
		return shared.ErrNotFound
	}
	delete(s.docs, id)
	for i, stored := range s.order {
		if stored == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// FindRecurring returns every recurring transaction across all users.
func (s *MemoryStore) FindRecurring(_ context.Context) ([]Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Transaction, 0)
	for _, id := range s.order {
		if doc := s.docs[id]; doc.IsRecurring {
			result = append(result, doc)
		}
	}
	return result, nil
}

// GroupByType aggregates total, count and average per transaction type
// within the half-open window [from, to).
func (s *MemoryStore) GroupByType(_ context.Context, userID string, from, to time.Time) (map[Type]TypeAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[Type]TypeAggregate)
	for _, doc := range s.docs {
		if !inWindow(doc, userID, from, to) {
			continue
		}
		agg := result[doc.Type]
		agg.Total = agg.Total.Add(doc.Amount)
		agg.Count++
		result[doc.Type] = agg
	}
	for typ, agg := range result {
		agg.Avg = agg.Total.Div(decimal.NewFromInt(agg.Count))
		result[typ] = agg
	}
	return result, nil
}

// GroupByCategoryAndType aggregates total and count per (category, type)
// pair within the window, sorted by total descending.
func (s *MemoryStore) GroupByCategoryAndType(_ context.Context, userID string, from, to time.Time) ([]CategoryTypeAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type key struct {
		category Category
		typ      Type
	}
	groups := make(map[key]CategoryTypeAggregate)
	for _, doc := range s.docs {
		if !inWindow(doc, userID, from, to) {
			continue
		}
		k := key{category: doc.Category, typ: doc.Type}
		agg := groups[k]
		agg.Category = doc.Category
		agg.Type = doc.Type
		agg.Total = agg.Total.Add(doc.Amount)
		agg.Count++
		groups[k] = agg
	}

	result := make([]CategoryTypeAggregate, 0, len(groups))
	for _, agg := range groups {
		result = append(result, agg)
	}
	sort.Slice(result, func(i, j int) bool {
		if cmp := result[i].Total.Cmp(result[j].Total); cmp != 0 {
			return cmp > 0
		}
		if result[i].Category != result[j].Category {
			return result[i].Category < result[j].Category
		}
		return result[i].Type < result[j].Type
	})
	return result, nil
}

func matches(doc Transaction, filter Filter) bool {
	if doc.UserID != filter.UserID {
		return false
	}
	if filter.Category != nil && doc.Category != *filter.Category {
		return false
	}
	if filter.Type != nil && doc.Type != *filter.Type {
		return false
	}
	if filter.From != nil && doc.Date.Before(*filter.From) {
		return false
	}
	if filter.To != nil && !doc.Date.Before(*filter.To) {
		return false
	}
	return true
}

func inWindow(doc Transaction, userID string, from, to time.Time) bool {
	return doc.UserID == userID && !doc.Date.Before(from) && doc.Date.Before(to)
}

var _ Store = (*MemoryStore)(nil)
