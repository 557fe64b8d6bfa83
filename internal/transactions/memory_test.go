package transactions

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pennywise-app/pennywise/internal/shared"
)

func seedTransaction(t *testing.T, store *MemoryStore, userID string, amount int64, typ Type, category Category, date time.Time) *Transaction {
	t.Helper()
	txn := &Transaction{
		UserID:      userID,
		Amount:      decimal.NewFromInt(amount),
		Description: "seed",
		Category:    category,
		Type:        typ,
		Date:        date,
	}
	Normalize(txn)
	created, err := store.Insert(context.Background(), txn)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	return created
}

func TestInsertDefaults(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore()

	created, err := store.Insert(context.Background(), &Transaction{
		UserID:      "user-1",
		Amount:      decimal.NewFromInt(10),
		Description: "coffee",
		Category:    CategoryFood,
		Type:        TypeIncome,
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated id")
	}
	if created.Date.IsZero() {
		t.Fatal("expected date defaulted to now")
	}
	if created.Tags == nil || len(created.Tags) != 0 {
		t.Fatalf("expected empty tag set, got %v", created.Tags)
	}
	if created.IsRecurring {
		t.Fatal("expected recurring default false")
	}
}

func TestFindConjunctiveFilter(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore()
	now := time.Now().UTC()

	seedTransaction(t, store, "user-1", -20, TypeExpense, CategoryFood, now.Add(-time.Hour))
	seedTransaction(t, store, "user-1", -30, TypeExpense, CategoryTransport, now.Add(-2*time.Hour))
	seedTransaction(t, store, "user-1", 100, TypeIncome, CategorySalary, now.Add(-3*time.Hour))
	seedTransaction(t, store, "user-2", -40, TypeExpense, CategoryFood, now.Add(-time.Hour))

	category := CategoryFood
	typ := TypeExpense
	items, total, err := store.Find(context.Background(), Filter{
		UserID:   "user-1",
		Category: &category,
		Type:     &typ,
	}, 1, 10)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("expected exactly one match, got total=%d len=%d", total, len(items))
	}
	if items[0].Category != CategoryFood || items[0].UserID != "user-1" {
		t.Fatalf("wrong document matched: %+v", items[0])
	}
}

func TestFindDateWindowHalfOpen(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	inside := seedTransaction(t, store, "user-1", -10, TypeExpense, CategoryBills, base)
	seedTransaction(t, store, "user-1", -10, TypeExpense, CategoryBills, base.Add(48*time.Hour))

	from := base
	to := base.Add(48 * time.Hour)
	items, total, err := store.Find(context.Background(), Filter{UserID: "user-1", From: &from, To: &to}, 1, 10)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if total != 1 {
		t.Fatalf("upper bound must be exclusive, got total=%d", total)
	}
	if items[0].ID != inside.ID {
		t.Fatalf("wrong document matched: %+v", items[0])
	}
}

func TestPaginationExhaustive(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore()
	now := time.Now().UTC()

	const count = 23
	for i := 0; i < count; i++ {
		seedTransaction(t, store, "user-1", -int64(i+1), TypeExpense, CategoryOther, now.Add(-time.Duration(i)*time.Minute))
	}

	const pageSize = 5
	seen := make(map[string]int)
	var collected []Transaction
	for page := 1; ; page++ {
		items, total, err := store.Find(context.Background(), Filter{UserID: "user-1"}, page, pageSize)
		if err != nil {
			t.Fatalf("page %d: %v", page, err)
		}
		if total != count {
			t.Fatalf("total mismatch: got %d want %d", total, count)
		}
		if len(items) == 0 {
			break
		}
		for _, item := range items {
			seen[item.ID]++
			collected = append(collected, item)
		}
	}
	if len(seen) != count {
		t.Fatalf("expected %d distinct documents, got %d", count, len(seen))
	}
	for id, hits := range seen {
		if hits != 1 {
			t.Fatalf("document %s returned %d times", id, hits)
		}
	}
	for i := 1; i < len(collected); i++ {
		if collected[i].Date.After(collected[i-1].Date) {
			t.Fatal("pages must preserve date-descending order")
		}
	}
}

func TestUpdateByIDReplacesDocument(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore()
	created := seedTransaction(t, store, "user-1", -15, TypeExpense, CategoryFood, time.Now().UTC())

	replacement := *created
	replacement.Amount = decimal.NewFromInt(2000)
	replacement.Type = TypeIncome
	replacement.Category = CategorySalary
	Normalize(&replacement)

	if err := store.UpdateByID(context.Background(), created.ID, &replacement); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := store.FindByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !got.Amount.Equal(decimal.NewFromInt(2000)) || got.Type != TypeIncome {
		t.Fatalf("replacement not applied: %+v", got)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Fatal("creation timestamp must survive replacement")
	}

	if err := store.UpdateByID(context.Background(), "missing", &replacement); !errors.Is(err, shared.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteByID(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore()
	created := seedTransaction(t, store, "user-1", -15, TypeExpense, CategoryFood, time.Now().UTC())

	if err := store.DeleteByID(context.Background(), created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.FindByID(context.Background(), created.ID); !errors.Is(err, shared.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := store.DeleteByID(context.Background(), created.ID); !errors.Is(err, shared.ErrNotFound) {
		t.Fatalf("expected not found on double delete, got %v", err)
	}
}

func TestGroupByType(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore()
	now := time.Now().UTC()

	seedTransaction(t, store, "user-1", 100, TypeIncome, CategorySalary, now.Add(-time.Hour))
	seedTransaction(t, store, "user-1", 50, TypeIncome, CategoryFreelance, now.Add(-2*time.Hour))
	seedTransaction(t, store, "user-1", -40, TypeExpense, CategoryFood, now.Add(-time.Hour))
	// Outside the window.
	seedTransaction(t, store, "user-1", 999, TypeIncome, CategoryGift, now.Add(-72*time.Hour))
	// Different user.
	seedTransaction(t, store, "user-2", 777, TypeIncome, CategorySalary, now.Add(-time.Hour))

	result, err := store.GroupByType(context.Background(), "user-1", now.Add(-24*time.Hour), now)
	if err != nil {
		t.Fatalf("group: %v", err)
	}

	income := result[TypeIncome]
	if !income.Total.Equal(decimal.NewFromInt(150)) || income.Count != 2 {
		t.Fatalf("income aggregate mismatch: %+v", income)
	}
	if !income.Avg.Equal(decimal.NewFromInt(75)) {
		t.Fatalf("income avg mismatch: %s", income.Avg)
	}
	expense := result[TypeExpense]
	if !expense.Total.Equal(decimal.NewFromInt(-40)) || expense.Count != 1 {
		t.Fatalf("expense aggregate mismatch: %+v", expense)
	}
}

func TestGroupByCategoryAndTypeOrdering(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore()
	now := time.Now().UTC()

	seedTransaction(t, store, "user-1", 300, TypeIncome, CategorySalary, now.Add(-time.Hour))
	seedTransaction(t, store, "user-1", -120, TypeExpense, CategoryFood, now.Add(-time.Hour))
	seedTransaction(t, store, "user-1", -80, TypeExpense, CategoryFood, now.Add(-2*time.Hour))
	seedTransaction(t, store, "user-1", 40, TypeIncome, CategoryGift, now.Add(-time.Hour))

	rows, err := store.GroupByCategoryAndType(context.Background(), "user-1", now.Add(-24*time.Hour), now)
	if err != nil {
		t.Fatalf("group: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 groups, got %d: %+v", len(rows), rows)
	}

	// Sorted by total descending: 300 (salary), 40 (gift), -200 (food).
	wantTotals := []string{"300", "40", "-200"}
	for i, want := range wantTotals {
		if rows[i].Total.String() != want {
			t.Fatalf("row %d total mismatch: got %s want %s", i, rows[i].Total, want)
		}
	}
	if rows[2].Count != 2 {
		t.Fatalf("food group count mismatch: %+v", rows[2])
	}
}

func TestMemoryStoreConcurrentWriters(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore()
	now := time.Now().UTC()

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(n int) {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 25; j++ {
				txn := &Transaction{
					UserID:      "user-1",
					Amount:      decimal.NewFromInt(-1),
					Description: fmt.Sprintf("w%d-%d", n, j),
					Category:    CategoryOther,
					Type:        TypeExpense,
					Date:        now,
				}
				if _, err := store.Insert(context.Background(), txn); err != nil {
					t.Errorf("insert: %v", err)
					return
				}
			}
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	_, total, err := store.Find(context.Background(), Filter{UserID: "user-1"}, 1, 1)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if total != 200 {
		t.Fatalf("lost updates: got %d want 200", total)
	}
}
