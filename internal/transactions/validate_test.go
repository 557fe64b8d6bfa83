package transactions

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/pennywise-app/pennywise/internal/shared"
)

func validTransaction() *Transaction {
	return &Transaction{
		UserID:      "user-1",
		Amount:      decimal.NewFromInt(50),
		Description: "lunch",
		Category:    CategoryFood,
		Type:        TypeExpense,
	}
}

func TestValidateAcceptsWellFormed(t *testing.T) {
	t.Parallel()
	if err := Validate(validTransaction()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Transaction)
		field  string
	}{
		{"zero amount", func(txn *Transaction) { txn.Amount = decimal.Zero }, "amount"},
		{"empty description", func(txn *Transaction) { txn.Description = "" }, "description"},
		{"long description", func(txn *Transaction) { txn.Description = strings.Repeat("x", 201) }, "description"},
		{"long multibyte description", func(txn *Transaction) { txn.Description = strings.Repeat("€", 201) }, "description"},
		{"unknown category", func(txn *Transaction) { txn.Category = "crypto" }, "category"},
		{"unknown type", func(txn *Transaction) { txn.Type = "transfer" }, "type"},
		{"recurring without period", func(txn *Transaction) { txn.IsRecurring = true }, "recurringPeriod"},
		{"recurring bad period", func(txn *Transaction) {
			txn.IsRecurring = true
			txn.RecurringPeriod = "fortnightly"
		}, "recurringPeriod"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := validTransaction()
			tt.mutate(txn)
			err := Validate(txn)
			verr, ok := shared.AsValidation(err)
			if !ok {
				t.Fatalf("expected validation error, got %v", err)
			}
			if _, present := verr.Fields[tt.field]; !present {
				t.Fatalf("expected field %q flagged, got %v", tt.field, verr.Fields)
			}
		})
	}
}

func TestValidateDescriptionLimitCountsRunes(t *testing.T) {
	t.Parallel()
	txn := validTransaction()
	// 200 three-byte runes: over the limit in bytes, exactly at it in characters.
	txn.Description = strings.Repeat("€", 200)
	if err := Validate(txn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidatePeriodNotRequiredWhenNotRecurring(t *testing.T) {
	t.Parallel()
	txn := validTransaction()
	txn.IsRecurring = false
	txn.RecurringPeriod = ""
	if err := Validate(txn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNormalizeSignCorrection(t *testing.T) {
	t.Parallel()

	expense := validTransaction()
	expense.Amount = decimal.NewFromInt(50)
	Normalize(expense)
	if !expense.Amount.Equal(decimal.NewFromInt(-50)) {
		t.Fatalf("expense must be negative, got %s", expense.Amount)
	}

	income := validTransaction()
	income.Type = TypeIncome
	income.Category = CategorySalary
	income.Amount = decimal.NewFromInt(-3000)
	Normalize(income)
	if !income.Amount.Equal(decimal.NewFromInt(3000)) {
		t.Fatalf("income must be positive, got %s", income.Amount)
	}

	// Already-correct signs are left alone.
	keep := validTransaction()
	keep.Amount = decimal.NewFromInt(-25)
	Normalize(keep)
	if !keep.Amount.Equal(decimal.NewFromInt(-25)) {
		t.Fatalf("sign must be preserved, got %s", keep.Amount)
	}
}
