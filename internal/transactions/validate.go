package transactions

import (
	"unicode/utf8"

	"github.com/pennywise-app/pennywise/internal/shared"
)

const maxDescriptionLength = 200

// Validate checks the transaction invariants. It runs before normalization
// on every create and update.
func Validate(t *Transaction) error {
	verr := &shared.ValidationError{Fields: make(map[string]string)}

	if t.Amount.IsZero() {
		verr.Fields["amount"] = "must not be zero"
	}
	if t.Description == "" {
		verr.Fields["description"] = "must not be empty"
	} else if utf8.RuneCountInString(t.Description) > maxDescriptionLength {
		verr.Fields["description"] = "must be at most 200 characters"
	}
	if !t.Category.Valid() {
		verr.Fields["category"] = "unknown category"
	}
	if !t.Type.Valid() {
		verr.Fields["type"] = "must be income or expense"
	}
	if t.IsRecurring {
		if t.RecurringPeriod == "" {
			verr.Fields["recurringPeriod"] = "required for recurring transactions"
		} else if !t.RecurringPeriod.Valid() {
			verr.Fields["recurringPeriod"] = "must be daily, weekly, monthly or yearly"
		}
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

// Normalize forces the amount sign to agree with the type regardless of
// the client-supplied sign: income positive, expense negative.
func Normalize(t *Transaction) {
	switch t.Type {
	case TypeExpense:
		if t.Amount.IsPositive() {
			t.Amount = t.Amount.Neg()
		}
	case TypeIncome:
		if t.Amount.IsNegative() {
			t.Amount = t.Amount.Abs()
		}
	}
}
