package transactions

import (
	"time"

	"github.com/shopspring/decimal"
)

// Type distinguishes money coming in from money going out.
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

// Valid reports whether the type is part of the stable contract.
func (t Type) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Category is the fixed transaction category enumeration.
type Category string

const (
	CategoryFood          Category = "food"
	CategoryTransport     Category = "transport"
	CategoryEntertainment Category = "entertainment"
	CategoryShopping      Category = "shopping"
	CategoryBills         Category = "bills"
	CategoryHealth        Category = "health"
	CategoryEducation     Category = "education"
	CategorySalary        Category = "salary"
	CategoryFreelance     Category = "freelance"
	CategoryInvestment    Category = "investment"
	CategoryGift          Category = "gift"
	CategoryOther         Category = "other"
)

var categories = map[Category]struct{}{
	CategoryFood: {}, CategoryTransport: {}, CategoryEntertainment: {},
	CategoryShopping: {}, CategoryBills: {}, CategoryHealth: {},
	CategoryEducation: {}, CategorySalary: {}, CategoryFreelance: {},
	CategoryInvestment: {}, CategoryGift: {}, CategoryOther: {},
}

// Valid reports whether the category is part of the fixed enumeration.
func (c Category) Valid() bool {
	_, ok := categories[c]
	return ok
}

// RecurringPeriod is the cadence of a recurring transaction.
type RecurringPeriod string

const (
	RecurringDaily   RecurringPeriod = "daily"
	RecurringWeekly  RecurringPeriod = "weekly"
	RecurringMonthly RecurringPeriod = "monthly"
	RecurringYearly  RecurringPeriod = "yearly"
)

// Valid reports whether the period is part of the fixed set.
func (p RecurringPeriod) Valid() bool {
	switch p {
	case RecurringDaily, RecurringWeekly, RecurringMonthly, RecurringYearly:
		return true
	}
	return false
}

// Transaction is a single financial movement. The amount sign is always
// consistent with the type: positive for income, negative for expense.
type Transaction struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	Category        Category        `json:"category"`
	Type            Type            `json:"type"`
	Date            time.Time       `json:"date"`
	Tags            []string        `json:"tags"`
	IsRecurring     bool            `json:"isRecurring"`
	RecurringPeriod RecurringPeriod `json:"recurringPeriod,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Filter narrows a transaction listing. Predicates are conjunctive;
// nil members are not applied. The date range is half-open: [From, To).
type Filter struct {
	UserID   string
	Category *Category
	Type     *Type
	From     *time.Time
	To       *time.Time
}

// TypeAggregate is the per-type grouping result.
type TypeAggregate struct {
	Total decimal.Decimal `json:"total"`
	Count int64           `json:"count"`
	Avg   decimal.Decimal `json:"avg"`
}

// CategoryTypeAggregate is one row of the category/type grouping,
// ordered by total descending.
type CategoryTypeAggregate struct {
	Category Category        `json:"category"`
	Type     Type            `json:"type"`
	Total    decimal.Decimal `json:"total"`
	Count    int64           `json:"count"`
}

// Summary is the user-facing period report.
type Summary struct {
	Income           decimal.Decimal `json:"income"`
	Expenses         decimal.Decimal `json:"expenses"`
	Balance          decimal.Decimal `json:"balance"`
	TransactionCount int64           `json:"transactionCount"`
}

// TopCategory ranks a category by activity within a window. Totals are
// absolute amounts regardless of type.
type TopCategory struct {
	Category Category        `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int64           `json:"count"`
}
