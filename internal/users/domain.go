package users

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents a registered account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Age          *int      `json:"age"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Profile holds the financial profile owned by a user, one-to-one.
type Profile struct {
	UserID         string          `json:"userId"`
	MonthlyIncome  decimal.Decimal `json:"monthlyIncome"`
	SpendingLimit  decimal.Decimal `json:"spendingLimit"`
	FinancialGoals string          `json:"financialGoals,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// UserWithProfile is the user row with its profile fields merged in.
// Profile fields are zero-valued when no profile row exists.
type UserWithProfile struct {
	User
	MonthlyIncome  decimal.Decimal `json:"monthlyIncome"`
	SpendingLimit  decimal.Decimal `json:"spendingLimit"`
	FinancialGoals string          `json:"financialGoals,omitempty"`
}

// Stats is the user snapshot plus the derived profile completion score.
type Stats struct {
	UserWithProfile
	ProfileCompletion int `json:"profileCompletion"`
}

// CreateUserParams carries the fields required to register a user.
type CreateUserParams struct {
	Email        string
	PasswordHash string
	Name         string
	Age          *int
}

// UpdateUserParams applies merge-on-present updates: only non-nil
// fields overwrite existing values.
type UpdateUserParams struct {
	Name     *string
	Age      *int
	IsActive *bool
}

// UpdateProfileParams applies merge-on-present updates to the profile.
type UpdateProfileParams struct {
	MonthlyIncome  *decimal.Decimal
	SpendingLimit  *decimal.Decimal
	FinancialGoals *string
}
