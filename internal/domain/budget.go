package domain

import "github.com/shopspring/decimal"

// Budget is a spending limit bound to one expense category.
type Budget struct {
	Category Category
	Limit    decimal.Decimal
}

// NewBudget creates a budget. Only expense categories can carry one.
func NewBudget(category Category, limit decimal.Decimal) (Budget, error) {
	if category.Kind != KindExpense {
		return Budget{}, ErrBudgetCategoryKind
	}
	if limit.IsNegative() {
		return Budget{}, ErrInvalidLimit
	}
	return Budget{Category: category, Limit: limit}, nil
}

// WithLimit returns a copy of b with a new limit.
func (b Budget) WithLimit(limit decimal.Decimal) (Budget, error) {
	return NewBudget(b.Category, limit)
}

// BudgetStatus describes how much of a budget has been spent.
type BudgetStatus struct {
	Budget    Budget
	Spent     decimal.Decimal
	Remaining decimal.Decimal
	Exceeded  bool
}
