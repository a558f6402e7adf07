// Package snapshot holds the storage representation shared by snapshot stores.
package snapshot

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gofinance/internal/domain"
)

// Record is a domain.Snapshot flattened for serialization. Amounts are kept as decimal
// strings so no store loses precision.
type Record struct {
	Login      string            `json:"login" yaml:"login"`
	SecretHash string            `json:"secret_hash" yaml:"secret_hash"`
	Operations []OperationRecord `json:"operations" yaml:"operations"`
	Budgets    []BudgetRecord    `json:"budgets" yaml:"budgets"`
}

// OperationRecord is one serialized operation.
type OperationRecord struct {
	ID        string    `json:"id" yaml:"id"`
	Kind      string    `json:"kind" yaml:"kind"`
	Category  string    `json:"category" yaml:"category"`
	Amount    string    `json:"amount" yaml:"amount"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// BudgetRecord is one serialized budget.
type BudgetRecord struct {
	Category string `json:"category" yaml:"category"`
	Limit    string `json:"limit" yaml:"limit"`
}

// FromSnapshot converts s to its storage form.
func FromSnapshot(s *domain.Snapshot) Record {
	r := Record{
		Login:      s.Login,
		SecretHash: s.SecretHash,
		Operations: make([]OperationRecord, 0, len(s.Operations)),
		Budgets:    make([]BudgetRecord, 0, len(s.Budgets)),
	}

	for _, op := range s.Operations {
		r.Operations = append(r.Operations, FromOperation(op))
	}

	for _, b := range s.Budgets {
		r.Budgets = append(r.Budgets, BudgetRecord{
			Category: b.Category.Name,
			Limit:    b.Limit.String(),
		})
	}

	return r
}

// FromOperation converts op to its storage form.
func FromOperation(op domain.Operation) OperationRecord {
	return OperationRecord{
		ID:        op.ID,
		Kind:      string(op.Category.Kind),
		Category:  op.Category.Name,
		Amount:    op.Amount.String(),
		CreatedAt: op.CreatedAt.UTC(),
	}
}

// ToSnapshot rebuilds the domain snapshot, validating every entry.
func (r Record) ToSnapshot() (*domain.Snapshot, error) {
	s := &domain.Snapshot{
		Login:      r.Login,
		SecretHash: r.SecretHash,
		Operations: make([]domain.Operation, 0, len(r.Operations)),
		Budgets:    make([]domain.Budget, 0, len(r.Budgets)),
	}

	for i, rec := range r.Operations {
		op, err := rec.ToOperation()
		if err != nil {
			return nil, fmt.Errorf("operation %d: %w", i, err)
		}
		s.Operations = append(s.Operations, op)
	}

	for i, rec := range r.Budgets {
		b, err := rec.ToBudget()
		if err != nil {
			return nil, fmt.Errorf("budget %d: %w", i, err)
		}
		s.Budgets = append(s.Budgets, b)
	}

	return s, nil
}

// ToOperation rebuilds a domain operation.
func (r OperationRecord) ToOperation() (domain.Operation, error) {
	kind, err := domain.ParseKind(r.Kind)
	if err != nil {
		return domain.Operation{}, err
	}

	category, err := domain.NewCategory(r.Category, kind)
	if err != nil {
		return domain.Operation{}, err
	}

	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return domain.Operation{}, fmt.Errorf("%w: amount %q", domain.ErrValidation, r.Amount)
	}

	return domain.RestoreOperation(r.ID, category, amount, r.CreatedAt)
}

// ToBudget rebuilds a domain budget.
func (r BudgetRecord) ToBudget() (domain.Budget, error) {
	category, err := domain.NewCategory(r.Category, domain.KindExpense)
	if err != nil {
		return domain.Budget{}, err
	}

	limit, err := decimal.NewFromString(r.Limit)
	if err != nil {
		return domain.Budget{}, fmt.Errorf("%w: limit %q", domain.ErrValidation, r.Limit)
	}

	return domain.NewBudget(category, limit)
}
