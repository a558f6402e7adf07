package domain

import (
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// Operation is one income or expense record. Operations are values: once built they are
// never modified, only appended to a wallet.
type Operation struct {
	CreatedAt time.Time
	ID        string
	Category  Category
	Amount    decimal.Decimal
}

// TimestampPrecision is the finest timestamp resolution every store keeps.
const TimestampPrecision = time.Microsecond

// NewOperation creates an operation stamped with a fresh ID and the current time.
func NewOperation(category Category, amount decimal.Decimal) (Operation, error) {
	return RestoreOperation(ulid.Make().String(), category, amount, time.Now().UTC().Truncate(TimestampPrecision))
}

// RestoreOperation rebuilds a persisted operation.
func RestoreOperation(id string, category Category, amount decimal.Decimal, createdAt time.Time) (Operation, error) {
	op := Operation{
		ID:        id,
		Category:  category,
		Amount:    amount,
		CreatedAt: createdAt,
	}

	if err := op.Validate(); err != nil {
		return Operation{}, err
	}

	return op, nil
}

// Validate checks if the operation can be appended to a wallet.
func (o Operation) Validate() error {
	if !o.Category.Kind.Valid() {
		return ErrInvalidKind
	}
	if !o.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// Signed returns the amount with the sign it contributes to the balance.
func (o Operation) Signed() decimal.Decimal {
	if o.Category.Kind == KindExpense {
		return o.Amount.Neg()
	}
	return o.Amount
}
