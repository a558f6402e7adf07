package domain

import (
	"errors"
	"fmt"
)

// Error classes. Every specific error below wraps exactly one of them, so callers can
// match either the class or the specific failure with errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrPersistence       = errors.New("persistence failure")
)

var (
	// Operation errors
	ErrInvalidAmount = fmt.Errorf("%w: amount must be positive", ErrValidation)
	ErrInvalidKind   = fmt.Errorf("%w: unknown operation kind", ErrValidation)

	// Budget errors
	ErrBudgetCategoryKind = fmt.Errorf("%w: budget requires an expense category", ErrValidation)
	ErrInvalidLimit       = fmt.Errorf("%w: budget limit must not be negative", ErrValidation)

	// Wallet errors
	ErrBalanceMismatch = errors.New("wallet balance does not match operation log")

	// User directory errors
	ErrDuplicateLogin     = fmt.Errorf("%w: login already registered", ErrConflict)
	ErrUserNotFound       = fmt.Errorf("%w: user", ErrNotFound)
	ErrUnauthorized       = errors.New("invalid login or secret")
	ErrSelfTransfer       = fmt.Errorf("%w: cannot transfer to yourself", ErrValidation)
	ErrRecipientNotFound  = fmt.Errorf("%w: recipient", ErrNotFound)
	ErrSnapshotNotFound   = fmt.Errorf("%w: snapshot", ErrNotFound)
	ErrNoActiveSession    = errors.New("no user is logged in")
	ErrSessionAlreadyOpen = errors.New("a user is already logged in")
)
