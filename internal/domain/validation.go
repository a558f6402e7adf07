package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidLogin        = fmt.Errorf("%w: invalid login", ErrValidation)
	ErrInvalidSecret       = fmt.Errorf("%w: invalid secret", ErrValidation)
	ErrInvalidCategoryName = fmt.Errorf("%w: invalid category name", ErrValidation)

	// ErrAmountParse is returned when the text is not a decimal number at all.
	ErrAmountParse = fmt.Errorf("%w: amount is not a number", ErrValidation)
	// ErrAmountRange is returned for well-formed amounts outside (0, MaxAmount].
	ErrAmountRange = fmt.Errorf("%w: amount out of range", ErrValidation)
)

// Validation constants
const (
	MinLoginLength        = 3
	MaxLoginLength        = 64
	MinSecretLength       = 4
	MaxSecretLength       = 72 // bcrypt input limit
	MaxCategoryNameLength = 255
	MaxAmount             = "1000000000"
)

var maxAmount = decimal.RequireFromString(MaxAmount)

// ValidateLogin validates login length.
func ValidateLogin(login string) error {
	n := utf8.RuneCountInString(login)
	if n < MinLoginLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrInvalidLogin, MinLoginLength)
	}
	if n > MaxLoginLength {
		return fmt.Errorf("%w: must not exceed %d characters", ErrInvalidLogin, MaxLoginLength)
	}
	return nil
}

// ValidateSecret validates secret length.
func ValidateSecret(secret string) error {
	if utf8.RuneCountInString(secret) < MinSecretLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrInvalidSecret, MinSecretLength)
	}
	if len(secret) > MaxSecretLength {
		return fmt.Errorf("%w: must not exceed %d bytes", ErrInvalidSecret, MaxSecretLength)
	}
	return nil
}

// ValidateCategoryName rejects blank and oversized category names.
// The name itself is not trimmed: categories match exactly.
func ValidateCategoryName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidCategoryName)
	}
	if utf8.RuneCountInString(name) > MaxCategoryNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidCategoryName, MaxCategoryNameLength)
	}
	return nil
}

// ParseAmount converts caller text into an amount.
// Malformed text yields ErrAmountParse; zero, negative and over-ceiling values yield
// ErrAmountRange.
func ParseAmount(text string) (decimal.Decimal, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return decimal.Zero, fmt.Errorf("%w: empty input", ErrAmountParse)
	}

	amount, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrAmountParse, text)
	}

	if err := ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}

	return amount, nil
}

// ValidateAmount checks an amount against the accepted input range.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: must be positive", ErrAmountRange)
	}
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountRange, MaxAmount)
	}
	return nil
}

// ParseKind parses an operation kind name.
func ParseKind(s string) (OperationKind, error) {
	kind := OperationKind(strings.ToLower(strings.TrimSpace(s)))
	if !kind.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
	return kind, nil
}
