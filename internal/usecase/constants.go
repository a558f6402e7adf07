package usecase

import "time"

const (
	// DefaultStoreTimeout bounds a single snapshot load or save.
	DefaultStoreTimeout = 10 * time.Second

	// MaxCalculationCategories caps the category names accepted by one calculation.
	MaxCalculationCategories = 100
)
