package domain

// WarningKind identifies an advisory signal. Warnings never reject an operation.
type WarningKind string

const (
	WarningBudgetExceeded       WarningKind = "budget_exceeded"
	WarningExpensesExceedIncome WarningKind = "expenses_exceed_income"
	WarningNegativeBalance      WarningKind = "negative_balance"
)

// Warning is an advisory signal raised after a wallet mutation.
type Warning struct {
	Kind     WarningKind
	Category string // set for budget warnings
}
