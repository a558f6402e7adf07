package domain

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

// Wallet owns the operation log and the budgets of one user.
//
// The balance is maintained incrementally on every append. Totals are always recomputed
// from the log, which makes them the consistency check for the balance.
type Wallet struct {
	mu         sync.RWMutex
	operations []Operation
	budgets    map[Category]Budget
	balance    decimal.Decimal
}

// NewWallet creates an empty wallet.
func NewWallet() *Wallet {
	return &Wallet{
		budgets: make(map[Category]Budget),
		balance: decimal.Zero,
	}
}

// AddOperation appends op to the log and moves the balance.
func (w *Wallet) AddOperation(op Operation) error {
	if err := op.Validate(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.operations = append(w.operations, op)
	w.balance = w.balance.Add(op.Signed())

	return nil
}

// SetBudget inserts or replaces the budget for its category.
func (w *Wallet) SetBudget(budget Budget) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.budgets[budget.Category] = budget
}

// Merge folds persisted data into the wallet. Loaded operations keep their order and are
// placed ahead of anything already in the log; loaded budgets overlay existing ones.
//
// Merge appends unconditionally: merging the same data twice duplicates it.
func (w *Wallet) Merge(ops []Operation, budgets []Budget) error {
	delta := decimal.Zero
	for _, op := range ops {
		if err := op.Validate(); err != nil {
			return err
		}
		delta = delta.Add(op.Signed())
	}
	for _, b := range budgets {
		if b.Category.Kind != KindExpense {
			return ErrBudgetCategoryKind
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	merged := make([]Operation, 0, len(ops)+len(w.operations))
	merged = append(merged, ops...)
	merged = append(merged, w.operations...)
	w.operations = merged
	w.balance = w.balance.Add(delta)

	for _, b := range budgets {
		w.budgets[b.Category] = b
	}

	return nil
}

// Balance returns the incrementally maintained balance.
func (w *Wallet) Balance() decimal.Decimal {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.balance
}

// TotalIncome sums every income operation in the log.
func (w *Wallet) TotalIncome() decimal.Decimal {
	return w.total(KindIncome)
}

// TotalExpenses sums every expense operation in the log.
func (w *Wallet) TotalExpenses() decimal.Decimal {
	return w.total(KindExpense)
}

func (w *Wallet) total(kind OperationKind) decimal.Decimal {
	w.mu.RLock()
	defer w.mu.RUnlock()

	sum := decimal.Zero
	for _, op := range w.operations {
		if op.Category.Kind == kind {
			sum = sum.Add(op.Amount)
		}
	}
	return sum
}

// IncomeByCategory groups income amounts by category.
func (w *Wallet) IncomeByCategory() map[Category]decimal.Decimal {
	return w.byCategory(KindIncome)
}

// ExpensesByCategory groups expense amounts by category.
func (w *Wallet) ExpensesByCategory() map[Category]decimal.Decimal {
	return w.byCategory(KindExpense)
}

func (w *Wallet) byCategory(kind OperationKind) map[Category]decimal.Decimal {
	w.mu.RLock()
	defer w.mu.RUnlock()

	result := make(map[Category]decimal.Decimal)
	for _, op := range w.operations {
		if op.Category.Kind != kind {
			continue
		}
		result[op.Category] = result[op.Category].Add(op.Amount)
	}
	return result
}

// CalculateByCategories sums operations of the given kind for each requested name.
// Names without a single matching operation are left out of the result.
func (w *Wallet) CalculateByCategories(names []string, kind OperationKind) map[string]decimal.Decimal {
	requested := toSet(names)

	w.mu.RLock()
	defer w.mu.RUnlock()

	result := make(map[string]decimal.Decimal)
	for _, op := range w.operations {
		if op.Category.Kind != kind {
			continue
		}
		if _, ok := requested[op.Category.Name]; !ok {
			continue
		}
		result[op.Category.Name] = result[op.Category.Name].Add(op.Amount)
	}
	return result
}

// UnknownCategories returns the requested names that have no operation of the given
// kind, deduplicated and in request order.
func (w *Wallet) UnknownCategories(names []string, kind OperationKind) []string {
	w.mu.RLock()
	seen := make(map[string]struct{})
	for _, op := range w.operations {
		if op.Category.Kind == kind {
			seen[op.Category.Name] = struct{}{}
		}
	}
	w.mu.RUnlock()

	unknown := []string{}
	reported := make(map[string]struct{})
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		if _, ok := reported[name]; ok {
			continue
		}
		reported[name] = struct{}{}
		unknown = append(unknown, name)
	}
	return unknown
}

// OperationsByCategory returns operations of either kind whose category name matches,
// in log order.
func (w *Wallet) OperationsByCategory(name string) []Operation {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var result []Operation
	for _, op := range w.operations {
		if op.Category.Name == name {
			result = append(result, op)
		}
	}
	return result
}

// Operations returns a copy of the log.
func (w *Wallet) Operations() []Operation {
	w.mu.RLock()
	defer w.mu.RUnlock()

	ops := make([]Operation, len(w.operations))
	copy(ops, w.operations)
	return ops
}

// Budgets returns a copy of the budget set.
func (w *Wallet) Budgets() map[Category]Budget {
	w.mu.RLock()
	defer w.mu.RUnlock()

	budgets := make(map[Category]Budget, len(w.budgets))
	for c, b := range w.budgets {
		budgets[c] = b
	}
	return budgets
}

// Budget returns the budget set for category, if any.
func (w *Wallet) Budget(category Category) (Budget, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	b, ok := w.budgets[category]
	return b, ok
}

// BudgetExceeded reports whether cumulative spending in category is strictly above its
// budget limit. Categories without a budget are never exceeded.
func (w *Wallet) BudgetExceeded(category Category) bool {
	budget, ok := w.Budget(category)
	if !ok {
		return false
	}
	return w.ExpensesByCategory()[category].GreaterThan(budget.Limit)
}

// BudgetStatuses reports every budget with its spending, sorted by category name.
func (w *Wallet) BudgetStatuses() []BudgetStatus {
	budgets := w.Budgets()
	spent := w.ExpensesByCategory()

	statuses := make([]BudgetStatus, 0, len(budgets))
	for c, b := range budgets {
		s := spent[c]
		statuses = append(statuses, BudgetStatus{
			Budget:    b,
			Spent:     s,
			Remaining: b.Limit.Sub(s),
			Exceeded:  s.GreaterThan(b.Limit),
		})
	}

	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Budget.Category.Name < statuses[j].Budget.Category.Name
	})

	return statuses
}

// Warnings returns the advisory signals for the wallet's overall health.
func (w *Wallet) Warnings() []Warning {
	var warnings []Warning
	if w.TotalExpenses().GreaterThan(w.TotalIncome()) {
		warnings = append(warnings, Warning{Kind: WarningExpensesExceedIncome})
	}
	if w.Balance().IsNegative() {
		warnings = append(warnings, Warning{Kind: WarningNegativeBalance})
	}
	return warnings
}

// Verify recomputes the balance from the log and compares it with the maintained one.
func (w *Wallet) Verify() error {
	expected := w.TotalIncome().Sub(w.TotalExpenses())
	if !w.Balance().Equal(expected) {
		return ErrBalanceMismatch
	}
	return nil
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}
