package usecase

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/iho/gofinance/internal/domain"
)

// CategoryAmount is a category with its summed amount.
type CategoryAmount struct {
	Category domain.Category
	Amount   decimal.Decimal
}

// Report is the full financial summary of one wallet.
type Report struct {
	Login              string
	TotalIncome        decimal.Decimal
	TotalExpenses      decimal.Decimal
	Balance            decimal.Decimal
	IncomeByCategory   []CategoryAmount
	ExpensesByCategory []CategoryAmount
	Budgets            []domain.BudgetStatus
	Warnings           []domain.Warning
}

// BuildReport summarizes user's wallet. Breakdowns are sorted by category name.
func BuildReport(user *domain.User) *Report {
	w := user.Wallet()

	return &Report{
		Login:              user.Login,
		TotalIncome:        w.TotalIncome(),
		TotalExpenses:      w.TotalExpenses(),
		Balance:            w.Balance(),
		IncomeByCategory:   sortedAmounts(w.IncomeByCategory()),
		ExpensesByCategory: sortedAmounts(w.ExpensesByCategory()),
		Budgets:            w.BudgetStatuses(),
		Warnings:           w.Warnings(),
	}
}

func sortedAmounts(m map[domain.Category]decimal.Decimal) []CategoryAmount {
	result := make([]CategoryAmount, 0, len(m))
	for c, a := range m {
		result = append(result, CategoryAmount{Category: c, Amount: a})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Category.Name < result[j].Category.Name
	})
	return result
}

// NamedAmount is a requested category name with its total.
type NamedAmount struct {
	Name   string
	Amount decimal.Decimal
}

// CategoryTotals is the answer to a per-category calculation.
type CategoryTotals struct {
	Kind    domain.OperationKind
	Totals  []NamedAmount // found names, in request order
	Unknown []string
	Total   decimal.Decimal
}

// CalculateCategoryTotals sums the requested category names of one kind and lists the
// names that have no operation of that kind.
func CalculateCategoryTotals(w *domain.Wallet, names []string, kind domain.OperationKind) *CategoryTotals {
	sums := w.CalculateByCategories(names, kind)

	result := &CategoryTotals{
		Kind:    kind,
		Unknown: w.UnknownCategories(names, kind),
		Total:   decimal.Zero,
	}

	seen := make(map[string]bool)
	for _, name := range names {
		amount, ok := sums[name]
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		result.Totals = append(result.Totals, NamedAmount{Name: name, Amount: amount})
		result.Total = result.Total.Add(amount)
	}

	return result
}
