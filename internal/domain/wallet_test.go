package domain

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

func mustOp(t *testing.T, category Category, amount int64) Operation {
	t.Helper()

	op, err := NewOperation(category, decimal.NewFromInt(amount))
	if err != nil {
		t.Fatalf("failed to build operation: %v", err)
	}
	return op
}

func mustAdd(t *testing.T, w *Wallet, category Category, amount int64) {
	t.Helper()

	if err := w.AddOperation(mustOp(t, category, amount)); err != nil {
		t.Fatalf("failed to add operation: %v", err)
	}
}

func assertAmount(t *testing.T, label string, got decimal.Decimal, want int64) {
	t.Helper()

	if !got.Equal(decimal.NewFromInt(want)) {
		t.Errorf("%s: expected %d, got %s", label, want, got)
	}
}

func TestWallet_IncomeThenExpense(t *testing.T) {
	w := NewWallet()
	assertAmount(t, "initial balance", w.Balance(), 0)

	mustAdd(t, w, Income("Salary"), 1000)
	assertAmount(t, "balance after income", w.Balance(), 1000)

	mustAdd(t, w, Expense("Food"), 300)
	assertAmount(t, "balance after expense", w.Balance(), 700)
	assertAmount(t, "total income", w.TotalIncome(), 1000)
	assertAmount(t, "total expenses", w.TotalExpenses(), 300)
}

func TestWallet_NegativeBalanceAccepted(t *testing.T) {
	w := NewWallet()
	mustAdd(t, w, Expense("Rent"), 500)

	assertAmount(t, "balance", w.Balance(), -500)

	warnings := w.Warnings()
	want := []Warning{{Kind: WarningExpensesExceedIncome}, {Kind: WarningNegativeBalance}}
	if !reflect.DeepEqual(warnings, want) {
		t.Fatalf("expected %v, got %v", want, warnings)
	}
}

func TestWallet_AddOperationRejectsInvalid(t *testing.T) {
	w := NewWallet()

	err := w.AddOperation(Operation{Category: Expense("Food"), Amount: decimal.Zero})
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	if len(w.Operations()) != 0 || !w.Balance().IsZero() {
		t.Fatal("expected rejected operation to leave wallet untouched")
	}
}

func TestWallet_BalanceInvariantHoldsAfterEveryAppend(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	names := []string{"Food", "Salary", "Rent", "Gifts"}
	w := NewWallet()

	for i := 0; i < 200; i++ {
		category := Category{Name: names[rng.Intn(len(names))], Kind: KindIncome}
		if rng.Intn(2) == 0 {
			category.Kind = KindExpense
		}
		amount := decimal.New(rng.Int63n(100000)+1, -2)

		op, err := NewOperation(category, amount)
		if err != nil {
			t.Fatalf("failed to build operation: %v", err)
		}
		if err := w.AddOperation(op); err != nil {
			t.Fatalf("failed to add operation: %v", err)
		}

		if !w.Balance().Equal(w.TotalIncome().Sub(w.TotalExpenses())) {
			t.Fatalf("balance invariant broken after %d appends", i+1)
		}
		if err := w.Verify(); err != nil {
			t.Fatalf("verify failed after %d appends: %v", i+1, err)
		}
	}

	sumIncome := decimal.Zero
	for _, v := range w.IncomeByCategory() {
		sumIncome = sumIncome.Add(v)
	}
	if !sumIncome.Equal(w.TotalIncome()) {
		t.Errorf("income by category sums to %s, total is %s", sumIncome, w.TotalIncome())
	}

	sumExpenses := decimal.Zero
	for _, v := range w.ExpensesByCategory() {
		sumExpenses = sumExpenses.Add(v)
	}
	if !sumExpenses.Equal(w.TotalExpenses()) {
		t.Errorf("expenses by category sums to %s, total is %s", sumExpenses, w.TotalExpenses())
	}
}

func TestWallet_ByCategorySplitsKinds(t *testing.T) {
	w := NewWallet()
	mustAdd(t, w, Income("Gifts"), 50)
	mustAdd(t, w, Expense("Gifts"), 20)
	mustAdd(t, w, Expense("Gifts"), 5)

	income := w.IncomeByCategory()
	if len(income) != 1 {
		t.Fatalf("expected one income category, got %v", income)
	}
	assertAmount(t, "income gifts", income[Income("Gifts")], 50)

	expenses := w.ExpensesByCategory()
	assertAmount(t, "expense gifts", expenses[Expense("Gifts")], 25)
}

func TestWallet_CalculateByCategories(t *testing.T) {
	w := NewWallet()
	mustAdd(t, w, Expense("Food"), 120)
	mustAdd(t, w, Expense("Food"), 80)
	mustAdd(t, w, Income("Food"), 999)

	names := []string{"Food", "Nonexistent"}
	result := w.CalculateByCategories(names, KindExpense)

	if len(result) != 1 {
		t.Fatalf("expected only Food in result, got %v", result)
	}
	assertAmount(t, "Food", result["Food"], 200)

	unknown := w.UnknownCategories(names, KindExpense)
	if !reflect.DeepEqual(unknown, []string{"Nonexistent"}) {
		t.Fatalf("expected [Nonexistent], got %v", unknown)
	}
}

func TestWallet_CalculateAndUnknownAreComplementary(t *testing.T) {
	w := NewWallet()
	mustAdd(t, w, Expense("Food"), 10)
	mustAdd(t, w, Expense("Taxi"), 15)
	mustAdd(t, w, Income("Salary"), 100)

	names := []string{"Food", "Salary", "Taxi", "Cinema", "Food"}
	for _, kind := range []OperationKind{KindIncome, KindExpense} {
		result := w.CalculateByCategories(names, kind)
		unknown := toSet(w.UnknownCategories(names, kind))

		for _, name := range names {
			_, found := result[name]
			_, missing := unknown[name]
			if found == missing {
				t.Errorf("%s/%s: expected exactly one of found (%v) or unknown (%v)", kind, name, found, missing)
			}
		}
	}
}

func TestWallet_UnknownCategoriesDeduplicatesInRequestOrder(t *testing.T) {
	w := NewWallet()

	got := w.UnknownCategories([]string{"b", "a", "b"}, KindIncome)
	if !reflect.DeepEqual(got, []string{"b", "a"}) {
		t.Fatalf("expected [b a], got %v", got)
	}
}

func TestWallet_OperationsByCategory(t *testing.T) {
	w := NewWallet()
	mustAdd(t, w, Income("Gifts"), 1)
	mustAdd(t, w, Expense("Food"), 2)
	mustAdd(t, w, Expense("Gifts"), 3)

	ops := w.OperationsByCategory("Gifts")
	if len(ops) != 2 {
		t.Fatalf("expected 2 operations across kinds, got %d", len(ops))
	}
	assertAmount(t, "first", ops[0].Amount, 1)
	assertAmount(t, "second", ops[1].Amount, 3)

	if got := w.OperationsByCategory("gifts"); len(got) != 0 {
		t.Fatalf("expected case-sensitive match, got %d operations", len(got))
	}
}

func TestWallet_DefensiveCopies(t *testing.T) {
	w := NewWallet()
	mustAdd(t, w, Income("Salary"), 100)
	budget, _ := NewBudget(Expense("Food"), decimal.NewFromInt(50))
	w.SetBudget(budget)

	ops := w.Operations()
	ops[0].Amount = decimal.NewFromInt(1)
	_ = append(ops, mustOp(t, Income("Bonus"), 5))

	budgets := w.Budgets()
	delete(budgets, Expense("Food"))
	budgets[Expense("Taxi")] = budget

	if got := w.Operations(); len(got) != 1 || !got[0].Amount.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected log untouched, got %+v", got)
	}
	if got := w.Budgets(); len(got) != 1 {
		t.Fatalf("expected budgets untouched, got %+v", got)
	}
}

func TestWallet_ReadsAreIdempotent(t *testing.T) {
	w := NewWallet()
	mustAdd(t, w, Income("Salary"), 100)
	mustAdd(t, w, Expense("Food"), 40)

	names := []string{"Food", "Salary"}
	if !reflect.DeepEqual(w.ExpensesByCategory(), w.ExpensesByCategory()) {
		t.Error("expenses by category changed between reads")
	}
	if !reflect.DeepEqual(w.CalculateByCategories(names, KindExpense), w.CalculateByCategories(names, KindExpense)) {
		t.Error("calculate by categories changed between reads")
	}
	if !reflect.DeepEqual(w.Operations(), w.Operations()) {
		t.Error("operations changed between reads")
	}
	if !w.TotalIncome().Equal(w.TotalIncome()) {
		t.Error("total income changed between reads")
	}
}

func TestWallet_SetBudgetReplaces(t *testing.T) {
	w := NewWallet()
	first, _ := NewBudget(Expense("Food"), decimal.NewFromInt(100))
	second, _ := first.WithLimit(decimal.NewFromInt(250))

	w.SetBudget(first)
	w.SetBudget(second)

	budgets := w.Budgets()
	if len(budgets) != 1 {
		t.Fatalf("expected one budget per category, got %d", len(budgets))
	}
	assertAmount(t, "limit", budgets[Expense("Food")].Limit, 250)
}

func TestWallet_BudgetExceeded(t *testing.T) {
	w := NewWallet()
	mustAdd(t, w, Income("Salary"), 1000)
	budget, _ := NewBudget(Expense("Food"), decimal.NewFromInt(250))
	w.SetBudget(budget)

	mustAdd(t, w, Expense("Food"), 250)
	if w.BudgetExceeded(Expense("Food")) {
		t.Fatal("spending equal to the limit must not count as exceeded")
	}

	mustAdd(t, w, Expense("Food"), 50)
	if !w.BudgetExceeded(Expense("Food")) {
		t.Fatal("expected budget to be exceeded after cumulative spend of 300")
	}
	if len(w.OperationsByCategory("Food")) != 2 {
		t.Fatal("expected the exceeding expense to be recorded")
	}

	if w.BudgetExceeded(Expense("Taxi")) {
		t.Fatal("category without budget must never be exceeded")
	}
}

func TestWallet_BudgetStatuses(t *testing.T) {
	w := NewWallet()
	food, _ := NewBudget(Expense("Food"), decimal.NewFromInt(250))
	taxi, _ := NewBudget(Expense("Taxi"), decimal.NewFromInt(100))
	w.SetBudget(taxi)
	w.SetBudget(food)
	mustAdd(t, w, Expense("Food"), 300)

	statuses := w.BudgetStatuses()
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}

	if statuses[0].Budget.Category.Name != "Food" {
		t.Fatalf("expected statuses sorted by name, got %s first", statuses[0].Budget.Category.Name)
	}
	assertAmount(t, "food spent", statuses[0].Spent, 300)
	assertAmount(t, "food remaining", statuses[0].Remaining, -50)
	if !statuses[0].Exceeded {
		t.Error("expected food to be exceeded")
	}

	assertAmount(t, "taxi spent", statuses[1].Spent, 0)
	assertAmount(t, "taxi remaining", statuses[1].Remaining, 100)
	if statuses[1].Exceeded {
		t.Error("expected taxi within budget")
	}
}

func TestWallet_MergePlacesLoadedOperationsFirst(t *testing.T) {
	w := NewWallet()
	mustAdd(t, w, Income("transfer from bob"), 30)

	loaded := []Operation{mustOp(t, Income("Salary"), 100), mustOp(t, Expense("Food"), 40)}
	budget, _ := NewBudget(Expense("Food"), decimal.NewFromInt(60))

	if err := w.Merge(loaded, []Budget{budget}); err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	ops := w.Operations()
	if len(ops) != 3 {
		t.Fatalf("expected 3 operations, got %d", len(ops))
	}
	if ops[0].ID != loaded[0].ID || ops[1].ID != loaded[1].ID {
		t.Fatal("expected loaded operations ahead of in-memory ones, in their original order")
	}
	assertAmount(t, "balance", w.Balance(), 90)
	if err := w.Verify(); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if _, ok := w.Budget(Expense("Food")); !ok {
		t.Fatal("expected loaded budget to be overlaid")
	}
}

// Merging is append-only: loading the same snapshot twice duplicates the log. Callers
// must load at most once per login.
func TestWallet_MergeTwiceDuplicates(t *testing.T) {
	w := NewWallet()
	loaded := []Operation{mustOp(t, Income("Salary"), 100)}

	_ = w.Merge(loaded, nil)
	_ = w.Merge(loaded, nil)

	if len(w.Operations()) != 2 {
		t.Fatalf("expected duplicated log, got %d operations", len(w.Operations()))
	}
	assertAmount(t, "balance", w.Balance(), 200)
}

func TestWallet_MergeRejectsInvalidWithoutMutating(t *testing.T) {
	w := NewWallet()
	bad := []Operation{mustOp(t, Income("Salary"), 100), {Category: Expense("Food")}}

	if err := w.Merge(bad, nil); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if len(w.Operations()) != 0 {
		t.Fatal("expected wallet untouched")
	}

	wrongBudget := Budget{Category: Income("Salary"), Limit: decimal.NewFromInt(1)}
	if err := w.Merge(nil, []Budget{wrongBudget}); !errors.Is(err, ErrBudgetCategoryKind) {
		t.Fatalf("expected ErrBudgetCategoryKind, got %v", err)
	}
}
