package cli

import (
	"strings"

	"github.com/iho/gofinance/internal/usecase"
)

func (r *REPL) showReport() {
	report, err := r.session.Report()
	if err != nil {
		r.fail("%v", err)
		return
	}

	r.println("")
	r.println(r.styles.title.Render("=== Financial report: " + report.Login + " ==="))
	r.printf("Total income:   %s\n", formatAmount(report.TotalIncome))
	r.printf("Total expenses: %s\n", formatAmount(report.TotalExpenses))

	r.printCategories("Income by category:", report.IncomeByCategory)
	r.printCategories("Expenses by category:", report.ExpensesByCategory)

	if len(report.Budgets) > 0 {
		r.println("")
		r.println(r.styles.header.Render("Budgets:"))
		for _, st := range report.Budgets {
			mark := r.styles.success.Render("✓")
			if st.Exceeded {
				mark = r.styles.err.Render("✗")
			}
			r.printf("   %s %s: limit %s, remaining %s\n",
				mark, st.Budget.Category.Name,
				formatAmount(st.Budget.Limit), formatAmount(st.Remaining))
		}
	}

	r.println(r.styles.subtle.Render(strings.Repeat("-", ruleWidth)))
	balance := "Balance: " + formatAmount(report.Balance)
	if report.Balance.IsNegative() {
		r.println(r.styles.err.Render(balance))
	} else {
		r.println(r.styles.header.Render(balance))
	}

	r.showWarnings(report.Warnings)
}

func (r *REPL) printCategories(title string, amounts []usecase.CategoryAmount) {
	if len(amounts) == 0 {
		return
	}

	r.println("")
	r.println(r.styles.header.Render(title))
	for _, a := range amounts {
		r.printf("   - %s: %s\n", a.Category.Name, formatAmount(a.Amount))
	}
}

func (r *REPL) showHistory() {
	ops, err := r.session.History()
	if err != nil {
		r.fail("%v", err)
		return
	}

	if len(ops) == 0 {
		r.println("History is empty.")
		return
	}

	r.println("")
	r.println(r.styles.header.Render("=== Operation history ==="))
	for _, op := range ops {
		r.printf("%s  %-7s %12s  %s\n",
			r.styles.subtle.Render(op.CreatedAt.Local().Format("2006-01-02 15:04")),
			op.Category.Kind,
			formatAmount(op.Amount),
			op.Category.Name)
	}
}
