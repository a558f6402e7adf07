// Package cli implements the interactive menu over a usecase.Session.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/gofinance/internal/domain"
	"github.com/iho/gofinance/internal/usecase"
)

const ruleWidth = 50

// REPL reads menu choices line by line and drives a session.
type REPL struct {
	session *usecase.Session
	scanner *bufio.Scanner
	out     io.Writer
	styles  styles
	logger  zerolog.Logger
}

// New creates a REPL reading from in and writing to out.
func New(session *usecase.Session, in io.Reader, out io.Writer, logger zerolog.Logger) *REPL {
	return &REPL{
		session: session,
		scanner: bufio.NewScanner(in),
		out:     out,
		styles:  newStyles(out),
		logger:  logger,
	}
}

// Run serves menus until the user exits or input ends, then saves the active user.
func (r *REPL) Run(ctx context.Context) error {
	r.println(r.styles.title.Render("=== Personal finance manager ==="))

	for {
		if err := ctx.Err(); err != nil {
			break
		}

		var (
			done bool
			err  error
		)
		if _, cerr := r.session.Current(); cerr != nil {
			done, err = r.authMenu(ctx)
		} else {
			done, err = r.mainMenu(ctx)
		}

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if done {
			break
		}
	}

	// Save even after an interrupt cancelled ctx.
	if err := r.session.Close(context.WithoutCancel(ctx)); err != nil {
		r.logger.Error().Err(err).Msg("failed to save on exit")
		r.warn("could not save your data: %v", err)
		return err
	}

	r.println("Goodbye!")
	return nil
}

func (r *REPL) authMenu(ctx context.Context) (bool, error) {
	r.println("")
	r.println(r.styles.header.Render("=== Sign in ==="))
	r.println("1. Log in")
	r.println("2. Register")
	r.println("3. Exit")

	choice, err := r.prompt("Choose an action: ")
	if err != nil {
		return false, err
	}

	switch choice {
	case "1":
		return false, r.login(ctx)
	case "2":
		return false, r.register(ctx)
	case "3":
		return true, nil
	default:
		r.fail("invalid choice, pick 1, 2 or 3")
		return false, nil
	}
}

func (r *REPL) mainMenu(ctx context.Context) (bool, error) {
	r.println("")
	r.println(r.styles.header.Render("=== Main menu ==="))
	r.println("1. Add income")
	r.println("2. Add expense")
	r.println("3. Set budget")
	r.println("4. Show report")
	r.println("5. Totals by category")
	r.println("6. Transfer to another user")
	r.println("7. Operation history")
	r.println("8. Log out")

	choice, err := r.prompt("Choose an action: ")
	if err != nil {
		return false, err
	}

	switch choice {
	case "1":
		err = r.addIncome()
	case "2":
		err = r.addExpense()
	case "3":
		err = r.setBudget()
	case "4":
		r.showReport()
	case "5":
		err = r.calculate()
	case "6":
		err = r.transfer(ctx)
	case "7":
		r.showHistory()
	case "8":
		r.logout(ctx)
	default:
		r.fail("invalid choice, pick a number from 1 to 8")
	}

	return false, err
}

func (r *REPL) login(ctx context.Context) error {
	login, err := r.promptRequired("Login: ", "login cannot be empty")
	if err != nil || login == "" {
		return err
	}

	secret, err := r.promptRequired("Password: ", "password cannot be empty")
	if err != nil || secret == "" {
		return err
	}

	_, err = r.session.Login(ctx, login, secret)
	switch {
	case err == nil:
		r.ok("Welcome, %s!", login)
	case errors.Is(err, domain.ErrUnauthorized):
		r.fail("invalid login or password")
	case errors.Is(err, domain.ErrPersistence):
		r.fail("could not load your data: %v", err)
	default:
		r.fail("%v", err)
	}

	return nil
}

func (r *REPL) register(ctx context.Context) error {
	login, err := r.promptRequired("Login: ", "login cannot be empty")
	if err != nil || login == "" {
		return err
	}

	if err := domain.ValidateLogin(login); err != nil {
		r.fail("login must be %d to %d characters", domain.MinLoginLength, domain.MaxLoginLength)
		return nil
	}
	if _, err := r.session.Directory().Lookup(login); err == nil {
		r.fail("a user with this login already exists")
		return nil
	}

	secret, err := r.promptRequired("Password: ", "password cannot be empty")
	if err != nil || secret == "" {
		return err
	}

	_, err = r.session.Register(ctx, login, secret)
	switch {
	case err == nil:
		r.ok("Registration successful. You can now log in.")
	case errors.Is(err, domain.ErrInvalidSecret):
		r.fail("password must be at least %d characters", domain.MinSecretLength)
	case errors.Is(err, domain.ErrDuplicateLogin):
		r.fail("a user with this login already exists")
	case errors.Is(err, domain.ErrPersistence):
		r.ok("Registration successful. You can now log in.")
		r.warn("could not save the new account: %v", err)
	default:
		r.fail("%v", err)
	}

	return nil
}

func (r *REPL) addIncome() error {
	category, err := r.promptRequired("Income category: ", "category name cannot be empty")
	if err != nil || category == "" {
		return err
	}

	amount, ok, err := r.promptAmount("Income amount: ")
	if err != nil || !ok {
		return err
	}

	result, err := r.session.AddIncome(category, amount)
	if err != nil {
		r.fail("%v", err)
		return nil
	}

	r.ok("Income added.")
	r.showWarnings(result.Warnings)
	return nil
}

func (r *REPL) addExpense() error {
	category, err := r.promptRequired("Expense category: ", "category name cannot be empty")
	if err != nil || category == "" {
		return err
	}

	amount, ok, err := r.promptAmount("Expense amount: ")
	if err != nil || !ok {
		return err
	}

	exceeds, err := r.session.ExceedsBalance(amount)
	if err != nil {
		r.fail("%v", err)
		return nil
	}
	if exceeds {
		r.warn("the expense exceeds your current balance")
		confirmed, err := r.confirm("Continue? (yes/no): ")
		if err != nil {
			return err
		}
		if !confirmed {
			r.println("Operation cancelled.")
			return nil
		}
	}

	result, err := r.session.AddExpense(category, amount)
	if err != nil {
		r.fail("%v", err)
		return nil
	}

	r.ok("Expense added.")
	r.showWarnings(result.Warnings)
	return nil
}

func (r *REPL) setBudget() error {
	category, err := r.promptRequired("Expense category for the budget: ", "category name cannot be empty")
	if err != nil || category == "" {
		return err
	}

	limit, ok, err := r.promptAmount("Budget limit: ")
	if err != nil || !ok {
		return err
	}

	if _, err := r.session.SetBudget(category, limit); err != nil {
		r.fail("%v", err)
		return nil
	}

	r.ok("Budget set.")
	return nil
}

func (r *REPL) calculate() error {
	r.println("")
	r.println(r.styles.header.Render("=== Totals by category ==="))
	r.println("1. Income")
	r.println("2. Expenses")

	choice, err := r.prompt("Operation type: ")
	if err != nil {
		return err
	}

	var kind domain.OperationKind
	switch choice {
	case "1":
		kind = domain.KindIncome
	case "2":
		kind = domain.KindExpense
	default:
		r.fail("invalid choice")
		return nil
	}

	input, err := r.promptRequired("Category names, comma separated: ", "no categories entered")
	if err != nil || input == "" {
		return err
	}

	names := splitNames(input)
	if len(names) == 0 {
		r.fail("no valid category names entered")
		return nil
	}

	totals, err := r.session.CalculateByCategories(names, kind)
	if err != nil {
		r.fail("%v", err)
		return nil
	}

	if len(totals.Unknown) > 0 {
		r.warn("categories not found: %s", strings.Join(totals.Unknown, ", "))
	}

	if len(totals.Totals) == 0 {
		r.println("No operations found for the selected categories.")
		return nil
	}

	r.println("")
	r.println(r.styles.header.Render("Results:"))
	for _, t := range totals.Totals {
		r.printf("   - %s: %s\n", t.Name, formatAmount(t.Amount))
	}
	r.printf("   Total: %s\n", formatAmount(totals.Total))
	return nil
}

func (r *REPL) transfer(ctx context.Context) error {
	sender, err := r.session.Current()
	if err != nil {
		return nil
	}

	recipient, err := r.promptRequired("Recipient login: ", "recipient login cannot be empty")
	if err != nil || recipient == "" {
		return err
	}
	if recipient == sender.Login {
		r.fail("you cannot transfer to yourself")
		return nil
	}
	if _, err := r.session.Directory().Lookup(recipient); err != nil {
		r.fail("no user with this login")
		return nil
	}

	amount, ok, err := r.promptAmount("Transfer amount: ")
	if err != nil || !ok {
		return err
	}
	if sender.Wallet().Balance().LessThan(amount) {
		r.fail("insufficient funds for this transfer")
		return nil
	}

	confirmed, err := r.confirm(fmt.Sprintf("Transfer %s to %s? (yes/no): ", formatAmount(amount), recipient))
	if err != nil {
		return err
	}
	if !confirmed {
		r.println("Transfer cancelled.")
		return nil
	}

	result, err := r.session.Transfer(ctx, recipient, amount)
	if result != nil {
		r.ok("Transfer completed.")
	}
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrPersistence):
		r.warn("could not save the recipient's data: %v", err)
	case errors.Is(err, domain.ErrInsufficientFunds):
		r.fail("insufficient funds for this transfer")
	default:
		r.fail("%v", err)
	}

	return nil
}

func (r *REPL) logout(ctx context.Context) {
	if err := r.session.Logout(ctx); err != nil {
		r.warn("could not save your data: %v", err)
	}
	r.ok("You are logged out.")
}

func (r *REPL) showWarnings(warnings []domain.Warning) {
	for _, w := range warnings {
		switch w.Kind {
		case domain.WarningBudgetExceeded:
			r.warn("budget exceeded for category '%s'!", w.Category)
		case domain.WarningExpensesExceedIncome:
			r.warn("expenses exceed income!")
		case domain.WarningNegativeBalance:
			r.println(r.styles.err.Render("CRITICAL: your balance is negative!"))
		}
	}
}

func (r *REPL) prompt(label string) (string, error) {
	fmt.Fprint(r.out, r.styles.prompt.Render(label))

	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}

	return strings.TrimSpace(r.scanner.Text()), nil
}

// promptRequired returns "" after reporting emptyMsg when the answer is blank.
func (r *REPL) promptRequired(label, emptyMsg string) (string, error) {
	answer, err := r.prompt(label)
	if err != nil {
		return "", err
	}
	if answer == "" {
		r.fail("%s", emptyMsg)
	}
	return answer, nil
}

func (r *REPL) promptAmount(label string) (decimal.Decimal, bool, error) {
	text, err := r.prompt(label)
	if err != nil {
		return decimal.Zero, false, err
	}

	amount, err := domain.ParseAmount(text)
	switch {
	case err == nil:
		return amount, true, nil
	case errors.Is(err, domain.ErrAmountParse):
		r.fail("enter a valid number")
	case errors.Is(err, domain.ErrAmountRange):
		r.fail("amount must be positive and at most %s", domain.MaxAmount)
	default:
		r.fail("%v", err)
	}

	return decimal.Zero, false, nil
}

func (r *REPL) confirm(label string) (bool, error) {
	answer, err := r.prompt(label)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "yes", "y":
		return true, nil
	default:
		return false, nil
	}
}

func (r *REPL) println(s string) {
	fmt.Fprintln(r.out, s)
}

func (r *REPL) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

func (r *REPL) ok(format string, args ...any) {
	r.println(r.styles.success.Render(fmt.Sprintf(format, args...)))
}

func (r *REPL) warn(format string, args ...any) {
	r.println(r.styles.warning.Render("Warning: " + fmt.Sprintf(format, args...)))
}

func (r *REPL) fail(format string, args ...any) {
	r.println(r.styles.err.Render("Error: " + fmt.Sprintf(format, args...)))
}

func splitNames(input string) []string {
	var names []string
	for _, part := range strings.Split(input, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}
