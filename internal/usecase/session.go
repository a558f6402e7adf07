package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/gofinance/internal/domain"
)

// Session drives the ledger for one active user at a time. It is the caller of the
// accounting core: it owns the directory, loads and persists snapshots, and turns
// wallet state into advisory warnings.
type Session struct {
	directory *Directory
	store     SnapshotStore
	metrics   Metrics
	logger    zerolog.Logger

	current *domain.User
	// loaded tracks logins whose persisted snapshot has been merged into memory.
	// Merging is append-only, so a snapshot is loaded at most once per process.
	loaded map[string]bool
}

// SessionConfig holds Session dependencies.
type SessionConfig struct {
	Directory *Directory
	Store     SnapshotStore
	Metrics   Metrics        // optional
	Logger    *zerolog.Logger // optional, defaults to a disabled logger
}

// NewSession creates a new Session.
func NewSession(cfg SessionConfig) *Session {
	if cfg.Directory == nil {
		cfg.Directory = NewDirectory()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = nopMetrics{}
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &Session{
		directory: cfg.Directory,
		store:     cfg.Store,
		metrics:   cfg.Metrics,
		logger:    logger,
		loaded:    make(map[string]bool),
	}
}

// OperationResult is the outcome of recording an income or expense.
type OperationResult struct {
	Operation domain.Operation
	Balance   decimal.Decimal
	Warnings  []domain.Warning
}

// Directory returns the user registry.
func (s *Session) Directory() *Directory {
	return s.directory
}

// Bootstrap registers every persisted user in the directory. It returns the number of
// users restored.
func (s *Session) Bootstrap(ctx context.Context) (int, error) {
	credentials, err := s.store.ListCredentials(ctx)
	if err != nil {
		s.metrics.PersistenceFailed("list")
		return 0, fmt.Errorf("%w: list users: %w", domain.ErrPersistence, err)
	}

	restored := 0
	for _, c := range credentials {
		if _, err := s.directory.Restore(c); err != nil {
			if errors.Is(err, domain.ErrDuplicateLogin) {
				continue
			}
			return restored, err
		}
		restored++
	}

	s.logger.Debug().Int("users", restored).Msg("directory restored")

	return restored, nil
}

// Register creates a user and persists its empty snapshot. A persistence failure is
// returned, but the user stays registered for this process.
func (s *Session) Register(ctx context.Context, login, secret string) (*domain.User, error) {
	user, err := s.directory.Register(login, secret)
	if err != nil {
		return nil, err
	}

	s.loaded[login] = true
	s.logger.Info().Str("login", login).Msg("user registered")

	if err := s.persist(ctx, user); err != nil {
		return user, err
	}

	return user, nil
}

// Login authenticates and activates a user, merging its persisted snapshot on first use.
func (s *Session) Login(ctx context.Context, login, secret string) (*domain.User, error) {
	if s.current != nil {
		return nil, domain.ErrSessionAlreadyOpen
	}

	user, err := s.directory.Authenticate(login, secret)
	s.metrics.AuthAttempt(err == nil)
	if err != nil {
		s.logger.Warn().Str("login", login).Msg("authentication failed")
		return nil, err
	}

	if err := s.ensureLoaded(ctx, user); err != nil {
		return nil, err
	}

	s.current = user
	s.logger.Info().Str("login", login).Msg("user logged in")

	return user, nil
}

// Logout persists and deactivates the current user. The session is closed even when
// saving fails; the error is returned.
func (s *Session) Logout(ctx context.Context) error {
	user, err := s.Current()
	if err != nil {
		return err
	}

	s.current = nil
	s.logger.Info().Str("login", user.Login).Msg("user logged out")

	return s.persist(ctx, user)
}

// Close persists the current user, if any.
func (s *Session) Close(ctx context.Context) error {
	if s.current == nil {
		return nil
	}
	return s.Logout(ctx)
}

// Current returns the active user.
func (s *Session) Current() (*domain.User, error) {
	if s.current == nil {
		return nil, domain.ErrNoActiveSession
	}
	return s.current, nil
}

// AddIncome records an income operation for the active user.
func (s *Session) AddIncome(categoryName string, amount decimal.Decimal) (*OperationResult, error) {
	return s.record(categoryName, domain.KindIncome, amount)
}

// AddExpense records an expense operation for the active user. Exceeding a budget or the
// balance only produces warnings.
func (s *Session) AddExpense(categoryName string, amount decimal.Decimal) (*OperationResult, error) {
	return s.record(categoryName, domain.KindExpense, amount)
}

func (s *Session) record(categoryName string, kind domain.OperationKind, amount decimal.Decimal) (*OperationResult, error) {
	user, err := s.Current()
	if err != nil {
		return nil, err
	}

	category, err := domain.NewCategory(categoryName, kind)
	if err != nil {
		return nil, err
	}

	op, err := domain.NewOperation(category, amount)
	if err != nil {
		return nil, err
	}

	wallet := user.Wallet()
	if err := wallet.AddOperation(op); err != nil {
		return nil, err
	}

	s.metrics.OperationRecorded(kind, amount)

	var warnings []domain.Warning
	if kind == domain.KindExpense && wallet.BudgetExceeded(category) {
		warnings = append(warnings, domain.Warning{Kind: domain.WarningBudgetExceeded, Category: category.Name})
		s.metrics.BudgetExceeded()
	}
	warnings = append(warnings, wallet.Warnings()...)

	s.logger.Debug().
		Str("login", user.Login).
		Str("kind", string(kind)).
		Str("category", category.Name).
		Str("amount", amount.String()).
		Int("warnings", len(warnings)).
		Msg("operation recorded")

	return &OperationResult{
		Operation: op,
		Balance:   wallet.Balance(),
		Warnings:  warnings,
	}, nil
}

// ExceedsBalance reports whether spending amount would take the active user's balance
// below zero.
func (s *Session) ExceedsBalance(amount decimal.Decimal) (bool, error) {
	user, err := s.Current()
	if err != nil {
		return false, err
	}
	return amount.GreaterThan(user.Wallet().Balance()), nil
}

// SetBudget sets or replaces the spending limit of an expense category.
func (s *Session) SetBudget(categoryName string, limit decimal.Decimal) (domain.Budget, error) {
	user, err := s.Current()
	if err != nil {
		return domain.Budget{}, err
	}

	category, err := domain.NewCategory(categoryName, domain.KindExpense)
	if err != nil {
		return domain.Budget{}, err
	}

	budget, err := domain.NewBudget(category, limit)
	if err != nil {
		return domain.Budget{}, err
	}

	user.Wallet().SetBudget(budget)

	return budget, nil
}

// Report summarizes the active user's wallet.
func (s *Session) Report() (*Report, error) {
	user, err := s.Current()
	if err != nil {
		return nil, err
	}
	return BuildReport(user), nil
}

// CalculateByCategories sums the requested categories of one kind.
func (s *Session) CalculateByCategories(names []string, kind domain.OperationKind) (*CategoryTotals, error) {
	user, err := s.Current()
	if err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, domain.ErrInvalidKind
	}
	if len(names) > MaxCalculationCategories {
		return nil, fmt.Errorf("%w: at most %d categories per calculation", domain.ErrValidation, MaxCalculationCategories)
	}
	return CalculateCategoryTotals(user.Wallet(), names, kind), nil
}

// History returns the active user's operations in log order.
func (s *Session) History() ([]domain.Operation, error) {
	user, err := s.Current()
	if err != nil {
		return nil, err
	}
	return user.Wallet().Operations(), nil
}

// Transfer sends amount from the active user to toLogin and persists the recipient.
// When the transfer succeeds but saving the recipient fails, both the result and an
// ErrPersistence error are returned.
func (s *Session) Transfer(ctx context.Context, toLogin string, amount decimal.Decimal) (*TransferResult, error) {
	sender, err := s.Current()
	if err != nil {
		return nil, err
	}

	// The recipient's history must be in memory before it is saved again.
	if recipient, err := s.directory.Lookup(toLogin); err == nil && recipient != sender {
		if err := s.ensureLoaded(ctx, recipient); err != nil {
			return nil, err
		}
	}

	result, err := s.directory.Transfer(sender, toLogin, amount)
	if err != nil {
		s.metrics.TransferFailed(transferFailureReason(err))
		s.logger.Warn().Err(err).Str("from", sender.Login).Str("to", toLogin).Msg("transfer rejected")
		return nil, err
	}

	s.metrics.TransferCompleted(amount)
	s.logger.Info().
		Str("from", sender.Login).
		Str("to", toLogin).
		Str("amount", amount.String()).
		Msg("transfer completed")

	if err := s.persist(ctx, result.Recipient); err != nil {
		return result, err
	}

	return result, nil
}

func (s *Session) ensureLoaded(ctx context.Context, user *domain.User) error {
	if s.loaded[user.Login] {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultStoreTimeout)
	defer cancel()

	snapshot, err := s.store.Load(ctx, user.Login)
	if errors.Is(err, domain.ErrSnapshotNotFound) {
		s.loaded[user.Login] = true
		return nil
	}
	if err != nil {
		s.metrics.PersistenceFailed("load")
		s.logger.Error().Err(err).Str("login", user.Login).Msg("failed to load snapshot")
		return fmt.Errorf("%w: load %s: %w", domain.ErrPersistence, user.Login, err)
	}

	if err := snapshot.Apply(user); err != nil {
		return fmt.Errorf("%w: apply snapshot for %s: %w", domain.ErrPersistence, user.Login, err)
	}

	s.loaded[user.Login] = true
	s.logger.Debug().
		Str("login", user.Login).
		Int("operations", len(snapshot.Operations)).
		Int("budgets", len(snapshot.Budgets)).
		Msg("snapshot loaded")

	return nil
}

func (s *Session) persist(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultStoreTimeout)
	defer cancel()

	if err := s.store.Save(ctx, user.Snapshot()); err != nil {
		s.metrics.PersistenceFailed("save")
		s.logger.Error().Err(err).Str("login", user.Login).Msg("failed to save snapshot")
		return fmt.Errorf("%w: save %s: %w", domain.ErrPersistence, user.Login, err)
	}
	return nil
}

func transferFailureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrSelfTransfer):
		return "self_transfer"
	case errors.Is(err, domain.ErrRecipientNotFound):
		return "recipient_not_found"
	case errors.Is(err, domain.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	default:
		return "other"
	}
}
