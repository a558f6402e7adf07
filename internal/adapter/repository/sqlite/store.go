// Package sqlite stores snapshots in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/rs/zerolog"

	"github.com/iho/gofinance/internal/adapter/repository/snapshot"
	"github.com/iho/gofinance/internal/domain"
)

// Migrations holds the schema, for use with sqlite.RunMigrations.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// insertBatch keeps multi-row inserts well under SQLite's bound-variable limit.
const insertBatch = 500

// Store implements usecase.SnapshotStore on SQLite.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewStore creates a new Store. The schema must already be migrated.
func NewStore(db *sql.DB, logger zerolog.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Load reads the snapshot for login.
func (s *Store) Load(ctx context.Context, login string) (*domain.Snapshot, error) {
	rec := snapshot.Record{Login: login}

	err := sq.Select("secret_hash").
		From("users").
		Where(sq.Eq{"login": login}).
		RunWith(s.db).
		QueryRowContext(ctx).
		Scan(&rec.SecretHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	if rec.Operations, err = s.loadOperations(ctx, login); err != nil {
		return nil, err
	}
	if rec.Budgets, err = s.loadBudgets(ctx, login); err != nil {
		return nil, err
	}

	return rec.ToSnapshot()
}

func (s *Store) loadOperations(ctx context.Context, login string) ([]snapshot.OperationRecord, error) {
	rows, err := sq.Select("id", "kind", "category", "amount", "created_at").
		From("operations").
		Where(sq.Eq{"login": login}).
		OrderBy("position").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("load operations: %w", err)
	}
	defer rows.Close()

	var ops []snapshot.OperationRecord
	for rows.Next() {
		var (
			op        snapshot.OperationRecord
			createdAt string
		)
		if err := rows.Scan(&op.ID, &op.Kind, &op.Category, &op.Amount, &createdAt); err != nil {
			return nil, fmt.Errorf("scan operation: %w", err)
		}
		if op.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("%w: operation %s timestamp %q", domain.ErrValidation, op.ID, createdAt)
		}
		ops = append(ops, op)
	}

	return ops, rows.Err()
}

func (s *Store) loadBudgets(ctx context.Context, login string) ([]snapshot.BudgetRecord, error) {
	rows, err := sq.Select("category", "limit_amount").
		From("budgets").
		Where(sq.Eq{"login": login}).
		OrderBy("category").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("load budgets: %w", err)
	}
	defer rows.Close()

	var budgets []snapshot.BudgetRecord
	for rows.Next() {
		var b snapshot.BudgetRecord
		if err := rows.Scan(&b.Category, &b.Limit); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}

	return budgets, rows.Err()
}

// Save replaces everything stored for the snapshot's login in one transaction.
func (s *Store) Save(ctx context.Context, snap *domain.Snapshot) error {
	rec := snapshot.FromSnapshot(snap)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			s.logger.Warn().Err(err).Str("login", rec.Login).Msg("rollback failed")
		}
	}()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = sq.Insert("users").
		Columns("login", "secret_hash", "updated_at").
		Values(rec.Login, rec.SecretHash, now).
		Suffix("ON CONFLICT (login) DO UPDATE SET secret_hash = excluded.secret_hash, updated_at = excluded.updated_at").
		RunWith(tx).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}

	if err := s.replaceOperations(ctx, tx, rec); err != nil {
		return err
	}
	if err := s.replaceBudgets(ctx, tx, rec); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.logger.Debug().
		Str("login", rec.Login).
		Int("operations", len(rec.Operations)).
		Int("budgets", len(rec.Budgets)).
		Msg("snapshot saved")

	return nil
}

func (s *Store) replaceOperations(ctx context.Context, tx *sql.Tx, rec snapshot.Record) error {
	if _, err := sq.Delete("operations").Where(sq.Eq{"login": rec.Login}).RunWith(tx).ExecContext(ctx); err != nil {
		return fmt.Errorf("clear operations: %w", err)
	}

	for start := 0; start < len(rec.Operations); start += insertBatch {
		end := min(start+insertBatch, len(rec.Operations))

		q := sq.Insert("operations").
			Columns("login", "position", "id", "kind", "category", "amount", "created_at")
		for i, op := range rec.Operations[start:end] {
			q = q.Values(rec.Login, start+i, op.ID, op.Kind, op.Category, op.Amount, op.CreatedAt.Format(time.RFC3339Nano))
		}

		if _, err := q.RunWith(tx).ExecContext(ctx); err != nil {
			return fmt.Errorf("insert operations: %w", err)
		}
	}

	return nil
}

func (s *Store) replaceBudgets(ctx context.Context, tx *sql.Tx, rec snapshot.Record) error {
	if _, err := sq.Delete("budgets").Where(sq.Eq{"login": rec.Login}).RunWith(tx).ExecContext(ctx); err != nil {
		return fmt.Errorf("clear budgets: %w", err)
	}

	if len(rec.Budgets) == 0 {
		return nil
	}

	q := sq.Insert("budgets").Columns("login", "category", "limit_amount")
	for _, b := range rec.Budgets {
		q = q.Values(rec.Login, b.Category, b.Limit)
	}

	if _, err := q.RunWith(tx).ExecContext(ctx); err != nil {
		return fmt.Errorf("insert budgets: %w", err)
	}

	return nil
}

// ListCredentials returns every stored user, sorted by login.
func (s *Store) ListCredentials(ctx context.Context) ([]domain.Credential, error) {
	rows, err := sq.Select("login", "secret_hash").
		From("users").
		OrderBy("login").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var creds []domain.Credential
	for rows.Next() {
		var c domain.Credential
		if err := rows.Scan(&c.Login, &c.SecretHash); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		creds = append(creds, c)
	}

	return creds, rows.Err()
}
