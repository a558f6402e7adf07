// Package postgres stores snapshots in PostgreSQL.
package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/iho/gofinance/internal/adapter/repository/snapshot"
	"github.com/iho/gofinance/internal/domain"
)

// Migrations holds the schema, for use with postgres.RunMigrations.
//
//go:embed migrations/*.sql
var Migrations embed.FS

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// insertBatch bounds the rows of one multi-row insert.
const insertBatch = 1000

// Pool is the subset of *pgxpool.Pool the store needs.
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements usecase.SnapshotStore on PostgreSQL.
type Store struct {
	pool    Pool
	retrier *Retrier
	logger  zerolog.Logger
}

// NewStore creates a new Store. The schema must already be migrated.
func NewStore(pool Pool, logger zerolog.Logger) *Store {
	return &Store{
		pool:    pool,
		retrier: NewRetrier(logger),
		logger:  logger,
	}
}

// Load reads the snapshot for login.
func (s *Store) Load(ctx context.Context, login string) (*domain.Snapshot, error) {
	query, args, err := psql.Select("secret_hash").
		From("users").
		Where(sq.Eq{"login": login}).
		ToSql()
	if err != nil {
		return nil, err
	}

	rec := snapshot.Record{Login: login}
	err = s.pool.QueryRow(ctx, query, args...).Scan(&rec.SecretHash)
	if errors.Is(err, pgx.ErrNoRows) {
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
	query, args, err := psql.Select("id", "kind", "category", "amount::text", "created_at").
		From("operations").
		Where(sq.Eq{"login": login}).
		OrderBy("position").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load operations: %w", err)
	}
	defer rows.Close()

	var ops []snapshot.OperationRecord
	for rows.Next() {
		var op snapshot.OperationRecord
		if err := rows.Scan(&op.ID, &op.Kind, &op.Category, &op.Amount, &op.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan operation: %w", err)
		}
		ops = append(ops, op)
	}

	return ops, rows.Err()
}

func (s *Store) loadBudgets(ctx context.Context, login string) ([]snapshot.BudgetRecord, error) {
	query, args, err := psql.Select("category", "limit_amount::text").
		From("budgets").
		Where(sq.Eq{"login": login}).
		OrderBy("category").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, query, args...)
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

// Save replaces everything stored for the snapshot's login in one transaction,
// retrying deadlocks and serialization failures.
func (s *Store) Save(ctx context.Context, snap *domain.Snapshot) error {
	rec := snapshot.FromSnapshot(snap)

	err := s.retrier.Retry(ctx, "save snapshot", rec.Login, func() error {
		return s.inTx(ctx, func(tx pgx.Tx) error {
			return s.save(ctx, tx, rec)
		})
	})
	if err != nil {
		return err
	}

	s.logger.Debug().
		Str("login", rec.Login).
		Int("operations", len(rec.Operations)).
		Int("budgets", len(rec.Budgets)).
		Msg("snapshot saved")

	return nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			s.logger.Warn().Err(rbErr).Msg("rollback failed")
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

func (s *Store) save(ctx context.Context, tx pgx.Tx, rec snapshot.Record) error {
	upsert := psql.Insert("users").
		Columns("login", "secret_hash", "updated_at").
		Values(rec.Login, rec.SecretHash, time.Now().UTC()).
		Suffix("ON CONFLICT (login) DO UPDATE SET secret_hash = EXCLUDED.secret_hash, updated_at = EXCLUDED.updated_at")
	if _, err := exec(ctx, tx, upsert); err != nil {
		return fmt.Errorf("save user: %w", err)
	}

	if _, err := exec(ctx, tx, psql.Delete("operations").Where(sq.Eq{"login": rec.Login})); err != nil {
		return fmt.Errorf("clear operations: %w", err)
	}

	for start := 0; start < len(rec.Operations); start += insertBatch {
		end := min(start+insertBatch, len(rec.Operations))

		q := psql.Insert("operations").
			Columns("login", "position", "id", "kind", "category", "amount", "created_at")
		for i, op := range rec.Operations[start:end] {
			q = q.Values(rec.Login, start+i, op.ID, op.Kind, op.Category, op.Amount, op.CreatedAt)
		}

		if _, err := exec(ctx, tx, q); err != nil {
			return fmt.Errorf("insert operations: %w", err)
		}
	}

	if _, err := exec(ctx, tx, psql.Delete("budgets").Where(sq.Eq{"login": rec.Login})); err != nil {
		return fmt.Errorf("clear budgets: %w", err)
	}

	if len(rec.Budgets) > 0 {
		q := psql.Insert("budgets").Columns("login", "category", "limit_amount")
		for _, b := range rec.Budgets {
			q = q.Values(rec.Login, b.Category, b.Limit)
		}
		if _, err := exec(ctx, tx, q); err != nil {
			return fmt.Errorf("insert budgets: %w", err)
		}
	}

	return nil
}

// ListCredentials returns every stored user, sorted by login.
func (s *Store) ListCredentials(ctx context.Context) ([]domain.Credential, error) {
	query, args, err := psql.Select("login", "secret_hash").
		From("users").
		OrderBy("login").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, query, args...)
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

func exec(ctx context.Context, tx pgx.Tx, b sq.Sqlizer) (pgconn.CommandTag, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	return tx.Exec(ctx, query, args...)
}
