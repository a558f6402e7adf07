package postgres

import (
	"context"
	"errors"
	"io/fs"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/gofinance/internal/domain"
)

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	store := NewStore(mock, zerolog.Nop())
	store.retrier.initialInterval = time.Millisecond
	store.retrier.maxInterval = time.Millisecond

	return store, mock
}

func testSnapshot(t *testing.T) *domain.Snapshot {
	t.Helper()

	income, err := domain.NewOperation(domain.Income("salary"), decimal.NewFromInt(1000))
	require.NoError(t, err)
	expense, err := domain.NewOperation(domain.Expense("food"), decimal.RequireFromString("12.5"))
	require.NoError(t, err)
	budget, err := domain.NewBudget(domain.Expense("food"), decimal.NewFromInt(300))
	require.NoError(t, err)

	return &domain.Snapshot{
		Login:      "alice",
		SecretHash: "hash",
		Operations: []domain.Operation{income, expense},
		Budgets:    []domain.Budget{budget},
	}
}

func TestStoreLoad(t *testing.T) {
	store, mock := newMockStore(t)
	created := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT secret_hash FROM users WHERE login = $1")).
		WithArgs("alice").
		WillReturnRows(pgxmock.NewRows([]string{"secret_hash"}).AddRow("hash"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, kind, category, amount::text, created_at FROM operations WHERE login = $1 ORDER BY position")).
		WithArgs("alice").
		WillReturnRows(pgxmock.NewRows([]string{"id", "kind", "category", "amount", "created_at"}).
			AddRow("op-1", "income", "salary", "1000.00000000", created).
			AddRow("op-2", "expense", "food", "12.50000000", created.Add(time.Minute)))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT category, limit_amount::text FROM budgets WHERE login = $1 ORDER BY category")).
		WithArgs("alice").
		WillReturnRows(pgxmock.NewRows([]string{"category", "limit_amount"}).AddRow("food", "300.00000000"))

	snap, err := store.Load(context.Background(), "alice")
	require.NoError(t, err)

	assert.Equal(t, "hash", snap.SecretHash)
	require.Len(t, snap.Operations, 2)
	assert.Equal(t, "op-1", snap.Operations[0].ID)
	assert.Equal(t, domain.Expense("food"), snap.Operations[1].Category)
	assert.True(t, snap.Operations[1].Amount.Equal(decimal.RequireFromString("12.5")))
	assert.True(t, snap.Operations[1].CreatedAt.Equal(created.Add(time.Minute)))
	require.Len(t, snap.Budgets, 1)
	assert.True(t, snap.Budgets[0].Limit.Equal(decimal.NewFromInt(300)))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreLoadNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT secret_hash FROM users")).
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows([]string{"secret_hash"}))

	_, err := store.Load(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func expectSave(mock pgxmock.PgxPoolIface, snap *domain.Snapshot) {
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (login,secret_hash,updated_at)")).
		WithArgs(snap.Login, snap.SecretHash, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM operations WHERE login = $1")).
		WithArgs(snap.Login).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO operations (login,position,id,kind,category,amount,created_at)")).
		WithArgs(operationArgs(snap)...).
		WillReturnResult(pgxmock.NewResult("INSERT", int64(len(snap.Operations))))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM budgets WHERE login = $1")).
		WithArgs(snap.Login).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO budgets (login,category,limit_amount)")).
		WithArgs(snap.Login, "food", "300").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
}

// operationArgs lists the insert arguments of every operation, seven per row.
func operationArgs(snap *domain.Snapshot) []any {
	var args []any
	for i, op := range snap.Operations {
		args = append(args, snap.Login, i, op.ID, string(op.Category.Kind), op.Category.Name, op.Amount.String(), op.CreatedAt)
	}
	return args
}

func TestStoreSave(t *testing.T) {
	store, mock := newMockStore(t)
	snap := testSnapshot(t)

	mock.ExpectBegin()
	expectSave(mock, snap)
	mock.ExpectCommit()

	require.NoError(t, store.Save(context.Background(), snap))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreSaveRetriesDeadlock(t *testing.T) {
	store, mock := newMockStore(t)
	snap := testSnapshot(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(snap.Login, snap.SecretHash, pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgErrDeadlock})
	mock.ExpectRollback()

	mock.ExpectBegin()
	expectSave(mock, snap)
	mock.ExpectCommit()

	require.NoError(t, store.Save(context.Background(), snap))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreSaveRollsBackOnError(t *testing.T) {
	store, mock := newMockStore(t)
	snap := testSnapshot(t)
	boom := errors.New("disk full")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(snap.Login, snap.SecretHash, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM operations")).
		WithArgs(snap.Login).
		WillReturnError(boom)
	mock.ExpectRollback()

	err := store.Save(context.Background(), snap)
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreKeepsAmountPrecision(t *testing.T) {
	store, mock := newMockStore(t)

	tiny, err := domain.NewOperation(domain.Income("interest"), decimal.RequireFromString("0.000000001"))
	require.NoError(t, err)
	fine, err := domain.NewOperation(domain.Expense("fees"), decimal.RequireFromString("1.123456789"))
	require.NoError(t, err)
	snap := &domain.Snapshot{Login: "alice", SecretHash: "hash", Operations: []domain.Operation{tiny, fine}}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(snap.Login, snap.SecretHash, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM operations")).
		WithArgs(snap.Login).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO operations")).
		WithArgs(
			"alice", 0, tiny.ID, "income", "interest", "0.000000001", tiny.CreatedAt,
			"alice", 1, fine.ID, "expense", "fees", "1.123456789", fine.CreatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM budgets")).
		WithArgs(snap.Login).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectCommit()

	require.NoError(t, store.Save(context.Background(), snap))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT secret_hash FROM users")).
		WithArgs("alice").
		WillReturnRows(pgxmock.NewRows([]string{"secret_hash"}).AddRow("hash"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, kind, category, amount::text, created_at FROM operations")).
		WithArgs("alice").
		WillReturnRows(pgxmock.NewRows([]string{"id", "kind", "category", "amount", "created_at"}).
			AddRow(tiny.ID, "income", "interest", "0.000000001", tiny.CreatedAt).
			AddRow(fine.ID, "expense", "fees", "1.123456789", fine.CreatedAt))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT category, limit_amount::text FROM budgets")).
		WithArgs("alice").
		WillReturnRows(pgxmock.NewRows([]string{"category", "limit_amount"}))

	loaded, err := store.Load(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, loaded.Operations, 2)
	assert.Equal(t, "0.000000001", loaded.Operations[0].Amount.String())
	assert.Equal(t, "1.123456789", loaded.Operations[1].Amount.String())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrationsDoNotScaleAmounts(t *testing.T) {
	up, err := fs.ReadFile(Migrations, "migrations/000001_init.up.sql")
	require.NoError(t, err)

	// A NUMERIC(p, s) column rounds amounts to s decimal places.
	assert.NotRegexp(t, regexp.MustCompile(`(?i)numeric\s*\(`), string(up))
	assert.Regexp(t, regexp.MustCompile(`amount\s+NUMERIC\s+NOT NULL`), string(up))
	assert.Regexp(t, regexp.MustCompile(`limit_amount\s+NUMERIC\s+NOT NULL`), string(up))
}

func TestStoreListCredentials(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT login, secret_hash FROM users ORDER BY login")).
		WillReturnRows(pgxmock.NewRows([]string{"login", "secret_hash"}).
			AddRow("alice", "h1").
			AddRow("bob", "h2"))

	creds, err := store.ListCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Credential{
		{Login: "alice", SecretHash: "h1"},
		{Login: "bob", SecretHash: "h2"},
	}, creds)
	assert.NoError(t, mock.ExpectationsWereMet())
}
