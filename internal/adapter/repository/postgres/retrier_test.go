package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

func fastRetrier() *Retrier {
	r := NewRetrier(zerolog.Nop())
	r.maxRetries = 2
	r.initialInterval = time.Millisecond
	r.maxInterval = 2 * time.Millisecond
	r.maxElapsedTime = time.Second
	return r
}

// connErr mimics pgconn's errors for connections that failed before sending anything.
type connErr struct{ safe bool }

func (e connErr) Error() string     { return "connection refused" }
func (e connErr) SafeToRetry() bool { return e.safe }

func TestRetrierReplaysAbortedTransaction(t *testing.T) {
	r := fastRetrier()

	attempts := 0
	err := r.Retry(context.Background(), "save snapshot", "alice", func() error {
		attempts++
		if attempts < 2 {
			return fmt.Errorf("save user: %w", &pgconn.PgError{Code: pgErrDeadlock})
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success after replay, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestRetrierGivesUpAfterMaxRetries(t *testing.T) {
	r := fastRetrier()

	attempts := 0
	err := r.Retry(context.Background(), "save snapshot", "alice", func() error {
		attempts++
		return &pgconn.PgError{Code: pgErrSerializationFailure}
	})

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgErrSerializationFailure {
		t.Fatalf("expected serialization failure, got %v", err)
	}
	if want := int(r.maxRetries) + 1; attempts != want {
		t.Fatalf("expected %d attempts, got %d", want, attempts)
	}
	if got := err.Error(); !strings.HasPrefix(got, "save snapshot alice: gave up after 3 attempts") {
		t.Fatalf("expected error to name the write, got %q", got)
	}
}

func TestRetrierReturnsPermanentErrorUnchanged(t *testing.T) {
	r := fastRetrier()
	attempts := 0
	permanentErr := &pgconn.PgError{Code: "23514"} // check_violation

	err := r.Retry(context.Background(), "save snapshot", "alice", func() error {
		attempts++
		return permanentErr
	})

	if err != permanentErr {
		t.Fatalf("expected the permanent error itself, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestRetrierStopsOnCancelledContext(t *testing.T) {
	r := fastRetrier()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := r.Retry(ctx, "save snapshot", "alice", func() error {
		attempts++
		return &pgconn.PgError{Code: pgErrDeadlock}
	})

	if err == nil {
		t.Fatal("expected an error")
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "deadlock", err: &pgconn.PgError{Code: pgErrDeadlock}, want: true},
		{name: "serialization failure", err: &pgconn.PgError{Code: pgErrSerializationFailure}, want: true},
		{name: "wrapped deadlock", err: fmt.Errorf("begin: %w", &pgconn.PgError{Code: pgErrDeadlock}), want: true},
		{name: "unique violation", err: &pgconn.PgError{Code: "23505"}, want: false},
		{name: "connection failed before send", err: fmt.Errorf("begin: %w", connErr{safe: true}), want: true},
		{name: "connection lost mid-write", err: connErr{safe: false}, want: false},
		{name: "generic", err: errors.New("other"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryableError(tt.err); got != tt.want {
				t.Fatalf("isRetryableError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
