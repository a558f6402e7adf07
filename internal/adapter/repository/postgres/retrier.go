package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// SQLSTATE codes a replayed snapshot transaction can recover from.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
)

// DefaultSaveBudget bounds the time spent replaying one save.
const DefaultSaveBudget = 10 * time.Second

// Retrier replays a whole snapshot transaction when PostgreSQL aborts it for reasons
// unrelated to its content.
type Retrier struct {
	maxRetries      uint64
	initialInterval time.Duration
	maxInterval     time.Duration
	maxElapsedTime  time.Duration
	logger          zerolog.Logger
}

// NewRetrier creates a Retrier with the store's defaults.
func NewRetrier(logger zerolog.Logger) *Retrier {
	return &Retrier{
		maxRetries:      3,
		initialInterval: 50 * time.Millisecond,
		maxInterval:     time.Second,
		maxElapsedTime:  DefaultSaveBudget,
		logger:          logger,
	}
}

// Retry runs fn until it succeeds, fails permanently or the retries run out. name and
// login identify the snapshot write in logs and in the returned error.
func (r *Retrier) Retry(ctx context.Context, name, login string, fn func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxInterval = r.maxInterval
	b.MaxElapsedTime = r.maxElapsedTime

	attempts := 0
	err := backoff.RetryNotify(func() error {
		attempts++
		err := fn()
		if err != nil && !isRetryableError(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(b, r.maxRetries), ctx), func(err error, wait time.Duration) {
		r.logger.Warn().
			Err(err).
			Str("op", name).
			Str("login", login).
			Int("attempt", attempts).
			Dur("wait", wait).
			Msg("transaction aborted, replaying")
	})

	if err != nil && attempts > 1 {
		return fmt.Errorf("%s %s: gave up after %d attempts: %w", name, login, attempts, err)
	}
	return err
}

// isRetryableError reports deadlocks, serialization failures and connection errors
// raised before anything reached the server.
func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgErrDeadlock || pgErr.Code == pgErrSerializationFailure
	}
	return pgconn.SafeToRetry(err)
}
