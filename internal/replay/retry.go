package replay

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// retryablePersistError reports whether a Postgres persistence failure is
// worth another attempt. Serialization failures, deadlocks, lock timeouts,
// and connection-class errors clear on retry; any other SQLSTATE is a
// permanent fault in the written data and retrying would only repeat it.
// Errors without a SQLSTATE (network, pool) are treated as transient.
func retryablePersistError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03", "57P03":
			return true
		}
		// Class 08: connection exceptions.
		return strings.HasPrefix(pgErr.Code, "08")
	}
	return true
}

// withRetry runs fn up to 1+maxRetries times with doubling backoff, giving up
// early on permanent errors or a cancelled context.
func withRetry(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func(context.Context) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}

	delay := baseDelay
	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !retryablePersistError(err) {
			return err
		}
		if attempt >= maxRetries {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
	}
}
