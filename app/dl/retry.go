package dl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"pixivdl/app/pixiv"
)

const retryAttempts = 3

// ErrRetriesExhausted marks a call that failed with transient errors on
// every attempt.
var ErrRetriesExhausted = errors.New("retries exhausted")

// Authenticator re-establishes an expired session. *pixiv.Client
// satisfies it.
type Authenticator interface {
	Authenticate(ctx context.Context) error
}

// Gate wraps remote calls with bounded retry and transparent
// re-authentication. One gate is shared by the paginator and the
// download workers.
type Gate struct {
	auth Authenticator
}

func NewGate(auth Authenticator) *Gate {
	return &Gate{auth: auth}
}

// Retry runs fn up to three attempts. Transport-level errors are retried;
// an expired-grant API error triggers re-authentication and a retry; any
// other API error or decode error fails immediately.
func Retry[T any](ctx context.Context, g *Gate, name string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= retryAttempts; attempt++ {
		res, err := fn(ctx)
		if err == nil {
			return res, nil
		}
		lastErr = err

		var apiErr *pixiv.APIError
		if errors.As(err, &apiErr) {
			if !apiErr.IsAuthExpiry() || g.auth == nil {
				return zero, fmt.Errorf("%s: %w", name, err)
			}

			slog.Warn("Session expired, re-authenticating", "call", name)
			if authErr := g.auth.Authenticate(ctx); authErr != nil {
				return zero, fmt.Errorf("%s: re-authentication failed: %w", name, authErr)
			}
			continue
		}

		var decodeErr *pixiv.DecodeError
		if errors.As(err, &decodeErr) {
			return zero, fmt.Errorf("%s: %w", name, err)
		}

		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		slog.Warn("Transient error, retrying", "call", name, "attempt", attempt, "error", err)
	}

	return zero, fmt.Errorf("%s failed after %d attempts: %w: %v",
		name, retryAttempts, ErrRetriesExhausted, lastErr)
}
