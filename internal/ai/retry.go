package ai

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrOracleUnavailable marks a call that failed every attempt
// (transport errors, timeouts, or malformed replies alike).
var ErrOracleUnavailable = errors.New("oracle unavailable")

// RetryConfig bounds how hard the engine leans on a flaky oracle.
// MaxRetries counts extra attempts after the first one.
type RetryConfig struct {
	MaxRetries    int
	Backoff       time.Duration
	InvokeTimeout time.Duration
}

type retryProvider struct {
	inner Provider
	cfg   RetryConfig
}

// WithRetry wraps a provider with bounded retries, linear backoff and a
// per-attempt timeout. A validation failure of the outcome counts as a
// failed attempt, exactly like a transport error.
func WithRetry(inner Provider, cfg RetryConfig) Provider {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InvokeTimeout <= 0 {
		cfg.InvokeTimeout = 30 * time.Second
	}
	return &retryProvider{inner: inner, cfg: cfg}
}

func (r *retryProvider) Invoke(ctx context.Context, req Request) (*Outcome, error) {
	var lastErr error

	attempts := r.cfg.MaxRetries + 1
	for i := 0; i < attempts; i++ {
		if i > 0 && r.cfg.Backoff > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(i) * r.cfg.Backoff):
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, r.cfg.InvokeTimeout)
		out, err := r.inner.Invoke(attemptCtx, req)
		cancel()

		if err == nil {
			if verr := out.Validate(); verr == nil {
				return out, nil
			} else {
				err = verr
			}
		}
		lastErr = err

		// A cancelled parent is not retriable.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("%w after %d attempts: %v", ErrOracleUnavailable, attempts, lastErr)
}
