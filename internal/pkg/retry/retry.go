package retry

import (
	"context"
	"log/slog"
	"time"
)

// Policy drives the rate-limited retry executor. Every attempt, including
// the first, is preceded by RateLimitDelay; sequential calls through one
// executor are the whole throttling mechanism against the provider.
type Policy struct {
	MaxRetries     int           // extra attempts after the first
	InitialBackoff time.Duration // doubled after each failure
	RateLimitDelay time.Duration // unconditional pre-attempt wait
}

// Executor applies a Policy around operations. Waits suspend only the
// calling operation; executors share no timer state.
type Executor struct {
	Policy Policy
	Logger *slog.Logger

	sleep func(context.Context, time.Duration) error
}

func New(p Policy, l *slog.Logger) *Executor {
	return &Executor{Policy: p, Logger: l, sleep: sleepCtx}
}

func (e *Executor) log() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Do executes op under the executor's policy. Every failure is treated as
// retryable; after MaxRetries+1 attempts the last error is returned as-is.
// label identifies the operation in logs.
func Do[T any](ctx context.Context, e *Executor, label string, op func(context.Context) (T, error)) (T, error) {
	var zero T
	backoff := e.Policy.InitialBackoff

	for attempt := 0; ; attempt++ {
		if attempt == 0 {
			if err := e.sleep(ctx, e.Policy.RateLimitDelay); err != nil {
				return zero, err
			}
		} else {
			e.log().Info("waiting before retry",
				"op", label, "wait", backoff, "attempt", attempt, "max", e.Policy.MaxRetries)
			if err := e.sleep(ctx, backoff); err != nil {
				return zero, err
			}
			backoff *= 2
		}

		v, err := op(ctx)
		if err == nil {
			if attempt > 0 {
				e.log().Info("succeeded after retries", "op", label, "retries", attempt)
			}
			return v, nil
		}
		if attempt >= e.Policy.MaxRetries {
			e.log().Error("retries exhausted", "op", label, "attempts", attempt+1, "err", err)
			return zero, err
		}
		e.log().Warn("attempt failed", "op", label, "attempt", attempt+1, "err", err)
	}
}
