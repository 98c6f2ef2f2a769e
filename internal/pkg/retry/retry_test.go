package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func capturingExecutor(p Policy) (*Executor, *[]time.Duration) {
	e := New(p, nil)
	waits := &[]time.Duration{}
	e.sleep = func(ctx context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return ctx.Err()
	}
	return e, waits
}

func TestDo_SuccessFirstAttempt(t *testing.T) {
	e, waits := capturingExecutor(Policy{MaxRetries: 3, InitialBackoff: time.Second, RateLimitDelay: 6 * time.Second})

	calls := 0
	v, err := Do(context.Background(), e, "op", func(ctx context.Context) (int, error) {
		calls++
		return 42, nil
	})
	if err != nil || v != 42 {
		t.Fatalf("got %d, %v", v, err)
	}
	if calls != 1 {
		t.Fatalf("calls=%d", calls)
	}
	// рейт-лимит применяется даже без ретраев
	if len(*waits) != 1 || (*waits)[0] != 6*time.Second {
		t.Fatalf("waits=%v", *waits)
	}
}

func TestDo_BackoffDoubles(t *testing.T) {
	b := 2 * time.Second
	rl := 7 * time.Second
	e, waits := capturingExecutor(Policy{MaxRetries: 3, InitialBackoff: b, RateLimitDelay: rl})

	calls := 0
	boom := errors.New("boom")
	_, err := Do(context.Background(), e, "op", func(ctx context.Context) (struct{}, error) {
		calls++
		return struct{}{}, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v", err)
	}
	if calls != 4 { // max_retries+1 total attempts
		t.Fatalf("calls=%d", calls)
	}
	want := []time.Duration{rl, b, 2 * b, 4 * b}
	if len(*waits) != len(want) {
		t.Fatalf("waits=%v", *waits)
	}
	for i := range want {
		if (*waits)[i] != want[i] {
			t.Fatalf("wait[%d]=%v want %v", i, (*waits)[i], want[i])
		}
	}
}

func TestDo_ShortCircuitsOnSuccess(t *testing.T) {
	e, _ := capturingExecutor(Policy{MaxRetries: 10, InitialBackoff: time.Second, RateLimitDelay: time.Second})

	calls := 0
	v, err := Do(context.Background(), e, "op", func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})
	if err != nil || v != "ok" {
		t.Fatalf("got %q, %v", v, err)
	}
	if calls != 3 {
		t.Fatalf("calls=%d", calls)
	}
}

func TestDo_CanceledContextStopsWaiting(t *testing.T) {
	e := New(Policy{MaxRetries: 5, InitialBackoff: time.Hour, RateLimitDelay: time.Hour}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Do(ctx, e, "op", func(ctx context.Context) (int, error) {
		t.Fatal("op must not run after cancellation")
		return 0, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v", err)
	}
}
