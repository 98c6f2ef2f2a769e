package scheduler

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

type State int32

const (
	StateIdle State = iota
	StateRunningProductSync
	StateRunningTransactionSync
	StateShuttingDown
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunningProductSync:
		return "running-product-sync"
	case StateRunningTransactionSync:
		return "running-transaction-sync"
	case StateShuttingDown:
		return "shutting-down"
	default:
		return "unknown"
	}
}

// SyncFunc runs one sync cycle to completion. A returned error is logged
// and the loop goes back to idle; only cancellation ends the loop.
type SyncFunc func(ctx context.Context) error

// Loop drives the two sync cadences from a single control flow: both
// handlers run once at startup (products first), then whichever timer
// fires first while idle runs its handler to completion, and the
// loop waits again. Only one sync executes at a time; a tick landing while
// a sync is in flight is coalesced by the ticker, never backlogged.
// Cancellation is observed only between runs — an in-flight sync always
// finishes.
type Loop struct {
	ProductSync     SyncFunc
	TransactionSync SyncFunc

	ProductInterval     time.Duration
	TransactionInterval time.Duration

	Logger *slog.Logger

	state atomic.Int32
}

func (l *Loop) log() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

// State reports the loop's current state; useful for tests and probes.
func (l *Loop) State() State { return State(l.state.Load()) }

func (l *Loop) setState(s State) { l.state.Store(int32(s)) }

func (l *Loop) runOne(ctx context.Context, s State, name string, fn SyncFunc) {
	l.setState(s)
	defer l.setState(StateIdle)

	start := time.Now()
	// cancellation is observed at the outer select only; a sync that has
	// started runs to completion (or retry exhaustion) even mid-shutdown
	if err := fn(context.WithoutCancel(ctx)); err != nil {
		l.log().Error(name+" failed", "err", err, "elapsed", time.Since(start))
		return
	}
	l.log().Info(name+" completed", "elapsed", time.Since(start))
}

// Run blocks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	productTicker := time.NewTicker(l.ProductInterval)
	defer productTicker.Stop()
	transactionTicker := time.NewTicker(l.TransactionInterval)
	defer transactionTicker.Stop()

	l.setState(StateIdle)
	l.log().Info("sync loop started",
		"product_interval", l.ProductInterval,
		"transaction_interval", l.TransactionInterval)

	// both cadences fire immediately on startup, products first, so a fresh
	// deployment is populated before the first interval elapses
	if ctx.Err() == nil {
		l.runOne(ctx, StateRunningProductSync, "product sync", l.ProductSync)
	}
	if ctx.Err() == nil {
		l.runOne(ctx, StateRunningTransactionSync, "transaction sync", l.TransactionSync)
	}

	for {
		select {
		case <-ctx.Done():
			l.setState(StateShuttingDown)
			l.log().Info("sync loop shutting down")
			return
		case <-productTicker.C:
			l.runOne(ctx, StateRunningProductSync, "product sync", l.ProductSync)
		case <-transactionTicker.C:
			l.runOne(ctx, StateRunningTransactionSync, "transaction sync", l.TransactionSync)
		}
	}
}
