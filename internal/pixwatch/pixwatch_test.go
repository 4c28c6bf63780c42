package pixwatch

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeSweeper struct {
	calls atomic.Int32
	n     int
	err   error
}

func (f *fakeSweeper) SweepPendingPix(_ context.Context, _ int) (int, error) {
	f.calls.Add(1)
	return f.n, f.err
}

func TestWatcher_SweepsUntilCancelled(t *testing.T) {
	sweeper := &fakeSweeper{n: 2}
	w := New(sweeper, 10*time.Millisecond, 50, slog.Default())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := w.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, sweeper.calls.Load(), int32(3))
}

func TestWatcher_KeepsRunningAfterSweepError(t *testing.T) {
	sweeper := &fakeSweeper{err: assert.AnError}
	w := New(sweeper, 10*time.Millisecond, 50, slog.Default())

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	_ = w.Run(ctx)
	assert.GreaterOrEqual(t, sweeper.calls.Load(), int32(2))
}
