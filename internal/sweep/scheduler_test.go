package sweep

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/logging"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/reconcile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSweeper struct {
	mu      sync.Mutex
	cutoffs []time.Time
	err     error
}

func (f *fakeSweeper) Sweep(_ context.Context, cutoff time.Time) (reconcile.SweepReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoffs = append(f.cutoffs, cutoff)
	return reconcile.SweepReport{Scanned: 1, Settled: 1}, f.err
}

func (f *fakeSweeper) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cutoffs)
}

func TestRunOnce_UsesCutoff(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	f := &fakeSweeper{}
	s := &Scheduler{Reconciler: f, After: 30 * time.Minute, Log: logging.Discard(), Now: func() time.Time { return now }}

	rep := s.RunOnce(context.Background())
	assert.Equal(t, 1, rep.Settled)
	require.Len(t, f.cutoffs, 1)
	assert.Equal(t, now.Add(-30*time.Minute), f.cutoffs[0])
}

func TestRunOnce_ErrorIsLogged(t *testing.T) {
	f := &fakeSweeper{err: errors.New("db down")}
	s := &Scheduler{Reconciler: f, After: time.Minute, Log: logging.Discard()}

	assert.NotPanics(t, func() { s.RunOnce(context.Background()) })
	assert.Equal(t, 1, f.calls())
}

func TestStart_TicksUntilCancelled(t *testing.T) {
	f := &fakeSweeper{}
	s := &Scheduler{Reconciler: f, Interval: 5 * time.Millisecond, After: time.Minute, Log: logging.Discard()}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return f.calls() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestStart_DisabledReturns(t *testing.T) {
	f := &fakeSweeper{}
	s := &Scheduler{Reconciler: f, Log: logging.Discard()}
	s.Start(context.Background())
	assert.Zero(t, f.calls())
}
