package sweep

import (
	"context"
	"time"

	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/reconcile"
	"github.com/sirupsen/logrus"
)

type Sweeper interface {
	Sweep(ctx context.Context, cutoff time.Time) (reconcile.SweepReport, error)
}

// Scheduler periodically re-checks orders that stayed OPEN longer than After
// against the gateway. It covers webhooks that never arrived.
type Scheduler struct {
	Reconciler Sweeper
	Interval   time.Duration
	After      time.Duration
	Log        *logrus.Logger
	Now        func() time.Time
}

// Start blocks until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	if s.Interval <= 0 {
		s.Log.Info("sweep disabled")
		return
	}
	t := time.NewTicker(s.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.RunOnce(ctx)
		}
	}
}

func (s *Scheduler) RunOnce(ctx context.Context) reconcile.SweepReport {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	cutoff := now().Add(-s.After)

	rep, err := s.Reconciler.Sweep(ctx, cutoff)
	if err != nil {
		s.Log.WithError(err).Error("sweep failed")
		return rep
	}
	entry := s.Log.WithFields(logrus.Fields{
		"scanned":   rep.Scanned,
		"settled":   rep.Settled,
		"failed":    rep.Failed,
		"unchanged": rep.Unchanged,
		"errors":    rep.Errors,
		"cutoff":    cutoff,
	})
	if rep.Scanned == 0 {
		entry.Debug("sweep: nothing stale")
	} else {
		entry.Info("sweep done")
	}
	return rep
}
