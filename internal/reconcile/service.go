package reconcile

import (
	"context"
	"errors"
	"time"

	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/apperr"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/orders"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/payments"
	"github.com/sirupsen/logrus"
)

const (
	SourceWebhook = "webhook"
	SourceConfirm = "confirm"
	SourceSweep   = "sweep"

	// SweepBatch bounds how many stuck orders one sweep pass looks at.
	SweepBatch = 100
)

// Ledger is the subset of the order store reconciliation needs.
type Ledger interface {
	Get(ctx context.Context, id string) (orders.Order, error)
	FindByIntentID(ctx context.Context, intentID string) (orders.Order, error)
	FindByChargeID(ctx context.Context, chargeID string) (orders.Order, error)
	ListOpenBefore(ctx context.Context, cutoff time.Time, limit int) ([]orders.Order, error)
	MarkSwept(ctx context.Context, ids []string, at time.Time) error
	Transition(ctx context.Context, orderID string, t orders.Transition) (orders.Order, error)
}

type StatusCache interface {
	Put(ctx context.Context, v orders.StatusView) error
}

type Deduper interface {
	Seen(ctx context.Context, id string) (bool, error)
	Mark(ctx context.Context, id string) error
}

type Service struct {
	Orders  Ledger
	Gateway payments.Gateway
	Cache   StatusCache
	Dedup   Deduper
	Log     *logrus.Logger
	Now     func() time.Time

	// Batch caps one sweep pass; zero means SweepBatch.
	Batch      int
	// MaxOpenAge is how long an order may wait for a payment method before
	// the sweep cancels its intent and kills it. Zero disables the cutoff.
	MaxOpenAge time.Duration
}

// Outcome describes what one gateway event did to the ledger.
type Outcome struct {
	Applied bool         `json:"applied"`
	OrderID string       `json:"orderId,omitempty"`
	Phase   orders.Phase `json:"phase,omitempty"`
	Reason  string       `json:"reason,omitempty"`
}

type SweepReport struct {
	Scanned   int `json:"scanned"`
	Settled   int `json:"settled"`
	Failed    int `json:"failed"`
	Unchanged int `json:"unchanged"`
	Expired   int `json:"expired"`
	Errors    int `json:"errors"`
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// HandleEvent applies one verified gateway event. Lookup misses, duplicate
// deliveries and out-of-order events return a non-applied Outcome and nil.
func (s *Service) HandleEvent(ctx context.Context, ev payments.Event) (Outcome, error) {
	log := s.Log.WithFields(logrus.Fields{
		"event_id":   ev.ID,
		"event_type": ev.RawType,
		"intent_id":  ev.IntentID,
		"charge_id":  ev.ChargeID,
	})

	if ev.Type == payments.EventIgnored {
		log.Debug("gateway event ignored")
		return Outcome{Reason: "event type not handled"}, nil
	}

	if s.Dedup != nil {
		seen, err := s.Dedup.Seen(ctx, ev.ID)
		if err != nil {
			log.WithError(err).Warn("dedup lookup failed")
		}
		if seen {
			log.Info("duplicate gateway event")
			return Outcome{Reason: "duplicate event"}, nil
		}
	}

	var (
		out Outcome
		err error
	)
	switch ev.Type {
	case payments.EventPaymentSucceeded:
		out, err = s.ApplySucceeded(ctx, ev.IntentID, ev.ChargeID, ev.PaymentMethodType, SourceWebhook)
	case payments.EventPaymentFailed:
		out, err = s.ApplyFailed(ctx, ev.IntentID, SourceWebhook)
	case payments.EventChargeRefunded:
		out, err = s.ApplyRefunded(ctx, ev.ChargeID, SourceWebhook)
	default:
		return Outcome{Reason: "event type not handled"}, nil
	}
	if err != nil {
		return Outcome{}, err
	}

	if s.Dedup != nil {
		if err := s.Dedup.Mark(ctx, ev.ID); err != nil {
			log.WithError(err).Warn("dedup mark failed")
		}
	}
	return out, nil
}

func (s *Service) ApplySucceeded(ctx context.Context, intentID, chargeID, paymentMethod, source string) (Outcome, error) {
	o, err := s.Orders.FindByIntentID(ctx, intentID)
	if errors.Is(err, apperr.ErrNotFound) {
		s.miss("intent_id", intentID, source)
		return Outcome{Reason: "order not found"}, nil
	}
	if err != nil {
		return Outcome{}, err
	}
	_, out, err := s.transition(ctx, o, orders.MarkSucceeded(chargeID, paymentMethod, source, s.now()))
	return out, err
}

func (s *Service) ApplyFailed(ctx context.Context, intentID, source string) (Outcome, error) {
	o, err := s.Orders.FindByIntentID(ctx, intentID)
	if errors.Is(err, apperr.ErrNotFound) {
		s.miss("intent_id", intentID, source)
		return Outcome{Reason: "order not found"}, nil
	}
	if err != nil {
		return Outcome{}, err
	}
	_, out, err := s.transition(ctx, o, orders.MarkFailed(source, s.now()))
	return out, err
}

// ApplyRefunded correlates on the charge id; orders that never settled have
// none, so refunds for them are lookup misses.
func (s *Service) ApplyRefunded(ctx context.Context, chargeID, source string) (Outcome, error) {
	o, err := s.Orders.FindByChargeID(ctx, chargeID)
	if errors.Is(err, apperr.ErrNotFound) {
		s.miss("charge_id", chargeID, source)
		return Outcome{Reason: "order not found"}, nil
	}
	if err != nil {
		return Outcome{}, err
	}
	_, out, err := s.transition(ctx, o, orders.MarkRefunded(source, s.now()))
	return out, err
}

// Confirm handles the client-side confirmation call. The client's claim is
// only a hint: the intent is re-fetched from the gateway and the order moves
// only on what the gateway reports.
func (s *Service) Confirm(ctx context.Context, orderID, intentID string) (orders.Order, error) {
	var f apperr.Fields
	f.Add(orderID == "", "orderId")
	f.Add(intentID == "", "paymentIntentId")
	if err := f.Err(); err != nil {
		return orders.Order{}, err
	}

	o, err := s.Orders.Get(ctx, orderID)
	if err != nil {
		return orders.Order{}, err
	}
	if o.IntentID != intentID {
		return orders.Order{}, apperr.Invalid("payment intent does not belong to this order", "paymentIntentId")
	}
	if orders.PhaseOf(o) != orders.PhaseOpen {
		return o, nil
	}

	in, err := s.Gateway.GetIntent(ctx, intentID)
	if err != nil {
		return orders.Order{}, err
	}
	updated, _, err := s.settleFromIntent(ctx, o, in, SourceConfirm)
	return updated, err
}

// Sweep re-checks OPEN orders created before cutoff against the gateway.
// Per-order failures are logged and counted; the pass continues. Every order
// looked at is stamped so the next pass starts with the ones not seen yet.
func (s *Service) Sweep(ctx context.Context, cutoff time.Time) (SweepReport, error) {
	var rep SweepReport
	batch := s.Batch
	if batch <= 0 {
		batch = SweepBatch
	}
	open, err := s.Orders.ListOpenBefore(ctx, cutoff, batch)
	if err != nil {
		return rep, err
	}

	swept := make([]string, 0, len(open))
	defer func() { s.markSwept(ctx, swept) }()

	for _, o := range open {
		if ctx.Err() != nil {
			return rep, ctx.Err()
		}
		rep.Scanned++
		swept = append(swept, o.ID)
		log := s.Log.WithFields(logrus.Fields{"order_id": o.ID, "intent_id": o.IntentID, "source": SourceSweep})

		in, err := s.Gateway.GetIntent(ctx, o.IntentID)
		if err != nil {
			rep.Errors++
			log.WithError(err).Warn("sweep: intent lookup failed")
			continue
		}
		updated, out, err := s.settleFromIntent(ctx, o, in, SourceSweep)
		expired := false
		if err == nil && !out.Applied && s.abandoned(updated, in) {
			expired = true
			updated, out, err = s.expire(ctx, updated, log)
		}
		if err != nil {
			rep.Errors++
			log.WithError(err).Warn("sweep: transition failed")
			continue
		}
		switch {
		case out.Applied && expired:
			rep.Expired++
		case out.Applied && orders.PhaseOf(updated) == orders.PhaseSettled:
			rep.Settled++
		case out.Applied && orders.PhaseOf(updated) == orders.PhaseDead:
			rep.Failed++
		default:
			rep.Unchanged++
		}
	}

	s.Log.WithFields(logrus.Fields{
		"scanned":   rep.Scanned,
		"settled":   rep.Settled,
		"failed":    rep.Failed,
		"expired":   rep.Expired,
		"unchanged": rep.Unchanged,
		"errors":    rep.Errors,
	}).Info("sweep finished")
	return rep, nil
}

// abandoned reports whether an OPEN order has waited on the customer for
// longer than MaxOpenAge. Processing intents are left to the gateway.
func (s *Service) abandoned(o orders.Order, in payments.Intent) bool {
	if s.MaxOpenAge <= 0 || orders.PhaseOf(o) != orders.PhaseOpen {
		return false
	}
	switch in.Status {
	case payments.IntentRequiresPaymentMethod, payments.IntentRequiresConfirmation, payments.IntentRequiresAction:
		return o.CreatedAt.Before(s.now().Add(-s.MaxOpenAge))
	}
	return false
}

// expire cancels the intent first so the customer can no longer pay for an
// order that is about to be killed.
func (s *Service) expire(ctx context.Context, o orders.Order, log *logrus.Entry) (orders.Order, Outcome, error) {
	if err := s.Gateway.CancelIntent(ctx, o.IntentID); err != nil {
		return o, Outcome{}, err
	}
	log.WithField("max_age", s.MaxOpenAge.String()).Info("sweep: abandoned intent canceled")
	return s.transition(ctx, o, orders.MarkFailed(SourceSweep, s.now()))
}

func (s *Service) markSwept(ctx context.Context, ids []string) {
	if len(ids) == 0 {
		return
	}
	if err := s.Orders.MarkSwept(context.WithoutCancel(ctx), ids, s.now()); err != nil {
		s.Log.WithError(err).WithField("count", len(ids)).Warn("sweep: stamping orders failed")
	}
}

func (s *Service) settleFromIntent(ctx context.Context, o orders.Order, in payments.Intent, source string) (orders.Order, Outcome, error) {
	switch in.Status {
	case payments.IntentSucceeded:
		return s.transition(ctx, o, orders.MarkSucceeded(in.ChargeID, in.PaymentMethodType, source, s.now()))
	case payments.IntentCanceled:
		return s.transition(ctx, o, orders.MarkFailed(source, s.now()))
	}
	s.Log.WithFields(logrus.Fields{
		"order_id":  o.ID,
		"intent_id": in.ID,
		"status":    in.Status,
		"source":    source,
	}).Debug("intent not final yet")
	return o, Outcome{OrderID: o.ID, Phase: orders.PhaseOf(o), Reason: "intent status " + string(in.Status)}, nil
}

// transition runs t against o. Reaching an already-current target is a no-op,
// as is any move the phase table does not allow from o's current phase. A CAS
// loss re-reads the order and reports its fresh state.
func (s *Service) transition(ctx context.Context, o orders.Order, t orders.Transition) (orders.Order, Outcome, error) {
	log := s.Log.WithFields(logrus.Fields{
		"order_id":   o.ID,
		"booking_id": o.BookingID,
		"intent_id":  o.IntentID,
		"phase":      t.To,
		"source":     t.Source,
	})

	current := orders.PhaseOf(o)
	if current == t.To {
		log.Info("order already in target phase")
		return o, Outcome{OrderID: o.ID, Phase: current, Reason: "already " + string(current)}, nil
	}
	if current != t.From {
		log.WithField("current", current).Warn("transition not allowed from current phase")
		return o, Outcome{OrderID: o.ID, Phase: current, Reason: "not allowed from " + string(current)}, nil
	}

	updated, err := s.Orders.Transition(ctx, o.ID, t)
	if errors.Is(err, orders.ErrStaleState) {
		fresh, gerr := s.Orders.Get(ctx, o.ID)
		if gerr != nil {
			return orders.Order{}, Outcome{}, gerr
		}
		phase := orders.PhaseOf(fresh)
		log.WithField("current", phase).Info("order changed concurrently")
		s.refresh(ctx, fresh)
		return fresh, Outcome{OrderID: fresh.ID, Phase: phase, Reason: "changed concurrently"}, nil
	}
	if err != nil {
		log.WithError(err).Error("order transition failed")
		return orders.Order{}, Outcome{}, err
	}

	log.Info("order transitioned")
	s.refresh(ctx, updated)
	return updated, Outcome{Applied: true, OrderID: updated.ID, Phase: t.To}, nil
}

func (s *Service) refresh(ctx context.Context, o orders.Order) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Put(ctx, o.View()); err != nil {
		s.Log.WithError(err).WithField("order_id", o.ID).Warn("status cache refresh failed")
	}
}

func (s *Service) miss(field, value, source string) {
	s.Log.WithFields(logrus.Fields{field: value, "source": source}).Warn("no order for gateway event")
}
