package notify

import (
	"context"
	"encoding/json"
	"time"

	kafkax "github.com/nabeelarbab82-debug/LuxuryYachts/internal/kafka"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/orders"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/sethvargo/go-retry"
	"github.com/sirupsen/logrus"
)

// PublishAttempts bounds how often one notice is offered to the broker.
const PublishAttempts = 3

type Deduper interface {
	Seen(ctx context.Context, id string) (bool, error)
	Mark(ctx context.Context, id string) error
}

type NoticePublisher interface {
	Publish(ctx context.Context, n Notice) error
}

type Service struct {
	Dedup          Deduper
	Publisher      NoticePublisher
	WhatsAppNumber string
	Log            *logrus.Logger

	// RetryBase is the first backoff between publish attempts; zero means 200ms.
	RetryBase time.Duration
}

// HandleOrderEvent is the Kafka handler for the payments topic. The consumer
// does not redeliver: a returned error is logged and the next commit on the
// partition moves past the offset. Publishing is retried here instead, up to
// PublishAttempts times, before the notice is given up on.
func (s *Service) HandleOrderEvent(ctx context.Context, m kafkago.Message) error {
	// 1) decode envelope; undecodable messages are skipped, not retried
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		s.Log.WithError(err).WithField("offset", m.Offset).Warn("skipping malformed event")
		return nil
	}
	kind, ok := KindFor(env.EventType)
	if !ok {
		return nil
	}

	// 2) dedup per event id
	seen, err := s.Dedup.Seen(ctx, env.EventID)
	if err != nil {
		s.Log.WithError(err).Warn("dedup lookup failed")
	}
	if seen {
		return nil
	}

	// 3) payload -> notice
	p, err := kafkax.UnwrapPayload[orders.OrderEventPayload](env.Payload)
	if err != nil {
		s.Log.WithError(err).WithField("event_id", env.EventID).Warn("skipping event with bad payload")
		return nil
	}
	n := newNotice(env.EventID, kind, env.OccurredAt, p)
	n.ChatLink = ChatLink(s.WhatsAppNumber, n.Text())

	// 4) publish, then remember
	if err := s.publish(ctx, n); err != nil {
		s.Log.WithError(err).WithFields(logrus.Fields{
			"event_id": env.EventID,
			"order_id": p.OrderID,
		}).Error("notice dropped after retries")
		return err
	}
	if err := s.Dedup.Mark(ctx, env.EventID); err != nil {
		s.Log.WithError(err).Warn("dedup mark failed")
	}
	s.Log.WithFields(logrus.Fields{
		"event_id":   env.EventID,
		"event_type": env.EventType,
		"order_id":   p.OrderID,
	}).Info("notice queued")
	return nil
}

func (s *Service) publish(ctx context.Context, n Notice) error {
	base := s.RetryBase
	if base <= 0 {
		base = 200 * time.Millisecond
	}
	b := retry.WithMaxRetries(PublishAttempts-1, retry.NewExponential(base))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		if err := s.Publisher.Publish(ctx, n); err != nil {
			s.Log.WithError(err).WithField("notice_id", n.ID).Warn("publish notice failed")
			return retry.RetryableError(err)
		}
		return nil
	})
}
