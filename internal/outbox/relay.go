package outbox

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	kafkax "github.com/nabeelarbab82-debug/LuxuryYachts/internal/kafka"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// DefaultBatch is the number of records one relay pass locks at a time.
const DefaultBatch = 100

type Store interface {
	Drain(ctx context.Context, limit int, fn func(context.Context, Record) error) (int, error)
}

type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte, headers ...kafkago.Header) error
}

// Relay moves committed outbox records to Kafka.
type Relay struct {
	Store     Store
	Publisher Publisher
	Interval  time.Duration
	Batch     int
	Log       *logrus.Logger
}

// Run drains the outbox every Interval until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	interval := r.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := r.Flush(ctx); err != nil && ctx.Err() == nil {
				r.Log.WithError(err).Warn("outbox relay pass failed")
			}
		}
	}
}

// Flush drains until the outbox is empty or a publish fails.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	batch := r.Batch
	if batch <= 0 {
		batch = DefaultBatch
	}
	total := 0
	for {
		n, err := r.Store.Drain(ctx, batch, r.publish)
		total += n
		if err != nil {
			return total, err
		}
		if n < batch {
			if total > 0 {
				r.Log.WithField("published", total).Debug("outbox flushed")
			}
			return total, nil
		}
	}
}

func (r *Relay) publish(ctx context.Context, rec Record) error {
	var head struct {
		EventType    string `json:"event_type"`
		EventVersion int    `json:"event_version"`
	}
	_ = json.Unmarshal(rec.Payload, &head)

	return r.Publisher.Publish(ctx, rec.Topic, []byte(rec.Key), rec.Payload,
		kafkago.Header{Key: kafkax.HeaderEventType, Value: []byte(head.EventType)},
		kafkago.Header{Key: kafkax.HeaderEventVersion, Value: []byte(strconv.Itoa(head.EventVersion))},
	)
}
