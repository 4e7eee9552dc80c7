package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/logging"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/orders"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memDedup struct{ seen map[string]bool }

func (d *memDedup) Seen(_ context.Context, id string) (bool, error) { return d.seen[id], nil }
func (d *memDedup) Mark(_ context.Context, id string) error {
	d.seen[id] = true
	return nil
}

type fakePublisher struct {
	got   []Notice
	err   error
	fails int // transient failures before err is consulted
	calls int
}

func (p *fakePublisher) Publish(_ context.Context, n Notice) error {
	p.calls++
	if p.fails > 0 {
		p.fails--
		return errors.New("connection reset")
	}
	if p.err != nil {
		return p.err
	}
	p.got = append(p.got, n)
	return nil
}

type fakeSender struct{ got []Notice }

func (s *fakeSender) Send(_ context.Context, n Notice) error {
	s.got = append(s.got, n)
	return nil
}

func settledMessage(t *testing.T, eventID string) kafkago.Message {
	t.Helper()
	env, err := orders.NewEnvelope(orders.EventOrderSettled, "yacht-api", "o-1", orders.OrderEventPayload{
		OrderID:       "o-1",
		OrderNumber:   "ORD-12345678",
		BookingNumber: "YC12345678001",
		Phase:         orders.PhaseSettled,
		CustomerName:  "Aisha Khan",
		CustomerPhone: "+971500000000",
		PackageName:   "Premium Sunset Cruise",
		BookingDate:   "2026-05-01",
		TotalAmount:   945,
		Currency:      "AED",
	})
	require.NoError(t, err)
	env.EventID = eventID
	b, err := json.Marshal(env)
	require.NoError(t, err)
	return kafkago.Message{Value: b}
}

func newService(pub NoticePublisher) *Service {
	return &Service{
		Dedup:          &memDedup{seen: map[string]bool{}},
		Publisher:      pub,
		WhatsAppNumber: "+971 50 123 4567",
		Log:            logging.Discard(),
		RetryBase:      time.Millisecond,
	}
}

func TestHandleOrderEvent_PublishesOnce(t *testing.T) {
	pub := &fakePublisher{}
	s := newService(pub)
	ctx := context.Background()

	require.NoError(t, s.HandleOrderEvent(ctx, settledMessage(t, "ev-1")))
	require.NoError(t, s.HandleOrderEvent(ctx, settledMessage(t, "ev-1")))

	require.Len(t, pub.got, 1)
	n := pub.got[0]
	assert.Equal(t, KindPaid, n.Kind)
	assert.Equal(t, "ORD-12345678", n.OrderNumber)
	assert.Contains(t, n.ChatLink, "https://wa.me/971501234567?text=")
}

func TestHandleOrderEvent_TransientPublishFailureIsRetried(t *testing.T) {
	pub := &fakePublisher{fails: PublishAttempts - 1}
	s := newService(pub)

	require.NoError(t, s.HandleOrderEvent(context.Background(), settledMessage(t, "ev-2")))
	assert.Len(t, pub.got, 1)
	assert.Equal(t, PublishAttempts, pub.calls)
}

func TestHandleOrderEvent_PublishGivesUpAfterAttempts(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	s := newService(pub)
	ctx := context.Background()

	err := s.HandleOrderEvent(ctx, settledMessage(t, "ev-3"))
	assert.EqualError(t, err, "broker down")
	assert.Equal(t, PublishAttempts, pub.calls)

	// not marked as seen, so a replay of the topic can still deliver it
	pub.err = nil
	require.NoError(t, s.HandleOrderEvent(ctx, settledMessage(t, "ev-3")))
	assert.Len(t, pub.got, 1)
}

func TestHandleOrderEvent_SkipsMalformedAndUnknown(t *testing.T) {
	pub := &fakePublisher{}
	s := newService(pub)
	ctx := context.Background()

	assert.NoError(t, s.HandleOrderEvent(ctx, kafkago.Message{Value: []byte("not json")}))

	env, err := orders.NewEnvelope("SomethingElse", "yacht-api", "o-1", map[string]string{})
	require.NoError(t, err)
	b, _ := json.Marshal(env)
	assert.NoError(t, s.HandleOrderEvent(ctx, kafkago.Message{Value: b}))

	assert.Empty(t, pub.got)
}

func TestChatLink(t *testing.T) {
	assert.Equal(t, "https://wa.me/971501234567?text=hi+there", ChatLink("+971 50-123-4567", "hi there"))
	assert.Equal(t, "https://wa.me/971501234567", ChatLink("971501234567", ""))
	assert.Equal(t, "", ChatLink("", "hello"))
}

func TestNoticeText(t *testing.T) {
	n := Notice{Kind: KindRefunded, OrderNumber: "ORD-1", TotalAmount: 945, Currency: "AED"}
	assert.Contains(t, n.Text(), "Booking refunded")
	assert.Contains(t, n.Text(), "AED 945.00")
}

func TestConsumerHandle(t *testing.T) {
	sender := &fakeSender{}
	c := &Consumer{Sender: sender, Log: logging.Discard()}

	body, _ := json.Marshal(Notice{ID: "n-1", Kind: KindNewOrder, OccurredAt: time.Now().UTC()})
	require.NoError(t, c.handle(context.Background(), body))
	require.Len(t, sender.got, 1)
	assert.Equal(t, "n-1", sender.got[0].ID)

	assert.Error(t, c.handle(context.Background(), []byte("{")))
}
