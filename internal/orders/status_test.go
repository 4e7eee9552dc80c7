package orders

import (
	"testing"
	"time"

	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/bookings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(PhaseOpen, PhaseSettled))
	assert.True(t, CanTransition(PhaseOpen, PhaseDead))
	assert.True(t, CanTransition(PhaseSettled, PhaseRefunded))

	assert.False(t, CanTransition(PhaseDead, PhaseRefunded))
	assert.False(t, CanTransition(PhaseDead, PhaseSettled))
	assert.False(t, CanTransition(PhaseSettled, PhaseDead))
	assert.False(t, CanTransition(PhaseRefunded, PhaseSettled))
	assert.False(t, CanTransition(PhaseOpen, PhaseRefunded))
	assert.False(t, CanTransition(PhaseSettled, PhaseSettled))
}

func TestPhaseOf(t *testing.T) {
	cases := []struct {
		order   Status
		payment PaymentStatus
		want    Phase
	}{
		{StatusPending, PaymentPending, PhaseOpen},
		{StatusConfirmed, PaymentSucceeded, PhaseSettled},
		{StatusCancelled, PaymentFailed, PhaseDead},
		{StatusRefunded, PaymentRefunded, PhaseRefunded},
		{StatusCompleted, PaymentSucceeded, PhaseUnknown},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, PhaseOf(Order{OrderStatus: tc.order, PaymentStatus: tc.payment}))
	}
}

func TestStateOf_PairsBookingStatuses(t *testing.T) {
	s, ok := StateOf(PhaseSettled)
	require.True(t, ok)
	assert.Equal(t, bookings.StatusConfirmed, s.Booking)
	assert.Equal(t, bookings.PaymentPaid, s.BookingPayment)

	s, _ = StateOf(PhaseRefunded)
	assert.Equal(t, bookings.StatusCancelled, s.Booking)
	assert.Equal(t, bookings.PaymentRefunded, s.BookingPayment)

	s, _ = StateOf(PhaseDead)
	assert.Equal(t, bookings.StatusCancelled, s.Booking)
	assert.Equal(t, bookings.PaymentFailed, s.BookingPayment)

	_, ok = StateOf(PhaseUnknown)
	assert.False(t, ok)
}

func TestMarkPresets(t *testing.T) {
	now := time.Now()
	assert.Equal(t, Transition{From: PhaseOpen, To: PhaseSettled, ChargeID: "ch_1", PaymentMethod: "card", Source: "webhook", At: now},
		MarkSucceeded("ch_1", "card", "webhook", now))
	assert.Equal(t, PhaseDead, MarkFailed("webhook", now).To)
	assert.Equal(t, PhaseSettled, MarkRefunded("webhook", now).From)
}

func TestFromBooking(t *testing.T) {
	b := bookings.Booking{
		ID: "b1", BookingNumber: "YC123", Name: "Layla", Email: "l@example.com", Phone: "+971",
		PackageType: "premium", Guests: 3, Subtotal: 900, VAT: 45, VATPercent: 5, TotalAmount: 945,
	}
	o := FromBooking(b, "pi_1", "AED")

	assert.Equal(t, "premium", o.PackageName)
	assert.Equal(t, "pi_1", o.IntentID)
	assert.Equal(t, PhaseOpen, PhaseOf(o))
	assert.Equal(t, "YC123", o.Metadata["bookingNumber"])
	assert.Equal(t, 945.0, o.TotalAmount)
}

func TestNewEnvelope(t *testing.T) {
	o := Order{ID: "o1", OrderNumber: "ORD-1", OrderStatus: StatusConfirmed, PaymentStatus: PaymentSucceeded}
	env, err := NewEnvelope(EventFor(PhaseOf(o)), "yacht-api", o.ID, PayloadOf(o, "webhook"))
	require.NoError(t, err)

	assert.Equal(t, EventOrderSettled, env.EventType)
	assert.Equal(t, 1, env.EventVersion)
	assert.NotEmpty(t, env.EventID)
	assert.Contains(t, string(env.Payload), `"phase":"SETTLED"`)
	assert.Contains(t, string(env.Payload), `"source":"webhook"`)
}
