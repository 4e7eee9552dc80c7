package orders

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/apperr"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/bookings"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/outbox"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/postgres"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/refnum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dbFixture struct {
	db       *pgxpool.Pool
	orders   *Repo
	bookings *bookings.Repo
}

// newDBFixture runs against a real Postgres. Rows created through it are
// removed when the test ends, so it is safe against a shared database.
func newDBFixture(t *testing.T) dbFixture {
	t.Helper()
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_DSN not set")
	}
	ctx := context.Background()
	require.NoError(t, postgres.Migrate(ctx, dsn))
	db, err := postgres.Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	return dbFixture{
		db: db,
		orders: &Repo{
			DB:       db,
			Refs:     refnum.NewGenerator(),
			Outbox:   &outbox.Repo{DB: db},
			Topic:    DefaultTopic,
			Producer: "orders-test",
		},
		bookings: &bookings.Repo{DB: db, Refs: refnum.NewGenerator()},
	}
}

// open stores a pending booking and its OPEN order.
func (f dbFixture) open(t *testing.T) Order {
	t.Helper()
	ctx := context.Background()
	b, err := f.bookings.Create(ctx, bookings.Booking{
		PackageName: "Premium Sunset Cruise",
		PackageType: "premium",
		Name:        "Layla Haddad",
		Email:       "layla@example.com",
		Phone:       "+971500000000",
		Date:        time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC),
		Guests:      3,
		Subtotal:    900,
		VAT:         45,
		VATPercent:  5,
		TotalAmount: 945,
	})
	require.NoError(t, err)

	o, err := f.orders.Create(ctx, FromBooking(b, "pi_"+uuid.NewString(), "AED"))
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx := context.Background()
		_, _ = f.db.Exec(ctx, `DELETE FROM outbox WHERE msg_key=$1`, o.ID)
		_, _ = f.db.Exec(ctx, `DELETE FROM orders WHERE id=$1`, o.ID)
		_, _ = f.db.Exec(ctx, `DELETE FROM bookings WHERE id=$1`, b.ID)
	})
	return o
}

func (f dbFixture) eventTypes(t *testing.T, orderID string) []string {
	t.Helper()
	rows, err := f.db.Query(context.Background(),
		`SELECT payload FROM outbox WHERE msg_key=$1 ORDER BY created_at`, orderID)
	require.NoError(t, err)
	defer rows.Close()

	var out []string
	for rows.Next() {
		var raw []byte
		require.NoError(t, rows.Scan(&raw))
		var env Envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		out = append(out, env.EventType)
	}
	require.NoError(t, rows.Err())
	return out
}

func TestRepoTransition_ConcurrentWritersOneWins(t *testing.T) {
	f := newDBFixture(t)
	ctx := context.Background()
	o := f.open(t)
	at := time.Now().UTC()

	moves := []Transition{
		MarkSucceeded("ch_"+uuid.NewString(), "card", "webhook", at),
		MarkFailed("confirm", at),
	}
	errs := make([]error, len(moves))
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i, tr := range moves {
		wg.Add(1)
		go func(i int, tr Transition) {
			defer wg.Done()
			<-start
			_, errs[i] = f.orders.Transition(ctx, o.ID, tr)
		}(i, tr)
	}
	close(start)
	wg.Wait()

	var won, stale int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, ErrStaleState):
			stale++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, 1, stale)

	got, err := f.orders.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Contains(t, []Phase{PhaseSettled, PhaseDead}, PhaseOf(got))
	// one opened event plus exactly one for the winning move
	assert.Len(t, f.eventTypes(t, o.ID), 2)
}

func TestRepoTransition_SettleWritesBookingAndOutbox(t *testing.T) {
	f := newDBFixture(t)
	ctx := context.Background()
	o := f.open(t)
	chargeID := "ch_" + uuid.NewString()

	settled, err := f.orders.Transition(ctx, o.ID, MarkSucceeded(chargeID, "card", "webhook", time.Now().UTC()))
	require.NoError(t, err)
	assert.Equal(t, PhaseSettled, PhaseOf(settled))
	assert.Equal(t, chargeID, settled.ChargeID)
	assert.Equal(t, "card", settled.PaymentMethod)
	require.NotNil(t, settled.PaidAt)
	assert.Nil(t, settled.CancelledAt)
	assert.Nil(t, settled.RefundedAt)

	b, err := f.bookings.Get(ctx, o.BookingID)
	require.NoError(t, err)
	assert.Equal(t, bookings.StatusConfirmed, b.Status)
	assert.Equal(t, bookings.PaymentPaid, b.PaymentStatus)
	assert.Equal(t, "stripe", b.PaymentMethod)

	assert.Equal(t, []string{EventOrderOpened, EventOrderSettled}, f.eventTypes(t, o.ID))

	byCharge, err := f.orders.FindByChargeID(ctx, chargeID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, byCharge.ID)
}

func TestRepoTransition_StaleWriteLeavesNoTrace(t *testing.T) {
	f := newDBFixture(t)
	ctx := context.Background()
	o := f.open(t)

	_, err := f.orders.Transition(ctx, o.ID, MarkRefunded("webhook", time.Now().UTC()))
	assert.ErrorIs(t, err, ErrStaleState)

	b, err := f.bookings.Get(ctx, o.BookingID)
	require.NoError(t, err)
	assert.Equal(t, bookings.StatusPending, b.Status)
	assert.Equal(t, []string{EventOrderOpened}, f.eventTypes(t, o.ID))
}

func TestRepoTransition_RefundAfterSettle(t *testing.T) {
	f := newDBFixture(t)
	ctx := context.Background()
	o := f.open(t)
	chargeID := "ch_" + uuid.NewString()

	settled, err := f.orders.Transition(ctx, o.ID, MarkSucceeded(chargeID, "card", "webhook", time.Now().UTC()))
	require.NoError(t, err)

	found, err := f.orders.FindByChargeID(ctx, chargeID)
	require.NoError(t, err)
	refunded, err := f.orders.Transition(ctx, found.ID, MarkRefunded("webhook", time.Now().UTC()))
	require.NoError(t, err)

	assert.Equal(t, PhaseRefunded, PhaseOf(refunded))
	require.NotNil(t, refunded.RefundedAt)
	require.NotNil(t, refunded.PaidAt)
	assert.True(t, refunded.PaidAt.Equal(*settled.PaidAt))
	assert.Equal(t, chargeID, refunded.ChargeID)

	b, err := f.bookings.Get(ctx, o.BookingID)
	require.NoError(t, err)
	assert.Equal(t, bookings.StatusCancelled, b.Status)
	assert.Equal(t, bookings.PaymentRefunded, b.PaymentStatus)

	assert.Equal(t, []string{EventOrderOpened, EventOrderSettled, EventOrderRefunded}, f.eventTypes(t, o.ID))
}

func TestRepoTransition_FailedOrderHasNoChargeToRefund(t *testing.T) {
	f := newDBFixture(t)
	ctx := context.Background()
	o := f.open(t)

	dead, err := f.orders.Transition(ctx, o.ID, MarkFailed("webhook", time.Now().UTC()))
	require.NoError(t, err)
	assert.Equal(t, PhaseDead, PhaseOf(dead))
	require.NotNil(t, dead.CancelledAt)
	assert.Nil(t, dead.PaidAt)
	assert.Empty(t, dead.ChargeID)

	// a refund arriving later cannot be correlated
	_, err = f.orders.FindByChargeID(ctx, "ch_"+uuid.NewString())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = f.orders.FindByChargeID(ctx, "")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.orders.Transition(ctx, o.ID, MarkRefunded("webhook", time.Now().UTC()))
	assert.ErrorIs(t, err, ErrStaleState)

	b, err := f.bookings.Get(ctx, o.BookingID)
	require.NoError(t, err)
	assert.Equal(t, bookings.StatusCancelled, b.Status)
	assert.Equal(t, bookings.PaymentFailed, b.PaymentStatus)
	assert.Equal(t, []string{EventOrderOpened, EventOrderFailed}, f.eventTypes(t, o.ID))
}

func TestRepoListOpenBefore_RotatesBySweepStamp(t *testing.T) {
	f := newDBFixture(t)
	ctx := context.Background()
	base := time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)

	var ids []string
	for i := 0; i < 3; i++ {
		o := f.open(t)
		_, err := f.db.Exec(ctx, `UPDATE orders SET created_at=$2 WHERE id=$1`, o.ID, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		ids = append(ids, o.ID)
	}
	cutoff := base.Add(time.Hour)

	first, err := f.orders.ListOpenBefore(ctx, cutoff, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, ids[:2], []string{first[0].ID, first[1].ID})

	require.NoError(t, f.orders.MarkSwept(ctx, ids[:2], time.Now().UTC()))

	second, err := f.orders.ListOpenBefore(ctx, cutoff, 2)
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, ids[2], second[0].ID)
}
