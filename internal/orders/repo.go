package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/apperr"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/bookings"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/outbox"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/postgres"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/refnum"
)

const numberConstraint = "orders_order_number_key"

// ErrStaleState means the CAS precondition no longer held when the update ran.
var ErrStaleState = fmt.Errorf("order state changed concurrently: %w", apperr.ErrConflict)

// ErrInvalidTransition is returned for phase moves outside the transition table.
var ErrInvalidTransition = errors.New("invalid phase transition")

type Repo struct {
	DB       *pgxpool.Pool
	Refs     *refnum.Generator
	Outbox   *outbox.Repo
	Topic    string
	Producer string
}

const columns = `o.id, o.order_number, o.booking_id, o.customer_name, o.customer_email, o.customer_phone,
	o.package_name, o.package_type, o.booking_date, o.number_of_guests, o.special_requests, o.subtotal,
	o.vat, o.vat_percent, o.total_amount, o.currency, o.intent_id, o.payment_status,
	COALESCE(o.charge_id, ''), o.payment_method, o.order_status, o.metadata, o.paid_at, o.cancelled_at,
	o.refunded_at, o.created_at, o.updated_at`

func scanInto(o *Order, extra ...any) []any {
	dst := []any{&o.ID, &o.OrderNumber, &o.BookingID, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
		&o.PackageName, &o.PackageType, &o.BookingDate, &o.NumberOfGuests, &o.SpecialRequests, &o.Subtotal,
		&o.VAT, &o.VATPercent, &o.TotalAmount, &o.Currency, &o.IntentID, &o.PaymentStatus,
		&o.ChargeID, &o.PaymentMethod, &o.OrderStatus, &o.Metadata, &o.PaidAt, &o.CancelledAt,
		&o.RefundedAt, &o.CreatedAt, &o.UpdatedAt}
	return append(dst, extra...)
}

func scan(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(scanInto(&o)...)
	return o, err
}

// Create persists a pending order with a fresh order number and appends an
// OrderOpened event in the same transaction.
func (r *Repo) Create(ctx context.Context, o Order) (Order, error) {
	if o.BookingID == "" || o.IntentID == "" {
		return Order{}, apperr.Invalid("", "bookingId", "intentId")
	}
	o.ID = uuid.NewString()
	o.OrderStatus = StatusPending
	o.PaymentStatus = PaymentPending
	if o.Metadata == nil {
		o.Metadata = map[string]string{}
	}

	var out Order
	_, err := refnum.Retry(ctx, refnum.DefaultAttempts, r.Refs.OrderNumber, func(number string) error {
		var err error
		out, err = r.insert(ctx, o, number)
		if err != nil && postgres.IsUniqueViolation(err, numberConstraint) {
			return apperr.ErrConflict
		}
		return err
	})
	if err != nil {
		return Order{}, postgres.Translate(err, "order")
	}
	return out, nil
}

func (r *Repo) insert(ctx context.Context, o Order, number string) (Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	out, err := scan(tx.QueryRow(ctx, `
		INSERT INTO orders AS o (id, order_number, booking_id, customer_name, customer_email, customer_phone,
			package_name, package_type, booking_date, number_of_guests, special_requests, subtotal, vat,
			vat_percent, total_amount, currency, intent_id, payment_status, order_status, metadata)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
		RETURNING `+columns,
		o.ID, number, o.BookingID, o.CustomerName, o.CustomerEmail, o.CustomerPhone, o.PackageName,
		o.PackageType, o.BookingDate, o.NumberOfGuests, o.SpecialRequests, o.Subtotal, o.VAT, o.VATPercent,
		o.TotalAmount, o.Currency, o.IntentID, o.PaymentStatus, o.OrderStatus, o.Metadata))
	if err != nil {
		return Order{}, err
	}
	if err := r.appendEvent(ctx, tx, out, "checkout"); err != nil {
		return Order{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Order{}, err
	}
	return out, nil
}

func (r *Repo) appendEvent(ctx context.Context, tx pgx.Tx, o Order, source string) error {
	env, err := NewEnvelope(EventFor(PhaseOf(o)), r.Producer, o.ID, PayloadOf(o, source))
	if err != nil {
		return err
	}
	return r.Outbox.Append(ctx, tx, r.Topic, o.ID, env)
}

func (r *Repo) Get(ctx context.Context, id string) (Order, error) {
	if err := postgres.CheckID(id, "order"); err != nil {
		return Order{}, err
	}
	o, err := scan(r.DB.QueryRow(ctx, `SELECT `+columns+` FROM orders o WHERE o.id=$1`, id))
	return o, postgres.Translate(err, "order")
}

// FindByIntentID is the correlation lookup for intent events.
func (r *Repo) FindByIntentID(ctx context.Context, intentID string) (Order, error) {
	o, err := scan(r.DB.QueryRow(ctx, `SELECT `+columns+` FROM orders o WHERE o.intent_id=$1`, intentID))
	return o, postgres.Translate(err, "order")
}

// FindByChargeID is the correlation lookup for refunds.
func (r *Repo) FindByChargeID(ctx context.Context, chargeID string) (Order, error) {
	if chargeID == "" {
		return Order{}, postgres.Translate(pgx.ErrNoRows, "order")
	}
	o, err := scan(r.DB.QueryRow(ctx, `SELECT `+columns+` FROM orders o WHERE o.charge_id=$1`, chargeID))
	return o, postgres.Translate(err, "order")
}

// List returns the newest orders first with their booking joined, at most PageSize.
func (r *Repo) List(ctx context.Context, f Filter) ([]OrderWithBooking, error) {
	if f.OrderStatus != "" && !f.OrderStatus.Valid() {
		return nil, apperr.Invalid("", "orderStatus")
	}
	if f.PaymentStatus != "" && !f.PaymentStatus.Valid() {
		return nil, apperr.Invalid("", "paymentStatus")
	}
	rows, err := r.DB.Query(ctx, `
		SELECT `+columns+`, b.id::text, b.booking_number, b.status, b.payment_status
		FROM orders o
		LEFT JOIN bookings b ON b.id = o.booking_id
		WHERE ($1 = '' OR o.order_status = $1) AND ($2 = '' OR o.payment_status = $2)
		ORDER BY o.created_at DESC
		LIMIT $3`, string(f.OrderStatus), string(f.PaymentStatus), PageSize)
	if err != nil {
		return nil, postgres.Translate(err, "order")
	}
	defer rows.Close()

	out := []OrderWithBooking{}
	for rows.Next() {
		var ow OrderWithBooking
		var bid, bnum, bstatus, bpay *string
		if err := rows.Scan(scanInto(&ow.Order, &bid, &bnum, &bstatus, &bpay)...); err != nil {
			return nil, postgres.Translate(err, "order")
		}
		if bid != nil {
			ow.Booking = &BookingRef{ID: *bid, BookingNumber: deref(bnum)}
			ow.Booking.Status = bookings.Status(deref(bstatus))
			ow.Booking.PaymentStatus = bookings.PaymentStatus(deref(bpay))
		}
		out = append(out, ow)
	}
	return out, postgres.Translate(rows.Err(), "order")
}

// ListOpenBefore returns OPEN orders created before cutoff. Orders never
// swept come first, then the ones swept longest ago, so repeated passes
// rotate through a backlog larger than limit.
func (r *Repo) ListOpenBefore(ctx context.Context, cutoff time.Time, limit int) ([]Order, error) {
	open, _ := StateOf(PhaseOpen)
	rows, err := r.DB.Query(ctx, `
		SELECT `+columns+` FROM orders o
		WHERE o.order_status=$1 AND o.payment_status=$2 AND o.created_at < $3
		ORDER BY o.last_swept_at NULLS FIRST, o.created_at
		LIMIT $4`, open.Order, open.Payment, cutoff, limit)
	if err != nil {
		return nil, postgres.Translate(err, "order")
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scan(rows)
		if err != nil {
			return nil, postgres.Translate(err, "order")
		}
		out = append(out, o)
	}
	return out, postgres.Translate(rows.Err(), "order")
}

// MarkSwept stamps the given orders as looked at by the sweep.
func (r *Repo) MarkSwept(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.DB.Exec(ctx, `UPDATE orders SET last_swept_at=$2 WHERE id = ANY($1::uuid[])`, ids, at)
	return postgres.Translate(err, "order")
}

// Transition moves the order and its booking from t.From to t.To in one
// transaction. The order update is conditional on the order still being in
// t.From; if it is not, nothing is written and ErrStaleState is returned.
// The matching order event is appended to the outbox in the same transaction.
func (r *Repo) Transition(ctx context.Context, orderID string, t Transition) (Order, error) {
	if !CanTransition(t.From, t.To) {
		return Order{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.From, t.To)
	}
	from, _ := StateOf(t.From)
	to, _ := StateOf(t.To)
	if t.At.IsZero() {
		t.At = time.Now().UTC()
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, postgres.Translate(err, "order")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	out, err := scan(tx.QueryRow(ctx, `
		UPDATE orders AS o SET
			order_status = $2,
			payment_status = $3,
			charge_id = COALESCE(NULLIF($4, ''), o.charge_id),
			payment_method = COALESCE(NULLIF($5, ''), o.payment_method),
			paid_at = CASE WHEN $6::text = 'SETTLED' THEN $7 ELSE o.paid_at END,
			cancelled_at = CASE WHEN $6::text = 'DEAD' THEN $7 ELSE o.cancelled_at END,
			refunded_at = CASE WHEN $6::text = 'REFUNDED' THEN $7 ELSE o.refunded_at END,
			updated_at = now()
		WHERE o.id = $1 AND o.order_status = $8 AND o.payment_status = $9
		RETURNING `+columns,
		orderID, to.Order, to.Payment, t.ChargeID, t.PaymentMethod, string(t.To), t.At, from.Order, from.Payment))
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrStaleState
	}
	if err != nil {
		return Order{}, postgres.Translate(err, "order")
	}

	bookingMethod := ""
	if t.To == PhaseSettled {
		bookingMethod = "stripe"
	}
	if _, err := tx.Exec(ctx, `
		UPDATE bookings SET
			status = $2,
			payment_status = $3,
			payment_method = COALESCE(NULLIF($4, ''), payment_method),
			updated_at = now()
		WHERE id = $1`, out.BookingID, to.Booking, to.BookingPayment, bookingMethod); err != nil {
		return Order{}, postgres.Translate(err, "booking")
	}

	if err := r.appendEvent(ctx, tx, out, t.Source); err != nil {
		return Order{}, postgres.Translate(err, "outbox")
	}
	if err := tx.Commit(ctx); err != nil {
		return Order{}, postgres.Translate(err, "order")
	}
	return out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
