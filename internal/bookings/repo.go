package bookings

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/apperr"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/postgres"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/refnum"
)

const numberConstraint = "bookings_booking_number_key"

type Repo struct {
	DB   *pgxpool.Pool
	Refs *refnum.Generator
}

const columns = `id, booking_number, COALESCE(package_id::text, ''), package_name, package_type, name, email,
	phone, booking_date, start_time, booking_hours, adults, children, infants, guests, pickup_point,
	meeting_point, add_ons, special_requests, subtotal, vat, vat_percent, total_amount, status,
	payment_status, payment_method, created_at, updated_at`

func scan(row pgx.Row) (Booking, error) {
	var b Booking
	err := row.Scan(&b.ID, &b.BookingNumber, &b.PackageID, &b.PackageName, &b.PackageType, &b.Name,
		&b.Email, &b.Phone, &b.Date, &b.StartTime, &b.BookingHours, &b.Adults, &b.Children, &b.Infants,
		&b.Guests, &b.PickupPoint, &b.MeetingPoint, &b.AddOns, &b.SpecialRequests, &b.Subtotal, &b.VAT,
		&b.VATPercent, &b.TotalAmount, &b.Status, &b.PaymentStatus, &b.PaymentMethod, &b.CreatedAt,
		&b.UpdatedAt)
	return b, err
}

// Create assigns id and booking number and persists b in pending/pending.
// A booking-number collision regenerates the number.
func (r *Repo) Create(ctx context.Context, b Booking) (Booking, error) {
	b.ID = uuid.NewString()
	b.Status = StatusPending
	b.PaymentStatus = PaymentPending

	var packageID any
	if b.PackageID != "" {
		if err := postgres.CheckID(b.PackageID, "package"); err != nil {
			return Booking{}, apperr.Invalid("", "packageId")
		}
		packageID = b.PackageID
	}

	var out Booking
	_, err := refnum.Retry(ctx, refnum.DefaultAttempts, r.Refs.BookingNumber, func(number string) error {
		row := r.DB.QueryRow(ctx, `
			INSERT INTO bookings (id, booking_number, package_id, package_name, package_type, name, email,
				phone, booking_date, start_time, booking_hours, adults, children, infants, guests,
				pickup_point, meeting_point, add_ons, special_requests, subtotal, vat, vat_percent,
				total_amount, status, payment_status, payment_method)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26)
			RETURNING `+columns,
			b.ID, number, packageID, b.PackageName, b.PackageType, b.Name, b.Email, b.Phone, b.Date,
			b.StartTime, b.BookingHours, b.Adults, b.Children, b.Infants, b.Guests, b.PickupPoint,
			b.MeetingPoint, b.AddOns, b.SpecialRequests, b.Subtotal, b.VAT, b.VATPercent, b.TotalAmount,
			b.Status, b.PaymentStatus, b.PaymentMethod)
		var err error
		out, err = scan(row)
		if err != nil && postgres.IsUniqueViolation(err, numberConstraint) {
			return apperr.ErrConflict
		}
		return err
	})
	if err != nil {
		return Booking{}, postgres.Translate(err, "booking")
	}
	return out, nil
}

func (r *Repo) Get(ctx context.Context, id string) (Booking, error) {
	if err := postgres.CheckID(id, "booking"); err != nil {
		return Booking{}, err
	}
	b, err := scan(r.DB.QueryRow(ctx, `SELECT `+columns+` FROM bookings WHERE id=$1`, id))
	return b, postgres.Translate(err, "booking")
}

// UpdateStatus is a partial update of status fields. Totals are not re-checked.
func (r *Repo) UpdateStatus(ctx context.Context, id string, u StatusUpdate) (Booking, error) {
	if err := u.Validate(); err != nil {
		return Booking{}, err
	}
	if err := postgres.CheckID(id, "booking"); err != nil {
		return Booking{}, err
	}
	b, err := scan(r.DB.QueryRow(ctx, `
		UPDATE bookings SET
			status = COALESCE($2, status),
			payment_status = COALESCE($3, payment_status),
			payment_method = COALESCE($4, payment_method),
			updated_at = now()
		WHERE id=$1
		RETURNING `+columns, id, u.Status, u.PaymentStatus, u.PaymentMethod))
	return b, postgres.Translate(err, "booking")
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	if err := postgres.CheckID(id, "booking"); err != nil {
		return err
	}
	tag, err := r.DB.Exec(ctx, `DELETE FROM bookings WHERE id=$1`, id)
	if err != nil {
		return postgres.Translate(err, "booking")
	}
	if tag.RowsAffected() == 0 {
		return postgres.Translate(pgx.ErrNoRows, "booking")
	}
	return nil
}

// List returns the newest bookings first, at most PageSize.
func (r *Repo) List(ctx context.Context, f Filter) ([]Booking, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, apperr.Invalid("", "status")
	}
	rows, err := r.DB.Query(ctx, `
		SELECT `+columns+` FROM bookings
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2`, string(f.Status), PageSize)
	if err != nil {
		return nil, postgres.Translate(err, "booking")
	}
	defer rows.Close()

	out := []Booking{}
	for rows.Next() {
		b, err := scan(rows)
		if err != nil {
			return nil, postgres.Translate(err, "booking")
		}
		out = append(out, b)
	}
	return out, postgres.Translate(rows.Err(), "booking")
}

// Cancel moves a still-pending booking to cancelled/failed. Used when the
// payment side of a checkout could not be completed.
func (r *Repo) Cancel(ctx context.Context, id string) error {
	tag, err := r.DB.Exec(ctx, `
		UPDATE bookings SET status=$2, payment_status=$3, updated_at=now()
		WHERE id=$1 AND status=$4 AND payment_status=$5`,
		id, StatusCancelled, PaymentFailed, StatusPending, PaymentPending)
	if err != nil {
		return postgres.Translate(err, "booking")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("booking %s is no longer pending: %w", id, apperr.ErrConflict)
	}
	return nil
}
