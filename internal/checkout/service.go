package checkout

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/apperr"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/bookings"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/catalog"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/orders"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/payments"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/pricing"
	"github.com/sirupsen/logrus"
)

// AmountTolerance is how far client-computed totals may drift from ours.
const AmountTolerance = 0.01

// compensateTimeout bounds the undo calls made after a failed checkout.
const compensateTimeout = 5 * time.Second

type PackageSource interface {
	GetPackage(ctx context.Context, id string) (catalog.Package, error)
}

type BookingStore interface {
	Create(ctx context.Context, b bookings.Booking) (bookings.Booking, error)
	Cancel(ctx context.Context, id string) error
}

type OrderStore interface {
	Create(ctx context.Context, o orders.Order) (orders.Order, error)
}

type Service struct {
	Packages   PackageSource
	Bookings   BookingStore
	Orders     OrderStore
	Gateway    payments.Gateway
	Currency   string
	DefaultVAT float64
	Log        *logrus.Logger
}

// Amounts is the client's own price computation, checked against ours.
type Amounts struct {
	Subtotal      float64 `json:"subtotal"`
	VAT           float64 `json:"vat"`
	Total         float64 `json:"total"`
	VATPercentage float64 `json:"vatPercentage"`
}

type BookingRequest struct {
	bookings.Request
	CalculatedAmounts *Amounts `json:"calculatedAmounts,omitempty"`
}

type PaymentRequest struct {
	Booking           bookings.Request `json:"bookingData"`
	CalculatedAmounts *Amounts         `json:"calculatedAmounts,omitempty"`
}

type PaymentResult struct {
	ClientSecret string  `json:"clientSecret"`
	OrderID      string  `json:"orderId"`
	OrderNumber  string  `json:"orderNumber"`
	BookingID    string  `json:"bookingId"`
	TotalAmount  float64 `json:"totalAmount"`
	Subtotal     float64 `json:"subtotal"`
	VAT          float64 `json:"vat"`
}

// CreateBooking prices and stores a pending booking without opening a payment.
func (s *Service) CreateBooking(ctx context.Context, req BookingRequest) (bookings.Booking, error) {
	b, err := s.prepare(ctx, req.Request, req.CalculatedAmounts)
	if err != nil {
		return bookings.Booking{}, err
	}
	created, err := s.Bookings.Create(ctx, b)
	if err != nil {
		return bookings.Booking{}, err
	}
	s.Log.WithFields(logrus.Fields{
		"booking_id":     created.ID,
		"booking_number": created.BookingNumber,
		"total":          created.TotalAmount,
	}).Info("booking created")
	return created, nil
}

// OpenPayment creates the booking, opens a gateway intent for its total and
// records the order that correlates the two. If the order cannot be stored
// the intent is cancelled and the booking is moved to cancelled/failed.
func (s *Service) OpenPayment(ctx context.Context, req PaymentRequest) (PaymentResult, error) {
	b, err := s.prepare(ctx, req.Booking, req.CalculatedAmounts)
	if err != nil {
		return PaymentResult{}, err
	}
	booking, err := s.Bookings.Create(ctx, b)
	if err != nil {
		return PaymentResult{}, err
	}
	log := s.Log.WithFields(logrus.Fields{"booking_id": booking.ID, "booking_number": booking.BookingNumber})

	intent, err := s.Gateway.OpenIntent(ctx, payments.IntentRequest{
		AmountMinor:    pricing.MinorUnits(booking.TotalAmount),
		Currency:       s.Currency,
		Description:    fmt.Sprintf("Yacht Cruise Booking - %s package for %d guests", booking.PackageType, booking.Guests),
		ReceiptEmail:   booking.Email,
		IdempotencyKey: "booking:" + booking.ID,
		Metadata: map[string]string{
			"bookingId":     booking.ID,
			"customerName":  booking.Name,
			"customerEmail": booking.Email,
			"packageType":   booking.PackageType,
			"guests":        strconv.Itoa(booking.Guests),
		},
	})
	if err != nil {
		log.WithError(err).Error("open intent failed")
		cctx, cancel := compensateCtx(ctx)
		defer cancel()
		s.cancelBooking(cctx, booking.ID, log)
		return PaymentResult{}, err
	}
	log = log.WithField("intent_id", intent.ID)

	order, err := s.Orders.Create(ctx, orders.FromBooking(booking, intent.ID, s.Currency))
	if err != nil {
		log.WithError(err).Error("order create failed, compensating")
		cctx, cancel := compensateCtx(ctx)
		defer cancel()
		if cerr := s.Gateway.CancelIntent(cctx, intent.ID); cerr != nil {
			log.WithError(cerr).Error("cancel orphan intent failed")
		}
		s.cancelBooking(cctx, booking.ID, log)
		if !errors.Is(err, apperr.ErrPersistence) {
			err = fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
		}
		return PaymentResult{}, err
	}

	log.WithFields(logrus.Fields{"order_id": order.ID, "order_number": order.OrderNumber}).Info("payment opened")
	return PaymentResult{
		ClientSecret: intent.ClientSecret,
		OrderID:      order.ID,
		OrderNumber:  order.OrderNumber,
		BookingID:    booking.ID,
		TotalAmount:  booking.TotalAmount,
		Subtotal:     booking.Subtotal,
		VAT:          booking.VAT,
	}, nil
}

// compensateCtx detaches undo work from the request so a client disconnect
// cannot strand a booking or an intent.
func compensateCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), compensateTimeout)
}

func (s *Service) cancelBooking(ctx context.Context, id string, log *logrus.Entry) {
	if err := s.Bookings.Cancel(ctx, id); err != nil {
		log.WithError(err).Error("cancel booking failed")
	}
}

// prepare validates r, prices it from the stored package and builds the
// pending booking. The package is authoritative for name, type and rates.
func (s *Service) prepare(ctx context.Context, r bookings.Request, client *Amounts) (bookings.Booking, error) {
	r.Normalize()
	if err := r.Validate(); err != nil {
		return bookings.Booking{}, err
	}

	pkg, err := s.Packages.GetPackage(ctx, r.PackageID)
	if errors.Is(err, apperr.ErrNotFound) {
		return bookings.Booking{}, apperr.Invalid("unknown package", "packageId")
	}
	if err != nil {
		return bookings.Booking{}, err
	}
	if !pkg.Active {
		return bookings.Booking{}, apperr.Invalid("package is not available", "packageId")
	}

	party := pricing.Party{Adults: r.Adults, Children: r.Children, Infants: r.Infants, Hours: r.BookingHours}
	if party.Adults+party.Children+party.Infants == 0 {
		party.Adults = r.Guests
	}
	if pkg.PriceType == pricing.PerHour {
		minHours := float64(pkg.MinimumBookingHours)
		if party.Hours == 0 {
			party.Hours = minHours
		}
		if party.Hours < minHours {
			return bookings.Booking{}, apperr.Invalid(
				fmt.Sprintf("minimum booking is %d hours", pkg.MinimumBookingHours), "bookingHours")
		}
		r.BookingHours = party.Hours
	}

	q, err := pricing.Calculate(pkg.PriceType, pkg.Rates(), party, s.DefaultVAT)
	if err != nil {
		return bookings.Booking{}, err
	}
	if client != nil && math.Abs(client.Total-q.Total) > AmountTolerance {
		return bookings.Booking{}, apperr.Invalid(
			fmt.Sprintf("amount mismatch: expected %.2f", q.Total), "calculatedAmounts.total")
	}

	r.PackageName = pkg.Name
	r.PackageType = string(pkg.Type)
	return bookings.New(r, bookings.Totals{
		Subtotal:   q.Subtotal,
		VAT:        q.VAT,
		VATPercent: q.VATPercent,
		Total:      q.Total,
	}), nil
}
