package orders

import (
	"time"

	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/bookings"
)

type Order struct {
	ID              string            `json:"id"`
	OrderNumber     string            `json:"orderNumber"`
	BookingID       string            `json:"bookingId"`
	CustomerName    string            `json:"customerName"`
	CustomerEmail   string            `json:"customerEmail"`
	CustomerPhone   string            `json:"customerPhone"`
	PackageName     string            `json:"packageName"`
	PackageType     string            `json:"packageType"`
	BookingDate     time.Time         `json:"bookingDate"`
	NumberOfGuests  int               `json:"numberOfGuests"`
	SpecialRequests string            `json:"specialRequests,omitempty"`
	Subtotal        float64           `json:"subtotal"`
	VAT             float64           `json:"vat"`
	VATPercent      float64           `json:"vatPercentage"`
	TotalAmount     float64           `json:"totalAmount"`
	Currency        string            `json:"currency"`
	IntentID        string            `json:"stripePaymentIntentId"`
	PaymentStatus   PaymentStatus     `json:"stripePaymentStatus"`
	ChargeID        string            `json:"stripeChargeId,omitempty"`
	PaymentMethod   string            `json:"paymentMethod,omitempty"`
	OrderStatus     Status            `json:"orderStatus"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	PaidAt          *time.Time        `json:"paidAt,omitempty"`
	CancelledAt     *time.Time        `json:"cancelledAt,omitempty"`
	RefundedAt      *time.Time        `json:"refundedAt,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// FromBooking snapshots the customer, package and pricing fields of b.
// Later edits to the booking are not synced back.
func FromBooking(b bookings.Booking, intentID, currency string) Order {
	name := b.PackageName
	if name == "" {
		name = b.PackageType
	}
	return Order{
		BookingID:       b.ID,
		CustomerName:    b.Name,
		CustomerEmail:   b.Email,
		CustomerPhone:   b.Phone,
		PackageName:     name,
		PackageType:     b.PackageType,
		BookingDate:     b.Date,
		NumberOfGuests:  b.Guests,
		SpecialRequests: b.SpecialRequests,
		Subtotal:        b.Subtotal,
		VAT:             b.VAT,
		VATPercent:      b.VATPercent,
		TotalAmount:     b.TotalAmount,
		Currency:        currency,
		IntentID:        intentID,
		PaymentStatus:   PaymentPending,
		OrderStatus:     StatusPending,
		Metadata:        map[string]string{"bookingNumber": b.BookingNumber},
	}
}

// BookingRef is the booking side joined onto order listings.
type BookingRef struct {
	ID            string                 `json:"id"`
	BookingNumber string                 `json:"bookingNumber"`
	Status        bookings.Status        `json:"status"`
	PaymentStatus bookings.PaymentStatus `json:"paymentStatus"`
}

type OrderWithBooking struct {
	Order
	Booking *BookingRef `json:"booking"`
}

type Filter struct {
	OrderStatus   Status
	PaymentStatus PaymentStatus
}

// PageSize bounds admin listings.
const PageSize = 100

// Transition requests a CAS move of the pair from one phase to another.
type Transition struct {
	From          Phase
	To            Phase
	ChargeID      string
	PaymentMethod string
	At            time.Time
	Source        string
}

func MarkSucceeded(chargeID, paymentMethod, source string, at time.Time) Transition {
	return Transition{From: PhaseOpen, To: PhaseSettled, ChargeID: chargeID, PaymentMethod: paymentMethod, Source: source, At: at}
}

func MarkFailed(source string, at time.Time) Transition {
	return Transition{From: PhaseOpen, To: PhaseDead, Source: source, At: at}
}

func MarkRefunded(source string, at time.Time) Transition {
	return Transition{From: PhaseSettled, To: PhaseRefunded, Source: source, At: at}
}
