package orders

import "github.com/nabeelarbab82-debug/LuxuryYachts/internal/bookings"

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
	StatusRefunded  Status = "refunded"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted, StatusRefunded:
		return true
	}
	return false
}

// PaymentStatus mirrors the gateway's view of the payment.
type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentSucceeded  PaymentStatus = "succeeded"
	PaymentFailed     PaymentStatus = "failed"
	PaymentCanceled   PaymentStatus = "canceled"
	PaymentRefunded   PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentProcessing, PaymentSucceeded, PaymentFailed, PaymentCanceled, PaymentRefunded:
		return true
	}
	return false
}

// Phase is the reconciliation state of an (order, booking) pair.
type Phase string

const (
	PhaseOpen     Phase = "OPEN"
	PhaseSettled  Phase = "SETTLED"
	PhaseDead     Phase = "DEAD"
	PhaseRefunded Phase = "REFUNDED"
	PhaseUnknown  Phase = "UNKNOWN"
)

// State is the full set of status fields a phase pins on both records.
type State struct {
	Order          Status
	Payment        PaymentStatus
	Booking        bookings.Status
	BookingPayment bookings.PaymentStatus
}

var phaseStates = map[Phase]State{
	PhaseOpen:     {StatusPending, PaymentPending, bookings.StatusPending, bookings.PaymentPending},
	PhaseSettled:  {StatusConfirmed, PaymentSucceeded, bookings.StatusConfirmed, bookings.PaymentPaid},
	PhaseDead:     {StatusCancelled, PaymentFailed, bookings.StatusCancelled, bookings.PaymentFailed},
	PhaseRefunded: {StatusRefunded, PaymentRefunded, bookings.StatusCancelled, bookings.PaymentRefunded},
}

var validNext = map[Phase]map[Phase]bool{
	PhaseOpen:     {PhaseSettled: true, PhaseDead: true},
	PhaseSettled:  {PhaseRefunded: true},
	PhaseDead:     {},
	PhaseRefunded: {},
}

func CanTransition(from, to Phase) bool {
	return validNext[from][to]
}

func StateOf(p Phase) (State, bool) {
	s, ok := phaseStates[p]
	return s, ok
}

// PhaseOf derives the phase from the order's own status pair.
func PhaseOf(o Order) Phase {
	for p, s := range phaseStates {
		if s.Order == o.OrderStatus && s.Payment == o.PaymentStatus {
			return p
		}
	}
	return PhaseUnknown
}
