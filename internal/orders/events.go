package orders

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EventOrderOpened   = "OrderOpened"
	EventOrderSettled  = "OrderSettled"
	EventOrderFailed   = "OrderFailed"
	EventOrderRefunded = "OrderRefunded"
)

var phaseEvents = map[Phase]string{
	PhaseOpen:     EventOrderOpened,
	PhaseSettled:  EventOrderSettled,
	PhaseDead:     EventOrderFailed,
	PhaseRefunded: EventOrderRefunded,
}

func EventFor(p Phase) string { return phaseEvents[p] }

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

// OrderEventPayload is carried by every order event.
type OrderEventPayload struct {
	OrderID       string        `json:"order_id"`
	OrderNumber   string        `json:"order_number"`
	BookingID     string        `json:"booking_id"`
	BookingNumber string        `json:"booking_number,omitempty"`
	Phase         Phase         `json:"phase"`
	OrderStatus   Status        `json:"order_status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	CustomerName  string        `json:"customer_name"`
	CustomerPhone string        `json:"customer_phone"`
	PackageName   string        `json:"package_name"`
	BookingDate   string        `json:"booking_date"`
	TotalAmount   float64       `json:"total_amount"`
	Currency      string        `json:"currency"`
	Source        string        `json:"source"`
}

func PayloadOf(o Order, source string) OrderEventPayload {
	return OrderEventPayload{
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		BookingID:     o.BookingID,
		BookingNumber: o.Metadata["bookingNumber"],
		Phase:         PhaseOf(o),
		OrderStatus:   o.OrderStatus,
		PaymentStatus: o.PaymentStatus,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		PackageName:   o.PackageName,
		BookingDate:   o.BookingDate.Format("2006-01-02"),
		TotalAmount:   o.TotalAmount,
		Currency:      o.Currency,
		Source:        source,
	}
}

// NewEnvelope wraps payload in a v1 envelope with a fresh event id.
func NewEnvelope(eventType, producer, correlationID string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		CorrelationID: correlationID,
		Payload:       raw,
	}, nil
}
