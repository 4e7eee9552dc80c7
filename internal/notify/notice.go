// Package notify turns order events into operator notices and delivers them
// through RabbitMQ.
package notify

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/orders"
)

type Kind string

const (
	KindNewOrder Kind = "new_order"
	KindPaid     Kind = "paid"
	KindFailed   Kind = "payment_failed"
	KindRefunded Kind = "refunded"
)

var eventKinds = map[string]Kind{
	orders.EventOrderOpened:   KindNewOrder,
	orders.EventOrderSettled:  KindPaid,
	orders.EventOrderFailed:   KindFailed,
	orders.EventOrderRefunded: KindRefunded,
}

// KindFor reports the notice kind of an order event type.
func KindFor(eventType string) (Kind, bool) {
	k, ok := eventKinds[eventType]
	return k, ok
}

type Notice struct {
	ID            string    `json:"id"`
	Kind          Kind      `json:"kind"`
	OrderID       string    `json:"orderId"`
	OrderNumber   string    `json:"orderNumber"`
	BookingNumber string    `json:"bookingNumber,omitempty"`
	CustomerName  string    `json:"customerName"`
	CustomerPhone string    `json:"customerPhone"`
	PackageName   string    `json:"packageName"`
	BookingDate   string    `json:"bookingDate"`
	TotalAmount   float64   `json:"totalAmount"`
	Currency      string    `json:"currency"`
	ChatLink      string    `json:"chatLink,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// Text is the human-readable body of the notice.
func (n Notice) Text() string {
	var head string
	switch n.Kind {
	case KindNewOrder:
		head = "New booking awaiting payment"
	case KindPaid:
		head = "Booking paid"
	case KindFailed:
		head = "Payment failed"
	case KindRefunded:
		head = "Booking refunded"
	default:
		head = "Booking update"
	}
	return fmt.Sprintf("%s\nOrder: %s\nBooking: %s\nCustomer: %s (%s)\nPackage: %s\nDate: %s\nTotal: %s %.2f",
		head, n.OrderNumber, n.BookingNumber, n.CustomerName, n.CustomerPhone, n.PackageName,
		n.BookingDate, n.Currency, n.TotalAmount)
}

func newNotice(id string, kind Kind, at time.Time, p orders.OrderEventPayload) Notice {
	return Notice{
		ID:            id,
		Kind:          kind,
		OrderID:       p.OrderID,
		OrderNumber:   p.OrderNumber,
		BookingNumber: p.BookingNumber,
		CustomerName:  p.CustomerName,
		CustomerPhone: p.CustomerPhone,
		PackageName:   p.PackageName,
		BookingDate:   p.BookingDate,
		TotalAmount:   p.TotalAmount,
		Currency:      p.Currency,
		OccurredAt:    at,
	}
}

// ChatLink builds a WhatsApp click-to-chat link. Non-digits in number are
// dropped; an empty number yields "".
func ChatLink(number, text string) string {
	var b strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	link := "https://wa.me/" + b.String()
	if text != "" {
		link += "?text=" + url.QueryEscape(text)
	}
	return link
}
