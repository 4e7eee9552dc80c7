package orders

import "time"

// StatusView is the small, cacheable projection served by the status endpoint.
type StatusView struct {
	OrderID       string        `json:"orderId"`
	OrderNumber   string        `json:"orderNumber"`
	OrderStatus   Status        `json:"orderStatus"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	Phase         Phase         `json:"phase"`
	TotalAmount   float64       `json:"totalAmount"`
	Currency      string        `json:"currency"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

func (o Order) View() StatusView {
	return StatusView{
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		OrderStatus:   o.OrderStatus,
		PaymentStatus: o.PaymentStatus,
		Phase:         PhaseOf(o),
		TotalAmount:   o.TotalAmount,
		Currency:      o.Currency,
		UpdatedAt:     o.UpdatedAt,
	}
}
