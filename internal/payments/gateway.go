package payments

import "context"

// IntentStatus is the gateway's status of a payment intent.
type IntentStatus string

const (
	IntentSucceeded             IntentStatus = "succeeded"
	IntentProcessing            IntentStatus = "processing"
	IntentCanceled              IntentStatus = "canceled"
	IntentRequiresPaymentMethod IntentStatus = "requires_payment_method"
	IntentRequiresConfirmation  IntentStatus = "requires_confirmation"
	IntentRequiresAction        IntentStatus = "requires_action"
)

type IntentRequest struct {
	AmountMinor    int64
	Currency       string
	Description    string
	ReceiptEmail   string
	IdempotencyKey string
	Metadata       map[string]string
}

type Intent struct {
	ID                string
	ClientSecret      string
	Status            IntentStatus
	ChargeID          string
	PaymentMethodType string
	AmountMinor       int64
	Currency          string
}

type EventType string

const (
	EventPaymentSucceeded EventType = "payment_succeeded"
	EventPaymentFailed    EventType = "payment_failed"
	EventChargeRefunded   EventType = "charge_refunded"
	EventIgnored          EventType = "ignored"
)

// Event is a verified gateway notification reduced to the correlation fields.
type Event struct {
	ID                string
	Type              EventType
	RawType           string
	IntentID          string
	ChargeID          string
	PaymentMethodType string
}

// Gateway is the payment provider as seen by checkout and reconciliation.
type Gateway interface {
	OpenIntent(ctx context.Context, req IntentRequest) (Intent, error)
	GetIntent(ctx context.Context, id string) (Intent, error)
	CancelIntent(ctx context.Context, id string) error
	// ParseEvent verifies the signature header before decoding anything.
	ParseEvent(payload []byte, signatureHeader string) (Event, error)
}
