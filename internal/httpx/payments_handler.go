package httpx

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/apperr"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/checkout"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/orders"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/payments"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/reconcile"
	"github.com/sirupsen/logrus"
)

type PaymentOpener interface {
	OpenPayment(ctx context.Context, req checkout.PaymentRequest) (checkout.PaymentResult, error)
}

type Reconciler interface {
	HandleEvent(ctx context.Context, ev payments.Event) (reconcile.Outcome, error)
	Confirm(ctx context.Context, orderID, intentID string) (orders.Order, error)
	Sweep(ctx context.Context, cutoff time.Time) (reconcile.SweepReport, error)
}

type EventParser interface {
	ParseEvent(payload []byte, signatureHeader string) (payments.Event, error)
}

type OrderReader interface {
	Get(ctx context.Context, id string) (orders.Order, error)
	List(ctx context.Context, f orders.Filter) ([]orders.OrderWithBooking, error)
}

type StatusCache interface {
	Get(ctx context.Context, orderID string) (orders.StatusView, bool, error)
	PutIfAbsent(ctx context.Context, v orders.StatusView) (bool, error)
}

type PaymentsHandler struct {
	Checkout   PaymentOpener
	Reconciler Reconciler
	Events     EventParser
	Orders     OrderReader
	Cache      StatusCache
	Log        *logrus.Logger
}

type confirmReq struct {
	OrderID         string `json:"orderId"`
	PaymentIntentID string `json:"paymentIntentId"`
}

type confirmResp struct {
	OrderID       string               `json:"orderId"`
	OrderNumber   string               `json:"orderNumber"`
	OrderStatus   orders.Status        `json:"orderStatus"`
	PaymentStatus orders.PaymentStatus `json:"paymentStatus"`
	TotalAmount   float64              `json:"totalAmount"`
}

func (h *PaymentsHandler) Register(r chi.Router, limit func(http.Handler) http.Handler) {
	r.With(limit).Post("/payments/intent", h.openIntent)
	r.Post("/payments/confirm", h.confirm)
	r.Get("/payments/orders/{id}/status", h.status)
	r.Post("/payments/webhook", h.webhook)
}

func (h *PaymentsHandler) openIntent(w http.ResponseWriter, r *http.Request) {
	var req checkout.PaymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := h.Checkout.OpenPayment(ctx, req)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *PaymentsHandler) confirm(w http.ResponseWriter, r *http.Request) {
	var req confirmReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	o, err := h.Reconciler.Confirm(ctx, req.OrderID, req.PaymentIntentID)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, confirmResp{
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		OrderStatus:   o.OrderStatus,
		PaymentStatus: o.PaymentStatus,
		TotalAmount:   o.TotalAmount,
	})
}

// status serves from the Redis cache and falls back to the ledger.
func (h *PaymentsHandler) status(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// 1) cache
	if h.Cache != nil {
		v, ok, err := h.Cache.Get(ctx, orderID)
		if err != nil {
			h.Log.WithError(err).WithField("order_id", orderID).Warn("status cache read failed")
		}
		if ok {
			writeJSON(w, http.StatusOK, v)
			return
		}
	}

	// 2) ledger
	o, err := h.Orders.Get(ctx, orderID)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	v := o.View()
	if h.Cache != nil {
		// the reconciler overwrites on every transition; never clobber its entry
		if _, err := h.Cache.PutIfAbsent(ctx, v); err != nil {
			h.Log.WithError(err).WithField("order_id", orderID).Warn("status cache write failed")
		}
	}
	writeJSON(w, http.StatusOK, v)
}

// webhook verifies the gateway signature over the raw body before anything
// is decoded. Verified events are acknowledged with 200 even when they match
// no order; store failures return 500 so the gateway redelivers.
func (h *PaymentsHandler) webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		writeError(w, r, h.Log, apperr.Invalid("unreadable body"))
		return
	}

	ev, err := h.Events.ParseEvent(payload, r.Header.Get(payments.SignatureHeader))
	if err != nil {
		if errors.Is(err, apperr.ErrSignature) {
			h.Log.WithError(err).Warn("webhook signature rejected")
		}
		writeError(w, r, h.Log, err)
		return
	}

	out, err := h.Reconciler.HandleEvent(r.Context(), ev)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"received": true,
		"applied":  out.Applied,
		"reason":   out.Reason,
	})
}
