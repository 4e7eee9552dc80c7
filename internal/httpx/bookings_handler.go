package httpx

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/apperr"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/bookings"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/checkout"
	"github.com/sirupsen/logrus"
)

type BookingCreator interface {
	CreateBooking(ctx context.Context, req checkout.BookingRequest) (bookings.Booking, error)
}

type BookingStore interface {
	Get(ctx context.Context, id string) (bookings.Booking, error)
	UpdateStatus(ctx context.Context, id string, u bookings.StatusUpdate) (bookings.Booking, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f bookings.Filter) ([]bookings.Booking, error)
}

type BookingsHandler struct {
	Checkout BookingCreator
	Store    BookingStore
	Log      *logrus.Logger
}

type createBookingResp struct {
	BookingID     string  `json:"bookingId"`
	BookingNumber string  `json:"bookingNumber"`
	TotalAmount   float64 `json:"totalAmount"`
	Subtotal      float64 `json:"subtotal"`
	VAT           float64 `json:"vat"`
}

// Register mounts the public booking route; limit wraps it with rate limiting.
func (h *BookingsHandler) Register(r chi.Router, limit func(http.Handler) http.Handler) {
	r.With(limit).Post("/bookings", h.create)
}

func (h *BookingsHandler) RegisterAdmin(r chi.Router) {
	r.Get("/bookings", h.list)
	r.Get("/bookings/{id}", h.get)
	r.Patch("/bookings/{id}", h.updateStatus)
	r.Delete("/bookings/{id}", h.delete)
}

func (h *BookingsHandler) create(w http.ResponseWriter, r *http.Request) {
	var req checkout.BookingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	b, err := h.Checkout.CreateBooking(r.Context(), req)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, createBookingResp{
		BookingID:     b.ID,
		BookingNumber: b.BookingNumber,
		TotalAmount:   b.TotalAmount,
		Subtotal:      b.Subtotal,
		VAT:           b.VAT,
	})
}

func (h *BookingsHandler) list(w http.ResponseWriter, r *http.Request) {
	f := bookings.Filter{Status: bookings.Status(r.URL.Query().Get("status"))}
	if f.Status != "" && !f.Status.Valid() {
		writeError(w, r, h.Log, apperr.Invalid("", "status"))
		return
	}
	bs, err := h.Store.List(r.Context(), f)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, bs)
}

func (h *BookingsHandler) get(w http.ResponseWriter, r *http.Request) {
	b, err := h.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BookingsHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var u bookings.StatusUpdate
	if err := decodeJSON(w, r, &u); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if err := u.Validate(); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	b, err := h.Store.UpdateStatus(r.Context(), chi.URLParam(r, "id"), u)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BookingsHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
