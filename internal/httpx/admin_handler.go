package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/apperr"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/auth"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/orders"
	"github.com/sirupsen/logrus"
)

type Authenticator interface {
	Login(ctx context.Context, email, password string) (auth.Token, error)
}

// AdminHandler serves login, read-only order views and on-demand sweeps.
type AdminHandler struct {
	Auth       Authenticator
	Orders     OrderReader
	Reconciler Reconciler
	SweepAfter time.Duration
	Now        func() time.Time
	Log        *logrus.Logger
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AdminHandler) RegisterLogin(r chi.Router, limit func(http.Handler) http.Handler) {
	r.With(limit).Post("/login", h.login)
}

func (h *AdminHandler) RegisterAdmin(r chi.Router) {
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{id}", h.getOrder)
	r.Post("/sweep", h.sweep)
}

func (h *AdminHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	tok, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, tok)
}

func (h *AdminHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := orders.Filter{
		OrderStatus:   orders.Status(q.Get("orderStatus")),
		PaymentStatus: orders.PaymentStatus(q.Get("paymentStatus")),
	}
	if f.OrderStatus != "" && !f.OrderStatus.Valid() {
		writeError(w, r, h.Log, apperr.Invalid("", "orderStatus"))
		return
	}
	if f.PaymentStatus != "" && !f.PaymentStatus.Valid() {
		writeError(w, r, h.Log, apperr.Invalid("", "paymentStatus"))
		return
	}
	list, err := h.Orders.List(r.Context(), f)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *AdminHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.Orders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *AdminHandler) sweep(w http.ResponseWriter, r *http.Request) {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	ctx, cancel := context.WithTimeout(r.Context(), time.Minute)
	defer cancel()

	rep, err := h.Reconciler.Sweep(ctx, now().Add(-h.SweepAfter))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
