package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/auth"
	"github.com/sirupsen/logrus"
)

// API groups the handlers mounted under /api.
type API struct {
	Catalog  *CatalogHandler
	Bookings *BookingsHandler
	Payments *PaymentsHandler
	Admin    *AdminHandler
	Issuer   *auth.Issuer
	Limiter  Limiter
	Log      *logrus.Logger
}

func (a *API) Register(r *chi.Mux) {
	limit := func(scope string) func(http.Handler) http.Handler {
		return RateLimit(a.Limiter, scope, a.Log)
	}

	r.Route("/api", func(api chi.Router) {
		a.Catalog.Register(api)
		a.Bookings.Register(api, limit("bookings"))
		a.Payments.Register(api, limit("payments"))

		api.Route("/admin", func(adm chi.Router) {
			a.Admin.RegisterLogin(adm, limit("login"))
			adm.Group(func(g chi.Router) {
				g.Use(auth.RequireAdmin(a.Issuer))
				a.Catalog.RegisterAdmin(g)
				a.Bookings.RegisterAdmin(g)
				a.Admin.RegisterAdmin(g)
			})
		})
	})
}
