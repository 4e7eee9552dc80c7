package httpx

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/apperr"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/catalog"
	"github.com/sirupsen/logrus"
)

type CatalogStore interface {
	CreatePackage(ctx context.Context, in catalog.PackageInput) (catalog.Package, error)
	UpdatePackage(ctx context.Context, id string, in catalog.PackageInput) (catalog.Package, error)
	DeletePackage(ctx context.Context, id string) error
	GetPackage(ctx context.Context, id string) (catalog.Package, error)
	GetPackageBySlug(ctx context.Context, slug string, activeOnly bool) (catalog.Package, error)
	ListPackages(ctx context.Context, activeOnly bool) ([]catalog.Package, error)

	ListFAQs(ctx context.Context, activeOnly bool) ([]catalog.FAQ, error)
	CreateFAQ(ctx context.Context, in catalog.FAQInput) (catalog.FAQ, error)
	UpdateFAQ(ctx context.Context, id string, in catalog.FAQInput) (catalog.FAQ, error)
	DeleteFAQ(ctx context.Context, id string) error

	GetContent(ctx context.Context, section string) (catalog.Content, error)
	ListContent(ctx context.Context) ([]catalog.Content, error)
	UpsertContent(ctx context.Context, c catalog.Content) (catalog.Content, error)
}

type CatalogHandler struct {
	Store CatalogStore
	Log   *logrus.Logger
}

func (h *CatalogHandler) Register(r chi.Router) {
	r.Get("/packages", h.listPackages(true))
	r.Get("/packages/{id}", h.getPackage)
	r.Get("/packages/slug/{slug}", h.getPackageBySlug)
	r.Get("/faqs", h.listFAQs(true))
	r.Get("/content", h.listContent)
	r.Get("/content/{section}", h.getContent)
}

func (h *CatalogHandler) RegisterAdmin(r chi.Router) {
	r.Get("/packages", h.listPackages(false))
	r.Post("/packages", h.createPackage)
	r.Put("/packages/{id}", h.updatePackage)
	r.Delete("/packages/{id}", h.deletePackage)

	r.Get("/faqs", h.listFAQs(false))
	r.Post("/faqs", h.createFAQ)
	r.Put("/faqs/{id}", h.updateFAQ)
	r.Delete("/faqs/{id}", h.deleteFAQ)

	r.Put("/content/{section}", h.putContent)
}

func (h *CatalogHandler) listPackages(activeOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ps, err := h.Store.ListPackages(r.Context(), activeOnly)
		if err != nil {
			writeError(w, r, h.Log, err)
			return
		}
		writeJSON(w, http.StatusOK, ps)
	}
}

// getPackage hides inactive packages from the public site.
func (h *CatalogHandler) getPackage(w http.ResponseWriter, r *http.Request) {
	p, err := h.Store.GetPackage(r.Context(), chi.URLParam(r, "id"))
	if err == nil && !p.Active {
		err = apperr.ErrNotFound
	}
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) getPackageBySlug(w http.ResponseWriter, r *http.Request) {
	p, err := h.Store.GetPackageBySlug(r.Context(), chi.URLParam(r, "slug"), true)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) createPackage(w http.ResponseWriter, r *http.Request) {
	var in catalog.PackageInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	p, err := h.Store.CreatePackage(r.Context(), in)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *CatalogHandler) updatePackage(w http.ResponseWriter, r *http.Request) {
	var in catalog.PackageInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	p, err := h.Store.UpdatePackage(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) deletePackage(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeletePackage(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) listFAQs(activeOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fs, err := h.Store.ListFAQs(r.Context(), activeOnly)
		if err != nil {
			writeError(w, r, h.Log, err)
			return
		}
		writeJSON(w, http.StatusOK, fs)
	}
}

func (h *CatalogHandler) createFAQ(w http.ResponseWriter, r *http.Request) {
	var in catalog.FAQInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	f, err := h.Store.CreateFAQ(r.Context(), in)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (h *CatalogHandler) updateFAQ(w http.ResponseWriter, r *http.Request) {
	var in catalog.FAQInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	f, err := h.Store.UpdateFAQ(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *CatalogHandler) deleteFAQ(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteFAQ(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) listContent(w http.ResponseWriter, r *http.Request) {
	cs, err := h.Store.ListContent(r.Context())
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

func (h *CatalogHandler) getContent(w http.ResponseWriter, r *http.Request) {
	c, err := h.Store.GetContent(r.Context(), chi.URLParam(r, "section"))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CatalogHandler) putContent(w http.ResponseWriter, r *http.Request) {
	var c catalog.Content
	if err := decodeJSON(w, r, &c); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	c.Section = chi.URLParam(r, "section")
	out, err := h.Store.UpsertContent(r.Context(), c)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
