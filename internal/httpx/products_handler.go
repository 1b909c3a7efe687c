package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/cloudclutches/storefront/internal/catalog"
	"github.com/go-chi/chi/v5"
)

type ProductStore interface {
	List(ctx context.Context) ([]catalog.Product, error)
	Get(ctx context.Context, id int64) (catalog.Product, error)
	Create(ctx context.Context, in catalog.ProductInput) (catalog.Product, error)
	Update(ctx context.Context, id int64, patch catalog.ProductPatch) (catalog.Product, error)
	Delete(ctx context.Context, id int64) error
}

type ProductsHandler struct {
	Store   ProductStore
	Timeout time.Duration
}

func (h *ProductsHandler) Register(r chi.Router, gate func(http.Handler) http.Handler) {
	r.Get("/api/products", h.list)
	r.Get("/api/products/{id}", h.get)
	r.Group(func(r chi.Router) {
		r.Use(gate)
		r.Post("/api/products", h.create)
		r.Put("/api/products/{id}", h.update)
		r.Delete("/api/products/{id}", h.delete)
	})
}

func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.Timeout)
	defer cancel()

	ps, err := h.Store.List(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *ProductsHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, catalog.ErrNotFound)
	if err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := withTimeout(r, h.Timeout)
	defer cancel()

	p, err := h.Store.Get(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) create(w http.ResponseWriter, r *http.Request) {
	var in catalog.ProductInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := withTimeout(r, h.Timeout)
	defer cancel()

	p, err := h.Store.Create(ctx, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProductsHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, catalog.ErrNotFound)
	if err != nil {
		writeError(w, err)
		return
	}
	var patch catalog.ProductPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := withTimeout(r, h.Timeout)
	defer cancel()

	p, err := h.Store.Update(ctx, id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// delete answers 204 whether or not the row existed.
func (h *ProductsHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, catalog.ErrNotFound)
	if err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := withTimeout(r, h.Timeout)
	defer cancel()

	if err := h.Store.Delete(ctx, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
