package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ray-remotestate/pizzeria/configurator"
	"github.com/ray-remotestate/pizzeria/models"
)

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Catalog.ListCategories(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	var categoryID *int64
	if raw := r.URL.Query().Get("categoryId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid categoryId")
			return
		}
		categoryID = &id
	}

	products, err := h.Catalog.ListProducts(r.Context(), categoryID)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	p, err := h.Catalog.Product(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type configuratorResponse struct {
	Product models.Product      `json:"product"`
	Steps   []configurator.Step `json:"steps"`
	Slots   []string            `json:"slots,omitempty"`
}

// GetConfigurator returns the step plan a client walks before posting the
// resulting choices to the cart.
func (h *Handler) GetConfigurator(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	p, opts, err := h.Catalog.Configurator(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	steps, slots, err := configurator.Plan(p, opts)
	if err != nil {
		fail(w, r, err)
		return
	}
	if steps == nil {
		steps = []configurator.Step{}
	}
	writeJSON(w, http.StatusOK, configuratorResponse{Product: p, Steps: steps, Slots: slots})
}

func productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return 0, false
	}
	return id, true
}
