package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/ray-remotestate/pizzeria/checkout"
	"github.com/ray-remotestate/pizzeria/models"
)

const idempotencyHeader = "Idempotency-Key"

// CreateOrder submits an order with an explicit items payload.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req checkout.Request
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.Checkout.CreateOrder(r.Context(), req, r.Header.Get(idempotencyHeader))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// CheckoutCart submits the session cart. Items in the body are ignored.
func (h *Handler) CheckoutCart(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req checkout.Request
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.Checkout.CheckoutCart(r.Context(), h.Carts, session, req, r.Header.Get(idempotencyHeader))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	orders, err := h.Checkout.ListOrders(r.Context(), models.OrderStatus(r.URL.Query().Get("status")), limit)
	if err != nil {
		fail(w, r, err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

type orderResponse struct {
	*models.Order
	AvailableTransitions []models.OrderStatus `json:"availableTransitions"`
}

func newOrderResponse(o *models.Order) orderResponse {
	next := o.Status.AvailableTransitions()
	if next == nil {
		next = []models.OrderStatus{}
	}
	return orderResponse{Order: o, AvailableTransitions: next}
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}
	o, err := h.Checkout.GetOrder(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newOrderResponse(o))
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}
	var req struct {
		Status models.OrderStatus `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if !req.Status.IsValid() {
		writeError(w, http.StatusBadRequest, "unknown order status")
		return
	}

	o, err := h.Checkout.Transition(r.Context(), id, req.Status)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newOrderResponse(o))
}

func orderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return uuid.Nil, false
	}
	return id, true
}
