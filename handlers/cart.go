package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/ray-remotestate/pizzeria/cart"
	"github.com/ray-remotestate/pizzeria/configurator"
	"github.com/ray-remotestate/pizzeria/pricing"
)

type cartResponse struct {
	Items      []cart.Line `json:"items"`
	TotalPrice int64       `json:"totalPrice"`
	TotalItems int         `json:"totalItems"`
}

func newCartResponse(c *cart.Cart) cartResponse {
	return cartResponse{Items: c.Lines(), TotalPrice: c.TotalPrice(), TotalItems: c.TotalItems()}
}

func sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(mux.Vars(r)["session"])
	if id == "" || len(id) > 128 {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return "", false
	}
	return id, true
}

// mutateCart loads the session cart, applies the actions and saves it back.
func (h *Handler) mutateCart(w http.ResponseWriter, r *http.Request, session string, actions ...cart.Action) {
	c, err := h.Carts.Load(r.Context(), session)
	if err != nil {
		fail(w, r, err)
		return
	}
	c.Dispatch(actions...)
	if err := h.Carts.Save(r.Context(), session, c); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(c))
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionID(w, r)
	if !ok {
		return
	}
	c, err := h.Carts.Load(r.Context(), session)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(c))
}

type addItemRequest struct {
	ProductID int64                    `json:"productId"`
	Steps     []configurator.StepInput `json:"steps"`
}

// AddCartItem replays the client's configurator choices server side, prices
// the outcome and adds it to the session cart.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req addItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, opts, err := h.Catalog.Configurator(r.Context(), req.ProductID)
	if err != nil {
		fail(w, r, err)
		return
	}
	sel, err := configurator.Replay(p, opts, req.Steps)
	if err != nil {
		fail(w, r, err)
		return
	}
	quote := pricing.PriceSelection(p.BasePrice, sel)

	h.mutateCart(w, r, session, cart.AddItemAction{Item: cart.Item{
		ProductID:   p.ID,
		ProductName: p.Name,
		Variant:     sel.VariantName(),
		UnitPrice:   quote.UnitPrice,
		Extras:      quote.Extras,
		ImageURL:    p.ImageURL,
	}})
}

type updateQuantityRequest struct {
	ProductID int64  `json:"productId"`
	Variant   string `json:"variant"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req updateQuantityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.mutateCart(w, r, session, cart.UpdateQuantityAction{
		Key:      cart.Key{ProductID: req.ProductID, Variant: req.Variant},
		Quantity: req.Quantity,
	})
}

// RemoveCartItem takes the line key from the query: ?productId=1&variant=Ø26cm.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionID(w, r)
	if !ok {
		return
	}
	pid, err := strconv.ParseInt(r.URL.Query().Get("productId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid productId")
		return
	}
	h.mutateCart(w, r, session, cart.RemoveItemAction{
		Key: cart.Key{ProductID: pid, Variant: r.URL.Query().Get("variant")},
	})
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionID(w, r)
	if !ok {
		return
	}
	if err := h.Carts.Delete(r.Context(), session); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(cart.New()))
}
