package httphandler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/niksmo/sneakers/internal/core/domain"
	"github.com/niksmo/sneakers/internal/core/port"
)

// GET v1/cart (200 OK)
// POST v1/cart/items JSON {"product_id", "color", "size"} (200 OK, 400, 404, 422)
// PATCH v1/cart/items JSON {"product_id", "color", "size", "quantity"} (200 OK, 400)
// DELETE v1/cart/items?product_id=&color=&size= (200 OK, 400)
// DELETE v1/cart (200 OK)

const msgSelectSize = "Please select a size"

type CartHandler struct {
	cart    port.Cart
	catalog port.Catalog
	pricer  port.Pricer
}

func RegisterCart(
	mux *http.ServeMux,
	cart port.Cart,
	catalog port.Catalog,
	pricer port.Pricer,
) {
	h := CartHandler{cart: cart, catalog: catalog, pricer: pricer}
	mux.HandleFunc("GET /v1/cart", h.GetCart)
	mux.HandleFunc("DELETE /v1/cart", h.ClearCart)
	mux.HandleFunc("POST /v1/cart/items", h.AddItem)
	mux.HandleFunc("PATCH /v1/cart/items", h.UpdateItem)
	mux.HandleFunc("DELETE /v1/cart/items", h.RemoveItem)
}

func (h CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.writeCart(w, h.cart.Snapshot())
}

func (h CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.AddItem"
	log := slog.With("op", op)

	var req AddItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON data")
		log.Warn("failed to parse JSON", "err", err)
		return
	}
	if req.Size == nil {
		writeError(w, http.StatusBadRequest, msgSelectSize)
		return
	}

	product, color, err := h.catalog.ResolveSelection(
		req.ProductID, req.Color, domain.Size(*req.Size),
	)
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		writeError(w, http.StatusNotFound, "product not found")
		return
	case errors.Is(err, domain.ErrInvalidSelection):
		writeError(w, http.StatusUnprocessableEntity, "invalid color or size")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal error")
		log.Error("failed to resolve selection", "err", err)
		return
	}

	s := h.cart.AddItem(r.Context(), product, color, domain.Size(*req.Size))
	log.Info("item added", "productID", product.ID)
	h.writeCart(w, s)
}

func (h CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.UpdateItem"

	var req UpdateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON data")
		slog.Warn("failed to parse JSON", "op", op, "err", err)
		return
	}
	if req.Quantity == nil {
		writeError(w, http.StatusBadRequest, "quantity is required")
		return
	}

	key := domain.ItemKey{
		ProductID: req.ProductID,
		ColorName: req.Color,
		Size:      domain.Size(req.Size),
	}
	h.writeCart(w, h.cart.UpdateQuantity(r.Context(), key, *req.Quantity))
}

func (h CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	size, err := parseSize(q.Get("size"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid size")
		return
	}

	key := domain.ItemKey{
		ProductID: q.Get("product_id"),
		ColorName: q.Get("color"),
		Size:      size,
	}
	h.writeCart(w, h.cart.RemoveItem(r.Context(), key))
}

func (h CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.writeCart(w, h.cart.ClearCart(r.Context()))
}

func (h CartHandler) writeCart(w http.ResponseWriter, s domain.CartSnapshot) {
	writeJSON(w, http.StatusOK, Cart{
		Items:      toLineItems(s.Items),
		TotalItems: s.TotalItems,
		Totals:     toTotals(h.pricer.CartSummary(s.TotalPrice)),
	})
}
