package httphandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/niksmo/sneakers/internal/core/domain"
	"github.com/niksmo/sneakers/internal/core/port"
)

// GET v1/checkout (200 OK)
// POST v1/checkout JSON form (201 Created, 400, 409, 422, 503)

type CheckoutHandler struct {
	cart   port.CartReader
	placer port.OrderPlacer
}

func RegisterCheckout(
	mux *http.ServeMux, cart port.CartReader, placer port.OrderPlacer,
) {
	h := CheckoutHandler{cart: cart, placer: placer}
	mux.HandleFunc("GET /v1/checkout", h.GetQuote)
	mux.HandleFunc("POST /v1/checkout", h.PlaceOrder)
}

func (h CheckoutHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	s := h.cart.Snapshot()
	writeJSON(w, http.StatusOK, Cart{
		Items:      toLineItems(s.Items),
		TotalItems: s.TotalItems,
		Totals:     toTotals(h.placer.Quote()),
	})
}

func (h CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	const op = "CheckoutHandler.PlaceOrder"
	log := slog.With("op", op)

	var req CheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON data")
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	order, err := h.placer.PlaceOrder(r.Context(), req.toDomain())
	if err != nil {
		h.writePlaceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toOrder(order))
}

func (h CheckoutHandler) writePlaceError(w http.ResponseWriter, err error) {
	const op = "CheckoutHandler.writePlaceError"

	var formErr *domain.FormError
	switch {
	case errors.As(err, &formErr):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:  "invalid checkout form",
			Fields: formErr.Fields,
		})
	case errors.Is(err, domain.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, "cart is empty")
	case errors.Is(err, domain.ErrCheckoutInFlight):
		writeError(w, http.StatusConflict, "checkout is already in progress")
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "checkout abandoned")
	default:
		writeError(w, http.StatusServiceUnavailable, "failed to place order")
		slog.Error("failed to place order", "op", op, "err", err)
	}
}
