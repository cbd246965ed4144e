// Package httphandler is the JSON HTTP API of the storefront.
package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/niksmo/sneakers/internal/core/domain"
	"github.com/niksmo/sneakers/internal/core/port"
	"github.com/shopspring/decimal"
)

// GET v1/products?category=&min_price=&max_price= (200 OK, 400 Bad request)
// GET v1/products/featured (200 OK)
// GET v1/products/{id} (200 OK, 404 Not found)
// GET v1/categories (200 OK)

type CatalogHandler struct {
	catalog port.Catalog
}

func RegisterCatalog(mux *http.ServeMux, catalog port.Catalog) {
	h := CatalogHandler{catalog}
	mux.HandleFunc("GET /v1/products", h.GetProducts)
	mux.HandleFunc("GET /v1/products/featured", h.GetFeatured)
	mux.HandleFunc("GET /v1/products/{id}", h.GetProduct)
	mux.HandleFunc("GET /v1/categories", h.GetCategories)
}

func (h CatalogHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetProducts"
	log := slog.With("op", op)

	q := r.URL.Query()
	filter := domain.ProductFilter{Category: q.Get("category")}

	var err error
	if filter.MinPrice, err = parsePrice(q.Get("min_price")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid min_price")
		return
	}
	if filter.MaxPrice, err = parsePrice(q.Get("max_price")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid max_price")
		return
	}

	products := h.catalog.Products(filter)
	writeJSON(w, http.StatusOK, toProducts(products))
	log.Debug("products listed", "nProducts", len(products))
}

func (h CatalogHandler) GetFeatured(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toProducts(h.catalog.Featured(0)))
}

func (h CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Product(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	writeJSON(w, http.StatusOK, toProduct(p))
}

func (h CatalogHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Categories())
}

func parsePrice(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	if d.IsNegative() {
		return nil, errors.New("negative price")
	}
	return &d, nil
}

func parseSize(s string) (domain.Size, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return domain.Size(f), nil
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	const op = "httphandler.writeJSON"

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response body", "op", op, "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
