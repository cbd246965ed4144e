package service

import (
	"fmt"

	"github.com/niksmo/sneakers/internal/core/domain"
	"github.com/niksmo/sneakers/internal/core/port"
)

var _ port.Catalog = Catalog{}

const defaultFeaturedLimit = 4

// A Catalog answers read-only queries over the product list.
type Catalog struct {
	products port.ProductsReader
}

func NewCatalog(products port.ProductsReader) Catalog {
	return Catalog{products}
}

func (c Catalog) Products(f domain.ProductFilter) []domain.Product {
	var out []domain.Product
	for _, p := range c.products.Products() {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// Featured returns the first limit featured products.
// A non-positive limit means the storefront default.
func (c Catalog) Featured(limit int) []domain.Product {
	if limit <= 0 {
		limit = defaultFeaturedLimit
	}

	var out []domain.Product
	for _, p := range c.products.Products() {
		if len(out) == limit {
			break
		}
		if p.Featured {
			out = append(out, p)
		}
	}
	return out
}

// Categories returns [domain.AllCategories] followed by the distinct
// categories in catalog order.
func (c Catalog) Categories() []string {
	seen := make(map[string]struct{})
	out := []string{domain.AllCategories}
	for _, p := range c.products.Products() {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}

func (c Catalog) Product(id string) (domain.Product, error) {
	const op = "Catalog.Product"

	p, ok := c.ProductByID(id)
	if !ok {
		return domain.Product{}, fmt.Errorf("%s: %q: %w", op, id, domain.ErrProductNotFound)
	}
	return p, nil
}

func (c Catalog) ProductByID(id string) (domain.Product, bool) {
	for _, p := range c.products.Products() {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// ResolveSelection checks that the product offers the color and the size.
func (c Catalog) ResolveSelection(
	productID, colorName string, size domain.Size,
) (domain.Product, domain.ProductColor, error) {
	const op = "Catalog.ResolveSelection"

	p, err := c.Product(productID)
	if err != nil {
		return domain.Product{}, domain.ProductColor{}, opErr(err, op)
	}

	color, ok := p.Color(colorName)
	if !ok {
		return domain.Product{}, domain.ProductColor{}, fmt.Errorf(
			"%s: color %q: %w", op, colorName, domain.ErrInvalidSelection,
		)
	}

	if !p.HasSize(size) {
		return domain.Product{}, domain.ProductColor{}, fmt.Errorf(
			"%s: size %g: %w", op, float64(size), domain.ErrInvalidSelection,
		)
	}

	return p, color, nil
}
