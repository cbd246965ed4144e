// Package catalog provides the product collection read by the catalog
// service: a built-in footwear line and a YAML file loader.
package catalog

import (
	"errors"
	"fmt"
	"slices"

	"github.com/niksmo/sneakers/internal/core/domain"
	"github.com/niksmo/sneakers/internal/core/port"
	"github.com/shopspring/decimal"
)

var _ port.ProductsReader = (*Static)(nil)

var (
	ErrDuplicateProduct = errors.New("duplicate product id")
	ErrInvalidProduct   = errors.New("invalid product")
)

// Static is an immutable product collection.
type Static struct {
	products []domain.Product
}

// New validates products and returns them as a collection.
func New(products []domain.Product) (*Static, error) {
	const op = "catalog.New"

	seen := make(map[string]struct{}, len(products))
	for _, p := range products {
		if _, ok := seen[p.ID]; ok {
			return nil, fmt.Errorf("%s: %w: %q", op, ErrDuplicateProduct, p.ID)
		}
		seen[p.ID] = struct{}{}

		if err := validate(p); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	return &Static{products: slices.Clone(products)}, nil
}

func (s *Static) Products() []domain.Product {
	return slices.Clone(s.products)
}

func validate(p domain.Product) error {
	switch {
	case p.ID == "":
		return fmt.Errorf("%w: empty id", ErrInvalidProduct)
	case p.Name == "":
		return fmt.Errorf("%w %q: empty name", ErrInvalidProduct, p.ID)
	case !p.Price.IsPositive():
		return fmt.Errorf("%w %q: price must be positive", ErrInvalidProduct, p.ID)
	case len(p.Colors) == 0:
		return fmt.Errorf("%w %q: no colors", ErrInvalidProduct, p.ID)
	case len(p.Sizes) == 0:
		return fmt.Errorf("%w %q: no sizes", ErrInvalidProduct, p.ID)
	}
	return nil
}

var (
	colorBlack = domain.ProductColor{Name: "Black", Hex: "#1a1a1a", MeshColor: "#222222"}
	colorWhite = domain.ProductColor{Name: "White", Hex: "#f5f5f5", MeshColor: "#ffffff"}
	colorRed   = domain.ProductColor{Name: "Red", Hex: "#d62828", MeshColor: "#e63946"}
	colorBlue  = domain.ProductColor{Name: "Blue", Hex: "#1d3557", MeshColor: "#457b9d"}
	colorGrey  = domain.ProductColor{Name: "Grey", Hex: "#8d99ae", MeshColor: "#adb5bd"}
	colorGreen = domain.ProductColor{Name: "Green", Hex: "#2a9d8f", MeshColor: "#52b788"}
	colorSand  = domain.ProductColor{Name: "Sand", Hex: "#e9c46a", MeshColor: "#f4d58d"}

	fullSizes = []domain.Size{7, 7.5, 8, 8.5, 9, 9.5, 10, 10.5, 11, 12}
	mensSizes = []domain.Size{8, 9, 10, 11, 12, 13}
)

// Default returns the built-in footwear line.
func Default() *Static {
	price := decimal.RequireFromString
	return &Static{products: []domain.Product{
		{
			ID:          "velocity-runner",
			Name:        "Velocity Runner",
			Brand:       "Stride",
			Description: "Lightweight daily trainer with a responsive foam midsole.",
			Price:       price("129.99"),
			Colors:      []domain.ProductColor{colorBlack, colorRed, colorWhite},
			Sizes:       fullSizes,
			Category:    "Running",
			Featured:    true,
			New:         true,
		},
		{
			ID:          "cloud-walker",
			Name:        "Cloud Walker",
			Brand:       "Aero",
			Description: "Cushioned knit sneaker for all-day comfort.",
			Price:       price("89.99"),
			Colors:      []domain.ProductColor{colorWhite, colorGrey},
			Sizes:       fullSizes,
			Category:    "Lifestyle",
			Featured:    true,
		},
		{
			ID:          "court-king",
			Name:        "Court King",
			Brand:       "Apex",
			Description: "High-top basketball shoe with ankle support and a grippy outsole.",
			Price:       price("159.99"),
			Colors:      []domain.ProductColor{colorBlack, colorBlue},
			Sizes:       mensSizes,
			Category:    "Basketball",
			Featured:    true,
		},
		{
			ID:          "trail-blazer",
			Name:        "Trail Blazer",
			Brand:       "Summit",
			Description: "Rugged trail shoe with a rock plate and lugged outsole.",
			Price:       price("139.99"),
			Colors:      []domain.ProductColor{colorGreen, colorSand},
			Sizes:       fullSizes,
			Category:    "Trail",
			New:         true,
		},
		{
			ID:          "retro-classic",
			Name:        "Retro Classic",
			Brand:       "Heritage",
			Description: "Suede low-top inspired by the terrace styles of the eighties.",
			Price:       price("74.99"),
			Colors:      []domain.ProductColor{colorSand, colorBlue, colorWhite},
			Sizes:       fullSizes,
			Category:    "Lifestyle",
			Featured:    true,
		},
		{
			ID:          "sprint-elite",
			Name:        "Sprint Elite",
			Brand:       "Stride",
			Description: "Carbon-plated racing flat built for race day.",
			Price:       price("249.99"),
			Colors:      []domain.ProductColor{colorRed, colorWhite},
			Sizes:       fullSizes,
			Category:    "Running",
			Featured:    true,
			New:         true,
		},
		{
			ID:          "street-slip",
			Name:        "Street Slip",
			Brand:       "Aero",
			Description: "Canvas slip-on for easy summer days.",
			Price:       price("49.99"),
			Colors:      []domain.ProductColor{colorBlack, colorGrey},
			Sizes:       fullSizes,
			Category:    "Lifestyle",
		},
		{
			ID:          "hoop-lite",
			Name:        "Hoop Lite",
			Brand:       "Apex",
			Description: "Low-cut court shoe for quick guards.",
			Price:       price("119.99"),
			Colors:      []domain.ProductColor{colorWhite, colorRed},
			Sizes:       mensSizes,
			Category:    "Basketball",
		},
	}}
}
