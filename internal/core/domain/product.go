package domain

import (
	"slices"

	"github.com/shopspring/decimal"
)

// A Size is a numeric shoe size. Half sizes are allowed.
type Size float64

type (
	Product struct {
		ID          string
		Name        string
		Brand       string
		Description string
		Price       decimal.Decimal
		Colors      []ProductColor
		Sizes       []Size
		Category    string
		Featured    bool
		New         bool
	}

	ProductColor struct {
		Name      string
		Hex       string
		MeshColor string
	}
)

// Color returns the product color with the given name.
func (p Product) Color(name string) (ProductColor, bool) {
	for _, c := range p.Colors {
		if c.Name == name {
			return c, true
		}
	}
	return ProductColor{}, false
}

func (p Product) HasSize(s Size) bool {
	return slices.Contains(p.Sizes, s)
}

// A ProductFilter narrows the catalog listing.
//
// Empty Category or [AllCategories] matches any category,
// nil bounds are not applied.
type ProductFilter struct {
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

const AllCategories = "All"

func (f ProductFilter) Match(p Product) bool {
	if f.Category != "" && f.Category != AllCategories && p.Category != f.Category {
		return false
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	return true
}
