package httphandler

import (
	"time"

	"github.com/niksmo/sneakers/internal/core/domain"
)

// Money values are decimal strings with two fraction digits.
type (
	Product struct {
		ID          string    `json:"id"`
		Name        string    `json:"name"`
		Brand       string    `json:"brand"`
		Description string    `json:"description"`
		Price       string    `json:"price"`
		Colors      []Color   `json:"colors"`
		Sizes       []float64 `json:"sizes"`
		Category    string    `json:"category"`
		Featured    bool      `json:"featured"`
		New         bool      `json:"new"`
	}

	Color struct {
		Name      string `json:"name"`
		Hex       string `json:"hex"`
		MeshColor string `json:"mesh_color"`
	}

	LineItem struct {
		Product  Product `json:"product"`
		Color    Color   `json:"color"`
		Size     float64 `json:"size"`
		Quantity int     `json:"quantity"`
		Subtotal string  `json:"subtotal"`
	}

	Totals struct {
		Subtotal              string `json:"subtotal"`
		Shipping              string `json:"shipping"`
		FreeShipping          bool   `json:"free_shipping"`
		FreeShippingRemaining string `json:"free_shipping_remaining"`
		Tax                   string `json:"tax"`
		TaxIncluded           bool   `json:"tax_included"`
		Total                 string `json:"total"`
	}

	Cart struct {
		Items      []LineItem `json:"items"`
		TotalItems int        `json:"total_items"`
		Totals     Totals     `json:"totals"`
	}

	Order struct {
		ID            string     `json:"id"`
		Items         []LineItem `json:"items"`
		Totals        Totals     `json:"totals"`
		PaymentMethod string     `json:"payment_method"`
		PlacedAt      time.Time  `json:"placed_at"`
	}

	ErrorResponse struct {
		Error  string   `json:"error"`
		Fields []string `json:"fields,omitempty"`
	}
)

type (
	// Size is a pointer so that a missing size is told from size 0.
	AddItemRequest struct {
		ProductID string   `json:"product_id"`
		Color     string   `json:"color"`
		Size      *float64 `json:"size"`
	}

	UpdateItemRequest struct {
		ProductID string  `json:"product_id"`
		Color     string  `json:"color"`
		Size      float64 `json:"size"`
		Quantity  *int    `json:"quantity"`
	}

	CheckoutRequest struct {
		FirstName     string `json:"first_name"`
		LastName      string `json:"last_name"`
		Email         string `json:"email"`
		Phone         string `json:"phone"`
		Address       string `json:"address"`
		City          string `json:"city"`
		ZipCode       string `json:"zip_code"`
		Country       string `json:"country"`
		PaymentMethod string `json:"payment_method"`
	}
)

func toProduct(p domain.Product) Product {
	colors := make([]Color, len(p.Colors))
	for i, c := range p.Colors {
		colors[i] = toColor(c)
	}
	sizes := make([]float64, len(p.Sizes))
	for i, s := range p.Sizes {
		sizes[i] = float64(s)
	}
	return Product{
		ID:          p.ID,
		Name:        p.Name,
		Brand:       p.Brand,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		Colors:      colors,
		Sizes:       sizes,
		Category:    p.Category,
		Featured:    p.Featured,
		New:         p.New,
	}
}

func toProducts(ps []domain.Product) []Product {
	out := make([]Product, len(ps))
	for i, p := range ps {
		out[i] = toProduct(p)
	}
	return out
}

func toColor(c domain.ProductColor) Color {
	return Color{Name: c.Name, Hex: c.Hex, MeshColor: c.MeshColor}
}

func toLineItems(items []domain.LineItem) []LineItem {
	out := make([]LineItem, len(items))
	for i, li := range items {
		out[i] = LineItem{
			Product:  toProduct(li.Product),
			Color:    toColor(li.SelectedColor),
			Size:     float64(li.SelectedSize),
			Quantity: li.Quantity,
			Subtotal: li.Subtotal().StringFixed(2),
		}
	}
	return out
}

func toTotals(t domain.Totals) Totals {
	return Totals{
		Subtotal:              t.Subtotal.StringFixed(2),
		Shipping:              t.Shipping.StringFixed(2),
		FreeShipping:          t.FreeShipping(),
		FreeShippingRemaining: t.FreeShippingRemaining.StringFixed(2),
		Tax:                   t.Tax.StringFixed(2),
		TaxIncluded:           t.TaxIncluded,
		Total:                 t.Total.StringFixed(2),
	}
}

func toOrder(o domain.Order) Order {
	return Order{
		ID:            o.ID,
		Items:         toLineItems(o.Items),
		Totals:        toTotals(o.Totals),
		PaymentMethod: string(o.PaymentMethod),
		PlacedAt:      o.PlacedAt,
	}
}

func (r CheckoutRequest) toDomain() domain.CheckoutForm {
	return domain.CheckoutForm{
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		Email:         r.Email,
		Phone:         r.Phone,
		Address:       r.Address,
		City:          r.City,
		ZipCode:       r.ZipCode,
		Country:       r.Country,
		PaymentMethod: domain.PaymentMethod(r.PaymentMethod),
	}
}
