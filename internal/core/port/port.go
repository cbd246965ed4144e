package port

import (
	"context"

	"github.com/niksmo/sneakers/internal/core/domain"
	"github.com/shopspring/decimal"
)

type ProductsReader interface {
	Products() []domain.Product
}

type ProductFinder interface {
	ProductByID(id string) (domain.Product, bool)
}

// A CartPersister is the durable side of the cart store.
//
// LoadCart errors mean "no prior cart" for the caller.
type CartPersister interface {
	SaveCart(context.Context, []domain.LineItem) error
	LoadCart(context.Context) ([]domain.LineItem, error)
}

type CartReader interface {
	Items() []domain.LineItem
	TotalItems() int
	TotalPrice() decimal.Decimal
	Snapshot() domain.CartSnapshot
}

// CartEditor mutators return the snapshot produced by the mutation.
type CartEditor interface {
	AddItem(context.Context, domain.Product, domain.ProductColor, domain.Size) domain.CartSnapshot
	RemoveItem(context.Context, domain.ItemKey) domain.CartSnapshot
	UpdateQuantity(context.Context, domain.ItemKey, int) domain.CartSnapshot
	ClearCart(context.Context) domain.CartSnapshot
}

type Cart interface {
	CartReader
	CartEditor
}

type CartSubscriber interface {
	Subscribe(func(domain.CartSnapshot)) (cancel func())
}

type Catalog interface {
	Products(domain.ProductFilter) []domain.Product
	Featured(limit int) []domain.Product
	Categories() []string
	Product(id string) (domain.Product, error)
	ResolveSelection(
		productID, colorName string, size domain.Size,
	) (domain.Product, domain.ProductColor, error)
}

type Pricer interface {
	CartSummary(subtotal decimal.Decimal) domain.Totals
	CheckoutTotals(subtotal decimal.Decimal) domain.Totals
}

type OrderPlacer interface {
	Quote() domain.Totals
	PlaceOrder(context.Context, domain.CheckoutForm) (domain.Order, error)
}

type OrderPublisher interface {
	PublishOrder(context.Context, domain.Order) error
}

// A CheckoutObserver receives the outcome of every checkout attempt.
type CheckoutObserver interface {
	ObserveCheckout(result string)
}
