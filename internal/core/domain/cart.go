package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// An ItemKey identifies a line item inside the cart.
//
// Two line items never share the same key.
type ItemKey struct {
	ProductID string
	ColorName string
	Size      Size
}

func (k ItemKey) String() string {
	return fmt.Sprintf("%s/%s/%g", k.ProductID, k.ColorName, float64(k.Size))
}

type LineItem struct {
	Product       Product
	SelectedColor ProductColor
	SelectedSize  Size
	Quantity      int
}

func (li LineItem) Key() ItemKey {
	return ItemKey{
		ProductID: li.Product.ID,
		ColorName: li.SelectedColor.Name,
		Size:      li.SelectedSize,
	}
}

// Subtotal returns price multiplied by quantity.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.Product.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// A CartOp names the mutation that produced a [CartSnapshot].
type CartOp string

const (
	CartOpAdd    CartOp = "add"
	CartOpRemove CartOp = "remove"
	CartOpUpdate CartOp = "update"
	CartOpClear  CartOp = "clear"
)

// A CartSnapshot is an immutable view of the cart after a mutation.
//
// Revision grows with every mutation, subscribers may use it
// to drop snapshots delivered out of order.
type CartSnapshot struct {
	Revision   uint64
	Op         CartOp
	Items      []LineItem
	TotalItems int
	TotalPrice decimal.Decimal
}

func (s CartSnapshot) Empty() bool {
	return len(s.Items) == 0
}
