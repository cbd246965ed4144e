package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/niksmo/sneakers/internal/core/domain"
	"github.com/niksmo/sneakers/internal/core/port"
)

var _ port.CartPersister = CartRepository{}

// DefaultCartKey is the slot key of the cart snapshot.
const DefaultCartKey = "cart-storage"

const cartSnapshotVersion = 0

type (
	cartEnvelope struct {
		State   cartState `json:"state"`
		Version int       `json:"version"`
	}

	cartState struct {
		Items []cartItem `json:"items"`
	}

	cartItem struct {
		ProductID string    `json:"product_id"`
		Color     cartColor `json:"color"`
		Size      float64   `json:"size"`
		Quantity  int       `json:"quantity"`
	}

	cartColor struct {
		Name      string `json:"name"`
		Hex       string `json:"hex"`
		MeshColor string `json:"mesh_color"`
	}
)

// CartRepository saves the cart items as a versioned JSON snapshot.
//
// Only product ids are stored, products are resolved again on load.
type CartRepository struct {
	slot     Slot
	products port.ProductFinder
	key      string
}

// NewCartRepository uses [DefaultCartKey] when key is empty.
func NewCartRepository(
	slot Slot, products port.ProductFinder, key string,
) CartRepository {
	if key == "" {
		key = DefaultCartKey
	}
	return CartRepository{slot: slot, products: products, key: key}
}

func (r CartRepository) SaveCart(
	ctx context.Context, items []domain.LineItem,
) error {
	const op = "CartRepository.SaveCart"

	data, err := json.Marshal(r.toEnvelope(items))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := r.slot.Write(ctx, r.key, data); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r CartRepository) LoadCart(ctx context.Context) ([]domain.LineItem, error) {
	const op = "CartRepository.LoadCart"
	log := slog.With("op", op)

	data, err := r.slot.Read(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var env cartEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%s: decode snapshot: %w", op, err)
	}
	if env.Version != cartSnapshotVersion {
		return nil, fmt.Errorf(
			"%s: %w: %d", op, ErrUnsupportedVersion, env.Version,
		)
	}

	items := make([]domain.LineItem, 0, len(env.State.Items))
	for _, it := range env.State.Items {
		if it.Quantity <= 0 {
			log.Warn(
				"skip item with non-positive quantity",
				"productID", it.ProductID, "quantity", it.Quantity,
			)
			continue
		}

		product, ok := r.products.ProductByID(it.ProductID)
		if !ok {
			log.Warn("skip unknown product", "productID", it.ProductID)
			continue
		}

		color, ok := product.Color(it.Color.Name)
		if !ok {
			color = domain.ProductColor(it.Color)
		}

		items = append(items, domain.LineItem{
			Product:       product,
			SelectedColor: color,
			SelectedSize:  domain.Size(it.Size),
			Quantity:      it.Quantity,
		})
	}
	return items, nil
}

func (r CartRepository) toEnvelope(items []domain.LineItem) cartEnvelope {
	env := cartEnvelope{
		State:   cartState{Items: make([]cartItem, len(items))},
		Version: cartSnapshotVersion,
	}
	for i, li := range items {
		env.State.Items[i] = cartItem{
			ProductID: li.Product.ID,
			Color:     cartColor(li.SelectedColor),
			Size:      float64(li.SelectedSize),
			Quantity:  li.Quantity,
		}
	}
	return env
}
