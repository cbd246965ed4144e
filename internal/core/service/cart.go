package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/niksmo/sneakers/internal/core/domain"
	"github.com/niksmo/sneakers/internal/core/port"
	"github.com/shopspring/decimal"
)

var (
	_ port.Cart           = (*CartStore)(nil)
	_ port.CartSubscriber = (*CartStore)(nil)
)

// PersistTimeout bounds a single save of the cart snapshot.
const PersistTimeout = 5 * time.Second

type CartStoreOpt func(*cartStoreOpts) error

type cartStoreOpts struct {
	persister port.CartPersister
}

func WithCartPersister(p port.CartPersister) CartStoreOpt {
	return func(o *cartStoreOpts) error {
		if p == nil {
			return errors.New("cart persister is nil")
		}
		o.persister = p
		return nil
	}
}

// A CartStore is the single source of truth for the cart contents.
//
// Items are kept in insertion order and are unique by [domain.ItemKey].
// Every mutation is persisted and then published to subscribers.
type CartStore struct {
	mu        sync.RWMutex
	items     []domain.LineItem
	revision  uint64
	persister port.CartPersister

	subsMu  sync.Mutex
	subs    map[uint64]func(domain.CartSnapshot)
	nextSub uint64
}

// NewCartStore creates the store and rehydrates it from the persister.
//
// A failed load is logged and the store starts empty.
func NewCartStore(ctx context.Context, opts ...CartStoreOpt) (*CartStore, error) {
	const op = "NewCartStore"
	log := slog.With("op", op)

	var options cartStoreOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return nil, opErr(err, op)
		}
	}

	s := &CartStore{
		persister: options.persister,
		subs:      make(map[uint64]func(domain.CartSnapshot)),
	}

	if s.persister == nil {
		return s, nil
	}

	items, err := s.persister.LoadCart(ctx)
	if err != nil {
		log.Warn("starting with empty cart", "err", err)
		return s, nil
	}
	s.items = s.normalize(items)
	log.Info("cart restored", "nItems", len(s.items))
	return s, nil
}

// normalize drops non-positive quantities and merges duplicated keys.
func (s *CartStore) normalize(items []domain.LineItem) []domain.LineItem {
	out := make([]domain.LineItem, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		if i := indexOf(out, item.Key()); i != -1 {
			out[i].Quantity += item.Quantity
			continue
		}
		out = append(out, item)
	}
	return out
}

func (s *CartStore) AddItem(
	ctx context.Context,
	product domain.Product,
	color domain.ProductColor,
	size domain.Size,
) domain.CartSnapshot {
	return s.mutate(ctx, domain.CartOpAdd, func(items []domain.LineItem) []domain.LineItem {
		key := domain.ItemKey{
			ProductID: product.ID, ColorName: color.Name, Size: size,
		}
		if i := indexOf(items, key); i != -1 {
			items[i].Quantity++
			return items
		}
		return append(items, domain.LineItem{
			Product:       product,
			SelectedColor: color,
			SelectedSize:  size,
			Quantity:      1,
		})
	})
}

func (s *CartStore) RemoveItem(
	ctx context.Context, key domain.ItemKey,
) domain.CartSnapshot {
	return s.mutate(ctx, domain.CartOpRemove, func(items []domain.LineItem) []domain.LineItem {
		return remove(items, key)
	})
}

// UpdateQuantity sets the quantity exactly.
// A quantity less than one removes the item.
func (s *CartStore) UpdateQuantity(
	ctx context.Context, key domain.ItemKey, quantity int,
) domain.CartSnapshot {
	if quantity <= 0 {
		return s.mutate(ctx, domain.CartOpRemove, func(items []domain.LineItem) []domain.LineItem {
			return remove(items, key)
		})
	}

	return s.mutate(ctx, domain.CartOpUpdate, func(items []domain.LineItem) []domain.LineItem {
		if i := indexOf(items, key); i != -1 {
			items[i].Quantity = quantity
		}
		return items
	})
}

func (s *CartStore) ClearCart(ctx context.Context) domain.CartSnapshot {
	return s.mutate(ctx, domain.CartOpClear, func([]domain.LineItem) []domain.LineItem {
		return nil
	})
}

func (s *CartStore) TotalItems() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return totalItems(s.items)
}

func (s *CartStore) TotalPrice() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return totalPrice(s.items)
}

// Items returns a copy of the line items in insertion order.
func (s *CartStore) Items() []domain.LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

func (s *CartStore) Snapshot() domain.CartSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot("")
}

// Subscribe registers fn to be called after every mutation.
//
// fn runs outside the store lock and may read the store.
func (s *CartStore) Subscribe(fn func(domain.CartSnapshot)) (cancel func()) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *CartStore) mutate(
	ctx context.Context,
	cartOp domain.CartOp,
	fn func([]domain.LineItem) []domain.LineItem,
) domain.CartSnapshot {
	s.mu.Lock()
	s.items = fn(s.items)
	s.revision++
	snapshot := s.snapshot(cartOp)
	s.persist(ctx, snapshot)
	s.mu.Unlock()

	s.notify(snapshot)
	return snapshot
}

// persist is called with the write lock held so that the slot
// receives snapshots in mutation order.
//
// The save outlives a cancelled ctx: the in-memory change is already
// applied and the slot must not fall behind it.
func (s *CartStore) persist(ctx context.Context, snapshot domain.CartSnapshot) {
	const op = "CartStore.persist"

	if s.persister == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), PersistTimeout)
	defer cancel()

	err := s.persister.SaveCart(ctx, snapshot.Items)
	if err != nil {
		slog.Error(
			"failed to persist cart",
			"op", op,
			"revision", snapshot.Revision,
			"err", err,
		)
	}
}

func (s *CartStore) notify(snapshot domain.CartSnapshot) {
	s.subsMu.Lock()
	fns := make([]func(domain.CartSnapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subsMu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}

func (s *CartStore) snapshot(cartOp domain.CartOp) domain.CartSnapshot {
	return domain.CartSnapshot{
		Revision:   s.revision,
		Op:         cartOp,
		Items:      slices.Clone(s.items),
		TotalItems: totalItems(s.items),
		TotalPrice: totalPrice(s.items),
	}
}

func indexOf(items []domain.LineItem, key domain.ItemKey) int {
	return slices.IndexFunc(items, func(item domain.LineItem) bool {
		return item.Key() == key
	})
}

func remove(items []domain.LineItem, key domain.ItemKey) []domain.LineItem {
	return slices.DeleteFunc(items, func(item domain.LineItem) bool {
		return item.Key() == key
	})
}

func totalItems(items []domain.LineItem) (n int) {
	for _, item := range items {
		n += item.Quantity
	}
	return n
}

func totalPrice(items []domain.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}
