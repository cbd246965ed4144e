package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/niksmo/sneakers/internal/core/domain"
	"github.com/niksmo/sneakers/internal/core/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCartPersister struct {
	mock.Mock
}

func (m *MockCartPersister) SaveCart(
	ctx context.Context, items []domain.LineItem,
) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func (m *MockCartPersister) LoadCart(
	ctx context.Context,
) ([]domain.LineItem, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]domain.LineItem)
	return items, args.Error(1)
}

var (
	red  = domain.ProductColor{Name: "Red", Hex: "#ff0000", MeshColor: "#e01010"}
	blue = domain.ProductColor{Name: "Blue", Hex: "#0000ff", MeshColor: "#1010e0"}

	productA = domain.Product{
		ID:     "product-a",
		Name:   "Product A",
		Price:  decimal.RequireFromString("120.00"),
		Colors: []domain.ProductColor{red, blue},
		Sizes:  []domain.Size{8, 9, 9.5, 10},
	}

	productB = domain.Product{
		ID:     "product-b",
		Name:   "Product B",
		Price:  decimal.RequireFromString("50.00"),
		Colors: []domain.ProductColor{blue},
		Sizes:  []domain.Size{9, 10},
	}
)

func keyOf(p domain.Product, c domain.ProductColor, s domain.Size) domain.ItemKey {
	return domain.ItemKey{ProductID: p.ID, ColorName: c.Name, Size: s}
}

func newStore(t *testing.T) *service.CartStore {
	t.Helper()
	s, err := service.NewCartStore(t.Context())
	require.NoError(t, err)
	return s
}

func TestCartStoreAddItem(t *testing.T) {
	t.Run("SameKeyIncrements", func(t *testing.T) {
		s := newStore(t)
		for range 5 {
			s.AddItem(t.Context(), productA, red, 9)
		}

		items := s.Items()
		require.Len(t, items, 1)
		assert.Equal(t, 5, items[0].Quantity)
		assert.Equal(t, 5, s.TotalItems())
	})

	t.Run("CopiesCollapse", func(t *testing.T) {
		s := newStore(t)
		copyA := productA
		copyA.Colors = append([]domain.ProductColor(nil), productA.Colors...)

		s.AddItem(t.Context(), productA, red, 9)
		s.AddItem(t.Context(), copyA, red, 9)

		require.Len(t, s.Items(), 1)
		assert.Equal(t, 2, s.Items()[0].Quantity)
	})

	t.Run("InsertionOrder", func(t *testing.T) {
		s := newStore(t)
		s.AddItem(t.Context(), productB, blue, 10)
		s.AddItem(t.Context(), productA, red, 9)
		s.AddItem(t.Context(), productB, blue, 10)

		items := s.Items()
		require.Len(t, items, 2)
		assert.Equal(t, keyOf(productB, blue, 10), items[0].Key())
		assert.Equal(t, keyOf(productA, red, 9), items[1].Key())
	})
}

func TestCartStoreScenario(t *testing.T) {
	s := newStore(t)
	ctx := t.Context()

	s.AddItem(ctx, productA, red, 9)
	require.Len(t, s.Items(), 1)
	assert.Equal(t, 1, s.Items()[0].Quantity)
	assert.Equal(t, 1, s.TotalItems())

	s.AddItem(ctx, productA, red, 9)
	require.Len(t, s.Items(), 1)
	assert.Equal(t, 2, s.Items()[0].Quantity)
	assert.Equal(t, 2, s.TotalItems())

	s.AddItem(ctx, productA, red, 10)
	assert.Len(t, s.Items(), 2)
	assert.Equal(t, 3, s.TotalItems())

	s.RemoveItem(ctx, keyOf(productA, red, 9))
	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, domain.Size(10), items[0].SelectedSize)
	assert.Equal(t, 1, s.TotalItems())
}

func TestCartStoreRemoveItem(t *testing.T) {
	t.Run("AbsentKey", func(t *testing.T) {
		s := newStore(t)
		s.AddItem(t.Context(), productA, red, 9)
		s.AddItem(t.Context(), productB, blue, 10)
		before := s.Items()

		s.RemoveItem(t.Context(), keyOf(productA, blue, 9))
		s.RemoveItem(t.Context(), domain.ItemKey{ProductID: "missing"})

		assert.Equal(t, before, s.Items())
	})

	t.Run("EmptyCart", func(t *testing.T) {
		s := newStore(t)
		s.RemoveItem(t.Context(), keyOf(productA, red, 9))
		assert.Empty(t, s.Items())
	})
}

func TestCartStoreUpdateQuantity(t *testing.T) {
	for _, q := range []int{0, -1} {
		t.Run("NonPositiveRemoves", func(t *testing.T) {
			s := newStore(t)
			s.AddItem(t.Context(), productA, red, 9)
			s.AddItem(t.Context(), productB, blue, 10)

			s.UpdateQuantity(t.Context(), keyOf(productA, red, 9), q)

			items := s.Items()
			require.Len(t, items, 1)
			assert.Equal(t, productB.ID, items[0].Product.ID)
		})
	}

	t.Run("SetsExactly", func(t *testing.T) {
		s := newStore(t)
		s.AddItem(t.Context(), productA, red, 9)
		s.AddItem(t.Context(), productA, red, 9)

		s.UpdateQuantity(t.Context(), keyOf(productA, red, 9), 7)
		assert.Equal(t, 7, s.Items()[0].Quantity)

		s.UpdateQuantity(t.Context(), keyOf(productA, red, 9), 3)
		assert.Equal(t, 3, s.Items()[0].Quantity)
	})

	t.Run("AbsentKey", func(t *testing.T) {
		s := newStore(t)
		s.AddItem(t.Context(), productA, red, 9)

		s.UpdateQuantity(t.Context(), keyOf(productB, blue, 9), 4)

		items := s.Items()
		require.Len(t, items, 1)
		assert.Equal(t, 1, items[0].Quantity)
	})
}

func TestCartStoreTotals(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		s := newStore(t)
		assert.Equal(t, 0, s.TotalItems())
		assert.True(t, s.TotalPrice().IsZero())
	})

	t.Run("MixedSequence", func(t *testing.T) {
		s := newStore(t)
		ctx := t.Context()
		s.AddItem(ctx, productA, red, 9)
		s.AddItem(ctx, productB, blue, 10)
		s.AddItem(ctx, productB, blue, 10)
		s.UpdateQuantity(ctx, keyOf(productA, red, 9), 3)
		s.AddItem(ctx, productA, blue, 8)
		s.RemoveItem(ctx, keyOf(productA, blue, 8))

		// 3 * 120 + 2 * 50
		assert.Equal(t, 5, s.TotalItems())
		assert.Equal(t, "460.00", s.TotalPrice().StringFixed(2))
	})

	t.Run("NoRounding", func(t *testing.T) {
		s := newStore(t)
		cheap := productB
		cheap.ID = "cheap"
		cheap.Price = decimal.RequireFromString("0.333")
		s.AddItem(t.Context(), cheap, blue, 9)
		s.AddItem(t.Context(), cheap, blue, 9)
		s.AddItem(t.Context(), cheap, blue, 9)

		assert.Equal(t, "0.999", s.TotalPrice().String())
	})
}

func TestCartStoreClearCart(t *testing.T) {
	s := newStore(t)
	s.AddItem(t.Context(), productA, red, 9)
	s.AddItem(t.Context(), productB, blue, 10)

	s.ClearCart(t.Context())

	assert.Empty(t, s.Items())
	assert.Equal(t, 0, s.TotalItems())
	assert.True(t, s.TotalPrice().IsZero())

	s.ClearCart(t.Context())
	assert.Empty(t, s.Items())
}

func TestCartStoreItemsIsCopy(t *testing.T) {
	s := newStore(t)
	s.AddItem(t.Context(), productA, red, 9)

	items := s.Items()
	items[0].Quantity = 100

	assert.Equal(t, 1, s.Items()[0].Quantity)
}

func TestCartStorePersistence(t *testing.T) {
	t.Run("SavesAfterEveryMutation", func(t *testing.T) {
		p := new(MockCartPersister)
		p.On("LoadCart", mock.Anything).Return(nil, nil).Once()
		p.On("SaveCart", mock.Anything, mock.Anything).Return(nil)

		s, err := service.NewCartStore(
			t.Context(), service.WithCartPersister(p),
		)
		require.NoError(t, err)

		ctx := t.Context()
		s.AddItem(ctx, productA, red, 9)
		s.UpdateQuantity(ctx, keyOf(productA, red, 9), 2)
		s.RemoveItem(ctx, keyOf(productB, blue, 9))
		s.ClearCart(ctx)

		p.AssertNumberOfCalls(t, "SaveCart", 4)

		saved := p.Calls[1].Arguments.Get(1).([]domain.LineItem)
		require.Len(t, saved, 1)
		assert.Equal(t, 1, saved[0].Quantity)

		saved = p.Calls[2].Arguments.Get(1).([]domain.LineItem)
		require.Len(t, saved, 1)
		assert.Equal(t, 2, saved[0].Quantity)

		saved = p.Calls[4].Arguments.Get(1).([]domain.LineItem)
		assert.Empty(t, saved)
	})

	t.Run("SaveErrorIsSwallowed", func(t *testing.T) {
		p := new(MockCartPersister)
		p.On("LoadCart", mock.Anything).Return(nil, nil).Once()
		p.On("SaveCart", mock.Anything, mock.Anything).
			Return(errors.New("disk is full"))

		s, err := service.NewCartStore(
			t.Context(), service.WithCartPersister(p),
		)
		require.NoError(t, err)

		s.AddItem(t.Context(), productA, red, 9)
		assert.Equal(t, 1, s.TotalItems())
	})

	t.Run("Rehydrates", func(t *testing.T) {
		stored := []domain.LineItem{
			{Product: productA, SelectedColor: red, SelectedSize: 9, Quantity: 2},
			{Product: productB, SelectedColor: blue, SelectedSize: 10, Quantity: 1},
		}
		p := new(MockCartPersister)
		p.On("LoadCart", mock.Anything).Return(stored, nil).Once()

		s, err := service.NewCartStore(
			t.Context(), service.WithCartPersister(p),
		)
		require.NoError(t, err)

		assert.Equal(t, stored, s.Items())
		assert.Equal(t, 3, s.TotalItems())
		assert.Equal(t, "290.00", s.TotalPrice().StringFixed(2))
	})

	t.Run("RehydrateMergesAndDrops", func(t *testing.T) {
		stored := []domain.LineItem{
			{Product: productA, SelectedColor: red, SelectedSize: 9, Quantity: 2},
			{Product: productB, SelectedColor: blue, SelectedSize: 10, Quantity: 0},
			{Product: productA, SelectedColor: red, SelectedSize: 9, Quantity: 1},
		}
		p := new(MockCartPersister)
		p.On("LoadCart", mock.Anything).Return(stored, nil).Once()

		s, err := service.NewCartStore(
			t.Context(), service.WithCartPersister(p),
		)
		require.NoError(t, err)

		items := s.Items()
		require.Len(t, items, 1)
		assert.Equal(t, 3, items[0].Quantity)
	})

	t.Run("LoadErrorStartsEmpty", func(t *testing.T) {
		p := new(MockCartPersister)
		p.On("LoadCart", mock.Anything).
			Return(nil, errors.New("corrupt payload")).Once()

		s, err := service.NewCartStore(
			t.Context(), service.WithCartPersister(p),
		)
		require.NoError(t, err)
		assert.Empty(t, s.Items())
	})

	t.Run("NilPersister", func(t *testing.T) {
		_, err := service.NewCartStore(
			t.Context(), service.WithCartPersister(nil),
		)
		require.Error(t, err)
	})
}

func TestCartStoreSubscribe(t *testing.T) {
	t.Run("Notified", func(t *testing.T) {
		s := newStore(t)

		var got []domain.CartSnapshot
		cancel := s.Subscribe(func(snap domain.CartSnapshot) {
			got = append(got, snap)
			// reading inside the callback must not deadlock
			_ = s.TotalItems()
		})

		s.AddItem(t.Context(), productA, red, 9)
		s.AddItem(t.Context(), productA, red, 9)
		s.ClearCart(t.Context())

		require.Len(t, got, 3)
		assert.Equal(t, domain.CartOpAdd, got[0].Op)
		assert.Equal(t, 1, got[0].TotalItems)
		assert.Equal(t, 2, got[1].TotalItems)
		assert.Equal(t, "240", got[1].TotalPrice.String())
		assert.Equal(t, domain.CartOpClear, got[2].Op)
		assert.True(t, got[2].Empty())
		assert.Less(t, got[0].Revision, got[1].Revision)

		cancel()
		s.AddItem(t.Context(), productA, red, 9)
		assert.Len(t, got, 3)
	})

	t.Run("UpdateToZeroReportsRemove", func(t *testing.T) {
		s := newStore(t)
		s.AddItem(t.Context(), productA, red, 9)

		var last domain.CartSnapshot
		s.Subscribe(func(snap domain.CartSnapshot) { last = snap })

		s.UpdateQuantity(t.Context(), keyOf(productA, red, 9), 0)
		assert.Equal(t, domain.CartOpRemove, last.Op)
	})
}

func TestCartStoreConcurrentAdds(t *testing.T) {
	s := newStore(t)

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for range n {
		go func() {
			defer wg.Done()
			s.AddItem(context.Background(), productA, red, 9)
		}()
	}
	wg.Wait()

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, n, items[0].Quantity)
}

func TestCartStoreMutatorsReturnSnapshot(t *testing.T) {
	s := newStore(t)
	ctx := t.Context()

	added := s.AddItem(ctx, productA, red, 9)
	assert.Equal(t, domain.CartOpAdd, added.Op)
	assert.Equal(t, uint64(1), added.Revision)
	assert.Equal(t, 1, added.TotalItems)

	updated := s.UpdateQuantity(ctx, keyOf(productA, red, 9), 3)
	assert.Equal(t, domain.CartOpUpdate, updated.Op)
	assert.Equal(t, 3, updated.TotalItems)
	assert.Equal(t, "360", updated.TotalPrice.String())

	removed := s.RemoveItem(ctx, keyOf(productA, red, 9))
	assert.Equal(t, domain.CartOpRemove, removed.Op)
	assert.True(t, removed.Empty())

	cleared := s.ClearCart(ctx)
	assert.Equal(t, domain.CartOpClear, cleared.Op)
	assert.Equal(t, uint64(4), cleared.Revision)
}

func TestCartStorePersistsCancelledMutation(t *testing.T) {
	p := new(MockCartPersister)
	p.On("LoadCart", mock.Anything).Return(nil, nil).Once()
	p.On("SaveCart", mock.MatchedBy(func(ctx context.Context) bool {
		_, hasDeadline := ctx.Deadline()
		return ctx.Err() == nil && hasDeadline
	}), mock.Anything).Return(nil).Twice()

	s, err := service.NewCartStore(t.Context(), service.WithCartPersister(p))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	s.AddItem(ctx, productA, red, 9)
	s.ClearCart(ctx)

	p.AssertExpectations(t)
}
