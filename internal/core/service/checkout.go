package service

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/niksmo/sneakers/internal/core/domain"
	"github.com/niksmo/sneakers/internal/core/port"
)

var _ port.OrderPlacer = (*Checkout)(nil)

const DefaultCheckoutDelay = 2 * time.Second

// Checkout results reported to [port.CheckoutObserver].
const (
	CheckoutPlaced    = "placed"
	CheckoutInvalid   = "invalid"
	CheckoutEmpty     = "empty"
	CheckoutRejected  = "in_flight"
	CheckoutAbandoned = "abandoned"
	CheckoutFailed    = "failed"
)

type CheckoutOpt func(*checkoutOpts) error

type checkoutOpts struct {
	cart      port.Cart
	pricer    port.Pricer
	publisher port.OrderPublisher
	observer  port.CheckoutObserver
	delay     time.Duration
	now       func() time.Time
}

func CheckoutCartOpt(c port.Cart) CheckoutOpt {
	return func(o *checkoutOpts) error {
		if c == nil {
			return errors.New("cart is nil")
		}
		o.cart = c
		return nil
	}
}

func CheckoutPricerOpt(p port.Pricer) CheckoutOpt {
	return func(o *checkoutOpts) error {
		if p == nil {
			return errors.New("pricer is nil")
		}
		o.pricer = p
		return nil
	}
}

// CheckoutPublisherOpt is optional, orders are not published without it.
func CheckoutPublisherOpt(p port.OrderPublisher) CheckoutOpt {
	return func(o *checkoutOpts) error {
		if p == nil {
			return errors.New("order publisher is nil")
		}
		o.publisher = p
		return nil
	}
}

func CheckoutObserverOpt(obs port.CheckoutObserver) CheckoutOpt {
	return func(o *checkoutOpts) error {
		if obs == nil {
			return errors.New("checkout observer is nil")
		}
		o.observer = obs
		return nil
	}
}

func CheckoutDelayOpt(d time.Duration) CheckoutOpt {
	return func(o *checkoutOpts) error {
		if d < 0 {
			return errors.New("negative checkout delay")
		}
		o.delay = d
		return nil
	}
}

// A Checkout places simulated orders.
//
// Only one submission is in flight at a time, a concurrent one
// gets [domain.ErrCheckoutInFlight].
type Checkout struct {
	cart      port.Cart
	pricer    port.Pricer
	publisher port.OrderPublisher
	observer  port.CheckoutObserver
	delay     time.Duration
	now       func() time.Time
	inFlight  atomic.Bool
}

func NewCheckout(opts ...CheckoutOpt) (*Checkout, error) {
	const op = "NewCheckout"

	options := checkoutOpts{
		delay: DefaultCheckoutDelay,
		now:   time.Now,
	}
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return nil, opErr(err, op)
		}
	}

	if options.cart == nil || options.pricer == nil {
		return nil, opErr(errors.New("cart and pricer are required"), op)
	}

	return &Checkout{
		cart:      options.cart,
		pricer:    options.pricer,
		publisher: options.publisher,
		observer:  options.observer,
		delay:     options.delay,
		now:       options.now,
	}, nil
}

func (c *Checkout) Quote() domain.Totals {
	return c.pricer.CheckoutTotals(c.cart.TotalPrice())
}

// PlaceOrder waits the checkout delay and then clears the cart.
//
// If ctx is done before the delay elapses the order is abandoned
// and the cart is left untouched.
func (c *Checkout) PlaceOrder(
	ctx context.Context, form domain.CheckoutForm,
) (domain.Order, error) {
	const op = "Checkout.PlaceOrder"
	log := slog.With("op", op)

	if err := form.Validate(); err != nil {
		c.observe(CheckoutInvalid)
		return domain.Order{}, opErr(err, op)
	}

	if !c.inFlight.CompareAndSwap(false, true) {
		c.observe(CheckoutRejected)
		return domain.Order{}, opErr(domain.ErrCheckoutInFlight, op)
	}
	defer c.inFlight.Store(false)

	snapshot := c.cart.Snapshot()
	if snapshot.Empty() {
		c.observe(CheckoutEmpty)
		return domain.Order{}, opErr(domain.ErrEmptyCart, op)
	}

	if err := c.wait(ctx); err != nil {
		c.observe(CheckoutAbandoned)
		log.Warn("checkout abandoned", "err", err)
		return domain.Order{}, opErr(err, op)
	}

	order := domain.Order{
		ID:            uuid.NewString(),
		Items:         snapshot.Items,
		Totals:        c.pricer.CheckoutTotals(snapshot.TotalPrice),
		Customer:      form,
		PaymentMethod: form.PaymentMethod,
		PlacedAt:      c.now().UTC(),
	}

	if c.publisher != nil {
		if err := c.publisher.PublishOrder(ctx, order); err != nil {
			c.observe(CheckoutFailed)
			return domain.Order{}, opErr(err, op)
		}
	}

	c.cart.ClearCart(ctx)
	c.observe(CheckoutPlaced)

	log.Info(
		"order placed",
		"orderID", order.ID,
		"nItems", snapshot.TotalItems,
		"total", order.Totals.Total.StringFixed(2),
	)
	return order, nil
}

func (c *Checkout) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.delay == 0 {
		return nil
	}

	timer := time.NewTimer(c.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Checkout) observe(result string) {
	if c.observer != nil {
		c.observer.ObserveCheckout(result)
	}
}
