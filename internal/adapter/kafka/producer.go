package kafka

import (
	"context"
	"log/slog"

	"github.com/niksmo/sneakers/internal/core/domain"
	"github.com/niksmo/sneakers/internal/core/port"
	"github.com/niksmo/sneakers/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

var _ port.OrderPublisher = OrdersProducer{}

// A producer is used for composition.
//
// Producing records to kafka broker and closing underlying [kgo.Client].
type producer struct {
	opPrefix string
	cl       ProducerClient
	topic    string
}

func (p producer) close() {
	const op = "close"
	log := slog.With("op", makeOp(p.opPrefix, op))
	log.Info("closing producer...")
	p.cl.Close()
	log.Info("producer is closed")
}

func (p producer) produce(ctx context.Context, rs ...*kgo.Record) error {
	const op = "produce"

	for _, r := range rs {
		if r.Topic == "" {
			r.Topic = p.topic
		}
	}

	res := p.cl.ProduceSync(ctx, rs...)
	if err := res.FirstErr(); err != nil {
		return opErr(err, p.opPrefix, op)
	}
	return nil
}

// An OrdersProducer publishes placed orders keyed by order id.
type OrdersProducer struct {
	producer producer
	encoder  Encoder
	opPrefix string
}

// NewOrdersProducer requires a client opt and [ProducerEncoderOpt].
func NewOrdersProducer(opts ...ProducerOpt) (OrdersProducer, error) {
	const op = "NewOrdersProducer"

	var options producerOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return OrdersProducer{}, opErr(err, op)
		}
	}
	if options.cl == nil || options.encoder == nil {
		return OrdersProducer{}, opErr(ErrTooFewOpts, op)
	}

	opPrefix := "OrdersProducer"
	return OrdersProducer{
		producer: producer{
			opPrefix: opPrefix,
			cl:       options.cl,
			topic:    options.topic,
		},
		encoder:  options.encoder,
		opPrefix: opPrefix,
	}, nil
}

func (p OrdersProducer) Close() {
	p.producer.close()
}

func (p OrdersProducer) PublishOrder(
	ctx context.Context, order domain.Order,
) error {
	const op = "PublishOrder"

	if err := ctx.Err(); err != nil {
		return opErr(err, p.opPrefix, op)
	}

	r, err := p.createRecord(order)
	if err != nil {
		return opErr(err, p.opPrefix, op)
	}

	if err := p.producer.produce(ctx, r); err != nil {
		return opErr(err, p.opPrefix, op)
	}

	slog.Debug(
		"order published",
		"op", makeOp(p.opPrefix, op), "orderID", order.ID,
	)
	return nil
}

func (p OrdersProducer) createRecord(order domain.Order) (*kgo.Record, error) {
	const op = "createRecord"

	v, err := p.encoder.Encode(orderToSchemaV1(order))
	if err != nil {
		return nil, opErr(err, p.opPrefix, op)
	}
	return &kgo.Record{Key: []byte(order.ID), Value: v}, nil
}

func orderToSchemaV1(o domain.Order) (s schema.OrderPlacedV1) {
	s.OrderID = o.ID
	s.PlacedAt = o.PlacedAt
	s.PaymentMethod = string(o.PaymentMethod)

	s.Customer.FirstName = o.Customer.FirstName
	s.Customer.LastName = o.Customer.LastName
	s.Customer.Email = o.Customer.Email
	s.Customer.Phone = o.Customer.Phone
	s.Customer.Address = o.Customer.Address
	s.Customer.City = o.Customer.City
	s.Customer.ZipCode = o.Customer.ZipCode
	s.Customer.Country = o.Customer.Country

	s.Items = make([]schema.OrderItemV1, len(o.Items))
	for i, li := range o.Items {
		s.Items[i] = schema.OrderItemV1{
			ProductID: li.Product.ID,
			Name:      li.Product.Name,
			Color:     li.SelectedColor.Name,
			Size:      float64(li.SelectedSize),
			Quantity:  li.Quantity,
			UnitPrice: li.Product.Price.StringFixed(2),
		}
	}

	s.Subtotal = o.Totals.Subtotal.StringFixed(2)
	s.Shipping = o.Totals.Shipping.StringFixed(2)
	s.Tax = o.Totals.Tax.StringFixed(2)
	s.Total = o.Totals.Total.StringFixed(2)
	return s
}
