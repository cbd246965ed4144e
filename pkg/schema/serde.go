package schema

import (
	"context"
	"errors"
	"fmt"

	"github.com/hamba/avro/v2"
	"github.com/twmb/franz-go/pkg/sr"
)

var ErrTooFewOpts = errors.New("too few options")

type Serde interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
}

// A SchemaIdentifier returns the registry id of a schema under subject.
type SchemaIdentifier interface {
	DetermineID(ctx context.Context, subject string, avroSchemaText string) (int, error)
}

// SchemaCreater registers schemas in the schema registry.
//
// Registering an already known schema returns its existing id.
type SchemaCreater struct {
	client *sr.Client
}

func NewSchemaCreater(client *sr.Client) SchemaCreater {
	return SchemaCreater{client: client}
}

func (c SchemaCreater) DetermineID(
	ctx context.Context, subject string, avroSchemaText string,
) (int, error) {
	const op = "SchemaCreater.DetermineID"

	ss, err := c.client.CreateSchema(ctx, subject, sr.Schema{
		Schema: avroSchemaText,
		Type:   sr.TypeAvro,
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return ss.ID, nil
}

type Opt func(*serdeOpts) error

type serdeOpts struct {
	subject string
	si      SchemaIdentifier
}

func SubjectOpt(subject string) Opt {
	return func(so *serdeOpts) error {
		if subject == "" {
			return errors.New("subject is empty string")
		}
		so.subject = subject
		return nil
	}
}

func SchemaIdentifierOpt(si SchemaIdentifier) Opt {
	return func(so *serdeOpts) error {
		if si == nil {
			return errors.New("schema identifier is nil")
		}
		so.si = si
		return nil
	}
}

// NewSerdeOrderPlacedV1 requires [SubjectOpt] and [SchemaIdentifierOpt].
func NewSerdeOrderPlacedV1(ctx context.Context, opts ...Opt) (Serde, error) {
	const op = "NewSerdeOrderPlacedV1"

	var options serdeOpts
	for _, o := range opts {
		if err := o(&options); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	if options.subject == "" || options.si == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrTooFewOpts)
	}

	avroSchema, err := avro.Parse(OrderPlacedSchemaTextV1)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	id, err := options.si.DetermineID(
		ctx, options.subject, OrderPlacedSchemaTextV1,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	srSerde := new(sr.Serde)
	srSerde.Register(
		id,
		OrderPlacedV1{},
		sr.EncodeFn(AvroEncodeFn(avroSchema)),
		sr.DecodeFn(AvroDecodeFn(avroSchema)),
	)
	return srSerde, nil
}
