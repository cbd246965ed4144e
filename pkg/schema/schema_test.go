package schema

import (
	"testing"
	"time"

	"github.com/hamba/avro/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOrder() OrderPlacedV1 {
	return OrderPlacedV1{
		OrderID:  "2d9b1c6e-9f43-4a0e-8a39-1f3ad75c1a11",
		PlacedAt: time.UnixMilli(1760400000123).UTC(),
		Customer: CustomerV1{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     "ada@example.com",
			Phone:     "+44 20 0000 0000",
			Address:   "12 St James's Square",
			City:      "London",
			ZipCode:   "SW1Y 4JH",
			Country:   "UK",
		},
		PaymentMethod: "card",
		Items: []OrderItemV1{
			{
				ProductID: "velocity-runner",
				Name:      "Velocity Runner",
				Color:     "Red",
				Size:      9.5,
				Quantity:  2,
				UnitPrice: "129.99",
			},
		},
		Subtotal: "259.98",
		Shipping: "0.00",
		Tax:      "20.80",
		Total:    "280.78",
	}
}

func TestOrderPlacedV1(t *testing.T) {
	var s avro.Schema
	require.NotPanics(t, func() {
		s = OrderPlacedV1Avro()
	})

	t.Run("Regular", func(t *testing.T) {
		in := testOrder()

		data, err := avro.Marshal(s, in)
		require.NoError(t, err)

		var out OrderPlacedV1
		require.NoError(t, avro.Unmarshal(s, data, &out))

		assert.Equal(t, in.OrderID, out.OrderID)
		assert.True(t, in.PlacedAt.Equal(out.PlacedAt))
		assert.Equal(t, in.Customer, out.Customer)
		assert.Equal(t, in.Items, out.Items)
		assert.Equal(t, in.Total, out.Total)
	})

	t.Run("NoItems", func(t *testing.T) {
		in := testOrder()
		in.Items = nil

		data, err := avro.Marshal(s, in)
		require.NoError(t, err)

		var out OrderPlacedV1
		require.NoError(t, avro.Unmarshal(s, data, &out))
		assert.Empty(t, out.Items)
	})
}

func TestAvroFns(t *testing.T) {
	s := OrderPlacedV1Avro()
	in := testOrder()

	data, err := AvroEncodeFn(s)(in)
	require.NoError(t, err)

	var out OrderPlacedV1
	require.NoError(t, AvroDecodeFn(s)(data, &out))
	assert.Equal(t, in.OrderID, out.OrderID)
}
