// Package schema holds the Avro schemas of the published events and
// the schema registry serde that frames them.
package schema

import (
	"time"

	"github.com/hamba/avro/v2"
)

const OrderPlacedSchemaTextV1 = `{
	"type": "record",
	"namespace": "shop.orders",
	"name": "order_placed",
	"fields": [
		{"name": "order_id", "type": "string"},
		{"name": "placed_at", "type": {"type": "long", "logicalType": "timestamp-millis"}},
		{"name": "customer", "type": {
			"type": "record",
			"name": "customer",
			"fields": [
				{"name": "first_name", "type": "string"},
				{"name": "last_name", "type": "string"},
				{"name": "email", "type": "string"},
				{"name": "phone", "type": "string"},
				{"name": "address", "type": "string"},
				{"name": "city", "type": "string"},
				{"name": "zip_code", "type": "string"},
				{"name": "country", "type": "string"}
			]
		}},
		{"name": "payment_method", "type": "string"},
		{"name": "items", "type": {
			"type": "array",
			"items": {
				"type": "record",
				"name": "order_item",
				"fields": [
					{"name": "product_id", "type": "string"},
					{"name": "name", "type": "string"},
					{"name": "color", "type": "string"},
					{"name": "size", "type": "double"},
					{"name": "quantity", "type": "int"},
					{"name": "unit_price", "type": "string"}
				]
			}
		}},
		{"name": "subtotal", "type": "string"},
		{"name": "shipping", "type": "string"},
		{"name": "tax", "type": "string"},
		{"name": "total", "type": "string"}
	]
}`

// Amounts are decimal strings with two fraction digits.
type (
	OrderPlacedV1 struct {
		OrderID       string        `avro:"order_id"`
		PlacedAt      time.Time     `avro:"placed_at"`
		Customer      CustomerV1    `avro:"customer"`
		PaymentMethod string        `avro:"payment_method"`
		Items         []OrderItemV1 `avro:"items"`
		Subtotal      string        `avro:"subtotal"`
		Shipping      string        `avro:"shipping"`
		Tax           string        `avro:"tax"`
		Total         string        `avro:"total"`
	}

	CustomerV1 struct {
		FirstName string `avro:"first_name"`
		LastName  string `avro:"last_name"`
		Email     string `avro:"email"`
		Phone     string `avro:"phone"`
		Address   string `avro:"address"`
		City      string `avro:"city"`
		ZipCode   string `avro:"zip_code"`
		Country   string `avro:"country"`
	}

	OrderItemV1 struct {
		ProductID string  `avro:"product_id"`
		Name      string  `avro:"name"`
		Color     string  `avro:"color"`
		Size      float64 `avro:"size"`
		Quantity  int     `avro:"quantity"`
		UnitPrice string  `avro:"unit_price"`
	}
)

// OrderPlacedV1Avro panics if the schema text is invalid.
func OrderPlacedV1Avro() avro.Schema {
	return avro.MustParse(OrderPlacedSchemaTextV1)
}
