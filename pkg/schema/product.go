package schema

import "github.com/hamba/avro/v2"

const ProductSchemaTextV1 = `{
	"type": "record",
	"namespace": "dealspot",
	"name": "product",
	"fields": [
		{"name": "product_id", "type": "string"},
		{"name": "title", "type": "string"},
		{"name": "price", "type": {
			"type": "record",
			"name": "money",
			"fields": [
				{"name": "amount", "type": "string"},
				{"name": "currency_code", "type": "string"}
			]
		}},
		{"name": "compare_at_price", "type": ["null", "money"], "default": null},
		{"name": "shop", "type": ["null", {
			"type": "record",
			"name": "shop",
			"fields": [
				{"name": "id", "type": "string"},
				{"name": "name", "type": "string"}
			]
		}], "default": null},
		{"name": "review_analytics", "type": ["null", {
			"type": "record",
			"name": "review_analytics",
			"fields": [
				{"name": "average_rating", "type": "double"},
				{"name": "review_count", "type": "long"}
			]
		}], "default": null},
		{"name": "image_url", "type": "string", "default": ""}
	]
}`

type (
	ProductV1 struct {
		ProductID       string             `avro:"product_id"`
		Title           string             `avro:"title"`
		Price           MoneyV1            `avro:"price"`
		CompareAtPrice  *MoneyV1           `avro:"compare_at_price"`
		Shop            *ShopV1            `avro:"shop"`
		ReviewAnalytics *ReviewAnalyticsV1 `avro:"review_analytics"`
		ImageURL        string             `avro:"image_url"`
	}

	// Amounts stay decimal strings on the wire.
	MoneyV1 struct {
		Amount       string `avro:"amount"`
		CurrencyCode string `avro:"currency_code"`
	}

	ShopV1 struct {
		ID   string `avro:"id"`
		Name string `avro:"name"`
	}

	ReviewAnalyticsV1 struct {
		AverageRating float64 `avro:"average_rating"`
		ReviewCount   int64   `avro:"review_count"`
	}
)

func ProductV1Avro() avro.Schema {
	return avro.MustParse(ProductSchemaTextV1)
}
