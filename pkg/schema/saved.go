package schema

import "github.com/hamba/avro/v2"

const SavedEventSchemaTextV1 = `{
	"type": "record",
	"namespace": "dealspot",
	"name": "saved_event",
	"fields": [
		{"name": "username", "type": "string"},
		{"name": "product_id", "type": "string"},
		{"name": "saved", "type": "boolean"}
	]
}`

// SavedSetSchemaTextV1 is the saved products table value: product ids,
// most recently saved first.
const SavedSetSchemaTextV1 = `{"type": "array", "items": "string"}`

type SavedEventV1 struct {
	Username  string `avro:"username"`
	ProductID string `avro:"product_id"`
	Saved     bool   `avro:"saved"`
}

func SavedEventV1Avro() avro.Schema {
	return avro.MustParse(SavedEventSchemaTextV1)
}

func SavedSetV1Avro() avro.Schema {
	return avro.MustParse(SavedSetSchemaTextV1)
}
