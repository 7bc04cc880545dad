package schema_test

import (
	"context"
	"testing"

	"github.com/niksmo/dealspot/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSchemaIdentifier struct {
	mock.Mock
}

func (c *MockSchemaIdentifier) DetermineID(
	ctx context.Context, subject string, avroSchemaText string,
) (id int, err error) {
	args := c.Called(ctx, subject, avroSchemaText)
	return args.Int(0), args.Error(1)
}

func TestSerdeProductV1(t *testing.T) {

	t.Run("NoOpts", func(t *testing.T) {
		_, err := schema.NewSerdeProductV1(t.Context())
		require.Error(t, err)
		assert.ErrorIs(t, err, schema.ErrTooFewOpts)
	})

	t.Run("OneOpt", func(t *testing.T) {
		_, err := schema.NewSerdeProductV1(
			t.Context(),
			schema.SchemaIdentifierOpt(new(MockSchemaIdentifier)),
		)
		require.Error(t, err)
		assert.ErrorIs(t, err, schema.ErrTooFewOpts)
	})

	t.Run("EmptySubject", func(t *testing.T) {
		_, err := schema.NewSerdeProductV1(
			t.Context(),
			schema.SubjectOpt(""),
			schema.SchemaIdentifierOpt(new(MockSchemaIdentifier)),
		)
		require.Error(t, err)
	})

	t.Run("EncodeDecode", func(t *testing.T) {
		schemaIdentifier := new(MockSchemaIdentifier)
		schemaID := 1
		subject := "testTopic-value"

		schemaIdentifier.On(
			"DetermineID", t.Context(), subject, schema.ProductSchemaTextV1,
		).Return(schemaID, nil)

		serde, err := schema.NewSerdeProductV1(
			t.Context(),
			schema.SubjectOpt(subject),
			schema.SchemaIdentifierOpt(schemaIdentifier),
		)
		require.NoError(t, err)

		productValue1 := schema.ProductV1{
			ProductID: "testProductID",
			Title:     "testTitle",
			Price: schema.MoneyV1{
				Amount:       "90.00",
				CurrencyCode: "USD",
			},
			CompareAtPrice: &schema.MoneyV1{
				Amount:       "100.00",
				CurrencyCode: "USD",
			},
			Shop: &schema.ShopV1{ID: "testShopID", Name: "testShop"},
		}

		encodedData, err := serde.Encode(productValue1)
		require.NoError(t, err)

		var productValue2 schema.ProductV1
		err = serde.Decode(encodedData, &productValue2)
		require.NoError(t, err)

		assert.Equal(t, productValue1, productValue2)
	})
}

func TestSerdeSavedEventV1(t *testing.T) {
	schemaIdentifier := new(MockSchemaIdentifier)
	subject := "saved-value"

	schemaIdentifier.On(
		"DetermineID", t.Context(), subject, schema.SavedEventSchemaTextV1,
	).Return(7, nil)

	serde, err := schema.NewSerdeSavedEventV1(
		t.Context(),
		schema.SubjectOpt(subject),
		schema.SchemaIdentifierOpt(schemaIdentifier),
	)
	require.NoError(t, err)

	v1 := schema.SavedEventV1{Username: "u", ProductID: "p", Saved: true}
	data, err := serde.Encode(v1)
	require.NoError(t, err)

	var v2 schema.SavedEventV1
	require.NoError(t, serde.Decode(data, &v2))
	assert.Equal(t, v1, v2)
	schemaIdentifier.AssertExpectations(t)
}
