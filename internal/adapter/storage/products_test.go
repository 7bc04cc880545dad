package storage

import (
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/niksmo/dealspot/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// passthrough keeps slice args as is, the way pgx accepts them.
type passthrough struct{}

func (passthrough) ConvertValue(v any) (driver.Value, error) {
	if valuer, ok := v.(driver.Valuer); ok {
		return valuer.Value()
	}
	return v, nil
}

var productCols = []string{
	"product_id", "title", "price_amount", "price_currency",
	"compare_at_amount", "compare_at_currency",
	"shop_id", "shop_name", "average_rating", "review_count", "image_url",
}

func newRepo(t *testing.T) (ProductsRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.ValueConverterOption(passthrough{}))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewProductsRepository(db), mock
}

func fullProduct() domain.Product {
	return domain.Product{
		ProductID:      "p1",
		Title:          "Kettle",
		Price:          domain.Money{Amount: "45.00", CurrencyCode: "USD"},
		CompareAtPrice: &domain.Money{Amount: "60.00", CurrencyCode: "USD"},
		Shop:           &domain.Shop{ID: "s1", Name: "Shop A"},
		ReviewAnalytics: &domain.ReviewAnalytics{
			AverageRating: 4.5, ReviewCount: 12,
		},
		ImageURL: "https://img/p1.png",
	}
}

func TestStoreProducts(t *testing.T) {
	t.Run("Upsert", func(t *testing.T) {
		repo, mock := newRepo(t)
		bare := domain.Product{
			ProductID: "p2",
			Title:     "Mug",
			Price:     domain.Money{Amount: "5", CurrencyCode: "USD"},
		}

		mock.ExpectBegin()
		prep := mock.ExpectPrepare("INSERT INTO products")
		prep.ExpectExec().
			WithArgs(
				"p1", "Kettle", "45.00", "USD", "60.00", "USD",
				"s1", "Shop A", 4.5, int64(12), "https://img/p1.png",
			).
			WillReturnResult(sqlmock.NewResult(0, 1))
		prep.ExpectExec().
			WithArgs(
				"p2", "Mug", "5", "USD", nil, nil,
				nil, nil, nil, nil, "",
			).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.StoreProducts(
			t.Context(), []domain.Product{fullProduct(), bare},
		)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RollbackOnError", func(t *testing.T) {
		repo, mock := newRepo(t)
		execErr := errors.New("exec failed")

		mock.ExpectBegin()
		mock.ExpectPrepare("INSERT INTO products").
			ExpectExec().
			WillReturnError(execErr)
		mock.ExpectRollback()

		err := repo.StoreProducts(t.Context(), []domain.Product{fullProduct()})
		assert.ErrorIs(t, err, execErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty", func(t *testing.T) {
		repo, mock := newRepo(t)
		require.NoError(t, repo.StoreProducts(t.Context(), nil))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListProducts(t *testing.T) {
	t.Run("ByRating", func(t *testing.T) {
		repo, mock := newRepo(t)

		rows := sqlmock.NewRows(productCols).
			AddRow(
				"p1", "Kettle", "45.00", "USD", "60.00", "USD",
				"s1", "Shop A", 4.5, int64(12), "https://img/p1.png",
			).
			AddRow(
				"p2", "Mug", "5", "USD", nil, nil,
				nil, nil, nil, nil, "",
			)
		mock.ExpectQuery(`FROM products\s+ORDER BY average_rating DESC`).
			WithArgs(2, 4).
			WillReturnRows(rows)

		ps, err := repo.ListProducts(t.Context(), domain.OrderByRating, 2, 4)
		require.NoError(t, err)
		require.Len(t, ps, 2)
		assert.Equal(t, fullProduct(), ps[0])
		assert.Nil(t, ps[1].CompareAtPrice)
		assert.Nil(t, ps[1].Shop)
		assert.Nil(t, ps[1].ReviewAnalytics)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UnknownOrder", func(t *testing.T) {
		repo, _ := newRepo(t)
		_, err := repo.ListProducts(t.Context(), domain.ProductOrder(99), 1, 0)
		assert.Error(t, err)
	})
}

func TestReadProducts(t *testing.T) {
	t.Run("ByIDs", func(t *testing.T) {
		repo, mock := newRepo(t)

		rows := sqlmock.NewRows(productCols).AddRow(
			"p1", "Kettle", "45.00", "USD", "60.00", "USD",
			"s1", "Shop A", 4.5, int64(12), "https://img/p1.png",
		)
		mock.ExpectQuery(`WHERE product_id = ANY`).
			WithArgs([]string{"p1", "missing"}).
			WillReturnRows(rows)

		ps, err := repo.ReadProducts(t.Context(), []string{"p1", "missing"})
		require.NoError(t, err)
		assert.Equal(t, []domain.Product{fullProduct()}, ps)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NoIDs", func(t *testing.T) {
		repo, mock := newRepo(t)
		ps, err := repo.ReadProducts(t.Context(), nil)
		require.NoError(t, err)
		assert.Empty(t, ps)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
