package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/niksmo/dealspot/internal/core/domain"
	"github.com/niksmo/dealspot/internal/core/port"
)

var _ port.ProductsStorage = (*ProductsRepository)(nil)

const selectProductCols = `
	product_id, title, price_amount, price_currency,
	compare_at_amount, compare_at_currency,
	shop_id, shop_name, average_rating, review_count, image_url`

var orderClauses = map[domain.ProductOrder]string{
	domain.OrderByReviewCount: "review_count DESC NULLS LAST, product_id",
	domain.OrderByRating: "average_rating DESC NULLS LAST, " +
		"review_count DESC NULLS LAST, product_id",
	domain.OrderByRecent: "updated_at DESC, product_id",
}

type ProductsRepository struct {
	sqldb sqldb
}

func NewProductsRepository(sqldb sqldb) ProductsRepository {
	return ProductsRepository{sqldb}
}

// StoreProducts upserts the products in one transaction.
func (r ProductsRepository) StoreProducts(
	ctx context.Context, vs []domain.Product,
) (storeErr error) {
	const op = "ProductsRepository.StoreProducts"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if len(vs) == 0 {
		return nil
	}

	tx, err := r.sqldb.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to begin tx: %w", op, err)
	}

	defer func() {
		if storeErr == nil {
			if err := tx.Commit(); err != nil {
				storeErr = fmt.Errorf("%s: failed to commit: %w", op, err)
			}
			return
		}

		if err := tx.Rollback(); err != nil {
			log.Error("failed to rollback tx", "err", err)
		}
	}()

	query := `
		INSERT INTO products (
			product_id, title, price_amount, price_currency,
			compare_at_amount, compare_at_currency,
			shop_id, shop_name, average_rating, review_count, image_url
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (product_id) DO UPDATE SET
			title = EXCLUDED.title,
			price_amount = EXCLUDED.price_amount,
			price_currency = EXCLUDED.price_currency,
			compare_at_amount = EXCLUDED.compare_at_amount,
			compare_at_currency = EXCLUDED.compare_at_currency,
			shop_id = EXCLUDED.shop_id,
			shop_name = EXCLUDED.shop_name,
			average_rating = EXCLUDED.average_rating,
			review_count = EXCLUDED.review_count,
			image_url = EXCLUDED.image_url,
			updated_at = now();
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("%s: failed to prepare stmt: %w", op, err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			log.Error("failed to close prepared stmt", "err", err)
		}
	}()

	for _, v := range vs {
		_, err := stmt.ExecContext(ctx, productArgs(v)...)
		if err != nil {
			return fmt.Errorf("%s: failed to exec: %w", op, err)
		}
	}

	return nil
}

// ListProducts returns a page of the pool in the given order.
func (r ProductsRepository) ListProducts(
	ctx context.Context, order domain.ProductOrder, limit, offset int,
) ([]domain.Product, error) {
	const op = "ProductsRepository.ListProducts"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	orderBy, ok := orderClauses[order]
	if !ok {
		return nil, fmt.Errorf("%s: unknown order %d", op, order)
	}

	query := `SELECT ` + selectProductCols + `
		FROM products
		ORDER BY ` + orderBy + `
		LIMIT $1 OFFSET $2;`

	rows, err := r.sqldb.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ps, err := scanProducts(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ps, nil
}

// ReadProducts returns the stored products among ids in no particular
// order. Unknown ids are skipped.
func (r ProductsRepository) ReadProducts(
	ctx context.Context, ids []string,
) ([]domain.Product, error) {
	const op = "ProductsRepository.ReadProducts"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + selectProductCols + `
		FROM products
		WHERE product_id = ANY($1);`

	rows, err := r.sqldb.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ps, err := scanProducts(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ps, nil
}

func productArgs(v domain.Product) []any {
	var (
		compareAmount, compareCurrency sql.NullString
		shopID, shopName               sql.NullString
		rating                         sql.NullFloat64
		reviews                        sql.NullInt64
	)

	if c := v.CompareAtPrice; c != nil {
		compareAmount = sql.NullString{String: c.Amount, Valid: true}
		compareCurrency = sql.NullString{String: c.CurrencyCode, Valid: true}
	}
	if s := v.Shop; s != nil {
		shopID = sql.NullString{String: s.ID, Valid: true}
		shopName = sql.NullString{String: s.Name, Valid: true}
	}
	if ra := v.ReviewAnalytics; ra != nil {
		rating = sql.NullFloat64{Float64: ra.AverageRating, Valid: true}
		reviews = sql.NullInt64{Int64: int64(ra.ReviewCount), Valid: true}
	}

	return []any{
		v.ProductID, v.Title, v.Price.Amount, v.Price.CurrencyCode,
		compareAmount, compareCurrency,
		shopID, shopName, rating, reviews, v.ImageURL,
	}
}

func scanProducts(rows *sql.Rows) (ps []domain.Product, err error) {
	defer func() {
		if closeErr := rows.Close(); err == nil {
			err = closeErr
		}
	}()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		ps = append(ps, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ps, nil
}

func scanProduct(rows *sql.Rows) (domain.Product, error) {
	var (
		v                              domain.Product
		compareAmount, compareCurrency sql.NullString
		shopID, shopName               sql.NullString
		rating                         sql.NullFloat64
		reviews                        sql.NullInt64
	)

	err := rows.Scan(
		&v.ProductID, &v.Title, &v.Price.Amount, &v.Price.CurrencyCode,
		&compareAmount, &compareCurrency,
		&shopID, &shopName, &rating, &reviews, &v.ImageURL,
	)
	if err != nil {
		return domain.Product{}, err
	}

	if compareAmount.Valid {
		v.CompareAtPrice = &domain.Money{
			Amount:       compareAmount.String,
			CurrencyCode: compareCurrency.String,
		}
	}
	if shopID.Valid || shopName.Valid {
		v.Shop = &domain.Shop{ID: shopID.String, Name: shopName.String}
	}
	if rating.Valid || reviews.Valid {
		v.ReviewAnalytics = &domain.ReviewAnalytics{
			AverageRating: rating.Float64,
			ReviewCount:   int(reviews.Int64),
		}
	}
	return v, nil
}
