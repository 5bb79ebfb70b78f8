package catalog

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Karim-ezzedine/MultiCart/internal/conflict"
	"github.com/Karim-ezzedine/MultiCart/internal/domain"
)

// postgresCatalog implements conflict.Catalog over the products table, for
// hosts that keep a product snapshot next to their carts.
type postgresCatalog struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) conflict.Catalog {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresCatalog{pool: pool, logger: logger}
}

func (r *postgresCatalog) Product(ctx context.Context, productID string) (*conflict.Product, error) {
	const q = `
SELECT id::text, price, currency, available_stock
FROM products
WHERE id = $1
`
	var (
		id       string
		price    decimal.Decimal
		currency string
		stock    *int
	)
	if err := r.pool.QueryRow(ctx, q, productID).Scan(&id, &price, &currency, &stock); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, conflict.ErrProductNotFound
		}
		r.logger.Printf("catalog: get product_id=%s error=%v", productID, err)
		return nil, err
	}
	return &conflict.Product{
		ID:             id,
		Price:          domain.NewMoney(price, currency),
		AvailableStock: stock,
	}, nil
}
