package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Karim-ezzedine/MultiCart/internal/domain"
)

type postgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres returns a Store backed by the carts table. Items, metadata
// and the optional min_subtotal are stored as jsonb.
func NewPostgres(pool *pgxpool.Pool) Store {
	return &postgresStore{pool: pool}
}

const cartColumns = `
id::text, store_id, profile_id, status, created_at, updated_at,
items, metadata, display_name, context, store_image_url, min_subtotal, max_item_count
`

func (s *postgresStore) Load(ctx context.Context, id string) (*domain.Cart, error) {
	q := `SELECT ` + cartColumns + ` FROM carts WHERE id = $1`
	row := s.pool.QueryRow(ctx, q, id)
	cart, err := scanCart(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return cart, nil
}

func (s *postgresStore) Save(ctx context.Context, cart *domain.Cart) error {
	items, err := json.Marshal(cart.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	metadata, err := json.Marshal(cart.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	var minSubtotal []byte
	if cart.MinSubtotal != nil {
		minSubtotal, err = json.Marshal(cart.MinSubtotal)
		if err != nil {
			return fmt.Errorf("marshal min subtotal: %w", err)
		}
	}

	const q = `
INSERT INTO carts (id, store_id, profile_id, status, created_at, updated_at,
                   items, metadata, display_name, context, store_image_url, min_subtotal, max_item_count)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (id) DO UPDATE SET
	store_id = EXCLUDED.store_id,
	profile_id = EXCLUDED.profile_id,
	status = EXCLUDED.status,
	updated_at = EXCLUDED.updated_at,
	items = EXCLUDED.items,
	metadata = EXCLUDED.metadata,
	display_name = EXCLUDED.display_name,
	context = EXCLUDED.context,
	store_image_url = EXCLUDED.store_image_url,
	min_subtotal = EXCLUDED.min_subtotal,
	max_item_count = EXCLUDED.max_item_count
`
	_, err = s.pool.Exec(ctx, q,
		cart.ID,
		cart.StoreID,
		cart.ProfileID,
		string(cart.Status),
		cart.CreatedAt,
		cart.UpdatedAt,
		items,
		metadata,
		cart.DisplayName,
		cart.Context,
		cart.StoreImageURL,
		minSubtotal,
		cart.MaxItemCount,
	)
	return err
}

func (s *postgresStore) Delete(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM carts WHERE id = $1`, id)
	return err
}

func (s *postgresStore) Fetch(ctx context.Context, q Query, limit int) ([]*domain.Cart, error) {
	sql := `SELECT ` + cartColumns + ` FROM carts WHERE store_id = $1`
	args := []interface{}{q.StoreID}

	if q.ProfileID == nil {
		sql += ` AND profile_id IS NULL`
	} else {
		args = append(args, *q.ProfileID)
		sql += fmt.Sprintf(` AND profile_id = $%d`, len(args))
	}

	if len(q.Statuses) > 0 {
		statuses := make([]string, 0, len(q.Statuses))
		for _, st := range q.Statuses {
			statuses = append(statuses, string(st))
		}
		args = append(args, statuses)
		sql += fmt.Sprintf(` AND status = ANY($%d)`, len(args))
	}

	sql += ` ORDER BY ` + orderClause(q.Sort)

	if limit > 0 {
		args = append(args, limit)
		sql += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Cart
	for rows.Next() {
		cart, err := scanCart(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cart)
	}
	return out, rows.Err()
}

func orderClause(s Sort) string {
	switch s {
	case SortCreatedAtDesc:
		return "created_at DESC"
	case SortUpdatedAtAsc:
		return "updated_at ASC"
	case SortUpdatedAtDesc:
		return "updated_at DESC"
	default:
		return "created_at ASC"
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCart(row rowScanner) (*domain.Cart, error) {
	var (
		cart        domain.Cart
		status      string
		items       []byte
		metadata    []byte
		minSubtotal []byte
	)
	if err := row.Scan(
		&cart.ID,
		&cart.StoreID,
		&cart.ProfileID,
		&status,
		&cart.CreatedAt,
		&cart.UpdatedAt,
		&items,
		&metadata,
		&cart.DisplayName,
		&cart.Context,
		&cart.StoreImageURL,
		&minSubtotal,
		&cart.MaxItemCount,
	); err != nil {
		return nil, err
	}
	cart.Status = domain.CartStatus(status)
	if len(items) > 0 {
		if err := json.Unmarshal(items, &cart.Items); err != nil {
			return nil, fmt.Errorf("unmarshal items: %w", err)
		}
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &cart.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	if len(minSubtotal) > 0 {
		cart.MinSubtotal = &domain.Money{}
		if err := json.Unmarshal(minSubtotal, cart.MinSubtotal); err != nil {
			return nil, fmt.Errorf("unmarshal min subtotal: %w", err)
		}
	}
	return &cart, nil
}
