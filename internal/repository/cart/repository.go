package cart

import (
	"context"

	"github.com/Karim-ezzedine/MultiCart/internal/domain"
)

// Sort orders Fetch results.
type Sort string

const (
	SortCreatedAtAsc  Sort = "createdAt-asc"
	SortCreatedAtDesc Sort = "createdAt-desc"
	SortUpdatedAtAsc  Sort = "updatedAt-asc"
	SortUpdatedAtDesc Sort = "updatedAt-desc"
)

// Query selects carts within one (store, profile-or-guest) scope.
// A nil ProfileID selects guest carts. An empty Statuses set matches any
// status.
type Query struct {
	StoreID   string
	ProfileID *string
	Statuses  []domain.CartStatus
	Sort      Sort
}

// Store is the persistence port the manager mutates carts through. Stores
// never create or delete carts on their own.
//
// Load returns domain.ErrNotFound for a missing id. Save is an upsert,
// idempotent per id. Delete is idempotent and silent on a missing id.
type Store interface {
	Load(ctx context.Context, id string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, id string) error
	// Fetch returns carts matching the query, ordered per q.Sort. A
	// limit <= 0 means no limit.
	Fetch(ctx context.Context, q Query, limit int) ([]*domain.Cart, error)
}
