package pricing

import (
	"context"

	"github.com/Karim-ezzedine/MultiCart/internal/domain"
)

// Engine computes totals for a cart. Implementations must be side-effect
// free and must not mutate the cart.
type Engine interface {
	Totals(ctx context.Context, cart *domain.Cart, pctx domain.CartPricingContext) (*domain.CartTotals, error)
}

// PromotionEngine adjusts already-computed totals for a set of promotion
// directives. An empty directive list must be the identity.
type PromotionEngine interface {
	Apply(ctx context.Context, promotions []domain.Promotion, totals domain.CartTotals) (*domain.CartTotals, error)
}
