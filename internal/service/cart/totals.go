package cart

import (
	"context"

	"github.com/Karim-ezzedine/MultiCart/internal/domain"
	"github.com/Karim-ezzedine/MultiCart/internal/validation"
)

// GetTotals prices a cart. A nil context is defaulted from the cart's
// scope. Promotions are strictly opt-in per call: a nil list passes the
// pricing result through unchanged.
func (m *Manager) GetTotals(ctx context.Context, cartID string, pctx *domain.CartPricingContext, promotions []domain.Promotion) (*domain.CartTotals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cart, err := m.load(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return m.price(ctx, cart, pctx, promotions)
}

// GetTotalsForActiveCart prices the scope's active cart, resolved from the
// context's store and profile. A scope with no active cart yields
// (nil, nil), not an error.
func (m *Manager) GetTotalsForActiveCart(ctx context.Context, pctx domain.CartPricingContext, promotions []domain.Promotion) (*domain.CartTotals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cart, err := m.activeCart(ctx, pctx.StoreID, pctx.ProfileID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, nil
	}
	return m.price(ctx, cart, &pctx, promotions)
}

// ValidateBeforeCheckout returns the full-cart verdict without mutating
// anything.
func (m *Manager) ValidateBeforeCheckout(ctx context.Context, cartID string) (validation.Verdict, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cart, err := m.load(ctx, cartID)
	if err != nil {
		return validation.Verdict{}, err
	}
	return m.validator.Validate(ctx, cart)
}

func (m *Manager) price(ctx context.Context, cart *domain.Cart, pctx *domain.CartPricingContext, promotions []domain.Promotion) (*domain.CartTotals, error) {
	if pctx == nil {
		pctx = &domain.CartPricingContext{
			StoreID:   cart.StoreID,
			ProfileID: cart.ProfileID,
		}
	}

	totals, err := m.pricer.Totals(ctx, cart, *pctx)
	if err != nil {
		return nil, err
	}
	if promotions == nil {
		return totals, nil
	}
	return m.promoter.Apply(ctx, promotions, *totals)
}
