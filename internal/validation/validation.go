package validation

import (
	"context"
	"fmt"

	"github.com/Karim-ezzedine/MultiCart/internal/domain"
)

// Verdict is the outcome of a validation check.
type Verdict struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

func Valid() Verdict {
	return Verdict{Valid: true}
}

func Invalid(reason string) Verdict {
	return Verdict{Reason: reason}
}

// Engine accepts or rejects carts and proposed item changes. Both checks
// are side-effect free.
type Engine interface {
	// Validate checks a full cart for checkout readiness.
	Validate(ctx context.Context, cart *domain.Cart) (Verdict, error)
	// ValidateItemChange checks a single prospective item as it would
	// exist after the mutation.
	ValidateItemChange(ctx context.Context, cart *domain.Cart, proposed domain.CartItem) (Verdict, error)
}

// Config holds the default engine's thresholds. Per-cart MinSubtotal and
// MaxItemCount override these when set on the cart itself.
type Config struct {
	MinSubtotal  *domain.Money
	MaxItemCount int
}

// DefaultEngine enforces minimum subtotal and maximum item count on full
// carts, and positive quantity plus available stock on item changes.
type DefaultEngine struct {
	cfg Config
}

func NewDefaultEngine(cfg Config) *DefaultEngine {
	return &DefaultEngine{cfg: cfg}
}

func (e *DefaultEngine) Validate(_ context.Context, cart *domain.Cart) (Verdict, error) {
	maxItems := e.cfg.MaxItemCount
	if cart.MaxItemCount != nil {
		maxItems = *cart.MaxItemCount
	}
	if maxItems > 0 && len(cart.Items) > maxItems {
		return Invalid(fmt.Sprintf("cart has %d items, maximum is %d", len(cart.Items), maxItems)), nil
	}

	minSubtotal := e.cfg.MinSubtotal
	if cart.MinSubtotal != nil {
		minSubtotal = cart.MinSubtotal
	}
	if minSubtotal != nil {
		subtotal := domain.ZeroMoney(minSubtotal.Currency)
		for _, item := range cart.Items {
			line, err := item.LineTotal()
			if err != nil {
				return Verdict{}, err
			}
			subtotal, err = subtotal.Add(line)
			if err != nil {
				return Verdict{}, err
			}
		}
		if subtotal.Amount.LessThan(minSubtotal.Amount) {
			return Invalid(fmt.Sprintf("subtotal %s below minimum %s", subtotal, *minSubtotal)), nil
		}
	}

	return Valid(), nil
}

func (e *DefaultEngine) ValidateItemChange(_ context.Context, _ *domain.Cart, proposed domain.CartItem) (Verdict, error) {
	if proposed.Quantity <= 0 {
		return Invalid("quantity must be positive"), nil
	}
	if proposed.AvailableStock != nil && proposed.Quantity > *proposed.AvailableStock {
		return Invalid(fmt.Sprintf("quantity %d exceeds available stock %d", proposed.Quantity, *proposed.AvailableStock)), nil
	}
	return Valid(), nil
}
