package pricing

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Karim-ezzedine/MultiCart/internal/domain"
)

// DefaultPromotionEngine applies promotion directives to computed totals.
//
// Percentage discounts are summed into one aggregate rate and applied once
// to the subtotal, never compounded per entry. Fixed discounts with a
// positive amount are summed and subtracted after the percentage step,
// clamped at zero; non-positive amounts are discarded so a directive can
// never raise the price. freeDelivery zeroes the delivery fee. Custom
// directives are accepted without numeric effect. The grand total is always
// recomputed from the adjusted parts.
type DefaultPromotionEngine struct{}

func NewDefaultPromotionEngine() *DefaultPromotionEngine {
	return &DefaultPromotionEngine{}
}

func (e *DefaultPromotionEngine) Apply(_ context.Context, promotions []domain.Promotion, totals domain.CartTotals) (*domain.CartTotals, error) {
	if len(promotions) == 0 {
		out := totals
		return &out, nil
	}

	currency := totals.Subtotal.Currency
	subtotal := totals.Subtotal
	deliveryFee := totals.DeliveryFee

	aggregateRate := decimal.Zero
	fixedOff := domain.ZeroMoney(currency)

	for _, p := range promotions {
		switch p.Kind {
		case domain.PromotionFreeDelivery:
			deliveryFee = domain.ZeroMoney(deliveryFee.Currency)
		case domain.PromotionPercentageOffCart:
			aggregateRate = aggregateRate.Add(p.Percentage)
		case domain.PromotionFixedAmountOff:
			if !p.Amount.IsPositive() {
				continue
			}
			var err error
			fixedOff, err = fixedOff.Add(p.Amount)
			if err != nil {
				return nil, err
			}
		case domain.PromotionCustom:
			// Reserved extension point; no numeric effect here.
		default:
			return nil, domain.PricingError("unknown promotion kind " + string(p.Kind))
		}
	}

	if !aggregateRate.IsZero() {
		subtotal = subtotal.MulDecimal(decimal.NewFromInt(1).Sub(aggregateRate)).ClampZero()
	}
	if fixedOff.IsPositive() {
		var err error
		subtotal, err = subtotal.Sub(fixedOff)
		if err != nil {
			return nil, err
		}
		subtotal = subtotal.ClampZero()
	}

	grand, err := sum(subtotal, totals.Tax, totals.ServiceFee, deliveryFee)
	if err != nil {
		return nil, err
	}

	return &domain.CartTotals{
		Subtotal:    subtotal,
		DeliveryFee: deliveryFee,
		ServiceFee:  totals.ServiceFee,
		Tax:         totals.Tax,
		GrandTotal:  grand,
	}, nil
}
