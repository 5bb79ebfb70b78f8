package pricing

import (
	"context"

	"github.com/Karim-ezzedine/MultiCart/internal/domain"
)

// DefaultEngine is a deterministic pure function of (cart, context):
//
//	subtotal   = Σ (unitPrice + Σ modifier deltas) × quantity
//	tax        = subtotal × taxRate
//	grandTotal = subtotal + tax + serviceFee + deliveryFee
//
// The currency comes from the first item, then from any context fee or
// discount, then falls back to domain.DefaultCurrency for an empty cart.
type DefaultEngine struct{}

func NewDefaultEngine() *DefaultEngine {
	return &DefaultEngine{}
}

func (e *DefaultEngine) Totals(_ context.Context, cart *domain.Cart, pctx domain.CartPricingContext) (*domain.CartTotals, error) {
	currency := currencyFor(cart, pctx)

	subtotal := domain.ZeroMoney(currency)
	for _, item := range cart.Items {
		line, err := item.LineTotal()
		if err != nil {
			return nil, err
		}
		subtotal, err = subtotal.Add(line)
		if err != nil {
			return nil, err
		}
	}

	serviceFee := feeOrZero(pctx.ServiceFee, currency)
	deliveryFee := feeOrZero(pctx.DeliveryFee, currency)

	if pctx.ManualDiscount != nil {
		var err error
		subtotal, err = subtotal.Sub(*pctx.ManualDiscount)
		if err != nil {
			return nil, err
		}
		subtotal = subtotal.ClampZero()
	}

	tax := subtotal.MulDecimal(pctx.TaxRate)

	grand, err := sum(subtotal, tax, serviceFee, deliveryFee)
	if err != nil {
		return nil, err
	}

	return &domain.CartTotals{
		Subtotal:    subtotal,
		DeliveryFee: deliveryFee,
		ServiceFee:  serviceFee,
		Tax:         tax,
		GrandTotal:  grand,
	}, nil
}

func currencyFor(cart *domain.Cart, pctx domain.CartPricingContext) string {
	if len(cart.Items) > 0 {
		return cart.Items[0].UnitPrice.Currency
	}
	for _, m := range []*domain.Money{pctx.ServiceFee, pctx.DeliveryFee, pctx.ManualDiscount} {
		if m != nil && m.Currency != "" {
			return m.Currency
		}
	}
	return domain.DefaultCurrency
}

func feeOrZero(fee *domain.Money, currency string) domain.Money {
	if fee == nil {
		return domain.ZeroMoney(currency)
	}
	return *fee
}

func sum(first domain.Money, rest ...domain.Money) (domain.Money, error) {
	total := first
	for _, m := range rest {
		var err error
		total, err = total.Add(m)
		if err != nil {
			return domain.Money{}, err
		}
	}
	return total, nil
}
