package domain

import "github.com/shopspring/decimal"

// CartTotals is the output of a pricing run. All amounts share one currency.
type CartTotals struct {
	Subtotal    Money `json:"subtotal"`
	DeliveryFee Money `json:"deliveryFee"`
	ServiceFee  Money `json:"serviceFee"`
	Tax         Money `json:"tax"`
	GrandTotal  Money `json:"grandTotal"`
}

// CartPricingContext carries the per-call inputs to a pricing run.
type CartPricingContext struct {
	StoreID        string          `json:"storeId"`
	ProfileID      *string         `json:"profileId,omitempty"`
	ServiceFee     *Money          `json:"serviceFee,omitempty"`
	DeliveryFee    *Money          `json:"deliveryFee,omitempty"`
	TaxRate        decimal.Decimal `json:"taxRate"`
	ManualDiscount *Money          `json:"manualDiscount,omitempty"`
}

// PromotionKindTag discriminates Promotion values.
type PromotionKindTag string

const (
	PromotionFreeDelivery      PromotionKindTag = "freeDelivery"
	PromotionPercentageOffCart PromotionKindTag = "percentageOffCart"
	PromotionFixedAmountOff    PromotionKindTag = "fixedAmountOffCart"
	PromotionCustom            PromotionKindTag = "custom"
)

// Promotion is a tagged union of promotion directives. Exactly the fields
// belonging to the tagged kind are meaningful.
type Promotion struct {
	Kind PromotionKindTag `json:"kind"`

	// Percentage is the rate for percentageOffCart, e.g. 0.10 for 10% off.
	Percentage decimal.Decimal `json:"percentage,omitempty"`

	// Amount is the discount for fixedAmountOffCart.
	Amount Money `json:"amount,omitempty"`

	// CustomKind and CustomValue describe a custom directive; the default
	// promotion engine accepts them without numeric effect.
	CustomKind  string          `json:"customKind,omitempty"`
	CustomValue decimal.Decimal `json:"customValue,omitempty"`
}

func FreeDelivery() Promotion {
	return Promotion{Kind: PromotionFreeDelivery}
}

func PercentageOffCart(rate decimal.Decimal) Promotion {
	return Promotion{Kind: PromotionPercentageOffCart, Percentage: rate}
}

func FixedAmountOffCart(amount Money) Promotion {
	return Promotion{Kind: PromotionFixedAmountOff, Amount: amount}
}

func CustomPromotion(kind string, value decimal.Decimal) Promotion {
	return Promotion{Kind: PromotionCustom, CustomKind: kind, CustomValue: value}
}
