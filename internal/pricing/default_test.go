package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Karim-ezzedine/MultiCart/internal/domain"
)

func money(t *testing.T, v, currency string) domain.Money {
	t.Helper()
	d, err := decimal.NewFromString(v)
	if err != nil {
		t.Fatalf("parse %q: %v", v, err)
	}
	return domain.NewMoney(d, currency)
}

func moneyPtr(t *testing.T, v, currency string) *domain.Money {
	m := money(t, v, currency)
	return &m
}

func cartWith(items ...domain.CartItem) *domain.Cart {
	return &domain.Cart{ID: "c1", StoreID: "s1", Status: domain.StatusActive, Items: items}
}

func TestTotalsSingleItemWithTax(t *testing.T) {
	engine := NewDefaultEngine()

	cart := cartWith(domain.CartItem{
		ID: "i1", ProductID: "burger", Quantity: 1, UnitPrice: money(t, "10", "USD"),
	})
	pctx := domain.CartPricingContext{StoreID: "s1", TaxRate: decimal.RequireFromString("0.10")}

	totals, err := engine.Totals(context.Background(), cart, pctx)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if !totals.Subtotal.Equal(money(t, "10", "USD")) {
		t.Fatalf("subtotal = %s, want 10", totals.Subtotal)
	}
	if !totals.Tax.Equal(money(t, "1", "USD")) {
		t.Fatalf("tax = %s, want 1", totals.Tax)
	}
	if !totals.GrandTotal.Equal(money(t, "11", "USD")) {
		t.Fatalf("grand = %s, want 11", totals.GrandTotal)
	}
}

func TestTotalsModifiersArePerUnit(t *testing.T) {
	engine := NewDefaultEngine()

	cart := cartWith(domain.CartItem{
		ID: "i1", ProductID: "burger", Quantity: 3, UnitPrice: money(t, "10", "USD"),
		Modifiers: []domain.CartItemModifier{
			{ID: "m1", Name: "extra cheese", PriceDelta: money(t, "1.50", "USD")},
		},
	})

	totals, err := engine.Totals(context.Background(), cart, domain.CartPricingContext{StoreID: "s1"})
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	// (10 + 1.50) × 3
	if !totals.Subtotal.Equal(money(t, "34.50", "USD")) {
		t.Fatalf("subtotal = %s, want 34.50", totals.Subtotal)
	}
}

func TestTotalsFeesEnterGrandNotSubtotal(t *testing.T) {
	engine := NewDefaultEngine()

	cart := cartWith(domain.CartItem{
		ID: "i1", ProductID: "burger", Quantity: 1, UnitPrice: money(t, "10", "USD"),
	})
	pctx := domain.CartPricingContext{
		StoreID:     "s1",
		ServiceFee:  moneyPtr(t, "2", "USD"),
		DeliveryFee: moneyPtr(t, "5", "USD"),
	}

	totals, err := engine.Totals(context.Background(), cart, pctx)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if !totals.Subtotal.Equal(money(t, "10", "USD")) {
		t.Fatalf("fees must not enter the subtotal, got %s", totals.Subtotal)
	}
	if !totals.GrandTotal.Equal(money(t, "17", "USD")) {
		t.Fatalf("grand = %s, want 17", totals.GrandTotal)
	}
}

func TestTotalsManualDiscountClampsAtZero(t *testing.T) {
	engine := NewDefaultEngine()

	cart := cartWith(domain.CartItem{
		ID: "i1", ProductID: "coffee", Quantity: 1, UnitPrice: money(t, "4", "USD"),
	})
	pctx := domain.CartPricingContext{
		StoreID:        "s1",
		TaxRate:        decimal.RequireFromString("0.10"),
		ManualDiscount: moneyPtr(t, "10", "USD"),
	}

	totals, err := engine.Totals(context.Background(), cart, pctx)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if !totals.Subtotal.IsZero() {
		t.Fatalf("discount past zero must clamp, got %s", totals.Subtotal)
	}
	if !totals.Tax.IsZero() {
		t.Fatalf("tax applies to the discounted subtotal, got %s", totals.Tax)
	}
}

func TestTotalsEmptyCartUsesContextCurrency(t *testing.T) {
	engine := NewDefaultEngine()

	pctx := domain.CartPricingContext{StoreID: "s1", DeliveryFee: moneyPtr(t, "3", "EUR")}
	totals, err := engine.Totals(context.Background(), cartWith(), pctx)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if totals.Subtotal.Currency != "EUR" {
		t.Fatalf("currency = %s, want EUR", totals.Subtotal.Currency)
	}
	if !totals.GrandTotal.Equal(money(t, "3", "EUR")) {
		t.Fatalf("grand = %s, want 3", totals.GrandTotal)
	}
}

func TestTotalsEmptyCartDefaultCurrency(t *testing.T) {
	engine := NewDefaultEngine()

	totals, err := engine.Totals(context.Background(), cartWith(), domain.CartPricingContext{StoreID: "s1"})
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if totals.Subtotal.Currency != domain.DefaultCurrency {
		t.Fatalf("currency = %s, want %s", totals.Subtotal.Currency, domain.DefaultCurrency)
	}
}

func TestTotalsCurrencyMismatch(t *testing.T) {
	engine := NewDefaultEngine()

	cart := cartWith(
		domain.CartItem{ID: "i1", ProductID: "a", Quantity: 1, UnitPrice: money(t, "10", "USD")},
		domain.CartItem{ID: "i2", ProductID: "b", Quantity: 1, UnitPrice: money(t, "10", "EUR")},
	)

	if _, err := engine.Totals(context.Background(), cart, domain.CartPricingContext{StoreID: "s1"}); !errors.Is(err, domain.ErrPricing) {
		t.Fatalf("mixed currencies should fail pricing, got %v", err)
	}
}
