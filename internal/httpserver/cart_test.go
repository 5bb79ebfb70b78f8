package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Karim-ezzedine/MultiCart/internal/domain"
	cartsvc "github.com/Karim-ezzedine/MultiCart/internal/service/cart"
	"github.com/Karim-ezzedine/MultiCart/internal/validation"
)

type stubManager struct {
	cart    *domain.Cart
	result  *domain.CartUpdateResult
	totals  *domain.CartTotals
	verdict validation.Verdict
	err     error

	gotStoreID   string
	gotCartID    string
	gotItemID    string
	gotProfileID *string
	gotStatus    domain.CartStatus
	gotItem      domain.CartItem
	gotStrategy  cartsvc.MigrationStrategy
	gotTemplate  bool
	gotPctx      *domain.CartPricingContext
}

func (s *stubManager) SetActiveCart(_ context.Context, storeID string, profileID *string) (*domain.Cart, error) {
	s.gotStoreID, s.gotProfileID = storeID, profileID
	return s.cart, s.err
}

func (s *stubManager) UpdateStatus(_ context.Context, cartID string, status domain.CartStatus) (*domain.Cart, error) {
	s.gotCartID, s.gotStatus = cartID, status
	return s.cart, s.err
}

func (s *stubManager) UpdateCartDetails(_ context.Context, cartID string, _ cartsvc.DetailsUpdate) (*domain.Cart, error) {
	s.gotCartID = cartID
	return s.cart, s.err
}

func (s *stubManager) DeleteCart(_ context.Context, cartID string) error {
	s.gotCartID = cartID
	return s.err
}

func (s *stubManager) AddItem(_ context.Context, cartID string, item domain.CartItem) (*domain.CartUpdateResult, error) {
	s.gotCartID, s.gotItem = cartID, item
	return s.result, s.err
}

func (s *stubManager) UpdateItem(_ context.Context, cartID string, item domain.CartItem) (*domain.CartUpdateResult, error) {
	s.gotCartID, s.gotItem = cartID, item
	return s.result, s.err
}

func (s *stubManager) RemoveItem(_ context.Context, cartID, itemID string) (*domain.CartUpdateResult, error) {
	s.gotCartID, s.gotItemID = cartID, itemID
	return s.result, s.err
}

func (s *stubManager) Reorder(_ context.Context, sourceCartID string) (*domain.Cart, error) {
	s.gotCartID = sourceCartID
	return s.cart, s.err
}

func (s *stubManager) DuplicateCart(_ context.Context, sourceCartID string, _ *cartsvc.DuplicateOverrides, asTemplate bool) (*domain.Cart, error) {
	s.gotCartID, s.gotTemplate = sourceCartID, asTemplate
	return s.cart, s.err
}

func (s *stubManager) MigrateGuestActiveCart(_ context.Context, storeID, toProfileID string, strategy cartsvc.MigrationStrategy) (*domain.Cart, error) {
	s.gotStoreID, s.gotProfileID, s.gotStrategy = storeID, &toProfileID, strategy
	return s.cart, s.err
}

func (s *stubManager) GetTotals(_ context.Context, cartID string, pctx *domain.CartPricingContext, _ []domain.Promotion) (*domain.CartTotals, error) {
	s.gotCartID, s.gotPctx = cartID, pctx
	return s.totals, s.err
}

func (s *stubManager) GetTotalsForActiveCart(_ context.Context, pctx domain.CartPricingContext, _ []domain.Promotion) (*domain.CartTotals, error) {
	s.gotStoreID, s.gotPctx = pctx.StoreID, &pctx
	return s.totals, s.err
}

func (s *stubManager) ValidateBeforeCheckout(_ context.Context, cartID string) (validation.Verdict, error) {
	s.gotCartID = cartID
	return s.verdict, s.err
}

func serve(t *testing.T, manager CartManager, method, path string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	router := buildRouter(log.New(io.Discard, "", 0), nil, manager)
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewReader(data)
}

func TestSetActiveCartRoute(t *testing.T) {
	stub := &stubManager{cart: &domain.Cart{ID: "c1", StoreID: "s1", Status: domain.StatusActive}}

	rec := serve(t, stub, http.MethodPost, "/stores/s1/active-cart",
		jsonBody(t, map[string]string{"profileId": "u1"}))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if stub.gotStoreID != "s1" {
		t.Fatalf("storeID = %q", stub.gotStoreID)
	}
	if stub.gotProfileID == nil || *stub.gotProfileID != "u1" {
		t.Fatalf("profileID not forwarded")
	}

	var got domain.Cart
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != "c1" {
		t.Fatalf("cart id = %q", got.ID)
	}
}

func TestSetActiveCartEmptyBodyMeansGuest(t *testing.T) {
	stub := &stubManager{cart: &domain.Cart{ID: "c1", StoreID: "s1", Status: domain.StatusActive}}

	rec := serve(t, stub, http.MethodPost, "/stores/s1/active-cart", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if stub.gotProfileID != nil {
		t.Fatalf("empty body must mean guest scope")
	}
}

func TestUpdateStatusRoute(t *testing.T) {
	stub := &stubManager{cart: &domain.Cart{ID: "c1", Status: domain.StatusCancelled}}

	rec := serve(t, stub, http.MethodPatch, "/carts/c1/status",
		jsonBody(t, map[string]string{"status": "cancelled"}))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if stub.gotCartID != "c1" || stub.gotStatus != domain.StatusCancelled {
		t.Fatalf("got %q %q", stub.gotCartID, stub.gotStatus)
	}
}

func TestUpdateStatusMissingField(t *testing.T) {
	stub := &stubManager{}
	rec := serve(t, stub, http.MethodPatch, "/carts/c1/status", jsonBody(t, map[string]string{}))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", domain.ValidationError("nope"), http.StatusUnprocessableEntity},
		{"conflict", domain.ConflictError("busy"), http.StatusConflict},
		{"storage", domain.StorageError(io.ErrUnexpectedEOF), http.StatusServiceUnavailable},
		{"unknown", io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubManager{err: tc.err}
			rec := serve(t, stub, http.MethodPatch, "/carts/c1/status",
				jsonBody(t, map[string]string{"status": "cancelled"}))
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestDeleteCartRoute(t *testing.T) {
	stub := &stubManager{}
	rec := serve(t, stub, http.MethodDelete, "/carts/c1", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if stub.gotCartID != "c1" {
		t.Fatalf("cartID = %q", stub.gotCartID)
	}
}

func TestAddItemRoute(t *testing.T) {
	stub := &stubManager{result: &domain.CartUpdateResult{Cart: &domain.Cart{ID: "c1"}}}

	item := domain.CartItem{ProductID: "burger", Quantity: 2,
		UnitPrice: domain.NewMoney(decimal.NewFromInt(10), "USD")}
	rec := serve(t, stub, http.MethodPost, "/carts/c1/items", jsonBody(t, item))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if stub.gotItem.ProductID != "burger" || stub.gotItem.Quantity != 2 {
		t.Fatalf("item not forwarded: %+v", stub.gotItem)
	}
}

func TestUpdateItemRouteUsesPathID(t *testing.T) {
	stub := &stubManager{result: &domain.CartUpdateResult{Cart: &domain.Cart{ID: "c1"}}}

	item := domain.CartItem{ID: "body-id", ProductID: "burger", Quantity: 1,
		UnitPrice: domain.NewMoney(decimal.NewFromInt(10), "USD")}
	rec := serve(t, stub, http.MethodPut, "/carts/c1/items/i9", jsonBody(t, item))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if stub.gotItem.ID != "i9" {
		t.Fatalf("path item id must win over body, got %q", stub.gotItem.ID)
	}
}

func TestRemoveItemRoute(t *testing.T) {
	stub := &stubManager{result: &domain.CartUpdateResult{Cart: &domain.Cart{ID: "c1"}}}
	rec := serve(t, stub, http.MethodDelete, "/carts/c1/items/i1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if stub.gotCartID != "c1" || stub.gotItemID != "i1" {
		t.Fatalf("got %q %q", stub.gotCartID, stub.gotItemID)
	}
}

func TestReorderRoute(t *testing.T) {
	stub := &stubManager{cart: &domain.Cart{ID: "c2", Status: domain.StatusActive}}
	rec := serve(t, stub, http.MethodPost, "/carts/c1/reorder", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if stub.gotCartID != "c1" {
		t.Fatalf("source cart = %q", stub.gotCartID)
	}
}

func TestDuplicateRoute(t *testing.T) {
	stub := &stubManager{cart: &domain.Cart{ID: "c2"}}
	rec := serve(t, stub, http.MethodPost, "/carts/c1/duplicate",
		jsonBody(t, map[string]interface{}{"asTemplate": true}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if !stub.gotTemplate {
		t.Fatalf("asTemplate not forwarded")
	}
}

func TestMigrateRoute(t *testing.T) {
	stub := &stubManager{cart: &domain.Cart{ID: "c1"}}

	rec := serve(t, stub, http.MethodPost, "/stores/s1/migrations",
		jsonBody(t, map[string]string{"toProfileId": "u1", "strategy": "move"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if stub.gotStoreID != "s1" || stub.gotStrategy != cartsvc.MigrateMove {
		t.Fatalf("got %q %q", stub.gotStoreID, stub.gotStrategy)
	}

	rec = serve(t, stub, http.MethodPost, "/stores/s1/migrations",
		jsonBody(t, map[string]string{"strategy": "move"}))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing toProfileId should 400, got %d", rec.Code)
	}
}

func TestActiveCartTotalsRoute(t *testing.T) {
	zero := domain.ZeroMoney("USD")
	stub := &stubManager{totals: &domain.CartTotals{
		Subtotal: domain.NewMoney(decimal.NewFromInt(10), "USD"),
		Tax:      zero, ServiceFee: zero, DeliveryFee: zero,
		GrandTotal: domain.NewMoney(decimal.NewFromInt(10), "USD"),
	}}

	rec := serve(t, stub, http.MethodPost, "/stores/s1/active-cart/totals", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if stub.gotPctx == nil || stub.gotPctx.StoreID != "s1" {
		t.Fatalf("store must come from the path, got %+v", stub.gotPctx)
	}
}

func TestActiveCartTotalsNoActiveCart(t *testing.T) {
	stub := &stubManager{totals: nil}
	rec := serve(t, stub, http.MethodPost, "/stores/s1/active-cart/totals", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("no active cart must yield 204, got %d", rec.Code)
	}
}

func TestValidationRoute(t *testing.T) {
	stub := &stubManager{verdict: validation.Invalid("too small")}
	rec := serve(t, stub, http.MethodGet, "/carts/c1/validation", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var verdict validation.Verdict
	if err := json.Unmarshal(rec.Body.Bytes(), &verdict); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if verdict.Valid || verdict.Reason != "too small" {
		t.Fatalf("verdict = %+v", verdict)
	}
}

func TestHealthRoutes(t *testing.T) {
	stub := &stubManager{}
	if rec := serve(t, stub, http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
		t.Fatalf("healthz = %d", rec.Code)
	}
	if rec := serve(t, stub, http.MethodGet, "/readyz", nil); rec.Code != http.StatusOK {
		t.Fatalf("readyz without a db must be ready, got %d", rec.Code)
	}
}
