package cart

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Karim-ezzedine/MultiCart/internal/domain"
)

// countingStore wraps a Store and counts inner loads, so tests can tell a
// cache hit from a fallthrough.
type countingStore struct {
	Store
	loads int
}

func (s *countingStore) Load(ctx context.Context, id string) (*domain.Cart, error) {
	s.loads++
	return s.Store.Load(ctx, id)
}

func newCachedFixture(t *testing.T) (*CachedStore, *countingStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	inner := &countingStore{Store: NewMemoryStore()}
	return NewCachedStore(inner, client, time.Minute, nil), inner, mr
}

func sampleCart(id string) *domain.Cart {
	return &domain.Cart{
		ID:      id,
		StoreID: "s1",
		Status:  domain.StatusActive,
		Items: []domain.CartItem{{
			ID: "i1", ProductID: "burger", Quantity: 2,
			UnitPrice:  domain.NewMoney(decimal.NewFromInt(10), "USD"),
			TotalPrice: domain.NewMoney(decimal.NewFromInt(20), "USD"),
		}},
		CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestCachedStoreReadThrough(t *testing.T) {
	cached, inner, mr := newCachedFixture(t)
	ctx := context.Background()

	require.NoError(t, cached.Save(ctx, sampleCart("c1")))

	first, err := cached.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.loads, "first load goes to the inner store")
	assert.True(t, mr.Exists(cacheKey("c1")), "first load populates the cache")

	second, err := cached.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.loads, "second load is served from cache")
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Items[0].Quantity, second.Items[0].Quantity)
	assert.True(t, first.Items[0].UnitPrice.Equal(second.Items[0].UnitPrice))
}

func TestCachedStoreLoadMissing(t *testing.T) {
	cached, _, _ := newCachedFixture(t)

	_, err := cached.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCachedStoreSaveInvalidates(t *testing.T) {
	cached, inner, mr := newCachedFixture(t)
	ctx := context.Background()

	require.NoError(t, cached.Save(ctx, sampleCart("c1")))
	_, err := cached.Load(ctx, "c1")
	require.NoError(t, err)
	require.True(t, mr.Exists(cacheKey("c1")))

	updated := sampleCart("c1")
	updated.Items[0].Quantity = 7
	require.NoError(t, cached.Save(ctx, updated))
	assert.False(t, mr.Exists(cacheKey("c1")), "save must drop the stale entry")

	got, err := cached.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 7, got.Items[0].Quantity)
	assert.Equal(t, 2, inner.loads)
}

func TestCachedStoreDeleteInvalidates(t *testing.T) {
	cached, _, mr := newCachedFixture(t)
	ctx := context.Background()

	require.NoError(t, cached.Save(ctx, sampleCart("c1")))
	_, err := cached.Load(ctx, "c1")
	require.NoError(t, err)
	require.True(t, mr.Exists(cacheKey("c1")))

	require.NoError(t, cached.Delete(ctx, "c1"))
	assert.False(t, mr.Exists(cacheKey("c1")))

	_, err = cached.Load(ctx, "c1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCachedStoreCorruptEntryFallsBack(t *testing.T) {
	cached, inner, mr := newCachedFixture(t)
	ctx := context.Background()

	require.NoError(t, cached.Save(ctx, sampleCart("c1")))
	require.NoError(t, mr.Set(cacheKey("c1"), "{not json"))

	got, err := cached.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", got.ID)
	assert.Equal(t, 1, inner.loads, "corrupt entry falls through to the inner store")
}

func TestCachedStoreFetchBypassesCache(t *testing.T) {
	cached, _, mr := newCachedFixture(t)
	ctx := context.Background()

	require.NoError(t, cached.Save(ctx, sampleCart("c1")))

	carts, err := cached.Fetch(ctx, Query{StoreID: "s1"}, 0)
	require.NoError(t, err)
	require.Len(t, carts, 1)
	assert.False(t, mr.Exists(cacheKey("c1")), "fetch must not populate the cache")
}
