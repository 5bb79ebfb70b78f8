package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Karim-ezzedine/MultiCart/internal/domain"
)

var errCacheMiss = errors.New("cache miss")

// CachedStore is a read-through decorator: Load hits Redis first and falls
// back to the inner store, Save and Delete write through and invalidate.
// Fetch always passes through, since scope queries must observe writes
// immediately to keep the single-active-cart invariant checkable.
type CachedStore struct {
	inner  Store
	client *redis.Client
	ttl    time.Duration
	logger *log.Logger
}

func NewCachedStore(inner Store, client *redis.Client, ttl time.Duration, logger *log.Logger) *CachedStore {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &CachedStore{inner: inner, client: client, ttl: ttl, logger: logger}
}

func (s *CachedStore) Load(ctx context.Context, id string) (*domain.Cart, error) {
	cart, err := s.cacheGet(ctx, id)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, errCacheMiss) {
		s.logf("cache get %s: %v", id, err)
	}

	cart, err = s.inner.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cacheSet(ctx, cart); err != nil {
		s.logf("cache set %s: %v", id, err)
	}
	return cart, nil
}

func (s *CachedStore) Save(ctx context.Context, cart *domain.Cart) error {
	if err := s.inner.Save(ctx, cart); err != nil {
		return err
	}
	s.invalidate(ctx, cart.ID)
	return nil
}

func (s *CachedStore) Delete(ctx context.Context, id string) error {
	if err := s.inner.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *CachedStore) Fetch(ctx context.Context, q Query, limit int) ([]*domain.Cart, error) {
	return s.inner.Fetch(ctx, q, limit)
}

func (s *CachedStore) cacheGet(ctx context.Context, id string) (*domain.Cart, error) {
	data, err := s.client.Get(ctx, cacheKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cached cart: %w", err)
	}
	return &cart, nil
}

func (s *CachedStore) cacheSet(ctx context.Context, cart *domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := s.client.Set(ctx, cacheKey(cart.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *CachedStore) invalidate(ctx context.Context, id string) {
	if err := s.client.Del(ctx, cacheKey(id)).Err(); err != nil {
		s.logf("cache invalidate %s: %v", id, err)
	}
}

func (s *CachedStore) logf(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}

func cacheKey(id string) string {
	return "multicart:cart:" + id
}
