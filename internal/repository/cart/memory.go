package cart

import (
	"context"
	"sort"
	"sync"

	"github.com/Karim-ezzedine/MultiCart/internal/domain"
)

// MemoryStore is a deterministic in-memory Store. It deep-copies carts on
// the way in and out, so callers never share state with the store.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string]*domain.Cart
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]*domain.Cart)}
}

func (s *MemoryStore) Load(_ context.Context, id string) (*domain.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.carts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, cart *domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[cart.ID] = cart.Clone()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, id)
	return nil
}

func (s *MemoryStore) Fetch(_ context.Context, q Query, limit int) ([]*domain.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Cart
	for _, c := range s.carts {
		if !matches(c, q) {
			continue
		}
		out = append(out, c.Clone())
	}

	sortCarts(out, q.Sort)

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Len reports the number of stored carts. Test helper.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.carts)
}

func matches(c *domain.Cart, q Query) bool {
	if c.StoreID != q.StoreID {
		return false
	}
	switch {
	case q.ProfileID == nil:
		if c.ProfileID != nil {
			return false
		}
	case c.ProfileID == nil || *c.ProfileID != *q.ProfileID:
		return false
	}
	if len(q.Statuses) == 0 {
		return true
	}
	for _, st := range q.Statuses {
		if c.Status == st {
			return true
		}
	}
	return false
}

func sortCarts(carts []*domain.Cart, by Sort) {
	sort.SliceStable(carts, func(i, j int) bool {
		a, b := carts[i], carts[j]
		switch by {
		case SortCreatedAtDesc:
			return a.CreatedAt.After(b.CreatedAt)
		case SortUpdatedAtAsc:
			return a.UpdatedAt.Before(b.UpdatedAt)
		case SortUpdatedAtDesc:
			return a.UpdatedAt.After(b.UpdatedAt)
		default: // SortCreatedAtAsc
			return a.CreatedAt.Before(b.CreatedAt)
		}
	})
}
