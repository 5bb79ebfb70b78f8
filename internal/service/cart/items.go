package cart

import (
	"context"

	"github.com/Karim-ezzedine/MultiCart/internal/analytics"
	"github.com/Karim-ezzedine/MultiCart/internal/domain"
)

// AddItem appends an item to an active cart through the mutation pipeline:
// validate the proposed item, mutate in memory, detect catalog conflicts,
// optionally resolve them, persist, notify. An empty item id is filled in.
func (m *Manager) AddItem(ctx context.Context, cartID string, item domain.CartItem) (*domain.CartUpdateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cart, err := m.loadActive(ctx, cartID)
	if err != nil {
		return nil, err
	}

	if item.ID == "" {
		item.ID = m.newID()
	}
	item = normalizeItem(item)

	if err := m.checkItemChange(ctx, cart, item); err != nil {
		return nil, err
	}

	cart.Items = append(cart.Items, item)
	return m.commitItemMutation(ctx, cart, analytics.NotifyItemAdded, item.ID, nil, []domain.CartItem{item})
}

// UpdateItem replaces the cart item carrying the same id. Matching is by
// item id, never by product id.
func (m *Manager) UpdateItem(ctx context.Context, cartID string, item domain.CartItem) (*domain.CartUpdateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cart, err := m.loadActive(ctx, cartID)
	if err != nil {
		return nil, err
	}

	idx := cart.ItemIndex(item.ID)
	if idx < 0 {
		return nil, domain.ConflictError("item " + item.ID + " not found in cart " + cartID)
	}
	item = normalizeItem(item)

	if err := m.checkItemChange(ctx, cart, item); err != nil {
		return nil, err
	}

	cart.Items[idx] = item
	return m.commitItemMutation(ctx, cart, analytics.NotifyItemUpdated, item.ID, nil, []domain.CartItem{item})
}

// RemoveItem drops the cart item with the given id.
func (m *Manager) RemoveItem(ctx context.Context, cartID, itemID string) (*domain.CartUpdateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cart, err := m.loadActive(ctx, cartID)
	if err != nil {
		return nil, err
	}

	idx := cart.ItemIndex(itemID)
	if idx < 0 {
		return nil, domain.ConflictError("item " + itemID + " not found in cart " + cartID)
	}

	removed := cart.Items[idx]
	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	return m.commitItemMutation(ctx, cart, analytics.NotifyItemRemoved, itemID, []domain.CartItem{removed}, nil)
}

func (m *Manager) loadActive(ctx context.Context, cartID string) (*domain.Cart, error) {
	cart, err := m.load(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if cart.Status != domain.StatusActive {
		return nil, domain.ConflictError("cart " + cartID + " is not active")
	}
	return cart, nil
}

func (m *Manager) checkItemChange(ctx context.Context, cart *domain.Cart, proposed domain.CartItem) error {
	verdict, err := m.validator.ValidateItemChange(ctx, cart, proposed)
	if err != nil {
		return err
	}
	if !verdict.Valid {
		return domain.ValidationError(verdict.Reason)
	}
	return nil
}

// commitItemMutation runs the tail of the pipeline on the already-mutated
// cart: conflict detection, optional resolution, persist, notify. Detected
// conflicts are always reported, including resolver-accepted ones; without
// a resolver the cart persists as mutated alongside the report.
func (m *Manager) commitItemMutation(
	ctx context.Context,
	cart *domain.Cart,
	itemNote, itemID string,
	removed, changed []domain.CartItem,
) (*domain.CartUpdateResult, error) {
	conflicts, err := m.detector.Detect(ctx, cart)
	if err != nil {
		return nil, err
	}

	final := cart
	if len(conflicts) > 0 && m.resolver != nil {
		resolved, err := m.resolver.Resolve(ctx, cart, domain.ConflictError("cart diverged from catalog"))
		if err != nil {
			return nil, err
		}
		removed, changed = mergeResolverDiff(cart, resolved, removed, changed)
		final = resolved
	}

	final.UpdatedAt = m.now()
	if err := m.save(ctx, final); err != nil {
		return nil, err
	}

	var fx effects
	fx.item(itemNote, final.StoreID, final.ProfileID, final.ID, itemID)
	fx.updated(final.StoreID, final.ProfileID, final.ID)
	m.flush(ctx, fx)

	return &domain.CartUpdateResult{
		Cart:         final,
		RemovedItems: removed,
		ChangedItems: changed,
		Conflicts:    conflicts,
	}, nil
}

// mergeResolverDiff folds resolver edits into the reported item sets:
// items the resolver dropped join the removed set, items it rewrote join
// the changed set.
func mergeResolverDiff(before, after *domain.Cart, removed, changed []domain.CartItem) ([]domain.CartItem, []domain.CartItem) {
	for _, old := range before.Items {
		idx := after.ItemIndex(old.ID)
		if idx < 0 {
			removed = append(removed, old)
			continue
		}
		if !itemsEqual(old, after.Items[idx]) {
			changed = appendItemOnce(changed, after.Items[idx])
		}
	}
	return removed, changed
}

func appendItemOnce(items []domain.CartItem, item domain.CartItem) []domain.CartItem {
	for i := range items {
		if items[i].ID == item.ID {
			items[i] = item
			return items
		}
	}
	return append(items, item)
}

func itemsEqual(a, b domain.CartItem) bool {
	if a.ID != b.ID || a.ProductID != b.ProductID || a.Quantity != b.Quantity {
		return false
	}
	if !a.UnitPrice.Equal(b.UnitPrice) || !a.TotalPrice.Equal(b.TotalPrice) {
		return false
	}
	if len(a.Modifiers) != len(b.Modifiers) {
		return false
	}
	for i := range a.Modifiers {
		if a.Modifiers[i].ID != b.Modifiers[i].ID ||
			a.Modifiers[i].Name != b.Modifiers[i].Name ||
			!a.Modifiers[i].PriceDelta.Equal(b.Modifiers[i].PriceDelta) {
			return false
		}
	}
	return true
}

// normalizeItem recomputes the line total so persisted totals always agree
// with unit price, modifiers and quantity.
func normalizeItem(item domain.CartItem) domain.CartItem {
	if line, err := item.LineTotal(); err == nil {
		item.TotalPrice = line
	}
	return item
}
