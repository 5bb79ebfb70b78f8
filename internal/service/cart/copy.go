package cart

import (
	"context"

	"github.com/Karim-ezzedine/MultiCart/internal/domain"
)

// TemplateMetadataKey marks carts produced by DuplicateCart as templates.
const TemplateMetadataKey = "multicart.template"

// MigrationStrategy selects how MigrateGuestActiveCart re-scopes a guest
// cart onto a profile.
type MigrationStrategy string

const (
	// MigrateMove re-scopes the guest cart in place, keeping its CartID.
	MigrateMove MigrationStrategy = "move"
	// MigrateCopyAndDelete copies the guest cart into the profile scope
	// with regenerated item ids, then deletes the guest cart.
	MigrateCopyAndDelete MigrationStrategy = "copyAndDelete"
)

// Reorder creates a fresh active cart from any existing cart. A current
// active cart in the source's scope is force-expired first; the expire and
// the new save are two sequential persisted writes under the manager lock,
// so a crash in between leaves the scope with no active cart, which the
// next SetActiveCart repairs.
func (m *Manager) Reorder(ctx context.Context, sourceCartID string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	source, err := m.load(ctx, sourceCartID)
	if err != nil {
		return nil, err
	}

	var fx effects
	active, err := m.activeCart(ctx, source.StoreID, source.ProfileID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		// Internal scope reclaim, not a user transition: bypasses the
		// terminal-state rule on purpose.
		active.Status = domain.StatusExpired
		active.UpdatedAt = m.now()
		if err := m.save(ctx, active); err != nil {
			return nil, err
		}
		m.logf("reorder: expired active cart %s in store %s", active.ID, active.StoreID)
		fx.updated(active.StoreID, active.ProfileID, active.ID)
	}

	fresh := m.copyCart(source)
	fresh.Status = domain.StatusActive
	if err := m.save(ctx, fresh); err != nil {
		return nil, err
	}

	fx.created(fresh.StoreID, fresh.ProfileID, fresh.ID)
	fx.activeCartChanged(fresh.StoreID, fresh.ProfileID, &fresh.ID)
	m.flush(ctx, fx)
	return fresh, nil
}

// DuplicateOverrides replace the matching source field when provided.
type DuplicateOverrides struct {
	DisplayName   *string
	Context       *string
	Metadata      map[string]string
	StoreImageURL *string
	MinSubtotal   *domain.Money
	MaxItemCount  *int
}

// DuplicateCart copies a cart without touching the scope's active cart.
// Template copies are stored expired with a template marker; a plain copy
// is stored active unless the scope already holds an active cart, in which
// case it is stored expired so a scope never gains a second active cart.
func (m *Manager) DuplicateCart(ctx context.Context, sourceCartID string, overrides *DuplicateOverrides, asTemplate bool) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	source, err := m.load(ctx, sourceCartID)
	if err != nil {
		return nil, err
	}

	copyCart := m.copyCart(source)

	switch {
	case asTemplate:
		copyCart.Status = domain.StatusExpired
		if copyCart.Metadata == nil {
			copyCart.Metadata = make(map[string]string, 1)
		}
		copyCart.Metadata[TemplateMetadataKey] = "true"
	default:
		active, err := m.activeCart(ctx, source.StoreID, source.ProfileID)
		if err != nil {
			return nil, err
		}
		if active == nil {
			copyCart.Status = domain.StatusActive
		} else {
			copyCart.Status = domain.StatusExpired
		}
	}

	if overrides != nil {
		if overrides.DisplayName != nil {
			copyCart.DisplayName = overrides.DisplayName
		}
		if overrides.Context != nil {
			copyCart.Context = overrides.Context
		}
		if overrides.Metadata != nil {
			merged := make(map[string]string, len(overrides.Metadata)+1)
			for k, v := range overrides.Metadata {
				merged[k] = v
			}
			if asTemplate {
				merged[TemplateMetadataKey] = "true"
			}
			copyCart.Metadata = merged
		}
		if overrides.StoreImageURL != nil {
			copyCart.StoreImageURL = overrides.StoreImageURL
		}
		if overrides.MinSubtotal != nil {
			copyCart.MinSubtotal = overrides.MinSubtotal
		}
		if overrides.MaxItemCount != nil {
			copyCart.MaxItemCount = overrides.MaxItemCount
		}
	}

	if err := m.save(ctx, copyCart); err != nil {
		return nil, err
	}

	var fx effects
	fx.created(copyCart.StoreID, copyCart.ProfileID, copyCart.ID)
	m.flush(ctx, fx)
	return copyCart, nil
}

// MigrateGuestActiveCart moves the store's active guest cart into a
// profile scope. It requires an active guest cart and an empty profile
// scope; otherwise nothing is modified.
func (m *Manager) MigrateGuestActiveCart(ctx context.Context, storeID, toProfileID string, strategy MigrationStrategy) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	guest, err := m.activeCart(ctx, storeID, nil)
	if err != nil {
		return nil, err
	}
	if guest == nil {
		return nil, domain.ConflictError("no active guest cart for store " + storeID)
	}

	existing, err := m.activeCart(ctx, storeID, &toProfileID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ConflictError("profile " + toProfileID + " already has an active cart in store " + storeID)
	}

	switch strategy {
	case MigrateMove:
		guest.ProfileID = &toProfileID
		guest.Status = domain.StatusActive
		guest.UpdatedAt = m.now()
		if err := m.save(ctx, guest); err != nil {
			return nil, err
		}
		var fx effects
		fx.updated(storeID, &toProfileID, guest.ID)
		fx.activeCartChanged(storeID, &toProfileID, &guest.ID)
		m.flush(ctx, fx)
		m.logf("migrated guest cart %s to profile %s in store %s", guest.ID, toProfileID, storeID)
		return guest, nil

	case MigrateCopyAndDelete:
		migrated := m.copyCart(guest)
		migrated.ProfileID = &toProfileID
		migrated.Status = domain.StatusActive
		if err := m.save(ctx, migrated); err != nil {
			return nil, err
		}
		var fx effects
		fx.created(storeID, &toProfileID, migrated.ID)
		fx.activeCartChanged(storeID, &toProfileID, &migrated.ID)
		m.flush(ctx, fx)

		var deleteFx effects
		if err := m.deleteLoaded(ctx, guest, &deleteFx); err != nil {
			return nil, err
		}
		return migrated, nil

	default:
		return nil, domain.ConflictError("unknown migration strategy " + string(strategy))
	}
}

// copyCart clones presentation fields and items from the source, with a new
// cart id, regenerated item ids and fresh timestamps. Item content is
// otherwise preserved exactly. Status is left for the caller to set.
func (m *Manager) copyCart(source *domain.Cart) *domain.Cart {
	now := m.now()
	out := source.Clone()
	out.ID = m.newID()
	out.CreatedAt = now
	out.UpdatedAt = now
	for i := range out.Items {
		out.Items[i].ID = m.newID()
	}
	return out
}
