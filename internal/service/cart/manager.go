package cart

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Karim-ezzedine/MultiCart/internal/analytics"
	"github.com/Karim-ezzedine/MultiCart/internal/conflict"
	"github.com/Karim-ezzedine/MultiCart/internal/domain"
	"github.com/Karim-ezzedine/MultiCart/internal/pricing"
	cartrepo "github.com/Karim-ezzedine/MultiCart/internal/repository/cart"
	"github.com/Karim-ezzedine/MultiCart/internal/validation"
)

// Manager is the sole mutation entry point for carts. Every public
// operation runs under one mutex, so the read-modify-write cycle of any
// operation is serialized against all others; that is what keeps the
// single-active-cart-per-scope invariant and rules out lost updates.
//
// Notifications and stream events fire strictly after the final persist of
// an operation, in operation order, and never on a failed operation.
type Manager struct {
	mu sync.Mutex

	store     cartrepo.Store
	pricer    pricing.Engine
	promoter  pricing.PromotionEngine
	validator validation.Engine
	detector  conflict.Detector
	resolver  conflict.Resolver
	sink      analytics.Sink
	logger    *log.Logger

	now   func() time.Time
	newID func() string

	subscribers []func(Event)
}

// Config assembles the manager's collaborators. Store is required; every
// other port falls back to the package default. Resolver is optional: with
// no resolver, detected conflicts are reported but the mutation persists.
type Config struct {
	Store            cartrepo.Store
	Pricing          pricing.Engine
	Promotions       pricing.PromotionEngine
	Validation       validation.Engine
	ConflictDetector conflict.Detector
	ConflictResolver conflict.Resolver
	Analytics        analytics.Sink
	Logger           *log.Logger

	// Now and NewID exist for deterministic tests.
	Now   func() time.Time
	NewID func() string
}

func New(cfg Config) (*Manager, error) {
	if cfg.Store == nil {
		return nil, errors.New("cart store is required")
	}
	m := &Manager{
		store:     cfg.Store,
		pricer:    cfg.Pricing,
		promoter:  cfg.Promotions,
		validator: cfg.Validation,
		detector:  cfg.ConflictDetector,
		resolver:  cfg.ConflictResolver,
		sink:      cfg.Analytics,
		logger:    cfg.Logger,
		now:       cfg.Now,
		newID:     cfg.NewID,
	}
	if m.pricer == nil {
		m.pricer = pricing.NewDefaultEngine()
	}
	if m.promoter == nil {
		m.promoter = pricing.NewDefaultPromotionEngine()
	}
	if m.validator == nil {
		m.validator = validation.NewDefaultEngine(validation.Config{})
	}
	if m.detector == nil {
		m.detector = conflict.NewNoopDetector()
	}
	if m.sink == nil {
		m.sink = analytics.NewNoopSink()
	}
	if m.now == nil {
		m.now = func() time.Time { return time.Now().UTC() }
	}
	if m.newID == nil {
		m.newID = uuid.NewString
	}
	return m, nil
}

// Subscribe registers an observer for the post-commit event stream.
// Observers run synchronously, in registration order, after the operation
// that produced the event committed. Not safe to call concurrently with
// operations; register observers during setup.
func (m *Manager) Subscribe(fn func(Event)) {
	m.subscribers = append(m.subscribers, fn)
}

// SetActiveCart returns the scope's active cart, creating and persisting an
// empty one when the scope has none.
func (m *Manager) SetActiveCart(ctx context.Context, storeID string, profileID *string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, err := m.activeCart(ctx, storeID, profileID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := m.now()
	cart := &domain.Cart{
		ID:        m.newID(),
		StoreID:   storeID,
		ProfileID: cloneProfileID(profileID),
		Items:     []domain.CartItem{},
		Status:    domain.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.save(ctx, cart); err != nil {
		return nil, err
	}

	var fx effects
	fx.created(storeID, profileID, cart.ID)
	fx.activeCartChanged(storeID, profileID, &cart.ID)
	m.flush(ctx, fx)
	return cart, nil
}

// UpdateStatus applies the status transition rule: same status is a no-op,
// active may move to any terminal status, everything else is a conflict.
// Checked-out carts additionally need a profile and a passing full-cart
// validation.
func (m *Manager) UpdateStatus(ctx context.Context, cartID string, newStatus domain.CartStatus) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !newStatus.Valid() {
		return nil, domain.ConflictError("unknown status " + string(newStatus))
	}

	cart, err := m.load(ctx, cartID)
	if err != nil {
		return nil, err
	}

	if cart.Status == newStatus {
		return cart, nil
	}
	if cart.Status != domain.StatusActive {
		return nil, domain.ConflictError("cart " + cartID + " is " + string(cart.Status) + ", terminal statuses are permanent")
	}

	if newStatus == domain.StatusCheckedOut {
		if cart.IsGuest() {
			return nil, domain.ValidationError("guest cart cannot be checked out")
		}
		verdict, err := m.validator.Validate(ctx, cart)
		if err != nil {
			return nil, err
		}
		if !verdict.Valid {
			return nil, domain.ValidationError(verdict.Reason)
		}
	}

	cart.Status = newStatus
	cart.UpdatedAt = m.now()
	if err := m.save(ctx, cart); err != nil {
		return nil, err
	}

	var fx effects
	fx.updated(cart.StoreID, cart.ProfileID, cart.ID)
	fx.activeCartChanged(cart.StoreID, cart.ProfileID, nil)
	m.flush(ctx, fx)
	return cart, nil
}

// DetailsUpdate carries the optional fields of UpdateCartDetails. Nil
// fields are left untouched; a provided metadata map replaces the cart's
// metadata wholesale.
type DetailsUpdate struct {
	DisplayName   *string
	Context       *string
	StoreImageURL *string
	Metadata      map[string]string
	MinSubtotal   *domain.Money
	MaxItemCount  *int
}

func (m *Manager) UpdateCartDetails(ctx context.Context, cartID string, update DetailsUpdate) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cart, err := m.load(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if cart.Status != domain.StatusActive {
		return nil, domain.ConflictError("cart " + cartID + " is not active")
	}

	if update.DisplayName != nil {
		cart.DisplayName = update.DisplayName
	}
	if update.Context != nil {
		cart.Context = update.Context
	}
	if update.StoreImageURL != nil {
		cart.StoreImageURL = update.StoreImageURL
	}
	if update.Metadata != nil {
		cart.Metadata = update.Metadata
	}
	if update.MinSubtotal != nil {
		cart.MinSubtotal = update.MinSubtotal
	}
	if update.MaxItemCount != nil {
		cart.MaxItemCount = update.MaxItemCount
	}

	cart.UpdatedAt = m.now()
	if err := m.save(ctx, cart); err != nil {
		return nil, err
	}

	var fx effects
	fx.updated(cart.StoreID, cart.ProfileID, cart.ID)
	m.flush(ctx, fx)
	return cart, nil
}

// DeleteCart removes a cart. Deleting a missing cart is a successful no-op;
// this is the one place where a missing cart is not a conflict.
func (m *Manager) DeleteCart(ctx context.Context, cartID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cart, err := m.store.Load(ctx, cartID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return domain.StorageError(err)
	}

	var fx effects
	return m.deleteLoaded(ctx, cart, &fx)
}

// deleteLoaded runs the delete path for an already-loaded cart, queueing
// deleted and, for an active cart, active-cart-changed(nil).
func (m *Manager) deleteLoaded(ctx context.Context, cart *domain.Cart, fx *effects) error {
	if err := m.store.Delete(ctx, cart.ID); err != nil {
		return domain.StorageError(err)
	}
	fx.deleted(cart.StoreID, cart.ProfileID, cart.ID)
	if cart.Status == domain.StatusActive {
		fx.activeCartChanged(cart.StoreID, cart.ProfileID, nil)
	}
	m.flush(ctx, *fx)
	return nil
}

// activeCart is the single scope+status=active query, limit 1.
func (m *Manager) activeCart(ctx context.Context, storeID string, profileID *string) (*domain.Cart, error) {
	carts, err := m.store.Fetch(ctx, cartrepo.Query{
		StoreID:   storeID,
		ProfileID: profileID,
		Statuses:  []domain.CartStatus{domain.StatusActive},
		Sort:      cartrepo.SortCreatedAtDesc,
	}, 1)
	if err != nil {
		return nil, domain.StorageError(err)
	}
	if len(carts) == 0 {
		return nil, nil
	}
	return carts[0], nil
}

func (m *Manager) load(ctx context.Context, cartID string) (*domain.Cart, error) {
	cart, err := m.store.Load(ctx, cartID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ConflictError("cart " + cartID + " not found")
		}
		return nil, domain.StorageError(err)
	}
	return cart, nil
}

func (m *Manager) save(ctx context.Context, cart *domain.Cart) error {
	if err := m.store.Save(ctx, cart); err != nil {
		return domain.StorageError(err)
	}
	return nil
}

// flush delivers queued effects after a successful commit: sink first, then
// the event stream, preserving operation order.
func (m *Manager) flush(ctx context.Context, fx effects) {
	for _, ef := range fx.list {
		m.sink.Notify(ctx, ef.note)
		if ef.event == nil {
			continue
		}
		for _, fn := range m.subscribers {
			fn(*ef.event)
		}
	}
}

func (m *Manager) logf(format string, args ...interface{}) {
	if m.logger != nil {
		m.logger.Printf(format, args...)
	}
}

func cloneProfileID(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
