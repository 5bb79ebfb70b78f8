package conflict

import (
	"context"

	"github.com/Karim-ezzedine/MultiCart/internal/domain"
)

// Detector flags divergence between a cart and the external catalog. It is
// a pure query; the manager decides what happens with the findings.
type Detector interface {
	Detect(ctx context.Context, cart *domain.Cart) ([]domain.CartCatalogConflict, error)
}

// Resolver decides how a flagged divergence is handled: it returns either
// an accepted (possibly edited) cart to persist, or an error that aborts
// the whole operation before persistence.
type Resolver interface {
	Resolve(ctx context.Context, cart *domain.Cart, reason error) (*domain.Cart, error)
}

// NoopDetector never reports conflicts. Conflict detection is opt-in
// infrastructure; this is the wired default.
type NoopDetector struct{}

func NewNoopDetector() *NoopDetector {
	return &NoopDetector{}
}

func (NoopDetector) Detect(context.Context, *domain.Cart) ([]domain.CartCatalogConflict, error) {
	return nil, nil
}
