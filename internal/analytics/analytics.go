package analytics

import "context"

// Notification names the manager emits. Every notification fires strictly
// after the corresponding persisted operation succeeded.
const (
	NotifyCreated           = "cart.created"
	NotifyUpdated           = "cart.updated"
	NotifyDeleted           = "cart.deleted"
	NotifyItemAdded         = "cart.item.added"
	NotifyItemUpdated       = "cart.item.updated"
	NotifyItemRemoved       = "cart.item.removed"
	NotifyActiveCartChanged = "cart.active.changed"
)

// Notification is one post-commit lifecycle fact. ActiveCartID is only
// meaningful for NotifyActiveCartChanged and is nil when the scope lost its
// active cart.
type Notification struct {
	Name         string  `json:"name"`
	CartID       string  `json:"cartId,omitempty"`
	StoreID      string  `json:"storeId"`
	ProfileID    *string `json:"profileId,omitempty"`
	ItemID       string  `json:"itemId,omitempty"`
	ActiveCartID *string `json:"activeCartId,omitempty"`
}

// Sink receives post-commit notifications. Delivery is best-effort: the
// operation that produced the notification has already committed, so sink
// failures must not surface to the caller.
type Sink interface {
	Notify(ctx context.Context, n Notification)
}

// NoopSink discards notifications; the wired default.
type NoopSink struct{}

func NewNoopSink() *NoopSink {
	return &NoopSink{}
}

func (NoopSink) Notify(context.Context, Notification) {}
