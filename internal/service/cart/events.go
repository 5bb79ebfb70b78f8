package cart

import (
	"github.com/Karim-ezzedine/MultiCart/internal/analytics"
)

// EventKind discriminates stream events.
type EventKind string

const (
	EventCartCreated       EventKind = "cartCreated"
	EventCartUpdated       EventKind = "cartUpdated"
	EventCartDeleted       EventKind = "cartDeleted"
	EventActiveCartChanged EventKind = "activeCartChanged"
)

// Event is one entry of the manager's post-commit event stream. ActiveCartID
// is only set for EventActiveCartChanged; nil there means the scope lost its
// active cart.
type Event struct {
	Kind         EventKind
	CartID       string
	StoreID      string
	ProfileID    *string
	ActiveCartID *string
}

// effect pairs an analytics notification with its optional stream event.
// Operations queue effects while mutating and flush them only after the
// final persist succeeded, in operation order.
type effect struct {
	note  analytics.Notification
	event *Event
}

type effects struct {
	list []effect
}

func (e *effects) created(storeID string, profileID *string, cartID string) {
	e.list = append(e.list, effect{
		note: analytics.Notification{
			Name:      analytics.NotifyCreated,
			CartID:    cartID,
			StoreID:   storeID,
			ProfileID: profileID,
		},
		event: &Event{Kind: EventCartCreated, CartID: cartID, StoreID: storeID, ProfileID: profileID},
	})
}

func (e *effects) updated(storeID string, profileID *string, cartID string) {
	e.list = append(e.list, effect{
		note: analytics.Notification{
			Name:      analytics.NotifyUpdated,
			CartID:    cartID,
			StoreID:   storeID,
			ProfileID: profileID,
		},
		event: &Event{Kind: EventCartUpdated, CartID: cartID, StoreID: storeID, ProfileID: profileID},
	})
}

func (e *effects) deleted(storeID string, profileID *string, cartID string) {
	e.list = append(e.list, effect{
		note: analytics.Notification{
			Name:      analytics.NotifyDeleted,
			CartID:    cartID,
			StoreID:   storeID,
			ProfileID: profileID,
		},
		event: &Event{Kind: EventCartDeleted, CartID: cartID, StoreID: storeID, ProfileID: profileID},
	})
}

func (e *effects) activeCartChanged(storeID string, profileID *string, activeCartID *string) {
	n := analytics.Notification{
		Name:         analytics.NotifyActiveCartChanged,
		StoreID:      storeID,
		ProfileID:    profileID,
		ActiveCartID: activeCartID,
	}
	if activeCartID != nil {
		n.CartID = *activeCartID
	}
	e.list = append(e.list, effect{
		note:  n,
		event: &Event{Kind: EventActiveCartChanged, StoreID: storeID, ProfileID: profileID, ActiveCartID: activeCartID},
	})
}

// item notifies the sink only; the event stream carries cart-level events.
func (e *effects) item(name, storeID string, profileID *string, cartID, itemID string) {
	e.list = append(e.list, effect{
		note: analytics.Notification{
			Name:      name,
			CartID:    cartID,
			StoreID:   storeID,
			ProfileID: profileID,
			ItemID:    itemID,
		},
	})
}
