package domain

import "time"

// CartStatus enumerates the cart lifecycle states. Active is the only
// non-terminal state; every other status is permanent once reached.
type CartStatus string

const (
	StatusActive     CartStatus = "active"
	StatusCheckedOut CartStatus = "checkedOut"
	StatusCancelled  CartStatus = "cancelled"
	StatusExpired    CartStatus = "expired"
)

func (s CartStatus) Valid() bool {
	switch s {
	case StatusActive, StatusCheckedOut, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

func (s CartStatus) Terminal() bool {
	return s.Valid() && s != StatusActive
}

type Cart struct {
	ID            string            `json:"id"`
	StoreID       string            `json:"storeId"`
	ProfileID     *string           `json:"profileId,omitempty"`
	Items         []CartItem        `json:"items"`
	Status        CartStatus        `json:"status"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	DisplayName   *string           `json:"displayName,omitempty"`
	Context       *string           `json:"context,omitempty"`
	StoreImageURL *string           `json:"storeImageUrl,omitempty"`
	MinSubtotal   *Money            `json:"minSubtotal,omitempty"`
	MaxItemCount  *int              `json:"maxItemCount,omitempty"`
}

type CartItem struct {
	ID             string             `json:"id"`
	ProductID      string             `json:"productId"`
	Quantity       int                `json:"quantity"`
	UnitPrice      Money              `json:"unitPrice"`
	TotalPrice     Money              `json:"totalPrice"`
	Modifiers      []CartItemModifier `json:"modifiers,omitempty"`
	ImageURL       *string            `json:"imageUrl,omitempty"`
	AvailableStock *int               `json:"availableStock,omitempty"`
}

// CartItemModifier is a per-unit price adjustment attached to an item.
type CartItemModifier struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceDelta Money  `json:"priceDelta"`
}

// IsGuest reports whether the cart belongs to an unauthenticated session.
func (c *Cart) IsGuest() bool {
	return c.ProfileID == nil
}

// ItemIndex returns the position of the item with the given id, or -1.
// Items are matched by item id, never by product id.
func (c *Cart) ItemIndex(itemID string) int {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy. Stores and the manager hand out clones so a
// caller can never mutate persisted state through a shared pointer.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	out := *c
	out.ProfileID = cloneStrPtr(c.ProfileID)
	out.DisplayName = cloneStrPtr(c.DisplayName)
	out.Context = cloneStrPtr(c.Context)
	out.StoreImageURL = cloneStrPtr(c.StoreImageURL)
	if c.MinSubtotal != nil {
		m := *c.MinSubtotal
		out.MinSubtotal = &m
	}
	if c.MaxItemCount != nil {
		n := *c.MaxItemCount
		out.MaxItemCount = &n
	}
	if c.Metadata != nil {
		out.Metadata = make(map[string]string, len(c.Metadata))
		for k, v := range c.Metadata {
			out.Metadata[k] = v
		}
	}
	if c.Items != nil {
		out.Items = make([]CartItem, len(c.Items))
		for i := range c.Items {
			out.Items[i] = c.Items[i].Clone()
		}
	}
	return &out
}

func (it CartItem) Clone() CartItem {
	out := it
	out.ImageURL = cloneStrPtr(it.ImageURL)
	if it.AvailableStock != nil {
		n := *it.AvailableStock
		out.AvailableStock = &n
	}
	if it.Modifiers != nil {
		out.Modifiers = make([]CartItemModifier, len(it.Modifiers))
		copy(out.Modifiers, it.Modifiers)
	}
	return out
}

// UnitTotal is the effective per-unit price: unit price plus all modifier
// deltas. Modifier currencies must match the unit price currency.
func (it CartItem) UnitTotal() (Money, error) {
	unit := it.UnitPrice
	for _, mod := range it.Modifiers {
		var err error
		unit, err = unit.Add(mod.PriceDelta)
		if err != nil {
			return Money{}, err
		}
	}
	return unit, nil
}

// LineTotal is UnitTotal scaled by quantity.
func (it CartItem) LineTotal() (Money, error) {
	unit, err := it.UnitTotal()
	if err != nil {
		return Money{}, err
	}
	return unit.MulInt(it.Quantity), nil
}

func cloneStrPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
