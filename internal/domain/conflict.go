package domain

// ConflictKindTag discriminates CartCatalogConflict values.
type ConflictKindTag string

const (
	ConflictRemovedFromCatalog ConflictKindTag = "removedFromCatalog"
	ConflictPriceChanged       ConflictKindTag = "priceChanged"
	ConflictInsufficientStock  ConflictKindTag = "insufficientStock"
)

// CartCatalogConflict flags a divergence between a persisted cart item and
// the external catalog.
type CartCatalogConflict struct {
	ItemID    string          `json:"itemId"`
	ProductID string          `json:"productId"`
	Kind      ConflictKindTag `json:"kind"`

	// OldPrice and NewPrice are set for priceChanged.
	OldPrice Money `json:"oldPrice,omitempty"`
	NewPrice Money `json:"newPrice,omitempty"`

	// Requested and Available are set for insufficientStock.
	Requested int `json:"requested,omitempty"`
	Available int `json:"available,omitempty"`
}

func RemovedFromCatalog(itemID, productID string) CartCatalogConflict {
	return CartCatalogConflict{ItemID: itemID, ProductID: productID, Kind: ConflictRemovedFromCatalog}
}

func PriceChanged(itemID, productID string, oldPrice, newPrice Money) CartCatalogConflict {
	return CartCatalogConflict{
		ItemID:    itemID,
		ProductID: productID,
		Kind:      ConflictPriceChanged,
		OldPrice:  oldPrice,
		NewPrice:  newPrice,
	}
}

func InsufficientStock(itemID, productID string, requested, available int) CartCatalogConflict {
	return CartCatalogConflict{
		ItemID:    itemID,
		ProductID: productID,
		Kind:      ConflictInsufficientStock,
		Requested: requested,
		Available: available,
	}
}

// CartUpdateResult is the observable outcome of an item mutation. Conflicts
// are always reported, including ones a resolver accepted.
type CartUpdateResult struct {
	Cart         *Cart                 `json:"cart"`
	RemovedItems []CartItem            `json:"removedItems,omitempty"`
	ChangedItems []CartItem            `json:"changedItems,omitempty"`
	Conflicts    []CartCatalogConflict `json:"conflicts,omitempty"`
}
