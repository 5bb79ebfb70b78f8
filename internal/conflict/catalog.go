package conflict

import (
	"context"
	"errors"

	"github.com/Karim-ezzedine/MultiCart/internal/domain"
)

// ErrProductNotFound is returned by Catalog lookups for products that no
// longer exist.
var ErrProductNotFound = errors.New("product not found")

// Product is the catalog's view of a purchasable item.
type Product struct {
	ID             string
	Price          domain.Money
	AvailableStock *int
}

// Catalog is the narrow lookup port the CatalogDetector reads from.
type Catalog interface {
	Product(ctx context.Context, productID string) (*Product, error)
}

// CatalogDetector compares each cart item against the live catalog and
// reports removed products, price changes and insufficient stock.
type CatalogDetector struct {
	catalog Catalog
}

func NewCatalogDetector(catalog Catalog) *CatalogDetector {
	return &CatalogDetector{catalog: catalog}
}

func (d *CatalogDetector) Detect(ctx context.Context, cart *domain.Cart) ([]domain.CartCatalogConflict, error) {
	var conflicts []domain.CartCatalogConflict
	for _, item := range cart.Items {
		product, err := d.catalog.Product(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, ErrProductNotFound) {
				conflicts = append(conflicts, domain.RemovedFromCatalog(item.ID, item.ProductID))
				continue
			}
			return nil, err
		}
		if !product.Price.Equal(item.UnitPrice) {
			conflicts = append(conflicts, domain.PriceChanged(item.ID, item.ProductID, item.UnitPrice, product.Price))
		}
		if product.AvailableStock != nil && item.Quantity > *product.AvailableStock {
			conflicts = append(conflicts, domain.InsufficientStock(item.ID, item.ProductID, item.Quantity, *product.AvailableStock))
		}
	}
	return conflicts, nil
}

// PruneResolver accepts conflicted carts after dropping items whose product
// left the catalog and repricing items whose catalog price moved. Stock
// shortfalls are left untouched for the caller to surface.
type PruneResolver struct {
	catalog Catalog
}

func NewPruneResolver(catalog Catalog) *PruneResolver {
	return &PruneResolver{catalog: catalog}
}

func (r *PruneResolver) Resolve(ctx context.Context, cart *domain.Cart, _ error) (*domain.Cart, error) {
	out := cart.Clone()
	kept := out.Items[:0]
	for _, item := range out.Items {
		product, err := r.catalog.Product(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, ErrProductNotFound) {
				continue
			}
			return nil, err
		}
		if !product.Price.Equal(item.UnitPrice) {
			item.UnitPrice = product.Price
			if line, err := item.LineTotal(); err == nil {
				item.TotalPrice = line
			}
		}
		kept = append(kept, item)
	}
	out.Items = kept
	return out, nil
}
