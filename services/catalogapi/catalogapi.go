package catalogapi

import (
	"context"
)

// PricedProduct is the price ledger view of a product. Price is in cents.
type PricedProduct struct {
	UID         string
	Name        string
	Description string
	Price       int64
	Currency    string
}

//go:generate mockgen -source=catalogapi.go -package catalogapi -destination catalog_mock.go Catalog
type Catalog interface {
	// PricesFor looks up all ids in one go. Unknown ids are absent from the result.
	PricesFor(c context.Context, productUIDs []string) (map[string]PricedProduct, error)
	ListProducts(c context.Context) ([]PricedProduct, error)
}
