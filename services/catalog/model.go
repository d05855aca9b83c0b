package catalog

import (
	"time"

	"github.com/MarcGrol/cafeshop/services/catalogapi"
)

// Product price is in cents and never negative.
type Product struct {
	UID         string
	Name        string
	Description string `datastore:",noindex"`
	Price       int64
	Currency    string
	CreatedAt   time.Time
}

func (p Product) toPriced() catalogapi.PricedProduct {
	return catalogapi.PricedProduct{
		UID:         p.UID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Currency:    p.Currency,
	}
}

type ProductResponse struct {
	UID         string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Currency    string `json:"currency"`
}

func productToResponse(p Product) ProductResponse {
	return ProductResponse{
		UID:         p.UID,
		Name:        p.Name,
		Description: p.Description,
		Price:       catalogapi.FormatPrice(p.Price),
		Currency:    p.Currency,
	}
}
