package catalog

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/MarcGrol/cafeshop/lib/myerrors"
	"github.com/MarcGrol/cafeshop/lib/mylog"
	"github.com/MarcGrol/cafeshop/lib/mystore"
	"github.com/MarcGrol/cafeshop/lib/mytime"
	"github.com/MarcGrol/cafeshop/services/catalogapi"
)

type service struct {
	productStore mystore.Store[Product]
	nower        mytime.Nower
	logger       mylog.Logger
}

func newService(store mystore.Store[Product], nower mytime.Nower, logger mylog.Logger) *service {
	return &service{
		productStore: store,
		nower:        nower,
		logger:       logger,
	}
}

func (s *service) listProducts(c context.Context) ([]Product, error) {
	products, err := s.productStore.List(c)
	if err != nil {
		return nil, myerrors.NewInternalError(err)
	}

	slices.SortStableFunc(products, func(a, b Product) int {
		return strings.Compare(a.Name, b.Name)
	})
	return products, nil
}

func (s *service) getProduct(c context.Context, productUID string) (Product, error) {
	product, found, err := s.productStore.Get(c, productUID)
	if err != nil {
		return Product{}, myerrors.NewInternalError(err)
	}
	if !found {
		return Product{}, myerrors.NewNotFoundError(fmt.Errorf("product with uid %s not found", productUID))
	}
	return product, nil
}

// PricesFor implements catalogapi.Catalog
func (s *service) PricesFor(c context.Context, productUIDs []string) (map[string]catalogapi.PricedProduct, error) {
	distinct := []string{}
	for _, uid := range productUIDs {
		if uid != "" && !slices.Contains(distinct, uid) {
			distinct = append(distinct, uid)
		}
	}

	products, err := s.productStore.GetMulti(c, distinct)
	if err != nil {
		return nil, myerrors.NewInternalError(err)
	}

	result := make(map[string]catalogapi.PricedProduct, len(products))
	for uid, product := range products {
		result[uid] = product.toPriced()
	}
	return result, nil
}

// ListProducts implements catalogapi.Catalog
func (s *service) ListProducts(c context.Context) ([]catalogapi.PricedProduct, error) {
	products, err := s.listProducts(c)
	if err != nil {
		return nil, err
	}

	result := make([]catalogapi.PricedProduct, 0, len(products))
	for _, p := range products {
		result = append(result, p.toPriced())
	}
	return result, nil
}

// seedMenu installs the default menu when there are no products yet.
// Product uids are fixed, so seeding twice stores the same products.
func (s *service) seedMenu(c context.Context) (int, error) {
	existing, err := s.productStore.List(c)
	if err != nil {
		return 0, myerrors.NewInternalError(err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	now := s.nower.Now()
	for _, item := range defaultMenu {
		price, err := catalogapi.ParsePrice(item.price)
		if err != nil {
			return 0, myerrors.NewInternalError(err)
		}

		err = s.productStore.Put(c, item.uid, Product{
			UID:         item.uid,
			Name:        item.name,
			Description: item.description,
			Price:       price,
			Currency:    defaultCurrency,
			CreatedAt:   now,
		})
		if err != nil {
			return 0, myerrors.NewInternalError(err)
		}
	}

	s.logger.Log(c, "", mylog.SeverityInfo, "Seeded menu with %d products", len(defaultMenu))

	return len(defaultMenu), nil
}
