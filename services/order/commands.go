package order

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/MarcGrol/cafeshop/lib/myerrors"
	"github.com/MarcGrol/cafeshop/lib/mylog"
	"github.com/MarcGrol/cafeshop/lib/mystore"
	"github.com/MarcGrol/cafeshop/services/accountapi"
	"github.com/MarcGrol/cafeshop/services/cart"
	"github.com/MarcGrol/cafeshop/services/order/orderevents"
)

// createOrder fails fast in a fixed order: session, user, cart, quantities, products, totals.
// Nothing is stored unless every check passes.
func (s *service) createOrder(c context.Context, sessionToken string, lines []cart.Line) (Order, error) {
	identity, err := s.resolveIdentity(c, sessionToken)
	if err != nil {
		return Order{}, err
	}

	user, exists, err := s.identity.LookupUser(c, identity.Email)
	if err != nil {
		return Order{}, myerrors.NewInternalError(err)
	}
	if !exists {
		s.logger.Log(c, identity.Email, mylog.SeverityWarn, "User with email %s not found", identity.Email)
		return Order{}, myerrors.NewNotFoundError(ErrUserNotFound)
	}

	if len(lines) == 0 {
		return Order{}, myerrors.NewInvalidInputError(ErrEmptyCart)
	}

	productUIDs := []string{}
	for _, line := range lines {
		if line.ProductUID == "" || line.Quantity < 1 || line.Quantity > cart.MaxQuantity {
			return Order{}, myerrors.NewInvalidInputError(fmt.Errorf("%w: product '%s' with quantity %d", ErrInvalidQuantity, line.ProductUID, line.Quantity))
		}
		if !slices.Contains(productUIDs, line.ProductUID) {
			productUIDs = append(productUIDs, line.ProductUID)
		}
	}

	// never trust prices from the client
	prices, err := s.catalog.PricesFor(c, productUIDs)
	if err != nil {
		return Order{}, myerrors.NewInternalError(err)
	}

	order := Order{
		UserUID:   user.UID,
		UserEmail: user.Email,
		Status:    StatusPending,
		Lines:     make([]OrderLine, 0, len(lines)),
	}
	for _, line := range lines {
		product, found := prices[line.ProductUID]
		if !found {
			return Order{}, myerrors.NewInvalidInputError(ProductNotFoundError{ProductUID: line.ProductUID})
		}
		if order.Currency == "" {
			order.Currency = product.Currency
		} else if order.Currency != product.Currency {
			return Order{}, myerrors.NewInvalidInputError(ErrMixedCurrencies)
		}

		orderLine := OrderLine{
			ProductUID:  line.ProductUID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			Price:       product.Price,
		}
		subTotal, ok := orderLine.subTotal()
		if !ok || subTotal > math.MaxInt64-order.TotalPrice {
			return Order{}, myerrors.NewInvalidInputError(fmt.Errorf("%w: total of product '%s' with quantity %d is too large", ErrInvalidQuantity, line.ProductUID, line.Quantity))
		}
		order.Lines = append(order.Lines, orderLine)
		order.TotalPrice += subTotal
	}
	order.UID = s.uuider.Create()
	order.CreatedAt = s.nower.Now()

	s.logger.Log(c, order.UID, mylog.SeverityInfo, "Creating order %s for user %s with %d line(s)", order.UID, user.Email, len(order.Lines))

	err = s.orderStore.RunInTransaction(c, func(c context.Context) error {
		err := s.orderStore.Put(c, order.UID, order)
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		err = s.publisher.Publish(c, orderevents.TopicName, orderevents.OrderCreated{
			OrderUID:   order.UID,
			UserUID:    order.UserUID,
			TotalPrice: order.TotalPrice,
			Currency:   order.Currency,
			LineCount:  len(order.Lines),
		})
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		return nil
	})
	if err != nil {
		return Order{}, err
	}

	return order, nil
}

func (s *service) listOrders(c context.Context, sessionToken string) ([]Order, error) {
	identity, err := s.resolveIdentity(c, sessionToken)
	if err != nil {
		return nil, err
	}

	s.logger.Log(c, identity.UserUID, mylog.SeverityInfo, "Fetch orders of user %s", identity.Email)

	orders, err := s.orderStore.Query(c, []mystore.Filter{
		{Field: "UserUID", Compare: "=", Value: identity.UserUID},
	}, "-CreatedAt")
	if err != nil {
		return nil, myerrors.NewInternalError(err)
	}

	return orders, nil
}

func (s *service) getOrder(c context.Context, sessionToken string, orderUID string) (Order, error) {
	identity, err := s.resolveIdentity(c, sessionToken)
	if err != nil {
		return Order{}, err
	}

	s.logger.Log(c, orderUID, mylog.SeverityInfo, "Fetch details of order uid %s", orderUID)

	order, found, err := s.orderStore.Get(c, orderUID)
	if err != nil {
		return Order{}, myerrors.NewInternalError(err)
	}
	// orders of other users are reported as absent
	if !found || order.UserUID != identity.UserUID {
		return Order{}, myerrors.NewNotFoundError(fmt.Errorf("order with uid %s not found", orderUID))
	}

	return order, nil
}

func (s *service) resolveIdentity(c context.Context, sessionToken string) (accountapi.Identity, error) {
	identity, found, err := s.identity.ResolveSession(c, sessionToken)
	if err != nil {
		return accountapi.Identity{}, myerrors.NewInternalError(err)
	}
	if !found || identity.Email == "" {
		return accountapi.Identity{}, myerrors.NewUnauthorizedError(ErrUnauthorized)
	}
	return identity, nil
}
