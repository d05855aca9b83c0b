package order

import (
	"context"
	"errors"
	"math"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/cafeshop/lib/myerrors"
	"github.com/MarcGrol/cafeshop/lib/mylog"
	"github.com/MarcGrol/cafeshop/lib/mypublisher"
	"github.com/MarcGrol/cafeshop/lib/mystore"
	"github.com/MarcGrol/cafeshop/lib/mytime"
	"github.com/MarcGrol/cafeshop/lib/myuuid"
	"github.com/MarcGrol/cafeshop/services/accountapi"
	"github.com/MarcGrol/cafeshop/services/cart"
	"github.com/MarcGrol/cafeshop/services/catalogapi"
	"github.com/MarcGrol/cafeshop/services/order/orderevents"
)

const sessionToken = "tok"

var (
	marc     = accountapi.Identity{UserUID: "u1", Email: "marc@home.nl", Name: "Marc"}
	marcUser = accountapi.User{UID: "u1", Email: "marc@home.nl", Name: "Marc", CreatedAt: mytime.ExampleTime}
	prices   = map[string]catalogapi.PricedProduct{
		"A": {UID: "A", Name: "Latte", Price: 5000, Currency: "EUR"},
		"B": {UID: "B", Name: "Croissant", Price: 3000, Currency: "EUR"},
	}
)

type testService struct {
	sut        *service
	orderStore *mystore.InMemoryStore[Order]
	identity   *accountapi.MockIdentityVerifier
	catalog    *catalogapi.MockCatalog
	nower      *mytime.MockNower
	uuider     *myuuid.MockUUIDer
	publisher  *mypublisher.MockPublisher
}

func newTestService(ctrl *gomock.Controller) testService {
	orderStore, _, _ := mystore.NewInMemoryStore[Order](context.Background())
	ts := testService{
		orderStore: orderStore,
		identity:   accountapi.NewMockIdentityVerifier(ctrl),
		catalog:    catalogapi.NewMockCatalog(ctrl),
		nower:      mytime.NewMockNower(ctrl),
		uuider:     myuuid.NewMockUUIDer(ctrl),
		publisher:  mypublisher.NewMockPublisher(ctrl),
	}
	ts.sut = newService(orderStore, ts.identity, ts.catalog, ts.nower, ts.uuider, mylog.New("test"), nil, ts.publisher)
	return ts
}

func (ts testService) givenValidSession() {
	ts.identity.EXPECT().ResolveSession(gomock.Any(), sessionToken).Return(marc, true, nil)
	ts.identity.EXPECT().LookupUser(gomock.Any(), marc.Email).Return(marcUser, true, nil)
}

func (ts testService) storedOrders(t *testing.T) []Order {
	orders, err := ts.orderStore.List(context.Background())
	require.NoError(t, err)
	return orders
}

func TestCreateOrder(t *testing.T) {
	c := context.Background()

	t.Run("Prices come from the catalog", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		ts := newTestService(ctrl)
		ts.givenValidSession()
		ts.catalog.EXPECT().PricesFor(gomock.Any(), []string{"A", "B"}).Return(prices, nil)
		ts.uuider.EXPECT().Create().Return("o1")
		ts.nower.EXPECT().Now().Return(mytime.ExampleTime)
		ts.publisher.EXPECT().Publish(gomock.Any(), orderevents.TopicName, orderevents.OrderCreated{
			OrderUID: "o1", UserUID: "u1", TotalPrice: 13000, Currency: "EUR", LineCount: 2,
		}).Return(nil)

		// when
		order, err := ts.sut.createOrder(c, sessionToken, []cart.Line{{ProductUID: "A", Quantity: 2}, {ProductUID: "B", Quantity: 1}})

		// then
		require.NoError(t, err)
		assert.Equal(t, int64(13000), order.TotalPrice)
		assert.Equal(t, StatusPending, order.Status)
		assert.Equal(t, []OrderLine{
			{ProductUID: "A", ProductName: "Latte", Quantity: 2, Price: 5000},
			{ProductUID: "B", ProductName: "Croissant", Quantity: 1, Price: 3000},
		}, order.Lines)
		assert.Equal(t, []Order{order}, ts.storedOrders(t))
	})

	t.Run("Duplicate products stay separate lines", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		ts := newTestService(ctrl)
		ts.givenValidSession()
		ts.catalog.EXPECT().PricesFor(gomock.Any(), []string{"A"}).Return(prices, nil)
		ts.uuider.EXPECT().Create().Return("o1")
		ts.nower.EXPECT().Now().Return(mytime.ExampleTime)
		ts.publisher.EXPECT().Publish(gomock.Any(), orderevents.TopicName, gomock.Any()).Return(nil)

		// when
		order, err := ts.sut.createOrder(c, sessionToken, []cart.Line{{ProductUID: "A", Quantity: 1}, {ProductUID: "A", Quantity: 2}})

		// then
		require.NoError(t, err)
		assert.Len(t, order.Lines, 2)
		assert.Equal(t, int64(15000), order.TotalPrice)
	})

	t.Run("Without session", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		ts := newTestService(ctrl)
		ts.identity.EXPECT().ResolveSession(gomock.Any(), "").Return(accountapi.Identity{}, false, nil)

		// when
		_, err := ts.sut.createOrder(c, "", []cart.Line{{ProductUID: "A", Quantity: 1}})

		// then
		assert.ErrorIs(t, err, ErrUnauthorized)
		assert.Equal(t, http.StatusUnauthorized, myerrors.GetHTTPStatus(err))
		assert.Empty(t, ts.storedOrders(t))
	})

	t.Run("Session without email", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		ts := newTestService(ctrl)
		ts.identity.EXPECT().ResolveSession(gomock.Any(), sessionToken).Return(accountapi.Identity{UserUID: "u1"}, true, nil)

		// when
		_, err := ts.sut.createOrder(c, sessionToken, []cart.Line{{ProductUID: "A", Quantity: 1}})

		// then
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("Unauthorized wins over an empty cart", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		ts := newTestService(ctrl)
		ts.identity.EXPECT().ResolveSession(gomock.Any(), "").Return(accountapi.Identity{}, false, nil)

		// when
		_, err := ts.sut.createOrder(c, "", nil)

		// then
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("Unknown user", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		ts := newTestService(ctrl)
		ts.identity.EXPECT().ResolveSession(gomock.Any(), sessionToken).Return(marc, true, nil)
		ts.identity.EXPECT().LookupUser(gomock.Any(), marc.Email).Return(accountapi.User{}, false, nil)

		// when
		_, err := ts.sut.createOrder(c, sessionToken, []cart.Line{{ProductUID: "A", Quantity: 1}})

		// then
		assert.ErrorIs(t, err, ErrUserNotFound)
		assert.Equal(t, http.StatusNotFound, myerrors.GetHTTPStatus(err))
	})

	t.Run("Empty cart", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		ts := newTestService(ctrl)
		ts.givenValidSession()

		// when
		_, err := ts.sut.createOrder(c, sessionToken, []cart.Line{})

		// then
		assert.ErrorIs(t, err, ErrEmptyCart)
		assert.Equal(t, http.StatusBadRequest, myerrors.GetHTTPStatus(err))
	})

	t.Run("Invalid quantity", func(t *testing.T) {
		testCases := []struct {
			name string
			line cart.Line
		}{
			{name: "zero", line: cart.Line{ProductUID: "A", Quantity: 0}},
			{name: "negative", line: cart.Line{ProductUID: "A", Quantity: -1}},
			{name: "no product", line: cart.Line{ProductUID: "", Quantity: 1}},
			{name: "above maximum", line: cart.Line{ProductUID: "A", Quantity: cart.MaxQuantity + 1}},
			{name: "huge", line: cart.Line{ProductUID: "A", Quantity: math.MaxInt64 / 4000}},
		}
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				// given
				ts := newTestService(ctrl)
				ts.givenValidSession()

				// when
				_, err := ts.sut.createOrder(c, sessionToken, []cart.Line{{ProductUID: "B", Quantity: 1}, tc.line})

				// then
				assert.ErrorIs(t, err, ErrInvalidQuantity)
				assert.Equal(t, http.StatusBadRequest, myerrors.GetHTTPStatus(err))
			})
		}
	})

	t.Run("Unknown product", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		ts := newTestService(ctrl)
		ts.givenValidSession()
		ts.catalog.EXPECT().PricesFor(gomock.Any(), []string{"A", "X"}).Return(map[string]catalogapi.PricedProduct{"A": prices["A"]}, nil)

		// when
		_, err := ts.sut.createOrder(c, sessionToken, []cart.Line{{ProductUID: "A", Quantity: 1}, {ProductUID: "X", Quantity: 1}})

		// then
		notFound := ProductNotFoundError{}
		require.True(t, errors.As(err, &notFound))
		assert.Equal(t, "X", notFound.ProductUID)
		assert.Equal(t, http.StatusBadRequest, myerrors.GetHTTPStatus(err))
		assert.Contains(t, myerrors.Message(err), "X")
		assert.Empty(t, ts.storedOrders(t))
	})

	t.Run("Total too large for a line", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		ts := newTestService(ctrl)
		ts.givenValidSession()
		ts.catalog.EXPECT().PricesFor(gomock.Any(), []string{"G"}).Return(map[string]catalogapi.PricedProduct{
			"G": {UID: "G", Name: "Gold leaf latte", Price: math.MaxInt64 / 2, Currency: "EUR"},
		}, nil)

		// when
		_, err := ts.sut.createOrder(c, sessionToken, []cart.Line{{ProductUID: "G", Quantity: 3}})

		// then
		assert.ErrorIs(t, err, ErrInvalidQuantity)
		assert.Equal(t, http.StatusBadRequest, myerrors.GetHTTPStatus(err))
		assert.Empty(t, ts.storedOrders(t))
	})

	t.Run("Total too large for the order", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		ts := newTestService(ctrl)
		ts.givenValidSession()
		ts.catalog.EXPECT().PricesFor(gomock.Any(), []string{"G", "H"}).Return(map[string]catalogapi.PricedProduct{
			"G": {UID: "G", Name: "Gold leaf latte", Price: math.MaxInt64/2 + 1, Currency: "EUR"},
			"H": {UID: "H", Name: "Gold leaf cake", Price: math.MaxInt64/2 + 1, Currency: "EUR"},
		}, nil)

		// when
		_, err := ts.sut.createOrder(c, sessionToken, []cart.Line{{ProductUID: "G", Quantity: 1}, {ProductUID: "H", Quantity: 1}})

		// then
		assert.ErrorIs(t, err, ErrInvalidQuantity)
		assert.Empty(t, ts.storedOrders(t))
	})

	t.Run("Mixed currencies", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		ts := newTestService(ctrl)
		ts.givenValidSession()
		ts.catalog.EXPECT().PricesFor(gomock.Any(), []string{"A", "C"}).Return(map[string]catalogapi.PricedProduct{
			"A": prices["A"],
			"C": {UID: "C", Name: "Tea", Price: 100, Currency: "USD"},
		}, nil)

		// when
		_, err := ts.sut.createOrder(c, sessionToken, []cart.Line{{ProductUID: "A", Quantity: 1}, {ProductUID: "C", Quantity: 1}})

		// then
		assert.ErrorIs(t, err, ErrMixedCurrencies)
		assert.Empty(t, ts.storedOrders(t))
	})

	t.Run("Catalog unavailable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		ts := newTestService(ctrl)
		ts.givenValidSession()
		ts.catalog.EXPECT().PricesFor(gomock.Any(), []string{"A"}).Return(nil, assert.AnError)

		// when
		_, err := ts.sut.createOrder(c, sessionToken, []cart.Line{{ProductUID: "A", Quantity: 1}})

		// then
		assert.Equal(t, http.StatusInternalServerError, myerrors.GetHTTPStatus(err))
	})

	t.Run("Failing publication leaves no order behind", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		ts := newTestService(ctrl)
		ts.givenValidSession()
		ts.catalog.EXPECT().PricesFor(gomock.Any(), []string{"A"}).Return(prices, nil)
		ts.uuider.EXPECT().Create().Return("o1")
		ts.nower.EXPECT().Now().Return(mytime.ExampleTime)
		ts.publisher.EXPECT().Publish(gomock.Any(), orderevents.TopicName, gomock.Any()).Return(assert.AnError)

		// when
		_, err := ts.sut.createOrder(c, sessionToken, []cart.Line{{ProductUID: "A", Quantity: 1}})

		// then
		assert.Equal(t, http.StatusInternalServerError, myerrors.GetHTTPStatus(err))
		assert.Empty(t, ts.storedOrders(t))
	})

	t.Run("Failing storage", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		ts := newTestService(ctrl)
		orderStore := mystore.NewMockStore[Order](ctrl)
		ts.sut.orderStore = orderStore
		ts.givenValidSession()
		ts.catalog.EXPECT().PricesFor(gomock.Any(), []string{"A"}).Return(prices, nil)
		ts.uuider.EXPECT().Create().Return("o1")
		ts.nower.EXPECT().Now().Return(mytime.ExampleTime)
		orderStore.EXPECT().RunInTransaction(gomock.Any(), gomock.Any()).DoAndReturn(func(c context.Context, f func(c context.Context) error) error {
			return f(c)
		})
		orderStore.EXPECT().Put(gomock.Any(), "o1", gomock.Any()).Return(assert.AnError)

		// when
		_, err := ts.sut.createOrder(c, sessionToken, []cart.Line{{ProductUID: "A", Quantity: 1}})

		// then
		assert.Equal(t, http.StatusInternalServerError, myerrors.GetHTTPStatus(err))
	})
}

func TestQueryOrders(t *testing.T) {
	c := context.Background()

	older := Order{UID: "o1", UserUID: "u1", TotalPrice: 5000, Currency: "EUR", Status: StatusPending, CreatedAt: mytime.ExampleTime}
	newer := Order{UID: "o2", UserUID: "u1", TotalPrice: 3000, Currency: "EUR", Status: StatusPending, CreatedAt: mytime.ExampleTime.Add(time.Hour)}
	other := Order{UID: "o3", UserUID: "u2", TotalPrice: 1000, Currency: "EUR", Status: StatusPending, CreatedAt: mytime.ExampleTime}

	t.Run("List orders newest first", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		ts := newTestService(ctrl)
		for _, o := range []Order{older, newer, other} {
			ts.orderStore.Put(c, o.UID, o)
		}
		ts.identity.EXPECT().ResolveSession(gomock.Any(), sessionToken).Return(marc, true, nil)

		// when
		orders, err := ts.sut.listOrders(c, sessionToken)

		// then
		require.NoError(t, err)
		assert.Equal(t, []Order{newer, older}, orders)
	})

	t.Run("Get order of someone else", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		ts := newTestService(ctrl)
		ts.orderStore.Put(c, other.UID, other)
		ts.identity.EXPECT().ResolveSession(gomock.Any(), sessionToken).Return(marc, true, nil)

		// when
		_, err := ts.sut.getOrder(c, sessionToken, other.UID)

		// then
		assert.Equal(t, http.StatusNotFound, myerrors.GetHTTPStatus(err))
	})

	t.Run("Get own order", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		ts := newTestService(ctrl)
		ts.orderStore.Put(c, older.UID, older)
		ts.identity.EXPECT().ResolveSession(gomock.Any(), sessionToken).Return(marc, true, nil)

		// when
		order, err := ts.sut.getOrder(c, sessionToken, older.UID)

		// then
		require.NoError(t, err)
		assert.Equal(t, older, order)
	})
}
