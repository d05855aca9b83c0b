package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/cafeshop/services/catalogapi"
)

func TestCartWeb(t *testing.T) {

	t.Run("Add known product", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		router, catalog := setup(t, ctrl)

		// given
		catalog.EXPECT().PricesFor(gomock.Any(), []string{"latte"}).Return(map[string]catalogapi.PricedProduct{
			"latte": {UID: "latte", Name: "Latte", Price: 350, Currency: "EUR"},
		}, nil)

		// when
		request, err := http.NewRequest(http.MethodPost, "/cart/add/latte", nil)
		assert.NoError(t, err)
		request.Host = "localhost:8888"
		request.AddCookie(cartCookie(t, New(Line{ProductUID: "latte", Quantity: 1})))
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, http.StatusSeeOther, response.Code)
		assert.Equal(t, "/menu", response.Header().Get("Location"))
		cart := cartFromResponse(t, response)
		assert.Equal(t, []Line{{ProductUID: "latte", Quantity: 2}}, cart.Lines())
	})

	t.Run("Add unknown product", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		router, catalog := setup(t, ctrl)

		// given
		catalog.EXPECT().PricesFor(gomock.Any(), []string{"X"}).Return(map[string]catalogapi.PricedProduct{}, nil)

		// when
		request, err := http.NewRequest(http.MethodPost, "/cart/add/X", nil)
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, http.StatusNotFound, response.Code)
		assert.Empty(t, response.Result().Cookies())
	})

	t.Run("Decrease to empty removes the cookie", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		router, _ := setup(t, ctrl)

		// when
		form := url.Values{"returnTo": {"/menu"}}
		request, err := http.NewRequest(http.MethodPost, "/cart/decrease/latte", strings.NewReader(form.Encode()))
		assert.NoError(t, err)
		request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		request.AddCookie(cartCookie(t, New(Line{ProductUID: "latte", Quantity: 1})))
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, http.StatusSeeOther, response.Code)
		assert.Equal(t, "/menu", response.Header().Get("Location"))
		cookies := response.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.True(t, cookies[0].MaxAge < 0)
	})

	t.Run("Get cart", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		router, _ := setup(t, ctrl)

		// when
		request, err := http.NewRequest(http.MethodGet, "/api/cart", nil)
		assert.NoError(t, err)
		request.AddCookie(cartCookie(t, New(Line{ProductUID: "A", Quantity: 2}, Line{ProductUID: "B", Quantity: 1})))
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		resp := Response{}
		err = json.Unmarshal(response.Body.Bytes(), &resp)
		assert.NoError(t, err)
		assert.Equal(t, 3, resp.TotalCount)
		assert.Len(t, resp.Items, 2)
	})

	t.Run("Unreadable cookie is an empty cart", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		router, _ := setup(t, ctrl)

		// when
		request, err := http.NewRequest(http.MethodGet, "/api/cart", nil)
		assert.NoError(t, err)
		request.AddCookie(&http.Cookie{Name: CookieName, Value: "items%5Bx%5D.quantity=abc"})
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		assert.Contains(t, response.Body.String(), `"totalCount": 0`)
	})
}

func cartCookie(t *testing.T, cart Cart) *http.Cookie {
	encoded, err := Encode(cart)
	require.NoError(t, err)
	return &http.Cookie{Name: CookieName, Value: encoded}
}

func cartFromResponse(t *testing.T, response *httptest.ResponseRecorder) Cart {
	for _, cookie := range response.Result().Cookies() {
		if cookie.Name == CookieName {
			cart, err := Decode(cookie.Value)
			require.NoError(t, err)
			return cart
		}
	}
	t.Fatalf("no cart cookie in response")
	return Cart{}
}

func setup(t *testing.T, ctrl *gomock.Controller) (*mux.Router, *catalogapi.MockCatalog) {
	catalog := catalogapi.NewMockCatalog(ctrl)

	router := mux.NewRouter()
	err := NewWebService(catalog).RegisterEndpoints(context.Background(), router)
	require.NoError(t, err)

	return router, catalog
}
