package cart

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/cafeshop/lib/mycontext"
	"github.com/MarcGrol/cafeshop/lib/myerrors"
	"github.com/MarcGrol/cafeshop/lib/myhttp"
	"github.com/MarcGrol/cafeshop/lib/mylog"
	"github.com/MarcGrol/cafeshop/services/catalogapi"
)

type webService struct {
	logger  mylog.Logger
	catalog catalogapi.Catalog
}

// Use dependency injection to isolate the infrastructure and ease testing
func NewWebService(catalog catalogapi.Catalog) *webService {
	return &webService{
		logger:  mylog.New("cart"),
		catalog: catalog,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/cart/add/{productUID}", s.addPage()).Methods("POST")
	router.HandleFunc("/cart/decrease/{productUID}", s.decreasePage()).Methods("POST")
	router.HandleFunc("/cart/clear", s.clearPage()).Methods("POST")

	router.HandleFunc("/api/cart", s.getCart()).Methods("GET")

	return nil
}

type Response struct {
	Items      []Line `json:"items"`
	TotalCount int    `json:"totalCount"`
}

func (s *webService) addPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		productUID := mux.Vars(r)["productUID"]

		// only products on the menu can be added
		products, err := s.catalog.PricesFor(c, []string{productUID})
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInternalError(err))
			return
		}
		if _, found := products[productUID]; !found {
			errorWriter.WriteError(c, w, 2, myerrors.NewNotFoundError(fmt.Errorf("product with uid %s not found", productUID)))
			return
		}

		cart := Load(r)
		cart.Add(productUID)

		s.saveAndReturn(c, w, r, cart, "/menu")
	}
}

func (s *webService) decreasePage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cart := Load(r)
		cart.Decrease(mux.Vars(r)["productUID"])

		s.saveAndReturn(mycontext.ContextFromHTTPRequest(r), w, r, cart, "/order")
	}
}

func (s *webService) clearPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cart := Load(r)
		cart.Clear()

		s.saveAndReturn(mycontext.ContextFromHTTPRequest(r), w, r, cart, "/order")
	}
}

func (s *webService) saveAndReturn(c context.Context, w http.ResponseWriter, r *http.Request, cart Cart, fallback string) {
	err := Save(w, r, cart)
	if err != nil {
		myhttp.NewWriter(s.logger).WriteError(c, w, 3, myerrors.NewInternalError(err))
		return
	}

	s.logger.Log(c, "", mylog.SeverityInfo, "Cart now holds %d item(s)", cart.TotalCount())

	http.Redirect(w, r, myhttp.SafeRedirectPath(r.FormValue("returnTo"), fallback), http.StatusSeeOther)
}

func (s *webService) getCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)

		cart := Load(r)

		myhttp.NewWriter(s.logger).Write(c, w, http.StatusOK, Response{
			Items:      cart.Lines(),
			TotalCount: cart.TotalCount(),
		})
	}
}
