package order

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/cafeshop/lib/mycontext"
	"github.com/MarcGrol/cafeshop/lib/myerrors"
	"github.com/MarcGrol/cafeshop/lib/myhttp"
	"github.com/MarcGrol/cafeshop/lib/mylog"
	"github.com/MarcGrol/cafeshop/lib/mypublisher"
	"github.com/MarcGrol/cafeshop/lib/mypubsub"
	"github.com/MarcGrol/cafeshop/lib/mystore"
	"github.com/MarcGrol/cafeshop/lib/mytime"
	"github.com/MarcGrol/cafeshop/lib/myuuid"
	"github.com/MarcGrol/cafeshop/services/accountapi"
	"github.com/MarcGrol/cafeshop/services/cart"
	"github.com/MarcGrol/cafeshop/services/catalogapi"
	"github.com/MarcGrol/cafeshop/services/order/orderevents"
)

//go:embed templates
var templateFolder embed.FS
var (
	orderPageTemplate   *template.Template
	profilePageTemplate *template.Template
)

func init() {
	orderPageTemplate = template.Must(template.ParseFS(templateFolder, "templates/order.html"))
	profilePageTemplate = template.Must(template.ParseFS(templateFolder, "templates/profile.html"))
}

type webService struct {
	logger  mylog.Logger
	service *service
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewWebService(orderStore mystore.Store[Order], identity accountapi.IdentityVerifier, catalog catalogapi.Catalog,
	nower mytime.Nower, uuider myuuid.UUIDer, pubsub mypubsub.PubSub, pub mypublisher.Publisher) *webService {
	logger := mylog.New("order")
	return &webService{
		logger:  logger,
		service: newService(orderStore, identity, catalog, nower, uuider, logger, pubsub, pub),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	protect := accountapi.RequireSession(s.service.identity, s.logger)

	router.HandleFunc("/order", protect(s.orderPage())).Methods("GET")
	router.HandleFunc("/order/confirm", protect(s.confirmOrderPage())).Methods("POST")
	router.HandleFunc("/profile", protect(s.profilePage())).Methods("GET")

	router.HandleFunc("/orders", s.createOrder()).Methods("POST")
	router.HandleFunc("/orders", s.listOrders()).Methods("GET")
	router.HandleFunc("/orders/{orderUID}", s.getOrder()).Methods("GET")

	router.HandleFunc("/api/order/event", s.handleEvent()).Methods("POST")

	return s.service.Subscribe(c)
}

func (s *webService) createOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		sessionToken := accountapi.SessionTokenFromRequest(r)

		req := CreateOrderRequest{}
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			// an anonymous caller learns about the session first
			_, err2 := s.service.resolveIdentity(c, sessionToken)
			if err2 != nil {
				errorWriter.WriteError(c, w, 1, err2)
				return
			}
			errorWriter.WriteError(c, w, 2, myerrors.NewInvalidInputError(fmt.Errorf("error parsing order request: %s", err)))
			return
		}

		lines := make([]cart.Line, 0, len(req.Items))
		for _, item := range req.Items {
			lines = append(lines, cart.Line{ProductUID: item.ProductUID, Quantity: item.Quantity})
		}

		order, err := s.service.createOrder(c, sessionToken, lines)
		if err != nil {
			errorWriter.WriteError(c, w, 3, err)
			return
		}

		errorWriter.Write(c, w, http.StatusCreated, orderToResponse(order))
	}
}

func (s *webService) listOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		orders, err := s.service.listOrders(c, accountapi.SessionTokenFromRequest(r))
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		resp := make([]OrderResponse, 0, len(orders))
		for _, o := range orders {
			resp = append(resp, orderToResponse(o))
		}
		errorWriter.Write(c, w, http.StatusOK, resp)
	}
}

func (s *webService) getOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		order, err := s.service.getOrder(c, accountapi.SessionTokenFromRequest(r), mux.Vars(r)["orderUID"])
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, orderToResponse(order))
	}
}

type orderPageData struct {
	Email     string
	CartCount int
	Lines     []orderPageLine
	Total     string
	Currency  string
	Error     string
}

type orderPageLine struct {
	ProductUID string
	Name       string
	Quantity   int
	Price      string
	SubTotal   string
	Available  bool
}

func (s *webService) orderPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		identity, _ := accountapi.IdentityFromContext(c)
		current := cart.Load(r)

		productUIDs := []string{}
		for _, line := range current.Lines() {
			productUIDs = append(productUIDs, line.ProductUID)
		}
		prices, err := s.service.catalog.PricesFor(c, productUIDs)
		if err != nil {
			responseWriter.WriteError(c, w, 1, myerrors.NewInternalError(err))
			return
		}

		// prices shown here are informative, the order is priced again on confirmation
		data := orderPageData{
			Email:     identity.Email,
			CartCount: current.TotalCount(),
			Lines:     []orderPageLine{},
			Error:     r.URL.Query().Get("error"),
		}
		var total int64
		for _, line := range current.Lines() {
			product, found := prices[line.ProductUID]
			pageLine := orderPageLine{
				ProductUID: line.ProductUID,
				Name:       line.ProductUID,
				Quantity:   line.Quantity,
				Available:  found,
			}
			if found {
				subTotal, _ := OrderLine{Quantity: line.Quantity, Price: product.Price}.subTotal()
				pageLine.Name = product.Name
				pageLine.Price = catalogapi.FormatPrice(product.Price)
				pageLine.SubTotal = catalogapi.FormatPrice(subTotal)
				data.Currency = product.Currency
				total += subTotal
			}
			data.Lines = append(data.Lines, pageLine)
		}
		data.Total = catalogapi.FormatPrice(total)

		responseWriter.WriteHTML(c, w, http.StatusOK, orderPageTemplate, data)
	}
}

func (s *webService) confirmOrderPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		current := cart.Load(r)

		order, err := s.service.createOrder(c, accountapi.SessionTokenFromRequest(r), current.Lines())
		if err != nil {
			if myerrors.GetHTTPStatus(err) < http.StatusInternalServerError {
				// cart stays as it is, so the user can correct it
				http.Redirect(w, r, "/order?error="+url.QueryEscape(myerrors.Message(err)), http.StatusSeeOther)
				return
			}
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		current.Clear()
		err = cart.Save(w, r, current)
		if err != nil {
			errorWriter.WriteError(c, w, 2, myerrors.NewInternalError(err))
			return
		}

		http.Redirect(w, r, "/profile?order="+url.QueryEscape(order.UID), http.StatusSeeOther)
	}
}

type profilePageData struct {
	Email       string
	Name        string
	CartCount   int
	NewOrderUID string
	Orders      []profileOrder
}

type profileOrder struct {
	UID        string
	CreatedAt  string
	Status     Status
	TotalPrice string
	Currency   string
	Lines      []OrderLineResponse
}

func (s *webService) profilePage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		identity, _ := accountapi.IdentityFromContext(c)

		orders, err := s.service.listOrders(c, accountapi.SessionTokenFromRequest(r))
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		data := profilePageData{
			Email:       identity.Email,
			Name:        identity.Name,
			CartCount:   cart.Load(r).TotalCount(),
			NewOrderUID: r.URL.Query().Get("order"),
			Orders:      make([]profileOrder, 0, len(orders)),
		}
		for _, o := range orders {
			resp := orderToResponse(o)
			data.Orders = append(data.Orders, profileOrder{
				UID:        resp.UID,
				CreatedAt:  o.CreatedAt.Format("2006-01-02 15:04"),
				Status:     resp.Status,
				TotalPrice: resp.TotalPrice,
				Currency:   resp.Currency,
				Lines:      resp.Items,
			})
		}

		responseWriter.WriteHTML(c, w, http.StatusOK, profilePageTemplate, data)
	}
}

func (s *webService) handleEvent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		err := orderevents.DispatchEvent(c, r.Body, s.service)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{
			Message: "Successfully processed event",
		})
	}
}
