package catalog

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/cafeshop/lib/mycontext"
	"github.com/MarcGrol/cafeshop/lib/myhttp"
	"github.com/MarcGrol/cafeshop/lib/mylog"
	"github.com/MarcGrol/cafeshop/lib/mystore"
	"github.com/MarcGrol/cafeshop/lib/mytime"
	"github.com/MarcGrol/cafeshop/services/cart"
	"github.com/MarcGrol/cafeshop/services/catalogapi"
)

//go:embed templates
var templateFolder embed.FS
var (
	homePageTemplate *template.Template
	menuPageTemplate *template.Template
)

func init() {
	homePageTemplate = template.Must(template.ParseFS(templateFolder, "templates/home.html"))
	menuPageTemplate = template.Must(template.ParseFS(templateFolder, "templates/menu.html"))
}

type webService struct {
	logger  mylog.Logger
	service *service
}

// Use dependency injection to isolate the infrastructure and ease testing
func NewWebService(productStore mystore.Store[Product], nower mytime.Nower) *webService {
	logger := mylog.New("catalog")
	return &webService{
		logger:  logger,
		service: newService(productStore, nower, logger),
	}
}

// Catalog exposes the price ledger to other services
func (s *webService) Catalog() catalogapi.Catalog {
	return s.service
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/", s.homePage()).Methods("GET")
	router.HandleFunc("/menu", s.menuPage()).Methods("GET")

	router.HandleFunc("/api/products", s.listProducts()).Methods("GET")
	router.HandleFunc("/api/products/{productUID}", s.getProduct()).Methods("GET")

	if os.Getenv("SEED_MENU") != "false" {
		_, err := s.service.seedMenu(c)
		if err != nil {
			return fmt.Errorf("error seeding menu: %s", err)
		}
	}

	return nil
}

type homePageData struct {
	CartCount int
}

func (s *webService) homePage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)

		myhttp.NewWriter(s.logger).WriteHTML(c, w, http.StatusOK, homePageTemplate, homePageData{
			CartCount: cart.Load(r).TotalCount(),
		})
	}
}

type menuPageData struct {
	CartCount int
	Products  []menuProduct
}

type menuProduct struct {
	UID         string
	Name        string
	Description string
	Price       string
	Currency    string
	InCart      int
}

func (s *webService) menuPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		products, err := s.service.listProducts(c)
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		current := cart.Load(r)
		data := menuPageData{
			CartCount: current.TotalCount(),
			Products:  make([]menuProduct, 0, len(products)),
		}
		for _, p := range products {
			data.Products = append(data.Products, menuProduct{
				UID:         p.UID,
				Name:        p.Name,
				Description: p.Description,
				Price:       catalogapi.FormatPrice(p.Price),
				Currency:    p.Currency,
				InCart:      current.QuantityOf(p.UID),
			})
		}

		responseWriter.WriteHTML(c, w, http.StatusOK, menuPageTemplate, data)
	}
}

func (s *webService) listProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		products, err := s.service.listProducts(c)
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		resp := make([]ProductResponse, 0, len(products))
		for _, p := range products {
			resp = append(resp, productToResponse(p))
		}

		responseWriter.Write(c, w, http.StatusOK, resp)
	}
}

func (s *webService) getProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		product, err := s.service.getProduct(c, mux.Vars(r)["productUID"])
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, productToResponse(product))
	}
}
