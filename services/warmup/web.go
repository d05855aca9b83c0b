package warmup

import (
	"context"
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
func NewService(catalog catalogapi.Catalog) *webService {
	logger := mylog.New("warmup")
	return &webService{
		logger:  logger,
		catalog: catalog,
	}
}

func (s webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/_ah/warmup", s.warmupPage()).Methods("GET")
}

func (s *webService) warmupPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		// touches the product store so the first real visitor does not pay for the connection
		products, err := s.catalog.ListProducts(c)
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewUnavailableError(err))
			return
		}

		s.logger.Log(c, "", mylog.SeverityInfo, "Warmed up with %d product(s)", len(products))

		errorWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{
			Message: "Successfully processed warmup request",
		})
	}
}
