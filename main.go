package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/MarcGrol/cafeshop/lib/mypublisher"
	"github.com/MarcGrol/cafeshop/lib/mypubsub"
	"github.com/MarcGrol/cafeshop/lib/myqueue"
	"github.com/MarcGrol/cafeshop/lib/mystore"
	"github.com/MarcGrol/cafeshop/lib/mytime"
	"github.com/MarcGrol/cafeshop/lib/mytoken"
	"github.com/MarcGrol/cafeshop/lib/myuuid"
	"github.com/MarcGrol/cafeshop/services/account"
	"github.com/MarcGrol/cafeshop/services/cart"
	"github.com/MarcGrol/cafeshop/services/catalog"
	"github.com/MarcGrol/cafeshop/services/order"
	"github.com/MarcGrol/cafeshop/services/warmup"
)

func main() {
	c := context.Background()

	router := mux.NewRouter()
	nower := mytime.RealNower{}
	uuider := myuuid.RealUUIDer{}

	pubsub, pubsubCleanup, err := mypubsub.New(c)
	if err != nil {
		log.Fatalf("Error creating pubsub: %s", err)
	}
	defer pubsubCleanup()

	queue, queueCleanup, err := myqueue.New(c)
	if err != nil {
		log.Fatalf("Error creating task queue: %s", err)
	}
	defer queueCleanup()

	publisher, publisherCleanup, err := mypublisher.New(c, pubsub, queue, nower)
	if err != nil {
		log.Fatalf("Error creating publisher: %s", err)
	}
	defer publisherCleanup()
	publisher.RegisterEndpoints(c, router)

	userStore, userStoreCleanup, err := mystore.New[account.User](c)
	if err != nil {
		log.Fatalf("Error creating user store: %s", err)
	}
	defer userStoreCleanup()

	sessionStore, sessionStoreCleanup, err := mystore.New[account.Session](c)
	if err != nil {
		log.Fatalf("Error creating session store: %s", err)
	}
	defer sessionStoreCleanup()

	accountService, err := account.NewWebService(userStore, sessionStore, nower, uuider, mytoken.RealTokener{}, publisher)
	if err != nil {
		log.Fatalf("Error creating account service: %s", err)
	}
	err = accountService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering account service: %s", err)
	}

	productStore, productStoreCleanup, err := mystore.New[catalog.Product](c)
	if err != nil {
		log.Fatalf("Error creating product store: %s", err)
	}
	defer productStoreCleanup()

	catalogService := catalog.NewWebService(productStore, nower)
	err = catalogService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering catalog service: %s", err)
	}

	err = cart.NewWebService(catalogService.Catalog()).RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering cart service: %s", err)
	}

	orderStore, orderStoreCleanup, err := mystore.New[order.Order](c)
	if err != nil {
		log.Fatalf("Error creating order store: %s", err)
	}
	defer orderStoreCleanup()

	orderService := order.NewWebService(orderStore, accountService.IdentityVerifier(), catalogService.Catalog(), nower, uuider, pubsub, publisher)
	err = orderService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering order service: %s", err)
	}

	warmup.NewService(catalogService.Catalog()).RegisterEndpoints(c, router)

	startWebServerBlocking(router)
}

func startWebServerBlocking(router *mux.Router) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting webserver on port %s (try http://localhost:%s)", port, port)
	err := http.ListenAndServe(fmt.Sprintf(":%s", port), otelhttp.NewHandler(router, "cafeshop"))
	if err != nil {
		log.Fatalf("Error starting webserver on port %s: %s", port, err)
	}
}
