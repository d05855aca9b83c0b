package order

import (
	"github.com/MarcGrol/cafeshop/lib/mylog"
	"github.com/MarcGrol/cafeshop/lib/mypublisher"
	"github.com/MarcGrol/cafeshop/lib/mypubsub"
	"github.com/MarcGrol/cafeshop/lib/mystore"
	"github.com/MarcGrol/cafeshop/lib/mytime"
	"github.com/MarcGrol/cafeshop/lib/myuuid"
	"github.com/MarcGrol/cafeshop/services/accountapi"
	"github.com/MarcGrol/cafeshop/services/catalogapi"
)

type service struct {
	orderStore mystore.Store[Order]
	identity   accountapi.IdentityVerifier
	catalog    catalogapi.Catalog
	pubsub     mypubsub.PubSub
	publisher  mypublisher.Publisher
	nower      mytime.Nower
	uuider     myuuid.UUIDer
	logger     mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(store mystore.Store[Order], identity accountapi.IdentityVerifier, catalog catalogapi.Catalog,
	nower mytime.Nower, uuider myuuid.UUIDer, logger mylog.Logger, pubsub mypubsub.PubSub, pub mypublisher.Publisher) *service {
	return &service{
		orderStore: store,
		identity:   identity,
		catalog:    catalog,
		pubsub:     pubsub,
		publisher:  pub,
		nower:      nower,
		uuider:     uuider,
		logger:     logger,
	}
}
