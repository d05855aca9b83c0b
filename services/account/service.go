package account

import (
	"time"

	"github.com/MarcGrol/cafeshop/lib/mylog"
	"github.com/MarcGrol/cafeshop/lib/mypublisher"
	"github.com/MarcGrol/cafeshop/lib/mystore"
	"github.com/MarcGrol/cafeshop/lib/mytime"
	"github.com/MarcGrol/cafeshop/lib/mytoken"
	"github.com/MarcGrol/cafeshop/lib/myuuid"
)

const (
	bcryptCost           = 10
	defaultSessionMaxAge = 30 * 24 * time.Hour
)

type service struct {
	userStore     mystore.Store[User]
	sessionStore  mystore.Store[Session]
	publisher     mypublisher.Publisher
	nower         mytime.Nower
	uuider        myuuid.UUIDer
	tokener       mytoken.Tokener
	sessionMaxAge time.Duration
	logger        mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(userStore mystore.Store[User], sessionStore mystore.Store[Session], nower mytime.Nower, uuider myuuid.UUIDer,
	tokener mytoken.Tokener, sessionMaxAge time.Duration, logger mylog.Logger, pub mypublisher.Publisher) *service {
	return &service{
		userStore:     userStore,
		sessionStore:  sessionStore,
		publisher:     pub,
		nower:         nower,
		uuider:        uuider,
		tokener:       tokener,
		sessionMaxAge: sessionMaxAge,
		logger:        logger,
	}
}
