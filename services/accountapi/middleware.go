package accountapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/MarcGrol/cafeshop/lib/mycontext"
	"github.com/MarcGrol/cafeshop/lib/myerrors"
	"github.com/MarcGrol/cafeshop/lib/myhttp"
	"github.com/MarcGrol/cafeshop/lib/mylog"
)

type ctxIdentityKey struct{}

// IdentityFromContext returns the identity that RequireSession resolved for this request.
func IdentityFromContext(c context.Context) (Identity, bool) {
	identity, found := c.Value(ctxIdentityKey{}).(Identity)
	return identity, found
}

// RequireSession only lets requests with a valid session through.
// Other requests are redirected to the login page, which returns the user to the original path afterwards.
func RequireSession(verifier IdentityVerifier, logger mylog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			c := mycontext.ContextFromHTTPRequest(r)

			identity, found, err := verifier.ResolveSession(c, SessionTokenFromRequest(r))
			if err != nil {
				myhttp.NewWriter(logger).WriteError(c, w, 1, myerrors.NewInternalError(err))
				return
			}
			if !found {
				logger.Log(c, "", mylog.SeverityInfo, "No valid session for %s -> redirect to login", r.URL.Path)
				http.Redirect(w, r, LoginURL(r.URL.RequestURI()), http.StatusSeeOther)
				return
			}

			next(w, r.WithContext(context.WithValue(r.Context(), ctxIdentityKey{}, identity)))
		}
	}
}

func LoginURL(callbackURL string) string {
	return "/login?callbackUrl=" + url.QueryEscape(callbackURL)
}
