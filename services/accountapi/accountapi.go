package accountapi

import (
	"context"
	"net/http"
	"strings"
	"time"
)

const (
	SessionCookieName = "cafe_session"
)

// Identity is who a valid session belongs to.
type Identity struct {
	UserUID string
	Email   string
	Name    string
}

type User struct {
	UID       string
	Email     string
	Name      string
	CreatedAt time.Time
}

//go:generate mockgen -source=accountapi.go -package accountapi -destination identityverifier_mock.go IdentityVerifier
type IdentityVerifier interface {
	// Authenticate checks credentials. Unknown users and wrong passwords are reported as not ok, not as an error.
	Authenticate(c context.Context, email string, password string) (Identity, bool, error)
	ResolveSession(c context.Context, token string) (Identity, bool, error)
	LookupUser(c context.Context, email string) (User, bool, error)
}

// NormalizeEmail is the canonical form under which users are stored.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SessionTokenFromRequest takes the token from the session cookie, or from a bearer authorization header.
func SessionTokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authorization := r.Header.Get("Authorization")
	if token, found := strings.CutPrefix(authorization, "Bearer "); found {
		return strings.TrimSpace(token)
	}

	return ""
}
