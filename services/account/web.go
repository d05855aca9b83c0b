package account

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	formcodec "github.com/go-playground/form/v4"
	"github.com/gorilla/mux"

	"github.com/MarcGrol/cafeshop/lib/mycontext"
	"github.com/MarcGrol/cafeshop/lib/myerrors"
	"github.com/MarcGrol/cafeshop/lib/myhttp"
	"github.com/MarcGrol/cafeshop/lib/mylog"
	"github.com/MarcGrol/cafeshop/lib/mypublisher"
	"github.com/MarcGrol/cafeshop/lib/mystore"
	"github.com/MarcGrol/cafeshop/lib/mytime"
	"github.com/MarcGrol/cafeshop/lib/mytoken"
	"github.com/MarcGrol/cafeshop/lib/myuuid"
	"github.com/MarcGrol/cafeshop/services/accountapi"
)

const defaultCallbackURL = "/profile"

//go:embed templates
var templateFolder embed.FS
var (
	loginPageTemplate *template.Template
	formDecoder       = formcodec.NewDecoder()
)

func init() {
	loginPageTemplate = template.Must(template.ParseFS(templateFolder, "templates/login.html"))
}

type webService struct {
	logger  mylog.Logger
	service *service
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewWebService(userStore mystore.Store[User], sessionStore mystore.Store[Session], nower mytime.Nower, uuider myuuid.UUIDer, tokener mytoken.Tokener, pub mypublisher.Publisher) (*webService, error) {
	sessionMaxAge, err := sessionMaxAgeFromEnv()
	if err != nil {
		return nil, err
	}

	logger := mylog.New("account")
	return &webService{
		logger:  logger,
		service: newService(userStore, sessionStore, nower, uuider, tokener, sessionMaxAge, logger, pub),
	}, nil
}

func sessionMaxAgeFromEnv() (time.Duration, error) {
	value := os.Getenv("SESSION_MAX_AGE")
	if value == "" {
		return defaultSessionMaxAge, nil
	}
	maxAge, err := time.ParseDuration(value)
	if err != nil || maxAge <= 0 {
		return 0, fmt.Errorf("invalid SESSION_MAX_AGE %q", value)
	}
	return maxAge, nil
}

// IdentityVerifier exposes authentication and session resolution to other services
func (s *webService) IdentityVerifier() accountapi.IdentityVerifier {
	return s.service
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/login", s.loginPage()).Methods("GET")
	router.HandleFunc("/login", s.loginForm()).Methods("POST")
	router.HandleFunc("/logout", s.logout()).Methods("POST")
	router.HandleFunc("/register", s.register()).Methods("POST")

	router.HandleFunc("/api/login", s.loginAPI()).Methods("POST")
	router.HandleFunc("/api/session", s.sessionAPI()).Methods("GET")

	err := s.service.publisher.CreateTopic(c, TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %s", TopicName, err)
	}

	return nil
}

type loginPageData struct {
	CallbackURL string
	Error       string
	Registered  bool
}

func (s *webService) loginPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		query := r.URL.Query()
		responseWriter.WriteHTML(c, w, http.StatusOK, loginPageTemplate, loginPageData{
			CallbackURL: myhttp.SafeRedirectPath(query.Get("callbackUrl"), defaultCallbackURL),
			Error:       query.Get("error"),
			Registered:  query.Get("registered") == "true",
		})
	}
}

func (s *webService) loginForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		req := LoginRequest{}
		err := decodeForm(r, &req)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}
		callbackURL := myhttp.SafeRedirectPath(req.CallbackURL, defaultCallbackURL)

		token, _, err := s.service.signIn(c, req.Email, req.Password)
		if err != nil {
			if myerrors.GetHTTPStatus(err) == http.StatusUnauthorized {
				http.Redirect(w, r, loginURLWithError(callbackURL, myerrors.Message(err)), http.StatusSeeOther)
				return
			}
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		setSessionCookie(w, r, token, s.service.sessionMaxAge)

		http.Redirect(w, r, callbackURL, http.StatusSeeOther)
	}
}

func (s *webService) loginAPI() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		req := LoginRequest{}
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(fmt.Errorf("error parsing login request: %s", err)))
			return
		}

		token, session, err := s.service.signIn(c, req.Email, req.Password)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, LoginResponse{
			Token:     token,
			ExpiresAt: session.ExpiresAt,
		})
	}
}

func (s *webService) logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		err := s.service.signOut(c, accountapi.SessionTokenFromRequest(r))
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		setSessionCookie(w, r, "", -1)

		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func (s *webService) sessionAPI() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		identity, found, err := s.service.ResolveSession(c, accountapi.SessionTokenFromRequest(r))
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}
		if !found {
			errorWriter.WriteError(c, w, 2, myerrors.NewUnauthorizedError(fmt.Errorf("no valid session")))
			return
		}

		errorWriter.Write(c, w, http.StatusOK, SessionResponse{
			UserUID: identity.UserUID,
			Email:   identity.Email,
			Name:    identity.Name,
		})
	}
}

// register accepts a regular form from the login page and json from everybody else
func (s *webService) register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		asJSON := !isFormRequest(r)

		req := RegisterRequest{}
		var err error
		if asJSON {
			err = json.NewDecoder(r.Body).Decode(&req)
			if err != nil {
				err = myerrors.NewInvalidInputError(fmt.Errorf("error parsing register request: %s", err))
			}
		} else {
			err = decodeForm(r, &req)
		}
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		user, err := s.service.register(c, req)
		if err != nil {
			if !asJSON && myerrors.GetHTTPStatus(err) == http.StatusBadRequest {
				http.Redirect(w, r, loginURLWithError(defaultCallbackURL, myerrors.Message(err)), http.StatusSeeOther)
				return
			}
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		if !asJSON {
			http.Redirect(w, r, "/login?registered=true", http.StatusSeeOther)
			return
		}

		errorWriter.Write(c, w, http.StatusCreated, userToResponse(user))
	}
}

func decodeForm(r *http.Request, dest any) error {
	err := r.ParseForm()
	if err != nil {
		return myerrors.NewInvalidInputError(fmt.Errorf("error parsing form: %s", err))
	}
	err = formDecoder.Decode(dest, r.PostForm)
	if err != nil {
		return myerrors.NewInvalidInputError(fmt.Errorf("error decoding form: %s", err))
	}
	return nil
}

// isFormRequest recognizes browser form posts, everything else is read as json
func isFormRequest(r *http.Request) bool {
	contentType := r.Header.Get("Content-Type")
	return strings.HasPrefix(contentType, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(contentType, "multipart/form-data")
}

func loginURLWithError(callbackURL string, message string) string {
	return accountapi.LoginURL(callbackURL) + "&error=" + url.QueryEscape(message)
}

func setSessionCookie(w http.ResponseWriter, r *http.Request, token string, maxAge time.Duration) {
	cookie := &http.Cookie{
		Name:     accountapi.SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	}
	if maxAge < 0 {
		cookie.MaxAge = -1
	} else {
		cookie.MaxAge = int(maxAge.Seconds())
	}
	http.SetCookie(w, cookie)
}
