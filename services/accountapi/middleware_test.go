package accountapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/cafeshop/lib/mylog"
)

func setup(t *testing.T, ctrl *gomock.Controller) (*mux.Router, *MockIdentityVerifier) {
	verifier := NewMockIdentityVerifier(ctrl)
	protect := RequireSession(verifier, mylog.New("test"))

	router := mux.NewRouter()
	router.HandleFunc("/profile", protect(func(w http.ResponseWriter, r *http.Request) {
		identity, _ := IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("hello " + identity.Email))
	})).Methods("GET")

	return router, verifier
}

func TestRequireSession(t *testing.T) {
	t.Run("Without session", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		router, verifier := setup(t, ctrl)
		verifier.EXPECT().ResolveSession(gomock.Any(), "").Return(Identity{}, false, nil)

		// when
		request, err := http.NewRequest(http.MethodGet, "/profile?tab=orders", nil)
		assert.NoError(t, err)
		request.Host = "localhost:8888"
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, http.StatusSeeOther, response.Code)
		assert.Equal(t, "/login?callbackUrl=%2Fprofile%3Ftab%3Dorders", response.Header().Get("Location"))
	})

	t.Run("With session cookie", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		router, verifier := setup(t, ctrl)
		verifier.EXPECT().ResolveSession(gomock.Any(), "abc").Return(Identity{UserUID: "1", Email: "marc@home.nl"}, true, nil)

		// when
		request, err := http.NewRequest(http.MethodGet, "/profile", nil)
		assert.NoError(t, err)
		request.Host = "localhost:8888"
		request.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "abc"})
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		assert.Equal(t, "hello marc@home.nl", response.Body.String())
	})

	t.Run("Session lookup fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		router, verifier := setup(t, ctrl)
		verifier.EXPECT().ResolveSession(gomock.Any(), "abc").Return(Identity{}, false, assert.AnError)

		// when
		request, err := http.NewRequest(http.MethodGet, "/profile", nil)
		assert.NoError(t, err)
		request.Header.Set("Authorization", "Bearer abc")
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, http.StatusInternalServerError, response.Code)
	})
}

func TestSessionTokenFromRequest(t *testing.T) {
	request, _ := http.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "", SessionTokenFromRequest(request))

	request.Header.Set("Authorization", "Bearer xyz")
	assert.Equal(t, "xyz", SessionTokenFromRequest(request))

	request.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "abc"})
	assert.Equal(t, "abc", SessionTokenFromRequest(request))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "marc@home.nl", NormalizeEmail("  Marc@Home.NL "))
}
