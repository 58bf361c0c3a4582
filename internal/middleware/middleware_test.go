package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ZODIAC3K/refactor-capstone/internal/apperr"
	"github.com/ZODIAC3K/refactor-capstone/internal/auth"
	"github.com/ZODIAC3K/refactor-capstone/internal/models"
)

type stubAuthenticator struct {
	actor auth.Actor
	err   error
	got   [2]string
}

func (s *stubAuthenticator) Authenticate(_ context.Context, access, refresh string) (auth.Actor, error) {
	s.got = [2]string{access, refresh}
	return s.actor, s.err
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append(mw, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": ActorFrom(c).UserID.Hex()})
	})
	r.GET("/protected", handlers...)
	return r
}

func withCookies(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: auth.AccessCookie, Value: "a"})
	req.AddCookie(&http.Cookie{Name: auth.RefreshCookie, Value: "r"})
	return req
}

func TestUserAuthInjectsActor(t *testing.T) {
	actor := auth.Actor{UserID: primitive.NewObjectID(), Role: models.RoleUser}
	stub := &stubAuthenticator{actor: actor}
	r := newRouter(UserAuth(stub))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, withCookies(httptest.NewRequest(http.MethodGet, "/protected", nil)))

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), actor.UserID.Hex())
	require.Equal(t, [2]string{"a", "r"}, stub.got)
}

func TestUserAuthMapsErrorKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{apperr.New(apperr.AuthenticationMissing, "No access token provided"), http.StatusUnauthorized},
		{apperr.New(apperr.AuthenticationInvalid, "Invalid access token"), http.StatusUnauthorized},
		{apperr.New(apperr.Internal, "Failed to verify session"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		r := newRouter(UserAuth(&stubAuthenticator{err: tc.err}))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))
		require.Equal(t, tc.status, w.Code)
		require.Contains(t, w.Body.String(), apperr.Message(tc.err))
	}
}

func TestAdminAuth(t *testing.T) {
	user := &stubAuthenticator{actor: auth.Actor{UserID: primitive.NewObjectID(), Role: models.RoleUser}}
	admin := &stubAuthenticator{actor: auth.Actor{UserID: primitive.NewObjectID(), Role: models.RoleAdmin}}

	w := httptest.NewRecorder()
	newRouter(UserAuth(user), AdminAuth()).ServeHTTP(w, withCookies(httptest.NewRequest(http.MethodGet, "/protected", nil)))
	require.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	newRouter(UserAuth(admin), AdminAuth()).ServeHTTP(w, withCookies(httptest.NewRequest(http.MethodGet, "/protected", nil)))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	newRouter(AdminAuth()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestLoggerAndRecovery(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(zap.New(core)), Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	r.ServeHTTP(w, req)
	require.Equal(t, "req-1", w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotEmpty(t, w.Header().Get(RequestIDHeader))

	require.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
	completed := logs.FilterMessage("request completed").All()
	require.Len(t, completed, 2)
	require.Equal(t, "req-1", completed[0].ContextMap()["requestId"])
}
