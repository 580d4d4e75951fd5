package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemcomputerscienceclub/STEMuiz/internal/auth"
)

func newRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", mw, func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextUserID))
	})
	return r
}

func get(r http.Handler, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	verifier := auth.NewVerifier("secret")
	token, err := verifier.Issue("host-1", time.Hour)
	require.NoError(t, err)
	r := newRouter(Authenticate(verifier))

	w := get(r, map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "host-1", w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, get(r, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, map[string]string{"Authorization": token}).Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, map[string]string{"Authorization": "Bearer nope"}).Code)
	// the gateway header is ignored once JWTs are enabled
	assert.Equal(t, http.StatusUnauthorized, get(r, map[string]string{"X-User-ID": "host-1"}).Code)
}

func TestGatewayUser(t *testing.T) {
	r := newRouter(Authenticate(auth.NewVerifier("")))

	w := get(r, map[string]string{"X-User-ID": "host-9"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "host-9", w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, get(r, nil).Code)
}

func TestBearerToken(t *testing.T) {
	token, ok := BearerToken("Bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	for _, h := range []string{"", "Bearer", "Bearer ", "Basic abc", "bearer abc"} {
		_, ok := BearerToken(h)
		assert.False(t, ok, h)
	}
}
