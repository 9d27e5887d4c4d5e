package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/user", AccessTokenMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": c.MustGet("userId")})
	})
	r.GET("/admin", AccessTokenMiddleware(), AdminMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func call(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAccessTokenMiddleware(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", testSecret)
	r := newRouter()
	exp := time.Now().Add(time.Hour).Unix()

	w := call(r, "/user", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = call(r, "/user", "garbage")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = call(r, "/user", sign(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"userId": 1, "exp": exp}))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = call(r, "/user", sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"userId": 42, "exp": exp}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userId":"42"}`, w.Body.String())

	w = call(r, "/user", sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"userId": "abc", "exp": exp}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userId":"abc"}`, w.Body.String())

	w = call(r, "/user", sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"exp": exp}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = call(r, "/user", sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"userId": 1, "exp": time.Now().Add(-time.Hour).Unix()}))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminMiddleware(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", testSecret)
	r := newRouter()

	w := call(r, "/admin", sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"userId": 1, "role": "user"}))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = call(r, "/admin", sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"userId": 1}))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = call(r, "/admin", sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"userId": 1, "role": "admin"}))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAdminMiddlewareWithoutAccessToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", AdminMiddleware(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := call(r, "/admin", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Claims not found"}`, w.Body.String())
}
