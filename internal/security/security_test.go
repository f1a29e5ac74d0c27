package security

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newCSRFRouter(t *testing.T) *gin.Engine {
	t.Helper()
	secret, err := GenerateSecret()
	require.NoError(t, err)

	router := gin.New()
	router.Use(CSRFMiddleware(DecodeSecret(secret), false))
	router.GET("/form", func(c *gin.Context) {
		c.String(http.StatusOK, GetCSRFToken(c))
	})
	router.POST("/form", func(c *gin.Context) {
		c.String(http.StatusOK, "saved")
	})
	return router
}

func TestCSRFMiddleware(t *testing.T) {
	t.Run("GET receives a token", func(t *testing.T) {
		router := newCSRFRouter(t)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/form", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Body.String())
		assert.NotEmpty(t, w.Result().Cookies())
	})

	t.Run("POST without token is rejected", func(t *testing.T) {
		router := newCSRFRouter(t)
		req := httptest.NewRequest(http.MethodPost, "/form", strings.NewReader("title=x"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.NotContains(t, w.Body.String(), "saved")
	})

	t.Run("POST without token gets JSON error when asked", func(t *testing.T) {
		router := newCSRFRouter(t)
		req := httptest.NewRequest(http.MethodPost, "/form", nil)
		req.Header.Set("Accept", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "CSRF token invalid or missing")
	})

	t.Run("POST with token from GET succeeds", func(t *testing.T) {
		router := newCSRFRouter(t)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/form", nil))
		token := w.Body.String()
		cookies := w.Result().Cookies()

		form := url.Values{CSRFFieldName: {token}, "title": {"Dune"}}
		req := httptest.NewRequest(http.MethodPost, "/form", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		for _, cookie := range cookies {
			req.AddCookie(cookie)
		}
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "saved", w.Body.String())
	})
}

func TestDecodeSecret(t *testing.T) {
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, DecodeSecret("deadbeef"))
	assert.Equal(t, []byte("not-hex-at-all"), DecodeSecret("not-hex-at-all"))
}

func TestGenerateSecret(t *testing.T) {
	a, err := GenerateSecret()
	require.NoError(t, err)
	b, err := GenerateSecret()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}

func TestHeadersMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(HeadersMiddleware())
	router.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "img-src 'self' data: https:")
}
