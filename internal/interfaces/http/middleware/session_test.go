package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/logistics/console/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionRouter() *gin.Engine {
	router := gin.New()
	router.Use(Session(SessionConfig{}))
	router.GET("/dispatch", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"session": GetSessionID(c),
			"logged":  logger.GetSessionID(c.Request.Context()),
			"key":     SubmissionKey(c, "dispatch"),
		})
	})
	return router
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	return nil
}

func TestSession_IssuesCookie(t *testing.T) {
	router := newSessionRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/dispatch", nil))

	cookie := sessionCookie(w)
	require.NotNil(t, cookie)
	assert.NoError(t, uuid.Validate(cookie.Value))
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Contains(t, w.Body.String(), `"session":"`+cookie.Value+`"`)
	assert.Contains(t, w.Body.String(), `"logged":"`+cookie.Value+`"`)
	assert.Contains(t, w.Body.String(), `"key":"dispatch:session:`+cookie.Value+`"`)
}

func TestSession_ReusesValidCookie(t *testing.T) {
	router := newSessionRouter()
	id := uuid.NewString()

	req := httptest.NewRequest("GET", "/dispatch", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: id})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Nil(t, sessionCookie(w))
	assert.Contains(t, w.Body.String(), id)
}

func TestSession_ReplacesForgedCookie(t *testing.T) {
	router := newSessionRouter()

	req := httptest.NewRequest("GET", "/dispatch", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "admin"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	cookie := sessionCookie(w)
	require.NotNil(t, cookie)
	assert.NotEqual(t, "admin", cookie.Value)
}

func TestSubmissionKey(t *testing.T) {
	router := newSessionRouter()

	t.Run("idempotency key wins", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/dispatch", nil)
		req.Header.Set(IdempotencyKeyHeader, "abc-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Contains(t, w.Body.String(), `"key":"dispatch:key:abc-123"`)
	})

	t.Run("oversized idempotency key falls back to session", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/dispatch", nil)
		req.Header.Set(IdempotencyKeyHeader, strings.Repeat("k", MaxRequestIDLength+1))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Contains(t, w.Body.String(), `"key":"dispatch:session:`)
	})

	t.Run("no session no key", func(t *testing.T) {
		bare := gin.New()
		bare.GET("/dispatch", func(c *gin.Context) { c.String(http.StatusOK, SubmissionKey(c, "dispatch")) })
		w := httptest.NewRecorder()
		bare.ServeHTTP(w, httptest.NewRequest("GET", "/dispatch", nil))

		assert.Empty(t, w.Body.String())
	})
}
