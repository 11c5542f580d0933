package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/logistics/console/internal/infrastructure/logger"
)

// Session keys
const (
	SessionCookieName    = "lc_session"
	SessionIDKey         = "session_id"
	IdempotencyKeyHeader = "Idempotency-Key"
)

// SessionConfig configures the console session cookie
type SessionConfig struct {
	Secure bool // send the cookie over HTTPS only
	MaxAge int  // seconds, 0 = browser session
}

// Session gives every browser a stable anonymous session ID. The ID keys
// the in-flight guard of its forms and binds the map tokens issued to it.
func Session(cfg SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(SessionCookieName)
		if err != nil || uuid.Validate(sessionID) != nil {
			sessionID = uuid.NewString()
			c.SetSameSite(http.SameSiteStrictMode)
			c.SetCookie(SessionCookieName, sessionID, cfg.MaxAge, "/", "", cfg.Secure, true)
		}
		c.Set(SessionIDKey, sessionID)

		ctx, _ := logger.WithSessionID(c.Request.Context(), logger.FromContext(c.Request.Context()), sessionID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetSessionID returns the session ID set by Session
func GetSessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}

// SubmissionKey returns the in-flight guard key for a form flow. JSON
// clients may scope it with an Idempotency-Key header; browsers are keyed
// by session so a double click on the same form is caught.
func SubmissionKey(c *gin.Context, flow string) string {
	if key := c.GetHeader(IdempotencyKeyHeader); key != "" && len(key) <= MaxRequestIDLength {
		return flow + ":key:" + key
	}
	if sessionID := GetSessionID(c); sessionID != "" {
		return flow + ":session:" + sessionID
	}
	return ""
}
