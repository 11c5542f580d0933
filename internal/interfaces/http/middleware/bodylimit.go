package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/logistics/console/internal/interfaces/http/dto"
)

const msgBodyTooLarge = "Request body exceeds maximum allowed size"

// BodyLimit rejects request bodies over maxBytes. API clients get the JSON
// envelope, form posts a plain-text 413. Bodies without a Content-Length are
// cut off while the handler reads them.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength <= maxBytes {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
			c.Next()
			return
		}

		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRequestTooLarge, msgBodyTooLarge, GetRequestID(c)))
			return
		}
		c.String(http.StatusRequestEntityTooLarge, msgBodyTooLarge)
		c.Abort()
	}
}
