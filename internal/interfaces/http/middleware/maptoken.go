package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/logistics/console/internal/infrastructure/auth"
	"github.com/logistics/console/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Map token keys
const (
	MapClaimsKey   = "map_claims"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
	MapTokenQuery  = "token"
	MapTokenHeader = "X-Map-Token"
)

// MapTokenValidator validates map tokens
type MapTokenValidator interface {
	Validate(ctx context.Context, tokenString, scope string) (*auth.MapClaims, error)
}

// RequireMapToken rejects requests without a valid, unrevoked map token
// carrying scope. The token is read from the Authorization bearer header,
// the X-Map-Token header or, for image tags, the token query parameter.
func RequireMapToken(validator MapTokenValidator, scope string, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		tokenString := ExtractMapToken(c)
		if tokenString == "" {
			abortMapToken(c, dto.ErrCodeUnauthorized, "Map token required")
			return
		}

		claims, err := validator.Validate(c.Request.Context(), tokenString, scope)
		if err != nil {
			code, message := mapTokenError(err)
			log.Warn("Map token rejected",
				zap.Error(err),
				zap.String("scope", scope),
				zap.String("path", c.Request.URL.Path),
			)
			abortMapToken(c, code, message)
			return
		}

		c.Set(MapClaimsKey, claims)
		c.Next()
	}
}

// ExtractMapToken returns the raw map token presented by the request
func ExtractMapToken(c *gin.Context) string {
	if h := c.GetHeader(AuthHeaderKey); strings.HasPrefix(h, BearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(h, BearerPrefix))
	}
	if h := c.GetHeader(MapTokenHeader); h != "" {
		return h
	}
	return c.Query(MapTokenQuery)
}

// GetMapClaims returns the claims stored by RequireMapToken
func GetMapClaims(c *gin.Context) *auth.MapClaims {
	if claims, ok := c.Get(MapClaimsKey); ok {
		if mc, ok := claims.(*auth.MapClaims); ok {
			return mc
		}
	}
	return nil
}

func mapTokenError(err error) (string, string) {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return dto.ErrCodeTokenExpired, "Map token has expired"
	case errors.Is(err, auth.ErrTokenRevoked):
		return dto.ErrCodeTokenRevoked, "Map token has been revoked"
	case errors.Is(err, auth.ErrMissingScope):
		return dto.ErrCodeForbidden, "Map token does not allow this operation"
	default:
		return dto.ErrCodeTokenInvalid, "Invalid map token"
	}
}

func abortMapToken(c *gin.Context, code, message string) {
	status := dto.GetHTTPStatus(code)
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", `Bearer realm="maps"`)
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}
