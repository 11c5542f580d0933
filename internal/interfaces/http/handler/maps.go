package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	dispatchapp "github.com/logistics/console/internal/application/dispatch"
	"github.com/logistics/console/internal/domain/route"
	"github.com/logistics/console/internal/infrastructure/auth"
	"github.com/logistics/console/internal/infrastructure/logger"
	"github.com/logistics/console/internal/infrastructure/maps"
	"github.com/logistics/console/internal/interfaces/http/dto"
	"github.com/logistics/console/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// maxPolylineLength bounds the encoded path accepted by the static map proxy
const maxPolylineLength = 8192

// MapTokenIssuer issues and revokes map tokens
type MapTokenIssuer interface {
	Issue(sessionID string, scopes ...string) (*auth.MapToken, error)
	Revoke(ctx context.Context, tokenString string) error
}

// RoutePreviewer adapts a backend route into directions
type RoutePreviewer interface {
	Preview(ctx context.Context, resp route.RouteResponse) (dispatchapp.Preview, error)
}

// StaticMapper renders static map images
type StaticMapper interface {
	Enabled() bool
	Fetch(ctx context.Context, view route.MapView, polyline string) (*maps.StaticImage, error)
}

// MapsHandler serves every provider-backed endpoint. The provider key
// stays on the server; clients present map tokens instead.
type MapsHandler struct {
	BaseHandler
	tokens    MapTokenIssuer
	previewer RoutePreviewer
	static    StaticMapper
	view      route.MapView
}

// NewMapsHandler creates a new MapsHandler. view is the viewport of static maps.
func NewMapsHandler(tokens MapTokenIssuer, previewer RoutePreviewer, static StaticMapper, view route.MapView) *MapsHandler {
	return &MapsHandler{
		tokens:    tokens,
		previewer: previewer,
		static:    static,
		view:      view,
	}
}

// IssueToken mints a token with the default scopes for the caller's session
func (h *MapsHandler) IssueToken(c *gin.Context) {
	token, err := h.tokens.Issue(middleware.GetSessionID(c))
	if err != nil {
		logger.GetGinLogger(c).Error("Failed to issue map token", zap.Error(err))
		h.InternalError(c, "Failed to issue map token")
		return
	}

	c.Header("Cache-Control", "no-store")
	h.Created(c, dto.MapTokenResponse{
		Token:     token.Token,
		TokenType: token.TokenType,
		ExpiresIn: int64(time.Until(token.ExpiresAt).Seconds()),
		Scopes:    token.Scopes,
	})
}

// RevokeToken revokes the presented token until its natural expiry
func (h *MapsHandler) RevokeToken(c *gin.Context) {
	tokenString := middleware.ExtractMapToken(c)
	if tokenString == "" {
		h.ErrorWithCode(c, dto.ErrCodeUnauthorized, "Map token required")
		return
	}

	if err := h.tokens.Revoke(c.Request.Context(), tokenString); err != nil {
		if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrInvalidClaims) || errors.Is(err, auth.ErrTokenNotYetValid) {
			h.ErrorWithCode(c, dto.ErrCodeTokenInvalid, "Invalid map token")
			return
		}
		logger.GetGinLogger(c).Error("Failed to revoke map token", zap.Error(err))
		h.InternalError(c, "Failed to revoke map token")
		return
	}
	h.NoContent(c)
}

// Directions adapts a posted backend route and returns the map preview.
// Invalid or empty routes answer 422 without a provider request.
func (h *MapsHandler) Directions(c *gin.Context) {
	if !h.boundToSession(c) {
		return
	}

	var resp route.RouteResponse
	if err := c.ShouldBindJSON(&resp); err != nil {
		h.BindError(c, err)
		return
	}

	preview, err := h.previewer.Preview(c.Request.Context(), resp)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, preview)
}

// StaticMap proxies the provider's static map for the configured viewport,
// drawing the encoded polyline query parameter when present
func (h *MapsHandler) StaticMap(c *gin.Context) {
	if !h.boundToSession(c) {
		return
	}
	if !h.static.Enabled() {
		h.HandleError(c, maps.ErrStaticMapDisabled)
		return
	}

	polyline := c.Query("polyline")
	if len(polyline) > maxPolylineLength {
		h.BadRequest(c, "Polyline is too long")
		return
	}

	img, err := h.static.Fetch(c.Request.Context(), h.view, polyline)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Cache-Control", "private, max-age=300")
	c.Data(http.StatusOK, img.ContentType, img.Body)
}

// boundToSession rejects tokens minted for another browser session
func (h *MapsHandler) boundToSession(c *gin.Context) bool {
	claims := middleware.GetMapClaims(c)
	if claims == nil || claims.SessionID != middleware.GetSessionID(c) {
		h.ErrorWithCode(c, dto.ErrCodeForbidden, "Map token belongs to another session")
		return false
	}
	return true
}
