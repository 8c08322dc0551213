package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dryad-restoration/dryad-backend/internal/http/response"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/ctxutil"
	perr "github.com/dryad-restoration/dryad-backend/internal/pkg/errors"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/logger"
	"github.com/dryad-restoration/dryad-backend/internal/platform/apierr"
	"github.com/dryad-restoration/dryad-backend/internal/services"
)

type AuthMiddleware struct {
	log      *logger.Logger
	sessions services.SessionService
}

func NewAuthMiddleware(log *logger.Logger, sessions services.SessionService) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware"), sessions: sessions}
}

// RequireAuth resolves the session token into request data or aborts with
// 401 (no or bad token) or 403 (the user may no longer act).
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			response.RespondError(c, http.StatusUnauthorized, "unauthorized", perr.ErrUnauthorized)
			c.Abort()
			return
		}
		ctx, err := am.sessions.SetContextFromToken(c.Request.Context(), tokenString)
		if err != nil {
			am.log.Debug("Rejected session token", "error", err)
			ae := apierr.From(err)
			response.RespondError(c, ae.Status, ae.Code, err)
			c.Abort()
			return
		}
		rd := ctxutil.GetRequestData(ctx)
		if rd == nil || rd.UserID == uuid.Nil {
			response.RespondError(c, http.StatusForbidden, "forbidden", perr.ErrForbidden)
			c.Abort()
			return
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// extractToken reads the token query parameter (EventSource cannot set
// headers) and falls back to a Bearer Authorization header.
func extractToken(c *gin.Context) string {
	if q := strings.TrimSpace(c.Query("token")); q != "" {
		return q
	}
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
