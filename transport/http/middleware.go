package http

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/chaincampus/warden/core"
	"github.com/chaincampus/warden/service"
)

const (
	ctxUserID = "warden.userID"
	ctxRole   = "warden.role"
)

// RequireToken validates the bearer token and stores the caller's identity
// and role on the request context for downstream handlers.
func RequireToken(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondError(c, core.ErrUnauthenticated)
			c.Abort()
			return
		}

		claims, err := auth.ValidateToken(c.Request.Context(), token)
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}

		c.Set(ctxUserID, claims.Subject)
		c.Set(ctxRole, strings.TrimPrefix(claims.Scope, "ROLE_"))
		c.Next()
	}
}

// RequireAction rejects callers whose role does not grant the action.
func RequireAction(action core.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !core.Allowed(actorRole(c), action) {
			respondError(c, core.ErrUnauthorized)
			c.Abort()
			return
		}
		c.Next()
	}
}

func actorID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

func actorRole(c *gin.Context) string {
	return c.GetString(ctxRole)
}
