package http

import (
	"github.com/gin-gonic/gin"

	"github.com/chaincampus/warden/core"
	"github.com/chaincampus/warden/service"
)

// NewRouter builds the gin engine with the full route table.
func NewRouter(h *Handlers, auth *service.AuthService) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.POST("/auth/token", h.Login)
	r.POST("/auth/federated", h.Federated)
	r.POST("/auth/introspect", h.Introspect)
	r.POST("/auth/refresh", h.Refresh)
	r.POST("/auth/logout", h.Logout)
	r.POST("/nonce", h.CreateNonce)
	r.POST("/users", h.Register)

	authed := r.Group("/", RequireToken(auth))
	{
		authed.GET("/api/me", h.Me)
		authed.PUT("/users/:id", h.UpdateUser)
		authed.GET("/enrollment/validate", h.ValidatePayment)
		authed.POST("/enrollment", h.Enroll)

		admin := authed.Group("/", RequireAction(core.ActionManageUsers))
		{
			admin.GET("/users", h.ListUsers)
			admin.DELETE("/users/:id", h.DeleteUser)
		}
	}

	return r
}
