package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tonearm/tonearm/internal/container"
	handlers "github.com/tonearm/tonearm/internal/interface/http"
	"github.com/tonearm/tonearm/internal/interface/middleware"
)

type StatusModule struct {
	Handler  *handlers.StatusHandler
	Resolver middleware.UserResolver
}

func NewStatusModule(h *handlers.StatusHandler, resolver middleware.UserResolver) *StatusModule {
	return &StatusModule{Handler: h, Resolver: resolver}
}

func (m *StatusModule) Register(rg *gin.RouterGroup) {
	rg.GET("/statuses", m.Handler.List)
	rg.GET("/statuses/:id", m.Handler.Get)

	// Protected mutations
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Resolver))
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.POST("/statuses", m.Handler.Create)
		auth.PATCH("/statuses/:id", m.Handler.Update)
		auth.DELETE("/statuses/:id", m.Handler.Delete)
	}
}
