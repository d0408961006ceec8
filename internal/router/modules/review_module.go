package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tonearm/tonearm/internal/container"
	handlers "github.com/tonearm/tonearm/internal/interface/http"
	"github.com/tonearm/tonearm/internal/interface/middleware"
)

type ReviewModule struct {
	Handler  *handlers.ReviewHandler
	Resolver middleware.UserResolver
}

func NewReviewModule(h *handlers.ReviewHandler, resolver middleware.UserResolver) *ReviewModule {
	return &ReviewModule{Handler: h, Resolver: resolver}
}

func (m *ReviewModule) Register(rg *gin.RouterGroup) {
	rg.GET("/reviews", m.Handler.List)
	rg.GET("/reviews/:id", m.Handler.Get)

	// Protected mutations
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Resolver))
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.POST("/reviews", m.Handler.Create)
		auth.PATCH("/reviews/:id", m.Handler.Update)
		auth.DELETE("/reviews/:id", m.Handler.Delete)
	}
}
