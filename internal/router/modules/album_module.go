package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tonearm/tonearm/internal/container"
	handlers "github.com/tonearm/tonearm/internal/interface/http"
	"github.com/tonearm/tonearm/internal/interface/middleware"
)

type AlbumModule struct {
	Handler  *handlers.AlbumHandler
	Resolver middleware.UserResolver
}

func NewAlbumModule(h *handlers.AlbumHandler, resolver middleware.UserResolver) *AlbumModule {
	return &AlbumModule{Handler: h, Resolver: resolver}
}

func (m *AlbumModule) Register(rg *gin.RouterGroup) {
	// Catalog proxies ride on a shared upstream token, so they get their
	// own per-IP cap. The OAuth callback arrives without a bearer token.
	catalogLimiter := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), nil)
	callbackLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.GET("/albums", catalogLimiter, m.Handler.Search)
	rg.GET("/albums/:id", catalogLimiter, m.Handler.Get)
	rg.GET("/albums/:id/reviews", m.Handler.AlbumReviews)
	rg.GET("/albums/:id/statuses", m.Handler.AlbumStatuses)
	rg.GET("/spotify/callback", callbackLimiter, m.Handler.SpotifyCallback)

	// Protected
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Resolver))
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.POST("/albums/:id/reviews", m.Handler.CreateAlbumReview)
		auth.POST("/albums/:id/statuses", m.Handler.CreateAlbumStatus)
		auth.GET("/spotify/login", m.Handler.SpotifyLogin)
	}
}
