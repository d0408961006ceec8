package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tonearm/tonearm/internal/container"
	handlers "github.com/tonearm/tonearm/internal/interface/http"
	"github.com/tonearm/tonearm/internal/interface/middleware"
)

// UserModule wires user HTTP handlers and auth middleware into routes.
// Public: listing, search, profiles and per-user collections, with an
// optional bearer token on profile reads so is_following can be filled in.
// Protected: /me, profile picture upload, account deletion and the
// follow/unfollow edges.

type UserModule struct {
	Handler  *handlers.UserHandler
	Resolver middleware.UserResolver
}

func NewUserModule(h *handlers.UserHandler, resolver middleware.UserResolver) *UserModule {
	return &UserModule{Handler: h, Resolver: resolver}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	searchLimiter := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIPAndPath(), nil)
	viewer := middleware.OptionalAuth(m.Resolver)

	rg.GET("/users", m.Handler.List)
	rg.GET("/users/search", searchLimiter, m.Handler.Search)
	rg.GET("/users/:id", viewer, m.Handler.Profile)
	rg.GET("/users/by-username/:username", viewer, m.Handler.ProfileByUsername)
	rg.GET("/users/:id/followers", m.Handler.Followers)
	rg.GET("/users/:id/following", m.Handler.Following)
	rg.GET("/users/:id/reviews", m.Handler.UserReviews)
	rg.GET("/users/:id/statuses", m.Handler.UserStatuses)

	// Protected
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Resolver))
	// Apply a softer per-IP limiter to all protected routes
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.GET("/me", m.Handler.Me)
		auth.POST("/me/profile-picture", m.Handler.PresignProfilePicture)
		auth.DELETE("/users/:id", m.Handler.Delete)
		auth.POST("/users/:id/follow", m.Handler.Follow)
		auth.DELETE("/users/:id/unfollow", m.Handler.Unfollow)
	}
}
