package middleware

import (
	"context"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tonearm/tonearm/internal/domain/entity"
	"github.com/tonearm/tonearm/pkg/apperr"
	"github.com/tonearm/tonearm/pkg/response"
)

// UserResolver turns a bearer access token into the acting user.
// application.AuthService satisfies it.
type UserResolver interface {
	ResolveUser(ctx context.Context, token string) (*entity.User, error)
}

// Auth requires a valid bearer token. It sets "user" (*entity.User) and
// "userID" (string, for the per-user rate limiter) in the Gin context.
func Auth(resolver UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.AbortError(c, apperr.Auth("Not authenticated"))
			return
		}
		user, err := resolver.ResolveUser(c.Request.Context(), token)
		if err != nil {
			response.AbortError(c, err)
			return
		}
		setUser(c, user)
		c.Next()
	}
}

// OptionalAuth resolves the bearer token when one is present so public
// reads can be viewer-aware. Anonymous and invalid-token requests pass
// through with no user set.
func OptionalAuth(resolver UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if user, err := resolver.ResolveUser(c.Request.Context(), token); err == nil {
				setUser(c, user)
			}
		}
		c.Next()
	}
}

func setUser(c *gin.Context, user *entity.User) {
	c.Set("user", user)
	c.Set("userID", strconv.FormatInt(user.ID, 10))
}

func bearerToken(c *gin.Context) (string, bool) {
	h := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		token := strings.TrimSpace(h[len(prefix):])
		return token, token != ""
	}
	return "", false
}
