package application

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/tonearm/tonearm/internal/domain/entity"
	"github.com/tonearm/tonearm/internal/domain/repository"
	"github.com/tonearm/tonearm/internal/infrastructure/spotify"
	"github.com/tonearm/tonearm/pkg/apperr"
	"github.com/tonearm/tonearm/pkg/helpers"
)

// Catalog is the slice of the Spotify client the album service depends on.
type Catalog interface {
	GetAlbum(ctx context.Context, id string) (*spotify.Album, error)
	SearchAlbums(ctx context.Context, q string, limit, offset int) (int64, []spotify.Album, error)
	AuthorizeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*spotify.UserTokens, error)
}

// stateTTL bounds how long a Spotify account-link attempt stays valid.
const stateTTL = 10 * time.Minute

// AlbumService fronts the external catalog: album lookup with a Redis
// cache, album search, and the per-user account-link flow.
type AlbumService struct {
	Catalog  Catalog
	Users    repository.UserRepository
	JWT      *helpers.JWTManager
	Redis    *redis.Client
	CacheTTL time.Duration
	Logger   *logrus.Logger
}

func NewAlbumService(catalog Catalog, users repository.UserRepository, jwt *helpers.JWTManager, rdb *redis.Client, cacheTTL time.Duration, logger *logrus.Logger) *AlbumService {
	return &AlbumService{Catalog: catalog, Users: users, JWT: jwt, Redis: rdb, CacheTTL: cacheTTL, Logger: logger}
}

// GetAlbum fetches album metadata, serving from Redis when the entry is
// fresh. Not-found answers are never cached, so an id that appears in the
// catalog later is picked up immediately.
func (s *AlbumService) GetAlbum(ctx context.Context, id string) (*spotify.Album, error) {
	if id == "" {
		return nil, apperr.Validation("album_id", "is required")
	}
	key := "album:" + id
	if s.cacheEnabled() {
		var cached spotify.Album
		found, err := helpers.RedisGetJSON(ctx, s.Redis, key, &cached)
		if err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("key", key).Warn("album cache read failed")
		}
		if found {
			return &cached, nil
		}
	}

	album, err := s.Catalog.GetAlbum(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cacheEnabled() {
		if err := helpers.RedisSetJSON(ctx, s.Redis, key, album, s.CacheTTL); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("key", key).Warn("album cache write failed")
		}
	}
	return album, nil
}

// SearchAlbums queries the catalog. Results are not cached; the query space
// is unbounded and the upstream already paginates.
func (s *AlbumService) SearchAlbums(ctx context.Context, q string, page helpers.Page) (int64, []spotify.Album, error) {
	if q == "" {
		return 0, nil, apperr.Validation("q", "is required")
	}
	return s.Catalog.SearchAlbums(ctx, q, page.Limit, page.Offset)
}

// BeginLink starts the Spotify account link for a user and returns the
// authorization URL to redirect them to. The state parameter is a signed
// token carrying the user id, so the callback needs no session.
func (s *AlbumService) BeginLink(userID int64) (string, error) {
	state, err := s.JWT.GenerateStateToken(strconv.FormatInt(userID, 10), stateTTL)
	if err != nil {
		return "", err
	}
	return s.Catalog.AuthorizeURL(state), nil
}

// CompleteLink handles the OAuth callback: verifies state, trades the code
// for tokens and stores them on the account.
func (s *AlbumService) CompleteLink(ctx context.Context, code, state string) (*entity.User, error) {
	if code == "" {
		return nil, apperr.Validation("code", "is required")
	}
	sub, err := s.JWT.Parse(state, helpers.TokenPurposeState)
	if err != nil {
		return nil, apperr.Auth("Could not validate credentials")
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return nil, apperr.Auth("Could not validate credentials")
	}
	user, err := s.Users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	tokens, err := s.Catalog.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}
	expires := tokens.ExpiresAt
	user.SpotifyAccessToken = &tokens.AccessToken
	user.SpotifyRefreshToken = &tokens.RefreshToken
	user.SpotifyTokenExpires = &expires
	if err := s.Users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AlbumService) cacheEnabled() bool {
	return s.Redis != nil && s.CacheTTL > 0
}
