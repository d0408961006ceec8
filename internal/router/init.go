package router

import (
	"github.com/tonearm/tonearm/internal/application"
	"github.com/tonearm/tonearm/internal/container"
	pginfra "github.com/tonearm/tonearm/internal/infrastructure/postgres"
	handlers "github.com/tonearm/tonearm/internal/interface/http"
	"github.com/tonearm/tonearm/internal/router/modules"
)

type AppDeps struct {
	Auth     *application.AuthService
	Users    *application.UserService
	Social   *application.SocialService
	Reviews  *application.ReviewService
	Statuses *application.StatusService
	Albums   *application.AlbumService
}

func buildAppDeps() AppDeps {
	cfg := container.GetConfig()
	pool := container.GetPGPool()
	logger := container.GetLogger()

	userRepo := pginfra.NewUserRepository(pool)
	followRepo := pginfra.NewFollowRepository(pool)
	reviewRepo := pginfra.NewReviewRepository(pool)
	statusRepo := pginfra.NewStatusRepository(pool)

	users := application.NewUserService(
		userRepo,
		container.GetES(),
		cfg.ESUsersIndex,
		container.GetS3(),
		logger,
	)

	// A nil publisher must stay a nil interface, otherwise the service
	// cannot tell the queue is absent.
	var mailQueue application.EmailQueue
	if pub := container.GetRabbitPub(); pub != nil {
		mailQueue = pub
	}

	auth := application.NewAuthService(
		userRepo,
		container.GetJWT(),
		mailQueue,
		users,
		cfg,
		logger,
	)

	albums := application.NewAlbumService(
		container.GetSpotify(),
		userRepo,
		container.GetJWT(),
		container.GetRedis(),
		cfg.AlbumCacheTTL,
		logger,
	)

	return AppDeps{
		Auth:     auth,
		Users:    users,
		Social:   application.NewSocialService(userRepo, followRepo, logger),
		Reviews:  application.NewReviewService(reviewRepo, logger),
		Statuses: application.NewStatusService(statusRepo, logger),
		Albums:   albums,
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	deps := buildAppDeps()
	logger := container.GetLogger()

	authHandler := handlers.NewAuthHandler(deps.Auth, logger)
	userHandler := handlers.NewUserHandler(deps.Users, deps.Social, deps.Reviews, deps.Statuses, logger)
	reviewHandler := handlers.NewReviewHandler(deps.Reviews, logger)
	statusHandler := handlers.NewStatusHandler(deps.Statuses, logger)
	albumHandler := handlers.NewAlbumHandler(deps.Albums, deps.Reviews, deps.Statuses, logger)
	debugHandler := handlers.NewDebugHandler(container.GetPGPool())

	r.Add(modules.NewDebugModule(debugHandler))
	r.Add(modules.NewAuthModule(authHandler))
	r.Add(modules.NewUserModule(userHandler, deps.Auth))
	r.Add(modules.NewReviewModule(reviewHandler, deps.Auth))
	r.Add(modules.NewStatusModule(statusHandler, deps.Auth))
	r.Add(modules.NewAlbumModule(albumHandler, deps.Auth))
}
