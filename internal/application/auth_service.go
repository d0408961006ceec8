package application

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/tonearm/tonearm/config"
	"github.com/tonearm/tonearm/internal/domain/entity"
	"github.com/tonearm/tonearm/internal/domain/repository"
	"github.com/tonearm/tonearm/pkg/apperr"
	"github.com/tonearm/tonearm/pkg/helpers"
	"github.com/tonearm/tonearm/pkg/mailer"
	"github.com/tonearm/tonearm/pkg/mailer/templates"
)

// Outcomes of VerifyEmail. The endpoint always answers 200 with one of
// these in the body, so clients can render a friendly page for each case.
const (
	VerifyOutcomeSuccess         = "success"
	VerifyOutcomeAlreadyVerified = "already_verified"
	VerifyOutcomeExpired         = "expired"
	VerifyOutcomeInvalid         = "invalid"
	VerifyOutcomeError           = "error"
)

// UserIndexer mirrors account writes into the search index. Implementations
// are best-effort and must not fail the write they follow.
type UserIndexer interface {
	IndexUser(ctx context.Context, u *entity.User)
}

// EmailQueue is the outbound mail queue. *helpers.RabbitPublisher satisfies it.
type EmailQueue interface {
	PublishJSON(ctx context.Context, body any) error
}

// RegisterInput carries the registration fields after transport decoding.
// ConfirmPassword is optional; when present it must match Password.
type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

// TokenPair is the login result.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService owns registration, email verification and the token lifecycle.
type AuthService struct {
	Users   repository.UserRepository
	JWT     *helpers.JWTManager
	Mail    EmailQueue
	Indexer UserIndexer
	Cfg     *config.Config
	Logger  *logrus.Logger
}

func NewAuthService(users repository.UserRepository, jwt *helpers.JWTManager, mail EmailQueue, indexer UserIndexer, cfg *config.Config, logger *logrus.Logger) *AuthService {
	return &AuthService{Users: users, JWT: jwt, Mail: mail, Indexer: indexer, Cfg: cfg, Logger: logger}
}

// Register creates an unverified account and queues the verification email.
// Uniqueness is pre-checked so the caller gets a field-scoped conflict; the
// unique indexes in Postgres remain the backstop for concurrent registrations.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	if in.ConfirmPassword != "" && in.ConfirmPassword != in.Password {
		return nil, apperr.Validation("confirm_password", "Passwords do not match")
	}

	taken, err := s.Users.UsernameTaken(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.FieldConflict("username", "Username already taken")
	}
	taken, err = s.Users.EmailTaken(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.FieldConflict("email", "Email already registered")
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &entity.User{
		Username: in.Username,
		Email:    in.Email,
		Password: hash,
	}
	if err := s.Users.Create(ctx, user); err != nil {
		return nil, err
	}

	// The account exists even if the queue or index is down; both are
	// recoverable later, so neither failure rolls back registration.
	s.queueVerificationEmail(ctx, user)
	if s.Indexer != nil {
		s.Indexer.IndexUser(ctx, user)
	}
	return user, nil
}

// VerifyEmail decodes a verification token and marks its subject verified.
// It never fails at the transport level; every path maps to an outcome.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) string {
	sub, err := s.JWT.Parse(token, helpers.TokenPurposeVerify)
	if err != nil {
		if errors.Is(err, helpers.ErrExpiredToken) {
			return VerifyOutcomeExpired
		}
		return VerifyOutcomeInvalid
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return VerifyOutcomeInvalid
	}

	user, err := s.Users.GetByID(ctx, id)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).Warn("verify email: load user")
		}
		return VerifyOutcomeError
	}
	if user.IsVerified {
		return VerifyOutcomeAlreadyVerified
	}
	user.IsVerified = true
	if err := s.Users.Update(ctx, user); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).Warn("verify email: mark verified")
		}
		return VerifyOutcomeError
	}
	return VerifyOutcomeSuccess
}

// Login checks credentials and issues an access/refresh pair. Unknown
// username and wrong password share one error so responses do not reveal
// which accounts exist.
func (s *AuthService) Login(ctx context.Context, username, password string) (TokenPair, error) {
	user, err := s.Users.GetByUsername(ctx, username)
	if err != nil {
		var nf *apperr.NotFoundError
		if errors.As(err, &nf) {
			return TokenPair{}, apperr.Auth("Invalid username or password")
		}
		return TokenPair{}, err
	}
	if !helpers.CompareHashAndPassword(user.Password, password) {
		return TokenPair{}, apperr.Auth("Invalid username or password")
	}
	if !user.IsVerified {
		return TokenPair{}, apperr.Forbidden("Email not verified")
	}

	access, err := s.JWT.GenerateAccessToken(user.Username)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.JWT.GenerateRefreshToken(user.Username)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh mints a new access token from a valid refresh token. The subject
// must still exist; a deleted account cannot keep refreshing.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	username, err := s.JWT.Parse(refreshToken, helpers.TokenPurposeRefresh)
	if err != nil {
		return "", apperr.Auth("Could not validate credentials")
	}
	if _, err := s.Users.GetByUsername(ctx, username); err != nil {
		var nf *apperr.NotFoundError
		if errors.As(err, &nf) {
			return "", apperr.Auth("Could not validate credentials")
		}
		return "", err
	}
	return s.JWT.GenerateAccessToken(username)
}

// ResolveUser turns a bearer access token into the acting user. The auth
// middleware calls this on every protected request.
func (s *AuthService) ResolveUser(ctx context.Context, token string) (*entity.User, error) {
	username, err := s.JWT.Parse(token, helpers.TokenPurposeAccess)
	if err != nil {
		return nil, apperr.Auth("Could not validate credentials")
	}
	user, err := s.Users.GetByUsername(ctx, username)
	if err != nil {
		var nf *apperr.NotFoundError
		if errors.As(err, &nf) {
			return nil, apperr.Auth("Could not validate credentials")
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) queueVerificationEmail(ctx context.Context, u *entity.User) {
	if s.Mail == nil {
		return
	}
	token, err := s.JWT.GenerateVerifyToken(strconv.FormatInt(u.ID, 10))
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).Warn("queue verification email: sign token")
		}
		return
	}
	verifyURL := s.Cfg.VerifyEmailURL + "?token=" + url.QueryEscape(token)
	job := mailer.EmailJob{
		To:       u.Email,
		Template: templates.VerifyEmail,
		Data:     templates.NewVerifyEmailData(s.Cfg, u.Username, u.Email, verifyURL, templates.WithExpiresIn(s.Cfg.VerifyTTL)),
	}
	if err := s.Mail.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("to", u.Email).Warn("queue verification email: publish")
	}
}
