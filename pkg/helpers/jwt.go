package helpers

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token purposes. Every token this service issues carries one, and parsing
// rejects tokens presented for the wrong purpose.
const (
	TokenPurposeAccess  = "access"
	TokenPurposeRefresh = "refresh"
	TokenPurposeVerify  = "verify"
	TokenPurposeState   = "state"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken wraps ErrInvalidToken: callers that only care about
	// validity keep working, the verify flow can tell expiry apart.
	ErrExpiredToken = fmt.Errorf("%w: expired", ErrInvalidToken)
)

// Claims is the claim set for all tokens issued by the service.
type Claims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// JWTManager issues and verifies HMAC-signed tokens. A single secret signs
// every purpose; the purpose claim keeps them from being interchangeable.
type JWTManager struct {
	secret     []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
	verifyTTL  time.Duration
}

// NewJWTManager builds a manager for the given secret and HMAC algorithm
// name (HS256, HS384 or HS512).
func NewJWTManager(secret, algorithm string, accessTTL, refreshTTL, verifyTTL time.Duration) (*JWTManager, error) {
	if secret == "" {
		return nil, errors.New("jwt: secret must not be empty")
	}
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("jwt: unknown algorithm %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("jwt: algorithm %q is not an HMAC method", algorithm)
	}
	return &JWTManager{
		secret:     []byte(secret),
		method:     method,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		verifyTTL:  verifyTTL,
	}, nil
}

// GenerateAccessToken issues a short-lived token whose subject is the
// username.
func (m *JWTManager) GenerateAccessToken(username string) (string, error) {
	return m.sign(username, TokenPurposeAccess, m.accessTTL)
}

// GenerateRefreshToken issues a long-lived token whose subject is the
// username. Refresh tokens are stateless; rotation happens by issuing a new
// pair on each refresh.
func (m *JWTManager) GenerateRefreshToken(username string) (string, error) {
	return m.sign(username, TokenPurposeRefresh, m.refreshTTL)
}

// GenerateVerifyToken issues the email-verification token. Its subject is
// the user id so verification survives a username change.
func (m *JWTManager) GenerateVerifyToken(userID string) (string, error) {
	return m.sign(userID, TokenPurposeVerify, m.verifyTTL)
}

// GenerateStateToken issues a short-lived token used as the OAuth state
// parameter in the Spotify account-link flow.
func (m *JWTManager) GenerateStateToken(userID string, ttl time.Duration) (string, error) {
	return m.sign(userID, TokenPurposeState, ttl)
}

func (m *JWTManager) sign(subject, purpose string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(m.method, claims).SignedString(m.secret)
}

// Parse verifies the signature, expiry and purpose of a token and returns
// its subject. Failures collapse to ErrInvalidToken (ErrExpiredToken for
// tokens that are past their expiry); callers translate that into the 401
// of their surface.
func (m *JWTManager) Parse(tokenStr, purpose string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != m.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Purpose != purpose || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
