package entity

import (
	"time"
)

// User is the aggregate root for the account domain.
// Passwords are stored as bcrypt hashes in Password field.
type User struct {
	ID             int64
	Username       string
	Email          string
	Password       string
	IsVerified     bool
	ProfilePicture *string

	// Per-user Spotify account link, set by the OAuth callback.
	SpotifyAccessToken  *string
	SpotifyRefreshToken *string
	SpotifyTokenExpires *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
