package entity

import "time"

// Review is one user's review of one album. The album lives in the external
// catalog; only its id is stored. At most one review per (user, album).
type Review struct {
	ID             int64
	UserID         int64
	SpotifyAlbumID string
	Content        string
	Rating         *float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
