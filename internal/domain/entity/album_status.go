package entity

import "time"

// Album listening statuses.
const (
	StatusListened     = "listened"
	StatusWantToListen = "want-to-listen"
	StatusFavorite     = "favorite"
)

// AlbumStatus marks where an album sits in one user's collection. At most
// one row per (user, album); setting a status again overwrites it.
type AlbumStatus struct {
	ID             int64
	UserID         int64
	SpotifyAlbumID string
	Status         string
	IsFavorite     bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
