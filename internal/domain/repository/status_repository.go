package repository

import (
	"context"

	"github.com/tonearm/tonearm/internal/domain/entity"
)

// StatusFilter narrows album status listings.
type StatusFilter struct {
	UserID         *int64
	SpotifyAlbumID string
	Status         string
	IsFavorite     *bool
}

// StatusRepository defines the interface for album status database operations.
type StatusRepository interface {
	Upsert(ctx context.Context, s *entity.AlbumStatus) error
	GetByID(ctx context.Context, id int64) (*entity.AlbumStatus, error)
	Update(ctx context.Context, s *entity.AlbumStatus) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f StatusFilter, limit, offset int) ([]*entity.AlbumStatus, error)
	Count(ctx context.Context, f StatusFilter) (int64, error)
}
