package repository

import (
	"context"

	"github.com/tonearm/tonearm/internal/domain/entity"
)

// ReviewFilter narrows review listings. Zero values mean "no filter". The
// same filter feeds both the page query and the count query.
type ReviewFilter struct {
	UserID         *int64
	SpotifyAlbumID string
}

// ReviewRepository defines the interface for review database operations.
type ReviewRepository interface {
	// Upsert inserts the review or, when the user already reviewed the
	// album, overwrites content and rating in place.
	Upsert(ctx context.Context, r *entity.Review) error
	GetByID(ctx context.Context, id int64) (*entity.Review, error)
	Update(ctx context.Context, r *entity.Review) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f ReviewFilter, limit, offset int) ([]*entity.Review, error)
	Count(ctx context.Context, f ReviewFilter) (int64, error)
}
