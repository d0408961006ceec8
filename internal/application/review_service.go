package application

import (
	"context"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/tonearm/tonearm/internal/domain/entity"
	"github.com/tonearm/tonearm/internal/domain/repository"
	"github.com/tonearm/tonearm/pkg/apperr"
	"github.com/tonearm/tonearm/pkg/helpers"
)

const maxReviewLen = 5000

// ReviewService owns album reviews. One review per (user, album); writing
// again overwrites in place.
type ReviewService struct {
	Reviews repository.ReviewRepository
	Logger  *logrus.Logger
}

func NewReviewService(reviews repository.ReviewRepository, logger *logrus.Logger) *ReviewService {
	return &ReviewService{Reviews: reviews, Logger: logger}
}

// Upsert writes the actor's review for an album, replacing any earlier one.
func (s *ReviewService) Upsert(ctx context.Context, userID int64, albumID, content string, rating *float64) (*entity.Review, error) {
	if err := validateReviewInput(albumID, &content, rating); err != nil {
		return nil, err
	}
	r := &entity.Review{
		UserID:         userID,
		SpotifyAlbumID: albumID,
		Content:        content,
		Rating:         rating,
	}
	if err := s.Reviews.Upsert(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *ReviewService) Get(ctx context.Context, id int64) (*entity.Review, error) {
	return s.Reviews.GetByID(ctx, id)
}

// Update applies a partial edit to the actor's own review. Absent fields
// keep their stored value.
func (s *ReviewService) Update(ctx context.Context, actorID, id int64, content *string, rating *float64) (*entity.Review, error) {
	r, err := s.Reviews.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(actorID, r.UserID, "update", "review"); err != nil {
		return nil, err
	}
	if err := validateReviewInput(r.SpotifyAlbumID, content, rating); err != nil {
		return nil, err
	}
	if content != nil {
		r.Content = *content
	}
	if rating != nil {
		r.Rating = rating
	}
	if err := s.Reviews.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Delete removes the actor's own review.
func (s *ReviewService) Delete(ctx context.Context, actorID, id int64) error {
	r, err := s.Reviews.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := requireOwner(actorID, r.UserID, "delete", "review"); err != nil {
		return err
	}
	return s.Reviews.Delete(ctx, id)
}

// List returns one page of reviews plus the total matching the same filter.
func (s *ReviewService) List(ctx context.Context, f repository.ReviewFilter, page helpers.Page) (int64, []*entity.Review, error) {
	total, err := s.Reviews.Count(ctx, f)
	if err != nil {
		return 0, nil, err
	}
	items, err := s.Reviews.List(ctx, f, page.Limit, page.Offset)
	if err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func validateReviewInput(albumID string, content *string, rating *float64) error {
	v := &apperr.ValidationError{}
	if albumID == "" {
		v.Add("spotify_album_id", "is required")
	}
	if content != nil {
		if n := utf8.RuneCountInString(*content); n < 1 || n > maxReviewLen {
			v.Add("content", "must be between 1 and 5000 characters")
		}
	}
	if rating != nil {
		doubled := *rating * 2
		if *rating < 0.5 || *rating > 5.0 || doubled != float64(int64(doubled)) {
			v.Add("rating", "must be between 0.5 and 5.0 in half steps")
		}
	}
	if v.HasErrors() {
		return v
	}
	return nil
}
