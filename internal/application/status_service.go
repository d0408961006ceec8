package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/tonearm/tonearm/internal/domain/entity"
	"github.com/tonearm/tonearm/internal/domain/repository"
	"github.com/tonearm/tonearm/pkg/apperr"
	"github.com/tonearm/tonearm/pkg/helpers"
)

// StatusService owns listening statuses. One row per (user, album); setting
// a status again overwrites it instead of piling up duplicates.
type StatusService struct {
	Statuses repository.StatusRepository
	Logger   *logrus.Logger
}

func NewStatusService(statuses repository.StatusRepository, logger *logrus.Logger) *StatusService {
	return &StatusService{Statuses: statuses, Logger: logger}
}

// Set writes the actor's status for an album, replacing any earlier one.
func (s *StatusService) Set(ctx context.Context, userID int64, albumID, status string, isFavorite bool) (*entity.AlbumStatus, error) {
	if err := validateStatusInput(albumID, &status); err != nil {
		return nil, err
	}
	st := &entity.AlbumStatus{
		UserID:         userID,
		SpotifyAlbumID: albumID,
		Status:         status,
		IsFavorite:     isFavorite,
	}
	if err := s.Statuses.Upsert(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *StatusService) Get(ctx context.Context, id int64) (*entity.AlbumStatus, error) {
	return s.Statuses.GetByID(ctx, id)
}

// Update applies a partial edit to the actor's own status record.
func (s *StatusService) Update(ctx context.Context, actorID, id int64, status *string, isFavorite *bool) (*entity.AlbumStatus, error) {
	st, err := s.Statuses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(actorID, st.UserID, "update", "status"); err != nil {
		return nil, err
	}
	if err := validateStatusInput(st.SpotifyAlbumID, status); err != nil {
		return nil, err
	}
	if status != nil {
		st.Status = *status
	}
	if isFavorite != nil {
		st.IsFavorite = *isFavorite
	}
	if err := s.Statuses.Update(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// Delete removes the actor's own status record.
func (s *StatusService) Delete(ctx context.Context, actorID, id int64) error {
	st, err := s.Statuses.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := requireOwner(actorID, st.UserID, "delete", "status"); err != nil {
		return err
	}
	return s.Statuses.Delete(ctx, id)
}

// List returns one page of statuses plus the total matching the same filter.
func (s *StatusService) List(ctx context.Context, f repository.StatusFilter, page helpers.Page) (int64, []*entity.AlbumStatus, error) {
	total, err := s.Statuses.Count(ctx, f)
	if err != nil {
		return 0, nil, err
	}
	items, err := s.Statuses.List(ctx, f, page.Limit, page.Offset)
	if err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func validateStatusInput(albumID string, status *string) error {
	v := &apperr.ValidationError{}
	if albumID == "" {
		v.Add("spotify_album_id", "is required")
	}
	if status != nil {
		switch *status {
		case entity.StatusListened, entity.StatusWantToListen, entity.StatusFavorite:
		default:
			v.Add("status", "must be one of: listened, want-to-listen, favorite")
		}
	}
	if v.HasErrors() {
		return v
	}
	return nil
}
