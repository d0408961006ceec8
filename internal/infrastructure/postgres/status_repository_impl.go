package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tonearm/tonearm/internal/domain/entity"
	"github.com/tonearm/tonearm/internal/domain/repository"
	"github.com/tonearm/tonearm/pkg/apperr"
)

const statusColumns = `id, user_id, spotify_album_id, status, is_favorite, created_at, updated_at`

type StatusRepository struct {
	pool *pgxpool.Pool
}

func NewStatusRepository(pool *pgxpool.Pool) *StatusRepository {
	return &StatusRepository{pool: pool}
}

func scanStatus(row pgx.Row) (*entity.AlbumStatus, error) {
	s := &entity.AlbumStatus{}
	err := row.Scan(&s.ID, &s.UserID, &s.SpotifyAlbumID, &s.Status, &s.IsFavorite,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Status")
		}
		return nil, err
	}
	return s, nil
}

func statusWhere(f repository.StatusFilter) (string, []any) {
	var clauses []string
	var args []any
	if f.UserID != nil {
		args = append(args, *f.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if f.SpotifyAlbumID != "" {
		args = append(args, f.SpotifyAlbumID)
		clauses = append(clauses, fmt.Sprintf("spotify_album_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.IsFavorite != nil {
		args = append(args, *f.IsFavorite)
		clauses = append(clauses, fmt.Sprintf("is_favorite = $%d", len(args)))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (r *StatusRepository) Upsert(ctx context.Context, s *entity.AlbumStatus) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO album_statuses (user_id, spotify_album_id, status, is_favorite)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, spotify_album_id)
		DO UPDATE SET status = EXCLUDED.status, is_favorite = EXCLUDED.is_favorite, updated_at = now()
		RETURNING id, created_at, updated_at
	`, s.UserID, s.SpotifyAlbumID, s.Status, s.IsFavorite)

	if err := row.Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if foreignKeyViolation(err) {
			return apperr.NotFound("User")
		}
		return err
	}
	return nil
}

func (r *StatusRepository) GetByID(ctx context.Context, id int64) (*entity.AlbumStatus, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+statusColumns+`
		FROM album_statuses
		WHERE id = $1
	`, id)
	return scanStatus(row)
}

func (r *StatusRepository) Update(ctx context.Context, s *entity.AlbumStatus) error {
	s.UpdatedAt = time.Now().UTC()

	res, err := r.pool.Exec(ctx, `
		UPDATE album_statuses
		SET status = $1, is_favorite = $2, updated_at = $3
		WHERE id = $4
	`, s.Status, s.IsFavorite, s.UpdatedAt, s.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return apperr.NotFound("Status")
	}
	return nil
}

func (r *StatusRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM album_statuses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return apperr.NotFound("Status")
	}
	return nil
}

func (r *StatusRepository) List(ctx context.Context, f repository.StatusFilter, limit, offset int) ([]*entity.AlbumStatus, error) {
	where, args := statusWhere(f)
	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT `+statusColumns+`
		FROM album_statuses%s
		ORDER BY id
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	statuses := make([]*entity.AlbumStatus, 0, limit)
	for rows.Next() {
		s, err := scanStatus(rows)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, s)
	}
	return statuses, rows.Err()
}

func (r *StatusRepository) Count(ctx context.Context, f repository.StatusFilter) (int64, error) {
	where, args := statusWhere(f)
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM album_statuses`+where, args...).Scan(&n)
	return n, err
}

var _ repository.StatusRepository = (*StatusRepository)(nil)
