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

const reviewColumns = `id, user_id, spotify_album_id, content, rating, created_at, updated_at`

type ReviewRepository struct {
	pool *pgxpool.Pool
}

func NewReviewRepository(pool *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

func scanReview(row pgx.Row) (*entity.Review, error) {
	rv := &entity.Review{}
	err := row.Scan(&rv.ID, &rv.UserID, &rv.SpotifyAlbumID, &rv.Content, &rv.Rating,
		&rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Review")
		}
		return nil, err
	}
	return rv, nil
}

// reviewWhere builds the WHERE clause shared by List and Count so the page
// and its total always agree.
func reviewWhere(f repository.ReviewFilter) (string, []any) {
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
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (r *ReviewRepository) Upsert(ctx context.Context, rv *entity.Review) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO reviews (user_id, spotify_album_id, content, rating)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, spotify_album_id)
		DO UPDATE SET content = EXCLUDED.content, rating = EXCLUDED.rating, updated_at = now()
		RETURNING id, created_at, updated_at
	`, rv.UserID, rv.SpotifyAlbumID, rv.Content, rv.Rating)

	if err := row.Scan(&rv.ID, &rv.CreatedAt, &rv.UpdatedAt); err != nil {
		if foreignKeyViolation(err) {
			return apperr.NotFound("User")
		}
		return err
	}
	return nil
}

func (r *ReviewRepository) GetByID(ctx context.Context, id int64) (*entity.Review, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+reviewColumns+`
		FROM reviews
		WHERE id = $1
	`, id)
	return scanReview(row)
}

func (r *ReviewRepository) Update(ctx context.Context, rv *entity.Review) error {
	rv.UpdatedAt = time.Now().UTC()

	res, err := r.pool.Exec(ctx, `
		UPDATE reviews
		SET content = $1, rating = $2, updated_at = $3
		WHERE id = $4
	`, rv.Content, rv.Rating, rv.UpdatedAt, rv.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return apperr.NotFound("Review")
	}
	return nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return apperr.NotFound("Review")
	}
	return nil
}

func (r *ReviewRepository) List(ctx context.Context, f repository.ReviewFilter, limit, offset int) ([]*entity.Review, error) {
	where, args := reviewWhere(f)
	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT `+reviewColumns+`
		FROM reviews%s
		ORDER BY id
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := make([]*entity.Review, 0, limit)
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}

func (r *ReviewRepository) Count(ctx context.Context, f repository.ReviewFilter) (int64, error) {
	where, args := reviewWhere(f)
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM reviews`+where, args...).Scan(&n)
	return n, err
}

var _ repository.ReviewRepository = (*ReviewRepository)(nil)
