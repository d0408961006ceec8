package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tonearm/tonearm/internal/domain/entity"
	"github.com/tonearm/tonearm/internal/domain/repository"
	"github.com/tonearm/tonearm/pkg/apperr"
)

const followUserColumns = `u.id, u.username, u.email, u.hashed_password, u.is_verified, u.profile_picture,
	u.spotify_access_token, u.spotify_refresh_token, u.spotify_token_expires, u.created_at, u.updated_at`

type FollowRepository struct {
	pool *pgxpool.Pool
}

func NewFollowRepository(pool *pgxpool.Pool) *FollowRepository {
	return &FollowRepository{pool: pool}
}

func (r *FollowRepository) Create(ctx context.Context, f *entity.Follow) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO follows (follower_id, following_id)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, f.FollowerID, f.FollowingID)

	if err := row.Scan(&f.ID, &f.CreatedAt); err != nil {
		if _, ok := uniqueViolation(err); ok {
			return apperr.Conflict("Already following this user")
		}
		if foreignKeyViolation(err) {
			return apperr.NotFound("User")
		}
		return err
	}
	return nil
}

func (r *FollowRepository) Delete(ctx context.Context, followerID, followingID int64) error {
	res, err := r.pool.Exec(ctx, `
		DELETE FROM follows
		WHERE follower_id = $1 AND following_id = $2
	`, followerID, followingID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return apperr.NotFound("Follow")
	}
	return nil
}

func (r *FollowRepository) Exists(ctx context.Context, followerID, followingID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND following_id = $2)
	`, followerID, followingID).Scan(&exists)
	return exists, err
}

func (r *FollowRepository) FollowersOf(ctx context.Context, userID int64) ([]*entity.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+followUserColumns+`
		FROM users u
		JOIN follows f ON f.follower_id = u.id
		WHERE f.following_id = $1
		ORDER BY f.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

func (r *FollowRepository) FollowingOf(ctx context.Context, userID int64) ([]*entity.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+followUserColumns+`
		FROM users u
		JOIN follows f ON f.following_id = u.id
		WHERE f.follower_id = $1
		ORDER BY f.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

func (r *FollowRepository) CountFollowers(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM follows WHERE following_id = $1
	`, userID).Scan(&n)
	return n, err
}

func (r *FollowRepository) CountFollowing(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM follows WHERE follower_id = $1
	`, userID).Scan(&n)
	return n, err
}

// MutualFollowers joins follows against itself: rows are users with an edge
// to the subject and an edge to the viewer.
func (r *FollowRepository) MutualFollowers(ctx context.Context, subjectID, viewerID int64, limit int) ([]*entity.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+followUserColumns+`
		FROM users u
		JOIN follows fs ON fs.follower_id = u.id AND fs.following_id = $1
		JOIN follows fv ON fv.follower_id = u.id AND fv.following_id = $2
		ORDER BY fs.created_at DESC
		LIMIT $3
	`, subjectID, viewerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

func (r *FollowRepository) CountMutualFollowers(ctx context.Context, subjectID, viewerID int64) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM follows fs
		JOIN follows fv ON fv.follower_id = fs.follower_id AND fv.following_id = $2
		WHERE fs.following_id = $1
	`, subjectID, viewerID).Scan(&n)
	return n, err
}

func collectUsers(rows pgx.Rows) ([]*entity.User, error) {
	var users []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

var _ repository.FollowRepository = (*FollowRepository)(nil)
