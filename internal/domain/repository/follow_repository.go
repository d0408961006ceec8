package repository

import (
	"context"

	"github.com/tonearm/tonearm/internal/domain/entity"
)

// FollowRepository defines the interface for social graph database
// operations. Follower/following sets come back as full user rows so
// handlers can render them without a second lookup.
type FollowRepository interface {
	Create(ctx context.Context, f *entity.Follow) error
	Delete(ctx context.Context, followerID, followingID int64) error
	Exists(ctx context.Context, followerID, followingID int64) (bool, error)
	FollowersOf(ctx context.Context, userID int64) ([]*entity.User, error)
	FollowingOf(ctx context.Context, userID int64) ([]*entity.User, error)
	CountFollowers(ctx context.Context, userID int64) (int64, error)
	CountFollowing(ctx context.Context, userID int64) (int64, error)
	// MutualFollowers returns users who follow both subject and viewer,
	// newest edge first, truncated to limit.
	MutualFollowers(ctx context.Context, subjectID, viewerID int64, limit int) ([]*entity.User, error)
	CountMutualFollowers(ctx context.Context, subjectID, viewerID int64) (int64, error)
}
