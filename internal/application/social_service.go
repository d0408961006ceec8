package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/tonearm/tonearm/internal/domain/entity"
	"github.com/tonearm/tonearm/internal/domain/repository"
)

// mutualPreviewSize caps how many mutual followers a profile embeds; the
// full count is reported alongside.
const mutualPreviewSize = 3

// ProfileView is a user profile decorated with social-graph context. The
// viewer-aware fields are only populated when a viewer is known.
type ProfileView struct {
	User           *entity.User
	FollowerCount  int64
	FollowingCount int64
	IsFollowing    *bool
	Mutual         []*entity.User
	MutualCount    int64
}

// SocialService owns the follow graph.
type SocialService struct {
	Users   repository.UserRepository
	Follows repository.FollowRepository
	Logger  *logrus.Logger
}

func NewSocialService(users repository.UserRepository, follows repository.FollowRepository, logger *logrus.Logger) *SocialService {
	return &SocialService{Users: users, Follows: follows, Logger: logger}
}

// Follow creates an edge from follower to target. The target must exist
// before the self-follow rule is tested, so following a missing user is a
// 404 even when the id happens to be the follower's own.
func (s *SocialService) Follow(ctx context.Context, followerID, targetID int64) error {
	if _, err := s.Users.GetByID(ctx, targetID); err != nil {
		return err
	}
	if err := requireNotSelf(followerID, targetID); err != nil {
		return err
	}
	return s.Follows.Create(ctx, &entity.Follow{FollowerID: followerID, FollowingID: targetID})
}

// Unfollow removes the edge. A missing target user or a missing edge both
// surface as not found, with the user checked first so the message names
// the right resource.
func (s *SocialService) Unfollow(ctx context.Context, followerID, targetID int64) error {
	if _, err := s.Users.GetByID(ctx, targetID); err != nil {
		return err
	}
	return s.Follows.Delete(ctx, followerID, targetID)
}

// FollowersOf returns everyone following the user, newest edge first.
func (s *SocialService) FollowersOf(ctx context.Context, userID int64) ([]*entity.User, error) {
	if _, err := s.Users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.Follows.FollowersOf(ctx, userID)
}

// FollowingOf returns everyone the user follows, newest edge first.
func (s *SocialService) FollowingOf(ctx context.Context, userID int64) ([]*entity.User, error) {
	if _, err := s.Users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.Follows.FollowingOf(ctx, userID)
}

// ProfileView loads a profile with its follow counts. With a viewer it also
// reports whether the viewer follows the subject and previews the mutual
// followers (people who follow both); a viewer looking at their own profile
// skips the mutual block since the intersection degenerates to all
// followers.
func (s *SocialService) ProfileView(ctx context.Context, viewerID *int64, subjectID int64) (*ProfileView, error) {
	user, err := s.Users.GetByID(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	followers, err := s.Follows.CountFollowers(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	following, err := s.Follows.CountFollowing(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	view := &ProfileView{
		User:           user,
		FollowerCount:  followers,
		FollowingCount: following,
		Mutual:         []*entity.User{},
	}
	if viewerID == nil {
		return view, nil
	}

	isFollowing, err := s.Follows.Exists(ctx, *viewerID, subjectID)
	if err != nil {
		return nil, err
	}
	view.IsFollowing = &isFollowing

	if *viewerID != subjectID {
		mutual, err := s.Follows.MutualFollowers(ctx, subjectID, *viewerID, mutualPreviewSize)
		if err != nil {
			return nil, err
		}
		count, err := s.Follows.CountMutualFollowers(ctx, subjectID, *viewerID)
		if err != nil {
			return nil, err
		}
		view.Mutual = mutual
		view.MutualCount = count
	}
	return view, nil
}
