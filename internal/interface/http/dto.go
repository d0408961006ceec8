package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tonearm/tonearm/internal/application"
	"github.com/tonearm/tonearm/internal/domain/entity"
)

// Response shapes. Email is private: it only appears on /me, never on
// public user payloads.

type UserOut struct {
	ID             int64   `json:"id"`
	Username       string  `json:"username"`
	ProfilePicture *string `json:"profile_picture"`
}

type MeOut struct {
	ID             int64   `json:"id"`
	Username       string  `json:"username"`
	Email          string  `json:"email"`
	IsVerified     bool    `json:"is_verified"`
	ProfilePicture *string `json:"profile_picture"`
}

type ProfileOut struct {
	ID                   int64     `json:"id"`
	Username             string    `json:"username"`
	ProfilePicture       *string   `json:"profile_picture"`
	FollowerCount        int64     `json:"follower_count"`
	FollowingCount       int64     `json:"following_count"`
	IsFollowing          *bool     `json:"is_following,omitempty"`
	MutualFollowers      []UserOut `json:"mutual_followers"`
	MutualFollowersCount int64     `json:"mutual_followers_count"`
}

type ReviewOut struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	SpotifyAlbumID string    `json:"spotify_album_id"`
	Content        string    `json:"content"`
	Rating         *float64  `json:"rating"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type StatusOut struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	SpotifyAlbumID string    `json:"spotify_album_id"`
	Status         string    `json:"status"`
	IsFavorite     bool      `json:"is_favorite"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toUserOut(u *entity.User) UserOut {
	return UserOut{ID: u.ID, Username: u.Username, ProfilePicture: u.ProfilePicture}
}

func toUserOuts(users []*entity.User) []UserOut {
	out := make([]UserOut, 0, len(users))
	for _, u := range users {
		out = append(out, toUserOut(u))
	}
	return out
}

func toMeOut(u *entity.User) MeOut {
	return MeOut{ID: u.ID, Username: u.Username, Email: u.Email, IsVerified: u.IsVerified, ProfilePicture: u.ProfilePicture}
}

func toProfileOut(v *application.ProfileView) ProfileOut {
	return ProfileOut{
		ID:                   v.User.ID,
		Username:             v.User.Username,
		ProfilePicture:       v.User.ProfilePicture,
		FollowerCount:        v.FollowerCount,
		FollowingCount:       v.FollowingCount,
		IsFollowing:          v.IsFollowing,
		MutualFollowers:      toUserOuts(v.Mutual),
		MutualFollowersCount: v.MutualCount,
	}
}

func toReviewOut(r *entity.Review) ReviewOut {
	return ReviewOut{
		ID:             r.ID,
		UserID:         r.UserID,
		SpotifyAlbumID: r.SpotifyAlbumID,
		Content:        r.Content,
		Rating:         r.Rating,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func toReviewOuts(reviews []*entity.Review) []ReviewOut {
	out := make([]ReviewOut, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, toReviewOut(r))
	}
	return out
}

func toStatusOut(s *entity.AlbumStatus) StatusOut {
	return StatusOut{
		ID:             s.ID,
		UserID:         s.UserID,
		SpotifyAlbumID: s.SpotifyAlbumID,
		Status:         s.Status,
		IsFavorite:     s.IsFavorite,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

func toStatusOuts(statuses []*entity.AlbumStatus) []StatusOut {
	out := make([]StatusOut, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, toStatusOut(s))
	}
	return out
}

// currentUser returns the acting user set by the auth middleware, or nil on
// optional-auth routes with no valid bearer token.
func currentUser(c *gin.Context) *entity.User {
	v, ok := c.Get("user")
	if !ok {
		return nil
	}
	u, _ := v.(*entity.User)
	return u
}
