package entity

import "time"

// Follow is a directed edge in the social graph: follower follows following.
type Follow struct {
	ID          int64
	FollowerID  int64
	FollowingID int64
	CreatedAt   time.Time
}
