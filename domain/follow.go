package domain

import (
	"context"
	"time"
)

// Follow represents a self-referential many-to-many relationship between two users.
// A Follow is created when one user decides to follow another user.
// The FollowerID is the ID of the user that follows, and the FollowedID is the ID of the
// user that is being followed. The pair is the primary key of the follows table, so an
// edge can only exist once, and a check constraint keeps users from following themselves.
// Both foreign keys cascade, so deleting either user removes the edge.
type Follow struct {
	FollowerID int       `json:"follower_id" gorm:"primaryKey;autoIncrement:false;check:no_self_follow,follower_id <> followed_id"`
	Follower   *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	FollowedID int       `json:"followed_id" gorm:"primaryKey;autoIncrement:false;index"`
	Followed   *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time `json:"created_at"`
}

// FollowService is a set of methods to manipulate and work with the Follow model.
type FollowService interface {
	Follow(ctx context.Context, followerID, followedID int) (*Follow, error)
	Unfollow(ctx context.Context, followerID, followedID int) error
	IsFollowing(ctx context.Context, userID, otherID int) (bool, error)
	IsFollowedBy(ctx context.Context, userID, otherID int) (bool, error)
	Followers(ctx context.Context, userID int) ([]User, error)
	Following(ctx context.Context, userID int) ([]User, error)
}
