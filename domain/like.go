package domain

import (
	"context"
	"time"
)

// Like represents a many-to-many relationship between a User and a Message.
// A Like is created when a user decides to like a message. It's destroyed when
// the user unlikes it again, or when either the user or the message gets deleted.
type Like struct {
	UserID    int       `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	User      *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	MessageID int       `json:"message_id" gorm:"primaryKey;autoIncrement:false;index"`
	Message   *Message  `json:"message,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at"`
}

// LikeService is a set of methods to manipulate and work with the Like model.
type LikeService interface {
	Like(ctx context.Context, userID, messageID int) (*Like, error)
	Unlike(ctx context.Context, userID, messageID int) error
	Liked(ctx context.Context, userID int) ([]Message, error)
	Likes(ctx context.Context, userID, messageID int) (bool, error)
}
