package domain

import (
	"context"
	"time"
)

// MaxMessageLength is the maximum number of characters of a message's text.
const MaxMessageLength = 140

// Message is a short text post owned by exactly one User. Messages are never edited,
// only created and deleted, and they are deleted along with their owner.
type Message struct {
	ID        int       `json:"id"`
	Text      string    `json:"text" gorm:"size:140;notNull"`
	UserID    int       `json:"user_id" gorm:"notNull;index"`
	User      *User     `json:"user,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// MessageService is a set of methods to manipulate and work with the Message model.
type MessageService interface {
	Create(ctx context.Context, ownerID int, text string) (*Message, error)
	Delete(ctx context.Context, messageID, requesterID int) error
	ByID(ctx context.Context, id int) (*Message, error)
	ByOwner(ctx context.Context, ownerID int) ([]Message, error)
	Feed(ctx context.Context, userID, limit int) ([]Message, error)
	Count(ctx context.Context) (int, error)
}
