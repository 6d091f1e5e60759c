package domain

import (
	"context"
	"fmt"
	"time"
)

const (
	// DefaultImageURL is used when a user signs up without a profile image.
	DefaultImageURL = "/static/images/default-pic.png"
	// DefaultHeaderImageURL is used when a user has no header image.
	DefaultHeaderImageURL = "/static/images/warbler-hero.jpg"
)

// User represents a Warbler account. Username and Email are unique across all users,
// which is enforced by unique indexes in the users table. The plaintext Password only
// ever lives in memory, the database stores its bcrypt hash in PasswordHash.
// Messages, followers and followed users are not part of the struct; they are
// retrieved through the explicit queries of MessageService and FollowService.
type User struct {
	ID             int    `json:"id"`
	Username       string `json:"username" gorm:"notNull;uniqueIndex"`
	Email          string `json:"email,omitempty" gorm:"notNull;uniqueIndex"`
	Password       string `json:"-" gorm:"-"`
	PasswordHash   string `json:"-" gorm:"notNull"`
	ImageURL       string `json:"image_url"`
	HeaderImageURL string `json:"header_image_url"`
	Bio            string `json:"bio"`
	Location       string `json:"location"`

	MessageCount   int `json:"message_count" gorm:"-"`
	FollowerCount  int `json:"follower_count" gorm:"-"`
	FollowingCount int `json:"following_count" gorm:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// String returns a short description of the user, e.g. "<User #1: jane, jane@mail.com>".
func (u *User) String() string {
	return fmt.Sprintf("<User #%d: %s, %s>", u.ID, u.Username, u.Email)
}

// SignupInput holds the data submitted when creating a new account.
type SignupInput struct {
	Username string
	Email    string
	Password string
	ImageURL string
}

// UserUpdate holds the fields of a profile edit. Nil fields are left untouched.
type UserUpdate struct {
	Username       *string `json:"username"`
	Email          *string `json:"email"`
	ImageURL       *string `json:"image_url"`
	HeaderImageURL *string `json:"header_image_url"`
	Bio            *string `json:"bio"`
	Location       *string `json:"location"`
}

// UserService is a set of methods to manipulate and work with the User model.
type UserService interface {
	Signup(ctx context.Context, in SignupInput) (*User, error)
	Authenticate(ctx context.Context, username, password string) (*User, error)
	ByID(ctx context.Context, id int) (*User, error)
	ByUsername(ctx context.Context, username string) (*User, error)
	Search(ctx context.Context, term string) ([]User, error)
	SetCounts(ctx context.Context, user *User) error
	Update(ctx context.Context, id int, password string, upd UserUpdate) (*User, error)
	Delete(ctx context.Context, id int) error
}
