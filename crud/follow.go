package crud

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"warbler/domain"
	"warbler/errs"
)

// FollowService manages Follows.
// It implements the domain.FollowService interface.
type FollowService struct {
	followValidator
}

// followValidator runs validations on incoming Follow data.
// On success, it passes the data on to followGorm.
// Otherwise, it returns the error of the validation that has failed.
type followValidator struct {
	followGorm
}

// followGorm runs CRUD operations on the database using incoming Follow data.
// Checks that depend on the state of the database run inside the same
// transaction as the write they guard.
type followGorm struct {
	db *gorm.DB
}

// NewFollowService returns an instance of FollowService.
func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{
		followValidator{
			followGorm{
				db: db,
			},
		},
	}
}

// Ensure the FollowService struct properly implements the domain.FollowService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.FollowService = &FollowService{}

// Follow makes the follower follow the followed user.
func (fv *followValidator) Follow(ctx context.Context, followerID, followedID int) (*domain.Follow, error) {
	follow := &domain.Follow{FollowerID: followerID, FollowedID: followedID}
	err := runFollowValFns(follow,
		fv.idsValid,
		fv.followedIsNotFollower)
	if err != nil {
		return nil, err
	}
	if err := fv.followGorm.Create(ctx, follow); err != nil {
		return nil, err
	}
	return follow, nil
}

// Unfollow removes the follow edge from the follower to the followed user.
func (fv *followValidator) Unfollow(ctx context.Context, followerID, followedID int) error {
	follow := &domain.Follow{FollowerID: followerID, FollowedID: followedID}
	if err := runFollowValFns(follow, fv.idsValid); err != nil {
		return err
	}
	return fv.followGorm.Delete(ctx, follow)
}

// runFollowValFns runs any number of functions of type followValFn on the passed in Follow object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runFollowValFns(follow *domain.Follow, fns ...followValFn) error {
	for _, fn := range fns {
		if err := fn(follow); err != nil {
			return err
		}
	}
	return nil
}

// A followValFn is any function that takes in a pointer to a domain.Follow object and returns an error.
type followValFn func(follow *domain.Follow) error

// idsValid makes sure that both user IDs are greater than 0.
func (fv *followValidator) idsValid(follow *domain.Follow) error {
	if follow.FollowerID <= 0 || follow.FollowedID <= 0 {
		return errs.Errorf(errs.EINVALID, "User ID is invalid.")
	}
	return nil
}

// followedIsNotFollower makes sure that nobody follows themselves.
func (fv *followValidator) followedIsNotFollower(follow *domain.Follow) error {
	if follow.FollowerID == follow.FollowedID {
		return errs.Errorf(errs.ESELFFOLLOW, "You cannot follow yourself.")
	}
	return nil
}

// IsFollowing reports whether the user with userID follows the user with otherID.
func (fg *followGorm) IsFollowing(ctx context.Context, userID, otherID int) (bool, error) {
	return followExists(fg.db.WithContext(ctx), userID, otherID)
}

// IsFollowedBy reports whether the user with otherID follows the user with userID.
func (fg *followGorm) IsFollowedBy(ctx context.Context, userID, otherID int) (bool, error) {
	return followExists(fg.db.WithContext(ctx), otherID, userID)
}

// Followers returns the users following the given user, ordered by username.
func (fg *followGorm) Followers(ctx context.Context, userID int) ([]domain.User, error) {
	users := []domain.User{}
	err := fg.db.WithContext(ctx).
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.followed_id = ?", userID).
		Order("users.username").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// Following returns the users the given user follows, ordered by username.
func (fg *followGorm) Following(ctx context.Context, userID int) ([]domain.User, error) {
	users := []domain.User{}
	err := fg.db.WithContext(ctx).
		Joins("JOIN follows ON follows.followed_id = users.id").
		Where("follows.follower_id = ?", userID).
		Order("users.username").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// Create stores the follow edge after making sure both users exist and the
// edge does not exist yet.
func (fg *followGorm) Create(ctx context.Context, follow *domain.Follow) error {
	return fg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&domain.User{}).
			Where("id IN ?", []int{follow.FollowerID, follow.FollowedID}).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count != 2 {
			return errs.Errorf(errs.ENOTFOUND, "The user does not exist.")
		}
		exists, err := followExists(tx, follow.FollowerID, follow.FollowedID)
		if err != nil {
			return err
		}
		if exists {
			return errAlreadyFollowing()
		}
		if err := tx.Create(follow).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errAlreadyFollowing()
			}
			return err
		}
		return nil
	})
}

// Delete permanently deletes the follow edge. Deleting an edge that does not
// exist is an error.
func (fg *followGorm) Delete(ctx context.Context, follow *domain.Follow) error {
	res := fg.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", follow.FollowerID, follow.FollowedID).
		Delete(&domain.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.Errorf(errs.ENOTFOLLOWING, "You don't follow this user.")
	}
	return nil
}

func followExists(db *gorm.DB, followerID, followedID int) (bool, error) {
	var count int64
	err := db.Model(&domain.Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func errAlreadyFollowing() error {
	return errs.Errorf(errs.EALREADYFOLLOWING, "You already follow this user.")
}
