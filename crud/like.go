package crud

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"warbler/domain"
	"warbler/errs"
)

// LikeService manages Likes.
// It implements the domain.LikeService interface.
type LikeService struct {
	likeValidator
}

// likeValidator runs validations on incoming Like data.
// On success, it passes the data on to likeGorm.
// Otherwise, it returns the error of the validation that has failed.
type likeValidator struct {
	likeGorm
}

// likeGorm runs CRUD operations on the database using incoming Like data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type likeGorm struct {
	db *gorm.DB
}

// NewLikeService returns an instance of LikeService.
func NewLikeService(db *gorm.DB) *LikeService {
	return &LikeService{
		likeValidator{
			likeGorm{
				db: db,
			},
		},
	}
}

// Ensure the LikeService struct properly implements the domain.LikeService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.LikeService = &LikeService{}

// Like runs validations needed for liking a message and stores the Like.
func (lv *likeValidator) Like(ctx context.Context, userID, messageID int) (*domain.Like, error) {
	like := &domain.Like{UserID: userID, MessageID: messageID}
	if err := runLikeValFns(like, lv.idsValid); err != nil {
		return nil, err
	}
	if err := lv.likeGorm.Create(ctx, like); err != nil {
		return nil, err
	}
	return like, nil
}

// Unlike removes the user's like from the message.
func (lv *likeValidator) Unlike(ctx context.Context, userID, messageID int) error {
	like := &domain.Like{UserID: userID, MessageID: messageID}
	if err := runLikeValFns(like, lv.idsValid); err != nil {
		return err
	}
	return lv.likeGorm.Delete(ctx, like)
}

// runLikeValFns runs any number of functions of type likeValFn on the passed in Like object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runLikeValFns(like *domain.Like, fns ...likeValFn) error {
	for _, fn := range fns {
		if err := fn(like); err != nil {
			return err
		}
	}
	return nil
}

// A likeValFn is any function that takes in a pointer to a domain.Like object and returns an error.
type likeValFn func(like *domain.Like) error

func (lv *likeValidator) idsValid(like *domain.Like) error {
	if like.UserID <= 0 || like.MessageID <= 0 {
		return errs.Errorf(errs.EINVALID, "ID is invalid.")
	}
	return nil
}

// Liked retrieves the messages a user likes, most recently liked first,
// each along with its owner.
func (lg *likeGorm) Liked(ctx context.Context, userID int) ([]domain.Message, error) {
	messages := []domain.Message{}
	err := lg.db.WithContext(ctx).
		Joins("JOIN likes ON likes.message_id = messages.id").
		Where("likes.user_id = ?", userID).
		Preload("User").
		Order("likes.created_at desc").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// Likes reports whether the user likes the message.
func (lg *likeGorm) Likes(ctx context.Context, userID, messageID int) (bool, error) {
	var count int64
	err := lg.db.WithContext(ctx).Model(&domain.Like{}).
		Where("user_id = ? AND message_id = ?", userID, messageID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create stores the Like after checking that the message and the user exist and
// that the message isn't liked yet. On success, the liked message is preloaded.
func (lg *likeGorm) Create(ctx context.Context, like *domain.Like) error {
	return lg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var message domain.Message
		if err := tx.First(&message, "id = ?", like.MessageID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errMessageNotFound()
			}
			return err
		}
		var count int64
		if err := tx.Model(&domain.User{}).Where("id = ?", like.UserID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errs.Errorf(errs.ENOTFOUND, "The user does not exist.")
		}
		if err := tx.Model(&domain.Like{}).
			Where("user_id = ? AND message_id = ?", like.UserID, like.MessageID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errAlreadyLiked()
		}
		if err := tx.Create(like).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errAlreadyLiked()
			}
			return err
		}
		like.Message = &message
		return nil
	})
}

// Delete permanently deletes the Like.
func (lg *likeGorm) Delete(ctx context.Context, like *domain.Like) error {
	res := lg.db.WithContext(ctx).
		Where("user_id = ? AND message_id = ?", like.UserID, like.MessageID).
		Delete(&domain.Like{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.Errorf(errs.ENOTLIKED, "You cannot unlike a message you have not liked.")
	}
	return nil
}

func errAlreadyLiked() error {
	return errs.Errorf(errs.EALREADYLIKED, "You already like that message.")
}
