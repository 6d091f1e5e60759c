package crud

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"warbler/domain"
	"warbler/errs"
)

// DefaultFeedLimit is the number of messages on a home feed.
const DefaultFeedLimit = 100

// MessageService manages Messages.
// It implements the domain.MessageService interface.
type MessageService struct {
	messageValidator
}

// messageValidator runs validations on incoming Message data.
// On success, it passes the data on to messageGorm.
// Otherwise, it returns the error of the validation that has failed.
type messageValidator struct {
	messageGorm
}

// messageGorm runs CRUD operations on the database using incoming Message data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type messageGorm struct {
	db *gorm.DB
}

// NewMessageService returns an instance of MessageService.
func NewMessageService(db *gorm.DB) *MessageService {
	return &MessageService{
		messageValidator{
			messageGorm{
				db: db,
			},
		},
	}
}

// Ensure the MessageService struct properly implements the domain.MessageService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.MessageService = &MessageService{}

// Create runs validations needed for creating a new Message and stores it.
// The returned message has its owner preloaded.
func (mv *messageValidator) Create(ctx context.Context, ownerID int, text string) (*domain.Message, error) {
	message := &domain.Message{UserID: ownerID, Text: text}
	err := runMessageValFns(message,
		mv.userIDValid,
		mv.textMinLength,
		mv.textMaxLength)
	if err != nil {
		return nil, err
	}
	if err := mv.messageGorm.Create(ctx, message); err != nil {
		return nil, err
	}
	return message, nil
}

// Delete deletes a message on behalf of the requester, who must own it.
func (mv *messageValidator) Delete(ctx context.Context, messageID, requesterID int) error {
	if messageID <= 0 {
		return errs.Errorf(errs.EINVALID, "Message ID is invalid.")
	}
	return mv.messageGorm.Delete(ctx, messageID, requesterID)
}

// Feed returns the newest messages of the user and of everyone the user follows.
// A limit of 0 or less means DefaultFeedLimit.
func (mv *messageValidator) Feed(ctx context.Context, userID, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	return mv.messageGorm.Feed(ctx, userID, limit)
}

// runMessageValFns runs any number of functions of type messageValFn on the passed in Message object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runMessageValFns(message *domain.Message, fns ...messageValFn) error {
	for _, fn := range fns {
		if err := fn(message); err != nil {
			return err
		}
	}
	return nil
}

// A messageValFn is any function that takes in a pointer to a domain.Message object and returns an error.
type messageValFn func(message *domain.Message) error

// textMinLength makes sure that the text is not empty or whitespace only.
func (mv *messageValidator) textMinLength(message *domain.Message) error {
	if strings.TrimSpace(message.Text) == "" {
		return errs.Errorf(errs.EEMPTYTEXT, "Message text must not be empty.")
	}
	return nil
}

// textMaxLength makes sure that the text does not exceed domain.MaxMessageLength characters.
func (mv *messageValidator) textMaxLength(message *domain.Message) error {
	if utf8.RuneCountInString(message.Text) > domain.MaxMessageLength {
		return errs.Errorf(errs.ETEXTTOOLONG, "Message text max length is %d characters.", domain.MaxMessageLength)
	}
	return nil
}

// userIDValid ensures that the owner ID is not empty.
func (mv *messageValidator) userIDValid(message *domain.Message) error {
	if message.UserID <= 0 {
		return errs.Errorf(errs.EOWNERNOTFOUND, "The owner of the message does not exist.")
	}
	return nil
}

// ByID retrieves a single Message by ID along with its owner.
func (mg *messageGorm) ByID(ctx context.Context, id int) (*domain.Message, error) {
	var message domain.Message
	err := mg.db.WithContext(ctx).
		Preload("User").
		First(&message, "id = ?", id).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errMessageNotFound()
		}
		return nil, err
	}
	return &message, nil
}

// ByOwner retrieves all messages of a user, newest first.
func (mg *messageGorm) ByOwner(ctx context.Context, ownerID int) ([]domain.Message, error) {
	messages := []domain.Message{}
	err := mg.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Preload("User").
		Order("created_at desc, id desc").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// Feed retrieves up to limit messages written by the user or by users it follows, newest first.
func (mg *messageGorm) Feed(ctx context.Context, userID, limit int) ([]domain.Message, error) {
	db := mg.db.WithContext(ctx)
	followed := db.Model(&domain.Follow{}).Select("followed_id").Where("follower_id = ?", userID)
	messages := []domain.Message{}
	err := db.
		Where("user_id = ? OR user_id IN (?)", userID, followed).
		Preload("User").
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// Count returns the total number of messages.
func (mg *messageGorm) Count(ctx context.Context) (int, error) {
	var count int64
	if err := mg.db.WithContext(ctx).Model(&domain.Message{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// Create stores the message if its owner exists and preloads the owner.
func (mg *messageGorm) Create(ctx context.Context, message *domain.Message) error {
	return mg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.User{}).Where("id = ?", message.UserID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errs.Errorf(errs.EOWNERNOTFOUND, "The owner of the message does not exist.")
		}
		if err := tx.Create(message).Error; err != nil {
			return err
		}
		return tx.Preload("User").First(message, "id = ?", message.ID).Error
	})
}

// Delete permanently deletes the message along with its likes. A missing message
// is reported before a foreign one.
func (mg *messageGorm) Delete(ctx context.Context, messageID, requesterID int) error {
	return mg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var message domain.Message
		if err := tx.First(&message, "id = ?", messageID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errMessageNotFound()
			}
			return err
		}
		if message.UserID != requesterID {
			return errs.Errorf(errs.EFORBIDDEN, "You can only delete your own messages.")
		}
		if err := tx.Where("message_id = ?", messageID).Delete(&domain.Like{}).Error; err != nil {
			return err
		}
		return tx.Delete(&message).Error
	})
}

func errMessageNotFound() error {
	return errs.Errorf(errs.ENOTFOUND, "The message does not exist.")
}
