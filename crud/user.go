package crud

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"warbler/domain"
	"warbler/errs"
)

// MinPasswordLength is the minimum number of characters of a password.
const MinPasswordLength = 6

// UserService manages Users. It also contains the part of the authentication system
// that checks credentials against the database. Sessions are handled by the auth package.
// It implements the domain.UserService interface.
type UserService struct {
	userValidator
}

// userValidator runs validations on incoming User data.
// On success, it passes the data on to userGorm.
// Otherwise, it returns the error of the validation that has failed.
type userValidator struct {
	credentials *CredentialStore
	emailRegex  *regexp.Regexp
	userGorm
}

// userGorm runs CRUD operations on the database using incoming User data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type userGorm struct {
	db *gorm.DB
}

// NewUserService returns an instance of UserService.
func NewUserService(db *gorm.DB, credentials *CredentialStore) *UserService {
	return &UserService{
		userValidator{
			credentials: credentials,
			emailRegex:  regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,16}$`),
			userGorm: userGorm{
				db: db,
			},
		},
	}
}

// Ensure the UserService struct properly implements the domain.UserService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.UserService = &UserService{}

// errAuthFailure is returned for unknown usernames and wrong passwords alike.
func errAuthFailure() error {
	return errs.Errorf(errs.EAUTHFAILURE, "Invalid username or password.")
}

// errDuplicateCredential is returned when a username or an email address is already taken.
func errDuplicateCredential() error {
	return errs.Errorf(errs.EDUPLICATECREDENTIAL, "Username or email address already taken.")
}

// Signup runs validations needed for creating a new User and stores it.
// The password is hashed before anything is written to the database.
func (uv *userValidator) Signup(ctx context.Context, in domain.SignupInput) (*domain.User, error) {
	user := &domain.User{
		Username: in.Username,
		Email:    in.Email,
		Password: in.Password,
		ImageURL: in.ImageURL,
	}
	err := runUserValFns(user,
		uv.usernameNormalize,
		uv.usernameRequired,
		uv.passwordRequired,
		uv.passwordMinLength,
		uv.passwordMaxLength,
		uv.passwordBcrypt,
		uv.passwordHashRequired,
		uv.emailNormalize,
		uv.emailRequired,
		uv.emailFormat,
		uv.imagesDefault)
	if err != nil {
		return nil, err
	}
	if err := uv.userGorm.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks a submitted username and password for existence and correctness.
// Unknown usernames and wrong passwords produce the same error after the same amount
// of bcrypt work, so callers cannot tell which of the two it was.
func (uv *userValidator) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	found, err := uv.userGorm.ByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errs.Is(err, errs.ENOTFOUND) {
			uv.credentials.VerifyDummy(password)
			return nil, errAuthFailure()
		}
		return nil, err
	}
	if !uv.credentials.Verify(password, found.PasswordHash) {
		return nil, errAuthFailure()
	}
	return found, nil
}

// Update applies a partial profile edit to the user with the given ID. The current
// password must be provided and is verified before anything changes.
func (uv *userValidator) Update(ctx context.Context, id int, password string, upd domain.UserUpdate) (*domain.User, error) {
	user, err := uv.userGorm.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !uv.credentials.Verify(password, user.PasswordHash) {
		return nil, errs.Errorf(errs.EAUTHFAILURE, "The password is incorrect.")
	}

	if upd.Username != nil {
		user.Username = *upd.Username
	}
	if upd.Email != nil {
		user.Email = *upd.Email
	}
	if upd.ImageURL != nil {
		user.ImageURL = *upd.ImageURL
	}
	if upd.HeaderImageURL != nil {
		user.HeaderImageURL = *upd.HeaderImageURL
	}
	if upd.Bio != nil {
		user.Bio = *upd.Bio
	}
	if upd.Location != nil {
		user.Location = *upd.Location
	}

	err = runUserValFns(user,
		uv.usernameNormalize,
		uv.usernameRequired,
		uv.emailNormalize,
		uv.emailRequired,
		uv.emailFormat,
		uv.imagesDefault)
	if err != nil {
		return nil, err
	}
	if err := uv.userGorm.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete runs validations needed for deleting a User, then deletes it along with
// everything that belongs to it.
func (uv *userValidator) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return errs.Errorf(errs.EINVALID, "User ID is invalid.")
	}
	return uv.userGorm.Delete(ctx, id)
}

// runUserValFns runs any number of functions of type userValFn on the passed in User object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runUserValFns(user *domain.User, fns ...userValFn) error {
	for _, fn := range fns {
		if err := fn(user); err != nil {
			return err
		}
	}
	return nil
}

// A userValFn is any function that takes in a pointer to a domain.User object and returns an error.
type userValFn func(user *domain.User) error

// usernameNormalize trims the username's surrounding whitespace.
func (uv *userValidator) usernameNormalize(user *domain.User) error {
	user.Username = strings.TrimSpace(user.Username)
	return nil
}

// usernameRequired makes sure that the username is not the empty string.
func (uv *userValidator) usernameRequired(user *domain.User) error {
	if user.Username == "" {
		return errs.Errorf(errs.EINVALID, "A username is required.")
	}
	return nil
}

// emailFormat makes sure that a provided email address matches a predefined regex pattern.
func (uv *userValidator) emailFormat(user *domain.User) error {
	if user.Email == "" {
		return nil
	}
	if !uv.emailRegex.MatchString(user.Email) {
		return errs.Errorf(errs.EINVALID, "The email address is invalid.")
	}
	return nil
}

// emailNormalize converts the email to all lowercase and trims its whitespaces.
func (uv *userValidator) emailNormalize(user *domain.User) error {
	user.Email = strings.ToLower(user.Email)
	user.Email = strings.TrimSpace(user.Email)
	return nil
}

// emailRequired makes sure that the email is not the empty string.
func (uv *userValidator) emailRequired(user *domain.User) error {
	if user.Email == "" {
		return errs.Errorf(errs.EINVALID, "An email address is required.")
	}
	return nil
}

// imagesDefault falls back to the default images when none are set.
func (uv *userValidator) imagesDefault(user *domain.User) error {
	if strings.TrimSpace(user.ImageURL) == "" {
		user.ImageURL = domain.DefaultImageURL
	}
	if strings.TrimSpace(user.HeaderImageURL) == "" {
		user.HeaderImageURL = domain.DefaultHeaderImageURL
	}
	return nil
}

// passwordBcrypt hashes a user's password through the CredentialStore.
// It then clears the password on the user object in memory.
func (uv *userValidator) passwordBcrypt(user *domain.User) error {
	if user.Password == "" {
		return nil
	}
	hash, err := uv.credentials.Hash(user.Password)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.Password = ""
	return nil
}

// passwordHashRequired makes sure that the user's password hash is not the empty string.
func (uv *userValidator) passwordHashRequired(user *domain.User) error {
	if user.PasswordHash == "" {
		return errs.Errorf(errs.EINVALID, "A password is required.")
	}
	return nil
}

// passwordMinLength makes sure that the user's password is at least MinPasswordLength characters long.
func (uv *userValidator) passwordMinLength(user *domain.User) error {
	if user.Password == "" {
		return nil
	}
	if utf8.RuneCountInString(user.Password) < MinPasswordLength {
		return errs.Errorf(errs.EINVALID, "The password must have at least %d characters.", MinPasswordLength)
	}
	return nil
}

// passwordMaxLength rejects passwords bcrypt would refuse to hash.
func (uv *userValidator) passwordMaxLength(user *domain.User) error {
	if len(user.Password) > uv.credentials.maxPasswordBytes() {
		return errs.Errorf(errs.EINVALID, "The password is too long.")
	}
	return nil
}

// passwordRequired makes sure that the user's password is not the empty string.
func (uv *userValidator) passwordRequired(user *domain.User) error {
	if user.Password == "" {
		return errs.Errorf(errs.EINVALID, "A password is required.")
	}
	return nil
}

// ByID retrieves a User database record by ID.
func (ug *userGorm) ByID(ctx context.Context, id int) (*domain.User, error) {
	var user domain.User
	db := ug.db.WithContext(ctx).Where("id = ?", id)
	if err := first(db, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ByUsername retrieves a User database record by username.
func (ug *userGorm) ByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	db := ug.db.WithContext(ctx).Where("username = ?", username)
	if err := first(db, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Search returns the users whose username contains term, ordered by username.
// An empty term matches every user.
func (ug *userGorm) Search(ctx context.Context, term string) ([]domain.User, error) {
	users := []domain.User{}
	db := ug.db.WithContext(ctx)
	if term = strings.TrimSpace(term); term != "" {
		db = db.Where("username LIKE ?", "%"+term+"%")
	}
	if err := db.Order("username").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// SetCounts takes a pointer to a user object, counts its messages, followers
// and followed users, and sets those numbers to the according fields.
func (ug *userGorm) SetCounts(ctx context.Context, user *domain.User) error {
	db := ug.db.WithContext(ctx)
	var messages, followers, following int64
	if err := db.Model(&domain.Message{}).Where("user_id = ?", user.ID).Count(&messages).Error; err != nil {
		return err
	}
	if err := db.Model(&domain.Follow{}).Where("followed_id = ?", user.ID).Count(&followers).Error; err != nil {
		return err
	}
	if err := db.Model(&domain.Follow{}).Where("follower_id = ?", user.ID).Count(&following).Error; err != nil {
		return err
	}
	user.MessageCount = int(messages)
	user.FollowerCount = int(followers)
	user.FollowingCount = int(following)
	return nil
}

// Create stores the data from the User object in a new database record.
// Availability of the username and email is checked in the same transaction; the
// unique indexes catch whatever slips through between concurrent signups.
func (ug *userGorm) Create(ctx context.Context, user *domain.User) error {
	return ug.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := credentialsAvail(tx, user); err != nil {
			return err
		}
		return translateUserErr(tx.Create(user).Error)
	})
}

// Update saves changes to an existing user record in the database.
func (ug *userGorm) Update(ctx context.Context, user *domain.User) error {
	return ug.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := credentialsAvail(tx, user); err != nil {
			return err
		}
		return translateUserErr(tx.Save(user).Error)
	})
}

// Delete permanently deletes a user along with its likes, the likes on its messages,
// its messages and every follow it takes part in, all in one transaction.
// Deleting a user that does not exist is a no-op.
func (ug *userGorm) Delete(ctx context.Context, id int) error {
	return ug.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var messageIDs []int
		if err := tx.Model(&domain.Message{}).Where("user_id = ?", id).Pluck("id", &messageIDs).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&domain.Like{}).Error; err != nil {
			return err
		}
		if len(messageIDs) > 0 {
			if err := tx.Where("message_id IN ?", messageIDs).Delete(&domain.Like{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("user_id = ?", id).Delete(&domain.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("follower_id = ? OR followed_id = ?", id, id).Delete(&domain.Follow{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.User{}, id).Error
	})
}

// credentialsAvail makes sure that no other user already has the username or the email.
// Both collisions are reported as the same error.
func credentialsAvail(tx *gorm.DB, user *domain.User) error {
	var count int64
	err := tx.Model(&domain.User{}).
		Where("username = ? OR email = ?", user.Username, user.Email).
		Where("id <> ?", user.ID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return errDuplicateCredential()
	}
	return nil
}

// translateUserErr maps unique index violations on the users table to a duplicate credential error.
func translateUserErr(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errDuplicateCredential()
	}
	return err
}

// first is a helper for getting the first database record that matches a given query.
func first(db *gorm.DB, dst interface{}) error {
	err := db.First(dst).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.Errorf(errs.ENOTFOUND, "The user does not exist.")
	}
	return err
}
