package auth

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"warbler/domain"
	"warbler/errs"
)

// DefaultSessionTTL is how long a session lives unless configured otherwise.
const DefaultSessionTTL = 7 * 24 * time.Hour

// Authenticator ties credential checks to sessions. Login and signup start a
// session and hand out an opaque token; every request carrying that token is
// resolved back to its user.
type Authenticator struct {
	users domain.UserService
	store Store
	hmac  HMAC
	ttl   time.Duration
}

// NewAuthenticator returns an Authenticator. A ttl of 0 means DefaultSessionTTL.
func NewAuthenticator(users domain.UserService, store Store, hmacKey string, ttl time.Duration) *Authenticator {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Authenticator{
		users: users,
		store: store,
		hmac:  NewHMAC(hmacKey),
		ttl:   ttl,
	}
}

// TTL is the lifetime of new sessions.
func (a *Authenticator) TTL() time.Duration {
	return a.ttl
}

// Login checks the credentials and starts a session for the user.
func (a *Authenticator) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	user, err := a.users.Authenticate(ctx, username, password)
	if err != nil {
		return "", nil, err
	}
	token, err := a.Start(ctx, user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Start starts a session for the user and returns its token.
func (a *Authenticator) Start(ctx context.Context, userID int) (string, error) {
	token, err := NewToken()
	if err != nil {
		return "", err
	}
	if err := a.store.Save(ctx, a.hmac.Hash(token), userID, a.ttl); err != nil {
		return "", err
	}
	return token, nil
}

// Resolve returns the user a session token belongs to. Missing, malformed,
// unknown and expired tokens resolve to no user without an error, as does a
// token whose user has been deleted in the meantime.
func (a *Authenticator) Resolve(ctx context.Context, token string) (*domain.User, error) {
	if !wellFormed(token) {
		return nil, nil
	}
	tokenHash := a.hmac.Hash(token)
	userID, err := a.store.Get(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, nil
		}
		return nil, err
	}
	user, err := a.users.ByID(ctx, userID)
	if err != nil {
		if errs.Is(err, errs.ENOTFOUND) {
			if err := a.store.Delete(ctx, tokenHash); err != nil {
				zerolog.Ctx(ctx).Warn().Err(err).Msg("dropping session of deleted user")
			}
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// Logout ends the session of the token. Ending an unknown session is not an error.
func (a *Authenticator) Logout(ctx context.Context, token string) error {
	if !wellFormed(token) {
		return nil
	}
	return a.store.Delete(ctx, a.hmac.Hash(token))
}
