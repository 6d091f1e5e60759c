package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warbler/domain"
	"warbler/errs"
)

// fakeUsers implements the parts of domain.UserService the Authenticator uses.
type fakeUsers struct {
	domain.UserService
	users map[int]*domain.User
}

func (f *fakeUsers) Authenticate(_ context.Context, username, password string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Username == username && password == "password" {
			return u, nil
		}
	}
	return nil, errs.Errorf(errs.EAUTHFAILURE, "Invalid username or password.")
}

func (f *fakeUsers) ByID(_ context.Context, id int) (*domain.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, errs.Errorf(errs.ENOTFOUND, "The user does not exist.")
}

func newTestAuthenticator() (*Authenticator, *fakeUsers, *MemoryStore) {
	users := &fakeUsers{users: map[int]*domain.User{1: {ID: 1, Username: "jane"}}}
	store := NewMemoryStore()
	return NewAuthenticator(users, store, "hmac-key", time.Hour), users, store
}

func TestToken(t *testing.T) {
	token, err := NewToken()
	require.NoError(t, err)
	assert.True(t, wellFormed(token))
	assert.False(t, wellFormed("short"))
	assert.False(t, wellFormed("!!not base64!!"))

	other, err := NewToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)

	h := NewHMAC("key")
	assert.Equal(t, h.Hash(token), h.Hash(token))
	assert.NotEqual(t, h.Hash(token), NewHMAC("other-key").Hash(token))
	assert.NotEqual(t, token, h.Hash(token))
}

func TestAuthenticator_LoginResolveLogout(t *testing.T) {
	a, _, store := newTestAuthenticator()
	ctx := context.Background()

	token, user, err := a.Login(ctx, "jane", "password")
	require.NoError(t, err)
	assert.Equal(t, 1, user.ID)
	_, raw := store.sessions[token]
	assert.False(t, raw, "tokens must only be stored hashed")

	resolved, err := a.Resolve(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, "jane", resolved.Username)

	require.NoError(t, a.Logout(ctx, token))
	resolved, err = a.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Nil(t, resolved)
}

func TestAuthenticator_LoginFailure(t *testing.T) {
	a, _, store := newTestAuthenticator()

	_, _, err := a.Login(context.Background(), "jane", "wrong")
	assert.Equal(t, errs.EAUTHFAILURE, errs.ErrorCode(err))
	assert.Empty(t, store.sessions)
}

func TestAuthenticator_ResolveAnonymous(t *testing.T) {
	a, _, _ := newTestAuthenticator()
	ctx := context.Background()

	for _, token := range []string{"", "garbage"} {
		u, err := a.Resolve(ctx, token)
		assert.NoError(t, err)
		assert.Nil(t, u)
	}

	unknown, err := NewToken()
	require.NoError(t, err)
	u, err := a.Resolve(ctx, unknown)
	assert.NoError(t, err)
	assert.Nil(t, u)
}

func TestAuthenticator_ResolveDeletedUser(t *testing.T) {
	a, users, store := newTestAuthenticator()
	ctx := context.Background()

	token, err := a.Start(ctx, 1)
	require.NoError(t, err)
	delete(users.users, 1)

	u, err := a.Resolve(ctx, token)
	assert.NoError(t, err)
	assert.Nil(t, u)
	assert.Empty(t, store.sessions)
}

func TestRequire(t *testing.T) {
	_, err := Require(context.Background())
	assert.Equal(t, errs.EUNAUTHORIZED, errs.ErrorCode(err))

	ctx := SetUser(context.Background(), &domain.User{ID: 3})
	u, err := Require(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, u.ID)
	assert.Equal(t, 3, GetUser(ctx).ID)
}

func TestNewAuthenticator_DefaultTTL(t *testing.T) {
	a := NewAuthenticator(&fakeUsers{}, NewMemoryStore(), "key", 0)
	assert.Equal(t, DefaultSessionTTL, a.TTL())
}
