package crud

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warbler/domain"
	"warbler/errs"
)

func TestMessageService_Create(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	jane := mustSignup(t, s, "jane")

	m, err := s.Message.Create(ctx, jane.ID, "hello warbler")
	require.NoError(t, err)
	assert.NotZero(t, m.ID)
	assert.Equal(t, "hello warbler", m.Text)
	assert.False(t, m.CreatedAt.IsZero())
	require.NotNil(t, m.User)
	assert.Equal(t, "jane", m.User.Username)

	// Exactly the maximum is fine, multi-byte characters count once.
	_, err = s.Message.Create(ctx, jane.ID, strings.Repeat("é", domain.MaxMessageLength))
	assert.NoError(t, err)
}

func TestMessageService_CreateErrors(t *testing.T) {
	s := newTestServices(t)
	jane := mustSignup(t, s, "jane")

	tests := []struct {
		name    string
		ownerID int
		text    string
		code    string
	}{
		{"empty", jane.ID, "", errs.EEMPTYTEXT},
		{"whitespace", jane.ID, "  \n\t ", errs.EEMPTYTEXT},
		{"too long", jane.ID, strings.Repeat("a", domain.MaxMessageLength+1), errs.ETEXTTOOLONG},
		{"unknown owner", 999, "hello", errs.EOWNERNOTFOUND},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Message.Create(context.Background(), tc.ownerID, tc.text)
			require.Error(t, err)
			assert.Equal(t, tc.code, errs.ErrorCode(err))
		})
	}

	messages, err := s.Message.ByOwner(context.Background(), jane.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestMessageService_ByIDAndOwner(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	jane := mustSignup(t, s, "jane")
	first := mustPost(t, s, jane, "first")
	second := mustPost(t, s, jane, "second")

	m, err := s.Message.ByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", m.Text)
	require.NotNil(t, m.User)
	assert.Equal(t, jane.ID, m.User.ID)

	_, err = s.Message.ByID(ctx, 999)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))

	messages, err := s.Message.ByOwner(ctx, jane.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, second.ID, messages[0].ID, "newest first")
	assert.Equal(t, first.ID, messages[1].ID)
}

func TestMessageService_Delete(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	jane := mustSignup(t, s, "jane")
	bob := mustSignup(t, s, "bob")
	m := mustPost(t, s, jane, "mine")
	_, err := s.Like.Like(ctx, bob.ID, m.ID)
	require.NoError(t, err)

	err = s.Message.Delete(ctx, m.ID, bob.ID)
	assert.Equal(t, errs.EFORBIDDEN, errs.ErrorCode(err))
	_, err = s.Message.ByID(ctx, m.ID)
	require.NoError(t, err, "a forbidden delete must leave the message alone")
	count, err := s.Message.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	err = s.Message.Delete(ctx, 999, bob.ID)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))

	require.NoError(t, s.Message.Delete(ctx, m.ID, jane.ID))
	_, err = s.Message.ByID(ctx, m.ID)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
	count, err = s.Message.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	liked, err := s.Like.Liked(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, liked)
}

func TestMessageService_Feed(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	jane := mustSignup(t, s, "jane")
	bob := mustSignup(t, s, "bob")
	carl := mustSignup(t, s, "carl")

	_, err := s.Follow.Follow(ctx, jane.ID, bob.ID)
	require.NoError(t, err)

	own := mustPost(t, s, jane, "jane")
	followed := mustPost(t, s, bob, "bob")
	mustPost(t, s, carl, "carl")

	feed, err := s.Message.Feed(ctx, jane.ID, 0)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, followed.ID, feed[0].ID)
	assert.Equal(t, own.ID, feed[1].ID)
	require.NotNil(t, feed[0].User)
	assert.Equal(t, "bob", feed[0].User.Username)

	feed, err = s.Message.Feed(ctx, jane.ID, 1)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, followed.ID, feed[0].ID)
}
