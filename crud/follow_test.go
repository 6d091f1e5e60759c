package crud

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warbler/domain"
	"warbler/errs"
)

func TestFollowService_Follow(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	jane := mustSignup(t, s, "jane")
	bob := mustSignup(t, s, "bob")

	f, err := s.Follow.Follow(ctx, jane.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, jane.ID, f.FollowerID)
	assert.Equal(t, bob.ID, f.FollowedID)

	ok, err := s.Follow.IsFollowing(ctx, jane.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.Follow.IsFollowedBy(ctx, bob.ID, jane.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// Following is directed.
	ok, err = s.Follow.IsFollowing(ctx, bob.ID, jane.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = s.Follow.IsFollowedBy(ctx, jane.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFollowService_FollowErrors(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	jane := mustSignup(t, s, "jane")
	bob := mustSignup(t, s, "bob")
	_, err := s.Follow.Follow(ctx, jane.ID, bob.ID)
	require.NoError(t, err)

	tests := []struct {
		name       string
		followerID int
		followedID int
		code       string
	}{
		{"self", jane.ID, jane.ID, errs.ESELFFOLLOW},
		{"twice", jane.ID, bob.ID, errs.EALREADYFOLLOWING},
		{"unknown followed", jane.ID, 999, errs.ENOTFOUND},
		{"unknown follower", 999, jane.ID, errs.ENOTFOUND},
		{"invalid id", 0, jane.ID, errs.EINVALID},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Follow.Follow(ctx, tc.followerID, tc.followedID)
			require.Error(t, err)
			assert.Equal(t, tc.code, errs.ErrorCode(err))
		})
	}

	following, err := s.Follow.Following(ctx, jane.ID)
	require.NoError(t, err)
	assert.Len(t, following, 1)
}

func TestFollowService_Unfollow(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	jane := mustSignup(t, s, "jane")
	bob := mustSignup(t, s, "bob")

	err := s.Follow.Unfollow(ctx, jane.ID, bob.ID)
	assert.Equal(t, errs.ENOTFOLLOWING, errs.ErrorCode(err))

	_, err = s.Follow.Follow(ctx, jane.ID, bob.ID)
	require.NoError(t, err)
	require.NoError(t, s.Follow.Unfollow(ctx, jane.ID, bob.ID))

	ok, err := s.Follow.IsFollowing(ctx, jane.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	err = s.Follow.Unfollow(ctx, jane.ID, bob.ID)
	assert.Equal(t, errs.ENOTFOLLOWING, errs.ErrorCode(err))
}

func TestFollowService_Lists(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	jane := mustSignup(t, s, "jane")
	bob := mustSignup(t, s, "bob")
	carl := mustSignup(t, s, "carl")

	for _, f := range []domain.Follow{
		{FollowerID: carl.ID, FollowedID: jane.ID},
		{FollowerID: bob.ID, FollowedID: jane.ID},
		{FollowerID: jane.ID, FollowedID: carl.ID},
	} {
		_, err := s.Follow.Follow(ctx, f.FollowerID, f.FollowedID)
		require.NoError(t, err)
	}

	followers, err := s.Follow.Followers(ctx, jane.ID)
	require.NoError(t, err)
	require.Len(t, followers, 2)
	assert.Equal(t, "bob", followers[0].Username)
	assert.Equal(t, "carl", followers[1].Username)

	following, err := s.Follow.Following(ctx, jane.ID)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, "carl", following[0].Username)

	following, err = s.Follow.Following(ctx, bob.ID+100)
	require.NoError(t, err)
	assert.Empty(t, following)
}
