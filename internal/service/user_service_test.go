package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/placefeed/internal/apperr"
)

func TestRegisterAndLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	profile, token, err := e.userSvc.Register(ctx, RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "s3cret-pass",
		FirstName: "Alice", LastName: "Liddell",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, int64(0), profile.FollowerCount)

	// 用户名登录
	_, token, err = e.userSvc.Login(ctx, "alice", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	// 邮箱登录
	_, _, err = e.userSvc.Login(ctx, "alice@example.com", "s3cret-pass")
	require.NoError(t, err)

	// 密码错误和账号不存在同一个回答
	_, _, err = e.userSvc.Login(ctx, "alice", "wrong")
	assert.True(t, errors.Is(err, apperr.ErrUnauthenticated))
	_, _, err = e.userSvc.Login(ctx, "nobody", "whatever")
	assert.True(t, errors.Is(err, apperr.ErrUnauthenticated))
}

func TestRegisterDuplicate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, _, err := e.userSvc.Register(ctx, RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "s3cret-pass",
	})
	require.NoError(t, err)

	_, _, err = e.userSvc.Register(ctx, RegisterInput{
		Username: "alice", Email: "other@example.com", Password: "s3cret-pass",
	})
	assert.True(t, apperr.IsInvalid(err))

	_, _, err = e.userSvc.Register(ctx, RegisterInput{
		Username: "alice2", Email: "alice@example.com", Password: "s3cret-pass",
	})
	assert.True(t, apperr.IsInvalid(err))
}

func TestProfileCounts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.createUser(t, "alice")
	bob := e.createUser(t, "bob")
	carol := e.createUser(t, "carol")

	_, err := e.relSvc.Follow(ctx, bob.ID, "alice")
	require.NoError(t, err)
	_, err = e.relSvc.Follow(ctx, carol.ID, "alice")
	require.NoError(t, err)
	_, err = e.relSvc.Follow(ctx, alice.ID, "bob")
	require.NoError(t, err)
	e.createPost(t, alice.ID, "somewhere", 1)

	profile, err := e.userSvc.Profile(ctx, bob.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(2), profile.FollowerCount)
	assert.Equal(t, int64(1), profile.FollowingCount)
	assert.Equal(t, int64(1), profile.PostCount)

	// 取关后计数跟着走（读取时聚合，没有陈旧窗口）
	_, err = e.relSvc.Unfollow(ctx, bob.ID, "alice")
	require.NoError(t, err)
	profile, err = e.userSvc.Profile(ctx, bob.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), profile.FollowerCount)
}

func TestProfileHiddenWhenBlocked(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.createUser(t, "alice")
	bob := e.createUser(t, "bob")

	require.NoError(t, e.relSvc.Block(ctx, alice.ID, "bob"))

	_, err := e.userSvc.Profile(ctx, bob.ID, "alice")
	assert.True(t, apperr.IsNotFound(err), "the blocker's profile reads as missing")

	// 拉黑方看被拉黑的人：主页仍可见（帖子流才是 403）
	_, err = e.userSvc.Profile(ctx, alice.ID, "bob")
	require.NoError(t, err)
}

func TestDeactivateHidesUser(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.createUser(t, "alice")
	bob := e.createUser(t, "bob")

	require.NoError(t, e.userSvc.Deactivate(ctx, alice.ID))

	_, err := e.userSvc.Profile(ctx, bob.ID, "alice")
	assert.True(t, apperr.IsNotFound(err))
	_, _, err = e.userSvc.Login(ctx, "alice", "whatever")
	assert.True(t, errors.Is(err, apperr.ErrUnauthenticated))
}

func TestUpdateProfilePartial(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.createUser(t, "alice")

	first := "Alicia"
	profile, err := e.userSvc.UpdateProfile(ctx, alice.ID, UpdateProfileInput{FirstName: &first})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", profile.FirstName)
	assert.Equal(t, "", profile.LastName, "untouched fields keep their value")
}

func TestPreferencesRoundtrip(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.createUser(t, "alice")

	prefs, err := e.userSvc.Preferences(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, prefs.FollowNotifications, "defaults are all on")

	off := false
	prefs, err = e.userSvc.UpdatePreferences(ctx, alice.ID, PreferencesInput{PostLikedNotifications: &off})
	require.NoError(t, err)
	assert.True(t, prefs.FollowNotifications)
	assert.False(t, prefs.PostLikedNotifications)
}
