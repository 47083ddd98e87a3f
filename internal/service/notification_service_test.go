package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/placefeed/internal/model"
)

func TestNotificationFeedPagination(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	recipient := e.createUser(t, "recipient")
	actor := e.createUser(t, "actor")

	for i := 0; i < 3; i++ {
		require.NoError(t, e.notifSvc.Append(ctx, recipient.ID, model.NotificationFollow, actor.ID, nil, nil))
	}

	// 3 条、limit 2：第一页 2 条带游标，第二页 1 条收尾
	page, err := e.notifSvc.Feed(ctx, recipient.ID, nil, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.NotNil(t, page.Next)
	assert.Greater(t, page.Items[0].ID, page.Items[1].ID, "newest first")

	page2, err := e.notifSvc.Feed(ctx, recipient.ID, page.Next, 2)
	require.NoError(t, err)
	require.Len(t, page2.Items, 1)
	assert.Nil(t, page2.Next)
	assert.Less(t, page2.Items[0].ID, page.Items[1].ID)
}

func TestNotificationFeedOnlyOwnEvents(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.createUser(t, "alice")
	b := e.createUser(t, "bob")

	require.NoError(t, e.notifSvc.Append(ctx, a.ID, model.NotificationFollow, b.ID, nil, nil))

	page, err := e.notifSvc.Feed(ctx, b.ID, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestNotificationTombstoneDeletedPost(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	author := e.createUser(t, "author")
	liker := e.createUser(t, "liker")
	view := e.createPost(t, author.ID, "somewhere", 1)

	_, err := e.postSvc.Like(ctx, liker.ID, view.ID)
	require.NoError(t, err)
	require.NoError(t, e.notifSvc.Append(ctx, author.ID, model.NotificationFollow, liker.ID, nil, nil))

	// 删帖后点赞事件变墓碑，关注事件照常返回
	_, err = e.postSvc.Delete(ctx, author.ID, view.ID)
	require.NoError(t, err)

	page, err := e.notifSvc.Feed(ctx, author.ID, nil, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, model.NotificationFollow, page.Items[0].Kind)
}

func TestNotificationTombstonesStillAdvanceCursor(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	recipient := e.createUser(t, "recipient")
	actor := e.createUser(t, "actor")
	view := e.createPost(t, actor.ID, "somewhere", 1)

	// 2 条 like（将变墓碑）+ 1 条 follow，limit 2
	post, err := e.posts.GetByUrlsafeID(ctx, view.ID)
	require.NoError(t, err)
	require.NoError(t, e.notifSvc.Append(ctx, recipient.ID, model.NotificationLike, actor.ID, &post.ID, nil))
	require.NoError(t, e.notifSvc.Append(ctx, recipient.ID, model.NotificationLike, actor.ID, &post.ID, nil))
	require.NoError(t, e.notifSvc.Append(ctx, recipient.ID, model.NotificationFollow, actor.ID, nil, nil))

	_, err = e.postSvc.Delete(ctx, actor.ID, view.ID)
	require.NoError(t, err)

	// 第一页：follow + 一条墓碑（被滤掉），游标仍然推进
	page, err := e.notifSvc.Feed(ctx, recipient.ID, nil, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.NotNil(t, page.Next, "full raw page keeps the cursor even after filtering")

	page2, err := e.notifSvc.Feed(ctx, recipient.ID, page.Next, 2)
	require.NoError(t, err)
	assert.Empty(t, page2.Items)
	assert.Nil(t, page2.Next)
}

func TestNotificationDeactivatedActorFiltered(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	recipient := e.createUser(t, "recipient")
	actor := e.createUser(t, "actor")

	require.NoError(t, e.notifSvc.Append(ctx, recipient.ID, model.NotificationFollow, actor.ID, nil, nil))
	require.NoError(t, e.userSvc.Deactivate(ctx, actor.ID))

	page, err := e.notifSvc.Feed(ctx, recipient.ID, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Items, "events from deactivated actors are tombstones")
}
