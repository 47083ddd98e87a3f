package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/placefeed/internal/apperr"
)

func TestCreatePostDuplicatePlace(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	author := e.createUser(t, "author")

	_, err := e.postSvc.Create(ctx, author.ID, CreatePostInput{
		PlaceName: "the diner", Latitude: 40.7, Longitude: -74.0, Content: "first",
	})
	require.NoError(t, err)

	// 同一地点每人一帖
	_, err = e.postSvc.Create(ctx, author.ID, CreatePostInput{
		PlaceName: "the diner", Latitude: 40.7, Longitude: -74.0, Content: "second",
	})
	assert.True(t, apperr.IsInvalid(err))

	// 别人可以发同一地点
	other := e.createUser(t, "other")
	_, err = e.postSvc.Create(ctx, other.ID, CreatePostInput{
		PlaceName: "the diner", Latitude: 40.7, Longitude: -74.0, Content: "mine",
	})
	require.NoError(t, err)
}

func TestCreatePostWithImage(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	author := e.createUser(t, "author")

	view, err := e.postSvc.Create(ctx, author.ID, CreatePostInput{
		PlaceName: "pier 39", Latitude: 37.8, Longitude: -122.4,
		Content: "with photo", Image: []byte{0xff, 0xd8, 0xff},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, view.ImageURL)
}

func TestGetPostVisibility(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	author := e.createUser(t, "author")
	reader := e.createUser(t, "reader")
	view := e.createPost(t, author.ID, "somewhere", 1)

	got, err := e.postSvc.Get(ctx, reader.ID, view.ID)
	require.NoError(t, err)
	assert.Equal(t, "author", got.Author.Username)

	// 任一方向的拉黑都让帖子视同不存在
	require.NoError(t, e.relSvc.Block(ctx, reader.ID, "author"))
	_, err = e.postSvc.Get(ctx, reader.ID, view.ID)
	assert.True(t, apperr.IsNotFound(err))

	// 帖主自己始终可见
	got, err = e.postSvc.Get(ctx, author.ID, view.ID)
	require.NoError(t, err)
	assert.Equal(t, view.ID, got.ID)
}

func TestDeletePostOwnership(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	author := e.createUser(t, "author")
	stranger := e.createUser(t, "stranger")
	view := e.createPost(t, author.ID, "somewhere", 1)

	// 非帖主删帖：无事发生，deleted=false
	deleted, err := e.postSvc.Delete(ctx, stranger.ID, view.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = e.postSvc.Delete(ctx, author.ID, view.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	// 已删帖子再删：幂等成功
	deleted, err = e.postSvc.Delete(ctx, author.ID, view.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = e.postSvc.Get(ctx, author.ID, view.ID)
	assert.True(t, apperr.IsNotFound(err))
}

func TestLikeUnlikeRoundtrip(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	author := e.createUser(t, "author")
	liker := e.createUser(t, "liker")
	view := e.createPost(t, author.ID, "somewhere", 1)

	likes, err := e.postSvc.Like(ctx, liker.ID, view.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), likes)

	likes, err = e.postSvc.Like(ctx, liker.ID, view.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), likes, "double like does not double count")

	likes, err = e.postSvc.Unlike(ctx, liker.ID, view.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), likes)

	likes, err = e.postSvc.Unlike(ctx, liker.ID, view.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), likes)

	likes, err = e.postSvc.Like(ctx, liker.ID, view.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), likes)

	// 点赞事件进了帖主的通知流（只记首次建边）
	page, err := e.notifSvc.Feed(ctx, author.ID, nil, 10)
	require.NoError(t, err)
	likeEvents := 0
	for _, item := range page.Items {
		if item.Kind == "like" {
			likeEvents++
			require.NotNil(t, item.Post)
			assert.Equal(t, view.ID, item.Post.ID)
		}
	}
	assert.Equal(t, 2, likeEvents, "one event per created edge")
}

func TestSelfLikeNoNotification(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	author := e.createUser(t, "author")
	view := e.createPost(t, author.ID, "somewhere", 1)

	_, err := e.postSvc.Like(ctx, author.ID, view.ID)
	require.NoError(t, err)

	page, err := e.notifSvc.Feed(ctx, author.ID, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestReportPost(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	author := e.createUser(t, "author")
	reporter := e.createUser(t, "reporter")
	view := e.createPost(t, author.ID, "somewhere", 1)

	require.NoError(t, e.postSvc.Report(ctx, reporter.ID, view.ID, "spam"))

	err := e.postSvc.Report(ctx, reporter.ID, view.ID, "again")
	assert.True(t, apperr.IsInvalid(err), "second report by same user rejected")

	err = e.postSvc.Report(ctx, author.ID, view.ID, "own post")
	assert.True(t, apperr.IsInvalid(err))
}

func TestCommentsLifecycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	author := e.createUser(t, "author")
	commenter := e.createUser(t, "commenter")
	view := e.createPost(t, author.ID, "somewhere", 1)

	c1, err := e.postSvc.CreateComment(ctx, commenter.ID, view.ID, "nice spot")
	require.NoError(t, err)
	assert.Equal(t, "commenter", c1.Author.Username)

	c2, err := e.postSvc.CreateComment(ctx, author.ID, view.ID, "thanks")
	require.NoError(t, err)

	page, err := e.postSvc.Comments(ctx, commenter.ID, view.ID, nil, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, c2.ID, page.Items[0].ID, "newest first")

	// 路人删不了别人的评论
	err = e.postSvc.DeleteComment(ctx, commenter.ID, c2.ID)
	assert.True(t, apperr.IsForbidden(err))

	// 帖主可以删任何评论
	require.NoError(t, e.postSvc.DeleteComment(ctx, author.ID, c1.ID))
	page, err = e.postSvc.Comments(ctx, commenter.ID, view.ID, nil, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	// 评论事件进了帖主通知流
	feed, err := e.notifSvc.Feed(ctx, author.ID, nil, 10)
	require.NoError(t, err)
	commentEvents := 0
	for _, item := range feed.Items {
		if item.Kind == "comment" {
			commentEvents++
		}
	}
	assert.Equal(t, 1, commentEvents, "only the stranger's comment notified")
}
