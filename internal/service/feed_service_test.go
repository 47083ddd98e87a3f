package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/placefeed/internal/apperr"
	"github.com/d60-Lab/placefeed/internal/pagination"
)

func TestUserPostsPaginationWalk(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	author := e.createUser(t, "author")
	reader := e.createUser(t, "reader")

	for i := 0; i < 120; i++ {
		e.createPost(t, author.ID, fmt.Sprintf("place-%d", i), i)
	}

	seen := make(map[string]bool)
	sizes := []int{}
	cursor := ""
	for {
		c, err := pagination.Parse(cursor)
		require.NoError(t, err)
		page, err := e.feedSvc.UserPosts(ctx, reader.ID, "author", c, 50)
		require.NoError(t, err)
		sizes = append(sizes, len(page.Items))
		for _, p := range page.Items {
			assert.False(t, seen[p.ID], "post %s repeated", p.ID)
			seen[p.ID] = true
		}
		if page.Next == nil {
			break
		}
		cursor = page.Next.String()
	}
	assert.Equal(t, []int{50, 50, 20}, sizes, "120 rows at limit 50 walk as 50+50+20 with no fourth page")
	assert.Equal(t, 120, len(seen))
}

func TestUserPostsBlockedVisibility(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	author := e.createUser(t, "author")
	reader := e.createUser(t, "reader")
	e.createPost(t, author.ID, "somewhere", 1)

	// 作者拉黑了读者：读者看 404
	require.NoError(t, e.relSvc.Block(ctx, author.ID, "reader"))
	_, err := e.feedSvc.UserPosts(ctx, reader.ID, "author", nil, 10)
	assert.True(t, apperr.IsNotFound(err))

	require.NoError(t, e.relSvc.Unblock(ctx, author.ID, "reader"))

	// 读者拉黑了作者：明确 403，绝不静默返回空页
	require.NoError(t, e.relSvc.Block(ctx, reader.ID, "author"))
	_, err = e.feedSvc.UserPosts(ctx, reader.ID, "author", nil, 10)
	assert.True(t, apperr.IsForbidden(err))
}

func TestHomeFeedMergesFollowedAuthors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	reader := e.createUser(t, "reader")
	a := e.createUser(t, "alice")
	b := e.createUser(t, "bob")
	carol := e.createUser(t, "carol")

	e.createPost(t, a.ID, "pa", 1)
	e.createPost(t, b.ID, "pb", 2)
	e.createPost(t, carol.ID, "pc", 3)
	e.createPost(t, reader.ID, "pr", 4)

	_, err := e.relSvc.Follow(ctx, reader.ID, "alice")
	require.NoError(t, err)
	_, err = e.relSvc.Follow(ctx, reader.ID, "bob")
	require.NoError(t, err)

	page, err := e.feedSvc.HomeFeed(ctx, reader.ID, nil, 10)
	require.NoError(t, err)
	// 自己 + alice + bob，不包括没关注的 carol
	authors := map[string]bool{}
	for _, p := range page.Items {
		authors[p.Author.Username] = true
	}
	assert.Len(t, page.Items, 3)
	assert.True(t, authors["reader"])
	assert.True(t, authors["alice"])
	assert.True(t, authors["bob"])
	assert.False(t, authors["carol"])
}

func TestHomeFeedNewestFirst(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	reader := e.createUser(t, "reader")
	for i := 0; i < 5; i++ {
		e.createPost(t, reader.ID, fmt.Sprintf("p%d", i), i)
	}
	page, err := e.feedSvc.HomeFeed(ctx, reader.ID, nil, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 5)
	assert.Equal(t, "post 4", page.Items[0].Content)
	assert.Equal(t, "post 0", page.Items[4].Content)
}

func TestFollowersListWithRelationFlags(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.createUser(t, "target")
	a := e.createUser(t, "alice")
	b := e.createUser(t, "bob")
	viewer := e.createUser(t, "viewer")

	_, err := e.relSvc.Follow(ctx, a.ID, "target")
	require.NoError(t, err)
	_, err = e.relSvc.Follow(ctx, b.ID, "target")
	require.NoError(t, err)
	// viewer 只关注了 alice
	_, err = e.relSvc.Follow(ctx, viewer.ID, "alice")
	require.NoError(t, err)

	page, err := e.feedSvc.Followers(ctx, viewer.ID, "target", nil, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	byName := map[string]bool{}
	for _, item := range page.Items {
		byName[item.User.Username] = item.Following
	}
	assert.True(t, byName["alice"])
	assert.False(t, byName["bob"])

	following, err := e.feedSvc.Following(ctx, viewer.ID, "alice", nil, 10)
	require.NoError(t, err)
	require.Len(t, following.Items, 1)
	assert.Equal(t, "target", following.Items[0].User.Username)
}
