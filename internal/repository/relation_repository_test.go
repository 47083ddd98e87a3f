package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/placefeed/internal/apperr"
	"github.com/d60-Lab/placefeed/internal/model"
	"github.com/d60-Lab/placefeed/internal/pagination"
)

// follow 建边并断言成功，返回是否真的新建了边。
func follow(t testing.TB, repo RelationRepository, fromID, toID int64) bool {
	t.Helper()
	created, err := repo.Follow(context.Background(), fromID, toID)
	require.NoError(t, err)
	return created
}

func TestFollowIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRelationRepository(db)
	ctx := context.Background()
	a := seedUser(t, db, "alice")
	b := seedUser(t, db, "bob")

	assert.True(t, follow(t, repo, a.ID, b.ID))
	// 重复关注：成功、不产生第二条边、也不算新建
	assert.False(t, follow(t, repo, a.ID, b.ID))

	var cnt int64
	require.NoError(t, db.Model(&model.Follow{}).Count(&cnt).Error)
	assert.Equal(t, int64(1), cnt)

	followers, err := repo.CountFollowers(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), followers)
}

func TestFollowBlockedForbidden(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRelationRepository(db)
	ctx := context.Background()
	a := seedUser(t, db, "alice")
	b := seedUser(t, db, "bob")

	require.NoError(t, repo.Block(ctx, b.ID, a.ID))
	// 任一方向的拉黑边都挡住建边
	_, err := repo.Follow(ctx, a.ID, b.ID)
	assert.True(t, apperr.IsForbidden(err))
	_, err = repo.Follow(ctx, b.ID, a.ID)
	assert.True(t, apperr.IsForbidden(err))
}

func TestUnfollowMissingEdge(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRelationRepository(db)
	ctx := context.Background()
	a := seedUser(t, db, "alice")
	b := seedUser(t, db, "bob")

	// 边不存在也是成功，但要报告没删到东西
	removed, err := repo.Unfollow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	follow(t, repo, a.ID, b.ID)
	removed, err = repo.Unfollow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, removed)
}

func TestBlockRemovesBothFollowEdges(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRelationRepository(db)
	ctx := context.Background()
	a := seedUser(t, db, "alice")
	b := seedUser(t, db, "bob")

	follow(t, repo, a.ID, b.ID)
	follow(t, repo, b.ID, a.ID)

	require.NoError(t, repo.Block(ctx, a.ID, b.ID))

	var cnt int64
	require.NoError(t, db.Model(&model.Follow{}).Count(&cnt).Error)
	assert.Equal(t, int64(0), cnt, "both follow edges must be gone")

	blocked, err := repo.IsBlocked(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, blocked)
	blocked, err = repo.IsBlocked(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, blocked, "IsBlocked is symmetric")

	// 方向敏感的查询只认拉黑方
	has, err := repo.HasBlocked(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, has)
	has, err = repo.HasBlocked(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, has)

	// 重复拉黑幂等
	require.NoError(t, repo.Block(ctx, a.ID, b.ID))
}

func TestUnblockRestoresFollowability(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRelationRepository(db)
	ctx := context.Background()
	a := seedUser(t, db, "alice")
	b := seedUser(t, db, "bob")

	require.NoError(t, repo.Block(ctx, a.ID, b.ID))
	require.NoError(t, repo.Unblock(ctx, a.ID, b.ID))
	assert.True(t, follow(t, repo, a.ID, b.ID))

	following, err := repo.Following(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, following)
}

func TestListFollowersPagination(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRelationRepository(db)
	ctx := context.Background()
	target := seedUser(t, db, "celebrity")

	for i := 0; i < 7; i++ {
		fan := seedUser(t, db, fmt.Sprintf("fan%d", i))
		follow(t, repo, fan.ID, target.ID)
	}

	seen := make(map[int64]bool)
	var cursor *pagination.Cursor
	pages := 0
	for {
		edges, err := repo.ListFollowers(ctx, target.ID, cursor, 3)
		require.NoError(t, err)
		for _, e := range edges {
			assert.False(t, seen[e.ID], "edge %d repeated across pages", e.ID)
			seen[e.ID] = true
			if cursor != nil {
				assert.Less(t, e.ID, int64(*cursor), "rows must be strictly older than the boundary")
			}
		}
		pages++
		next := pagination.NewPage(edges, 3, func(f *model.Follow) int64 { return f.ID }).Next
		if next == nil {
			break
		}
		cursor = next
	}
	assert.Equal(t, 7, len(seen))
	assert.Equal(t, 3, pages, "7 rows at limit 3 walk as 3+3+1")
}

func TestFollowingOfBatch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRelationRepository(db)
	ctx := context.Background()
	a := seedUser(t, db, "alice")
	b := seedUser(t, db, "bob")
	c := seedUser(t, db, "carol")

	follow(t, repo, a.ID, b.ID)

	rel, err := repo.FollowingOf(ctx, a.ID, []int64{b.ID, c.ID})
	require.NoError(t, err)
	assert.True(t, rel[b.ID])
	assert.False(t, rel[c.ID])
}

func TestBlockedIDsBothDirections(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRelationRepository(db)
	ctx := context.Background()
	a := seedUser(t, db, "alice")
	b := seedUser(t, db, "bob")
	c := seedUser(t, db, "carol")

	require.NoError(t, repo.Block(ctx, a.ID, b.ID))
	require.NoError(t, repo.Block(ctx, c.ID, a.ID))

	ids, err := repo.BlockedIDs(ctx, a.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{b.ID, c.ID}, ids)
}

func BenchmarkListFollowers(b *testing.B) {
	db := setupTestDB(b)
	repo := NewRelationRepository(db)
	ctx := context.Background()

	target := seedUser(b, db, "celebrity")
	const N = 5000
	fans := make([]model.Follow, N)
	for i := 0; i < N; i++ {
		u := seedUser(b, db, fmt.Sprintf("fan%d", i))
		fans[i] = model.Follow{FromUserID: u.ID, ToUserID: target.ID}
	}
	if err := db.CreateInBatches(&fans, 1000).Error; err != nil {
		b.Fatalf("seed follows: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = repo.ListFollowers(ctx, target.ID, nil, 50)
	}
}
