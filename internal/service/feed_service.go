package service

import (
	"context"

	"github.com/d60-Lab/placefeed/internal/apperr"
	"github.com/d60-Lab/placefeed/internal/model"
	"github.com/d60-Lab/placefeed/internal/pagination"
	"github.com/d60-Lab/placefeed/internal/repository"
)

// FeedService 帖子流与关系链流的装配。
// 所有列表共用同一游标契约：id 严格递减，满页才带下一页游标。
type FeedService interface {
	// UserPosts 目标用户的帖子流。被对方拉黑 → NotFound；
	// 自己拉黑了对方 → Forbidden——绝不静默返回空页。
	UserPosts(ctx context.Context, callerID int64, targetUsername string, cursor *pagination.Cursor, limit int) (pagination.Page[PostView], error)
	// HomeFeed 自己 + 关注作者的合并流。
	HomeFeed(ctx context.Context, callerID int64, cursor *pagination.Cursor, limit int) (pagination.Page[PostView], error)
	// Followers 目标的粉丝列表，每行带调用者对该用户的关注状态。
	Followers(ctx context.Context, callerID int64, targetUsername string, cursor *pagination.Cursor, limit int) (pagination.Page[FollowFeedItem], error)
	// Following 目标关注的人，结构同 Followers。
	Following(ctx context.Context, callerID int64, targetUsername string, cursor *pagination.Cursor, limit int) (pagination.Page[FollowFeedItem], error)
}

type feedService struct {
	users     repository.UserRepository
	relations repository.RelationRepository
	posts     repository.PostRepository
	places    repository.PlaceRepository
}

func NewFeedService(users repository.UserRepository, relations repository.RelationRepository, posts repository.PostRepository, places repository.PlaceRepository) FeedService {
	return &feedService{users: users, relations: relations, posts: posts, places: places}
}

func (s *feedService) UserPosts(ctx context.Context, callerID int64, targetUsername string, cursor *pagination.Cursor, limit int) (pagination.Page[PostView], error) {
	limit = pagination.ClampLimit(limit)
	target, err := visibleUser(ctx, s.users, s.relations, callerID, targetUsername)
	if err != nil {
		return pagination.Page[PostView]{}, err
	}
	// 行级查询之前先判权限："没有帖子"和"无权查看"必须可区分
	if target.ID != callerID {
		blocked, err := s.relations.HasBlocked(ctx, callerID, target.ID)
		if err != nil {
			return pagination.Page[PostView]{}, apperr.Storage(err)
		}
		if blocked {
			return pagination.Page[PostView]{}, apperr.Forbiddenf("posts of %s", targetUsername)
		}
	}
	rows, err := s.posts.ListByUser(ctx, target.ID, cursor, limit)
	if err != nil {
		return pagination.Page[PostView]{}, apperr.Storage(err)
	}
	return s.assemble(ctx, callerID, rows, limit)
}

func (s *feedService) HomeFeed(ctx context.Context, callerID int64, cursor *pagination.Cursor, limit int) (pagination.Page[PostView], error) {
	limit = pagination.ClampLimit(limit)
	authorIDs, err := s.relations.FollowingIDs(ctx, callerID)
	if err != nil {
		return pagination.Page[PostView]{}, apperr.Storage(err)
	}
	authorIDs = append(authorIDs, callerID)
	// 拉黑会删关注边，这里的排除集是并发窗口内的兜底
	excludeIDs, err := s.relations.BlockedIDs(ctx, callerID)
	if err != nil {
		return pagination.Page[PostView]{}, apperr.Storage(err)
	}
	rows, err := s.posts.ListByAuthors(ctx, authorIDs, excludeIDs, cursor, limit)
	if err != nil {
		return pagination.Page[PostView]{}, apperr.Storage(err)
	}
	return s.assemble(ctx, callerID, rows, limit)
}

func (s *feedService) assemble(ctx context.Context, callerID int64, rows []*model.Post, limit int) (pagination.Page[PostView], error) {
	next := rawNext(rows, limit, func(p *model.Post) int64 { return p.ID })
	views, err := assemblePostViews(ctx, s.users, s.places, s.posts, callerID, rows)
	if err != nil {
		return pagination.Page[PostView]{}, err
	}
	return pagination.Page[PostView]{Items: views, Next: next}, nil
}

func (s *feedService) Followers(ctx context.Context, callerID int64, targetUsername string, cursor *pagination.Cursor, limit int) (pagination.Page[FollowFeedItem], error) {
	return s.relationFeed(ctx, callerID, targetUsername, cursor, limit, true)
}

func (s *feedService) Following(ctx context.Context, callerID int64, targetUsername string, cursor *pagination.Cursor, limit int) (pagination.Page[FollowFeedItem], error) {
	return s.relationFeed(ctx, callerID, targetUsername, cursor, limit, false)
}

// relationFeed 分页的是关系边本身（不是帖子），游标取边 id。
func (s *feedService) relationFeed(ctx context.Context, callerID int64, targetUsername string, cursor *pagination.Cursor, limit int, followers bool) (pagination.Page[FollowFeedItem], error) {
	limit = pagination.ClampLimit(limit)
	target, err := visibleUser(ctx, s.users, s.relations, callerID, targetUsername)
	if err != nil {
		return pagination.Page[FollowFeedItem]{}, err
	}

	var edges []*model.Follow
	if followers {
		edges, err = s.relations.ListFollowers(ctx, target.ID, cursor, limit)
	} else {
		edges, err = s.relations.ListFollowing(ctx, target.ID, cursor, limit)
	}
	if err != nil {
		return pagination.Page[FollowFeedItem]{}, apperr.Storage(err)
	}
	next := rawNext(edges, limit, func(f *model.Follow) int64 { return f.ID })

	userIDs := make([]int64, 0, len(edges))
	for _, e := range edges {
		if followers {
			userIDs = append(userIDs, e.FromUserID)
		} else {
			userIDs = append(userIDs, e.ToUserID)
		}
	}
	userMap, err := s.users.GetByIDs(ctx, userIDs)
	if err != nil {
		return pagination.Page[FollowFeedItem]{}, apperr.Storage(err)
	}
	// 每行的"我是否关注了 ta"一次批量查完，O(1) 往返
	relationOf, err := s.relations.FollowingOf(ctx, callerID, userIDs)
	if err != nil {
		return pagination.Page[FollowFeedItem]{}, apperr.Storage(err)
	}

	items := make([]FollowFeedItem, 0, len(edges))
	for _, id := range userIDs {
		u, ok := userMap[id]
		if !ok {
			continue // 已注销
		}
		items = append(items, FollowFeedItem{User: summarize(u), Following: relationOf[id]})
	}
	return pagination.Page[FollowFeedItem]{Items: items, Next: next}, nil
}
