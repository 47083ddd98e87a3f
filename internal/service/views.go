package service

import (
	"context"
	"time"

	"github.com/d60-Lab/placefeed/internal/apperr"
	"github.com/d60-Lab/placefeed/internal/model"
	"github.com/d60-Lab/placefeed/internal/pagination"
	"github.com/d60-Lab/placefeed/internal/repository"
)

// UserSummary feed 行里的用户投影。
type UserSummary struct {
	Username          string `json:"username"`
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`
}

// UserProfile 个人主页投影，计数为读取时聚合值。
type UserProfile struct {
	UserSummary
	FollowerCount  int64 `json:"follower_count"`
	FollowingCount int64 `json:"following_count"`
	PostCount      int64 `json:"post_count"`
}

// PlaceView 地点投影。
type PlaceView struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PostView 对外的帖子投影，id 用 urlsafe token。
type PostView struct {
	ID        string      `json:"id"`
	Author    UserSummary `json:"author"`
	Place     PlaceView   `json:"place"`
	Content   string      `json:"content"`
	ImageURL  string      `json:"image_url,omitempty"`
	LikeCount int64       `json:"like_count"`
	Liked     bool        `json:"liked"`
	CreatedAt time.Time   `json:"created_at"`
}

// CommentView 评论投影。
type CommentView struct {
	ID        int64       `json:"id"`
	Author    UserSummary `json:"author"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}

// FollowFeedItem 粉丝/关注列表行：用户 + 调用者对该用户的关注状态。
type FollowFeedItem struct {
	User      UserSummary `json:"user"`
	Following bool        `json:"following"`
}

// NotificationItem 通知 feed 行，主体按读取时状态富化。
type NotificationItem struct {
	ID        int64       `json:"id"`
	Kind      string      `json:"kind"`
	Actor     UserSummary `json:"actor"`
	Post      *PostView   `json:"post,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// FollowResult 关注/取关的结果状态。
type FollowResult struct {
	Followed  bool  `json:"followed"`
	Followers int64 `json:"followers"`
}

func summarize(u *model.User) UserSummary {
	return UserSummary{
		Username:          u.Username,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		ProfilePictureURL: u.ProfilePictureURL,
	}
}

// visibleUser 解析 username 并套可见性规则：不存在、已注销、
// 或目标拉黑了调用者，一律 NotFound——拉黑方的存在性不能泄漏。
// 调用者拉黑了目标不在这里拦，由各操作自行决定 Forbidden 语义。
func visibleUser(ctx context.Context, users repository.UserRepository, relations repository.RelationRepository, callerID int64, username string) (*model.User, error) {
	u, err := users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u.ID != callerID {
		blocked, err := relations.HasBlocked(ctx, u.ID, callerID)
		if err != nil {
			return nil, apperr.Storage(err)
		}
		if blocked {
			return nil, apperr.NotFoundf("user %s", username)
		}
	}
	return u, nil
}

// rawNext 在富化/过滤之前按原始行算下一页游标，
// 避免被过滤掉的行让分页卡住。
func rawNext[T any](items []T, limit int, id func(T) int64) *pagination.Cursor {
	return pagination.NewPage(items, limit, id).Next
}

// assemblePostViews 批量装配帖子投影：作者、地点、点赞状态各一次往返。
// 作者已注销或地点缺失的行按墓碑处理直接跳过。
func assemblePostViews(
	ctx context.Context,
	users repository.UserRepository,
	places repository.PlaceRepository,
	posts repository.PostRepository,
	callerID int64,
	rows []*model.Post,
) ([]PostView, error) {
	if len(rows) == 0 {
		return []PostView{}, nil
	}
	authorIDs := make([]int64, 0, len(rows))
	placeIDs := make([]int64, 0, len(rows))
	postIDs := make([]int64, 0, len(rows))
	for _, p := range rows {
		authorIDs = append(authorIDs, p.UserID)
		placeIDs = append(placeIDs, p.PlaceID)
		postIDs = append(postIDs, p.ID)
	}
	authors, err := users.GetByIDs(ctx, authorIDs)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	placeMap, err := places.GetByIDs(ctx, placeIDs)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	liked, err := posts.LikedOf(ctx, callerID, postIDs)
	if err != nil {
		return nil, apperr.Storage(err)
	}

	views := make([]PostView, 0, len(rows))
	for _, p := range rows {
		author, ok := authors[p.UserID]
		if !ok {
			continue
		}
		place, ok := placeMap[p.PlaceID]
		if !ok {
			continue
		}
		views = append(views, PostView{
			ID:     p.UrlsafeID,
			Author: summarize(author),
			Place: PlaceView{
				ID:        place.UrlsafeID,
				Name:      place.Name,
				Latitude:  place.Latitude,
				Longitude: place.Longitude,
			},
			Content:   p.Content,
			ImageURL:  p.ImageURL,
			LikeCount: p.LikeCount,
			Liked:     liked[p.ID],
			CreatedAt: p.CreatedAt,
		})
	}
	return views, nil
}
