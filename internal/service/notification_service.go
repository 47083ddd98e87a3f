package service

import (
	"context"

	"github.com/d60-Lab/placefeed/internal/apperr"
	"github.com/d60-Lab/placefeed/internal/model"
	"github.com/d60-Lab/placefeed/internal/pagination"
	"github.com/d60-Lab/placefeed/internal/repository"
)

// NotificationService 通知事件：追加写 + 游标分页读。
type NotificationService interface {
	// Append 落一条事件。偏好门控由调用方完成，这里只管写。
	Append(ctx context.Context, recipientID int64, kind string, actorID int64, postID, commentID *int64) error
	// Feed 通知流。事件按读取时状态富化：主体（actor/帖子）已
	// 失效的行被当作墓碑过滤，不让一条旧事件打挂整个响应。
	Feed(ctx context.Context, callerID int64, cursor *pagination.Cursor, limit int) (pagination.Page[NotificationItem], error)
}

type notificationService struct {
	repo   repository.NotificationRepository
	users  repository.UserRepository
	posts  repository.PostRepository
	places repository.PlaceRepository
}

func NewNotificationService(repo repository.NotificationRepository, users repository.UserRepository, posts repository.PostRepository, places repository.PlaceRepository) NotificationService {
	return &notificationService{repo: repo, users: users, posts: posts, places: places}
}

func (s *notificationService) Append(ctx context.Context, recipientID int64, kind string, actorID int64, postID, commentID *int64) error {
	event := &model.NotificationEvent{
		RecipientID: recipientID,
		Kind:        kind,
		ActorID:     actorID,
		PostID:      postID,
		CommentID:   commentID,
	}
	if err := s.repo.Append(ctx, event); err != nil {
		return apperr.Storage(err)
	}
	return nil
}

func (s *notificationService) Feed(ctx context.Context, callerID int64, cursor *pagination.Cursor, limit int) (pagination.Page[NotificationItem], error) {
	limit = pagination.ClampLimit(limit)
	events, err := s.repo.ListByRecipient(ctx, callerID, cursor, limit)
	if err != nil {
		return pagination.Page[NotificationItem]{}, apperr.Storage(err)
	}
	// 游标按原始事件算：墓碑行也推进分页
	next := rawNext(events, limit, func(e *model.NotificationEvent) int64 { return e.ID })

	actorIDs := make([]int64, 0, len(events))
	postIDs := make([]int64, 0, len(events))
	for _, e := range events {
		actorIDs = append(actorIDs, e.ActorID)
		if e.PostID != nil {
			postIDs = append(postIDs, *e.PostID)
		}
	}
	actors, err := s.users.GetByIDs(ctx, actorIDs)
	if err != nil {
		return pagination.Page[NotificationItem]{}, apperr.Storage(err)
	}
	postRows, err := s.posts.GetByIDs(ctx, postIDs)
	if err != nil {
		return pagination.Page[NotificationItem]{}, apperr.Storage(err)
	}
	rows := make([]*model.Post, 0, len(postRows))
	for _, p := range postRows {
		rows = append(rows, p)
	}
	postViews, err := assemblePostViews(ctx, s.users, s.places, s.posts, callerID, rows)
	if err != nil {
		return pagination.Page[NotificationItem]{}, err
	}
	viewByID := make(map[string]*PostView, len(postViews))
	idByPost := make(map[int64]string, len(postRows))
	for id, p := range postRows {
		idByPost[id] = p.UrlsafeID
	}
	for i := range postViews {
		viewByID[postViews[i].ID] = &postViews[i]
	}

	items := make([]NotificationItem, 0, len(events))
	for _, e := range events {
		actor, ok := actors[e.ActorID]
		if !ok {
			continue // actor 已注销
		}
		item := NotificationItem{
			ID:        e.ID,
			Kind:      e.Kind,
			Actor:     summarize(actor),
			CreatedAt: e.CreatedAt,
		}
		if e.Kind == model.NotificationLike || e.Kind == model.NotificationComment {
			if e.PostID == nil {
				continue
			}
			urlsafe, ok := idByPost[*e.PostID]
			if !ok {
				continue // 帖子已删除
			}
			view, ok := viewByID[urlsafe]
			if !ok {
				continue
			}
			item.Post = view
		}
		items = append(items, item)
	}
	return pagination.Page[NotificationItem]{Items: items, Next: next}, nil
}
