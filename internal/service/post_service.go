package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/d60-Lab/placefeed/internal/apperr"
	"github.com/d60-Lab/placefeed/internal/model"
	"github.com/d60-Lab/placefeed/internal/pagination"
	"github.com/d60-Lab/placefeed/internal/repository"
	"github.com/d60-Lab/placefeed/pkg/blob"
	"github.com/d60-Lab/placefeed/pkg/logger"
)

// CreatePostInput 发帖入参。
type CreatePostInput struct {
	PlaceName string
	Latitude  float64
	Longitude float64
	Content   string
	Image     []byte
}

// PostService 帖子生命周期：创建、查看、软删、点赞、举报、评论。
type PostService interface {
	Create(ctx context.Context, userID int64, input CreatePostInput) (*PostView, error)
	// Get 外部 id 查帖。作者被拉黑/已注销时帖子视同不存在。
	Get(ctx context.Context, callerID int64, urlsafeID string) (*PostView, error)
	// Delete 软删，仅限帖主；图片清理是尽力而为的旁路。
	Delete(ctx context.Context, callerID int64, urlsafeID string) (bool, error)
	// Like 幂等点赞，返回当前点赞数。
	Like(ctx context.Context, callerID int64, urlsafeID string) (int64, error)
	// Unlike 幂等取消点赞，返回当前点赞数。
	Unlike(ctx context.Context, callerID int64, urlsafeID string) (int64, error)
	Report(ctx context.Context, callerID int64, urlsafeID, details string) error
	CreateComment(ctx context.Context, callerID int64, postUrlsafeID, content string) (*CommentView, error)
	Comments(ctx context.Context, callerID int64, postUrlsafeID string, cursor *pagination.Cursor, limit int) (pagination.Page[CommentView], error)
	// DeleteComment 作者或帖主可删。
	DeleteComment(ctx context.Context, callerID, commentID int64) error
}

type postService struct {
	users      repository.UserRepository
	relations  repository.RelationRepository
	posts      repository.PostRepository
	places     repository.PlaceRepository
	comments   repository.CommentRepository
	notifs     NotificationService
	blobs      blob.Store
	dispatcher TaskDispatcher
}

func NewPostService(
	users repository.UserRepository,
	relations repository.RelationRepository,
	posts repository.PostRepository,
	places repository.PlaceRepository,
	comments repository.CommentRepository,
	notifs NotificationService,
	blobs blob.Store,
	dispatcher TaskDispatcher,
) PostService {
	return &postService{
		users: users, relations: relations, posts: posts, places: places,
		comments: comments, notifs: notifs, blobs: blobs, dispatcher: dispatcher,
	}
}

func (s *postService) Create(ctx context.Context, userID int64, input CreatePostInput) (*PostView, error) {
	if input.Content == "" {
		return nil, apperr.Invalidf("content is required")
	}
	place, err := s.places.GetOrCreate(ctx, input.PlaceName, input.Latitude, input.Longitude)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	posted, err := s.posts.HasPostForPlace(ctx, userID, place.ID)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	if posted {
		return nil, apperr.Invalidf("you already posted that place")
	}

	post := &model.Post{
		UrlsafeID: uuid.New().String(),
		UserID:    userID,
		PlaceID:   place.ID,
		Content:   input.Content,
	}
	// 先传图后落库：上传失败不会留下半成品帖子
	if len(input.Image) > 0 {
		key, url, err := s.blobs.Upload(ctx, userID, input.Image)
		if err != nil {
			return nil, apperr.Storage(err)
		}
		post.ImageBlobKey = key
		post.ImageURL = url
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, apperr.Storage(err)
	}
	if s.dispatcher != nil {
		s.dispatcher.IncrUserCounter(userID, "postCount", 1)
	}
	return s.view(ctx, userID, post)
}

// getVisible 取帖并套可见性规则：帖子不存在、作者不可见（注销或
// 与调用者互在拉黑关系）都按 NotFound 处理，不泄漏存在性。
func (s *postService) getVisible(ctx context.Context, callerID int64, urlsafeID string) (*model.Post, error) {
	post, err := s.posts.GetByUrlsafeID(ctx, urlsafeID)
	if err != nil {
		return nil, err
	}
	if post.UserID != callerID {
		if _, err := s.users.GetByID(ctx, post.UserID); err != nil {
			return nil, apperr.NotFoundf("post %s", urlsafeID)
		}
		blocked, err := s.relations.IsBlocked(ctx, callerID, post.UserID)
		if err != nil {
			return nil, apperr.Storage(err)
		}
		if blocked {
			return nil, apperr.NotFoundf("post %s", urlsafeID)
		}
	}
	return post, nil
}

func (s *postService) Get(ctx context.Context, callerID int64, urlsafeID string) (*PostView, error) {
	post, err := s.getVisible(ctx, callerID, urlsafeID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, callerID, post)
}

func (s *postService) Delete(ctx context.Context, callerID int64, urlsafeID string) (bool, error) {
	post, err := s.posts.GetByUrlsafeID(ctx, urlsafeID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return false, nil
		}
		return false, apperr.Storage(err)
	}
	if post.UserID != callerID {
		return false, nil
	}
	if err := s.posts.SoftDelete(ctx, post.ID); err != nil {
		return false, apperr.Storage(err)
	}
	if post.ImageBlobKey != "" {
		if err := s.blobs.Delete(ctx, post.ImageBlobKey); err != nil {
			logger.Warn("delete post image failed", zap.String("key", post.ImageBlobKey), zap.Error(err))
		}
	}
	if s.dispatcher != nil {
		s.dispatcher.IncrUserCounter(callerID, "postCount", -1)
	}
	return true, nil
}

func (s *postService) Like(ctx context.Context, callerID int64, urlsafeID string) (int64, error) {
	post, err := s.getVisible(ctx, callerID, urlsafeID)
	if err != nil {
		return 0, err
	}
	created, err := s.posts.Like(ctx, callerID, post.ID)
	if err != nil {
		return 0, apperr.Storage(err)
	}
	if created && post.UserID != callerID {
		prefs, err := s.users.GetPreferences(ctx, post.UserID)
		if err != nil {
			logger.Warn("load preferences failed", zap.Int64("user", post.UserID), zap.Error(err))
		} else if prefs.PostLikedNotifications {
			if err := s.notifs.Append(ctx, post.UserID, model.NotificationLike, callerID, &post.ID, nil); err != nil {
				logger.Warn("append like event failed", zap.Int64("post", post.ID), zap.Error(err))
			}
			if s.dispatcher != nil {
				s.dispatcher.NotifyPostLiked(post.UserID, callerID, post.ID)
			}
		}
	}
	if created && s.dispatcher != nil {
		s.dispatcher.IncrPostLikes(post.ID, 1)
	}
	return s.likeCount(ctx, post.ID)
}

func (s *postService) Unlike(ctx context.Context, callerID int64, urlsafeID string) (int64, error) {
	post, err := s.getVisible(ctx, callerID, urlsafeID)
	if err != nil {
		return 0, err
	}
	removed, err := s.posts.Unlike(ctx, callerID, post.ID)
	if err != nil {
		return 0, apperr.Storage(err)
	}
	if removed && s.dispatcher != nil {
		s.dispatcher.IncrPostLikes(post.ID, -1)
	}
	return s.likeCount(ctx, post.ID)
}

func (s *postService) likeCount(ctx context.Context, postID int64) (int64, error) {
	likes, err := s.posts.LikeCount(ctx, postID)
	if err != nil {
		return 0, apperr.Storage(err)
	}
	return likes, nil
}

func (s *postService) Report(ctx context.Context, callerID int64, urlsafeID, details string) error {
	post, err := s.getVisible(ctx, callerID, urlsafeID)
	if err != nil {
		return err
	}
	if post.UserID == callerID {
		return apperr.Invalidf("cannot report your own post")
	}
	if err := s.posts.Report(ctx, post.ID, callerID, details); err != nil {
		if apperr.IsInvalid(err) {
			return err
		}
		return apperr.Storage(err)
	}
	return nil
}

func (s *postService) CreateComment(ctx context.Context, callerID int64, postUrlsafeID, content string) (*CommentView, error) {
	if content == "" {
		return nil, apperr.Invalidf("content is required")
	}
	post, err := s.getVisible(ctx, callerID, postUrlsafeID)
	if err != nil {
		return nil, err
	}
	comment := &model.Comment{PostID: post.ID, UserID: callerID, Content: content}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperr.Storage(err)
	}
	if post.UserID != callerID {
		prefs, err := s.users.GetPreferences(ctx, post.UserID)
		if err != nil {
			logger.Warn("load preferences failed", zap.Int64("user", post.UserID), zap.Error(err))
		} else if prefs.CommentNotifications {
			if err := s.notifs.Append(ctx, post.UserID, model.NotificationComment, callerID, &post.ID, &comment.ID); err != nil {
				logger.Warn("append comment event failed", zap.Int64("comment", comment.ID), zap.Error(err))
			}
			if s.dispatcher != nil {
				s.dispatcher.NotifyComment(post.UserID, callerID, post.ID, comment.ID)
			}
		}
	}
	caller, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	return &CommentView{ID: comment.ID, Author: summarize(caller), Content: comment.Content, CreatedAt: comment.CreatedAt}, nil
}

func (s *postService) Comments(ctx context.Context, callerID int64, postUrlsafeID string, cursor *pagination.Cursor, limit int) (pagination.Page[CommentView], error) {
	limit = pagination.ClampLimit(limit)
	post, err := s.getVisible(ctx, callerID, postUrlsafeID)
	if err != nil {
		return pagination.Page[CommentView]{}, err
	}
	rows, err := s.comments.ListByPost(ctx, post.ID, cursor, limit)
	if err != nil {
		return pagination.Page[CommentView]{}, apperr.Storage(err)
	}
	next := rawNext(rows, limit, func(c *model.Comment) int64 { return c.ID })

	authorIDs := make([]int64, 0, len(rows))
	for _, c := range rows {
		authorIDs = append(authorIDs, c.UserID)
	}
	authors, err := s.users.GetByIDs(ctx, authorIDs)
	if err != nil {
		return pagination.Page[CommentView]{}, apperr.Storage(err)
	}
	items := make([]CommentView, 0, len(rows))
	for _, c := range rows {
		author, ok := authors[c.UserID]
		if !ok {
			continue
		}
		items = append(items, CommentView{ID: c.ID, Author: summarize(author), Content: c.Content, CreatedAt: c.CreatedAt})
	}
	return pagination.Page[CommentView]{Items: items, Next: next}, nil
}

func (s *postService) DeleteComment(ctx context.Context, callerID, commentID int64) error {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != callerID {
		post, err := s.posts.GetByID(ctx, comment.PostID)
		if err != nil {
			return err
		}
		if post.UserID != callerID {
			return apperr.Forbiddenf("comment %d", commentID)
		}
	}
	if err := s.comments.SoftDelete(ctx, commentID); err != nil {
		return apperr.Storage(err)
	}
	return nil
}

func (s *postService) view(ctx context.Context, callerID int64, post *model.Post) (*PostView, error) {
	views, err := assemblePostViews(ctx, s.users, s.places, s.posts, callerID, []*model.Post{post})
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, apperr.ErrNotFound
	}
	return &views[0], nil
}
