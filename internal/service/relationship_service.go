package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/d60-Lab/placefeed/internal/apperr"
	"github.com/d60-Lab/placefeed/internal/model"
	"github.com/d60-Lab/placefeed/internal/repository"
	"github.com/d60-Lab/placefeed/pkg/logger"
)

// RelationshipService 关系链服务
type RelationshipService interface {
	Follow(ctx context.Context, fromUserID int64, toUsername string) (*FollowResult, error)
	Unfollow(ctx context.Context, fromUserID int64, toUsername string) (*FollowResult, error)
	Block(ctx context.Context, actorID int64, targetUsername string) error
	Unblock(ctx context.Context, actorID int64, targetUsername string) error
	// RelationTo 调用者对目标的关注状态："following" 或空。
	RelationTo(ctx context.Context, fromUserID int64, toUsername string) (string, error)
}

type relationshipService struct {
	users      repository.UserRepository
	relations  repository.RelationRepository
	notifs     NotificationService
	dispatcher TaskDispatcher
}

func NewRelationshipService(users repository.UserRepository, relations repository.RelationRepository, notifs NotificationService, dispatcher TaskDispatcher) RelationshipService {
	return &relationshipService{users: users, relations: relations, notifs: notifs, dispatcher: dispatcher}
}

func (s *relationshipService) Follow(ctx context.Context, fromUserID int64, toUsername string) (*FollowResult, error) {
	to, err := visibleUser(ctx, s.users, s.relations, fromUserID, toUsername)
	if err != nil {
		return nil, err
	}
	if to.ID == fromUserID {
		return nil, apperr.Invalidf("cannot follow yourself")
	}
	// 拉黑复核在仓储事务内完成，并发 block+follow 以先提交者为准
	created, err := s.relations.Follow(ctx, fromUserID, to.ID)
	if err != nil {
		if apperr.IsForbidden(err) {
			return nil, err
		}
		return nil, apperr.Storage(err)
	}
	// 重复关注是幂等 no-op：不重复发通知，计数也不动
	if created {
		if s.dispatcher != nil {
			s.dispatcher.IncrUserCounter(fromUserID, "followingCount", 1)
			s.dispatcher.IncrUserCounter(to.ID, "followerCount", 1)
		}
		// 事件落库 + 推送都按接收者偏好门控；旁路失败不影响关注结果
		prefs, err := s.users.GetPreferences(ctx, to.ID)
		if err != nil {
			logger.Warn("load preferences failed", zap.Int64("user", to.ID), zap.Error(err))
		} else if prefs.FollowNotifications {
			if err := s.notifs.Append(ctx, to.ID, model.NotificationFollow, fromUserID, nil, nil); err != nil {
				logger.Warn("append follow event failed", zap.Int64("recipient", to.ID), zap.Error(err))
			}
			if s.dispatcher != nil {
				s.dispatcher.NotifyFollow(to.ID, fromUserID)
			}
		}
	}

	followers, err := s.relations.CountFollowers(ctx, to.ID)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return &FollowResult{Followed: true, Followers: followers}, nil
}

func (s *relationshipService) Unfollow(ctx context.Context, fromUserID int64, toUsername string) (*FollowResult, error) {
	to, err := visibleUser(ctx, s.users, s.relations, fromUserID, toUsername)
	if err != nil {
		return nil, err
	}
	if to.ID == fromUserID {
		return nil, apperr.Invalidf("cannot unfollow yourself")
	}
	// 边不存在也是成功（幂等）
	removed, err := s.relations.Unfollow(ctx, fromUserID, to.ID)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	// no-op 取关不动计数，缓存里的值才不会被减成负数
	if removed && s.dispatcher != nil {
		s.dispatcher.IncrUserCounter(fromUserID, "followingCount", -1)
		s.dispatcher.IncrUserCounter(to.ID, "followerCount", -1)
	}
	followers, err := s.relations.CountFollowers(ctx, to.ID)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return &FollowResult{Followed: false, Followers: followers}, nil
}

func (s *relationshipService) Block(ctx context.Context, actorID int64, targetUsername string) error {
	target, err := visibleUser(ctx, s.users, s.relations, actorID, targetUsername)
	if err != nil {
		return err
	}
	if target.ID == actorID {
		return apperr.Invalidf("cannot block yourself")
	}
	// 删双向关注边 + 建拉黑边是一个事务
	if err := s.relations.Block(ctx, actorID, target.ID); err != nil {
		return apperr.Storage(err)
	}
	if s.dispatcher != nil {
		// 双方粉丝/关注计数都可能变化，直接作废缓存
		s.dispatcher.InvalidateUserCounters(actorID)
		s.dispatcher.InvalidateUserCounters(target.ID)
	}
	return nil
}

func (s *relationshipService) Unblock(ctx context.Context, actorID int64, targetUsername string) error {
	// 目标拉黑了调用者时 visibleUser 会报 NotFound，
	// 但自己名下的拉黑边必须能解除，所以这里直接按用户名解析
	target, err := s.users.GetByUsername(ctx, targetUsername)
	if err != nil {
		return err
	}
	if target.ID == actorID {
		return apperr.Invalidf("cannot unblock yourself")
	}
	if err := s.relations.Unblock(ctx, actorID, target.ID); err != nil {
		return apperr.Storage(err)
	}
	return nil
}

func (s *relationshipService) RelationTo(ctx context.Context, fromUserID int64, toUsername string) (string, error) {
	to, err := visibleUser(ctx, s.users, s.relations, fromUserID, toUsername)
	if err != nil {
		return "", err
	}
	following, err := s.relations.Following(ctx, fromUserID, to.ID)
	if err != nil {
		return "", apperr.Storage(err)
	}
	if following {
		return "following", nil
	}
	return "", nil
}
