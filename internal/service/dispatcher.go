package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/placefeed/pkg/cache"
	"github.com/d60-Lab/placefeed/pkg/logger"
)

// TaskDispatcher 尽力而为的旁路副作用：推送、缓存计数。
// 任何失败都不回滚触发它的核心事务。
type TaskDispatcher interface {
	NotifyFollow(recipientID, actorID int64)
	NotifyPostLiked(recipientID, actorID, postID int64)
	NotifyComment(recipientID, actorID, postID, commentID int64)
	IncrUserCounter(userID int64, field string, delta int64)
	IncrPostLikes(postID int64, delta int64)
	InvalidateUserCounters(userID int64)
}

// PushSender 推送渠道的窄接口，投递由外部服务完成。
type PushSender interface {
	SendFollow(ctx context.Context, recipientID, actorID int64) error
	SendPostLiked(ctx context.Context, recipientID, actorID, postID int64) error
	SendComment(ctx context.Context, recipientID, actorID, postID, commentID int64) error
}

// LogPushSender 没接推送服务时的兜底实现，只记日志。
type LogPushSender struct{}

func (LogPushSender) SendFollow(ctx context.Context, recipientID, actorID int64) error {
	logger.Debug("push follow", zap.Int64("recipient", recipientID), zap.Int64("actor", actorID))
	return nil
}

func (LogPushSender) SendPostLiked(ctx context.Context, recipientID, actorID, postID int64) error {
	logger.Debug("push post liked", zap.Int64("recipient", recipientID), zap.Int64("post", postID))
	return nil
}

func (LogPushSender) SendComment(ctx context.Context, recipientID, actorID, postID, commentID int64) error {
	logger.Debug("push comment", zap.Int64("recipient", recipientID), zap.Int64("comment", commentID))
	return nil
}

type taskKind int

const (
	taskPushFollow taskKind = iota + 1
	taskPushLike
	taskPushComment
	taskIncrUser
	taskIncrPostLikes
	taskInvalidateUser
)

type task struct {
	kind      taskKind
	userID    int64
	actorID   int64
	postID    int64
	commentID int64
	field     string
	delta     int64
}

// AsyncDispatcher 本地异步执行器：带缓冲通道 + 固定 worker 池。
// 队列满直接丢弃并告警，绝不反压调用方。
type AsyncDispatcher struct {
	push  PushSender
	cache *cache.CounterCache
	ch    chan task
}

func NewAsyncDispatcher(push PushSender, counterCache *cache.CounterCache, queueSize int) *AsyncDispatcher {
	if queueSize <= 0 {
		queueSize = 10000
	}
	return &AsyncDispatcher{push: push, cache: counterCache, ch: make(chan task, queueSize)}
}

// Start 启动 worker 池；返回停止函数。
func (d *AsyncDispatcher) Start(workers int) func(context.Context) error {
	if workers <= 0 {
		workers = 4
	}
	stopCh := make(chan struct{})
	for i := 0; i < workers; i++ {
		go func() {
			for {
				select {
				case t := <-d.ch:
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					d.process(ctx, t)
					cancel()
				case <-stopCh:
					return
				}
			}
		}()
	}
	return func(ctx context.Context) error {
		close(stopCh)
		// 等待队列自然排空一小段时间
		timeout := time.After(2 * time.Second)
		for {
			select {
			case <-timeout:
				return nil
			default:
				if len(d.ch) == 0 {
					return nil
				}
				time.Sleep(50 * time.Millisecond)
			}
		}
	}
}

func (d *AsyncDispatcher) process(ctx context.Context, t task) {
	var err error
	switch t.kind {
	case taskPushFollow:
		err = d.push.SendFollow(ctx, t.userID, t.actorID)
	case taskPushLike:
		err = d.push.SendPostLiked(ctx, t.userID, t.actorID, t.postID)
	case taskPushComment:
		err = d.push.SendComment(ctx, t.userID, t.actorID, t.postID, t.commentID)
	case taskIncrUser:
		if d.cache != nil {
			err = d.cache.IncrUserField(ctx, t.userID, t.field, t.delta)
		}
	case taskIncrPostLikes:
		if d.cache != nil {
			err = d.cache.IncrPostLikes(ctx, t.postID, t.delta)
		}
	case taskInvalidateUser:
		if d.cache != nil {
			err = d.cache.InvalidateUser(ctx, t.userID)
		}
	}
	if err != nil {
		// 旁路失败只记日志
		logger.Warn("dispatcher task failed", zap.Int("kind", int(t.kind)), zap.Error(err))
	}
}

func (d *AsyncDispatcher) enqueue(t task) {
	select {
	case d.ch <- t:
	default:
		logger.Warn("dispatcher queue full, drop task", zap.Int("kind", int(t.kind)))
	}
}

func (d *AsyncDispatcher) NotifyFollow(recipientID, actorID int64) {
	d.enqueue(task{kind: taskPushFollow, userID: recipientID, actorID: actorID})
}

func (d *AsyncDispatcher) NotifyPostLiked(recipientID, actorID, postID int64) {
	d.enqueue(task{kind: taskPushLike, userID: recipientID, actorID: actorID, postID: postID})
}

func (d *AsyncDispatcher) NotifyComment(recipientID, actorID, postID, commentID int64) {
	d.enqueue(task{kind: taskPushComment, userID: recipientID, actorID: actorID, postID: postID, commentID: commentID})
}

func (d *AsyncDispatcher) IncrUserCounter(userID int64, field string, delta int64) {
	d.enqueue(task{kind: taskIncrUser, userID: userID, field: field, delta: delta})
}

func (d *AsyncDispatcher) IncrPostLikes(postID int64, delta int64) {
	d.enqueue(task{kind: taskIncrPostLikes, postID: postID, delta: delta})
}

func (d *AsyncDispatcher) InvalidateUserCounters(userID int64) {
	d.enqueue(task{kind: taskInvalidateUser, userID: userID})
}

// QueueLen 当前队列长度（采样值）。
func (d *AsyncDispatcher) QueueLen() int { return len(d.ch) }
