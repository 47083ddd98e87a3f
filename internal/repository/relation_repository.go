package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/placefeed/internal/apperr"
	"github.com/d60-Lab/placefeed/internal/model"
	"github.com/d60-Lab/placefeed/internal/pagination"
)

// RelationRepository 关注/拉黑边表。边表双向都有索引，
// 所有读写按索引点查或范围查，不加载对象图。
type RelationRepository interface {
	// Follow 建边。事务内复核拉黑状态（block 并发竞态下
	// 事务外的预检查不算数），重复关注幂等成功。
	// 返回是否新建了边：通知和计数旁路只对真实建边生效。
	Follow(ctx context.Context, fromUserID, toUserID int64) (bool, error)
	// Unfollow 删边，边不存在也算成功。返回是否真的删了边。
	Unfollow(ctx context.Context, fromUserID, toUserID int64) (bool, error)
	// Block 拉黑：同一事务内删除双向关注边并插入拉黑边（幂等）。
	Block(ctx context.Context, blockerID, blockedID int64) error
	// Unblock 解除拉黑，幂等。
	Unblock(ctx context.Context, blockerID, blockedID int64) error
	// IsBlocked 任一方向存在拉黑边即为 true。
	IsBlocked(ctx context.Context, a, b int64) (bool, error)
	// HasBlocked 精确方向：blocker 是否拉黑了 blocked。
	// 可见性规则依赖方向：被对方拉黑 → 404，自己拉黑对方 → 403。
	HasBlocked(ctx context.Context, blockerID, blockedID int64) (bool, error)
	// Following 是否存在 from→to 的关注边。
	Following(ctx context.Context, fromUserID, toUserID int64) (bool, error)
	// FollowingOf 批量查询 from 对一组候选用户的关注状态，单次往返。
	FollowingOf(ctx context.Context, fromUserID int64, candidateIDs []int64) (map[int64]bool, error)
	// ListFollowers 关注 userID 的边，按边 id 游标分页。
	ListFollowers(ctx context.Context, userID int64, cursor *pagination.Cursor, limit int) ([]*model.Follow, error)
	// ListFollowing userID 关注的边，按边 id 游标分页。
	ListFollowing(ctx context.Context, userID int64, cursor *pagination.Cursor, limit int) ([]*model.Follow, error)
	// FollowingIDs userID 关注的全部用户 id（home feed 作者集合）。
	FollowingIDs(ctx context.Context, userID int64) ([]int64, error)
	// BlockedIDs 与 userID 任一方向存在拉黑边的用户 id。
	BlockedIDs(ctx context.Context, userID int64) ([]int64, error)
	CountFollowers(ctx context.Context, userID int64) (int64, error)
	CountFollowing(ctx context.Context, userID int64) (int64, error)
}

type relationRepository struct{ db *gorm.DB }

func NewRelationRepository(db *gorm.DB) RelationRepository { return &relationRepository{db: db} }

func (r *relationRepository) Follow(ctx context.Context, fromUserID, toUserID int64) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cnt int64
		if err := tx.Model(&model.Block{}).
			Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)",
				fromUserID, toUserID, toUserID, fromUserID).
			Count(&cnt).Error; err != nil {
			return err
		}
		if cnt > 0 {
			return apperr.ErrForbidden
		}
		f := &model.Follow{FromUserID: fromUserID, ToUserID: toUserID}
		// 幂等：重复关注不报错，也不算新建
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(f)
		if res.Error != nil {
			return res.Error
		}
		created = res.RowsAffected > 0
		return nil
	})
	return created, err
}

func (r *relationRepository) Unfollow(ctx context.Context, fromUserID, toUserID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("from_user_id = ? AND to_user_id = ?", fromUserID, toUserID).
		Delete(&model.Follow{})
	return res.RowsAffected > 0, res.Error
}

func (r *relationRepository) Block(ctx context.Context, blockerID, blockedID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 双向关注边与拉黑边一起落地，要么全部生效要么全部回滚
		if err := tx.
			Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)",
				blockerID, blockedID, blockedID, blockerID).
			Delete(&model.Follow{}).Error; err != nil {
			return err
		}
		b := &model.Block{BlockerID: blockerID, BlockedID: blockedID}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(b).Error
	})
}

func (r *relationRepository) Unblock(ctx context.Context, blockerID, blockedID int64) error {
	return r.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&model.Block{}).Error
}

func (r *relationRepository) IsBlocked(ctx context.Context, a, b int64) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Block{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)", a, b, b, a).
		Count(&cnt).Error
	return cnt > 0, err
}

func (r *relationRepository) HasBlocked(ctx context.Context, blockerID, blockedID int64) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Block{}).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Count(&cnt).Error
	return cnt > 0, err
}

func (r *relationRepository) Following(ctx context.Context, fromUserID, toUserID int64) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).
		Where("from_user_id = ? AND to_user_id = ?", fromUserID, toUserID).
		Count(&cnt).Error
	return cnt > 0, err
}

func (r *relationRepository) FollowingOf(ctx context.Context, fromUserID int64, candidateIDs []int64) (map[int64]bool, error) {
	res := make(map[int64]bool, len(candidateIDs))
	if len(candidateIDs) == 0 {
		return res, nil
	}
	var ids []int64
	if err := r.db.WithContext(ctx).Model(&model.Follow{}).
		Where("from_user_id = ? AND to_user_id IN ?", fromUserID, candidateIDs).
		Pluck("to_user_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		res[id] = true
	}
	return res, nil
}

func (r *relationRepository) ListFollowers(ctx context.Context, userID int64, cursor *pagination.Cursor, limit int) ([]*model.Follow, error) {
	var res []*model.Follow
	err := r.db.WithContext(ctx).
		Where("to_user_id = ?", userID).
		Scopes(pagination.Scope("id", cursor, limit)).
		Find(&res).Error
	return res, err
}

func (r *relationRepository) ListFollowing(ctx context.Context, userID int64, cursor *pagination.Cursor, limit int) ([]*model.Follow, error) {
	var res []*model.Follow
	err := r.db.WithContext(ctx).
		Where("from_user_id = ?", userID).
		Scopes(pagination.Scope("id", cursor, limit)).
		Find(&res).Error
	return res, err
}

func (r *relationRepository) FollowingIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).
		Where("from_user_id = ?", userID).
		Pluck("to_user_id", &ids).Error
	return ids, err
}

func (r *relationRepository) BlockedIDs(ctx context.Context, userID int64) ([]int64, error) {
	var out []int64
	err := r.db.WithContext(ctx).Raw(`
		SELECT blocked_id FROM blocks WHERE blocker_id = ?
		UNION
		SELECT blocker_id FROM blocks WHERE blocked_id = ?
	`, userID, userID).Scan(&out).Error
	return out, err
}

func (r *relationRepository) CountFollowers(ctx context.Context, userID int64) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).Where("to_user_id = ?", userID).Count(&cnt).Error
	return cnt, err
}

func (r *relationRepository) CountFollowing(ctx context.Context, userID int64) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).Where("from_user_id = ?", userID).Count(&cnt).Error
	return cnt, err
}
