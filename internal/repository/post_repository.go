package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/placefeed/internal/apperr"
	"github.com/d60-Lab/placefeed/internal/model"
	"github.com/d60-Lab/placefeed/internal/pagination"
)

// PostRepository 帖子与点赞边。like_count 是维护列：
// 与 post_likes 边的插入/删除同事务原子更新，绝不在应用内存里读改写。
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	// GetByUrlsafeID 对外 id 查帖，软删帖等同不存在。
	GetByUrlsafeID(ctx context.Context, urlsafeID string) (*model.Post, error)
	GetByID(ctx context.Context, id int64) (*model.Post, error)
	// GetByIDs 批量取未删除帖子，通知 feed 富化用。
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*model.Post, error)
	// SoftDelete 打删除标记，保留行。
	SoftDelete(ctx context.Context, postID int64) error
	// ListByUser 某用户的帖子，按帖 id 游标分页。
	ListByUser(ctx context.Context, userID int64, cursor *pagination.Cursor, limit int) ([]*model.Post, error)
	// ListByAuthors home feed：一组作者的帖子合并分页，排除指定作者。
	ListByAuthors(ctx context.Context, authorIDs, excludeIDs []int64, cursor *pagination.Cursor, limit int) ([]*model.Post, error)
	// HasPostForPlace 用户是否已对该地点发过未删除的帖子。
	HasPostForPlace(ctx context.Context, userID, placeID int64) (bool, error)
	// Like 点赞。返回是否新建了边（重复点赞幂等，返回 false）。
	Like(ctx context.Context, userID, postID int64) (bool, error)
	// Unlike 取消点赞。返回是否真的删了边。
	Unlike(ctx context.Context, userID, postID int64) (bool, error)
	Liked(ctx context.Context, userID, postID int64) (bool, error)
	// LikedOf 批量点赞状态，feed 装配的单次往返查询。
	LikedOf(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error)
	LikeCount(ctx context.Context, postID int64) (int64, error)
	CountByUser(ctx context.Context, userID int64) (int64, error)
	// Report 举报。同一人重复举报同一帖 → InvalidOperation。
	Report(ctx context.Context, postID, reportedBy int64, details string) error
}

type postRepository struct{ db *gorm.DB }

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByUrlsafeID(ctx context.Context, urlsafeID string) (*model.Post, error) {
	var post model.Post
	err := r.db.WithContext(ctx).
		Where("urlsafe_id = ? AND deleted = ?", urlsafeID, false).
		First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	var post model.Post
	err := r.db.WithContext(ctx).Where("id = ? AND deleted = ?", id, false).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*model.Post, error) {
	res := make(map[int64]*model.Post, len(ids))
	if len(ids) == 0 {
		return res, nil
	}
	var posts []*model.Post
	if err := r.db.WithContext(ctx).
		Where("id IN ? AND deleted = ?", ids, false).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	for _, p := range posts {
		res[p.ID] = p
	}
	return res, nil
}

func (r *postRepository) SoftDelete(ctx context.Context, postID int64) error {
	return r.db.WithContext(ctx).Model(&model.Post{}).
		Where("id = ?", postID).
		Update("deleted", true).Error
}

func (r *postRepository) ListByUser(ctx context.Context, userID int64, cursor *pagination.Cursor, limit int) ([]*model.Post, error) {
	var res []*model.Post
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND deleted = ?", userID, false).
		Scopes(pagination.Scope("id", cursor, limit)).
		Find(&res).Error
	return res, err
}

func (r *postRepository) ListByAuthors(ctx context.Context, authorIDs, excludeIDs []int64, cursor *pagination.Cursor, limit int) ([]*model.Post, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}
	q := r.db.WithContext(ctx).
		Where("user_id IN ? AND deleted = ?", authorIDs, false)
	if len(excludeIDs) > 0 {
		q = q.Where("user_id NOT IN ?", excludeIDs)
	}
	var res []*model.Post
	err := q.Scopes(pagination.Scope("id", cursor, limit)).Find(&res).Error
	return res, err
}

func (r *postRepository) HasPostForPlace(ctx context.Context, userID, placeID int64) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Post{}).
		Where("user_id = ? AND place_id = ? AND deleted = ?", userID, placeID, false).
		Count(&cnt).Error
	return cnt > 0, err
}

func (r *postRepository) Like(ctx context.Context, userID, postID int64) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		l := &model.PostLike{UserID: userID, PostID: postID}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(l)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// 已点过赞，计数不动
			return nil
		}
		created = true
		// 存储层原子自增，避免并发丢更新
		return tx.Model(&model.Post{}).Where("id = ?", postID).
			Update("like_count", gorm.Expr("like_count + 1")).Error
	})
	return created, err
}

func (r *postRepository) Unlike(ctx context.Context, userID, postID int64) (bool, error) {
	removed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&model.PostLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		removed = true
		// like_count > 0 守卫，计数永不为负
		return tx.Model(&model.Post{}).Where("id = ? AND like_count > 0", postID).
			Update("like_count", gorm.Expr("like_count - 1")).Error
	})
	return removed, err
}

func (r *postRepository) Liked(ctx context.Context, userID, postID int64) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.PostLike{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&cnt).Error
	return cnt > 0, err
}

func (r *postRepository) LikedOf(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error) {
	res := make(map[int64]bool, len(postIDs))
	if len(postIDs) == 0 {
		return res, nil
	}
	var ids []int64
	if err := r.db.WithContext(ctx).Model(&model.PostLike{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		res[id] = true
	}
	return res, nil
}

func (r *postRepository) LikeCount(ctx context.Context, postID int64) (int64, error) {
	var post model.Post
	err := r.db.WithContext(ctx).Select("like_count").Where("id = ?", postID).First(&post).Error
	return post.LikeCount, err
}

func (r *postRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Post{}).
		Where("user_id = ? AND deleted = ?", userID, false).
		Count(&cnt).Error
	return cnt, err
}

func (r *postRepository) Report(ctx context.Context, postID, reportedBy int64, details string) error {
	rep := &model.PostReport{PostID: postID, ReportedByUserID: reportedBy, Details: details}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(rep)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.Invalidf("post %d already reported by user %d", postID, reportedBy)
	}
	return nil
}
