package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/d60-Lab/placefeed/internal/apperr"
	"github.com/d60-Lab/placefeed/internal/model"
	"github.com/d60-Lab/placefeed/internal/pagination"
)

// CommentRepository 评论，软删。
type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, id int64) (*model.Comment, error)
	// ListByPost 帖子的评论，按评论 id 游标分页。
	ListByPost(ctx context.Context, postID int64, cursor *pagination.Cursor, limit int) ([]*model.Comment, error)
	SoftDelete(ctx context.Context, commentID int64) error
}

type commentRepository struct{ db *gorm.DB }

func NewCommentRepository(db *gorm.DB) CommentRepository { return &commentRepository{db: db} }

func (r *commentRepository) Create(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id int64) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.WithContext(ctx).Where("id = ? AND deleted = ?", id, false).First(&comment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID int64, cursor *pagination.Cursor, limit int) ([]*model.Comment, error) {
	var res []*model.Comment
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND deleted = ?", postID, false).
		Scopes(pagination.Scope("id", cursor, limit)).
		Find(&res).Error
	return res, err
}

func (r *commentRepository) SoftDelete(ctx context.Context, commentID int64) error {
	return r.db.WithContext(ctx).Model(&model.Comment{}).
		Where("id = ?", commentID).
		Update("deleted", true).Error
}
