package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/d60-Lab/placefeed/internal/apperr"
	"github.com/d60-Lab/placefeed/internal/model"
)

// UserRepository 用户目录。读操作一律过滤已注销用户。
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// GetByIDs 批量取在用用户，feed 装配的单次往返查询。
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*model.User, error)
	Update(ctx context.Context, user *model.User) error
	// Deactivate 停用账号。行保留，对外读路径视同不存在。
	Deactivate(ctx context.Context, userID int64) error
	GetPreferences(ctx context.Context, userID int64) (*model.UserPreferences, error)
	UpdatePreferences(ctx context.Context, prefs *model.UserPreferences) error
}

type userRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepository{db: db} }

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		// 偏好默认全开，与用户一起建
		prefs := &model.UserPreferences{
			UserID:                 user.ID,
			FollowNotifications:    true,
			PostLikedNotifications: true,
			CommentNotifications:   true,
		}
		return tx.Create(prefs).Error
	})
}

func (r *userRepository) getBy(ctx context.Context, query string, args ...interface{}) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where(query, args...).Where("deactivated = ?", false).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.getBy(ctx, "id = ?", id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getBy(ctx, "username = ?", username)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getBy(ctx, "email = ?", email)
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*model.User, error) {
	res := make(map[int64]*model.User, len(ids))
	if len(ids) == 0 {
		return res, nil
	}
	var users []*model.User
	if err := r.db.WithContext(ctx).
		Where("id IN ? AND deactivated = ?", ids, false).
		Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		res[u.ID] = u
	}
	return res, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) Deactivate(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("deactivated", true).Error
}

func (r *userRepository) GetPreferences(ctx context.Context, userID int64) (*model.UserPreferences, error) {
	var prefs model.UserPreferences
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&prefs).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// 老账号没有偏好行时按默认全开处理
		return &model.UserPreferences{
			UserID:                 userID,
			FollowNotifications:    true,
			PostLikedNotifications: true,
			CommentNotifications:   true,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return &prefs, nil
}

func (r *userRepository) UpdatePreferences(ctx context.Context, prefs *model.UserPreferences) error {
	return r.db.WithContext(ctx).Save(prefs).Error
}
