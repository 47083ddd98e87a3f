package model

import (
	"time"
)

// Follow 关注关系（A 关注 B）
type Follow struct {
	ID         int64 `gorm:"primaryKey;autoIncrement"`
	FromUserID int64 `gorm:"index:idx_follow_from;index:idx_follow_pair,unique;not null"`
	ToUserID   int64 `gorm:"not null;index:idx_follow_to;index:idx_follow_pair,unique"`
	// 复合唯一键，避免重复关注
	// idx_follow_pair = (from_user_id, to_user_id)
	CreatedAt time.Time
}

func (Follow) TableName() string { return "follows" }
