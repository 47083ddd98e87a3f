package model

import "time"

// User 用户主体。follower/following/post 计数不落列，读取时按边表聚合。
type User struct {
	ID                int64  `gorm:"primaryKey;autoIncrement"`
	Username          string `gorm:"type:varchar(255);uniqueIndex;not null"`
	Email             string `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash      string `gorm:"type:varchar(255);not null"`
	FirstName         string `gorm:"type:varchar(255)"`
	LastName          string `gorm:"type:varchar(255)"`
	ProfilePictureURL string
	Deactivated       bool `gorm:"not null;default:false;index"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (User) TableName() string { return "users" }

// UserPreferences 通知开关，与 User 一对一。
// 核心只消费布尔结果，推送渠道本身是外部协作方。
type UserPreferences struct {
	UserID                   int64 `gorm:"primaryKey"`
	FollowNotifications      bool  `gorm:"not null;default:true"`
	PostLikedNotifications   bool  `gorm:"not null;default:true"`
	CommentNotifications     bool  `gorm:"not null;default:true"`
	UpdatedAt                time.Time
}

func (UserPreferences) TableName() string { return "user_preferences" }
