package model

import "time"

// Post 内容主体。删除走软删（deleted 标记），点赞计数为维护列，
// 与 post_likes 边的增删在同一事务内原子更新。
type Post struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	UrlsafeID    string `gorm:"type:varchar(36);uniqueIndex;not null"`
	UserID       int64  `gorm:"not null;index:idx_post_user"`
	PlaceID      int64  `gorm:"not null;index:idx_post_place"`
	Content      string `gorm:"type:text;not null"`
	ImageBlobKey string `gorm:"type:varchar(255)"`
	ImageURL     string
	LikeCount    int64 `gorm:"not null;default:0"`
	Deleted      bool  `gorm:"not null;default:false;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Post) TableName() string { return "posts" }
