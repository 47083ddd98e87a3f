package model

import "time"

// Block 拉黑关系。存储单向一行，可见性上双向生效：
// 任一方向存在即互相不可见、不可操作。
type Block struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	BlockerID int64 `gorm:"index:idx_block_blocker;index:idx_block_pair,unique;not null"`
	BlockedID int64 `gorm:"not null;index:idx_block_blocked;index:idx_block_pair,unique"`
	CreatedAt time.Time
}

func (Block) TableName() string { return "blocks" }
