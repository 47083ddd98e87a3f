package model

import "time"

// PostReport 举报记录，(post, reporter) 唯一，重复举报报错。
type PostReport struct {
	ID               int64 `gorm:"primaryKey;autoIncrement"`
	PostID           int64 `gorm:"not null;index:idx_report_pair,unique"`
	ReportedByUserID int64 `gorm:"not null;index:idx_report_pair,unique"`
	Details          string `gorm:"type:text"`
	CreatedAt        time.Time
}

func (PostReport) TableName() string { return "post_reports" }
