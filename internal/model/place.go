package model

import "time"

// Place 地点。外部地点目录的本地投影，按 (name, lat, lng) 去重。
type Place struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	UrlsafeID string `gorm:"type:varchar(36);uniqueIndex;not null"`
	Name      string `gorm:"type:varchar(255);not null;index:idx_place_descriptor,unique"`
	Latitude  float64 `gorm:"index:idx_place_descriptor,unique"`
	Longitude float64 `gorm:"index:idx_place_descriptor,unique"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Place) TableName() string { return "places" }
