package model

import "time"

type PromotionRecord struct {
	ID          string    `gorm:"column:id;type:varchar(64);primaryKey"`
	CompanyID   string    `gorm:"column:company_id;type:varchar(64);not null;index:idx_promotions_scope,priority:1"`
	UserID      string    `gorm:"column:user_id;type:varchar(64);not null;index:idx_promotions_scope,priority:2"`
	FromLevelID *string   `gorm:"column:from_level_id;type:varchar(64)"`
	ToLevelID   string    `gorm:"column:to_level_id;type:varchar(64);not null"`
	PromotedBy  string    `gorm:"column:promoted_by;type:varchar(128);not null"`
	Notes       string    `gorm:"column:notes;type:text;not null"`
	BonusPoints int64     `gorm:"column:bonus_points;not null;default:0"`
	CreatedAt   time.Time `gorm:"column:created_at;not null"`
}

func (PromotionRecord) TableName() string {
	return "promotion_records"
}
