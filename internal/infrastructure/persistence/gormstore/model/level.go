package model

import "time"

type Level struct {
	ID               string    `gorm:"column:id;type:varchar(64);primaryKey"`
	CompanyID        string    `gorm:"column:company_id;type:varchar(64);not null;uniqueIndex:idx_levels_company_code,priority:1"`
	Code             string    `gorm:"column:code;type:varchar(64);not null;uniqueIndex:idx_levels_company_code,priority:2"`
	Name             string    `gorm:"column:name;type:text;not null"`
	MinPoints        int64     `gorm:"column:min_points;not null"`
	MaxPoints        *int64    `gorm:"column:max_points"`
	PointsMultiplier float64   `gorm:"column:points_multiplier;not null"`
	IncentivePercent float64   `gorm:"column:incentive_percent;not null;default:0"`
	SortOrder        int       `gorm:"column:sort_order;not null"`
	CreatedAt        time.Time `gorm:"column:created_at;not null"`
	UpdatedAt        time.Time `gorm:"column:updated_at;not null"`
}

func (Level) TableName() string {
	return "levels"
}
