package model

import "time"

type Branch struct {
	CompanyID string    `gorm:"column:company_id;type:varchar(64);primaryKey"`
	BranchID  string    `gorm:"column:branch_id;type:varchar(64);primaryKey"`
	Name      string    `gorm:"column:name;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (Branch) TableName() string {
	return "branches"
}
