package model

import "time"

type Skill struct {
	ID                string     `gorm:"column:id;type:varchar(64);primaryKey"`
	CompanyID         string     `gorm:"column:company_id;type:varchar(64);not null;uniqueIndex:idx_skills_user_category,priority:1;index:idx_skills_category,priority:1"`
	UserID            string     `gorm:"column:user_id;type:varchar(64);not null;uniqueIndex:idx_skills_user_category,priority:2"`
	ServiceCategoryID string     `gorm:"column:service_category_id;type:varchar(64);not null;uniqueIndex:idx_skills_user_category,priority:3;index:idx_skills_category,priority:2"`
	Proficiency       int        `gorm:"column:proficiency_level;not null"`
	IsVerified        bool       `gorm:"column:is_verified;not null;default:false"`
	VerifiedBy        *string    `gorm:"column:verified_by;type:varchar(128)"`
	VerifiedAt        *time.Time `gorm:"column:verified_at"`
	CreatedAt         time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;not null"`
}

func (Skill) TableName() string {
	return "skills"
}
