package model

import "time"

type TechnicianProfile struct {
	CompanyID              string    `gorm:"column:company_id;type:varchar(64);primaryKey"`
	UserID                 string    `gorm:"column:user_id;type:varchar(64);primaryKey"`
	BranchID               string    `gorm:"column:branch_id;type:varchar(64);not null;index:idx_profiles_branch"`
	IsAvailable            bool      `gorm:"column:is_available;not null;default:true"`
	MaxConcurrentJobs      int       `gorm:"column:max_concurrent_jobs;not null"`
	TotalPoints            int64     `gorm:"column:total_points;not null;default:0"`
	TotalServicesCompleted int       `gorm:"column:total_services_completed;not null;default:0"`
	AverageRating          *float64  `gorm:"column:average_rating"`
	RatedServices          int       `gorm:"column:rated_services;not null;default:0"`
	AvgCompletionHours     *float64  `gorm:"column:avg_completion_hours"`
	TimedServices          int       `gorm:"column:timed_services;not null;default:0"`
	CurrentLevelID         *string   `gorm:"column:current_level_id;type:varchar(64);index:idx_profiles_level"`
	CreatedAt              time.Time `gorm:"column:created_at;not null"`
	UpdatedAt              time.Time `gorm:"column:updated_at;not null"`
}

func (TechnicianProfile) TableName() string {
	return "technician_profiles"
}
