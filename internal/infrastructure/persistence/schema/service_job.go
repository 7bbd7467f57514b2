package schema

import "time"

// Job statuses that no longer count against a technician's capacity.
const (
	JobStatusCompleted      = "COMPLETED"
	JobStatusDelivered      = "DELIVERED"
	JobStatusCancelled      = "CANCELLED"
	JobStatusNotServiceable = "NOT_SERVICEABLE"
)

var TerminalJobStatuses = []string{
	JobStatusCompleted,
	JobStatusDelivered,
	JobStatusCancelled,
	JobStatusNotServiceable,
}

// ServiceJob is the job registry's table. The engine only reads it, except for
// the local registry commands that stand in for the registry during development.
type ServiceJob struct {
	ID           string    `gorm:"column:id;type:varchar(64);primaryKey"`
	CompanyID    string    `gorm:"column:company_id;type:varchar(64);not null;index:idx_service_jobs_assignee,priority:1"`
	BranchID     string    `gorm:"column:branch_id;type:varchar(64);not null;index:idx_service_jobs_assignee,priority:2"`
	TechnicianID *string   `gorm:"column:technician_id;type:varchar(64);index:idx_service_jobs_assignee,priority:3"`
	Status       string    `gorm:"column:status;type:varchar(32);not null"`
	CreatedAt    time.Time `gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;not null;autoUpdateTime"`
}

func (ServiceJob) TableName() string {
	return "service_jobs"
}
