package jobregistry

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"techrank/internal/errs"
	"techrank/internal/infrastructure/persistence/schema"
	"techrank/internal/ports"
)

// DatabaseRegistry counts open jobs straight from the registry's service_jobs table.
type DatabaseRegistry struct {
	db *gorm.DB
}

var _ ports.JobRegistry = (*DatabaseRegistry)(nil)

func NewDatabaseRegistry(db *gorm.DB) *DatabaseRegistry {
	return &DatabaseRegistry{db: db}
}

func (r *DatabaseRegistry) CountOpenJobs(ctx context.Context, companyID string, branchID string, technicianIDs []string) (map[string]int, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	counts := make(map[string]int, len(technicianIDs))
	if len(technicianIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		TechnicianID string
		OpenJobs     int
	}
	if err := r.db.WithContext(ctx).
		Model(&schema.ServiceJob{}).
		Select("technician_id, COUNT(*) AS open_jobs").
		Where("company_id = ? AND branch_id = ?", companyID, branchID).
		Where("technician_id IN ?", technicianIDs).
		Where("status NOT IN ?", schema.TerminalJobStatuses).
		Group("technician_id").
		Scan(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "count open jobs")
	}

	for _, row := range rows {
		counts[row.TechnicianID] = row.OpenJobs
	}
	return counts, nil
}

// RecordJob inserts or updates one job row.
func (r *DatabaseRegistry) RecordJob(ctx context.Context, job schema.ServiceJob) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if strings.TrimSpace(job.ID) == "" {
		return errs.Validationf("job id is required")
	}
	job.Status = strings.ToUpper(strings.TrimSpace(job.Status))
	if job.Status == "" {
		return errs.Validationf("job status is required")
	}

	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"technician_id", "status", "updated_at"}),
	}).Create(&job).Error; err != nil {
		return errs.Wrap(err, "upsert service job")
	}
	return nil
}
