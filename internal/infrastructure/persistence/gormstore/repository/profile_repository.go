package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	domain "techrank/internal/domain/performance"
	"techrank/internal/errs"
	"techrank/internal/infrastructure/persistence/gormstore/model"
	"techrank/internal/ports"
)

func (r *PerformanceRepository) CreateProfile(ctx context.Context, profile domain.TechnicianProfile) (domain.TechnicianProfile, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return domain.TechnicianProfile{}, err
	}

	row := model.TechnicianProfile{
		CompanyID:         profile.CompanyID,
		UserID:            profile.UserID,
		BranchID:          profile.BranchID,
		IsAvailable:       profile.IsAvailable,
		MaxConcurrentJobs: profile.MaxConcurrentJobs,
		TotalPoints:       profile.TotalPoints,
		CurrentLevelID:    profile.CurrentLevelID,
		CreatedAt:         profile.CreatedAt,
		UpdatedAt:         profile.UpdatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.TechnicianProfile{}, errs.Conflictf("technician %s already has a profile in company %s", profile.UserID, profile.CompanyID)
		}
		return domain.TechnicianProfile{}, errs.Wrap(err, "insert technician profile")
	}
	return mapProfile(row), nil
}

func (r *PerformanceRepository) GetProfile(ctx context.Context, companyID string, userID string) (domain.TechnicianProfile, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return domain.TechnicianProfile{}, err
	}
	return getProfile(db, companyID, userID)
}

func (r *PerformanceRepository) ListProfiles(ctx context.Context, filter ports.ProfileFilter) ([]domain.TechnicianProfile, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.TechnicianProfile{}).Where("company_id = ?", filter.CompanyID)
	if filter.BranchID != "" {
		query = query.Where("branch_id = ?", filter.BranchID)
	}
	if filter.AvailableOnly {
		query = query.Where("is_available = ?", true)
	}
	if filter.CategoryID != "" {
		sub := db.Model(&model.Skill{}).
			Select("user_id").
			Where("company_id = ? AND service_category_id = ?", filter.CompanyID, filter.CategoryID)
		query = query.Where("user_id IN (?)", sub)
	}

	var rows []model.TechnicianProfile
	if err := query.Order("user_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query technician profiles")
	}

	items := make([]domain.TechnicianProfile, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapProfile(row))
	}
	return items, nil
}

func (r *PerformanceRepository) UpdateProfile(ctx context.Context, companyID string, userID string, update ports.ProfileUpdate, at time.Time) (domain.TechnicianProfile, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return domain.TechnicianProfile{}, err
	}

	values := map[string]any{"updated_at": at}
	if update.IsAvailable != nil {
		values["is_available"] = *update.IsAvailable
	}
	if update.MaxConcurrentJobs != nil {
		values["max_concurrent_jobs"] = *update.MaxConcurrentJobs
	}
	if update.BranchID != nil {
		values["branch_id"] = *update.BranchID
	}

	result := db.Model(&model.TechnicianProfile{}).
		Where("company_id = ? AND user_id = ?", companyID, userID).
		Updates(values)
	if result.Error != nil {
		return domain.TechnicianProfile{}, errs.Wrap(result.Error, "update technician profile")
	}
	if result.RowsAffected == 0 {
		return domain.TechnicianProfile{}, errs.NotFoundf("technician %s in company %s", userID, companyID)
	}
	return getProfile(db, companyID, userID)
}

func (r *PerformanceRepository) AddPoints(ctx context.Context, companyID string, userID string, delta int64, at time.Time) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&model.TechnicianProfile{}).
		Where("company_id = ? AND user_id = ?", companyID, userID).
		Updates(map[string]any{
			"total_points": gorm.Expr("total_points + ?", delta),
			"updated_at":   at,
		})
	if result.Error != nil {
		return errs.Wrap(result.Error, "increment total points")
	}
	if result.RowsAffected == 0 {
		return errs.NotFoundf("technician %s in company %s", userID, companyID)
	}
	return nil
}

func (r *PerformanceRepository) RecordServiceOutcome(ctx context.Context, companyID string, userID string, outcome ports.ServiceOutcome) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	values := map[string]any{"updated_at": outcome.At}
	if outcome.Completed {
		values["total_services_completed"] = gorm.Expr("total_services_completed + 1")
		if outcome.CompletionHours != nil {
			values["avg_completion_hours"] = foldAverage("avg_completion_hours", "timed_services", *outcome.CompletionHours)
			values["timed_services"] = gorm.Expr("timed_services + 1")
		}
	}
	if outcome.Rating != nil {
		values["average_rating"] = foldAverage("average_rating", "rated_services", *outcome.Rating)
		values["rated_services"] = gorm.Expr("rated_services + 1")
	}

	result := db.Model(&model.TechnicianProfile{}).
		Where("company_id = ? AND user_id = ?", companyID, userID).
		Updates(values)
	if result.Error != nil {
		return errs.Wrap(result.Error, "update service statistics")
	}
	if result.RowsAffected == 0 {
		return errs.NotFoundf("technician %s in company %s", userID, companyID)
	}
	return nil
}

// foldAverage adds one sample to a running average. Every column reference
// reads the pre-update row, so the statement is safe under concurrent writers.
func foldAverage(avgColumn string, countColumn string, sample float64) any {
	return gorm.Expr(
		"CASE WHEN "+avgColumn+" IS NULL OR "+countColumn+" = 0 THEN CAST(? AS DOUBLE PRECISION) "+
			"ELSE ("+avgColumn+" * "+countColumn+" + CAST(? AS DOUBLE PRECISION)) / ("+countColumn+" + 1) END",
		sample, sample,
	)
}

func (r *PerformanceRepository) SetCurrentLevel(ctx context.Context, companyID string, userID string, from *string, to string, at time.Time) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	query := db.Model(&model.TechnicianProfile{}).Where("company_id = ? AND user_id = ?", companyID, userID)
	if from == nil {
		query = query.Where("current_level_id IS NULL")
	} else {
		query = query.Where("current_level_id = ?", *from)
	}

	result := query.Updates(map[string]any{
		"current_level_id": to,
		"updated_at":       at,
	})
	if result.Error != nil {
		return errs.Wrap(result.Error, "update current level")
	}
	if result.RowsAffected > 0 {
		return nil
	}

	if _, err := getProfile(db, companyID, userID); err != nil {
		return err
	}
	return errs.Conflictf("current level of technician %s changed concurrently", userID)
}

func (r *PerformanceRepository) CountProfilesAtLevel(ctx context.Context, companyID string, levelID string) (int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&model.TechnicianProfile{}).
		Where("company_id = ? AND current_level_id = ?", companyID, levelID).
		Count(&count).Error; err != nil {
		return 0, errs.Wrap(err, "count profiles at level")
	}
	return count, nil
}

func getProfile(db *gorm.DB, companyID string, userID string) (domain.TechnicianProfile, error) {
	var row model.TechnicianProfile
	if err := db.Where("company_id = ? AND user_id = ?", companyID, userID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.TechnicianProfile{}, errs.NotFoundf("technician %s in company %s", userID, companyID)
		}
		return domain.TechnicianProfile{}, errs.Wrap(err, "query technician profile")
	}
	return mapProfile(row), nil
}
