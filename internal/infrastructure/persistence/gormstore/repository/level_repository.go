package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domain "techrank/internal/domain/performance"
	"techrank/internal/errs"
	"techrank/internal/infrastructure/persistence/gormstore/model"
)

func (r *PerformanceRepository) ListLevels(ctx context.Context, companyID string) ([]domain.Level, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Level
	if err := db.Where("company_id = ?", companyID).
		Order("sort_order asc").
		Order("min_points asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query levels")
	}

	items := make([]domain.Level, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapLevel(row))
	}
	return items, nil
}

func (r *PerformanceRepository) GetLevel(ctx context.Context, companyID string, levelID string) (domain.Level, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return domain.Level{}, err
	}
	return getLevel(db, companyID, levelID)
}

func (r *PerformanceRepository) CreateLevel(ctx context.Context, level domain.Level) (domain.Level, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return domain.Level{}, err
	}

	row := levelRow(level)
	if err := db.Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.Level{}, errs.Conflictf("level code %s already exists in company", level.Code)
		}
		return domain.Level{}, errs.Wrap(err, "insert level")
	}
	return mapLevel(row), nil
}

func (r *PerformanceRepository) UpdateLevel(ctx context.Context, level domain.Level) (domain.Level, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return domain.Level{}, err
	}

	result := db.Model(&model.Level{}).
		Where("company_id = ? AND id = ?", level.CompanyID, level.ID).
		Updates(map[string]any{
			"code":              level.Code,
			"name":              level.Name,
			"min_points":        level.MinPoints,
			"max_points":        level.MaxPoints,
			"points_multiplier": level.PointsMultiplier,
			"incentive_percent": level.IncentivePercent,
			"sort_order":        level.SortOrder,
			"updated_at":        level.UpdatedAt,
		})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return domain.Level{}, errs.Conflictf("level code %s already exists in company", level.Code)
		}
		return domain.Level{}, errs.Wrap(result.Error, "update level")
	}
	if result.RowsAffected == 0 {
		return domain.Level{}, errs.NotFoundf("level %s in company %s", level.ID, level.CompanyID)
	}
	return getLevel(db, level.CompanyID, level.ID)
}

func (r *PerformanceRepository) DeleteLevel(ctx context.Context, companyID string, levelID string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Where("company_id = ? AND id = ?", companyID, levelID).Delete(&model.Level{})
	if result.Error != nil {
		return errs.Wrap(result.Error, "delete level")
	}
	if result.RowsAffected == 0 {
		return errs.NotFoundf("level %s in company %s", levelID, companyID)
	}
	return nil
}

func getLevel(db *gorm.DB, companyID string, levelID string) (domain.Level, error) {
	var row model.Level
	if err := db.Where("company_id = ? AND id = ?", companyID, levelID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Level{}, errs.NotFoundf("level %s in company %s", levelID, companyID)
		}
		return domain.Level{}, errs.Wrap(err, "query level")
	}
	return mapLevel(row), nil
}
