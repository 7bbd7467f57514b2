package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domain "techrank/internal/domain/performance"
	"techrank/internal/errs"
	"techrank/internal/infrastructure/persistence/gormstore/model"
)

func (r *PerformanceRepository) CreateSkill(ctx context.Context, skill domain.Skill) (domain.Skill, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return domain.Skill{}, err
	}

	row := skillRow(skill)
	if err := db.Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.Skill{}, errs.Conflictf("technician %s already has a skill for category %s", skill.UserID, skill.ServiceCategoryID)
		}
		return domain.Skill{}, errs.Wrap(err, "insert skill")
	}
	return mapSkill(row), nil
}

func (r *PerformanceRepository) GetSkill(ctx context.Context, companyID string, skillID string) (domain.Skill, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return domain.Skill{}, err
	}

	var row model.Skill
	if err := db.Where("company_id = ? AND id = ?", companyID, skillID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Skill{}, errs.NotFoundf("skill %s in company %s", skillID, companyID)
		}
		return domain.Skill{}, errs.Wrap(err, "query skill")
	}
	return mapSkill(row), nil
}

func (r *PerformanceRepository) SaveSkill(ctx context.Context, skill domain.Skill) (domain.Skill, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return domain.Skill{}, err
	}

	result := db.Model(&model.Skill{}).
		Where("company_id = ? AND id = ?", skill.CompanyID, skill.ID).
		Updates(map[string]any{
			"proficiency_level": int(skill.Proficiency),
			"is_verified":       skill.IsVerified,
			"verified_by":       skill.VerifiedBy,
			"verified_at":       skill.VerifiedAt,
			"updated_at":        skill.UpdatedAt,
		})
	if result.Error != nil {
		return domain.Skill{}, errs.Wrap(result.Error, "update skill")
	}
	if result.RowsAffected == 0 {
		return domain.Skill{}, errs.NotFoundf("skill %s in company %s", skill.ID, skill.CompanyID)
	}
	return r.GetSkill(ctx, skill.CompanyID, skill.ID)
}

func (r *PerformanceRepository) DeleteSkill(ctx context.Context, companyID string, skillID string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Where("company_id = ? AND id = ?", companyID, skillID).Delete(&model.Skill{})
	if result.Error != nil {
		return errs.Wrap(result.Error, "delete skill")
	}
	if result.RowsAffected == 0 {
		return errs.NotFoundf("skill %s in company %s", skillID, companyID)
	}
	return nil
}

// ListSkills returns skills of the given technicians, or of the whole company when userIDs is empty.
func (r *PerformanceRepository) ListSkills(ctx context.Context, companyID string, userIDs []string) ([]domain.Skill, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Where("company_id = ?", companyID)
	if len(userIDs) > 0 {
		query = query.Where("user_id IN ?", userIDs)
	}

	var rows []model.Skill
	if err := query.Order("user_id asc").Order("service_category_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query skills")
	}

	items := make([]domain.Skill, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapSkill(row))
	}
	return items, nil
}
