package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "techrank/internal/domain/performance"
	"techrank/internal/errs"
	"techrank/internal/infrastructure/persistence/gormstore/model"
)

func (r *PerformanceRepository) UpsertBranch(ctx context.Context, branch domain.Branch) (domain.Branch, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return domain.Branch{}, err
	}

	row := model.Branch{
		CompanyID: branch.CompanyID,
		BranchID:  branch.BranchID,
		Name:      branch.Name,
		CreatedAt: branch.CreatedAt,
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "company_id"}, {Name: "branch_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name"}),
	}).Create(&row).Error; err != nil {
		return domain.Branch{}, errs.Wrap(err, "upsert branch")
	}

	return r.GetBranch(ctx, branch.CompanyID, branch.BranchID)
}

func (r *PerformanceRepository) GetBranch(ctx context.Context, companyID string, branchID string) (domain.Branch, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return domain.Branch{}, err
	}

	var row model.Branch
	if err := db.Where("company_id = ? AND branch_id = ?", companyID, branchID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Branch{}, errs.NotFoundf("branch %s/%s", companyID, branchID)
		}
		return domain.Branch{}, errs.Wrap(err, "query branch")
	}
	return mapBranch(row), nil
}

func (r *PerformanceRepository) ListBranches(ctx context.Context, companyID string) ([]domain.Branch, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Branch
	if err := db.Where("company_id = ?", companyID).Order("branch_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query branches")
	}

	items := make([]domain.Branch, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapBranch(row))
	}
	return items, nil
}
