package repository

import (
	"context"

	domain "techrank/internal/domain/performance"
	"techrank/internal/errs"
	"techrank/internal/infrastructure/persistence/gormstore/model"
)

func (r *PerformanceRepository) AppendPromotion(ctx context.Context, record domain.PromotionRecord) (domain.PromotionRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return domain.PromotionRecord{}, err
	}

	row := model.PromotionRecord{
		ID:          record.ID,
		CompanyID:   record.CompanyID,
		UserID:      record.UserID,
		FromLevelID: record.FromLevelID,
		ToLevelID:   record.ToLevelID,
		PromotedBy:  record.PromotedBy,
		Notes:       record.Notes,
		BonusPoints: record.BonusPoints,
		CreatedAt:   record.CreatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return domain.PromotionRecord{}, errs.Wrap(err, "insert promotion record")
	}
	return mapPromotion(row), nil
}

func (r *PerformanceRepository) ListPromotions(ctx context.Context, companyID string, userID string) ([]domain.PromotionRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.PromotionRecord
	if err := db.Where("company_id = ? AND user_id = ?", companyID, userID).
		Order("created_at desc").
		Order("id desc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query promotion records")
	}

	items := make([]domain.PromotionRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapPromotion(row))
	}
	return items, nil
}
