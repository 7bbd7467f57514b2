package repository

import (
	"context"
	"time"

	domain "techrank/internal/domain/performance"
	"techrank/internal/errs"
	"techrank/internal/infrastructure/persistence/gormstore/model"
)

func (r *PerformanceRepository) AppendEntry(ctx context.Context, entry domain.LedgerEntry) (domain.LedgerEntry, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return domain.LedgerEntry{}, err
	}

	row := model.LedgerEntry{
		ID:              entry.ID,
		CompanyID:       entry.CompanyID,
		UserID:          entry.UserID,
		Type:            string(entry.Type),
		Points:          entry.Points,
		BonusMultiplier: entry.BonusMultiplier,
		Description:     entry.Description,
		ServiceID:       entry.ServiceID,
		Actor:           entry.Actor,
		CreatedAt:       entry.CreatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		if isUniqueViolation(err) && entry.ServiceID != nil {
			return domain.LedgerEntry{}, errs.Conflictf("%s already awarded for service %s", entry.Type, *entry.ServiceID)
		}
		return domain.LedgerEntry{}, errs.Wrap(err, "insert ledger entry")
	}
	return mapLedgerEntry(row), nil
}

func (r *PerformanceRepository) ListEntries(ctx context.Context, companyID string, userID string, offset int, limit int) ([]domain.LedgerEntry, int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, 0, err
	}

	scope := db.Model(&model.LedgerEntry{}).Where("company_id = ? AND user_id = ?", companyID, userID)

	var total int64
	if err := scope.Count(&total).Error; err != nil {
		return nil, 0, errs.Wrap(err, "count ledger entries")
	}

	offset, limit = pageBounds(offset, limit)
	var rows []model.LedgerEntry
	if err := db.Where("company_id = ? AND user_id = ?", companyID, userID).
		Order("created_at desc").
		Order("id desc").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, 0, errs.Wrap(err, "query ledger entries")
	}

	items := make([]domain.LedgerEntry, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapLedgerEntry(row))
	}
	return items, total, nil
}

func (r *PerformanceRepository) SumPointsSince(ctx context.Context, companyID string, userID string, since time.Time) (int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var total int64
	if err := db.Model(&model.LedgerEntry{}).
		Select("COALESCE(SUM(points), 0)").
		Where("company_id = ? AND user_id = ? AND created_at >= ?", companyID, userID, since).
		Scan(&total).Error; err != nil {
		return 0, errs.Wrap(err, "sum ledger points")
	}
	return total, nil
}

func (r *PerformanceRepository) SumPointsByTypeSince(ctx context.Context, companyID string, userID string, since time.Time) (map[domain.EntryType]int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		Type  string
		Total int64
	}
	if err := db.Model(&model.LedgerEntry{}).
		Select("type, COALESCE(SUM(points), 0) AS total").
		Where("company_id = ? AND user_id = ? AND created_at >= ?", companyID, userID, since).
		Group("type").
		Scan(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "sum ledger points by type")
	}

	out := make(map[domain.EntryType]int64, len(rows))
	for _, row := range rows {
		out[domain.EntryType(row.Type)] = row.Total
	}
	return out, nil
}
