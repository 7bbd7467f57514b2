package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	domain "techrank/internal/domain/performance"
	"techrank/internal/errs"
	"techrank/internal/infrastructure/persistence/gormstore/model"
	"techrank/internal/ports"
)

func (r *PerformanceRepository) CreateNotification(ctx context.Context, notification domain.Notification) (domain.Notification, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return domain.Notification{}, err
	}

	row := model.Notification{
		ID:        notification.ID,
		CompanyID: notification.CompanyID,
		UserID:    notification.UserID,
		Type:      string(notification.Type),
		Title:     notification.Title,
		Message:   notification.Message,
		Data:      notification.Data,
		IsRead:    notification.IsRead,
		ReadAt:    notification.ReadAt,
		CreatedAt: notification.CreatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return domain.Notification{}, errs.Wrap(err, "insert notification")
	}
	return mapNotification(row), nil
}

func (r *PerformanceRepository) ListNotifications(ctx context.Context, filter ports.NotificationFilter) ([]domain.Notification, int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, 0, err
	}

	scope := func() *gorm.DB {
		q := db.Model(&model.Notification{}).Where("company_id = ? AND user_id = ?", filter.CompanyID, filter.UserID)
		if filter.UnreadOnly {
			q = q.Where("is_read = ?", false)
		}
		return q
	}

	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, errs.Wrap(err, "count notifications")
	}

	offset, limit := pageBounds(filter.Offset, filter.Limit)
	var rows []model.Notification
	if err := scope().
		Order("created_at desc").
		Order("id desc").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, 0, errs.Wrap(err, "query notifications")
	}

	items := make([]domain.Notification, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapNotification(row))
	}
	return items, total, nil
}

func (r *PerformanceRepository) CountUnread(ctx context.Context, companyID string, userID string) (int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&model.Notification{}).
		Where("company_id = ? AND user_id = ? AND is_read = ?", companyID, userID, false).
		Count(&count).Error; err != nil {
		return 0, errs.Wrap(err, "count unread notifications")
	}
	return count, nil
}

// MarkRead is idempotent for an already read notification.
func (r *PerformanceRepository) MarkRead(ctx context.Context, companyID string, userID string, notificationID string, at time.Time) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	var count int64
	if err := db.Model(&model.Notification{}).
		Where("id = ? AND company_id = ? AND user_id = ?", notificationID, companyID, userID).
		Count(&count).Error; err != nil {
		return errs.Wrap(err, "query notification")
	}
	if count == 0 {
		return errs.NotFoundf("notification %s for user %s", notificationID, userID)
	}

	if err := db.Model(&model.Notification{}).
		Where("id = ? AND is_read = ?", notificationID, false).
		Updates(map[string]any{"is_read": true, "read_at": at}).Error; err != nil {
		return errs.Wrap(err, "mark notification read")
	}
	return nil
}

func (r *PerformanceRepository) MarkAllRead(ctx context.Context, companyID string, userID string, at time.Time) (int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	result := db.Model(&model.Notification{}).
		Where("company_id = ? AND user_id = ? AND is_read = ?", companyID, userID, false).
		Updates(map[string]any{"is_read": true, "read_at": at})
	if result.Error != nil {
		return 0, errs.Wrap(result.Error, "mark notifications read")
	}
	return result.RowsAffected, nil
}

func (r *PerformanceRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	result := db.Where("is_read = ? AND created_at < ?", true, cutoff).Delete(&model.Notification{})
	if result.Error != nil {
		return 0, errs.Wrap(result.Error, "delete read notifications")
	}
	return result.RowsAffected, nil
}
