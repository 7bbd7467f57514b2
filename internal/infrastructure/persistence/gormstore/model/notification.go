package model

import (
	"time"

	"gorm.io/datatypes"
)

type Notification struct {
	ID        string            `gorm:"column:id;type:varchar(64);primaryKey"`
	CompanyID string            `gorm:"column:company_id;type:varchar(64);not null;index:idx_notifications_inbox,priority:1"`
	UserID    string            `gorm:"column:user_id;type:varchar(64);not null;index:idx_notifications_inbox,priority:2"`
	Type      string            `gorm:"column:type;type:varchar(32);not null"`
	Title     string            `gorm:"column:title;type:text;not null"`
	Message   string            `gorm:"column:message;type:text;not null"`
	Data      datatypes.JSONMap `gorm:"column:data"`
	IsRead    bool              `gorm:"column:is_read;not null;default:false;index:idx_notifications_inbox,priority:3"`
	ReadAt    *time.Time        `gorm:"column:read_at"`
	CreatedAt time.Time         `gorm:"column:created_at;not null;index:idx_notifications_created"`
}

func (Notification) TableName() string {
	return "notifications"
}
