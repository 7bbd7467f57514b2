package model

import "time"

// LedgerEntry rows are insert-only.
type LedgerEntry struct {
	ID              string    `gorm:"column:id;type:varchar(64);primaryKey"`
	CompanyID       string    `gorm:"column:company_id;type:varchar(64);not null;index:idx_ledger_scope,priority:1;uniqueIndex:idx_ledger_service_award,priority:1"`
	UserID          string    `gorm:"column:user_id;type:varchar(64);not null;index:idx_ledger_scope,priority:2;uniqueIndex:idx_ledger_service_award,priority:2"`
	Type            string    `gorm:"column:type;type:varchar(32);not null;uniqueIndex:idx_ledger_service_award,priority:4"`
	Points          int64     `gorm:"column:points;not null"`
	BonusMultiplier float64   `gorm:"column:bonus_multiplier;not null;default:1"`
	Description     string    `gorm:"column:description;type:text;not null"`
	ServiceID       *string   `gorm:"column:service_id;type:varchar(64);uniqueIndex:idx_ledger_service_award,priority:3"`
	Actor           string    `gorm:"column:actor;type:varchar(128);not null"`
	CreatedAt       time.Time `gorm:"column:created_at;not null;index:idx_ledger_scope,priority:3"`
}

func (LedgerEntry) TableName() string {
	return "points_ledger"
}
