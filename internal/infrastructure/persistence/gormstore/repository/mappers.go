package repository

import (
	domain "techrank/internal/domain/performance"
	"techrank/internal/infrastructure/persistence/gormstore/model"
)

func mapBranch(row model.Branch) domain.Branch {
	return domain.Branch{
		CompanyID: row.CompanyID,
		BranchID:  row.BranchID,
		Name:      row.Name,
		CreatedAt: row.CreatedAt.UTC(),
	}
}

func mapProfile(row model.TechnicianProfile) domain.TechnicianProfile {
	return domain.TechnicianProfile{
		UserID:                 row.UserID,
		CompanyID:              row.CompanyID,
		BranchID:               row.BranchID,
		IsAvailable:            row.IsAvailable,
		MaxConcurrentJobs:      row.MaxConcurrentJobs,
		TotalPoints:            row.TotalPoints,
		TotalServicesCompleted: row.TotalServicesCompleted,
		AverageRating:          row.AverageRating,
		RatedServices:          row.RatedServices,
		TimedServices:          row.TimedServices,
		AvgCompletionHours:     row.AvgCompletionHours,
		CurrentLevelID:         row.CurrentLevelID,
		CreatedAt:              row.CreatedAt.UTC(),
		UpdatedAt:              row.UpdatedAt.UTC(),
	}
}

func levelRow(level domain.Level) model.Level {
	return model.Level{
		ID:               level.ID,
		CompanyID:        level.CompanyID,
		Code:             level.Code,
		Name:             level.Name,
		MinPoints:        level.MinPoints,
		MaxPoints:        level.MaxPoints,
		PointsMultiplier: level.PointsMultiplier,
		IncentivePercent: level.IncentivePercent,
		SortOrder:        level.SortOrder,
		CreatedAt:        level.CreatedAt,
		UpdatedAt:        level.UpdatedAt,
	}
}

func mapLevel(row model.Level) domain.Level {
	return domain.Level{
		ID:               row.ID,
		CompanyID:        row.CompanyID,
		Name:             row.Name,
		Code:             row.Code,
		MinPoints:        row.MinPoints,
		MaxPoints:        row.MaxPoints,
		PointsMultiplier: row.PointsMultiplier,
		IncentivePercent: row.IncentivePercent,
		SortOrder:        row.SortOrder,
		CreatedAt:        row.CreatedAt.UTC(),
		UpdatedAt:        row.UpdatedAt.UTC(),
	}
}

func mapLedgerEntry(row model.LedgerEntry) domain.LedgerEntry {
	return domain.LedgerEntry{
		ID:              row.ID,
		UserID:          row.UserID,
		CompanyID:       row.CompanyID,
		Type:            domain.EntryType(row.Type),
		Points:          row.Points,
		BonusMultiplier: row.BonusMultiplier,
		Description:     row.Description,
		ServiceID:       row.ServiceID,
		Actor:           row.Actor,
		CreatedAt:       row.CreatedAt.UTC(),
	}
}

func mapPromotion(row model.PromotionRecord) domain.PromotionRecord {
	return domain.PromotionRecord{
		ID:          row.ID,
		UserID:      row.UserID,
		CompanyID:   row.CompanyID,
		FromLevelID: row.FromLevelID,
		ToLevelID:   row.ToLevelID,
		PromotedBy:  row.PromotedBy,
		Notes:       row.Notes,
		BonusPoints: row.BonusPoints,
		CreatedAt:   row.CreatedAt.UTC(),
	}
}

func skillRow(skill domain.Skill) model.Skill {
	return model.Skill{
		ID:                skill.ID,
		CompanyID:         skill.CompanyID,
		UserID:            skill.UserID,
		ServiceCategoryID: skill.ServiceCategoryID,
		Proficiency:       int(skill.Proficiency),
		IsVerified:        skill.IsVerified,
		VerifiedBy:        skill.VerifiedBy,
		VerifiedAt:        skill.VerifiedAt,
		CreatedAt:         skill.CreatedAt,
		UpdatedAt:         skill.UpdatedAt,
	}
}

func mapSkill(row model.Skill) domain.Skill {
	skill := domain.Skill{
		ID:                row.ID,
		UserID:            row.UserID,
		CompanyID:         row.CompanyID,
		ServiceCategoryID: row.ServiceCategoryID,
		Proficiency:       domain.Proficiency(row.Proficiency),
		IsVerified:        row.IsVerified,
		VerifiedBy:        row.VerifiedBy,
		CreatedAt:         row.CreatedAt.UTC(),
		UpdatedAt:         row.UpdatedAt.UTC(),
	}
	if row.VerifiedAt != nil {
		at := row.VerifiedAt.UTC()
		skill.VerifiedAt = &at
	}
	return skill
}

func mapNotification(row model.Notification) domain.Notification {
	n := domain.Notification{
		ID:        row.ID,
		UserID:    row.UserID,
		CompanyID: row.CompanyID,
		Type:      domain.NotificationType(row.Type),
		Title:     row.Title,
		Message:   row.Message,
		Data:      map[string]any(row.Data),
		IsRead:    row.IsRead,
		CreatedAt: row.CreatedAt.UTC(),
	}
	if row.ReadAt != nil {
		at := row.ReadAt.UTC()
		n.ReadAt = &at
	}
	return n
}
