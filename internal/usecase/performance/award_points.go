package performance

import (
	"context"
	"log/slog"
	"strings"

	"techrank/internal/bootstrap/logging"
	domain "techrank/internal/domain/performance"
	"techrank/internal/errs"
)

type AwardInput struct {
	UserID      string           `json:"userId" validate:"required"`
	CompanyID   string           `json:"companyId" validate:"required"`
	Type        domain.EntryType `json:"type" validate:"required"`
	BasePoints  float64          `json:"basePoints"`
	ServiceID   string           `json:"serviceId"`
	Description string           `json:"description" validate:"max=500"`
	Actor       string           `json:"actor"`
}

// Award scales basePoints by the technician's current level multiplier and
// writes the ledger entry together with the total increment.
func (s *Service) Award(ctx context.Context, input AwardInput) (domain.LedgerEntry, error) {
	if err := s.ready(ctx); err != nil {
		return domain.LedgerEntry{}, err
	}
	if err := s.validate.Struct(input); err != nil {
		return domain.LedgerEntry{}, err
	}
	if !input.Type.Awardable() {
		return domain.LedgerEntry{}, errs.Validationf("entry type %q cannot be awarded", input.Type)
	}
	base, err := domain.NormalizeBasePoints(input.Type, input.BasePoints)
	if err != nil {
		return domain.LedgerEntry{}, err
	}

	multiplier, err := s.currentMultiplier(ctx, input.CompanyID, input.UserID)
	if err != nil {
		return domain.LedgerEntry{}, err
	}

	entry := domain.LedgerEntry{
		ID:              newID(),
		UserID:          input.UserID,
		CompanyID:       input.CompanyID,
		Type:            input.Type,
		Points:          domain.ApplyMultiplier(base, multiplier),
		BonusMultiplier: multiplier,
		Description:     describeEntry(input.Description, input.Type),
		ServiceID:       optionalText(input.ServiceID),
		Actor:           actorOrDefault(input.Actor, "system"),
		CreatedAt:       s.nowUTC(),
	}

	var saved domain.LedgerEntry
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		saved, err = s.appendEntryTx(txCtx, entry)
		return err
	}); err != nil {
		return domain.LedgerEntry{}, err
	}

	s.metrics.PointsAwarded(string(saved.Type))
	logging.Info(s.logCtx(ctx, input.CompanyID, input.UserID), "points awarded",
		slog.String("type", string(saved.Type)),
		slog.Int64("base_points", base),
		slog.Float64("multiplier", multiplier),
		slog.Int64("points", saved.Points),
	)
	return saved, nil
}

// appendEntryTx increments the running total first so a missing profile
// fails before any ledger row is written.
func (s *Service) appendEntryTx(txCtx context.Context, entry domain.LedgerEntry) (domain.LedgerEntry, error) {
	if err := s.repo.AddPoints(txCtx, entry.CompanyID, entry.UserID, entry.Points, entry.CreatedAt); err != nil {
		return domain.LedgerEntry{}, err
	}
	return s.repo.AppendEntry(txCtx, entry)
}

// currentMultiplier reads the profile and the cached ladder outside any
// transaction. A profile without a level earns at 1.0.
func (s *Service) currentMultiplier(ctx context.Context, companyID string, userID string) (float64, error) {
	profile, err := s.repo.GetProfile(ctx, companyID, userID)
	if err != nil {
		return 0, err
	}
	if profile.CurrentLevelID == nil {
		return 1, nil
	}

	levels, err := s.ladder(ctx, companyID)
	if err != nil {
		return 0, err
	}
	level, ok := domain.FindLevel(levels, *profile.CurrentLevelID)
	if !ok {
		return 1, nil
	}
	return level.PointsMultiplier, nil
}

func describeEntry(description string, entryType domain.EntryType) string {
	if trimmed := strings.TrimSpace(description); trimmed != "" {
		return trimmed
	}
	return strings.ToLower(strings.ReplaceAll(string(entryType), "_", " "))
}

func actorOrDefault(actor string, fallback string) string {
	if trimmed := strings.TrimSpace(actor); trimmed != "" {
		return trimmed
	}
	return fallback
}
