package performance

import (
	"context"
	"log/slog"

	"techrank/internal/bootstrap/logging"
	domain "techrank/internal/domain/performance"
	"techrank/internal/errs"
)

type ManualAdjustInput struct {
	UserID     string `json:"userId" validate:"required"`
	CompanyID  string `json:"companyId" validate:"required"`
	Points     int64  `json:"points"`
	Reason     string `json:"reason" validate:"required,max=500"`
	AdjustedBy string `json:"adjustedBy" validate:"required"`
}

// ManualAdjust records an admin override as given, without the level multiplier.
func (s *Service) ManualAdjust(ctx context.Context, input ManualAdjustInput) (domain.LedgerEntry, error) {
	if err := s.ready(ctx); err != nil {
		return domain.LedgerEntry{}, err
	}
	if _, err := requireText("reason", input.Reason); err != nil {
		return domain.LedgerEntry{}, err
	}
	if err := s.validate.Struct(input); err != nil {
		return domain.LedgerEntry{}, err
	}
	if input.Points == 0 {
		return domain.LedgerEntry{}, errs.Validationf("points must be non-zero")
	}

	entry := domain.LedgerEntry{
		ID:              newID(),
		UserID:          input.UserID,
		CompanyID:       input.CompanyID,
		Type:            domain.EntryManualAdjustment,
		Points:          input.Points,
		BonusMultiplier: 1,
		Description:     describeEntry(input.Reason, domain.EntryManualAdjustment),
		Actor:           input.AdjustedBy,
		CreatedAt:       s.nowUTC(),
	}

	var saved domain.LedgerEntry
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		saved, err = s.appendEntryTx(txCtx, entry)
		return err
	}); err != nil {
		return domain.LedgerEntry{}, err
	}

	s.metrics.PointsAwarded(string(saved.Type))
	logging.Info(s.logCtx(ctx, input.CompanyID, input.UserID), "points manually adjusted",
		slog.Int64("points", saved.Points),
		slog.String("adjusted_by", saved.Actor),
	)
	return saved, nil
}
