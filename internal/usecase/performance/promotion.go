package performance

import (
	"context"
	"fmt"
	"log/slog"

	"techrank/internal/bootstrap/logging"
	domain "techrank/internal/domain/performance"
	"techrank/internal/errs"
	"techrank/internal/ports"
)

// PromotionCandidate is a technician whose points resolve above the stored level.
type PromotionCandidate struct {
	Profile       domain.TechnicianProfile `json:"profile"`
	CurrentLevel  *domain.Level            `json:"currentLevel,omitempty"`
	EligibleLevel domain.Level             `json:"eligibleLevel"`
}

// GetPromotionCandidates is read-only: it never moves a current level.
// Profiles without a (known) level are candidates for whatever tier they resolve to.
func (s *Service) GetPromotionCandidates(ctx context.Context, companyID string) ([]PromotionCandidate, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	companyID, err := requireText("companyId", companyID)
	if err != nil {
		return nil, err
	}

	levels, err := s.ladder(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if len(levels) == 0 {
		return []PromotionCandidate{}, nil
	}

	var profiles []domain.TechnicianProfile
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		profiles, err = s.repo.ListProfiles(txCtx, ports.ProfileFilter{CompanyID: companyID})
		return err
	}); err != nil {
		return nil, err
	}

	candidates := make([]PromotionCandidate, 0)
	for _, profile := range profiles {
		eligible, ok := domain.ResolveLevelForPoints(levels, profile.TotalPoints)
		if !ok {
			continue
		}

		var current *domain.Level
		if profile.CurrentLevelID != nil {
			if level, found := domain.FindLevel(levels, *profile.CurrentLevelID); found {
				current = &level
			}
		}
		if current != nil && eligible.SortOrder <= current.SortOrder {
			continue
		}

		candidates = append(candidates, PromotionCandidate{
			Profile:       profile,
			CurrentLevel:  current,
			EligibleLevel: eligible,
		})
	}
	return candidates, nil
}

type PromoteInput struct {
	UserID      string `json:"userId" validate:"required"`
	CompanyID   string `json:"companyId" validate:"required"`
	ToLevelID   string `json:"toLevelId" validate:"required"`
	PromotedBy  string `json:"promotedBy" validate:"required"`
	Notes       string `json:"notes" validate:"max=1000"`
	BonusPoints int64  `json:"bonusPoints" validate:"gte=0"`
}

// Promote moves a technician to a strictly higher tier. Points are not
// checked against the target; the administrator may override.
func (s *Service) Promote(ctx context.Context, input PromoteInput) (domain.PromotionRecord, error) {
	if err := s.ready(ctx); err != nil {
		return domain.PromotionRecord{}, err
	}
	if err := s.validate.Struct(input); err != nil {
		return domain.PromotionRecord{}, err
	}

	logCtx := s.logCtx(ctx, input.CompanyID, input.UserID)
	now := s.nowUTC()

	var (
		record domain.PromotionRecord
		target domain.Level
	)
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		profile, err := s.repo.GetProfile(txCtx, input.CompanyID, input.UserID)
		if err != nil {
			return err
		}
		target, err = s.repo.GetLevel(txCtx, input.CompanyID, input.ToLevelID)
		if err != nil {
			return err
		}

		if profile.CurrentLevelID != nil {
			current, err := s.repo.GetLevel(txCtx, input.CompanyID, *profile.CurrentLevelID)
			switch {
			case err == nil:
				if target.SortOrder <= current.SortOrder {
					return errs.Conflictf("level sort order must exceed current level (%s has %d, %s has %d)",
						target.Code, target.SortOrder, current.Code, current.SortOrder)
				}
			case errs.IsNotFound(err):
				logging.Warn(logCtx, "current level no longer exists", slog.String("level_id", *profile.CurrentLevelID))
			default:
				return err
			}
		}

		if err := s.repo.SetCurrentLevel(txCtx, input.CompanyID, input.UserID, profile.CurrentLevelID, target.ID, now); err != nil {
			return err
		}

		record, err = s.repo.AppendPromotion(txCtx, domain.PromotionRecord{
			ID:          newID(),
			UserID:      input.UserID,
			CompanyID:   input.CompanyID,
			FromLevelID: profile.CurrentLevelID,
			ToLevelID:   target.ID,
			PromotedBy:  input.PromotedBy,
			Notes:       input.Notes,
			BonusPoints: input.BonusPoints,
			CreatedAt:   now,
		})
		if err != nil {
			return err
		}

		if input.BonusPoints > 0 {
			_, err = s.appendEntryTx(txCtx, domain.LedgerEntry{
				ID:              newID(),
				UserID:          input.UserID,
				CompanyID:       input.CompanyID,
				Type:            domain.EntryPromotionBonus,
				Points:          input.BonusPoints,
				BonusMultiplier: 1,
				Description:     "promotion to " + target.Name,
				Actor:           input.PromotedBy,
				CreatedAt:       now,
			})
		}
		return err
	}); err != nil {
		return domain.PromotionRecord{}, err
	}

	if input.BonusPoints > 0 {
		s.metrics.PointsAwarded(string(domain.EntryPromotionBonus))
	}
	logging.Info(logCtx, "technician promoted",
		slog.String("to_level", target.Code),
		slog.String("promoted_by", input.PromotedBy),
		slog.Int64("bonus_points", input.BonusPoints),
	)

	s.dispatch(ctx, domain.Notification{
		UserID:    input.UserID,
		CompanyID: input.CompanyID,
		Type:      domain.NotificationPromotion,
		Title:     "Promoted to " + target.Name,
		Message:   promotionMessage(target, input.BonusPoints),
		Data: map[string]any{
			"promotionId": record.ID,
			"levelId":     target.ID,
			"levelCode":   target.Code,
			"bonusPoints": input.BonusPoints,
		},
	})
	return record, nil
}

func promotionMessage(level domain.Level, bonus int64) string {
	msg := fmt.Sprintf("You are now %s: points multiplier x%s, incentive %s%%.",
		level.Name, formatDecimal(level.PointsMultiplier), formatDecimal(level.IncentivePercent))
	if bonus > 0 {
		msg += fmt.Sprintf(" Promotion bonus: %d points.", bonus)
	}
	return msg
}

func (s *Service) GetPromotionHistory(ctx context.Context, companyID string, userID string) ([]domain.PromotionRecord, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if companyID == "" || userID == "" {
		return nil, errs.Validationf("companyId and userId are required")
	}

	var records []domain.PromotionRecord
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetProfile(txCtx, companyID, userID); err != nil {
			return err
		}
		var err error
		records, err = s.repo.ListPromotions(txCtx, companyID, userID)
		return err
	}); err != nil {
		return nil, err
	}
	return records, nil
}
