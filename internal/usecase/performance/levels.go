package performance

import (
	"context"
	"log/slog"
	"strings"

	"techrank/internal/bootstrap/logging"
	domain "techrank/internal/domain/performance"
	"techrank/internal/errs"
)

type LevelInput struct {
	Name             string  `json:"name" validate:"required,max=64"`
	Code             string  `json:"code" validate:"required,max=32"`
	MinPoints        int64   `json:"minPoints" validate:"gte=0"`
	MaxPoints        *int64  `json:"maxPoints" validate:"omitempty,gte=0"`
	PointsMultiplier float64 `json:"pointsMultiplier" validate:"gte=1"`
	IncentivePercent float64 `json:"incentivePercent" validate:"gte=0"`
	SortOrder        int     `json:"sortOrder"`
}

type CreateLevelInput struct {
	CompanyID string `json:"companyId" validate:"required,max=64"`
	LevelInput
}

// UpdateLevelInput changes only the non-nil fields. ClearMaxPoints makes the tier unbounded.
type UpdateLevelInput struct {
	CompanyID        string   `json:"companyId" validate:"required"`
	LevelID          string   `json:"levelId" validate:"required"`
	Name             *string  `json:"name" validate:"omitempty,min=1,max=64"`
	Code             *string  `json:"code" validate:"omitempty,min=1,max=32"`
	MinPoints        *int64   `json:"minPoints" validate:"omitempty,gte=0"`
	MaxPoints        *int64   `json:"maxPoints" validate:"omitempty,gte=0"`
	ClearMaxPoints   bool     `json:"clearMaxPoints"`
	PointsMultiplier *float64 `json:"pointsMultiplier" validate:"omitempty,gte=1"`
	IncentivePercent *float64 `json:"incentivePercent" validate:"omitempty,gte=0"`
	SortOrder        *int     `json:"sortOrder"`
}

func (in LevelInput) toLevel(companyID string) domain.Level {
	return domain.Level{
		CompanyID:        companyID,
		Name:             strings.TrimSpace(in.Name),
		Code:             normalizeCode(in.Code),
		MinPoints:        in.MinPoints,
		MaxPoints:        in.MaxPoints,
		PointsMultiplier: in.PointsMultiplier,
		IncentivePercent: in.IncentivePercent,
		SortOrder:        in.SortOrder,
	}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *Service) ListLevels(ctx context.Context, companyID string) ([]domain.Level, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	companyID, err := requireText("companyId", companyID)
	if err != nil {
		return nil, err
	}
	return s.ladder(ctx, companyID)
}

// CreateLevel adds one tier. The full ladder including the new tier must stay contiguous.
func (s *Service) CreateLevel(ctx context.Context, input CreateLevelInput) (domain.Level, error) {
	if err := s.ready(ctx); err != nil {
		return domain.Level{}, err
	}
	if err := s.validate.Struct(input); err != nil {
		return domain.Level{}, err
	}

	now := s.nowUTC()
	level := input.toLevel(input.CompanyID)
	level.ID = newID()
	level.CreatedAt = now
	level.UpdatedAt = now
	if err := domain.ValidateLevelFields(level); err != nil {
		return domain.Level{}, err
	}

	var created domain.Level
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.ListLevels(txCtx, input.CompanyID)
		if err != nil {
			return err
		}
		if err := domain.ValidateLadder(append(existing, level)); err != nil {
			return err
		}
		created, err = s.repo.CreateLevel(txCtx, level)
		return err
	}); err != nil {
		return domain.Level{}, err
	}

	if err := s.afterLevelWrite(ctx, input.CompanyID, "level created", slog.String("level_id", created.ID), slog.String("code", created.Code)); err != nil {
		return domain.Level{}, err
	}
	return created, nil
}

func (s *Service) UpdateLevel(ctx context.Context, input UpdateLevelInput) (domain.Level, error) {
	if err := s.ready(ctx); err != nil {
		return domain.Level{}, err
	}
	if err := s.validate.Struct(input); err != nil {
		return domain.Level{}, err
	}
	if input.ClearMaxPoints && input.MaxPoints != nil {
		return domain.Level{}, errs.Validationf("maxPoints and clearMaxPoints are mutually exclusive")
	}

	var updated domain.Level
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.ListLevels(txCtx, input.CompanyID)
		if err != nil {
			return err
		}
		current, ok := domain.FindLevel(existing, input.LevelID)
		if !ok {
			return errs.NotFoundf("level %s in company %s", input.LevelID, input.CompanyID)
		}

		next := applyLevelUpdate(current, input)
		next.UpdatedAt = s.nowUTC()
		if err := domain.ValidateLevelFields(next); err != nil {
			return err
		}

		proposed := make([]domain.Level, 0, len(existing))
		for _, l := range existing {
			if l.ID == next.ID {
				proposed = append(proposed, next)
				continue
			}
			proposed = append(proposed, l)
		}
		if err := domain.ValidateLadder(proposed); err != nil {
			return err
		}

		updated, err = s.repo.UpdateLevel(txCtx, next)
		return err
	}); err != nil {
		return domain.Level{}, err
	}

	if err := s.afterLevelWrite(ctx, input.CompanyID, "level updated", slog.String("level_id", updated.ID)); err != nil {
		return domain.Level{}, err
	}
	return updated, nil
}

func applyLevelUpdate(level domain.Level, input UpdateLevelInput) domain.Level {
	if input.Name != nil {
		level.Name = strings.TrimSpace(*input.Name)
	}
	if input.Code != nil {
		level.Code = normalizeCode(*input.Code)
	}
	if input.MinPoints != nil {
		level.MinPoints = *input.MinPoints
	}
	if input.MaxPoints != nil {
		bound := *input.MaxPoints
		level.MaxPoints = &bound
	}
	if input.ClearMaxPoints {
		level.MaxPoints = nil
	}
	if input.PointsMultiplier != nil {
		level.PointsMultiplier = *input.PointsMultiplier
	}
	if input.IncentivePercent != nil {
		level.IncentivePercent = *input.IncentivePercent
	}
	if input.SortOrder != nil {
		level.SortOrder = *input.SortOrder
	}
	return level
}

// DeleteLevel refuses while a profile still sits on the tier or when the
// remaining tiers would no longer be contiguous. Removing the last tier is allowed.
func (s *Service) DeleteLevel(ctx context.Context, companyID string, levelID string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if companyID == "" || levelID == "" {
		return errs.Validationf("companyId and levelId are required")
	}

	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.ListLevels(txCtx, companyID)
		if err != nil {
			return err
		}
		target, ok := domain.FindLevel(existing, levelID)
		if !ok {
			return errs.NotFoundf("level %s in company %s", levelID, companyID)
		}

		inUse, err := s.repo.CountProfilesAtLevel(txCtx, companyID, levelID)
		if err != nil {
			return err
		}
		if inUse > 0 {
			return errs.Conflictf("level %s is the current level of %d technician(s)", target.Code, inUse)
		}

		remaining := make([]domain.Level, 0, len(existing))
		for _, l := range existing {
			if l.ID != levelID {
				remaining = append(remaining, l)
			}
		}
		if err := domain.ValidateLadder(remaining); err != nil {
			return errs.Conflictf("deleting level %s would break the ladder: %v", target.Code, err)
		}

		return s.repo.DeleteLevel(txCtx, companyID, levelID)
	}); err != nil {
		return err
	}

	return s.afterLevelWrite(ctx, companyID, "level deleted", slog.String("level_id", levelID))
}

// InitializeDefaults seeds the standard ladder when the company has no tiers.
// It reports whether anything was created.
func (s *Service) InitializeDefaults(ctx context.Context, companyID string) ([]domain.Level, bool, error) {
	if err := s.ready(ctx); err != nil {
		return nil, false, err
	}
	companyID, err := requireText("companyId", companyID)
	if err != nil {
		return nil, false, err
	}

	var (
		levels  []domain.Level
		created bool
	)
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.ListLevels(txCtx, companyID)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			levels = existing
			return nil
		}

		now := s.nowUTC()
		for _, level := range domain.DefaultLadder(companyID) {
			level.ID = newID()
			level.CreatedAt = now
			level.UpdatedAt = now
			saved, err := s.repo.CreateLevel(txCtx, level)
			if err != nil {
				return err
			}
			levels = append(levels, saved)
		}
		created = true
		return nil
	}); err != nil {
		return nil, false, err
	}

	if !created {
		return levels, false, nil
	}
	if err := s.afterLevelWrite(ctx, companyID, "default levels seeded", slog.Int("count", len(levels))); err != nil {
		return nil, false, err
	}
	return levels, true, nil
}

type SetLadderInput struct {
	CompanyID string       `json:"companyId" validate:"required,max=64"`
	Levels    []LevelInput `json:"levels" validate:"dive"`
}

// SetLadder replaces the company ladder as a whole. Tiers are matched by code:
// surviving codes keep their id, missing codes are deleted unless still in use.
func (s *Service) SetLadder(ctx context.Context, input SetLadderInput) ([]domain.Level, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}

	proposed := make([]domain.Level, 0, len(input.Levels))
	for _, in := range input.Levels {
		proposed = append(proposed, in.toLevel(input.CompanyID))
	}
	if err := domain.ValidateLadder(proposed); err != nil {
		return nil, err
	}

	var saved []domain.Level
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.ListLevels(txCtx, input.CompanyID)
		if err != nil {
			return err
		}

		byCode := make(map[string]domain.Level, len(existing))
		for _, l := range existing {
			byCode[normalizeCode(l.Code)] = l
		}
		keep := make(map[string]struct{}, len(proposed))
		for _, l := range proposed {
			keep[l.Code] = struct{}{}
		}

		for code, l := range byCode {
			if _, ok := keep[code]; ok {
				continue
			}
			inUse, err := s.repo.CountProfilesAtLevel(txCtx, input.CompanyID, l.ID)
			if err != nil {
				return err
			}
			if inUse > 0 {
				return errs.Conflictf("level %s is the current level of %d technician(s)", l.Code, inUse)
			}
			if err := s.repo.DeleteLevel(txCtx, input.CompanyID, l.ID); err != nil {
				return err
			}
		}

		now := s.nowUTC()
		for _, l := range proposed {
			l.UpdatedAt = now
			if prev, ok := byCode[l.Code]; ok {
				l.ID = prev.ID
				l.CreatedAt = prev.CreatedAt
				updated, err := s.repo.UpdateLevel(txCtx, l)
				if err != nil {
					return err
				}
				saved = append(saved, updated)
				continue
			}
			l.ID = newID()
			l.CreatedAt = now
			created, err := s.repo.CreateLevel(txCtx, l)
			if err != nil {
				return err
			}
			saved = append(saved, created)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := s.afterLevelWrite(ctx, input.CompanyID, "ladder replaced", slog.Int("count", len(saved))); err != nil {
		return nil, err
	}
	return domain.SortLevels(saved), nil
}

// ResolveLevelForPoints reports the tier a point total falls into. It never
// changes a technician's current level.
func (s *Service) ResolveLevelForPoints(ctx context.Context, companyID string, points int64) (domain.Level, error) {
	if err := s.ready(ctx); err != nil {
		return domain.Level{}, err
	}
	levels, err := s.ladder(ctx, companyID)
	if err != nil {
		return domain.Level{}, err
	}
	level, ok := domain.ResolveLevelForPoints(levels, points)
	if !ok {
		return domain.Level{}, errs.NotFoundf("company %s has no levels", companyID)
	}
	return level, nil
}

func (s *Service) afterLevelWrite(ctx context.Context, companyID string, msg string, attrs ...slog.Attr) error {
	logCtx := s.logCtx(ctx, companyID, "")
	if err := s.invalidateLadder(ctx, companyID); err != nil {
		logging.Error(logCtx, "level cache invalidation failed", slog.Any("err", errs.Loggable(err)))
		return errs.Wrap(err, "invalidate level cache")
	}
	logging.Info(logCtx, msg, attrs...)
	return nil
}
