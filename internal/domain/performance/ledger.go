package performance

import (
	"math"

	"github.com/shopspring/decimal"

	"techrank/internal/errs"
)

type EntryType string

const (
	EntryServiceCompleted EntryType = "SERVICE_COMPLETED"
	EntryServiceDelivered EntryType = "SERVICE_DELIVERED"
	EntryRatingBonus      EntryType = "RATING_BONUS"
	EntrySpeedBonus       EntryType = "SPEED_BONUS"
	EntryManualAdjustment EntryType = "MANUAL_ADJUSTMENT"
	EntryPenaltyLate      EntryType = "PENALTY_LATE"
	EntryPenaltyRework    EntryType = "PENALTY_REWORK"
	EntryPromotionBonus   EntryType = "PROMOTION_BONUS"
)

var entryTypes = map[EntryType]struct{}{
	EntryServiceCompleted: {},
	EntryServiceDelivered: {},
	EntryRatingBonus:      {},
	EntrySpeedBonus:       {},
	EntryManualAdjustment: {},
	EntryPenaltyLate:      {},
	EntryPenaltyRework:    {},
	EntryPromotionBonus:   {},
}

func (t EntryType) Valid() bool {
	_, ok := entryTypes[t]
	return ok
}

func (t EntryType) IsPenalty() bool {
	return t == EntryPenaltyLate || t == EntryPenaltyRework
}

// Awardable reports whether the type may be written through the level-multiplied award path.
// Manual adjustments and promotion bonuses have their own unscaled paths.
func (t EntryType) Awardable() bool {
	return t.Valid() && t != EntryManualAdjustment && t != EntryPromotionBonus
}

// maxAbsPoints keeps scaled values far away from int64 overflow.
const maxAbsPoints = 1_000_000_000_000

// NormalizeBasePoints converts caller input into whole points. Penalties must be
// negative and every other award type positive.
func NormalizeBasePoints(entryType EntryType, base float64) (int64, error) {
	if math.IsNaN(base) || math.IsInf(base, 0) {
		return 0, errs.Validationf("base points must be a finite number")
	}
	if base == 0 {
		return 0, errs.Validationf("base points must be non-zero")
	}
	if base != math.Trunc(base) {
		return 0, errs.Validationf("base points must be a whole number, got %v", base)
	}
	if math.Abs(base) > maxAbsPoints {
		return 0, errs.Validationf("base points %v out of range", base)
	}
	if entryType.IsPenalty() && base > 0 {
		return 0, errs.Validationf("%s requires negative base points", entryType)
	}
	if !entryType.IsPenalty() && base < 0 {
		return 0, errs.Validationf("%s requires positive base points", entryType)
	}
	return int64(base), nil
}

// ApplyMultiplier returns round(base * multiplier), rounding half away from zero.
func ApplyMultiplier(base int64, multiplier float64) int64 {
	return decimal.NewFromInt(base).Mul(decimal.NewFromFloat(multiplier)).Round(0).IntPart()
}
