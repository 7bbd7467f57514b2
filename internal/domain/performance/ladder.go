package performance

import (
	"sort"
	"strings"

	"techrank/internal/errs"
)

// SortLevels returns a copy of levels ordered by SortOrder, then MinPoints.
func SortLevels(levels []Level) []Level {
	sorted := make([]Level, len(levels))
	copy(sorted, levels)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].SortOrder != sorted[j].SortOrder {
			return sorted[i].SortOrder < sorted[j].SortOrder
		}
		return sorted[i].MinPoints < sorted[j].MinPoints
	})
	return sorted
}

// ValidateLevelFields checks one tier in isolation.
func ValidateLevelFields(level Level) error {
	if strings.TrimSpace(level.Code) == "" {
		return errs.Validationf("level code is required")
	}
	if strings.TrimSpace(level.Name) == "" {
		return errs.Validationf("level name is required")
	}
	if level.MinPoints < 0 {
		return errs.Validationf("level %s min points must be >= 0", level.Code)
	}
	if level.MaxPoints != nil && *level.MaxPoints < level.MinPoints {
		return errs.Validationf("level %s max points must be >= min points", level.Code)
	}
	// Ledger entries record the multiplier as a bonus, so a tier never scales points down.
	if level.PointsMultiplier < 1 {
		return errs.Validationf("level %s points multiplier must be >= 1", level.Code)
	}
	if level.IncentivePercent < 0 {
		return errs.Validationf("level %s incentive percent must be >= 0", level.Code)
	}
	return nil
}

// ValidateLadder enforces the tier invariant over a full company ladder:
// ordered by sort order, the first tier starts at 0, each next tier starts one
// point above the previous max, and exactly the last tier is unbounded.
// An empty ladder is valid.
func ValidateLadder(levels []Level) error {
	if len(levels) == 0 {
		return nil
	}

	sorted := SortLevels(levels)
	codes := make(map[string]struct{}, len(sorted))
	orders := make(map[int]struct{}, len(sorted))
	unbounded := 0

	for i, level := range sorted {
		if err := ValidateLevelFields(level); err != nil {
			return err
		}

		code := strings.ToUpper(strings.TrimSpace(level.Code))
		if _, ok := codes[code]; ok {
			return errs.Conflictf("level code %s already exists in company", level.Code)
		}
		codes[code] = struct{}{}

		if _, ok := orders[level.SortOrder]; ok {
			return errs.Conflictf("level sort order %d is used twice", level.SortOrder)
		}
		orders[level.SortOrder] = struct{}{}

		if i == 0 {
			if level.MinPoints != 0 {
				return errs.Conflictf("first level %s must start at 0 points", level.Code)
			}
		} else {
			prev := sorted[i-1]
			if prev.MaxPoints == nil {
				return errs.Conflictf("only the top level may be unbounded, %s is not the top level", prev.Code)
			}
			if level.MinPoints != *prev.MaxPoints+1 {
				return errs.Conflictf(
					"level %s must start at %d points to follow %s without gap or overlap",
					level.Code, *prev.MaxPoints+1, prev.Code,
				)
			}
		}

		if level.MaxPoints == nil {
			unbounded++
		}
	}

	if unbounded != 1 {
		return errs.Conflictf("ladder must have exactly one unbounded top level, found %d", unbounded)
	}
	return nil
}

// ResolveLevelForPoints returns the tier containing points. Totals below the
// first tier (negative balances) resolve to the first tier.
func ResolveLevelForPoints(levels []Level, points int64) (Level, bool) {
	if len(levels) == 0 {
		return Level{}, false
	}

	sorted := SortLevels(levels)
	if points < sorted[0].MinPoints {
		return sorted[0], true
	}
	for _, level := range sorted {
		if level.Contains(points) {
			return level, true
		}
	}
	return Level{}, false
}

// FindLevel looks a tier up by id.
func FindLevel(levels []Level, id string) (Level, bool) {
	for _, level := range levels {
		if level.ID == id {
			return level, true
		}
	}
	return Level{}, false
}

// LowestLevel returns the first tier of the ladder.
func LowestLevel(levels []Level) (Level, bool) {
	if len(levels) == 0 {
		return Level{}, false
	}
	return SortLevels(levels)[0], true
}

func bound(v int64) *int64 { return &v }

// DefaultLadder is the standard six-tier ladder seeded for a new company. Ids are left empty.
func DefaultLadder(companyID string) []Level {
	return []Level{
		{CompanyID: companyID, Name: "Bronze", Code: "BRONZE", MinPoints: 0, MaxPoints: bound(4_999), PointsMultiplier: 1.0, IncentivePercent: 0, SortOrder: 1},
		{CompanyID: companyID, Name: "Silver", Code: "SILVER", MinPoints: 5_000, MaxPoints: bound(14_999), PointsMultiplier: 1.1, IncentivePercent: 2, SortOrder: 2},
		{CompanyID: companyID, Name: "Gold", Code: "GOLD", MinPoints: 15_000, MaxPoints: bound(49_999), PointsMultiplier: 1.2, IncentivePercent: 4, SortOrder: 3},
		{CompanyID: companyID, Name: "Platinum", Code: "PLATINUM", MinPoints: 50_000, MaxPoints: bound(99_999), PointsMultiplier: 1.3, IncentivePercent: 6, SortOrder: 4},
		{CompanyID: companyID, Name: "Diamond", Code: "DIAMOND", MinPoints: 100_000, MaxPoints: bound(199_999), PointsMultiplier: 1.5, IncentivePercent: 8, SortOrder: 5},
		{CompanyID: companyID, Name: "Master", Code: "MASTER", MinPoints: 200_000, MaxPoints: nil, PointsMultiplier: 2.0, IncentivePercent: 10, SortOrder: 6},
	}
}
