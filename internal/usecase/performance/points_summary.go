package performance

import (
	"context"
	"time"

	domain "techrank/internal/domain/performance"
	"techrank/internal/errs"
)

const (
	monthlyWindow = 30 * 24 * time.Hour
	weeklyWindow  = 7 * 24 * time.Hour

	defaultPageSize = 20
	maxPageSize     = 100
)

type PointsSummary struct {
	UserID        string                     `json:"userId"`
	CompanyID     string                     `json:"companyId"`
	TotalPoints   int64                      `json:"totalPoints"`
	MonthlyPoints int64                      `json:"monthlyPoints"`
	WeeklyPoints  int64                      `json:"weeklyPoints"`
	Breakdown     map[domain.EntryType]int64 `json:"breakdown"`
	CurrentLevel  *domain.Level              `json:"currentLevel,omitempty"`
	// EligibleLevel is the tier the total resolves to; it differs from
	// CurrentLevel while a promotion is pending.
	EligibleLevel     *domain.Level `json:"eligibleLevel,omitempty"`
	NextLevel         *domain.Level `json:"nextLevel,omitempty"`
	PointsToNextLevel int64         `json:"pointsToNextLevel"`
}

// GetPointsSummary reports the running total and rolling 30 and 7 day sums.
func (s *Service) GetPointsSummary(ctx context.Context, companyID string, userID string) (PointsSummary, error) {
	if err := s.ready(ctx); err != nil {
		return PointsSummary{}, err
	}
	if companyID == "" || userID == "" {
		return PointsSummary{}, errs.Validationf("companyId and userId are required")
	}

	levels, err := s.ladder(ctx, companyID)
	if err != nil {
		return PointsSummary{}, err
	}

	now := s.nowUTC()
	summary := PointsSummary{UserID: userID, CompanyID: companyID}
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		profile, err := s.repo.GetProfile(txCtx, companyID, userID)
		if err != nil {
			return err
		}
		summary.TotalPoints = profile.TotalPoints
		if profile.CurrentLevelID != nil {
			if level, ok := domain.FindLevel(levels, *profile.CurrentLevelID); ok {
				summary.CurrentLevel = &level
			}
		}

		if summary.MonthlyPoints, err = s.repo.SumPointsSince(txCtx, companyID, userID, now.Add(-monthlyWindow)); err != nil {
			return err
		}
		if summary.WeeklyPoints, err = s.repo.SumPointsSince(txCtx, companyID, userID, now.Add(-weeklyWindow)); err != nil {
			return err
		}
		summary.Breakdown, err = s.repo.SumPointsByTypeSince(txCtx, companyID, userID, now.Add(-monthlyWindow))
		return err
	}); err != nil {
		return PointsSummary{}, err
	}

	if eligible, ok := domain.ResolveLevelForPoints(levels, summary.TotalPoints); ok {
		summary.EligibleLevel = &eligible
		if next, ok := nextLevel(levels, eligible); ok {
			summary.NextLevel = &next
			summary.PointsToNextLevel = next.MinPoints - summary.TotalPoints
		}
	}
	return summary, nil
}

func nextLevel(levels []domain.Level, current domain.Level) (domain.Level, bool) {
	for _, l := range domain.SortLevels(levels) {
		if l.SortOrder > current.SortOrder {
			return l, true
		}
	}
	return domain.Level{}, false
}

type HistoryInput struct {
	CompanyID string `json:"companyId" validate:"required"`
	UserID    string `json:"userId" validate:"required"`
	Page      int    `json:"page" validate:"gte=0"`
	PageSize  int    `json:"pageSize" validate:"gte=0,lte=100"`
}

type HistoryPage struct {
	Entries    []domain.LedgerEntry `json:"entries"`
	Total      int64                `json:"total"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"pageSize"`
	TotalPages int                  `json:"totalPages"`
}

// GetPointsHistory pages through ledger entries newest first. Page 0 means 1.
func (s *Service) GetPointsHistory(ctx context.Context, input HistoryInput) (HistoryPage, error) {
	if err := s.ready(ctx); err != nil {
		return HistoryPage{}, err
	}
	if err := s.validate.Struct(input); err != nil {
		return HistoryPage{}, err
	}
	page, pageSize := normalizePage(input.Page, input.PageSize)

	out := HistoryPage{Page: page, PageSize: pageSize}
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetProfile(txCtx, input.CompanyID, input.UserID); err != nil {
			return err
		}
		var err error
		out.Entries, out.Total, err = s.repo.ListEntries(txCtx, input.CompanyID, input.UserID, (page-1)*pageSize, pageSize)
		return err
	}); err != nil {
		return HistoryPage{}, err
	}

	out.TotalPages = totalPages(out.Total, pageSize)
	return out, nil
}

func normalizePage(page int, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func totalPages(total int64, pageSize int) int {
	if total == 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
