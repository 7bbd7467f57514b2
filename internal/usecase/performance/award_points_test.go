package performance

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	domain "techrank/internal/domain/performance"
	"techrank/internal/errs"
)

func TestAward_AppliesCurrentLevelMultiplier(t *testing.T) {
	f := newFixture(t)
	f.branch(t, "b1")
	levels := f.threeTiers(t)
	f.technician(t, "u1", "b1", 3)
	ctx := context.Background()

	if _, err := f.svc.Promote(ctx, PromoteInput{UserID: "u1", CompanyID: testCompany, ToLevelID: levels[1].ID, PromotedBy: "admin"}); err != nil {
		t.Fatalf("Promote() error = %v", err)
	}

	entry, err := f.svc.Award(ctx, AwardInput{UserID: "u1", CompanyID: testCompany, Type: domain.EntryServiceCompleted, BasePoints: 105})
	if err != nil {
		t.Fatalf("Award() error = %v", err)
	}
	// 105 * 1.1 = 115.5, rounded half away from zero.
	if entry.Points != 116 || entry.BonusMultiplier != 1.1 {
		t.Fatalf("entry points=%d multiplier=%v, want 116 and 1.1", entry.Points, entry.BonusMultiplier)
	}
	if entry.Actor != "system" || entry.Description != "service completed" {
		t.Fatalf("unexpected defaults: actor=%q description=%q", entry.Actor, entry.Description)
	}
	if got := f.profile(t, "u1").TotalPoints; got != 116 {
		t.Fatalf("TotalPoints = %d, want 116", got)
	}
}

func TestAward_PenaltyIsScaledToo(t *testing.T) {
	f := newFixture(t)
	f.branch(t, "b1")
	levels := f.threeTiers(t)
	f.technician(t, "u1", "b1", 3)
	ctx := context.Background()

	if _, err := f.svc.Promote(ctx, PromoteInput{UserID: "u1", CompanyID: testCompany, ToLevelID: levels[2].ID, PromotedBy: "admin"}); err != nil {
		t.Fatalf("Promote() error = %v", err)
	}
	entry, err := f.svc.Award(ctx, AwardInput{UserID: "u1", CompanyID: testCompany, Type: domain.EntryPenaltyLate, BasePoints: -10})
	if err != nil {
		t.Fatalf("Award() error = %v", err)
	}
	if entry.Points != -12 {
		t.Fatalf("penalty points = %d, want -12", entry.Points)
	}
}

func TestAward_RejectsBadInput(t *testing.T) {
	f := newFixture(t)
	f.branch(t, "b1")
	f.technician(t, "u1", "b1", 3)
	ctx := context.Background()

	cases := []struct {
		name  string
		input AwardInput
	}{
		{name: "fractional", input: AwardInput{UserID: "u1", CompanyID: testCompany, Type: domain.EntryServiceCompleted, BasePoints: 1.5}},
		{name: "zero", input: AwardInput{UserID: "u1", CompanyID: testCompany, Type: domain.EntryServiceCompleted}},
		{name: "positive penalty", input: AwardInput{UserID: "u1", CompanyID: testCompany, Type: domain.EntryPenaltyRework, BasePoints: 10}},
		{name: "manual type", input: AwardInput{UserID: "u1", CompanyID: testCompany, Type: domain.EntryManualAdjustment, BasePoints: 10}},
		{name: "unknown type", input: AwardInput{UserID: "u1", CompanyID: testCompany, Type: "BOGUS", BasePoints: 10}},
		{name: "missing user", input: AwardInput{CompanyID: testCompany, Type: domain.EntryServiceCompleted, BasePoints: 10}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.svc.Award(ctx, tc.input); !errs.IsValidation(err) {
				t.Fatalf("Award() error = %v, want Validation", err)
			}
		})
	}

	if _, err := f.svc.Award(ctx, AwardInput{UserID: "ghost", CompanyID: testCompany, Type: domain.EntryServiceCompleted, BasePoints: 10}); !errs.IsNotFound(err) {
		t.Fatalf("Award() for unknown technician error = %v, want NotFound", err)
	}
	if got := f.profile(t, "u1").TotalPoints; got != 0 {
		t.Fatalf("TotalPoints = %d after rejected awards, want 0", got)
	}
}

func TestAward_ConcurrentWritesNeverLoseUpdates(t *testing.T) {
	f := newFixture(t)
	f.branch(t, "b1")
	f.technician(t, "u1", "b1", 3)
	ctx := context.Background()

	const writers = 20
	var wg sync.WaitGroup
	errCh := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.svc.Award(ctx, AwardInput{
				UserID:     "u1",
				CompanyID:  testCompany,
				Type:       domain.EntryServiceCompleted,
				BasePoints: 10,
				ServiceID:  fmt.Sprintf("job-%02d", i),
			})
			errCh <- err
		}(i)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("Award() error = %v", err)
		}
	}

	if got := f.profile(t, "u1").TotalPoints; got != writers*10 {
		t.Fatalf("TotalPoints = %d, want %d", got, writers*10)
	}
	page, err := f.svc.GetPointsHistory(ctx, HistoryInput{CompanyID: testCompany, UserID: "u1", PageSize: 100})
	if err != nil {
		t.Fatalf("GetPointsHistory() error = %v", err)
	}
	var sum int64
	for _, entry := range page.Entries {
		sum += entry.Points
	}
	if page.Total != writers || sum != writers*10 {
		t.Fatalf("ledger total=%d sum=%d, want %d rows summing to %d", page.Total, sum, writers, writers*10)
	}
}

func TestManualAdjust_AllowsNegativeTotal(t *testing.T) {
	f := newFixture(t)
	f.branch(t, "b1")
	f.technician(t, "u1", "b1", 3)
	ctx := context.Background()

	if _, err := f.svc.Award(ctx, AwardInput{UserID: "u1", CompanyID: testCompany, Type: domain.EntryServiceDelivered, BasePoints: 50}); err != nil {
		t.Fatalf("Award() error = %v", err)
	}
	entry, err := f.svc.ManualAdjust(ctx, ManualAdjustInput{
		UserID:     "u1",
		CompanyID:  testCompany,
		Points:     -100,
		Reason:     "rework penalty",
		AdjustedBy: "admin",
	})
	if err != nil {
		t.Fatalf("ManualAdjust() error = %v", err)
	}
	if entry.Type != domain.EntryManualAdjustment || entry.Points != -100 || entry.Actor != "admin" {
		t.Fatalf("unexpected adjustment entry: %#v", entry)
	}
	if got := f.profile(t, "u1").TotalPoints; got != -50 {
		t.Fatalf("TotalPoints = %d, want -50", got)
	}

	page, err := f.svc.GetPointsHistory(ctx, HistoryInput{CompanyID: testCompany, UserID: "u1"})
	if err != nil {
		t.Fatalf("GetPointsHistory() error = %v", err)
	}
	manual := 0
	for _, e := range page.Entries {
		if e.Type == domain.EntryManualAdjustment {
			manual++
		}
	}
	if manual != 1 {
		t.Fatalf("MANUAL_ADJUSTMENT rows = %d, want 1", manual)
	}
}

func TestManualAdjust_Validation(t *testing.T) {
	f := newFixture(t)
	f.branch(t, "b1")
	f.technician(t, "u1", "b1", 3)
	ctx := context.Background()

	if _, err := f.svc.ManualAdjust(ctx, ManualAdjustInput{UserID: "u1", CompanyID: testCompany, Points: 10, Reason: "   ", AdjustedBy: "admin"}); !errs.IsValidation(err) {
		t.Fatalf("blank reason error = %v, want Validation", err)
	}
	if _, err := f.svc.ManualAdjust(ctx, ManualAdjustInput{UserID: "u1", CompanyID: testCompany, Points: 0, Reason: "noop", AdjustedBy: "admin"}); !errs.IsValidation(err) {
		t.Fatalf("zero points error = %v, want Validation", err)
	}
}

func TestRecordJobEvent_AwardsPolicyAndFoldsStats(t *testing.T) {
	f := newFixture(t)
	f.branch(t, "b1")
	f.technician(t, "u1", "b1", 3)
	ctx := context.Background()

	entries, err := f.svc.RecordJobEvent(ctx, JobEventInput{
		UserID:          "u1",
		CompanyID:       testCompany,
		ServiceID:       "job-1",
		Kind:            "Completed",
		Rating:          float64Ptr(5),
		CompletionHours: float64Ptr(10),
	})
	if err != nil {
		t.Fatalf("RecordJobEvent() error = %v", err)
	}
	got := map[domain.EntryType]int64{}
	for _, e := range entries {
		got[e.Type] = e.Points
		if e.ServiceID == nil || *e.ServiceID != "job-1" {
			t.Fatalf("entry %s service id = %v", e.Type, e.ServiceID)
		}
	}
	want := map[domain.EntryType]int64{
		domain.EntryServiceCompleted: 100,
		domain.EntrySpeedBonus:       20,
		domain.EntryRatingBonus:      25,
	}
	if len(got) != len(want) {
		t.Fatalf("entries = %#v, want %#v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("entry %s = %d, want %d", k, got[k], v)
		}
	}

	if _, err := f.svc.RecordJobEvent(ctx, JobEventInput{
		UserID:          "u1",
		CompanyID:       testCompany,
		ServiceID:       "job-2",
		Kind:            JobCompleted,
		Rating:          float64Ptr(3),
		CompletionHours: float64Ptr(30),
	}); err != nil {
		t.Fatalf("RecordJobEvent(job-2) error = %v", err)
	}

	profile := f.profile(t, "u1")
	if profile.TotalPoints != 245 {
		t.Fatalf("TotalPoints = %d, want 245", profile.TotalPoints)
	}
	if profile.TotalServicesCompleted != 2 {
		t.Fatalf("TotalServicesCompleted = %d, want 2", profile.TotalServicesCompleted)
	}
	if profile.AverageRating == nil || *profile.AverageRating != 4 {
		t.Fatalf("AverageRating = %v, want 4", profile.AverageRating)
	}
	if profile.AvgCompletionHours == nil || *profile.AvgCompletionHours != 20 {
		t.Fatalf("AvgCompletionHours = %v, want 20", profile.AvgCompletionHours)
	}
}

func TestRecordJobEvent_ReplayIsConflictAndAtomic(t *testing.T) {
	f := newFixture(t)
	f.branch(t, "b1")
	f.technician(t, "u1", "b1", 3)
	ctx := context.Background()

	input := JobEventInput{UserID: "u1", CompanyID: testCompany, ServiceID: "job-1", Kind: JobDelivered}
	if _, err := f.svc.RecordJobEvent(ctx, input); err != nil {
		t.Fatalf("RecordJobEvent() error = %v", err)
	}

	input.Rating = float64Ptr(5)
	if _, err := f.svc.RecordJobEvent(ctx, input); !errs.IsConflict(err) {
		t.Fatalf("replay error = %v, want Conflict", err)
	}

	profile := f.profile(t, "u1")
	if profile.TotalPoints != 50 {
		t.Fatalf("TotalPoints = %d after replay, want 50", profile.TotalPoints)
	}
	if profile.AverageRating != nil {
		t.Fatalf("AverageRating = %v after rolled back replay, want nil", *profile.AverageRating)
	}
}

func TestRecordJobEvent_UnknownKind(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.RecordJobEvent(context.Background(), JobEventInput{UserID: "u1", CompanyID: testCompany, ServiceID: "job-1", Kind: "cancelled"})
	if !errs.IsValidation(err) {
		t.Fatalf("RecordJobEvent() error = %v, want Validation", err)
	}
}

func TestGetPointsSummary_RollingWindows(t *testing.T) {
	f := newFixture(t)
	f.branch(t, "b1")
	levels := f.threeTiers(t)
	f.technician(t, "u1", "b1", 3)
	ctx := context.Background()

	base := f.now
	award := func(at time.Time, entryType domain.EntryType, points float64) {
		t.Helper()
		f.now = at
		if _, err := f.svc.Award(ctx, AwardInput{UserID: "u1", CompanyID: testCompany, Type: entryType, BasePoints: points}); err != nil {
			t.Fatalf("Award() error = %v", err)
		}
	}
	award(base.AddDate(0, 0, -40), domain.EntryServiceCompleted, 5_000)
	award(base.AddDate(0, 0, -10), domain.EntryServiceCompleted, 300)
	award(base.AddDate(0, 0, -2), domain.EntryRatingBonus, 25)
	award(base.AddDate(0, 0, -1), domain.EntryPenaltyLate, -5)
	f.now = base

	summary, err := f.svc.GetPointsSummary(ctx, testCompany, "u1")
	if err != nil {
		t.Fatalf("GetPointsSummary() error = %v", err)
	}
	if summary.TotalPoints != 5_320 || summary.MonthlyPoints != 320 || summary.WeeklyPoints != 20 {
		t.Fatalf("total=%d monthly=%d weekly=%d, want 5320/320/20", summary.TotalPoints, summary.MonthlyPoints, summary.WeeklyPoints)
	}
	if summary.Breakdown[domain.EntryServiceCompleted] != 300 || summary.Breakdown[domain.EntryPenaltyLate] != -5 {
		t.Fatalf("breakdown = %#v", summary.Breakdown)
	}
	if summary.CurrentLevel == nil || summary.CurrentLevel.ID != levels[0].ID {
		t.Fatalf("CurrentLevel = %#v, want tier 1", summary.CurrentLevel)
	}
	if summary.EligibleLevel == nil || summary.EligibleLevel.ID != levels[1].ID {
		t.Fatalf("EligibleLevel = %#v, want tier 2", summary.EligibleLevel)
	}
	if summary.NextLevel == nil || summary.NextLevel.ID != levels[2].ID || summary.PointsToNextLevel != 9_680 {
		t.Fatalf("next=%#v toNext=%d, want tier 3 and 9680", summary.NextLevel, summary.PointsToNextLevel)
	}
}

func TestGetPointsHistory_PagesNewestFirst(t *testing.T) {
	f := newFixture(t)
	f.branch(t, "b1")
	f.technician(t, "u1", "b1", 3)
	ctx := context.Background()

	start := f.now
	for i := 1; i <= 5; i++ {
		f.now = start.Add(time.Duration(i) * time.Minute)
		if _, err := f.svc.Award(ctx, AwardInput{UserID: "u1", CompanyID: testCompany, Type: domain.EntryServiceCompleted, BasePoints: float64(i)}); err != nil {
			t.Fatalf("Award(%d) error = %v", i, err)
		}
	}

	page, err := f.svc.GetPointsHistory(ctx, HistoryInput{CompanyID: testCompany, UserID: "u1", Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("GetPointsHistory() error = %v", err)
	}
	if page.Total != 5 || page.TotalPages != 3 || len(page.Entries) != 2 {
		t.Fatalf("unexpected page: total=%d pages=%d len=%d", page.Total, page.TotalPages, len(page.Entries))
	}
	if page.Entries[0].Points != 3 || page.Entries[1].Points != 2 {
		t.Fatalf("page 2 points = %d,%d, want 3,2", page.Entries[0].Points, page.Entries[1].Points)
	}

	if _, err := f.svc.GetPointsHistory(ctx, HistoryInput{CompanyID: testCompany, UserID: "ghost"}); !errs.IsNotFound(err) {
		t.Fatalf("unknown technician error = %v, want NotFound", err)
	}
}
