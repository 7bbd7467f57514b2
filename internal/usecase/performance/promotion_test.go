package performance

import (
	"context"
	"testing"

	domain "techrank/internal/domain/performance"
	"techrank/internal/errs"
)

func TestPromotionCandidates_CrossingThresholdDoesNotPromote(t *testing.T) {
	f := newFixture(t)
	f.branch(t, "b1")
	levels := f.threeTiers(t)
	f.technician(t, "u1", "b1", 3)
	f.technician(t, "u2", "b1", 3)
	ctx := context.Background()

	if _, err := f.svc.ManualAdjust(ctx, ManualAdjustInput{UserID: "u1", CompanyID: testCompany, Points: 4_999, Reason: "migration", AdjustedBy: "admin"}); err != nil {
		t.Fatalf("ManualAdjust() error = %v", err)
	}

	candidates, err := f.svc.GetPromotionCandidates(ctx, testCompany)
	if err != nil {
		t.Fatalf("GetPromotionCandidates() error = %v", err)
	}
	if len(candidates) != 0 {
		t.Fatalf("candidates at 4999 points = %#v, want none", candidates)
	}

	if _, err := f.svc.Award(ctx, AwardInput{UserID: "u1", CompanyID: testCompany, Type: domain.EntryServiceCompleted, BasePoints: 50}); err != nil {
		t.Fatalf("Award() error = %v", err)
	}

	candidates, err = f.svc.GetPromotionCandidates(ctx, testCompany)
	if err != nil {
		t.Fatalf("GetPromotionCandidates() error = %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("candidates = %d, want 1", len(candidates))
	}
	c := candidates[0]
	if c.Profile.UserID != "u1" || c.Profile.TotalPoints != 5_049 {
		t.Fatalf("unexpected candidate profile: %#v", c.Profile)
	}
	if c.CurrentLevel == nil || c.CurrentLevel.ID != levels[0].ID || c.EligibleLevel.ID != levels[1].ID {
		t.Fatalf("current=%#v eligible=%#v, want tier 1 -> tier 2", c.CurrentLevel, c.EligibleLevel)
	}

	profile := f.profile(t, "u1")
	if profile.CurrentLevelID == nil || *profile.CurrentLevelID != levels[0].ID {
		t.Fatalf("CurrentLevelID moved without Promote: %v", profile.CurrentLevelID)
	}
}

func TestPromote_MovesLevelRecordsHistoryAndNotifies(t *testing.T) {
	f := newFixture(t)
	f.branch(t, "b1")
	levels := f.threeTiers(t)
	f.technician(t, "u1", "b1", 3)
	ctx := context.Background()

	record, err := f.svc.Promote(ctx, PromoteInput{
		UserID:      "u1",
		CompanyID:   testCompany,
		ToLevelID:   levels[2].ID,
		PromotedBy:  "admin",
		Notes:       "skip ahead",
		BonusPoints: 500,
	})
	if err != nil {
		t.Fatalf("Promote() error = %v", err)
	}
	if record.FromLevelID == nil || *record.FromLevelID != levels[0].ID || record.ToLevelID != levels[2].ID {
		t.Fatalf("unexpected record: %#v", record)
	}

	profile := f.profile(t, "u1")
	if profile.CurrentLevelID == nil || *profile.CurrentLevelID != levels[2].ID {
		t.Fatalf("CurrentLevelID = %v, want tier 3", profile.CurrentLevelID)
	}
	// The bonus is written unscaled.
	if profile.TotalPoints != 500 {
		t.Fatalf("TotalPoints = %d, want 500", profile.TotalPoints)
	}

	history, err := f.svc.GetPromotionHistory(ctx, testCompany, "u1")
	if err != nil {
		t.Fatalf("GetPromotionHistory() error = %v", err)
	}
	if len(history) != 1 || history[0].ID != record.ID || history[0].Notes != "skip ahead" {
		t.Fatalf("history = %#v", history)
	}

	page, err := f.svc.GetNotifications(ctx, NotificationQuery{CompanyID: testCompany, UserID: "u1"})
	if err != nil {
		t.Fatalf("GetNotifications() error = %v", err)
	}
	if page.Total != 1 || page.Items[0].Type != domain.NotificationPromotion {
		t.Fatalf("notifications = %#v", page.Items)
	}
	if f.publisher.count() != 1 {
		t.Fatalf("published = %d, want 1", f.publisher.count())
	}
}

func TestPromote_RejectsDemotionAndSameTier(t *testing.T) {
	f := newFixture(t)
	f.branch(t, "b1")
	levels := f.threeTiers(t)
	f.technician(t, "u1", "b1", 3)
	ctx := context.Background()

	if _, err := f.svc.Promote(ctx, PromoteInput{UserID: "u1", CompanyID: testCompany, ToLevelID: levels[1].ID, PromotedBy: "admin"}); err != nil {
		t.Fatalf("Promote() error = %v", err)
	}
	for _, target := range []domain.Level{levels[1], levels[0]} {
		_, err := f.svc.Promote(ctx, PromoteInput{UserID: "u1", CompanyID: testCompany, ToLevelID: target.ID, PromotedBy: "admin", BonusPoints: 10})
		if !errs.IsConflict(err) {
			t.Fatalf("Promote(%s) error = %v, want Conflict", target.Code, err)
		}
	}

	profile := f.profile(t, "u1")
	if *profile.CurrentLevelID != levels[1].ID || profile.TotalPoints != 0 {
		t.Fatalf("rejected promotion left changes: level=%s points=%d", *profile.CurrentLevelID, profile.TotalPoints)
	}
	history, err := f.svc.GetPromotionHistory(ctx, testCompany, "u1")
	if err != nil {
		t.Fatalf("GetPromotionHistory() error = %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history length = %d, want 1", len(history))
	}
}

func TestPromote_NotFound(t *testing.T) {
	f := newFixture(t)
	f.branch(t, "b1")
	levels := f.threeTiers(t)
	f.technician(t, "u1", "b1", 3)
	ctx := context.Background()

	if _, err := f.svc.Promote(ctx, PromoteInput{UserID: "ghost", CompanyID: testCompany, ToLevelID: levels[1].ID, PromotedBy: "admin"}); !errs.IsNotFound(err) {
		t.Fatalf("unknown technician error = %v, want NotFound", err)
	}
	if _, err := f.svc.Promote(ctx, PromoteInput{UserID: "u1", CompanyID: testCompany, ToLevelID: "missing", PromotedBy: "admin"}); !errs.IsNotFound(err) {
		t.Fatalf("unknown level error = %v, want NotFound", err)
	}
	if _, err := f.svc.Promote(ctx, PromoteInput{UserID: "u1", CompanyID: testCompany, ToLevelID: levels[1].ID}); !errs.IsValidation(err) {
		t.Fatalf("missing promotedBy error = %v, want Validation", err)
	}
}

func TestPromotionCandidates_ProfileWithoutLevel(t *testing.T) {
	f := newFixture(t)
	f.branch(t, "b1")
	f.technician(t, "u1", "b1", 3)
	levels := f.threeTiers(t)
	ctx := context.Background()

	candidates, err := f.svc.GetPromotionCandidates(ctx, testCompany)
	if err != nil {
		t.Fatalf("GetPromotionCandidates() error = %v", err)
	}
	if len(candidates) != 1 || candidates[0].CurrentLevel != nil || candidates[0].EligibleLevel.ID != levels[0].ID {
		t.Fatalf("candidates = %#v, want u1 eligible for tier 1", candidates)
	}

	if _, err := f.svc.Promote(ctx, PromoteInput{UserID: "u1", CompanyID: testCompany, ToLevelID: levels[0].ID, PromotedBy: "admin"}); err != nil {
		t.Fatalf("Promote() from no level error = %v", err)
	}
	candidates, err = f.svc.GetPromotionCandidates(ctx, testCompany)
	if err != nil {
		t.Fatalf("GetPromotionCandidates() error = %v", err)
	}
	if len(candidates) != 0 {
		t.Fatalf("candidates after promote = %#v, want none", candidates)
	}
}
