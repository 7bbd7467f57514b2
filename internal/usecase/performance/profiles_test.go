package performance

import (
	"context"
	"testing"

	"techrank/internal/errs"
)

func TestCreateProfile_StartsOnLowestTier(t *testing.T) {
	f := newFixture(t)
	f.branch(t, "b1")
	levels := f.threeTiers(t)

	profile := f.technician(t, "u1", "b1", 3)
	if profile.CurrentLevelID == nil || *profile.CurrentLevelID != levels[0].ID {
		t.Fatalf("CurrentLevelID = %v, want %s", profile.CurrentLevelID, levels[0].ID)
	}
	if !profile.IsAvailable || profile.TotalPoints != 0 {
		t.Fatalf("unexpected new profile: %#v", profile)
	}
}

func TestCreateProfile_WithoutLadderHasNoLevel(t *testing.T) {
	f := newFixture(t)
	f.branch(t, "b1")

	profile := f.technician(t, "u1", "b1", 3)
	if profile.CurrentLevelID != nil {
		t.Fatalf("CurrentLevelID = %v, want nil", *profile.CurrentLevelID)
	}
}

func TestCreateProfile_Errors(t *testing.T) {
	f := newFixture(t)
	f.branch(t, "b1")
	f.technician(t, "u1", "b1", 3)
	ctx := context.Background()

	_, err := f.svc.CreateProfile(ctx, CreateProfileInput{UserID: "u2", CompanyID: testCompany, BranchID: "missing", MaxConcurrentJobs: 2})
	if !errs.IsNotFound(err) {
		t.Fatalf("unknown branch error = %v, want NotFound", err)
	}

	_, err = f.svc.CreateProfile(ctx, CreateProfileInput{UserID: "u1", CompanyID: testCompany, BranchID: "b1", MaxConcurrentJobs: 2})
	if !errs.IsConflict(err) {
		t.Fatalf("duplicate profile error = %v, want Conflict", err)
	}

	_, err = f.svc.CreateProfile(ctx, CreateProfileInput{UserID: "u3", CompanyID: testCompany, BranchID: "b1", MaxConcurrentJobs: 0})
	if !errs.IsValidation(err) {
		t.Fatalf("zero capacity error = %v, want Validation", err)
	}
}

func TestUpdateProfile_SoftDisableAndMove(t *testing.T) {
	f := newFixture(t)
	f.branch(t, "b1")
	f.branch(t, "b2")
	f.technician(t, "u1", "b1", 3)

	off := false
	branch := "b2"
	updated, err := f.svc.UpdateProfile(context.Background(), UpdateProfileInput{
		UserID:      "u1",
		CompanyID:   testCompany,
		IsAvailable: &off,
		BranchID:    &branch,
	})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if updated.IsAvailable || updated.BranchID != "b2" || updated.MaxConcurrentJobs != 3 {
		t.Fatalf("unexpected profile after update: %#v", updated)
	}

	missing := "nowhere"
	_, err = f.svc.UpdateProfile(context.Background(), UpdateProfileInput{UserID: "u1", CompanyID: testCompany, BranchID: &missing})
	if !errs.IsNotFound(err) {
		t.Fatalf("move to unknown branch error = %v, want NotFound", err)
	}

	_, err = f.svc.UpdateProfile(context.Background(), UpdateProfileInput{UserID: "u1", CompanyID: testCompany})
	if !errs.IsValidation(err) {
		t.Fatalf("empty update error = %v, want Validation", err)
	}
}
