package performance

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	domain "techrank/internal/domain/performance"
	"techrank/internal/errs"
)

func userIDs(candidates []domain.Candidate) []string {
	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.Profile.UserID)
	}
	return ids
}

func TestGetCandidates_WorkloadOrderAndCategoryFilter(t *testing.T) {
	f := newFixture(t)
	f.branch(t, "b1")
	f.technician(t, "A", "b1", 5)
	f.technician(t, "B", "b1", 2)
	f.registry.set(map[string]int{"A": 2, "B": 1})
	ctx := context.Background()

	if _, err := f.svc.AddSkill(ctx, AddSkillInput{UserID: "A", CompanyID: testCompany, ServiceCategoryID: "phones", Proficiency: domain.ProficiencyAdvanced}); err != nil {
		t.Fatalf("AddSkill() error = %v", err)
	}

	candidates, err := f.svc.GetCandidates(ctx, CandidateQuery{CompanyID: testCompany, BranchID: "b1", SortBy: "workload"})
	if err != nil {
		t.Fatalf("GetCandidates() error = %v", err)
	}
	if got := userIDs(candidates); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Fatalf("order = %v, want [A B]", got)
	}
	if candidates[0].WorkloadPercent != 40 || !candidates[0].CanAcceptMore {
		t.Fatalf("A workload = %d%% canAcceptMore=%v", candidates[0].WorkloadPercent, candidates[0].CanAcceptMore)
	}
	if candidates[1].WorkloadPercent != 50 || candidates[1].OpenJobs != 1 {
		t.Fatalf("B workload = %d%% open=%d", candidates[1].WorkloadPercent, candidates[1].OpenJobs)
	}
	if len(candidates[0].Skills) != 1 || len(candidates[1].Skills) != 0 {
		t.Fatalf("skills not attached: A=%d B=%d", len(candidates[0].Skills), len(candidates[1].Skills))
	}

	filtered, err := f.svc.GetCandidates(ctx, CandidateQuery{CompanyID: testCompany, BranchID: "b1", CategoryID: "phones"})
	if err != nil {
		t.Fatalf("GetCandidates(category) error = %v", err)
	}
	if got := userIDs(filtered); !reflect.DeepEqual(got, []string{"A"}) {
		t.Fatalf("filtered = %v, want [A]", got)
	}
}

func TestGetCandidates_StrategiesAreDeterministic(t *testing.T) {
	f := newFixture(t)
	f.branch(t, "b1")
	f.branch(t, "b2")
	for _, id := range []string{"t3", "t1", "t2", "t4"} {
		f.technician(t, id, "b1", 4)
	}
	f.technician(t, "other", "b2", 4)
	f.registry.set(map[string]int{"t1": 2, "t2": 2, "t3": 1, "t4": 9})
	ctx := context.Background()

	award := func(userID string, points float64) {
		t.Helper()
		if _, err := f.svc.Award(ctx, AwardInput{UserID: userID, CompanyID: testCompany, Type: domain.EntryServiceCompleted, BasePoints: points}); err != nil {
			t.Fatalf("Award(%s) error = %v", userID, err)
		}
	}
	award("t1", 300)
	award("t2", 300)
	award("t3", 100)
	award("t4", 900)

	rate := func(userID string, serviceID string, rating float64) {
		t.Helper()
		if _, err := f.svc.RecordJobEvent(ctx, JobEventInput{UserID: userID, CompanyID: testCompany, ServiceID: serviceID, Kind: JobDelivered, Rating: float64Ptr(rating)}); err != nil {
			t.Fatalf("RecordJobEvent(%s) error = %v", userID, err)
		}
	}
	// Delivered (50) and no rating bonus below 4.5 keep the point order.
	rate("t1", "s1", 4)
	rate("t3", "s3", 4)

	cases := []struct {
		sortBy string
		want   []string
	}{
		{sortBy: "workload", want: []string{"t3", "t1", "t2", "t4"}},
		{sortBy: "points", want: []string{"t4", "t1", "t2", "t3"}},
		// Equal ratings fall back to points; unrated technicians go last.
		{sortBy: "rating", want: []string{"t1", "t3", "t4", "t2"}},
	}
	for _, tc := range cases {
		t.Run(tc.sortBy, func(t *testing.T) {
			first, err := f.svc.GetCandidates(ctx, CandidateQuery{CompanyID: testCompany, BranchID: "b1", SortBy: tc.sortBy})
			if err != nil {
				t.Fatalf("GetCandidates() error = %v", err)
			}
			second, err := f.svc.GetCandidates(ctx, CandidateQuery{CompanyID: testCompany, BranchID: "b1", SortBy: tc.sortBy})
			if err != nil {
				t.Fatalf("GetCandidates() second call error = %v", err)
			}
			if got := userIDs(first); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("order = %v, want %v", got, tc.want)
			}
			if !reflect.DeepEqual(userIDs(first), userIDs(second)) {
				t.Fatalf("ordering not deterministic: %v vs %v", userIDs(first), userIDs(second))
			}
		})
	}

	all, err := f.svc.GetCandidates(ctx, CandidateQuery{CompanyID: testCompany, BranchID: "b1"})
	if err != nil {
		t.Fatalf("GetCandidates() error = %v", err)
	}
	for _, c := range all {
		if c.WorkloadPercent < 0 || c.WorkloadPercent > 100 {
			t.Fatalf("%s workload %d out of range", c.Profile.UserID, c.WorkloadPercent)
		}
	}
	if all[3].Profile.UserID != "t4" || all[3].WorkloadPercent != 100 || all[3].CanAcceptMore {
		t.Fatalf("overloaded technician = %#v", all[3])
	}
}

func TestGetCandidates_AvailableOnlyAndEmpty(t *testing.T) {
	f := newFixture(t)
	f.branch(t, "b1")
	f.branch(t, "empty")
	f.technician(t, "u1", "b1", 3)
	f.technician(t, "u2", "b1", 3)
	ctx := context.Background()

	off := false
	if _, err := f.svc.UpdateProfile(ctx, UpdateProfileInput{UserID: "u2", CompanyID: testCompany, IsAvailable: &off}); err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}

	candidates, err := f.svc.GetCandidates(ctx, CandidateQuery{CompanyID: testCompany, BranchID: "b1", AvailableOnly: true})
	if err != nil {
		t.Fatalf("GetCandidates() error = %v", err)
	}
	if got := userIDs(candidates); !reflect.DeepEqual(got, []string{"u1"}) {
		t.Fatalf("available = %v, want [u1]", got)
	}

	calls := f.registry.calls
	empty, err := f.svc.GetCandidates(ctx, CandidateQuery{CompanyID: testCompany, BranchID: "empty"})
	if err != nil {
		t.Fatalf("GetCandidates(empty) error = %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("empty branch = %#v, want empty list", empty)
	}
	if f.registry.calls != calls {
		t.Fatalf("registry called for an empty branch")
	}
}

func TestGetCandidates_Errors(t *testing.T) {
	f := newFixture(t)
	f.branch(t, "b1")
	f.technician(t, "u1", "b1", 3)
	ctx := context.Background()

	if _, err := f.svc.GetCandidates(ctx, CandidateQuery{CompanyID: testCompany, BranchID: "nowhere"}); !errs.IsNotFound(err) {
		t.Fatalf("unknown branch error = %v, want NotFound", err)
	}
	if _, err := f.svc.GetCandidates(ctx, CandidateQuery{CompanyID: testCompany, BranchID: "b1", SortBy: "speed"}); !errs.IsValidation(err) {
		t.Fatalf("unknown strategy error = %v, want Validation", err)
	}

	f.registry.mu.Lock()
	f.registry.err = errors.New("connection refused")
	f.registry.mu.Unlock()
	_, err := f.svc.GetCandidates(ctx, CandidateQuery{CompanyID: testCompany, BranchID: "b1"})
	if !errs.IsDependencyTimeout(err) {
		t.Fatalf("registry failure error = %v, want DependencyTimeout", err)
	}
}

func TestGetCandidates_RegistryTimeout(t *testing.T) {
	f := newFixtureWithOptions(t, Options{RegistryTimeout: 50 * time.Millisecond})
	f.branch(t, "b1")
	f.technician(t, "u1", "b1", 3)
	f.registry.mu.Lock()
	f.registry.delay = 2 * time.Second
	f.registry.mu.Unlock()

	started := time.Now()
	_, err := f.svc.GetCandidates(context.Background(), CandidateQuery{CompanyID: testCompany, BranchID: "b1"})
	if !errs.IsDependencyTimeout(err) {
		t.Fatalf("slow registry error = %v, want DependencyTimeout", err)
	}
	if !errs.Retryable(err) {
		t.Fatalf("registry timeout should be retryable")
	}
	if elapsed := time.Since(started); elapsed > time.Second {
		t.Fatalf("GetCandidates() waited %s for a slow registry", elapsed)
	}
}
