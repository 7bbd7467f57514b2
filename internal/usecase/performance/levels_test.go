package performance

import (
	"context"
	"strings"
	"testing"
	"time"

	"techrank/internal/errs"
	"techrank/internal/ports"
)

func TestCreateLevel_FirstTierMustCoverEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateLevel(ctx, CreateLevelInput{
		CompanyID:  testCompany,
		LevelInput: LevelInput{Name: "Bronze", Code: "bronze", MinPoints: 0, MaxPoints: int64Ptr(999), PointsMultiplier: 1, SortOrder: 1},
	})
	if !errs.IsConflict(err) {
		t.Fatalf("bounded single tier error = %v, want Conflict", err)
	}

	level, err := f.svc.CreateLevel(ctx, CreateLevelInput{
		CompanyID:  testCompany,
		LevelInput: LevelInput{Name: "Bronze", Code: " bronze ", MinPoints: 0, PointsMultiplier: 1, SortOrder: 1},
	})
	if err != nil {
		t.Fatalf("CreateLevel() error = %v", err)
	}
	if level.Code != "BRONZE" || level.ID == "" {
		t.Fatalf("unexpected level: %#v", level)
	}

	_, err = f.svc.CreateLevel(ctx, CreateLevelInput{
		CompanyID:  testCompany,
		LevelInput: LevelInput{Name: "Silver", Code: "SILVER", MinPoints: 5000, PointsMultiplier: 1.1, SortOrder: 2},
	})
	if !errs.IsConflict(err) {
		t.Fatalf("second unbounded tier error = %v, want Conflict", err)
	}
}

func TestCreateLevel_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []LevelInput{
		{Name: "", Code: "X", PointsMultiplier: 1},
		{Name: "X", Code: "X", MinPoints: -1, PointsMultiplier: 1},
		{Name: "X", Code: "X", PointsMultiplier: 0},
		{Name: "X", Code: "X", PointsMultiplier: 0.8},
		{Name: "X", Code: "X", MinPoints: 10, MaxPoints: int64Ptr(5), PointsMultiplier: 1},
		{Name: "X", Code: "X", PointsMultiplier: 1, IncentivePercent: -2},
	}
	for i, in := range cases {
		if _, err := f.svc.CreateLevel(ctx, CreateLevelInput{CompanyID: testCompany, LevelInput: in}); !errs.IsValidation(err) {
			t.Fatalf("case %d: CreateLevel() error = %v, want Validation", i, err)
		}
	}
}

func TestUpdateLevel_InvalidatesCache(t *testing.T) {
	f := newFixture(t)
	levels := f.threeTiers(t)
	ctx := context.Background()

	if _, err := f.svc.ListLevels(ctx, testCompany); err != nil {
		t.Fatalf("ListLevels() error = %v", err)
	}

	name := "Journeyman"
	multiplier := 1.15
	if _, err := f.svc.UpdateLevel(ctx, UpdateLevelInput{CompanyID: testCompany, LevelID: levels[1].ID, Name: &name, PointsMultiplier: &multiplier}); err != nil {
		t.Fatalf("UpdateLevel() error = %v", err)
	}

	got, err := f.svc.ListLevels(ctx, testCompany)
	if err != nil {
		t.Fatalf("ListLevels() error = %v", err)
	}
	if got[1].Name != "Journeyman" || got[1].PointsMultiplier != 1.15 {
		t.Fatalf("stale level after update: %#v", got[1])
	}
}

// writeRacingCache runs beforeSnapshot ahead of the first ladder snapshot
// write, i.e. after the reader has already loaded the ladder from the store.
type writeRacingCache struct {
	ports.Cache
	beforeSnapshot func()
	fired          bool
}

func (c *writeRacingCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	isSnapshot := strings.HasPrefix(key, "levels:") && !strings.HasPrefix(key, "levels:gen:")
	if isSnapshot && !c.fired {
		c.fired = true
		c.beforeSnapshot()
	}
	return c.Cache.Set(ctx, key, value, ttl)
}

func TestLadderCache_ConcurrentWriteDoesNotLeaveStaleSnapshot(t *testing.T) {
	f := newFixture(t)
	levels := f.threeTiers(t)
	ctx := context.Background()

	name := "Journeyman"
	racing := &writeRacingCache{Cache: f.svc.cache}
	racing.beforeSnapshot = func() {
		if _, err := f.svc.UpdateLevel(ctx, UpdateLevelInput{CompanyID: testCompany, LevelID: levels[1].ID, Name: &name}); err != nil {
			t.Errorf("UpdateLevel() error = %v", err)
		}
	}
	f.svc.cache = racing

	stale, err := f.svc.ListLevels(ctx, testCompany)
	if err != nil {
		t.Fatalf("ListLevels() error = %v", err)
	}
	if !racing.fired {
		t.Fatalf("ladder snapshot was never written")
	}
	if stale[1].Name == name {
		t.Fatalf("first read should have loaded the ladder before the update")
	}

	got, err := f.svc.ListLevels(ctx, testCompany)
	if err != nil {
		t.Fatalf("ListLevels() error = %v", err)
	}
	if got[1].Name != name {
		t.Fatalf("ladder after concurrent update = %q, want %q", got[1].Name, name)
	}
}

func TestUpdateLevel_KeepsLadderContiguous(t *testing.T) {
	f := newFixture(t)
	levels := f.threeTiers(t)
	ctx := context.Background()

	_, err := f.svc.UpdateLevel(ctx, UpdateLevelInput{CompanyID: testCompany, LevelID: levels[1].ID, MinPoints: int64Ptr(6_000)})
	if !errs.IsConflict(err) {
		t.Fatalf("gap error = %v, want Conflict", err)
	}

	_, err = f.svc.UpdateLevel(ctx, UpdateLevelInput{CompanyID: testCompany, LevelID: levels[1].ID, ClearMaxPoints: true})
	if !errs.IsConflict(err) {
		t.Fatalf("second unbounded tier error = %v, want Conflict", err)
	}

	_, err = f.svc.UpdateLevel(ctx, UpdateLevelInput{CompanyID: testCompany, LevelID: levels[1].ID, PointsMultiplier: float64Ptr(0.9)})
	if !errs.IsValidation(err) {
		t.Fatalf("multiplier below one error = %v, want Validation", err)
	}

	_, err = f.svc.UpdateLevel(ctx, UpdateLevelInput{CompanyID: testCompany, LevelID: "missing", Name: strPtr("x")})
	if !errs.IsNotFound(err) {
		t.Fatalf("unknown level error = %v, want NotFound", err)
	}

	_, err = f.svc.UpdateLevel(ctx, UpdateLevelInput{CompanyID: testCompany, LevelID: levels[2].ID, MaxPoints: int64Ptr(20_000), ClearMaxPoints: true})
	if !errs.IsValidation(err) {
		t.Fatalf("conflicting max flags error = %v, want Validation", err)
	}
}

func strPtr(v string) *string { return &v }

func TestDeleteLevel_Rules(t *testing.T) {
	f := newFixture(t)
	f.branch(t, "b1")
	levels := f.threeTiers(t)
	f.technician(t, "u1", "b1", 3)
	ctx := context.Background()

	if err := f.svc.DeleteLevel(ctx, testCompany, levels[0].ID); !errs.IsConflict(err) {
		t.Fatalf("delete in-use level error = %v, want Conflict", err)
	}
	if err := f.svc.DeleteLevel(ctx, testCompany, levels[1].ID); !errs.IsConflict(err) {
		t.Fatalf("delete middle level error = %v, want Conflict", err)
	}
	if err := f.svc.DeleteLevel(ctx, testCompany, "missing"); !errs.IsNotFound(err) {
		t.Fatalf("delete unknown level error = %v, want NotFound", err)
	}

	got, err := f.svc.ListLevels(ctx, testCompany)
	if err != nil {
		t.Fatalf("ListLevels() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("levels after rejected deletes = %d, want 3", len(got))
	}
}

func TestDeleteLevel_OnlyTier(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	level, err := f.svc.CreateLevel(ctx, CreateLevelInput{
		CompanyID:  testCompany,
		LevelInput: LevelInput{Name: "Only", Code: "ONLY", PointsMultiplier: 1, SortOrder: 1},
	})
	if err != nil {
		t.Fatalf("CreateLevel() error = %v", err)
	}
	if _, err := f.svc.ListLevels(ctx, testCompany); err != nil {
		t.Fatalf("ListLevels() error = %v", err)
	}
	if err := f.svc.DeleteLevel(ctx, testCompany, level.ID); err != nil {
		t.Fatalf("DeleteLevel() error = %v", err)
	}
	got, err := f.svc.ListLevels(ctx, testCompany)
	if err != nil {
		t.Fatalf("ListLevels() error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("cached ladder survived delete: %#v", got)
	}
}

func TestInitializeDefaults_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	levels, created, err := f.svc.InitializeDefaults(ctx, testCompany)
	if err != nil {
		t.Fatalf("InitializeDefaults() error = %v", err)
	}
	if !created || len(levels) != 6 {
		t.Fatalf("created=%v len=%d, want true and 6", created, len(levels))
	}

	again, created, err := f.svc.InitializeDefaults(ctx, testCompany)
	if err != nil {
		t.Fatalf("InitializeDefaults() second call error = %v", err)
	}
	if created || len(again) != 6 {
		t.Fatalf("second call created=%v len=%d, want false and 6", created, len(again))
	}

	top, err := f.svc.ResolveLevelForPoints(ctx, testCompany, 1_000_000)
	if err != nil {
		t.Fatalf("ResolveLevelForPoints() error = %v", err)
	}
	if top.Code != "MASTER" || top.PointsMultiplier != 2 {
		t.Fatalf("top tier = %#v", top)
	}
}

func TestSetLadder_KeepsIdsAndGuardsUsedTiers(t *testing.T) {
	f := newFixture(t)
	f.branch(t, "b1")
	levels := f.threeTiers(t)
	f.technician(t, "u1", "b1", 3)
	ctx := context.Background()

	replaced, err := f.svc.SetLadder(ctx, SetLadderInput{
		CompanyID: testCompany,
		Levels: []LevelInput{
			{Name: "Tier 1", Code: "t1", MinPoints: 0, MaxPoints: int64Ptr(9_999), PointsMultiplier: 1, SortOrder: 1},
			{Name: "Tier 2", Code: "T2", MinPoints: 10_000, PointsMultiplier: 1.25, SortOrder: 2},
		},
	})
	if err != nil {
		t.Fatalf("SetLadder() error = %v", err)
	}
	if len(replaced) != 2 || replaced[0].ID != levels[0].ID || replaced[1].ID != levels[1].ID {
		t.Fatalf("ids not preserved: %#v", replaced)
	}
	if replaced[1].MaxPoints != nil || replaced[1].PointsMultiplier != 1.25 {
		t.Fatalf("tier 2 not updated: %#v", replaced[1])
	}

	_, err = f.svc.SetLadder(ctx, SetLadderInput{
		CompanyID: testCompany,
		Levels:    []LevelInput{{Name: "New", Code: "NEW", MinPoints: 0, PointsMultiplier: 1, SortOrder: 1}},
	})
	if !errs.IsConflict(err) {
		t.Fatalf("dropping used tier error = %v, want Conflict", err)
	}

	_, err = f.svc.SetLadder(ctx, SetLadderInput{
		CompanyID: testCompany,
		Levels: []LevelInput{
			{Name: "A", Code: "A", MinPoints: 0, MaxPoints: int64Ptr(99), PointsMultiplier: 1, SortOrder: 1},
			{Name: "B", Code: "B", MinPoints: 150, PointsMultiplier: 1, SortOrder: 2},
		},
	})
	if !errs.IsConflict(err) {
		t.Fatalf("gapped ladder error = %v, want Conflict", err)
	}
}

func TestResolveLevelForPoints_Boundaries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.ResolveLevelForPoints(ctx, testCompany, 10); !errs.IsNotFound(err) {
		t.Fatalf("empty ladder error = %v, want NotFound", err)
	}

	f.threeTiers(t)
	cases := map[int64]string{
		-50:     "T1",
		0:       "T1",
		4_999:   "T1",
		5_000:   "T2",
		14_999:  "T2",
		15_000:  "T3",
		900_000: "T3",
	}
	for points, want := range cases {
		level, err := f.svc.ResolveLevelForPoints(ctx, testCompany, points)
		if err != nil {
			t.Fatalf("ResolveLevelForPoints(%d) error = %v", points, err)
		}
		if level.Code != want {
			t.Fatalf("ResolveLevelForPoints(%d) = %s, want %s", points, level.Code, want)
		}
	}
}
