package performance

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	domain "techrank/internal/domain/performance"
	"techrank/internal/infrastructure/cache"
	"techrank/internal/infrastructure/persistence/gormstore/model"
	"techrank/internal/infrastructure/persistence/gormstore/repository"
	"techrank/internal/infrastructure/persistence/gormstore/uow"
)

const testCompany = "c1"

type fakeRegistry struct {
	mu     sync.Mutex
	counts map[string]int
	err    error
	delay  time.Duration
	calls  int
	lastID []string
}

func (r *fakeRegistry) CountOpenJobs(_ context.Context, _ string, _ string, technicianIDs []string) (map[string]int, error) {
	r.mu.Lock()
	r.calls++
	r.lastID = append([]string(nil), technicianIDs...)
	counts, err, delay := r.counts, r.err, r.delay
	r.mu.Unlock()

	// Ignores ctx on purpose: the service must bound the call on its own.
	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(counts))
	for k, v := range counts {
		out[k] = v
	}
	return out, nil
}

func (r *fakeRegistry) set(counts map[string]int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts = counts
}

type fakePublisher struct {
	mu        sync.Mutex
	published []domain.Notification
	err       error
}

func (p *fakePublisher) Publish(_ context.Context, n domain.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, n)
	return nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}

type fixture struct {
	svc       *Service
	repo      *repository.PerformanceRepository
	registry  *fakeRegistry
	publisher *fakePublisher
	now       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithOptions(t, Options{})
}

func newFixtureWithOptions(t *testing.T, opts Options) *fixture {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "techrank.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	f := &fixture{
		repo:      repository.NewPerformanceRepository(db),
		registry:  &fakeRegistry{counts: map[string]int{}},
		publisher: &fakePublisher{},
		now:       time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return f.now }
	}
	f.svc = NewService(f.repo, uow.NewUnitOfWork(db), cache.NewDatabaseCache(db), f.registry, f.publisher, nil, opts)
	return f
}

func (f *fixture) branch(t *testing.T, branchID string) {
	t.Helper()
	if _, err := f.svc.RegisterBranch(context.Background(), RegisterBranchInput{CompanyID: testCompany, BranchID: branchID}); err != nil {
		t.Fatalf("RegisterBranch(%s) error = %v", branchID, err)
	}
}

func (f *fixture) technician(t *testing.T, userID string, branchID string, capacity int) domain.TechnicianProfile {
	t.Helper()
	profile, err := f.svc.CreateProfile(context.Background(), CreateProfileInput{
		UserID:            userID,
		CompanyID:         testCompany,
		BranchID:          branchID,
		MaxConcurrentJobs: capacity,
	})
	if err != nil {
		t.Fatalf("CreateProfile(%s) error = %v", userID, err)
	}
	return profile
}

func int64Ptr(v int64) *int64 { return &v }

func float64Ptr(v float64) *float64 { return &v }

// threeTiers is [0-4999 x1.0, 5000-14999 x1.1, 15000+ x1.2].
func (f *fixture) threeTiers(t *testing.T) []domain.Level {
	t.Helper()
	levels, err := f.svc.SetLadder(context.Background(), SetLadderInput{
		CompanyID: testCompany,
		Levels: []LevelInput{
			{Name: "Tier 1", Code: "T1", MinPoints: 0, MaxPoints: int64Ptr(4_999), PointsMultiplier: 1.0, SortOrder: 1},
			{Name: "Tier 2", Code: "T2", MinPoints: 5_000, MaxPoints: int64Ptr(14_999), PointsMultiplier: 1.1, IncentivePercent: 2, SortOrder: 2},
			{Name: "Tier 3", Code: "T3", MinPoints: 15_000, PointsMultiplier: 1.2, IncentivePercent: 4, SortOrder: 3},
		},
	})
	if err != nil {
		t.Fatalf("SetLadder() error = %v", err)
	}
	if len(levels) != 3 {
		t.Fatalf("SetLadder() returned %d levels, want 3", len(levels))
	}
	return levels
}

func (f *fixture) profile(t *testing.T, userID string) domain.TechnicianProfile {
	t.Helper()
	profile, err := f.svc.GetProfile(context.Background(), testCompany, userID)
	if err != nil {
		t.Fatalf("GetProfile(%s) error = %v", userID, err)
	}
	return profile
}

func TestNewService_Defaults(t *testing.T) {
	svc := NewService(nil, nil, nil, nil, nil, nil, Options{})
	if svc.levelTTL != defaultLevelTTL || svc.registryTimeout != defaultRegistryTimeout || svc.retentionDays != defaultRetentionDays {
		t.Fatalf("defaults not applied: ttl=%s timeout=%s retention=%d", svc.levelTTL, svc.registryTimeout, svc.retentionDays)
	}
	if svc.policy != DefaultAwardPolicy() {
		t.Fatalf("policy = %#v, want default", svc.policy)
	}

	_, err := svc.GetProfile(context.Background(), testCompany, "u1")
	if err == nil {
		t.Fatalf("GetProfile() without repository should fail")
	}
}

func TestService_CanceledContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.ListLevels(ctx, testCompany)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("ListLevels() error = %v, want context.Canceled", err)
	}
}
