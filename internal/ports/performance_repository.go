package ports

import (
	"context"
	"time"

	domain "techrank/internal/domain/performance"
)

type ProfileFilter struct {
	CompanyID     string
	BranchID      string
	AvailableOnly bool
	// CategoryID keeps only technicians holding a skill in that service category.
	CategoryID string
}

type ProfileUpdate struct {
	IsAvailable       *bool
	MaxConcurrentJobs *int
	BranchID          *string
}

// ServiceOutcome folds one finished job into the profile statistics.
type ServiceOutcome struct {
	Completed       bool
	CompletionHours *float64
	Rating          *float64
	At              time.Time
}

type NotificationFilter struct {
	CompanyID  string
	UserID     string
	UnreadOnly bool
	Offset     int
	Limit      int
}

type BranchStore interface {
	UpsertBranch(ctx context.Context, branch domain.Branch) (domain.Branch, error)
	GetBranch(ctx context.Context, companyID string, branchID string) (domain.Branch, error)
	ListBranches(ctx context.Context, companyID string) ([]domain.Branch, error)
}

type TechnicianStore interface {
	CreateProfile(ctx context.Context, profile domain.TechnicianProfile) (domain.TechnicianProfile, error)
	GetProfile(ctx context.Context, companyID string, userID string) (domain.TechnicianProfile, error)
	ListProfiles(ctx context.Context, filter ProfileFilter) ([]domain.TechnicianProfile, error)
	UpdateProfile(ctx context.Context, companyID string, userID string, update ProfileUpdate, at time.Time) (domain.TechnicianProfile, error)
	// AddPoints is a single atomic increment of total_points.
	AddPoints(ctx context.Context, companyID string, userID string, delta int64, at time.Time) error
	RecordServiceOutcome(ctx context.Context, companyID string, userID string, outcome ServiceOutcome) error
	// SetCurrentLevel only succeeds while the stored level still equals from.
	SetCurrentLevel(ctx context.Context, companyID string, userID string, from *string, to string, at time.Time) error
	CountProfilesAtLevel(ctx context.Context, companyID string, levelID string) (int64, error)
}

type LevelStore interface {
	ListLevels(ctx context.Context, companyID string) ([]domain.Level, error)
	GetLevel(ctx context.Context, companyID string, levelID string) (domain.Level, error)
	CreateLevel(ctx context.Context, level domain.Level) (domain.Level, error)
	UpdateLevel(ctx context.Context, level domain.Level) (domain.Level, error)
	DeleteLevel(ctx context.Context, companyID string, levelID string) error
}

type LedgerStore interface {
	AppendEntry(ctx context.Context, entry domain.LedgerEntry) (domain.LedgerEntry, error)
	ListEntries(ctx context.Context, companyID string, userID string, offset int, limit int) ([]domain.LedgerEntry, int64, error)
	SumPointsSince(ctx context.Context, companyID string, userID string, since time.Time) (int64, error)
	SumPointsByTypeSince(ctx context.Context, companyID string, userID string, since time.Time) (map[domain.EntryType]int64, error)
}

type PromotionStore interface {
	AppendPromotion(ctx context.Context, record domain.PromotionRecord) (domain.PromotionRecord, error)
	ListPromotions(ctx context.Context, companyID string, userID string) ([]domain.PromotionRecord, error)
}

type SkillStore interface {
	CreateSkill(ctx context.Context, skill domain.Skill) (domain.Skill, error)
	GetSkill(ctx context.Context, companyID string, skillID string) (domain.Skill, error)
	SaveSkill(ctx context.Context, skill domain.Skill) (domain.Skill, error)
	DeleteSkill(ctx context.Context, companyID string, skillID string) error
	ListSkills(ctx context.Context, companyID string, userIDs []string) ([]domain.Skill, error)
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, notification domain.Notification) (domain.Notification, error)
	ListNotifications(ctx context.Context, filter NotificationFilter) ([]domain.Notification, int64, error)
	CountUnread(ctx context.Context, companyID string, userID string) (int64, error)
	MarkRead(ctx context.Context, companyID string, userID string, notificationID string, at time.Time) error
	MarkAllRead(ctx context.Context, companyID string, userID string, at time.Time) (int64, error)
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// PerformanceRepository is the engine's own store. Every method honours a
// transaction carried in ctx (see WithTxContext).
type PerformanceRepository interface {
	BranchStore
	TechnicianStore
	LevelStore
	LedgerStore
	PromotionStore
	SkillStore
	NotificationStore
}
