package performance

import "time"

// TechnicianProfile is the engine-owned view of one technician inside one company.
type TechnicianProfile struct {
	UserID                 string
	CompanyID              string
	BranchID               string
	IsAvailable            bool
	MaxConcurrentJobs      int
	TotalPoints            int64
	TotalServicesCompleted int
	AverageRating          *float64
	RatedServices          int
	AvgCompletionHours     *float64
	TimedServices          int
	CurrentLevelID         *string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// Level is one point-range tier of a company ladder. MaxPoints == nil marks the top tier.
type Level struct {
	ID               string
	CompanyID        string
	Name             string
	Code             string
	MinPoints        int64
	MaxPoints        *int64
	PointsMultiplier float64
	IncentivePercent float64
	SortOrder        int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Contains reports whether points fall inside the tier bounds.
func (l Level) Contains(points int64) bool {
	if points < l.MinPoints {
		return false
	}
	return l.MaxPoints == nil || points <= *l.MaxPoints
}

type LedgerEntry struct {
	ID              string
	UserID          string
	CompanyID       string
	Type            EntryType
	Points          int64
	BonusMultiplier float64
	Description     string
	ServiceID       *string
	Actor           string
	CreatedAt       time.Time
}

type PromotionRecord struct {
	ID          string
	UserID      string
	CompanyID   string
	FromLevelID *string
	ToLevelID   string
	PromotedBy  string
	Notes       string
	BonusPoints int64
	CreatedAt   time.Time
}

type Skill struct {
	ID                string
	UserID            string
	CompanyID         string
	ServiceCategoryID string
	Proficiency       Proficiency
	IsVerified        bool
	VerifiedBy        *string
	VerifiedAt        *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type NotificationType string

const (
	NotificationAssigned     NotificationType = "JOB_ASSIGNED"
	NotificationReassigned   NotificationType = "JOB_REASSIGNED"
	NotificationPromotion    NotificationType = "PROMOTION"
	NotificationAnnouncement NotificationType = "ANNOUNCEMENT"
)

type Notification struct {
	ID        string
	UserID    string
	CompanyID string
	Type      NotificationType
	Title     string
	Message   string
	Data      map[string]any
	IsRead    bool
	ReadAt    *time.Time
	CreatedAt time.Time
}

// Branch is a (company, branch) pair the engine ranks technicians in.
type Branch struct {
	CompanyID string
	BranchID  string
	Name      string
	CreatedAt time.Time
}
