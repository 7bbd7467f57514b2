package performance

import (
	"sort"
	"strings"

	"techrank/internal/errs"
)

type SortStrategy string

const (
	SortByWorkload SortStrategy = "workload"
	SortByRating   SortStrategy = "rating"
	SortByPoints   SortStrategy = "points"
)

// ParseSortStrategy defaults to workload when raw is empty.
func ParseSortStrategy(raw string) (SortStrategy, error) {
	switch SortStrategy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", SortByWorkload:
		return SortByWorkload, nil
	case SortByRating:
		return SortByRating, nil
	case SortByPoints:
		return SortByPoints, nil
	default:
		return "", errs.Validationf("unknown sort strategy %q (want workload|rating|points)", raw)
	}
}

// Candidate is one ranked technician with live workload.
type Candidate struct {
	Profile         TechnicianProfile
	Level           *Level
	Skills          []Skill
	OpenJobs        int
	WorkloadPercent int
	CanAcceptMore   bool
}

// NewCandidate derives the workload fields from openJobs and the profile capacity.
func NewCandidate(profile TechnicianProfile, level *Level, skills []Skill, openJobs int) Candidate {
	if openJobs < 0 {
		openJobs = 0
	}
	return Candidate{
		Profile:         profile,
		Level:           level,
		Skills:          skills,
		OpenJobs:        openJobs,
		WorkloadPercent: WorkloadPercent(openJobs, profile.MaxConcurrentJobs),
		CanAcceptMore:   openJobs < profile.MaxConcurrentJobs,
	}
}

// WorkloadPercent is min(100, round(open/capacity*100)), never below 0.
func WorkloadPercent(openJobs int, capacity int) int {
	if openJobs <= 0 {
		return 0
	}
	if capacity <= 0 {
		return 100
	}
	pct := (openJobs*200 + capacity) / (2 * capacity)
	if pct > 100 {
		return 100
	}
	return pct
}

// SortCandidates orders candidates in place; every strategy ends in a total order.
func SortCandidates(candidates []Candidate, by SortStrategy) {
	var less func(a, b Candidate) bool
	switch by {
	case SortByRating:
		less = lessByRating
	case SortByPoints:
		less = lessByPoints
	default:
		less = lessByWorkload
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return less(candidates[i], candidates[j])
	})
}

func lessByWorkload(a, b Candidate) bool {
	// Cross-multiplied to compare open/capacity ratios without floats.
	left := int64(a.OpenJobs) * int64(maxInt(b.Profile.MaxConcurrentJobs, 1))
	right := int64(b.OpenJobs) * int64(maxInt(a.Profile.MaxConcurrentJobs, 1))
	if left != right {
		return left < right
	}
	return a.Profile.UserID < b.Profile.UserID
}

func lessByRating(a, b Candidate) bool {
	ra, rb := a.Profile.AverageRating, b.Profile.AverageRating
	switch {
	case ra != nil && rb == nil:
		return true
	case ra == nil && rb != nil:
		return false
	case ra != nil && rb != nil && *ra != *rb:
		return *ra > *rb
	}
	if a.Profile.TotalPoints != b.Profile.TotalPoints {
		return a.Profile.TotalPoints > b.Profile.TotalPoints
	}
	return a.Profile.UserID < b.Profile.UserID
}

func lessByPoints(a, b Candidate) bool {
	if a.Profile.TotalPoints != b.Profile.TotalPoints {
		return a.Profile.TotalPoints > b.Profile.TotalPoints
	}
	return a.Profile.UserID < b.Profile.UserID
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
