package performance

import (
	"reflect"
	"testing"
)

func candidate(userID string, open, capacity int, points int64, rating *float64) Candidate {
	return NewCandidate(TechnicianProfile{
		UserID:            userID,
		MaxConcurrentJobs: capacity,
		TotalPoints:       points,
		AverageRating:     rating,
	}, nil, nil, open)
}

func ids(candidates []Candidate) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.Profile.UserID)
	}
	return out
}

func rating(v float64) *float64 { return &v }

func TestWorkloadPercent_Bounds(t *testing.T) {
	cases := []struct {
		open, capacity, want int
	}{
		{open: 0, capacity: 5, want: 0},
		{open: 2, capacity: 5, want: 40},
		{open: 1, capacity: 2, want: 50},
		{open: 1, capacity: 3, want: 33},
		{open: 2, capacity: 3, want: 67},
		{open: 5, capacity: 5, want: 100},
		{open: 9, capacity: 2, want: 100},
		{open: 3, capacity: 0, want: 100},
		{open: -1, capacity: 4, want: 0},
	}
	for _, tc := range cases {
		got := WorkloadPercent(tc.open, tc.capacity)
		if got != tc.want {
			t.Fatalf("WorkloadPercent(%d, %d) = %d, want %d", tc.open, tc.capacity, got, tc.want)
		}
		if got < 0 || got > 100 {
			t.Fatalf("WorkloadPercent(%d, %d) = %d out of [0,100]", tc.open, tc.capacity, got)
		}
	}
}

func TestNewCandidate_CanAcceptMore(t *testing.T) {
	if c := candidate("a", 4, 5, 0, nil); !c.CanAcceptMore {
		t.Fatalf("4/5 should accept more")
	}
	if c := candidate("a", 5, 5, 0, nil); c.CanAcceptMore {
		t.Fatalf("5/5 should not accept more")
	}
}

func TestSortCandidates_Workload(t *testing.T) {
	list := []Candidate{
		candidate("B", 1, 2, 0, nil),
		candidate("A", 2, 5, 0, nil),
		candidate("D", 0, 1, 0, nil),
		candidate("C", 0, 3, 0, nil),
	}
	SortCandidates(list, SortByWorkload)
	want := []string{"C", "D", "A", "B"}
	if got := ids(list); !reflect.DeepEqual(got, want) {
		t.Fatalf("workload order = %v, want %v", got, want)
	}
}

func TestSortCandidates_RatingNullsLast(t *testing.T) {
	list := []Candidate{
		candidate("u1", 0, 1, 10, nil),
		candidate("u2", 0, 1, 50, rating(4.2)),
		candidate("u3", 0, 1, 90, rating(4.8)),
		candidate("u4", 0, 1, 70, rating(4.2)),
		candidate("u0", 0, 1, 10, nil),
	}
	SortCandidates(list, SortByRating)
	want := []string{"u3", "u4", "u2", "u0", "u1"}
	if got := ids(list); !reflect.DeepEqual(got, want) {
		t.Fatalf("rating order = %v, want %v", got, want)
	}
}

func TestSortCandidates_PointsDeterministic(t *testing.T) {
	build := func() []Candidate {
		return []Candidate{
			candidate("z", 0, 1, 100, nil),
			candidate("m", 0, 1, 300, nil),
			candidate("a", 0, 1, 100, nil),
			candidate("k", 0, 1, -20, nil),
		}
	}
	first := build()
	SortCandidates(first, SortByPoints)
	second := build()
	second[0], second[3] = second[3], second[0]
	SortCandidates(second, SortByPoints)

	want := []string{"m", "a", "z", "k"}
	if got := ids(first); !reflect.DeepEqual(got, want) {
		t.Fatalf("points order = %v, want %v", got, want)
	}
	if !reflect.DeepEqual(ids(first), ids(second)) {
		t.Fatalf("ordering depends on input order: %v vs %v", ids(first), ids(second))
	}
}

func TestParseSortStrategy(t *testing.T) {
	if got, err := ParseSortStrategy(""); err != nil || got != SortByWorkload {
		t.Fatalf("ParseSortStrategy(\"\") = %q, %v", got, err)
	}
	if got, err := ParseSortStrategy("Rating"); err != nil || got != SortByRating {
		t.Fatalf("ParseSortStrategy(Rating) = %q, %v", got, err)
	}
	if _, err := ParseSortStrategy("distance"); err == nil {
		t.Fatalf("ParseSortStrategy(distance) expected error")
	}
}

func TestParseProficiency(t *testing.T) {
	if got, err := ParseProficiency("expert"); err != nil || got != ProficiencyExpert {
		t.Fatalf("ParseProficiency(expert) = %v, %v", got, err)
	}
	if got, err := ParseProficiency("2"); err != nil || got != ProficiencyIntermediate {
		t.Fatalf("ParseProficiency(2) = %v, %v", got, err)
	}
	if _, err := ParseProficiency("guru"); err == nil {
		t.Fatalf("ParseProficiency(guru) expected error")
	}
}
