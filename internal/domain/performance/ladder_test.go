package performance

import (
	"testing"

	"techrank/internal/errs"
)

func threeTierLadder() []Level {
	return []Level{
		{ID: "l1", Code: "T1", Name: "Tier 1", MinPoints: 0, MaxPoints: bound(4_999), PointsMultiplier: 1, SortOrder: 1},
		{ID: "l2", Code: "T2", Name: "Tier 2", MinPoints: 5_000, MaxPoints: bound(14_999), PointsMultiplier: 1.1, SortOrder: 2},
		{ID: "l3", Code: "T3", Name: "Tier 3", MinPoints: 15_000, PointsMultiplier: 1.2, SortOrder: 3},
	}
}

func TestValidateLadder_AcceptsContiguousLadders(t *testing.T) {
	if err := ValidateLadder(threeTierLadder()); err != nil {
		t.Fatalf("ValidateLadder(three tiers) error = %v", err)
	}
	if err := ValidateLadder(DefaultLadder("c1")); err != nil {
		t.Fatalf("ValidateLadder(DefaultLadder) error = %v", err)
	}
	if err := ValidateLadder(nil); err != nil {
		t.Fatalf("ValidateLadder(nil) error = %v", err)
	}

	shuffled := threeTierLadder()
	shuffled[0], shuffled[2] = shuffled[2], shuffled[0]
	if err := ValidateLadder(shuffled); err != nil {
		t.Fatalf("ValidateLadder(shuffled) error = %v", err)
	}
}

func TestValidateLadder_RejectsBrokenLadders(t *testing.T) {
	cases := []struct {
		name   string
		mutate func([]Level) []Level
		kind   errs.Kind
	}{
		{
			name: "overlap",
			mutate: func(l []Level) []Level {
				l[1].MinPoints = 4_000
				return l
			},
			kind: errs.KindConflict,
		},
		{
			name: "gap",
			mutate: func(l []Level) []Level {
				l[2].MinPoints = 16_000
				return l
			},
			kind: errs.KindConflict,
		},
		{
			name: "first tier not at zero",
			mutate: func(l []Level) []Level {
				l[0].MinPoints = 1
				return l
			},
			kind: errs.KindConflict,
		},
		{
			name: "two unbounded tiers",
			mutate: func(l []Level) []Level {
				l[1].MaxPoints = nil
				return l
			},
			kind: errs.KindConflict,
		},
		{
			name: "no unbounded tier",
			mutate: func(l []Level) []Level {
				l[2].MaxPoints = bound(20_000)
				return l
			},
			kind: errs.KindConflict,
		},
		{
			name: "duplicate code",
			mutate: func(l []Level) []Level {
				l[2].Code = "t1"
				return l
			},
			kind: errs.KindConflict,
		},
		{
			name: "duplicate sort order",
			mutate: func(l []Level) []Level {
				l[2].SortOrder = 2
				return l
			},
			kind: errs.KindConflict,
		},
		{
			name: "max below min",
			mutate: func(l []Level) []Level {
				l[1].MaxPoints = bound(10)
				return l
			},
			kind: errs.KindValidation,
		},
		{
			name: "multiplier below one",
			mutate: func(l []Level) []Level {
				l[1].PointsMultiplier = 0.75
				return l
			},
			kind: errs.KindValidation,
		},
		{
			name: "zero multiplier",
			mutate: func(l []Level) []Level {
				l[0].PointsMultiplier = 0
				return l
			},
			kind: errs.KindValidation,
		},
		{
			name: "negative incentive",
			mutate: func(l []Level) []Level {
				l[0].IncentivePercent = -1
				return l
			},
			kind: errs.KindValidation,
		},
		{
			name: "missing code",
			mutate: func(l []Level) []Level {
				l[0].Code = " "
				return l
			},
			kind: errs.KindValidation,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateLadder(tc.mutate(threeTierLadder()))
			if err == nil {
				t.Fatalf("ValidateLadder() expected error")
			}
			if got := errs.KindOf(err); got != tc.kind {
				t.Fatalf("KindOf(%v) = %q, want %q", err, got, tc.kind)
			}
		})
	}
}

func TestResolveLevelForPoints(t *testing.T) {
	ladder := threeTierLadder()
	cases := []struct {
		points int64
		want   string
	}{
		{points: -50, want: "T1"},
		{points: 0, want: "T1"},
		{points: 4_999, want: "T1"},
		{points: 5_000, want: "T2"},
		{points: 5_049, want: "T2"},
		{points: 14_999, want: "T2"},
		{points: 15_000, want: "T3"},
		{points: 9_000_000, want: "T3"},
	}
	for _, tc := range cases {
		got, ok := ResolveLevelForPoints(ladder, tc.points)
		if !ok {
			t.Fatalf("ResolveLevelForPoints(%d) found nothing", tc.points)
		}
		if got.Code != tc.want {
			t.Fatalf("ResolveLevelForPoints(%d) = %s, want %s", tc.points, got.Code, tc.want)
		}
	}

	if _, ok := ResolveLevelForPoints(nil, 10); ok {
		t.Fatalf("ResolveLevelForPoints(empty) should find nothing")
	}
}

func TestDefaultLadder_Thresholds(t *testing.T) {
	ladder := DefaultLadder("c1")
	wantMins := []int64{0, 5_000, 15_000, 50_000, 100_000, 200_000}
	if len(ladder) != len(wantMins) {
		t.Fatalf("len(DefaultLadder) = %d, want %d", len(ladder), len(wantMins))
	}
	for i, level := range ladder {
		if level.MinPoints != wantMins[i] {
			t.Fatalf("ladder[%d].MinPoints = %d, want %d", i, level.MinPoints, wantMins[i])
		}
		if level.CompanyID != "c1" {
			t.Fatalf("ladder[%d].CompanyID = %q", i, level.CompanyID)
		}
	}
	if ladder[len(ladder)-1].MaxPoints != nil {
		t.Fatalf("top tier should be unbounded")
	}
}
