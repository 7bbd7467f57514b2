package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	domain "techrank/internal/domain/performance"
	"techrank/internal/errs"
)

func newTable(cmd *cobra.Command) *tabwriter.Writer {
	return tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
}

func writeRow(w io.Writer, cells ...any) error {
	parts := make([]string, 0, len(cells))
	for _, cell := range cells {
		parts = append(parts, fmt.Sprint(cell))
	}
	if _, err := fmt.Fprintln(w, strings.Join(parts, "\t")); err != nil {
		return errs.Wrap(err, "write output")
	}
	return nil
}

func flush(w *tabwriter.Writer) error {
	if err := w.Flush(); err != nil {
		return errs.Wrap(err, "flush output")
	}
	return nil
}

func optionalFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func optionalString(v *string) string {
	if v == nil || *v == "" {
		return "-"
	}
	return *v
}

func maxPointsLabel(level domain.Level) string {
	if level.MaxPoints == nil {
		return "∞"
	}
	return strconv.FormatInt(*level.MaxPoints, 10)
}

func levelLabel(level *domain.Level) string {
	if level == nil {
		return "-"
	}
	return level.Code
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

func writeProfile(cmd *cobra.Command, p domain.TechnicianProfile) error {
	w := newTable(cmd)
	rows := [][]any{
		{"user_id", p.UserID},
		{"company_id", p.CompanyID},
		{"branch_id", p.BranchID},
		{"available", p.IsAvailable},
		{"max_concurrent_jobs", p.MaxConcurrentJobs},
		{"total_points", p.TotalPoints},
		{"services_completed", p.TotalServicesCompleted},
		{"average_rating", optionalFloat(p.AverageRating)},
		{"avg_completion_hours", optionalFloat(p.AvgCompletionHours)},
		{"current_level_id", optionalString(p.CurrentLevelID)},
	}
	for _, row := range rows {
		if err := writeRow(w, row...); err != nil {
			return err
		}
	}
	return flush(w)
}

func writeLevels(cmd *cobra.Command, levels []domain.Level) error {
	w := newTable(cmd)
	if err := writeRow(w, "ORDER", "CODE", "NAME", "MIN", "MAX", "MULTIPLIER", "INCENTIVE%", "ID"); err != nil {
		return err
	}
	for _, l := range levels {
		if err := writeRow(w, l.SortOrder, l.Code, l.Name, l.MinPoints, maxPointsLabel(l), l.PointsMultiplier, l.IncentivePercent, l.ID); err != nil {
			return err
		}
	}
	return flush(w)
}

func writeEntries(cmd *cobra.Command, entries []domain.LedgerEntry) error {
	w := newTable(cmd)
	if err := writeRow(w, "CREATED", "TYPE", "POINTS", "MULTIPLIER", "SERVICE", "ACTOR", "DESCRIPTION"); err != nil {
		return err
	}
	for _, e := range entries {
		if err := writeRow(w, formatTime(e.CreatedAt), e.Type, e.Points, e.BonusMultiplier, optionalString(e.ServiceID), e.Actor, e.Description); err != nil {
			return err
		}
	}
	return flush(w)
}

func writeSkills(cmd *cobra.Command, skills []domain.Skill) error {
	w := newTable(cmd)
	if err := writeRow(w, "ID", "USER", "CATEGORY", "PROFICIENCY", "VERIFIED", "VERIFIED_BY"); err != nil {
		return err
	}
	for _, s := range skills {
		if err := writeRow(w, s.ID, s.UserID, s.ServiceCategoryID, s.Proficiency, s.IsVerified, optionalString(s.VerifiedBy)); err != nil {
			return err
		}
	}
	return flush(w)
}

func writeNotifications(cmd *cobra.Command, items []domain.Notification) error {
	w := newTable(cmd)
	if err := writeRow(w, "CREATED", "ID", "TYPE", "READ", "TITLE", "MESSAGE"); err != nil {
		return err
	}
	for _, n := range items {
		if err := writeRow(w, formatTime(n.CreatedAt), n.ID, n.Type, n.IsRead, n.Title, n.Message); err != nil {
			return err
		}
	}
	return flush(w)
}

// optionalFlag returns nil unless the flag was set explicitly.
func optionalFlag[T any](cmd *cobra.Command, name string, get func(string) (T, error)) (*T, error) {
	if !cmd.Flags().Changed(name) {
		return nil, nil
	}
	v, err := get(name)
	if err != nil {
		return nil, errs.Wrapf(err, "read flag --%s", name)
	}
	return &v, nil
}
