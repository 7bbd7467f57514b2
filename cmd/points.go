package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"techrank/internal/bootstrap"
	domain "techrank/internal/domain/performance"
	"techrank/internal/errs"
	"techrank/internal/usecase/performance"
)

var pointsCmd = &cobra.Command{
	Use:   "points",
	Short: "Points ledger operations",
}

var pointsAwardCmd = &cobra.Command{
	Use:   "award",
	Short: "Award (or penalize) points scaled by the technician's level multiplier",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *performance.Service) error {
		company, _ := cmd.Flags().GetString("company")
		user, _ := cmd.Flags().GetString("user")
		entryType, _ := cmd.Flags().GetString("type")
		base, _ := cmd.Flags().GetFloat64("points")
		service, _ := cmd.Flags().GetString("service")
		description, _ := cmd.Flags().GetString("description")
		actor, _ := cmd.Flags().GetString("actor")

		entry, err := svc.Award(cmd.Context(), performance.AwardInput{
			UserID:      user,
			CompanyID:   company,
			Type:        domain.EntryType(entryType),
			BasePoints:  base,
			ServiceID:   service,
			Description: description,
			Actor:       actor,
		})
		if err != nil {
			return errs.Wrap(err, "award points")
		}
		return writeEntries(cmd, []domain.LedgerEntry{entry})
	}),
}

var pointsAdjustCmd = &cobra.Command{
	Use:   "adjust",
	Short: "Record a manual adjustment without the level multiplier",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *performance.Service) error {
		company, _ := cmd.Flags().GetString("company")
		user, _ := cmd.Flags().GetString("user")
		points, _ := cmd.Flags().GetInt64("points")
		reason, _ := cmd.Flags().GetString("reason")
		actor, _ := cmd.Flags().GetString("actor")

		entry, err := svc.ManualAdjust(cmd.Context(), performance.ManualAdjustInput{
			UserID:     user,
			CompanyID:  company,
			Points:     points,
			Reason:     reason,
			AdjustedBy: actor,
		})
		if err != nil {
			return errs.Wrap(err, "adjust points")
		}
		return writeEntries(cmd, []domain.LedgerEntry{entry})
	}),
}

var pointsJobEventCmd = &cobra.Command{
	Use:   "job-event",
	Short: "Apply the award policy to a completed or delivered job",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *performance.Service) error {
		company, _ := cmd.Flags().GetString("company")
		user, _ := cmd.Flags().GetString("user")
		service, _ := cmd.Flags().GetString("service")
		kind, _ := cmd.Flags().GetString("kind")
		actor, _ := cmd.Flags().GetString("actor")

		rating, err := optionalFlag(cmd, "rating", cmd.Flags().GetFloat64)
		if err != nil {
			return err
		}
		hours, err := optionalFlag(cmd, "hours", cmd.Flags().GetFloat64)
		if err != nil {
			return err
		}

		entries, err := svc.RecordJobEvent(cmd.Context(), performance.JobEventInput{
			UserID:          user,
			CompanyID:       company,
			ServiceID:       service,
			Kind:            kind,
			Rating:          rating,
			CompletionHours: hours,
			Actor:           actor,
		})
		if err != nil {
			return errs.Wrap(err, "record job event")
		}
		return writeEntries(cmd, entries)
	}),
}

var pointsSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show totals, rolling windows and level progress",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *performance.Service) error {
		company, _ := cmd.Flags().GetString("company")
		user, _ := cmd.Flags().GetString("user")

		summary, err := svc.GetPointsSummary(cmd.Context(), company, user)
		if err != nil {
			return errs.Wrap(err, "get points summary")
		}

		w := newTable(cmd)
		rows := [][]any{
			{"total_points", summary.TotalPoints},
			{"last_30_days", summary.MonthlyPoints},
			{"last_7_days", summary.WeeklyPoints},
			{"current_level", levelLabel(summary.CurrentLevel)},
			{"eligible_level", levelLabel(summary.EligibleLevel)},
			{"next_level", levelLabel(summary.NextLevel)},
			{"points_to_next_level", summary.PointsToNextLevel},
		}
		types := make([]string, 0, len(summary.Breakdown))
		for t := range summary.Breakdown {
			types = append(types, string(t))
		}
		sort.Strings(types)
		for _, t := range types {
			rows = append(rows, []any{"30d." + t, summary.Breakdown[domain.EntryType(t)]})
		}
		for _, row := range rows {
			if err := writeRow(w, row...); err != nil {
				return err
			}
		}
		return flush(w)
	}),
}

var pointsHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Page through ledger entries, newest first",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *performance.Service) error {
		company, _ := cmd.Flags().GetString("company")
		user, _ := cmd.Flags().GetString("user")
		page, _ := cmd.Flags().GetInt("page")
		pageSize, _ := cmd.Flags().GetInt("page-size")

		history, err := svc.GetPointsHistory(cmd.Context(), performance.HistoryInput{
			CompanyID: company,
			UserID:    user,
			Page:      page,
			PageSize:  pageSize,
		})
		if err != nil {
			return errs.Wrap(err, "get points history")
		}
		if err := writeEntries(cmd, history.Entries); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "page %d/%d (%d entries)\n", history.Page, history.TotalPages, history.Total); err != nil {
			return errs.Wrap(err, "write history output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(pointsCmd)
	pointsCmd.AddCommand(pointsAwardCmd, pointsAdjustCmd, pointsJobEventCmd, pointsSummaryCmd, pointsHistoryCmd)
	pointsCmd.PersistentFlags().String("user", "", "Technician user id")
	_ = pointsCmd.MarkPersistentFlagRequired("user")

	pointsAwardCmd.Flags().String("type", string(domain.EntryServiceCompleted), "Entry type (SERVICE_COMPLETED|SERVICE_DELIVERED|RATING_BONUS|SPEED_BONUS|PENALTY_LATE|PENALTY_REWORK)")
	pointsAwardCmd.Flags().Float64("points", 0, "Base points before the level multiplier (negative for penalties)")
	pointsAwardCmd.Flags().String("service", "", "Related service id")
	pointsAwardCmd.Flags().String("description", "", "Ledger description")
	pointsAwardCmd.Flags().String("actor", "", "Who awarded the points")

	pointsAdjustCmd.Flags().Int64("points", 0, "Signed adjustment")
	pointsAdjustCmd.Flags().String("reason", "", "Why the adjustment is made")
	pointsAdjustCmd.Flags().String("actor", "", "Administrator making the adjustment")
	_ = pointsAdjustCmd.MarkFlagRequired("reason")
	_ = pointsAdjustCmd.MarkFlagRequired("actor")

	pointsJobEventCmd.Flags().String("service", "", "Service id")
	pointsJobEventCmd.Flags().String("kind", performance.JobCompleted, "completed|delivered")
	pointsJobEventCmd.Flags().Float64("rating", 0, "Customer rating 0-5")
	pointsJobEventCmd.Flags().Float64("hours", 0, "Hours from assignment to completion")
	pointsJobEventCmd.Flags().String("actor", "", "Event source")
	_ = pointsJobEventCmd.MarkFlagRequired("service")

	pointsHistoryCmd.Flags().Int("page", 1, "Page number")
	pointsHistoryCmd.Flags().Int("page-size", 20, "Entries per page (max 100)")
}
