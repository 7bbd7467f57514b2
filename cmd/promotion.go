package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"techrank/internal/bootstrap"
	"techrank/internal/errs"
	"techrank/internal/usecase/performance"
)

var promotionCmd = &cobra.Command{
	Use:   "promotion",
	Short: "Promotion workflow",
}

var promotionCandidatesCmd = &cobra.Command{
	Use:   "candidates",
	Short: "List technicians whose points reach a higher tier than their current one",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *performance.Service) error {
		company, _ := cmd.Flags().GetString("company")
		candidates, err := svc.GetPromotionCandidates(cmd.Context(), company)
		if err != nil {
			return errs.Wrap(err, "get promotion candidates")
		}

		w := newTable(cmd)
		if err := writeRow(w, "USER", "BRANCH", "POINTS", "CURRENT", "ELIGIBLE"); err != nil {
			return err
		}
		for _, c := range candidates {
			eligible := c.EligibleLevel
			if err := writeRow(w, c.Profile.UserID, c.Profile.BranchID, c.Profile.TotalPoints, levelLabel(c.CurrentLevel), levelLabel(&eligible)); err != nil {
				return err
			}
		}
		return flush(w)
	}),
}

var promotionPromoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Move a technician to a higher tier",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *performance.Service) error {
		company, _ := cmd.Flags().GetString("company")
		user, _ := cmd.Flags().GetString("user")
		level, _ := cmd.Flags().GetString("level")
		by, _ := cmd.Flags().GetString("by")
		notes, _ := cmd.Flags().GetString("notes")
		bonus, _ := cmd.Flags().GetInt64("bonus")

		record, err := svc.Promote(cmd.Context(), performance.PromoteInput{
			UserID:      user,
			CompanyID:   company,
			ToLevelID:   level,
			PromotedBy:  by,
			Notes:       notes,
			BonusPoints: bonus,
		})
		if err != nil {
			return errs.Wrap(err, "promote technician")
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "promoted %s: %s -> %s (bonus %d, record %s)\n",
			record.UserID, optionalString(record.FromLevelID), record.ToLevelID, record.BonusPoints, record.ID); err != nil {
			return errs.Wrap(err, "write promotion output")
		}
		return nil
	}),
}

var promotionHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show a technician's promotions, newest first",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *performance.Service) error {
		company, _ := cmd.Flags().GetString("company")
		user, _ := cmd.Flags().GetString("user")

		records, err := svc.GetPromotionHistory(cmd.Context(), company, user)
		if err != nil {
			return errs.Wrap(err, "get promotion history")
		}
		w := newTable(cmd)
		if err := writeRow(w, "AT", "FROM", "TO", "BY", "BONUS", "NOTES"); err != nil {
			return err
		}
		for _, r := range records {
			if err := writeRow(w, formatTime(r.CreatedAt), optionalString(r.FromLevelID), r.ToLevelID, r.PromotedBy, r.BonusPoints, r.Notes); err != nil {
				return err
			}
		}
		return flush(w)
	}),
}

func init() {
	rootCmd.AddCommand(promotionCmd)
	promotionCmd.AddCommand(promotionCandidatesCmd, promotionPromoteCmd, promotionHistoryCmd)

	for _, c := range []*cobra.Command{promotionPromoteCmd, promotionHistoryCmd} {
		c.Flags().String("user", "", "Technician user id")
		_ = c.MarkFlagRequired("user")
	}
	promotionPromoteCmd.Flags().String("level", "", "Target level id")
	promotionPromoteCmd.Flags().String("by", "", "Administrator approving the promotion")
	promotionPromoteCmd.Flags().String("notes", "", "Free-form notes")
	promotionPromoteCmd.Flags().Int64("bonus", 0, "One-off bonus points")
	_ = promotionPromoteCmd.MarkFlagRequired("level")
	_ = promotionPromoteCmd.MarkFlagRequired("by")
}
