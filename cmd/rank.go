package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"techrank/internal/bootstrap"
	"techrank/internal/errs"
	"techrank/internal/usecase/performance"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank a branch's technicians for a job assignment",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *performance.Service) error {
		company, _ := cmd.Flags().GetString("company")
		branch, _ := cmd.Flags().GetString("branch")
		category, _ := cmd.Flags().GetString("category")
		sortBy, _ := cmd.Flags().GetString("sort")
		availableOnly, _ := cmd.Flags().GetBool("available-only")

		candidates, err := svc.GetCandidates(cmd.Context(), performance.CandidateQuery{
			CompanyID:     company,
			BranchID:      branch,
			CategoryID:    category,
			AvailableOnly: availableOnly,
			SortBy:        sortBy,
		})
		if err != nil {
			return errs.Wrap(err, "rank candidates")
		}

		w := newTable(cmd)
		if err := writeRow(w, "#", "USER", "LEVEL", "POINTS", "RATING", "OPEN", "LOAD", "ACCEPTS", "SKILLS"); err != nil {
			return err
		}
		for i, c := range candidates {
			skills := make([]string, 0, len(c.Skills))
			for _, s := range c.Skills {
				skills = append(skills, s.ServiceCategoryID+":"+s.Proficiency.String())
			}
			if err := writeRow(w,
				i+1,
				c.Profile.UserID,
				levelLabel(c.Level),
				c.Profile.TotalPoints,
				optionalFloat(c.Profile.AverageRating),
				c.OpenJobs,
				c.WorkloadPercent,
				c.CanAcceptMore,
				strings.Join(skills, ","),
			); err != nil {
				return err
			}
		}
		return flush(w)
	}),
}

func init() {
	rootCmd.AddCommand(rankCmd)
	rankCmd.Flags().String("branch", "", "Branch id")
	rankCmd.Flags().String("category", "", "Only technicians skilled in this service category")
	rankCmd.Flags().String("sort", "workload", "workload|rating|points")
	rankCmd.Flags().Bool("available-only", false, "Exclude technicians marked unavailable")
	_ = rankCmd.MarkFlagRequired("branch")
}
