package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"techrank/internal/bootstrap"
	"techrank/internal/errs"
	"techrank/internal/infrastructure/persistence/schema"
	"techrank/internal/usecase/performance"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Local job registry table used for open-job counts",
}

var jobsRecordCmd = &cobra.Command{
	Use:   "record <job-id>",
	Short: "Insert or update one job row",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, _ *performance.Service) error {
		company, _ := cmd.Flags().GetString("company")
		branch, _ := cmd.Flags().GetString("branch")
		technician, _ := cmd.Flags().GetString("technician")
		status, _ := cmd.Flags().GetString("status")

		job := schema.ServiceJob{
			ID:        cmd.Flags().Arg(0),
			CompanyID: company,
			BranchID:  branch,
			Status:    status,
		}
		if t := strings.TrimSpace(technician); t != "" {
			job.TechnicianID = &t
		}
		if err := app.Jobs.RecordJob(cmd.Context(), job); err != nil {
			return errs.Wrap(err, "record job")
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "recorded job: %s (%s)\n", job.ID, strings.ToUpper(status)); err != nil {
			return errs.Wrap(err, "write job output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(jobsCmd)
	jobsCmd.AddCommand(jobsRecordCmd)
	jobsRecordCmd.Flags().String("branch", "", "Branch id")
	jobsRecordCmd.Flags().String("technician", "", "Assigned technician")
	jobsRecordCmd.Flags().String("status", "ASSIGNED", "Job status")
	_ = jobsRecordCmd.MarkFlagRequired("branch")
}
