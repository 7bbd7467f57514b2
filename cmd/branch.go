package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"techrank/internal/bootstrap"
	"techrank/internal/errs"
	"techrank/internal/usecase/performance"
)

var branchCmd = &cobra.Command{
	Use:   "branch",
	Short: "Manage the branches technicians are ranked in",
}

var branchRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register or rename a branch",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *performance.Service) error {
		company, _ := cmd.Flags().GetString("company")
		branchID, _ := cmd.Flags().GetString("branch")
		name, _ := cmd.Flags().GetString("name")

		branch, err := svc.RegisterBranch(cmd.Context(), performance.RegisterBranchInput{
			CompanyID: company,
			BranchID:  branchID,
			Name:      name,
		})
		if err != nil {
			return errs.Wrap(err, "register branch")
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "registered branch: %s/%s (%s)\n", branch.CompanyID, branch.BranchID, branch.Name); err != nil {
			return errs.Wrap(err, "write branch output")
		}
		return nil
	}),
}

var branchListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered branches",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *performance.Service) error {
		company, _ := cmd.Flags().GetString("company")

		branches, err := svc.ListBranches(cmd.Context(), company)
		if err != nil {
			return errs.Wrap(err, "list branches")
		}
		w := newTable(cmd)
		if err := writeRow(w, "BRANCH", "NAME", "CREATED"); err != nil {
			return err
		}
		for _, b := range branches {
			if err := writeRow(w, b.BranchID, b.Name, formatTime(b.CreatedAt)); err != nil {
				return err
			}
		}
		return flush(w)
	}),
}

func init() {
	rootCmd.AddCommand(branchCmd)
	branchCmd.AddCommand(branchRegisterCmd, branchListCmd)

	branchRegisterCmd.Flags().String("branch", "", "Branch id")
	branchRegisterCmd.Flags().String("name", "", "Display name (defaults to the id)")
	_ = branchRegisterCmd.MarkFlagRequired("branch")
}
