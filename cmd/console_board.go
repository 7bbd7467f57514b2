package cmd

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"techrank/internal/bootstrap"
	"techrank/internal/errs"
	"techrank/internal/usecase/performance"
	"techrank/internal/usecase/rankboard"
)

var consoleBoardCmd = &cobra.Command{
	Use:   "board",
	Short: "Live ranking board for dispatching a job",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *performance.Service) error {
		company, _ := cmd.Flags().GetString("company")
		branch, _ := cmd.Flags().GetString("branch")
		category, _ := cmd.Flags().GetString("category")
		sortBy, _ := cmd.Flags().GetString("sort")
		availableOnly, _ := cmd.Flags().GetBool("available-only")
		service, _ := cmd.Flags().GetString("service")
		refreshInterval, _ := cmd.Flags().GetDuration("refresh-interval")
		if refreshInterval <= 0 {
			refreshInterval = 5 * time.Second
		}

		model, err := rankboard.NewBoardModel(cmd.Context(), svc, rankboard.Options{
			CompanyID:       company,
			BranchID:        branch,
			CategoryID:      category,
			SortBy:          sortBy,
			AvailableOnly:   availableOnly,
			ServiceID:       service,
			RefreshInterval: refreshInterval,
		})
		if err != nil {
			return err
		}

		program := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return errs.Wrap(err, "run ranking board")
		}
		return nil
	}),
}

func init() {
	consoleCmd.AddCommand(consoleBoardCmd)
	consoleBoardCmd.Flags().String("branch", "", "Branch id")
	consoleBoardCmd.Flags().String("category", "", "Service category filter")
	consoleBoardCmd.Flags().String("sort", "workload", "Initial sort (workload|rating|points)")
	consoleBoardCmd.Flags().Bool("available-only", false, "Hide unavailable technicians")
	consoleBoardCmd.Flags().String("service", "", "Service to assign with enter")
	consoleBoardCmd.Flags().Duration("refresh-interval", 5*time.Second, "Auto refresh interval")
	_ = consoleBoardCmd.MarkFlagRequired("branch")
}
