package cmd

import (
	"github.com/spf13/cobra"

	"techrank/internal/bootstrap"
	"techrank/internal/errs"
	"techrank/internal/usecase/performance"
)

var technicianCmd = &cobra.Command{
	Use:     "technician",
	Aliases: []string{"tech"},
	Short:   "Manage technician profiles",
}

var technicianCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a technician profile in a branch",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *performance.Service) error {
		company, _ := cmd.Flags().GetString("company")
		user, _ := cmd.Flags().GetString("user")
		branch, _ := cmd.Flags().GetString("branch")
		capacity, _ := cmd.Flags().GetInt("max-jobs")

		profile, err := svc.CreateProfile(cmd.Context(), performance.CreateProfileInput{
			UserID:            user,
			CompanyID:         company,
			BranchID:          branch,
			MaxConcurrentJobs: capacity,
		})
		if err != nil {
			return errs.Wrap(err, "create technician profile")
		}
		return writeProfile(cmd, profile)
	}),
}

var technicianShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a technician profile",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *performance.Service) error {
		company, _ := cmd.Flags().GetString("company")
		user, _ := cmd.Flags().GetString("user")

		profile, err := svc.GetProfile(cmd.Context(), company, user)
		if err != nil {
			return errs.Wrap(err, "get technician profile")
		}
		return writeProfile(cmd, profile)
	}),
}

var technicianUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Change availability, capacity or branch",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *performance.Service) error {
		company, _ := cmd.Flags().GetString("company")
		user, _ := cmd.Flags().GetString("user")

		available, err := optionalFlag(cmd, "available", cmd.Flags().GetBool)
		if err != nil {
			return err
		}
		capacity, err := optionalFlag(cmd, "max-jobs", cmd.Flags().GetInt)
		if err != nil {
			return err
		}
		branch, err := optionalFlag(cmd, "branch", cmd.Flags().GetString)
		if err != nil {
			return err
		}

		profile, err := svc.UpdateProfile(cmd.Context(), performance.UpdateProfileInput{
			UserID:            user,
			CompanyID:         company,
			IsAvailable:       available,
			MaxConcurrentJobs: capacity,
			BranchID:          branch,
		})
		if err != nil {
			return errs.Wrap(err, "update technician profile")
		}
		return writeProfile(cmd, profile)
	}),
}

func init() {
	rootCmd.AddCommand(technicianCmd)
	technicianCmd.AddCommand(technicianCreateCmd, technicianShowCmd, technicianUpdateCmd)
	technicianCmd.PersistentFlags().String("user", "", "Technician user id")
	_ = technicianCmd.MarkPersistentFlagRequired("user")

	technicianCreateCmd.Flags().String("branch", "", "Branch id")
	technicianCreateCmd.Flags().Int("max-jobs", 3, "Maximum concurrent jobs")
	_ = technicianCreateCmd.MarkFlagRequired("branch")

	technicianUpdateCmd.Flags().Bool("available", true, "Accepts new jobs")
	technicianUpdateCmd.Flags().Int("max-jobs", 0, "Maximum concurrent jobs")
	technicianUpdateCmd.Flags().String("branch", "", "Move to branch")
}
