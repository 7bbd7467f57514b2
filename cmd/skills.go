package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"techrank/internal/bootstrap"
	domain "techrank/internal/domain/performance"
	"techrank/internal/errs"
	"techrank/internal/usecase/performance"
)

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "Technician skill registry",
}

var skillsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a service category for a technician",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *performance.Service) error {
		company, _ := cmd.Flags().GetString("company")
		user, _ := cmd.Flags().GetString("user")
		category, _ := cmd.Flags().GetString("category")
		rawProficiency, _ := cmd.Flags().GetString("proficiency")
		verifiedBy, _ := cmd.Flags().GetString("verified-by")

		proficiency, err := domain.ParseProficiency(rawProficiency)
		if err != nil {
			return err
		}
		skill, err := svc.AddSkill(cmd.Context(), performance.AddSkillInput{
			UserID:            user,
			CompanyID:         company,
			ServiceCategoryID: category,
			Proficiency:       proficiency,
			VerifiedBy:        verifiedBy,
		})
		if err != nil {
			return errs.Wrap(err, "add skill")
		}
		return writeSkills(cmd, []domain.Skill{skill})
	}),
}

var skillsUpdateCmd = &cobra.Command{
	Use:   "update <skill-id>",
	Short: "Change proficiency or verify a skill",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *performance.Service) error {
		company, _ := cmd.Flags().GetString("company")
		verifiedBy, _ := cmd.Flags().GetString("verified-by")
		input := performance.UpdateSkillInput{
			SkillID:    cmd.Flags().Arg(0),
			CompanyID:  company,
			Verify:     verifiedBy != "",
			VerifiedBy: verifiedBy,
		}
		if cmd.Flags().Changed("proficiency") {
			raw, _ := cmd.Flags().GetString("proficiency")
			p, err := domain.ParseProficiency(raw)
			if err != nil {
				return err
			}
			input.Proficiency = &p
		}

		skill, err := svc.UpdateSkill(cmd.Context(), input)
		if err != nil {
			return errs.Wrap(err, "update skill")
		}
		return writeSkills(cmd, []domain.Skill{skill})
	}),
}

var skillsRemoveCmd = &cobra.Command{
	Use:   "remove <skill-id>",
	Short: "Remove a skill",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *performance.Service) error {
		company, _ := cmd.Flags().GetString("company")
		if err := svc.RemoveSkill(cmd.Context(), company, cmd.Flags().Arg(0)); err != nil {
			return errs.Wrap(err, "remove skill")
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "removed skill: %s\n", cmd.Flags().Arg(0)); err != nil {
			return errs.Wrap(err, "write skill output")
		}
		return nil
	}),
}

var skillsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a technician's skills",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *performance.Service) error {
		company, _ := cmd.Flags().GetString("company")
		user, _ := cmd.Flags().GetString("user")
		skills, err := svc.ListSkills(cmd.Context(), company, user)
		if err != nil {
			return errs.Wrap(err, "list skills")
		}
		return writeSkills(cmd, skills)
	}),
}

func init() {
	rootCmd.AddCommand(skillsCmd)
	skillsCmd.AddCommand(skillsAddCmd, skillsUpdateCmd, skillsRemoveCmd, skillsListCmd)

	for _, c := range []*cobra.Command{skillsAddCmd, skillsListCmd} {
		c.Flags().String("user", "", "Technician user id")
		_ = c.MarkFlagRequired("user")
	}
	skillsAddCmd.Flags().String("category", "", "Service category id")
	skillsAddCmd.Flags().String("proficiency", "beginner", "beginner|intermediate|advanced|expert or 1-4")
	skillsAddCmd.Flags().String("verified-by", "", "Verifier; marks the skill verified")
	_ = skillsAddCmd.MarkFlagRequired("category")

	skillsUpdateCmd.Flags().String("proficiency", "", "New proficiency")
	skillsUpdateCmd.Flags().String("verified-by", "", "Verify the skill as this user")
}
