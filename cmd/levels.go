package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"techrank/internal/bootstrap"
	"techrank/internal/errs"
	"techrank/internal/usecase/performance"
)

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "Manage the company level ladder",
}

var levelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tiers in ladder order",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *performance.Service) error {
		company, _ := cmd.Flags().GetString("company")
		levels, err := svc.ListLevels(cmd.Context(), company)
		if err != nil {
			return errs.Wrap(err, "list levels")
		}
		return writeLevels(cmd, levels)
	}),
}

var levelsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Add one tier to the ladder",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *performance.Service) error {
		company, _ := cmd.Flags().GetString("company")
		input := performance.CreateLevelInput{CompanyID: company}
		input.Name, _ = cmd.Flags().GetString("name")
		input.Code, _ = cmd.Flags().GetString("code")
		input.MinPoints, _ = cmd.Flags().GetInt64("min-points")
		input.PointsMultiplier, _ = cmd.Flags().GetFloat64("multiplier")
		input.IncentivePercent, _ = cmd.Flags().GetFloat64("incentive")
		input.SortOrder, _ = cmd.Flags().GetInt("sort-order")

		maxPoints, err := optionalFlag(cmd, "max-points", cmd.Flags().GetInt64)
		if err != nil {
			return err
		}
		input.MaxPoints = maxPoints

		level, err := svc.CreateLevel(cmd.Context(), input)
		if err != nil {
			return errs.Wrap(err, "create level")
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "created level: %s (%s)\n", level.ID, level.Code); err != nil {
			return errs.Wrap(err, "write level output")
		}
		return nil
	}),
}

var levelsUpdateCmd = &cobra.Command{
	Use:   "update <level-id>",
	Short: "Change fields of one tier",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *performance.Service) error {
		company, _ := cmd.Flags().GetString("company")
		input := performance.UpdateLevelInput{CompanyID: company, LevelID: cmd.Flags().Arg(0)}
		input.ClearMaxPoints, _ = cmd.Flags().GetBool("unbounded")

		var err error
		if input.Name, err = optionalFlag(cmd, "name", cmd.Flags().GetString); err != nil {
			return err
		}
		if input.Code, err = optionalFlag(cmd, "code", cmd.Flags().GetString); err != nil {
			return err
		}
		if input.MinPoints, err = optionalFlag(cmd, "min-points", cmd.Flags().GetInt64); err != nil {
			return err
		}
		if input.MaxPoints, err = optionalFlag(cmd, "max-points", cmd.Flags().GetInt64); err != nil {
			return err
		}
		if input.PointsMultiplier, err = optionalFlag(cmd, "multiplier", cmd.Flags().GetFloat64); err != nil {
			return err
		}
		if input.IncentivePercent, err = optionalFlag(cmd, "incentive", cmd.Flags().GetFloat64); err != nil {
			return err
		}
		if input.SortOrder, err = optionalFlag(cmd, "sort-order", cmd.Flags().GetInt); err != nil {
			return err
		}

		level, err := svc.UpdateLevel(cmd.Context(), input)
		if err != nil {
			return errs.Wrap(err, "update level")
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "updated level: %s (%s)\n", level.ID, level.Code); err != nil {
			return errs.Wrap(err, "write level output")
		}
		return nil
	}),
}

var levelsDeleteCmd = &cobra.Command{
	Use:   "delete <level-id>",
	Short: "Delete a tier no technician is on",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *performance.Service) error {
		company, _ := cmd.Flags().GetString("company")
		if err := svc.DeleteLevel(cmd.Context(), company, cmd.Flags().Arg(0)); err != nil {
			return errs.Wrap(err, "delete level")
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted level: %s\n", cmd.Flags().Arg(0)); err != nil {
			return errs.Wrap(err, "write level output")
		}
		return nil
	}),
}

var levelsInitCmd = &cobra.Command{
	Use:   "init-defaults",
	Short: "Seed the default ladder when the company has none",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *performance.Service) error {
		company, _ := cmd.Flags().GetString("company")
		levels, created, err := svc.InitializeDefaults(cmd.Context(), company)
		if err != nil {
			return errs.Wrap(err, "initialize default levels")
		}
		if !created {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), "ladder already configured; nothing seeded"); err != nil {
				return errs.Wrap(err, "write level output")
			}
		}
		return writeLevels(cmd, levels)
	}),
}

var levelsResolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Show which tier a point total falls into",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *performance.Service) error {
		company, _ := cmd.Flags().GetString("company")
		points, _ := cmd.Flags().GetInt64("points")
		level, err := svc.ResolveLevelForPoints(cmd.Context(), company, points)
		if err != nil {
			return errs.Wrap(err, "resolve level")
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%d points: %s\n", points, levelLabel(&level)); err != nil {
			return errs.Wrap(err, "write level output")
		}
		return nil
	}),
}

type ladderFile struct {
	Levels []struct {
		Name             string  `toml:"name" yaml:"name"`
		Code             string  `toml:"code" yaml:"code"`
		MinPoints        int64   `toml:"min_points" yaml:"min_points"`
		MaxPoints        *int64  `toml:"max_points" yaml:"max_points"`
		PointsMultiplier float64 `toml:"points_multiplier" yaml:"points_multiplier"`
		IncentivePercent float64 `toml:"incentive_percent" yaml:"incentive_percent"`
		SortOrder        int     `toml:"sort_order" yaml:"sort_order"`
	} `toml:"levels" yaml:"levels"`
}

// readLadderFile decodes YAML for .yaml/.yml files and TOML otherwise.
func readLadderFile(path string) (performance.SetLadderInput, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return performance.SetLadderInput{}, errs.Wrapf(err, "read ladder file %q", path)
	}

	var file ladderFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &file)
	default:
		err = toml.Unmarshal(raw, &file)
	}
	if err != nil {
		return performance.SetLadderInput{}, errs.Validationf("parse ladder file %q: %v", path, err)
	}

	var input performance.SetLadderInput
	for _, l := range file.Levels {
		input.Levels = append(input.Levels, performance.LevelInput{
			Name:             l.Name,
			Code:             l.Code,
			MinPoints:        l.MinPoints,
			MaxPoints:        l.MaxPoints,
			PointsMultiplier: l.PointsMultiplier,
			IncentivePercent: l.IncentivePercent,
			SortOrder:        l.SortOrder,
		})
	}
	return input, nil
}

var levelsSetCmd = &cobra.Command{
	Use:   "set <ladder.toml|ladder.yaml>",
	Short: "Replace the whole ladder from a TOML or YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *performance.Service) error {
		input, err := readLadderFile(cmd.Flags().Arg(0))
		if err != nil {
			return err
		}
		input.CompanyID, _ = cmd.Flags().GetString("company")

		levels, err := svc.SetLadder(cmd.Context(), input)
		if err != nil {
			return errs.Wrap(err, "set ladder")
		}
		return writeLevels(cmd, levels)
	}),
}

func init() {
	rootCmd.AddCommand(levelsCmd)
	levelsCmd.AddCommand(levelsListCmd, levelsCreateCmd, levelsUpdateCmd, levelsDeleteCmd, levelsInitCmd, levelsResolveCmd, levelsSetCmd)

	for _, c := range []*cobra.Command{levelsCreateCmd, levelsUpdateCmd} {
		c.Flags().String("name", "", "Tier name")
		c.Flags().String("code", "", "Unique tier code")
		c.Flags().Int64("min-points", 0, "Inclusive lower bound")
		c.Flags().Int64("max-points", 0, "Inclusive upper bound (omit for unbounded)")
		c.Flags().Float64("multiplier", 1, "Points multiplier")
		c.Flags().Float64("incentive", 0, "Incentive percent")
		c.Flags().Int("sort-order", 0, "Ladder position")
	}
	_ = levelsCreateCmd.MarkFlagRequired("name")
	_ = levelsCreateCmd.MarkFlagRequired("code")
	levelsUpdateCmd.Flags().Bool("unbounded", false, "Clear the upper bound")

	levelsResolveCmd.Flags().Int64("points", 0, "Point total")
}
