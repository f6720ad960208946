package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"rolefit/internal/common"
	"rolefit/internal/config"
	"rolefit/internal/errors"
	"rolefit/internal/formatters"
)

func newBranchesCmd() *cobra.Command {
	var output common.CommandConfig
	cmd := &cobra.Command{
		Use:   "branches",
		Short: "List the branches in the taxonomy",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return resolveFormat(cmd, &output)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd, func(_ *config.Config, svc *common.Services, logger *errors.Logger) error {
				listing := formatters.Listing{
					Title: "Branches",
					Items: svc.Taxonomy.Current().ListBranches(),
				}
				return common.NewOutputHandler(cmd.OutOrStdout(), logger).HandleOutput(listing, output)
			})
		},
	}
	outputFlags(cmd, &output)
	return cmd
}

func newRolesCmd() *cobra.Command {
	var output common.CommandConfig
	cmd := &cobra.Command{
		Use:   "roles BRANCH",
		Short: "List the roles of a branch",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return resolveFormat(cmd, &output)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(_ *config.Config, svc *common.Services, logger *errors.Logger) error {
				roles, err := svc.Taxonomy.Current().ListRoles(args[0])
				if err != nil {
					return err
				}
				listing := formatters.Listing{Title: fmt.Sprintf("Roles in %s", args[0]), Items: roles}
				return common.NewOutputHandler(cmd.OutOrStdout(), logger).HandleOutput(listing, output)
			})
		},
	}
	outputFlags(cmd, &output)
	return cmd
}

func newSkillsCmd() *cobra.Command {
	var output common.CommandConfig
	cmd := &cobra.Command{
		Use:   "skills BRANCH ROLE",
		Short: "List the required skills of a role",
		Args:  cobra.ExactArgs(2),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return resolveFormat(cmd, &output)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(_ *config.Config, svc *common.Services, logger *errors.Logger) error {
				profile, err := svc.Taxonomy.Current().Profile(args[0], args[1])
				if err != nil {
					return err
				}
				listing := formatters.Listing{
					Title: fmt.Sprintf("%s / %s", profile.Branch, profile.Role),
					Items: profile.Skills,
				}
				return common.NewOutputHandler(cmd.OutOrStdout(), logger).HandleOutput(listing, output)
			})
		},
	}
	outputFlags(cmd, &output)
	return cmd
}
