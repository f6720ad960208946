package cli

import (
	"github.com/spf13/cobra"

	"rolefit/internal/common"
	"rolefit/internal/config"
	"rolefit/internal/errors"
	"rolefit/internal/identity"
)

func newHistoryCmd() *cobra.Command {
	var (
		output common.CommandConfig
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "history HANDLE",
		Short: "Show past analyses stored for a handle",
		Long: `Show past analyses stored for a handle, newest first. Handles are
case-insensitive, matching the accounts used by the HTTP server.

Only the redis history backend outlives a single command; the memory
backend starts empty on every run.`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return resolveFormat(cmd, &output)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(_ *config.Config, svc *common.Services, logger *errors.Logger) error {
				if svc.History == nil {
					return errors.NewConfigError(errors.ErrCodeInvalidConfig, "history is disabled", nil)
				}
				records, err := svc.History.List(cmd.Context(), identity.NormalizeHandle(args[0]), limit)
				if err != nil {
					return err
				}
				return common.NewOutputHandler(cmd.OutOrStdout(), logger).HandleOutput(records, output)
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of records (default: all kept)")
	outputFlags(cmd, &output)
	return cmd
}
