package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"rolefit/internal/common"
	"rolefit/internal/config"
	"rolefit/internal/errors"
)

type configKeyType struct{}
type loggerKeyType struct{}

var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rolefit",
		Short: "Score how well a resume fits a role",
		Long: `rolefit scores a resume against the required skills of a role drawn from
a branch -> role -> skills taxonomy. It reports the matched and missing
skills, a Strong/Medium/Poor fit level, a learning roadmap, rewrite
suggestions and ATS tips. It can also serve the same analysis over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newBranchesCmd())
	rootCmd.AddCommand(newRolesCmd())
	rootCmd.AddCommand(newSkillsCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// Execute runs the command line with cfg and logger available to every
// subcommand.
func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger) error {
	return NewRootCmd().ExecuteContext(withDependencies(ctx, cfg, logger))
}

func withDependencies(ctx context.Context, cfg *config.Config, logger *errors.Logger) context.Context {
	ctx = context.WithValue(ctx, configKey, cfg)
	return context.WithValue(ctx, loggerKey, logger)
}

func getConfigFromContext(ctx context.Context) (*config.Config, error) {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok && cfg != nil {
		return cfg, nil
	}
	return nil, fmt.Errorf("config not found in context")
}

func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok && logger != nil {
		return logger
	}
	return errors.Nop()
}

// outputFlags registers --output and --format on cmd.
func outputFlags(cmd *cobra.Command, cc *common.CommandConfig) {
	cmd.Flags().StringVarP(&cc.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&cc.OutputFormat, "format", "", "Output format: json, text, or markdown")

	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		return cfg.App.SupportedFormats, cobra.ShellCompDirectiveNoFileComp
	})
}

// resolveFormat fills in the configured default format and validates it.
func resolveFormat(cmd *cobra.Command, cc *common.CommandConfig) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	format, err := common.ResolveOutputFormat(cc.OutputFormat, cfg.App)
	if err != nil {
		return err
	}
	cc.OutputFormat = format
	return nil
}

// withServices builds the collaborators for one command run and releases
// them afterwards.
func withServices(cmd *cobra.Command, fn func(cfg *config.Config, svc *common.Services, logger *errors.Logger) error) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	logger := getLoggerFromContext(cmd.Context())

	svc, err := common.NewServices(cfg, logger, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Warn("Failed to release services", "error", err)
		}
	}()

	return fn(cfg, svc, logger)
}
