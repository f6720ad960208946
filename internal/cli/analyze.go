package cli

import (
	"context"

	"github.com/spf13/cobra"

	"rolefit/internal/analysis"
	"rolefit/internal/common"
	"rolefit/internal/config"
	"rolefit/internal/errors"
	"rolefit/internal/identity"
)

type analyzeOptions struct {
	branch string
	role   string
	saveAs string
	output common.CommandConfig
}

func newAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze --branch BRANCH --role ROLE [resume-file]",
		Short: "Score a resume against a role",
		Long: `Score a resume (.txt, .md or .pdf) against the required skills of a role.

The report includes:
- Fit score (0-100) and level (Strong >= 75, Medium >= 50, Poor below)
- Matched and missing skills
- Feedback and a learning roadmap for the missing skills
- Rewrite suggestions and ATS tips`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return resolveFormat(cmd, &opts.output)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.branch, "branch", "b", "", "Branch of study, e.g. \"Computer Science\"")
	cmd.Flags().StringVarP(&opts.role, "role", "r", "", "Target role, e.g. \"Software Engineer\"")
	cmd.Flags().StringVar(&opts.saveAs, "save-as", "", "Store the result in history under this handle")
	_ = cmd.MarkFlagRequired("branch")
	_ = cmd.MarkFlagRequired("role")
	outputFlags(cmd, &opts.output)

	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *analyzeOptions, path string) error {
	return withServices(cmd, func(_ *config.Config, svc *common.Services, logger *errors.Logger) error {
		createInput := func(text string) (string, error) {
			return text, nil
		}

		logDetails := func(text string, cc common.CommandConfig) {
			logger.Info("Starting resume analysis",
				"branch", opts.branch,
				"role", opts.role,
				"resume_chars", len(text),
				"output_format", cc.OutputFormat)
		}

		operation := func(ctx context.Context, text string) (*analysis.Record, error) {
			rec, err := svc.Engine.Analyze(ctx, opts.branch, opts.role, text)
			if err != nil {
				return nil, err
			}
			if opts.saveAs == "" {
				return rec, nil
			}
			if svc.History == nil {
				return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "--save-as requires history to be enabled", nil)
			}
			owner := identity.NormalizeHandle(opts.saveAs)
			if err := svc.History.Save(ctx, owner, rec); err != nil {
				return nil, err
			}
			return rec.WithOwner(owner), nil
		}

		out := common.NewOutputHandler(cmd.OutOrStdout(), logger)
		if err := common.RunFileCommand(cmd.Context(), logger, svc.Reader, out, opts.output, path,
			createInput, operation, logDetails); err != nil {
			return err
		}

		logger.Info("Resume analysis completed successfully")
		return nil
	})
}
