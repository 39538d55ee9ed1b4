package review

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/compozy/unitgen/cli/cmd"
	"github.com/compozy/unitgen/cli/helpers"
	"github.com/compozy/unitgen/engine/unitconfig"
	"github.com/compozy/unitgen/pkg/jsonio"
	"github.com/compozy/unitgen/pkg/logger"
)

// NewReviewCommand creates the review command
func NewReviewCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "review",
		Short: "Resolve remote procedure tokens in generated unit configs",
		Long: `Replace getPresignedUrl and getMultiplePresignedUrls tokens with presigned URLs
so the generated configs can be previewed. Ordinary tokens are left untouched.`,
		Example: `  unitgen review --input generated.json --output review.json
  unitgen review --input generated.json --policy skip`,
		RunE: executeReviewCommand,
	}
	command.Flags().StringP("input", "i", "", "Generated unit configs (a JSON array)")
	command.Flags().StringP("output", "o", helpers.StdoutPath, "Output file, '-' for stdout")
	command.Flags().String("policy", "", "Remote failure policy: fail or skip")
	command.Flags().String("provider", "", "Presign provider: s3, http or none")
	return command
}

func executeReviewCommand(cobraCmd *cobra.Command, args []string) error {
	return cmd.ExecuteCommand(cobraCmd, runReview, args)
}

func runReview(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	if err := cmd.ValidateRequiredFlags(cobraCmd, []string{"input"}); err != nil {
		return err
	}
	input, _ := cobraCmd.Flags().GetString("input")
	output, _ := cobraCmd.Flags().GetString("output")
	policy, _ := cobraCmd.Flags().GetString("policy")

	configs, err := readGenerated(executor, input)
	if err != nil {
		return err
	}
	r, err := executor.ProcedureResolver(ctx, policy)
	if err != nil {
		return err
	}
	result, err := r.Resolve(ctx, configs)
	if err != nil {
		return err
	}
	log := logger.FromContext(ctx)
	for _, failure := range result.Failures {
		log.Warn("Remote procedure left unresolved", "error", failure)
	}
	if err := helpers.WriteJSON(executor.Fs(), cobraCmd.OutOrStdout(), output, result.Configs); err != nil {
		return err
	}
	if output != helpers.StdoutPath && output != "" {
		fmt.Fprintf(cobraCmd.OutOrStdout(), "Resolved %d unit config(s) into %s (%d unresolved)\n",
			len(result.Configs), output, len(result.Failures))
	}
	return nil
}

func readGenerated(executor *cmd.CommandExecutor, path string) (unitconfig.GeneratedConfig, error) {
	raw, err := jsonio.ReadFile(executor.Fs(), path)
	if err != nil {
		return nil, err
	}
	list, ok := unitconfig.AsList(raw)
	if !ok {
		return nil, helpers.NewCliError(helpers.CodeInvalidConfig, "Generated unit configs must be a JSON array", path)
	}
	configs := make(unitconfig.GeneratedConfig, 0, len(list))
	for i, item := range list {
		config, ok := unitconfig.AsUnitConfig(item)
		if !ok {
			return nil, helpers.NewCliError(helpers.CodeInvalidConfig,
				fmt.Sprintf("Generated unit config #%d must be a JSON object", i), path)
		}
		configs = append(configs, config)
	}
	return configs, nil
}
