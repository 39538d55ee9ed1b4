package verify

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/compozy/unitgen/cli/cmd"
	"github.com/compozy/unitgen/cli/helpers"
	"github.com/compozy/unitgen/engine/combiner"
	"github.com/compozy/unitgen/engine/unitconfig"
)

const (
	DefaultTaskData            = "task_data.json"
	DefaultUnitConfig          = "unit_config.json"
	DefaultTokenSets           = "token_sets_values_config.json"
	DefaultSeparateTokenValues = "separate_token_values_config.json"
)

// NewVerifyCommand creates the verify command
func NewVerifyCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "verify",
		Short: "Validate task data, the unit config and token sets without generating anything",
		Long: `Check every input document that exists and print all problems grouped by category.
Missing documents are skipped, except the task data file with --task-data-only.`,
		RunE: executeVerifyCommand,
	}
	command.Flags().String("task-data", DefaultTaskData, "Task data config")
	command.Flags().String("unit-config", DefaultUnitConfig, "Unit config template")
	command.Flags().String("token-sets", DefaultTokenSets, "Token sets values config")
	command.Flags().String("separate-token-values", DefaultSeparateTokenValues, "Separate token values config")
	command.Flags().String("data-dir", "", "Directory holding inputs and inlined files")
	command.Flags().Bool("task-data-only", false, "Only verify the task data config")
	return command
}

func executeVerifyCommand(cobraCmd *cobra.Command, args []string) error {
	return cmd.ExecuteCommand(cobraCmd, runVerify, args)
}

func runVerify(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	dataDir := executor.Config().Generator.DataDir
	taskDataOnly, err := cobraCmd.Flags().GetBool("task-data-only")
	if err != nil {
		return err
	}
	c, err := executor.Combiner()
	if err != nil {
		return err
	}
	report := c.Verify(ctx, combiner.VerifyInput{
		TaskData:            cmd.InputPath(cobraCmd, "task-data", dataDir),
		UnitConfig:          cmd.InputPath(cobraCmd, "unit-config", dataDir),
		TokenSets:           cmd.InputPath(cobraCmd, "token-sets", dataDir),
		SeparateTokenValues: cmd.InputPath(cobraCmd, "separate-token-values", dataDir),
		DataDir:             dataDir,
		TaskDataOnly:        taskDataOnly,
	})
	if executor.Mode() == helpers.ModeJSON {
		if err := helpers.WriteJSON(executor.Fs(), cobraCmd.OutOrStdout(), helpers.StdoutPath, reportJSON(report)); err != nil {
			return err
		}
		if !report.Valid() {
			return helpers.NewCliError(helpers.CodeInvalidConfig, "Configuration is invalid")
		}
		return nil
	}
	if report.Valid() {
		fmt.Fprintln(cobraCmd.OutOrStdout(), helpers.RenderReport(report, helpers.ShouldUseColor(cobraCmd.OutOrStdout())))
		return nil
	}
	return report.Err()
}

func reportJSON(report *unitconfig.Report) map[string]any {
	problems := make([]any, 0, len(report.Problems))
	for _, p := range report.Problems {
		problems = append(problems, map[string]any{
			"category": string(p.Category),
			"source":   p.Source,
			"message":  p.Message,
		})
	}
	return map[string]any{
		"valid":          report.Valid(),
		"problems":       problems,
		"overspecified":  nonNil(report.Overspecified),
		"underspecified": nonNil(report.Underspecified),
	}
}

func nonNil(names []string) []string {
	if names == nil {
		return []string{}
	}
	return names
}
