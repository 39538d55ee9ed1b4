package permute

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/compozy/unitgen/cli/cmd"
	"github.com/compozy/unitgen/cli/helpers"
	"github.com/compozy/unitgen/engine/unitconfig"
	"github.com/compozy/unitgen/pkg/jsonio"
	"github.com/compozy/unitgen/pkg/tokensets"
)

const DefaultSeparateTokenValues = "separate_token_values_config.json"

// NewPermuteCommand creates the permute command
func NewPermuteCommand() *cobra.Command {
	command := &cobra.Command{
		Use:     "permute",
		Short:   "Build token sets values from every combination of separate token values",
		Example: `  unitgen permute --separate-token-values values.json --output token_sets_values_config.json`,
		RunE:    executePermuteCommand,
	}
	command.Flags().String("separate-token-values", DefaultSeparateTokenValues, "Separate token values config")
	command.Flags().StringP("output", "o", helpers.StdoutPath, "Output file, '-' for stdout")
	command.Flags().String("data-dir", "", "Directory holding the inputs")
	return command
}

func executePermuteCommand(cobraCmd *cobra.Command, args []string) error {
	return cmd.ExecuteCommand(cobraCmd, runPermute, args)
}

func runPermute(_ context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	input := cmd.InputPath(cobraCmd, "separate-token-values", executor.Config().Generator.DataDir)
	output, _ := cobraCmd.Flags().GetString("output")
	raw, err := jsonio.ReadFile(executor.Fs(), input)
	if err != nil {
		return err
	}
	values, problems := tokensets.Validate(raw)
	if len(problems) > 0 {
		report := unitconfig.NewReport()
		report.AddAll(unitconfig.CategoryShape, "separate token values config", problems)
		return report.Err()
	}
	sets := tokensets.Permute(values)
	if err := helpers.WriteJSON(executor.Fs(), cobraCmd.OutOrStdout(), output, sets); err != nil {
		return err
	}
	if output != helpers.StdoutPath && output != "" {
		fmt.Fprintf(cobraCmd.OutOrStdout(), "Wrote %d token set(s) into %s\n", len(sets), output)
	}
	return nil
}
