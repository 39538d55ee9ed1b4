package generate

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/compozy/unitgen/cli/cmd"
	"github.com/compozy/unitgen/cli/helpers"
	"github.com/compozy/unitgen/engine/combiner"
	"github.com/compozy/unitgen/engine/unitconfig"
	"github.com/compozy/unitgen/pkg/logger"
	"github.com/compozy/unitgen/pkg/watch"
)

const (
	DefaultUnitConfig = "unit_config.json"
	DefaultTokenSets  = "token_sets_values_config.json"
)

// NewGenerateCommand creates the generate command
func NewGenerateCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "generate",
		Short: "Expand a unit config template into one variant per token set",
		Long: `Read the unit config template and the token sets values config, validate both,
and write the generated list of unit configs. File references inside token-supporting
attributes are inlined when --data-dir is set.`,
		Example: `  unitgen generate --data-dir ./task --output ./task/generated.json
  unitgen generate --unit-config form.json --token-sets sets.json --generator form_composer`,
		RunE: executeGenerateCommand,
	}
	command.Flags().String("unit-config", DefaultUnitConfig, "Unit config template")
	command.Flags().String("token-sets", DefaultTokenSets, "Token sets values config")
	command.Flags().StringP("output", "o", helpers.StdoutPath, "Output file, '-' for stdout")
	command.Flags().String("data-dir", "", "Directory holding inputs and inlined files")
	command.Flags().Int("workers", 0, "Number of token sets expanded in parallel")
	command.Flags().Bool("watch", false, "Regenerate whenever an input changes")
	return command
}

func executeGenerateCommand(cobraCmd *cobra.Command, args []string) error {
	return cmd.ExecuteCommand(cobraCmd, runGenerate, args)
}

func runGenerate(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	dataDir := executor.Config().Generator.DataDir
	output, err := cobraCmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	paths := combiner.Paths{
		UnitConfig:      cmd.InputPath(cobraCmd, "unit-config", dataDir),
		TokenSetsValues: cmd.InputPath(cobraCmd, "token-sets", dataDir),
		DataDir:         dataDir,
	}
	if output != helpers.StdoutPath {
		paths.Output = output
	}
	c, err := executor.Combiner()
	if err != nil {
		return err
	}
	run := func() error {
		generated, err := c.Combine(ctx, paths)
		if err != nil {
			return err
		}
		return report(cobraCmd, executor, generated, paths.Output)
	}
	if err := run(); err != nil {
		return err
	}
	if shouldWatch, _ := cobraCmd.Flags().GetBool("watch"); shouldWatch {
		return watchInputs(ctx, paths, run)
	}
	return nil
}

func report(cobraCmd *cobra.Command, executor *cmd.CommandExecutor, generated unitconfig.GeneratedConfig, output string) error {
	if output == "" {
		return helpers.WriteJSON(executor.Fs(), cobraCmd.OutOrStdout(), helpers.StdoutPath, generated)
	}
	if executor.Mode() == helpers.ModeJSON {
		return helpers.WriteJSON(executor.Fs(), cobraCmd.OutOrStdout(), helpers.StdoutPath, map[string]any{
			"output":   output,
			"variants": len(generated),
		})
	}
	fmt.Fprintf(cobraCmd.OutOrStdout(), "Generated %d unit config(s) into %s\n", len(generated), output)
	return nil
}

func watchInputs(ctx context.Context, paths combiner.Paths, run func() error) error {
	log := logger.FromContext(ctx)
	w, err := watch.NewWatcher(watch.DefaultDebounce)
	if err != nil {
		return err
	}
	defer w.Close()
	for _, path := range []string{paths.UnitConfig, paths.TokenSetsValues} {
		if err := w.Add(path); err != nil {
			return err
		}
	}
	log.Info("Watching inputs for changes", "unit_config", paths.UnitConfig, "token_sets", paths.TokenSetsValues)
	err = w.Run(ctx, func(path string) {
		log.Info("Input changed, regenerating", "path", path)
		if err := run(); err != nil {
			helpers.OutputError(err)
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
