package schema

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/compozy/unitgen/cli/cmd"
	"github.com/compozy/unitgen/cli/helpers"
	"github.com/compozy/unitgen/engine/generator"
)

// NewSchemaCommand creates the schema command
func NewSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "schema [kind]",
		Short:     "Print the JSON schema a generator validates unit configs against",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: kindNames(),
		RunE:      executeSchemaCommand,
	}
}

func kindNames() []string {
	names := make([]string, len(generator.Kinds))
	for i, k := range generator.Kinds {
		names[i] = string(k)
	}
	return names
}

func executeSchemaCommand(cobraCmd *cobra.Command, args []string) error {
	return cmd.ExecuteCommand(cobraCmd, runSchema, args)
}

func runSchema(_ context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	gen := executor.Generator()
	if len(args) == 1 {
		var err error
		gen, err = generator.New(generator.Kind(args[0]), executor.Config().GeneratorOptions())
		if err != nil {
			return helpers.NewUsageError("%v", err)
		}
	}
	provider, ok := gen.(generator.SchemaProvider)
	if !ok {
		return fmt.Errorf("generator %s does not expose a schema", gen.Kind())
	}
	return helpers.WriteJSON(executor.Fs(), cobraCmd.OutOrStdout(), helpers.StdoutPath, provider.Schema())
}
