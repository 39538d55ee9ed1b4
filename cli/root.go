package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/compozy/unitgen/cli/cmd/generate"
	"github.com/compozy/unitgen/cli/cmd/permute"
	"github.com/compozy/unitgen/cli/cmd/review"
	"github.com/compozy/unitgen/cli/cmd/schema"
	"github.com/compozy/unitgen/cli/cmd/verify"
	"github.com/compozy/unitgen/cli/helpers"
	"github.com/compozy/unitgen/pkg/config"
	"github.com/compozy/unitgen/pkg/logger"
	"github.com/compozy/unitgen/pkg/version"
)

const DefaultConfigFile = "unitgen.yaml"

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "unitgen",
		Short: "Generate task unit configs from a template and token sets",
		Long: `unitgen expands a unit config template into one variant per token set,
validates templates and task data, and resolves remote procedure tokens for review.`,
		Version:       version.Get().String(),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := SetupGlobalConfig(cmd); err != nil {
				helpers.OutputError(err)
				return err
			}
			return nil
		},
	}
	flags := root.PersistentFlags()
	flags.String("config", DefaultConfigFile, "Path to the YAML configuration file")
	flags.String("env-file", ".env", "Path to the environment variables file")
	flags.String("generator", "", "Generator kind: form_composer, video_annotator or items")
	flags.String(helpers.FormatFlag, "auto", "Output format: text, json or auto")
	flags.String("log-level", "", "Log level: debug, info, warn, error or disabled")
	flags.Bool("log-json", false, "Write logs as JSON")
	flags.Bool("log-source", false, "Include source locations in logs")

	root.AddCommand(
		generate.NewGenerateCommand(),
		verify.NewVerifyCommand(),
		review.NewReviewCommand(),
		permute.NewPermuteCommand(),
		schema.NewSchemaCommand(),
	)
	return root
}

// SetupGlobalConfig loads the env file and the configuration, then stores the
// configuration and a logger built from it on the command context.
func SetupGlobalConfig(cmd *cobra.Command) error {
	if _, err := loadEnvFile(cmd); err != nil {
		return err
	}
	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	flags := make(map[string]any)
	extractCLIFlags(cmd, flags)

	loader, err := config.NewLoader()
	if err != nil {
		return err
	}
	level, logJSON, logSource, err := logger.GetLoggerConfig(cmd)
	if err != nil {
		return err
	}
	ctx := logger.ContextWithLogger(cmd.Context(), logger.SetupLogger(level, logJSON, logSource))
	cfg, err := loader.Load(ctx, config.NewYAMLProvider(configFile), config.NewCLIProvider(flags))
	if err != nil {
		return err
	}
	logger.Init(cfg.LoggerConfig())
	log := logger.GetDefault()
	ctx = config.ContextWithConfig(ctx, cfg)
	ctx = logger.ContextWithLogger(ctx, log)
	cmd.SetContext(ctx)
	log.Debug("Configuration ready", "config", configFile, "generator", cfg.Generator.Kind)
	return nil
}
