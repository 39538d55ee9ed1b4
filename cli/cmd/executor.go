package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/compozy/unitgen/cli/helpers"
	"github.com/compozy/unitgen/engine/combiner"
	"github.com/compozy/unitgen/engine/generator"
	"github.com/compozy/unitgen/engine/procedure"
	"github.com/compozy/unitgen/engine/unitconfig"
	"github.com/compozy/unitgen/pkg/config"
	"github.com/compozy/unitgen/pkg/logger"
	"github.com/compozy/unitgen/pkg/presign"
)

// CommandExecutor holds what every command needs: the loaded configuration,
// the output mode, the file system and the configured generator.
type CommandExecutor struct {
	cfg  *config.Config
	mode helpers.Mode
	fs   afero.Fs
	gen  unitconfig.Generator
}

// HandlerFunc defines the signature for command handlers.
type HandlerFunc func(ctx context.Context, cmd *cobra.Command, executor *CommandExecutor, args []string) error

// NewCommandExecutor builds the executor from the configuration stored on the command context.
func NewCommandExecutor(cmd *cobra.Command) (*CommandExecutor, error) {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	mode, err := helpers.DetectMode(cmd)
	if err != nil {
		return nil, err
	}
	gen, err := generator.New(cfg.GeneratorKind(), cfg.GeneratorOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to build generator: %w", err)
	}
	logger.FromContext(ctx).Debug("Command executor ready", "generator", gen.Kind(), "mode", mode)
	return &CommandExecutor{
		cfg:  cfg,
		mode: mode,
		fs:   afero.NewOsFs(),
		gen:  gen,
	}, nil
}

func (e *CommandExecutor) Config() *config.Config {
	return e.cfg
}

func (e *CommandExecutor) Mode() helpers.Mode {
	return e.mode
}

func (e *CommandExecutor) Fs() afero.Fs {
	return e.fs
}

func (e *CommandExecutor) Generator() unitconfig.Generator {
	return e.gen
}

// Combiner builds a combiner for the configured generator and token patterns
func (e *CommandExecutor) Combiner() (*combiner.Combiner, error) {
	return combiner.New(e.fs, e.gen, e.cfg.TokenPatterns(), combiner.WithWorkers(e.cfg.Expand.Workers))
}

// ProcedureResolver builds a resolver backed by the configured presigner.
// A non-empty policy overrides the configured one.
func (e *CommandExecutor) ProcedureResolver(ctx context.Context, policy string) (*procedure.Resolver, error) {
	if policy == "" {
		policy = e.cfg.Presign.Policy
	}
	parsed, err := procedure.ParsePolicy(policy)
	if err != nil {
		return nil, helpers.NewUsageError("%v", err)
	}
	presigner, err := presign.New(ctx, e.cfg.PresignerConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create presigner: %w", err)
	}
	return procedure.New(
		e.gen,
		presigner,
		e.cfg.TokenPatterns(),
		procedure.WithPolicy(parsed),
		procedure.WithExpiration(e.cfg.Expiration()),
		procedure.WithCacheSize(e.cfg.Presign.CacheSize),
	)
}

// ExecuteCommand creates the executor and runs handler with a context canceled on SIGINT or SIGTERM.
func ExecuteCommand(cmd *cobra.Command, handler HandlerFunc, args []string) error {
	executor, err := NewCommandExecutor(cmd)
	if err != nil {
		return HandleCommonErrors(err)
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return HandleCommonErrors(handler(ctx, cmd, executor, args))
}

// ValidateRequiredFlags checks that all required flags are present and non-empty.
func ValidateRequiredFlags(cmd *cobra.Command, required []string) error {
	for _, flag := range required {
		value, err := cmd.Flags().GetString(flag)
		if err != nil {
			return helpers.NewUsageError("unknown flag '%s'", flag)
		}
		if value == "" {
			return helpers.NewUsageError("required flag '%s' not specified", flag)
		}
	}
	return nil
}

// HandleCommonErrors prints err once and returns its categorized form.
func HandleCommonErrors(err error) error {
	if err == nil {
		return nil
	}
	cliErr := helpers.Categorize(err)
	helpers.OutputError(cliErr)
	return cliErr
}

// InputPath returns the value of a path flag. When the flag was left at its
// default and dataDir is set, the default file name is looked up in dataDir.
func InputPath(cmd *cobra.Command, flag, dataDir string) string {
	value, err := cmd.Flags().GetString(flag)
	if err != nil || value == "" {
		return ""
	}
	if cmd.Flags().Changed(flag) || dataDir == "" || filepath.IsAbs(value) {
		return value
	}
	return filepath.Join(dataDir, value)
}
