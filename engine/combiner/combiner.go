package combiner

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"runtime"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/compozy/unitgen/engine/resolver"
	"github.com/compozy/unitgen/engine/token"
	"github.com/compozy/unitgen/engine/unitconfig"
	"github.com/compozy/unitgen/engine/validator"
	"github.com/compozy/unitgen/pkg/jsonio"
	"github.com/compozy/unitgen/pkg/logger"
)

// Stage names one step of a combine run
type Stage string

const (
	StageRead        Stage = "READ"
	StageInlineFiles Stage = "INLINE_FILES"
	StageValidate    Stage = "VALIDATE"
	StageExpand      Stage = "EXPAND"
	StageWrite       Stage = "WRITE"
)

// StageError wraps a failure with the stage it happened in
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Paths locates the documents of one combine run
type Paths struct {
	UnitConfig      string
	TokenSetsValues string
	Output          string
	DataDir         string
}

type Option func(*Combiner)

// WithWorkers bounds the number of entries expanded concurrently
func WithWorkers(n int) Option {
	return func(c *Combiner) {
		if n > 0 {
			c.workers = n
		}
	}
}

// Combiner expands a unit config template into one variant per token set
type Combiner struct {
	fs        afero.Fs
	gen       unitconfig.Generator
	scanner   *token.Scanner
	resolver  *resolver.Resolver
	validator *validator.Validator
	workers   int
}

func New(fs afero.Fs, gen unitconfig.Generator, patterns token.Patterns, opts ...Option) (*Combiner, error) {
	if gen == nil {
		return nil, errors.New("generator is required")
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}
	scanner, err := token.NewScanner(patterns)
	if err != nil {
		return nil, fmt.Errorf("failed to compile token patterns: %w", err)
	}
	res, err := resolver.New(fs, patterns)
	if err != nil {
		return nil, err
	}
	c := &Combiner{
		fs:        fs,
		gen:       gen,
		scanner:   scanner,
		resolver:  res,
		validator: validator.New(gen, scanner),
		workers:   runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Combiner) Generator() unitconfig.Generator {
	return c.gen
}

// Combine reads, validates and expands the template, then writes the combined
// variants to paths.Output. Nothing is written unless every stage succeeds.
func (c *Combiner) Combine(ctx context.Context, paths Paths) (unitconfig.GeneratedConfig, error) {
	log := logger.FromContext(ctx).With("generator", c.gen.Kind())

	log.Debug("Reading configs", "stage", StageRead, "unit_config", paths.UnitConfig)
	template, rawTokenSets, err := c.read(paths)
	if err != nil {
		return nil, err
	}

	if paths.DataDir != "" {
		log.Debug("Inlining file content", "stage", StageInlineFiles, "data_dir", paths.DataDir)
		if err := c.resolver.InlineConfig(template, c.gen, paths.DataDir); err != nil {
			return nil, &StageError{Stage: StageInlineFiles, Err: err}
		}
	}

	log.Debug("Validating configs", "stage", StageValidate)
	report := c.validator.Validate(template, rawTokenSets)
	if !report.Valid() {
		return nil, report.Err()
	}
	entries, _ := c.validator.ValidateTokenSetValues(rawTokenSets)

	generated, err := c.Expand(ctx, template, entries, paths.DataDir)
	if err != nil {
		log.Error("Failed to expand unit config", "error", err)
		return nil, err
	}

	if paths.Output != "" {
		if err := jsonio.WriteFileAtomic(c.fs, paths.Output, generated); err != nil {
			log.Error("Failed to write task data", "error", err)
			return nil, &StageError{Stage: StageWrite, Err: err}
		}
		log.Info("Wrote task data", "path", paths.Output, "variants", len(generated))
	}
	return generated, nil
}

func (c *Combiner) read(paths Paths) (unitconfig.UnitConfig, any, error) {
	if !jsonio.Exists(c.fs, paths.UnitConfig) {
		return nil, nil, &unitconfig.MissingTemplateError{Path: paths.UnitConfig}
	}
	raw, err := jsonio.ReadFile(c.fs, paths.UnitConfig)
	if err != nil {
		return nil, nil, &StageError{Stage: StageRead, Err: err}
	}
	template, ok := unitconfig.AsUnitConfig(raw)
	if !ok {
		report := unitconfig.NewReport()
		report.Add(unitconfig.CategoryShape, "unit config", "Unit config must be a JSON object.")
		return nil, nil, report.Err()
	}
	rawTokenSets, err := jsonio.ReadOptional(c.fs, paths.TokenSetsValues)
	if err != nil {
		return nil, nil, &StageError{Stage: StageRead, Err: err}
	}
	return template, rawTokenSets, nil
}

// Expand produces one variant per entry, in entry order, or a single copy of
// the template when entries is empty. The template is never mutated.
func (c *Combiner) Expand(
	ctx context.Context,
	template unitconfig.UnitConfig,
	entries unitconfig.TokenSetValues,
	dataDir string,
) (unitconfig.GeneratedConfig, error) {
	if len(entries) == 0 {
		clone, err := unitconfig.Clone(template)
		if err != nil {
			return nil, &StageError{Stage: StageExpand, Err: err}
		}
		return unitconfig.GeneratedConfig{clone}, nil
	}

	out := make(unitconfig.GeneratedConfig, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, entry := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			variant, err := c.expandEntry(template, entry, dataDir)
			if err != nil {
				return fmt.Errorf("entry #%d: %w", i+1, err)
			}
			out[i] = variant
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, &StageError{Stage: StageExpand, Err: err}
	}
	logger.FromContext(ctx).Debug("Expanded unit config", "stage", StageExpand, "variants", len(out))
	return out, nil
}

func (c *Combiner) expandEntry(
	template unitconfig.UnitConfig,
	entry unitconfig.Entry,
	dataDir string,
) (unitconfig.UnitConfig, error) {
	variant, err := unitconfig.Clone(template)
	if err != nil {
		return nil, err
	}
	if entry.IsEmpty() {
		return variant, nil
	}
	if err := c.resolver.SubstituteConfig(variant, c.gen, entry.TokensValues(), dataDir); err != nil {
		return nil, err
	}
	metadata, _ := variant[unitconfig.GeneratorMetadataKey].(map[string]any)
	if metadata == nil {
		metadata = make(map[string]any, len(entry))
	}
	entryCopy, err := unitconfig.Clone(unitconfig.UnitConfig(entry))
	if err != nil {
		return nil, err
	}
	maps.Copy(metadata, entryCopy)
	variant[unitconfig.GeneratorMetadataKey] = metadata
	return variant, nil
}
