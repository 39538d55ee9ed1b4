package procedure

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spf13/afero"

	"github.com/compozy/unitgen/engine/resolver"
	"github.com/compozy/unitgen/engine/token"
	"github.com/compozy/unitgen/engine/unitconfig"
	"github.com/compozy/unitgen/pkg/logger"
	"github.com/compozy/unitgen/pkg/presign"
)

// MaxExpiration is the longest lifetime a presigned URL may have
const MaxExpiration = 7 * 24 * time.Hour

const DefaultCacheSize = 1024

// Policy decides what happens when presigning a token fails
type Policy string

const (
	// PolicyFail aborts the whole resolution on the first failure
	PolicyFail Policy = "fail"
	// PolicySkip leaves the failed token verbatim and records the failure
	PolicySkip Policy = "skip"
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case PolicyFail, "":
		return PolicyFail, nil
	case PolicySkip:
		return PolicySkip, nil
	default:
		return "", fmt.Errorf("unknown remote resolution policy %q (supported: fail, skip)", s)
	}
}

// Result holds the resolved variants and any failures skipped under PolicySkip
type Result struct {
	Configs  unitconfig.GeneratedConfig
	Failures []*unitconfig.RemoteResolutionError
}

type Option func(*Resolver)

func WithPolicy(p Policy) Option {
	return func(r *Resolver) {
		r.policy = p
	}
}

// WithExpiration sets the presigned URL lifetime, capped at MaxExpiration
func WithExpiration(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.expiration = min(d, MaxExpiration)
		}
	}
}

func WithCacheSize(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.cacheSize = n
		}
	}
}

// Resolver replaces procedure tokens of a generated config with their remote values
type Resolver struct {
	gen        unitconfig.Generator
	presigner  presign.Presigner
	scanner    *token.Scanner
	values     *resolver.Resolver
	policy     Policy
	expiration time.Duration
	cacheSize  int
	cache      *lru.Cache[string, string]
}

func New(
	gen unitconfig.Generator,
	presigner presign.Presigner,
	patterns token.Patterns,
	opts ...Option,
) (*Resolver, error) {
	if gen == nil {
		return nil, errors.New("generator is required")
	}
	if presigner == nil {
		return nil, errors.New("presigner is required")
	}
	scanner, err := token.NewScanner(patterns.WithName(token.PermissiveName))
	if err != nil {
		return nil, fmt.Errorf("failed to compile procedure token pattern: %w", err)
	}
	// remote values are never file references
	values, err := resolver.New(afero.NewMemMapFs(), patterns)
	if err != nil {
		return nil, err
	}
	r := &Resolver{
		gen:        gen,
		presigner:  presigner,
		scanner:    scanner,
		values:     values,
		policy:     PolicyFail,
		expiration: MaxExpiration,
		cacheSize:  DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	if _, err := ParsePolicy(string(r.policy)); err != nil {
		return nil, err
	}
	cache, err := lru.New[string, string](r.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create presign cache: %w", err)
	}
	r.cache = cache
	return r, nil
}

// Resolve returns a copy of configs with every procedure token replaced. Ordinary
// tokens are left untouched. Unknown procedures always fail the resolution.
func (r *Resolver) Resolve(ctx context.Context, configs unitconfig.GeneratedConfig) (*Result, error) {
	result := &Result{Configs: make(unitconfig.GeneratedConfig, len(configs))}
	for i, config := range configs {
		resolved, failures, err := r.ResolveConfig(ctx, config)
		if err != nil {
			return nil, fmt.Errorf("variant #%d: %w", i+1, err)
		}
		result.Configs[i] = resolved
		result.Failures = append(result.Failures, failures...)
	}
	return result, nil
}

// ResolveConfig resolves the procedure tokens of a single variant
func (r *Resolver) ResolveConfig(
	ctx context.Context,
	config unitconfig.UnitConfig,
) (unitconfig.UnitConfig, []*unitconfig.RemoteResolutionError, error) {
	clone, err := unitconfig.Clone(config)
	if err != nil {
		return nil, nil, err
	}
	names, _ := r.scanner.Scan(clone, r.gen)
	procedures, err := r.procedureTokens(names)
	if err != nil {
		return nil, nil, err
	}
	if len(procedures) == 0 {
		return clone, nil, nil
	}

	log := logger.FromContext(ctx)
	values := make(map[string]any, len(procedures))
	var failures []*unitconfig.RemoteResolutionError
	for _, proc := range procedures {
		value, err := r.call(ctx, proc)
		if err == nil {
			values[proc.Raw] = value
			continue
		}
		failure := &unitconfig.RemoteResolutionError{Token: proc.Raw, Cause: err}
		if r.policy != PolicySkip {
			return nil, nil, failure
		}
		log.Warn("Skipping unresolved procedure token", "token", proc.Raw, "error", err)
		failures = append(failures, failure)
	}
	if err := r.values.SubstituteConfig(clone, r.gen, values, ""); err != nil {
		return nil, nil, err
	}
	return clone, failures, nil
}

func (r *Resolver) procedureTokens(names token.Set) ([]token.ProcedureToken, error) {
	var out []token.ProcedureToken
	for _, name := range names.Sorted() {
		proc, err := token.ParseProcedure(name)
		if errors.Is(err, token.ErrNotProcedure) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, proc)
	}
	return out, nil
}

func (r *Resolver) call(ctx context.Context, proc token.ProcedureToken) (any, error) {
	switch proc.Name {
	case token.GetPresignedURL:
		return r.presign(ctx, strings.TrimSpace(proc.Arg))
	case token.GetMultiplePresignedURLs:
		args := proc.Args()
		urls := make([]any, 0, len(args))
		for _, arg := range args {
			url, err := r.presign(ctx, arg)
			if err != nil {
				return nil, err
			}
			urls = append(urls, url)
		}
		return urls, nil
	default:
		return nil, fmt.Errorf("procedure %s has no resolver", proc.Name)
	}
}

func (r *Resolver) presign(ctx context.Context, objectURL string) (string, error) {
	if objectURL == "" {
		return "", errors.New("empty object URL")
	}
	if cached, ok := r.cache.Get(objectURL); ok {
		return cached, nil
	}
	url, err := r.presigner.Presign(ctx, objectURL, r.expiration)
	if err != nil {
		return "", err
	}
	r.cache.Add(objectURL, url)
	return url, nil
}
