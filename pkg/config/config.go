package config

import (
	"runtime"
	"time"

	"github.com/compozy/unitgen/engine/generator"
	"github.com/compozy/unitgen/engine/procedure"
	"github.com/compozy/unitgen/engine/token"
	"github.com/compozy/unitgen/pkg/logger"
	"github.com/compozy/unitgen/pkg/presign"
)

// Config represents the complete unitgen configuration.
type Config struct {
	Generator GeneratorConfig `koanf:"generator" json:"generator" yaml:"generator" validate:"required"`
	Tokens    TokensConfig    `koanf:"tokens"    json:"tokens"    yaml:"tokens"`
	Expand    ExpandConfig    `koanf:"expand"    json:"expand"    yaml:"expand"`
	Presign   PresignConfig   `koanf:"presign"   json:"presign"   yaml:"presign"`
	Log       LogConfig       `koanf:"log"       json:"log"       yaml:"log"`
}

// GeneratorConfig selects the generator kind and its toggles.
type GeneratorConfig struct {
	Kind                 string   `koanf:"kind"                   json:"kind"                   yaml:"kind"                   validate:"generator_kind"`
	DataDir              string   `koanf:"data_dir"               json:"data_dir"               yaml:"data_dir"`
	TokenAttributes      []string `koanf:"token_attributes"       json:"token_attributes"       yaml:"token_attributes"`
	CustomValidators     bool     `koanf:"custom_validators"      json:"custom_validators"      yaml:"custom_validators"`
	CustomTriggers       bool     `koanf:"custom_triggers"        json:"custom_triggers"        yaml:"custom_triggers"`
	RequireSegmentFields bool     `koanf:"require_segment_fields" json:"require_segment_fields" yaml:"require_segment_fields"`
}

// TokensConfig holds the token delimiter and name patterns.
type TokensConfig struct {
	Start string `koanf:"start" json:"start" yaml:"start" validate:"required,regexp"`
	End   string `koanf:"end"   json:"end"   yaml:"end"   validate:"required,regexp"`
	Name  string `koanf:"name"  json:"name"  yaml:"name"  validate:"required,regexp"`
}

type ExpandConfig struct {
	Workers int `koanf:"workers" json:"workers" yaml:"workers" validate:"min=1"`
}

// PresignConfig configures remote resolution of procedure tokens.
type PresignConfig struct {
	Provider          string        `koanf:"provider"           json:"provider"           yaml:"provider"           validate:"oneof=s3 http none"`
	Region            string        `koanf:"region"             json:"region"             yaml:"region"`
	Endpoint          string        `koanf:"endpoint"           json:"endpoint"           yaml:"endpoint"           validate:"omitempty,url"`
	ServiceURL        string        `koanf:"service_url"        json:"service_url"        yaml:"service_url"        validate:"omitempty,url"`
	ExpirationMinutes int           `koanf:"expiration_minutes" json:"expiration_minutes" yaml:"expiration_minutes" validate:"min=1,max=10080"`
	Retries           uint64        `koanf:"retries"            json:"retries"            yaml:"retries"`
	RetryBase         time.Duration `koanf:"retry_base"         json:"retry_base"         yaml:"retry_base"`
	Timeout           time.Duration `koanf:"timeout"            json:"timeout"            yaml:"timeout"`
	Policy            string        `koanf:"policy"             json:"policy"             yaml:"policy"             validate:"oneof=fail skip"`
	CacheSize         int           `koanf:"cache_size"         json:"cache_size"         yaml:"cache_size"         validate:"min=1"`
}

type LogConfig struct {
	Level  string `koanf:"level"  json:"level"  yaml:"level"  validate:"oneof=debug info warn error disabled"`
	JSON   bool   `koanf:"json"   json:"json"   yaml:"json"`
	Source bool   `koanf:"source" json:"source" yaml:"source"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Generator: GeneratorConfig{
			Kind: string(generator.KindItems),
		},
		Tokens: TokensConfig{
			Start: token.DefaultStart,
			End:   token.DefaultEnd,
			Name:  token.DefaultName,
		},
		Expand: ExpandConfig{
			Workers: runtime.GOMAXPROCS(0),
		},
		Presign: PresignConfig{
			Provider:          presign.ProviderS3,
			ExpirationMinutes: int(procedure.MaxExpiration / time.Minute),
			Retries:           3,
			RetryBase:         200 * time.Millisecond,
			Timeout:           30 * time.Second,
			Policy:            string(procedure.PolicyFail),
			CacheSize:         procedure.DefaultCacheSize,
		},
		Log: LogConfig{
			Level: string(logger.InfoLevel),
		},
	}
}

func (c *Config) GeneratorKind() generator.Kind {
	return generator.Kind(c.Generator.Kind)
}

// GeneratorOptions maps the generator section onto constructor options
func (c *Config) GeneratorOptions() generator.Options {
	return generator.Options{
		TokenAttributes:      c.Generator.TokenAttributes,
		CustomValidators:     c.Generator.CustomValidators,
		CustomTriggers:       c.Generator.CustomTriggers,
		RequireSegmentFields: c.Generator.RequireSegmentFields,
	}
}

func (c *Config) TokenPatterns() token.Patterns {
	return token.Patterns{Start: c.Tokens.Start, End: c.Tokens.End, Name: c.Tokens.Name}
}

func (c *Config) PresignerConfig() presign.Config {
	return presign.Config{
		Provider:   c.Presign.Provider,
		Region:     c.Presign.Region,
		Endpoint:   c.Presign.Endpoint,
		ServiceURL: c.Presign.ServiceURL,
		Timeout:    c.Presign.Timeout,
		Retries:    c.Presign.Retries,
		RetryBase:  c.Presign.RetryBase,
	}
}

func (c *Config) Expiration() time.Duration {
	return time.Duration(c.Presign.ExpirationMinutes) * time.Minute
}

func (c *Config) LoggerConfig() *logger.Config {
	cfg := logger.DefaultConfig()
	cfg.Level = logger.LogLevel(c.Log.Level)
	cfg.JSON = c.Log.JSON
	cfg.AddSource = c.Log.Source
	return cfg
}
