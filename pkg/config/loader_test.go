package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compozy/unitgen/engine/generator"
)

type mockSource struct {
	data       map[string]any
	sourceType SourceType
}

func (m *mockSource) Load() (map[string]any, error) {
	return m.data, nil
}

func (m *mockSource) Type() SourceType {
	return m.sourceType
}

func newLoader(t *testing.T) *Loader {
	t.Helper()
	l, err := NewLoader()
	require.NoError(t, err)
	return l
}

func TestLoader_Load(t *testing.T) {
	t.Run("Should load the defaults when no sources are given", func(t *testing.T) {
		cfg, err := newLoader(t).Load(t.Context())
		require.NoError(t, err)
		assert.Equal(t, string(generator.KindItems), cfg.Generator.Kind)
		assert.Equal(t, `\{\{`, cfg.Tokens.Start)
		assert.Equal(t, 10080, cfg.Presign.ExpirationMinutes)
		assert.Equal(t, "fail", cfg.Presign.Policy)
		assert.Equal(t, 30*time.Second, cfg.Presign.Timeout)
		assert.GreaterOrEqual(t, cfg.Expand.Workers, 1)
	})

	t.Run("Should read a YAML file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "unitgen.yaml")
		content := "generator:\n  kind: form_composer\n  custom_triggers: true\n" +
			"presign:\n  retry_base: 1s\n  policy: skip\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		l := newLoader(t)
		cfg, err := l.Load(t.Context(), NewYAMLProvider(path))
		require.NoError(t, err)
		assert.Equal(t, "form_composer", cfg.Generator.Kind)
		assert.True(t, cfg.Generator.CustomTriggers)
		assert.Equal(t, time.Second, cfg.Presign.RetryBase)
		assert.Equal(t, "skip", cfg.Presign.Policy)
		assert.Equal(t, "s3", cfg.Presign.Provider)
		assert.Equal(t, SourceYAML, l.GetSource("generator.kind"))
		assert.Equal(t, SourceDefault, l.GetSource("presign.provider"))
	})

	t.Run("Should apply environment over YAML and CLI over environment", func(t *testing.T) {
		t.Setenv("UNITGEN_EXPAND_WORKERS", "3")
		t.Setenv("UNITGEN_GENERATOR_TOKEN_ATTRIBUTES", "label,title")
		t.Setenv("UNITGEN_LOG_LEVEL", "warn")
		yamlSource := &mockSource{
			data:       map[string]any{"expand": map[string]any{"workers": 8}, "log": map[string]any{"level": "debug"}},
			sourceType: SourceYAML,
		}
		cliSource := NewCLIProvider(map[string]any{"log-level": "error", "unknown": "ignored"})

		l := newLoader(t)
		cfg, err := l.Load(t.Context(), cliSource, yamlSource)
		require.NoError(t, err)
		assert.Equal(t, 3, cfg.Expand.Workers)
		assert.Equal(t, []string{"label", "title"}, cfg.Generator.TokenAttributes)
		assert.Equal(t, "error", cfg.Log.Level)
		assert.Equal(t, SourceEnv, l.GetSource("expand.workers"))
		assert.Equal(t, SourceCLI, l.GetSource("log.level"))
	})

	t.Run("Should reject invalid values", func(t *testing.T) {
		source := &mockSource{
			data:       map[string]any{"generator": map[string]any{"kind": "spreadsheet"}},
			sourceType: SourceYAML,
		}
		_, err := newLoader(t).Load(t.Context(), source)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validation failed")
	})

	t.Run("Should reject invalid token patterns", func(t *testing.T) {
		source := &mockSource{
			data:       map[string]any{"tokens": map[string]any{"start": "("}},
			sourceType: SourceYAML,
		}
		_, err := newLoader(t).Load(t.Context(), source)
		assert.Error(t, err)
	})

	t.Run("Should require a service URL for the http provider", func(t *testing.T) {
		source := &mockSource{
			data:       map[string]any{"presign": map[string]any{"provider": "http"}},
			sourceType: SourceYAML,
		}
		_, err := newLoader(t).Load(t.Context(), source)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "service_url")
	})
}

func TestTransformEnvKey(t *testing.T) {
	assert.Equal(t, "presign.service_url", transformEnvKey("UNITGEN_PRESIGN_SERVICE_URL"))
	assert.Equal(t, "generator.data_dir", transformEnvKey("UNITGEN_GENERATOR_DATA_DIR"))
	assert.Equal(t, "", transformEnvKey("UNITGEN_DEBUG"))
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("Should export variables from the env file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("UNITGEN_PRESIGN_REGION=eu-west-1\n"), 0o644))
		t.Setenv("UNITGEN_PRESIGN_REGION", "")
		require.NoError(t, os.Unsetenv("UNITGEN_PRESIGN_REGION"))

		require.NoError(t, LoadDotEnv(path))
		cfg, err := newLoader(t).Load(t.Context())
		require.NoError(t, err)
		assert.Equal(t, "eu-west-1", cfg.Presign.Region)
	})

	t.Run("Should ignore a missing env file", func(t *testing.T) {
		assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
	})
}

func TestConfig_Mappings(t *testing.T) {
	t.Run("Should map sections onto component options", func(t *testing.T) {
		cfg := Default()
		cfg.Generator.Kind = "video_annotator"
		cfg.Generator.RequireSegmentFields = true
		cfg.Presign.ExpirationMinutes = 60

		assert.Equal(t, generator.KindVideoAnnotator, cfg.GeneratorKind())
		assert.True(t, cfg.GeneratorOptions().RequireSegmentFields)
		assert.Equal(t, time.Hour, cfg.Expiration())
		assert.Equal(t, cfg.Tokens.Name, cfg.TokenPatterns().Name)
		assert.Equal(t, "s3", cfg.PresignerConfig().Provider)
	})
}

func TestFromContext(t *testing.T) {
	t.Run("Should return the stored configuration", func(t *testing.T) {
		cfg := Default()
		cfg.Generator.Kind = "form_composer"
		ctx := ContextWithConfig(t.Context(), cfg)
		assert.Same(t, cfg, FromContext(ctx))
	})

	t.Run("Should fall back to defaults", func(t *testing.T) {
		assert.Equal(t, Default().Generator, FromContext(t.Context()).Generator)
	})
}
