package combiner

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compozy/unitgen/engine/generator"
	"github.com/compozy/unitgen/engine/token"
	"github.com/compozy/unitgen/engine/unitconfig"
	"github.com/compozy/unitgen/pkg/jsonio"
	"github.com/compozy/unitgen/pkg/logger"
)

const helloTemplate = `{"items":[{"label":"Hello {{name}}","type":"text"}]}`

func newCombiner(t *testing.T, fs afero.Fs, opts ...Option) *Combiner {
	t.Helper()
	gen, err := generator.NewItems(generator.Options{})
	require.NoError(t, err)
	c, err := New(fs, gen, token.DefaultPatterns(), opts...)
	require.NoError(t, err)
	return c
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	return logger.ContextWithLogger(t.Context(), logger.NewLogger(logger.TestConfig()))
}

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
}

func TestCombiner_Combine(t *testing.T) {
	t.Run("Should expand the template once per token set and write the result", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeFile(t, fs, "/data/unit_config.json", helloTemplate)
		writeFile(t, fs, "/data/token_sets_values_config.json",
			`[{"tokens_values":{"name":"Ann"}},{"tokens_values":{"name":"Bob"}}]`)

		c := newCombiner(t, fs)
		generated, err := c.Combine(testContext(t), Paths{
			UnitConfig:      "/data/unit_config.json",
			TokenSetsValues: "/data/token_sets_values_config.json",
			Output:          "/data/task_data.json",
		})
		require.NoError(t, err)

		expected := []any{
			map[string]any{
				"items":              []any{map[string]any{"label": "Hello Ann", "type": "text"}},
				"generator_metadata": map[string]any{"tokens_values": map[string]any{"name": "Ann"}},
			},
			map[string]any{
				"items":              []any{map[string]any{"label": "Hello Bob", "type": "text"}},
				"generator_metadata": map[string]any{"tokens_values": map[string]any{"name": "Bob"}},
			},
		}
		written, err := jsonio.ReadFile(fs, "/data/task_data.json")
		require.NoError(t, err)
		assert.Equal(t, expected, written)
		require.Len(t, generated, 2)
	})

	t.Run("Should produce a single copy of the template without token sets", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeFile(t, fs, "/data/unit_config.json", `{"items":[{"label":"Plain"}]}`)

		c := newCombiner(t, fs)
		generated, err := c.Combine(testContext(t), Paths{
			UnitConfig:      "/data/unit_config.json",
			TokenSetsValues: "/data/missing.json",
			Output:          "/data/task_data.json",
		})
		require.NoError(t, err)
		require.Len(t, generated, 1)
		assert.NotContains(t, generated[0], unitconfig.GeneratorMetadataKey)
	})

	t.Run("Should fail with a missing template error before validation", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		c := newCombiner(t, fs)
		_, err := c.Combine(testContext(t), Paths{UnitConfig: "/data/unit_config.json", Output: "/data/out.json"})
		require.ErrorIs(t, err, unitconfig.ErrMissingTemplateFile)
		assert.Contains(t, err.Error(), "/data/unit_config.json")
	})

	t.Run("Should not touch the output when validation fails", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeFile(t, fs, "/data/unit_config.json", `{"items":[{"label":"{{a}} {{b}}"}]}`)
		writeFile(t, fs, "/data/tokens.json", `[{"tokens_values":{"b":"1","c":"2"}}]`)
		writeFile(t, fs, "/data/out.json", `"previous"`)

		c := newCombiner(t, fs)
		_, err := c.Combine(testContext(t), Paths{
			UnitConfig:      "/data/unit_config.json",
			TokenSetsValues: "/data/tokens.json",
			Output:          "/data/out.json",
		})
		require.ErrorIs(t, err, unitconfig.ErrInvalidConfig)

		var validationErr *unitconfig.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, []string{"c"}, validationErr.Report.Overspecified)
		assert.Equal(t, []string{"a"}, validationErr.Report.Underspecified)

		data, err := afero.ReadFile(fs, "/data/out.json")
		require.NoError(t, err)
		assert.Equal(t, `"previous"`, string(data))
	})

	t.Run("Should inline referenced files before expansion", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeFile(t, fs, "/data/unit_config.json", `{"items":[{"label":"insertions/label.html"}]}`)
		writeFile(t, fs, "/data/insertions/label.html", "<b>Hi {{name}}</b>")
		writeFile(t, fs, "/data/tokens.json", `[{"tokens_values":{"name":"Ann"}}]`)

		c := newCombiner(t, fs)
		generated, err := c.Combine(testContext(t), Paths{
			UnitConfig:      "/data/unit_config.json",
			TokenSetsValues: "/data/tokens.json",
			DataDir:         "/data",
		})
		require.NoError(t, err)
		require.Len(t, generated, 1)
		items := generated[0]["items"].([]any)
		assert.Equal(t, "<b>Hi Ann</b>", items[0].(map[string]any)["label"])
	})

	t.Run("Should keep numbers exactly as written in the template and token values", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeFile(t, fs, "/data/unit_config.json",
			`{"items":[{"label":"v={{n}}","max":12345678901234567890,"step":1.0}]}`)
		writeFile(t, fs, "/data/tokens.json", `[{"tokens_values":{"n":1000000000000000}}]`)

		c := newCombiner(t, fs)
		generated, err := c.Combine(testContext(t), Paths{
			UnitConfig:      "/data/unit_config.json",
			TokenSetsValues: "/data/tokens.json",
			Output:          "/data/task_data.json",
		})
		require.NoError(t, err)
		require.Len(t, generated, 1)
		item := generated[0]["items"].([]any)[0].(map[string]any)
		assert.Equal(t, "v=1000000000000000", item["label"])
		assert.Equal(t, json.Number("12345678901234567890"), item["max"])
		assert.Equal(t, json.Number("1.0"), item["step"])
		metadata := generated[0][unitconfig.GeneratorMetadataKey].(map[string]any)
		assert.Equal(t, map[string]any{"n": json.Number("1000000000000000")}, metadata["tokens_values"])

		data, err := afero.ReadFile(fs, "/data/task_data.json")
		require.NoError(t, err)
		assert.Contains(t, string(data), `"v=1000000000000000"`)
		assert.Contains(t, string(data), "12345678901234567890")
		assert.Contains(t, string(data), "1.0")
		assert.NotContains(t, string(data), "e+")
	})

	t.Run("Should report invalid JSON with the file name", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeFile(t, fs, "/data/unit_config.json", `{"items":`)
		c := newCombiner(t, fs)
		_, err := c.Combine(testContext(t), Paths{UnitConfig: "/data/unit_config.json"})
		require.ErrorIs(t, err, jsonio.ErrInvalidJSON)

		var stageErr *StageError
		require.ErrorAs(t, err, &stageErr)
		assert.Equal(t, StageRead, stageErr.Stage)
	})
}

func TestCombiner_Expand(t *testing.T) {
	template := unitconfig.UnitConfig{
		"items": []any{map[string]any{"label": "Item {{n}}", "type": "text"}},
	}

	t.Run("Should preserve entry order with parallel workers", func(t *testing.T) {
		c := newCombiner(t, afero.NewMemMapFs(), WithWorkers(4))
		entries := make(unitconfig.TokenSetValues, 50)
		for i := range entries {
			entries[i] = unitconfig.Entry{
				"tokens_values": map[string]any{"n": float64(i)},
				"index":         i,
			}
		}

		generated, err := c.Expand(testContext(t), template, entries, "")
		require.NoError(t, err)
		require.Len(t, generated, 50)
		for i, variant := range generated {
			items := variant["items"].([]any)
			assert.Equal(t, fmt.Sprintf("Item %d", i), items[0].(map[string]any)["label"])
			assert.Equal(t, i, variant[unitconfig.GeneratorMetadataKey].(map[string]any)["index"])
		}
		assert.Equal(t, "Item {{n}}", template["items"].([]any)[0].(map[string]any)["label"])
	})

	t.Run("Should emit the template unchanged for an empty entry", func(t *testing.T) {
		c := newCombiner(t, afero.NewMemMapFs())
		generated, err := c.Expand(testContext(t), template, unitconfig.TokenSetValues{{}}, "")
		require.NoError(t, err)
		require.Len(t, generated, 1)
		assert.Equal(t, template, generated[0])
	})

	t.Run("Should keep existing template metadata", func(t *testing.T) {
		withMeta := unitconfig.UnitConfig{
			"items":              []any{map[string]any{"label": "{{n}}"}},
			"generator_metadata": map[string]any{"source": "template", "batch": "a"},
		}
		c := newCombiner(t, afero.NewMemMapFs())
		entries := unitconfig.TokenSetValues{{"tokens_values": map[string]any{"n": "x"}, "batch": "b"}}

		generated, err := c.Expand(testContext(t), withMeta, entries, "")
		require.NoError(t, err)
		metadata := generated[0][unitconfig.GeneratorMetadataKey].(map[string]any)
		assert.Equal(t, "template", metadata["source"])
		assert.Equal(t, "b", metadata["batch"])
		assert.Equal(t, map[string]any{"n": "x"}, metadata["tokens_values"])
		assert.Equal(t, "a", withMeta["generator_metadata"].(map[string]any)["batch"])
	})

	t.Run("Should stop when the context is canceled", func(t *testing.T) {
		c := newCombiner(t, afero.NewMemMapFs(), WithWorkers(1))
		ctx, cancel := context.WithCancel(testContext(t))
		cancel()
		entries := unitconfig.TokenSetValues{{"tokens_values": map[string]any{"n": "1"}}}
		_, err := c.Expand(ctx, template, entries, "")
		require.Error(t, err)
	})
}
