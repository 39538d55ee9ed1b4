package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleShape struct {
	Title string       `json:"title"           jsonschema:"required"`
	Items []sampleItem `json:"items"           jsonschema:"required,minItems=1"`
	Note  string       `json:"note,omitempty"`
}

type sampleItem struct {
	Label string `json:"label" jsonschema:"required"`
}

func TestReflect(t *testing.T) {
	t.Run("Should reflect required fields and inline nested types", func(t *testing.T) {
		s, err := Reflect(&sampleShape{})
		require.NoError(t, err)
		assert.Equal(t, "object", s["type"])
		assert.ElementsMatch(t, []any{"title", "items"}, s["required"])
		props, ok := s["properties"].(map[string]any)
		require.True(t, ok)
		assert.Contains(t, props, "items")
		assert.NotContains(t, s, "$defs")
	})
}

func TestSchema_Validate(t *testing.T) {
	s, err := Reflect(&sampleShape{})
	require.NoError(t, err)

	t.Run("Should accept a matching document with extra attributes", func(t *testing.T) {
		problems, err := s.Validate(map[string]any{
			"title": "T",
			"items": []any{map[string]any{"label": "a", "extra": true}},
			"other": 1,
		})
		require.NoError(t, err)
		assert.Empty(t, problems)
	})

	t.Run("Should report problems for a document missing required fields", func(t *testing.T) {
		problems, err := s.Validate(map[string]any{"items": []any{}})
		require.NoError(t, err)
		assert.NotEmpty(t, problems)
	})

	t.Run("Should treat decoded json.Number values as numbers", func(t *testing.T) {
		numeric := Schema{
			"type": "object",
			"properties": map[string]any{
				"max":  map[string]any{"type": "integer"},
				"step": map[string]any{"type": "number"},
			},
		}
		problems, err := numeric.Validate(map[string]any{
			"max":  json.Number("12345678901234567890"),
			"step": json.Number("1.0"),
		})
		require.NoError(t, err)
		assert.Empty(t, problems)

		problems, err = numeric.Validate(map[string]any{"max": json.Number("1.5")})
		require.NoError(t, err)
		assert.NotEmpty(t, problems)
	})
}

func TestCompositeCheck(t *testing.T) {
	t.Run("Should aggregate every check instead of stopping at the first", func(t *testing.T) {
		composite := NewCompositeCheck(
			CheckFunc(func(any) []string { return []string{"first"} }),
		)
		composite.AddCheck(CheckFunc(func(any) []string { return []string{"second"} }))
		assert.Equal(t, []string{"first", "second"}, composite.Check(nil))
	})

	t.Run("Should evaluate a compiled schema", func(t *testing.T) {
		_, compiled := MustCompile(&sampleShape{})
		check := NewCompiledCheck(compiled)
		assert.Empty(t, check.Check(map[string]any{
			"title": "T",
			"items": []any{map[string]any{"label": "a"}},
		}))
		assert.NotEmpty(t, check.Check(map[string]any{"title": 3}))
	})
}
