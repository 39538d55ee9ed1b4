package tokensets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compozy/unitgen/engine/unitconfig"
)

func TestValidate(t *testing.T) {
	t.Run("Should accept an object of non empty arrays", func(t *testing.T) {
		values, problems := Validate(map[string]any{"a": []any{"1", "2"}, "b": []any{true}})
		assert.Empty(t, problems)
		assert.Len(t, values, 2)
	})

	t.Run("Should report every malformed token", func(t *testing.T) {
		_, problems := Validate(map[string]any{"a": "1", "b": []any{}})
		assert.Equal(t, []string{
			"Value of token 'a' must be a JSON Array.",
			"Token 'b' must have at least one value.",
		}, problems)
	})

	t.Run("Should reject non objects", func(t *testing.T) {
		_, problems := Validate([]any{})
		assert.Len(t, problems, 1)
	})
}

func TestPermute(t *testing.T) {
	t.Run("Should produce the cartesian product in a stable order", func(t *testing.T) {
		sets := Permute(SeparateValues{
			"size":  {"S", "L"},
			"color": {"red", "green", "blue"},
		})
		require.Len(t, sets, 6)
		assert.Equal(t, map[string]any{"color": "red", "size": "S"}, sets[0].TokensValues())
		assert.Equal(t, map[string]any{"color": "red", "size": "L"}, sets[1].TokensValues())
		assert.Equal(t, map[string]any{"color": "blue", "size": "L"}, sets[5].TokensValues())
	})

	t.Run("Should return no entries for no tokens", func(t *testing.T) {
		assert.Equal(t, unitconfig.TokenSetValues{}, Permute(nil))
	})
}
