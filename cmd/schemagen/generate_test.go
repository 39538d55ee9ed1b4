package main

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compozy/unitgen/pkg/jsonio"
)

func TestGenerateSchemas(t *testing.T) {
	t.Run("Should write a schema per generator kind and one for the configuration", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		written, err := GenerateSchemas(fs, "/schemas")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{
			filepath.Join("/schemas", "form_composer.json"),
			filepath.Join("/schemas", "video_annotator.json"),
			filepath.Join("/schemas", "items.json"),
			filepath.Join("/schemas", "unitgen-config.json"),
		}, written)
		for _, path := range written {
			raw, err := jsonio.ReadFile(fs, path)
			require.NoError(t, err)
			assert.IsType(t, map[string]any{}, raw)
		}
	})
}
