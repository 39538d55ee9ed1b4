package resolver

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compozy/unitgen/engine/generator"
	"github.com/compozy/unitgen/engine/token"
	"github.com/compozy/unitgen/engine/unitconfig"
)

func newResolver(t *testing.T, fs afero.Fs) *Resolver {
	t.Helper()
	r, err := New(fs, token.DefaultPatterns())
	require.NoError(t, err)
	return r
}

func TestResolver_InlineFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/insertions/intro.html", []byte("<p>Hi</p>\n"), 0o644))
	require.NoError(t, fs.MkdirAll("/data/dir.html", 0o755))
	r := newResolver(t, fs)

	t.Run("Should replace a relative path with the exact file content", func(t *testing.T) {
		out, err := r.InlineFile("insertions/intro.html", "/data")
		require.NoError(t, err)
		assert.Equal(t, "<p>Hi</p>\n", out)
	})

	t.Run("Should accept absolute paths regardless of data path", func(t *testing.T) {
		out, err := r.InlineFile("/data/insertions/intro.html", "/elsewhere")
		require.NoError(t, err)
		assert.Equal(t, "<p>Hi</p>\n", out)
	})

	t.Run("Should leave values that are not existing files unchanged", func(t *testing.T) {
		for _, value := range []any{"Ann", "missing.html", "dir.html", "a\nb", float64(3), nil} {
			out, err := r.InlineFile(value, "/data")
			require.NoError(t, err)
			assert.Equal(t, value, out)
		}
	})

	t.Run("Should refuse to inline binary files", func(t *testing.T) {
		require.NoError(t, afero.WriteFile(fs, "/data/logo.png", []byte("\x89PNG\r\n\x1a\n\x00\xff\xfe"), 0o644))
		_, err := r.InlineFile("logo.png", "/data")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "image/png")
	})
}

func TestResolver_Substitute(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, filepath.Join("/data", "block.html"), []byte("<b>{{x}}</b>"), 0o644))
	r := newResolver(t, fs)

	t.Run("Should replace every occurrence with optional inner whitespace", func(t *testing.T) {
		out, err := r.Substitute("{{name}}, {{ name }}!", map[string]any{"name": "Ann"}, "")
		require.NoError(t, err)
		assert.Equal(t, "Ann, Ann!", out)
	})

	t.Run("Should leave tokens without values verbatim", func(t *testing.T) {
		out, err := r.Substitute("{{a}} {{b}}", map[string]any{"a": 1.0}, "")
		require.NoError(t, err)
		assert.Equal(t, "1 {{b}}", out)
	})

	t.Run("Should escape names with special characters", func(t *testing.T) {
		name := `getPresignedUrl("https://b.s3.amazonaws.com/a.png")`
		out, err := r.Substitute("<img src='{{ "+name+" }}'/>", map[string]any{name: "https://signed"}, "")
		require.NoError(t, err)
		assert.Equal(t, "<img src='https://signed'/>", out)
	})

	t.Run("Should not reintroduce tokens from substituted values", func(t *testing.T) {
		values := map[string]any{"a": "{{b}}", "b": "B"}
		out, err := r.Substitute("{{a}}{{b}}", values, "")
		require.NoError(t, err)
		assert.Equal(t, "{{b}}B", out)

		again, err := r.Substitute("{{a}}{{b}}", values, "")
		require.NoError(t, err)
		assert.Equal(t, out, again)
	})

	t.Run("Should inline file backed values before substitution", func(t *testing.T) {
		out, err := r.Substitute("{{body}}", map[string]any{"body": "block.html", "x": "y"}, "/data")
		require.NoError(t, err)
		assert.Equal(t, "<b>{{x}}</b>", out)
	})

	t.Run("Should not treat dollar signs as group references", func(t *testing.T) {
		out, err := r.Substitute("{{price}}", map[string]any{"price": "$1 ${1}"}, "")
		require.NoError(t, err)
		assert.Equal(t, "$1 ${1}", out)
	})
}

func TestResolver_Config(t *testing.T) {
	gen, err := generator.NewItems(generator.Options{})
	require.NoError(t, err)

	t.Run("Should substitute supported attributes only", func(t *testing.T) {
		r := newResolver(t, afero.NewMemMapFs())
		config := unitconfig.UnitConfig{"items": []any{
			map[string]any{"label": "Hello {{name}}", "type": "{{name}}", "help": 3.0},
		}}
		require.NoError(t, r.SubstituteConfig(config, gen, map[string]any{"name": "Bob"}, ""))
		item := config["items"].([]any)[0].(map[string]any)
		assert.Equal(t, "Hello Bob", item["label"])
		assert.Equal(t, "{{name}}", item["type"])
		assert.Equal(t, 3.0, item["help"])
	})

	t.Run("Should inline files into supported attributes", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/data/help.html", []byte("<i>help {{topic}}</i>"), 0o644))
		r := newResolver(t, fs)
		config := unitconfig.UnitConfig{"items": []any{
			map[string]any{"help": "help.html", "type": "help.html"},
		}}
		require.NoError(t, r.InlineConfig(config, gen, "/data"))
		item := config["items"].([]any)[0].(map[string]any)
		assert.Equal(t, "<i>help {{topic}}</i>", item["help"])
		assert.Equal(t, "help.html", item["type"])
	})
}
