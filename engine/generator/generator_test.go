package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compozy/unitgen/engine/unitconfig"
)

func formConfig() unitconfig.UnitConfig {
	return unitconfig.UnitConfig{
		"form": map[string]any{
			"title":       "Form {{title}}",
			"instruction": "Read carefully",
			"submit_button": map[string]any{
				"text":    "Submit",
				"tooltip": "Send {{what}}",
			},
			"sections": []any{
				map[string]any{
					"name":  "about",
					"title": "About",
					"fieldsets": []any{
						map[string]any{
							"title": "You",
							"rows": []any{
								map[string]any{
									"fields": []any{
										map[string]any{
											"name":  "name",
											"label": "Name",
											"type":  "input",
											"validators": map[string]any{
												"required":  true,
												"minLength": 2,
											},
										},
										map[string]any{
											"name":  "email",
											"label": "Email",
											"type":  "email",
										},
									},
								},
							},
						},
					},
				},
			},
		},
	}
}

func firstField(config unitconfig.UnitConfig) map[string]any {
	form := config["form"].(map[string]any)
	section := form["sections"].([]any)[0].(map[string]any)
	fieldset := section["fieldsets"].([]any)[0].(map[string]any)
	row := fieldset["rows"].([]any)[0].(map[string]any)
	return row["fields"].([]any)[0].(map[string]any)
}

func TestNew(t *testing.T) {
	t.Run("Should build every supported kind", func(t *testing.T) {
		for _, kind := range Kinds {
			gen, err := New(kind, Options{})
			require.NoError(t, err)
			assert.Equal(t, string(kind), gen.Kind())
		}
	})

	t.Run("Should default to the generic items kind", func(t *testing.T) {
		gen, err := New("", Options{})
		require.NoError(t, err)
		assert.Equal(t, string(KindItems), gen.Kind())
	})

	t.Run("Should reject unknown kinds", func(t *testing.T) {
		_, err := New("survey", Options{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "form_composer")
	})

	t.Run("Should apply default token attributes unless overridden", func(t *testing.T) {
		gen, err := New(KindItems, Options{})
		require.NoError(t, err)
		assert.Equal(t, DefaultTokenAttributes, gen.TokenAttributes())

		gen, err = New(KindItems, Options{TokenAttributes: []string{"label"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"label"}, gen.TokenAttributes())

		gen, err = New(KindVideoAnnotator, Options{})
		require.NoError(t, err)
		assert.Contains(t, gen.TokenAttributes(), "video")
	})
}

func TestFormComposer(t *testing.T) {
	gen, err := NewFormComposer(Options{})
	require.NoError(t, err)

	t.Run("Should accept a well formed form", func(t *testing.T) {
		assert.Empty(t, gen.ValidateShape(formConfig()))
	})

	t.Run("Should collect items in document order", func(t *testing.T) {
		items := gen.CollectItems(formConfig())
		// form, submit button, section, fieldset, row, two fields
		require.Len(t, items, 7)
		assert.Equal(t, "Form {{title}}", items[0]["title"])
		assert.Equal(t, "Submit", items[1]["text"])
		assert.Equal(t, "about", items[2]["name"])
		assert.Equal(t, "email", items[6]["name"])
	})

	t.Run("Should return items aliasing the config", func(t *testing.T) {
		config := formConfig()
		items := gen.CollectItems(config)
		items[5]["label"] = "changed"
		assert.Equal(t, "changed", firstField(config)["label"])
	})

	t.Run("Should report missing form", func(t *testing.T) {
		assert.NotEmpty(t, gen.ValidateShape(unitconfig.UnitConfig{"other": 1}))
		assert.Empty(t, gen.CollectItems(unitconfig.UnitConfig{"other": 1}))
	})

	t.Run("Should reject an unknown field type", func(t *testing.T) {
		config := formConfig()
		firstField(config)["type"] = "slider"
		assert.NotEmpty(t, gen.ValidateShape(config))
	})

	t.Run("Should reject duplicate field names", func(t *testing.T) {
		config := formConfig()
		firstField(config)["name"] = "email"
		assert.Contains(t, gen.ValidateShape(config), "Field name 'email' is used more than once.")
	})

	t.Run("Should gate custom validators and triggers behind options", func(t *testing.T) {
		config := formConfig()
		field := firstField(config)
		field["validators"] = map[string]any{"required": true, "isPrime": true}
		field["triggers"] = map[string]any{"onChange": "doThing"}

		problems := gen.ValidateShape(config)
		assert.Contains(t, problems, "Field 'name' uses custom validator 'isPrime', but custom validators are not enabled.")
		assert.Contains(t, problems, "Field 'name' declares triggers, but custom triggers are not enabled.")

		permissive, err := NewFormComposer(Options{CustomValidators: true, CustomTriggers: true})
		require.NoError(t, err)
		assert.Empty(t, permissive.ValidateShape(config))
	})

	t.Run("Should expose its schema", func(t *testing.T) {
		s := gen.Schema()
		assert.Equal(t, "object", s["type"])
	})
}

func TestVideoAnnotator(t *testing.T) {
	config := func() unitconfig.UnitConfig {
		return unitconfig.UnitConfig{
			"annotator": map[string]any{
				"title": "Annotate {{clip}}",
				"video": "{{video_url}}",
				"submit_button": map[string]any{
					"text": "Done",
				},
				"segment_fields": []any{
					map[string]any{"name": "label", "label": "Label", "type": "input"},
				},
			},
		}
	}

	t.Run("Should collect annotator, submit button and segment fields", func(t *testing.T) {
		gen, err := NewVideoAnnotator(Options{})
		require.NoError(t, err)
		assert.Empty(t, gen.ValidateShape(config()))
		assert.Len(t, gen.CollectItems(config()), 3)
	})

	t.Run("Should require segment fields when configured", func(t *testing.T) {
		gen, err := NewVideoAnnotator(Options{RequireSegmentFields: true})
		require.NoError(t, err)
		c := config()
		delete(c["annotator"].(map[string]any), "segment_fields")
		assert.Contains(t, gen.ValidateShape(c), "Annotator must define at least one segment field.")

		lenient, err := NewVideoAnnotator(Options{})
		require.NoError(t, err)
		assert.Empty(t, lenient.ValidateShape(c))
	})

	t.Run("Should require a video", func(t *testing.T) {
		gen, err := NewVideoAnnotator(Options{})
		require.NoError(t, err)
		c := config()
		delete(c["annotator"].(map[string]any), "video")
		assert.NotEmpty(t, gen.ValidateShape(c))
	})
}

func TestItems(t *testing.T) {
	gen, err := NewItems(Options{})
	require.NoError(t, err)

	t.Run("Should collect object items only", func(t *testing.T) {
		config := unitconfig.UnitConfig{"items": []any{
			map[string]any{"label": "Hello {{name}}", "type": "text"},
			"not an item",
		}}
		assert.Len(t, gen.CollectItems(config), 1)
	})

	t.Run("Should require an items array", func(t *testing.T) {
		assert.Empty(t, gen.ValidateShape(unitconfig.UnitConfig{"items": []any{}}))
		assert.NotEmpty(t, gen.ValidateShape(unitconfig.UnitConfig{"items": "nope"}))
		assert.NotEmpty(t, gen.ValidateShape(nil))
	})
}
