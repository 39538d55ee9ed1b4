package generator

import (
	"fmt"
	"sort"
	"strings"

	"dario.cat/mergo"

	"github.com/compozy/unitgen/engine/schema"
	"github.com/compozy/unitgen/engine/unitconfig"
)

// Kind names a generator implementation
type Kind string

const (
	KindFormComposer   Kind = "form_composer"
	KindVideoAnnotator Kind = "video_annotator"
	KindItems          Kind = "items"
)

// Kinds lists every supported generator kind
var Kinds = []Kind{KindFormComposer, KindVideoAnnotator, KindItems}

// DefaultTokenAttributes are the attributes allowed to hold tokens unless overridden
var DefaultTokenAttributes = []string{"help", "instruction", "label", "title", "tooltip"}

// SchemaProvider is implemented by generators that expose their shape schema
type SchemaProvider interface {
	Schema() schema.Schema
}

// Options configures any generator kind. Fields irrelevant to a kind are ignored.
type Options struct {
	// TokenAttributes overrides the kind's default token-supporting attributes
	TokenAttributes []string
	// CustomValidators allows form fields to reference non built-in validators
	CustomValidators bool
	// CustomTriggers allows form fields to declare triggers
	CustomTriggers bool
	// RequireSegmentFields makes segment_fields mandatory for the video annotator
	RequireSegmentFields bool
}

// New builds the generator for kind
func New(kind Kind, opts Options) (unitconfig.Generator, error) {
	var (
		gen unitconfig.Generator
		err error
	)
	switch kind {
	case KindFormComposer:
		gen, err = NewFormComposer(opts)
	case KindVideoAnnotator:
		gen, err = NewVideoAnnotator(opts)
	case KindItems, "":
		gen, err = NewItems(opts)
	default:
		return nil, fmt.Errorf("unknown generator kind %q (supported: %s)", kind, kindList())
	}
	if err != nil {
		return nil, err
	}
	return gen, nil
}

func kindList() string {
	names := make([]string, len(Kinds))
	for i, k := range Kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

func withDefaults(opts Options, attrs []string) (Options, error) {
	defaults := Options{TokenAttributes: attrs}
	if err := mergo.Merge(&opts, defaults); err != nil {
		return Options{}, fmt.Errorf("failed to apply generator defaults: %w", err)
	}
	return opts, nil
}

// base holds what every generator kind shares
type base struct {
	kind   Kind
	attrs  []string
	shape  schema.Schema
	checks *schema.CompositeCheck
}

func newBase(kind Kind, attrs []string, shape any) *base {
	s, compiled := schema.MustCompile(shape)
	return &base{
		kind:   kind,
		attrs:  attrs,
		shape:  s,
		checks: schema.NewCompositeCheck(schema.NewCompiledCheck(compiled)),
	}
}

func (b *base) Kind() string {
	return string(b.kind)
}

func (b *base) TokenAttributes() []string {
	out := make([]string, len(b.attrs))
	copy(out, b.attrs)
	return out
}

func (b *base) Schema() schema.Schema {
	return b.shape
}

func (b *base) ValidateShape(config unitconfig.UnitConfig) []string {
	if config == nil {
		return []string{"Unit config must be a JSON object."}
	}
	return b.checks.Check(map[string]any(config))
}

// -----------------------------------------------------------------------------
// traversal helpers
// -----------------------------------------------------------------------------

func child(item unitconfig.Item, key string) (unitconfig.Item, bool) {
	if item == nil {
		return nil, false
	}
	return unitconfig.AsItem(item[key])
}

func children(item unitconfig.Item, key string) []unitconfig.Item {
	if item == nil {
		return nil
	}
	list, ok := unitconfig.AsList(item[key])
	if !ok {
		return nil
	}
	out := make([]unitconfig.Item, 0, len(list))
	for _, raw := range list {
		if it, ok := unitconfig.AsItem(raw); ok {
			out = append(out, it)
		}
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
