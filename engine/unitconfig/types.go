package unitconfig

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mohae/deepcopy"
)

const (
	// TokensValuesKey is the reserved entry key holding token name → value pairs
	TokensValuesKey = "tokens_values"
	// GeneratorMetadataKey is injected into every variant produced from a non-empty entry
	GeneratorMetadataKey = "generator_metadata"
)

type (
	// UnitConfig is one decoded task-UI template
	UnitConfig map[string]any
	// Item is an attribute map nested inside a UnitConfig
	Item map[string]any
	// Entry is one token set: tokens_values plus free-form metadata
	Entry map[string]any
	// TokenSetValues is the ordered sequence of entries driving expansion
	TokenSetValues []Entry
	// GeneratedConfig is the ordered list of expanded variants
	GeneratedConfig []UnitConfig
)

// Generator describes one kind of task UI: its shape and where tokens may live.
// Items returned by CollectItems alias the config they were collected from.
type Generator interface {
	Kind() string
	TokenAttributes() []string
	ValidateShape(config UnitConfig) []string
	CollectItems(config UnitConfig) []Item
}

// TokensValues returns the entry's token values, or nil when the entry declares none.
func (e Entry) TokensValues() map[string]any {
	values, ok := e[TokensValuesKey].(map[string]any)
	if !ok {
		return nil
	}
	return values
}

// IsEmpty reports whether the entry is the literal {}
func (e Entry) IsEmpty() bool {
	return len(e) == 0
}

// Clone returns a deep copy of the config so that mutations never alias the source.
func Clone(config UnitConfig) (UnitConfig, error) {
	if config == nil {
		return nil, nil
	}
	copied, ok := deepcopy.Copy(map[string]any(config)).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("failed to copy unit config")
	}
	return UnitConfig(copied), nil
}

// ValueString converts a decoded JSON value into the text substituted for a token.
func ValueString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v); err != nil {
			return fmt.Sprintf("%v", v)
		}
		return strings.TrimSuffix(buf.String(), "\n")
	}
}

// AsUnitConfig converts a decoded JSON value into a UnitConfig when it is an object.
func AsUnitConfig(raw any) (UnitConfig, bool) {
	switch v := raw.(type) {
	case UnitConfig:
		return v, true
	case map[string]any:
		return UnitConfig(v), true
	default:
		return nil, false
	}
}

// AsItem converts a nested value into an Item when it is an object.
func AsItem(raw any) (Item, bool) {
	switch v := raw.(type) {
	case Item:
		return v, true
	case map[string]any:
		return Item(v), true
	default:
		return nil, false
	}
}

// AsList returns the value as a JSON array.
func AsList(raw any) ([]any, bool) {
	v, ok := raw.([]any)
	return v, ok
}
