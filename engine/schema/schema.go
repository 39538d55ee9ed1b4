package schema

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	invopop "github.com/invopop/jsonschema"
	"github.com/kaptinlin/jsonschema"
)

// -----------------------------------------------------------------------------
// Schema
// -----------------------------------------------------------------------------

type Schema map[string]any
type Result = jsonschema.EvaluationResult

func (s *Schema) String() string {
	bytes, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	return string(bytes)
}

func (s *Schema) Compile() (*jsonschema.Schema, error) {
	if s == nil {
		return nil, nil
	}
	bytes, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile(bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return schema, nil
}

// Validate compiles the schema and evaluates value against it
func (s *Schema) Validate(value any) ([]string, error) {
	compiled, err := s.Compile()
	if err != nil {
		return nil, err
	}
	return Evaluate(compiled, value), nil
}

// Evaluate returns one message per failing keyword, sorted by instance location.
// Decoded documents carry json.Number values, so the instance is re-encoded and
// evaluated as JSON to keep numbers typed as numbers.
func Evaluate(compiled *jsonschema.Schema, value any) []string {
	if compiled == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return []string{fmt.Sprintf("failed to encode instance: %v", err)}
	}
	result := compiled.ValidateJSON(data)
	if result.Valid {
		return nil
	}
	var messages []string
	collectMessages(result.ToList(), &messages)
	if len(messages) == 0 {
		for _, err := range result.Errors {
			messages = append(messages, err.Error())
		}
	}
	sort.Strings(messages)
	return dedupe(messages)
}

func collectMessages(list *jsonschema.List, out *[]string) {
	if list == nil {
		return
	}
	location := list.InstanceLocation
	if location == "" {
		location = "/"
	}
	for _, msg := range list.Errors {
		*out = append(*out, fmt.Sprintf("%s: %s", location, msg))
	}
	for i := range list.Details {
		collectMessages(&list.Details[i], out)
	}
}

func dedupe(sorted []string) []string {
	if len(sorted) < 2 {
		return sorted
	}
	out := sorted[:1]
	for _, msg := range sorted[1:] {
		if msg != out[len(out)-1] {
			out = append(out, msg)
		}
	}
	return out
}

// -----------------------------------------------------------------------------
// Reflection
// -----------------------------------------------------------------------------

// Reflect builds a schema from a Go shape struct. Fields are required only when
// tagged `jsonschema:"required"`, and unknown attributes are allowed since
// templates carry free-form attributes next to the known ones.
func Reflect(v any) (Schema, error) {
	reflector := &invopop.Reflector{
		Anonymous:                  true,
		DoNotReference:             true,
		ExpandedStruct:             true,
		RequiredFromJSONSchemaTags: true,
		AllowAdditionalProperties:  true,
	}
	reflected := reflector.Reflect(v)
	bytes, err := json.Marshal(reflected)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal reflected schema: %w", err)
	}
	var out Schema
	if err := json.Unmarshal(bytes, &out); err != nil {
		return nil, fmt.Errorf("failed to decode reflected schema: %w", err)
	}
	return out, nil
}

// MustCompile reflects and compiles a shape struct, panicking on programmer error
func MustCompile(v any) (Schema, *jsonschema.Schema) {
	s, err := Reflect(v)
	if err != nil {
		panic(err)
	}
	compiled, err := s.Compile()
	if err != nil {
		panic(fmt.Sprintf("invalid schema for %T: %s", v, strings.TrimSpace(err.Error())))
	}
	return s, compiled
}
