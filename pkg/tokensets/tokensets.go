// Package tokensets turns a separate token values document, mapping each token
// name to its candidate values, into the token set values consumed by expansion.
package tokensets

import (
	"fmt"
	"sort"

	"github.com/compozy/unitgen/engine/unitconfig"
)

// SeparateValues maps a token name to every value it may take
type SeparateValues map[string][]any

// Validate checks raw is an object of non-empty arrays and returns it typed
func Validate(raw any) (SeparateValues, []string) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, []string{"Config must be a key/value JSON Object."}
	}
	values := make(SeparateValues, len(obj))
	var problems []string
	for _, name := range sortedNames(obj) {
		list, ok := obj[name].([]any)
		if !ok {
			problems = append(problems, fmt.Sprintf("Value of token '%s' must be a JSON Array.", name))
			continue
		}
		if len(list) == 0 {
			problems = append(problems, fmt.Sprintf("Token '%s' must have at least one value.", name))
			continue
		}
		values[name] = list
	}
	return values, problems
}

// Permute returns the cartesian product of all token values. Names are taken in
// sorted order and the first name varies slowest; values keep document order.
func Permute(values SeparateValues) unitconfig.TokenSetValues {
	if len(values) == 0 {
		return unitconfig.TokenSetValues{}
	}
	names := make([]string, 0, len(values))
	total := 1
	for name, list := range values {
		names = append(names, name)
		total *= len(list)
	}
	sort.Strings(names)
	if total == 0 {
		return unitconfig.TokenSetValues{}
	}

	out := make(unitconfig.TokenSetValues, 0, total)
	indices := make([]int, len(names))
	for {
		set := make(map[string]any, len(names))
		for i, name := range names {
			set[name] = values[name][indices[i]]
		}
		out = append(out, unitconfig.Entry{unitconfig.TokensValuesKey: set})

		// odometer increment from the last name
		pos := len(names) - 1
		for pos >= 0 {
			indices[pos]++
			if indices[pos] < len(values[names[pos]]) {
				break
			}
			indices[pos] = 0
			pos--
		}
		if pos < 0 {
			return out
		}
	}
}

func sortedNames(m map[string]any) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
