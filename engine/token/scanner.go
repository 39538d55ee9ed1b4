package token

import (
	"regexp"
	"sort"

	"github.com/compozy/unitgen/engine/unitconfig"
)

// Set is a set of token names
type Set map[string]struct{}

func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

func (s Set) Add(names ...string) {
	for _, n := range names {
		s[n] = struct{}{}
	}
}

func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Difference returns the names in s missing from other
func (s Set) Difference(other Set) Set {
	out := make(Set)
	for n := range s {
		if !other.Has(n) {
			out[n] = struct{}{}
		}
	}
	return out
}

func (s Set) Union(other Set) Set {
	out := make(Set, len(s)+len(other))
	for n := range s {
		out[n] = struct{}{}
	}
	for n := range other {
		out[n] = struct{}{}
	}
	return out
}

func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Scanner extracts token names from the token-supporting attributes of a config
type Scanner struct {
	patterns Patterns
	re       *regexp.Regexp
}

func NewScanner(patterns Patterns) (*Scanner, error) {
	patterns = patterns.withDefaults()
	re, err := patterns.Compile()
	if err != nil {
		return nil, err
	}
	return &Scanner{patterns: patterns, re: re}, nil
}

func (s *Scanner) Patterns() Patterns {
	return s.patterns
}

// WithName returns a scanner sharing delimiters but using another name pattern
func (s *Scanner) WithName(name string) (*Scanner, error) {
	return NewScanner(s.patterns.WithName(name))
}

// Scan collects the distinct token names found in supported attributes and one
// error per unsupported string attribute containing token syntax.
func (s *Scanner) Scan(
	config unitconfig.UnitConfig,
	gen unitconfig.Generator,
) (Set, []*unitconfig.UnsupportedAttributeError) {
	re := s.re
	supportedList := gen.TokenAttributes()
	supported := NewSet(supportedList...)
	names := make(Set)
	var errs []*unitconfig.UnsupportedAttributeError

	for _, item := range gen.CollectItems(config) {
		for _, attr := range supportedList {
			text, ok := item[attr].(string)
			if !ok || text == "" {
				continue
			}
			names.Add(FindNames(re, text)...)
		}

		attrs := make([]string, 0, len(item))
		for attr := range item {
			if !supported.Has(attr) {
				attrs = append(attrs, attr)
			}
		}
		sort.Strings(attrs)
		for _, attr := range attrs {
			text, ok := item[attr].(string)
			if !ok {
				continue
			}
			found := FindNames(re, text)
			if len(found) == 0 {
				continue
			}
			errs = append(errs, &unitconfig.UnsupportedAttributeError{
				Attribute: attr,
				Value:     text,
				Tokens:    found,
				Supported: supportedList,
			})
		}
	}
	return names, errs
}

// DeclaredNames returns the union of token names declared across all entries
func DeclaredNames(entries unitconfig.TokenSetValues) Set {
	names := make(Set)
	for _, entry := range entries {
		for name := range entry.TokensValues() {
			names.Add(name)
		}
	}
	return names
}
