package token

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

const (
	DefaultStart = `\{\{`
	DefaultEnd   = `\}\}`
	// DefaultName matches ordinary word tokens
	DefaultName = `\w+?`
	// PermissiveName matches any call-shaped text; used only when scanning for procedures
	PermissiveName = `.+?`

	nameGroup = "token"
)

// Patterns holds the regular expression sources delimiting and naming tokens
type Patterns struct {
	Start string
	End   string
	Name  string
}

// DefaultPatterns returns the double-brace placeholder syntax
func DefaultPatterns() Patterns {
	return Patterns{Start: DefaultStart, End: DefaultEnd, Name: DefaultName}
}

// WithName returns a copy using a different name pattern
func (p Patterns) WithName(name string) Patterns {
	p.Name = name
	return p
}

func (p Patterns) withDefaults() Patterns {
	if p.Start == "" {
		p.Start = DefaultStart
	}
	if p.End == "" {
		p.End = DefaultEnd
	}
	if p.Name == "" {
		p.Name = DefaultName
	}
	return p
}

// Compile builds START \s* (NAME) \s* END with the name in a named group
func (p Patterns) Compile() (*regexp.Regexp, error) {
	p = p.withDefaults()
	re, err := regexp.Compile(fmt.Sprintf(`%s\s*(?P<%s>%s)\s*%s`, p.Start, nameGroup, p.Name, p.End))
	if err != nil {
		return nil, fmt.Errorf("invalid token patterns: %w", err)
	}
	return re, nil
}

// Validate reports whether every pattern compiles
func (p Patterns) Validate() error {
	_, err := p.Compile()
	return err
}

// LiteralNames builds a single-pass matcher for an exact set of token names
func (p Patterns) LiteralNames(names []string) (*regexp.Regexp, error) {
	if len(names) == 0 {
		return nil, nil
	}
	sorted := make([]string, len(names))
	copy(sorted, names)
	// longest first so that a name never shadows a longer one sharing its prefix
	sort.Slice(sorted, func(i, j int) bool {
		if len(sorted[i]) != len(sorted[j]) {
			return len(sorted[i]) > len(sorted[j])
		}
		return sorted[i] < sorted[j]
	})
	quoted := make([]string, len(sorted))
	for i, name := range sorted {
		quoted[i] = regexp.QuoteMeta(name)
	}
	return p.WithName(strings.Join(quoted, "|")).Compile()
}

// FindNames returns every token name in text, in order of appearance
func FindNames(re *regexp.Regexp, text string) []string {
	idx := re.SubexpIndex(nameGroup)
	matches := re.FindAllStringSubmatch(text, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[idx])
	}
	return names
}

// ReplaceNames rewrites every match in one pass; replacement text is never rescanned
func ReplaceNames(re *regexp.Regexp, text string, replace func(name string) (string, bool)) string {
	idx := re.SubexpIndex(nameGroup)
	matches := re.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}
	var b strings.Builder
	last := 0
	for _, m := range matches {
		name := text[m[2*idx]:m[2*idx+1]]
		value, ok := replace(name)
		if !ok {
			continue
		}
		b.WriteString(text[last:m[0]])
		b.WriteString(value)
		last = m[1]
	}
	b.WriteString(text[last:])
	return b.String()
}
