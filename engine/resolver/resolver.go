package resolver

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"

	"github.com/compozy/unitgen/engine/token"
	"github.com/compozy/unitgen/engine/unitconfig"
)

// Resolver inlines referenced file content and substitutes literal token values
type Resolver struct {
	fs       afero.Fs
	patterns token.Patterns
}

func New(fs afero.Fs, patterns token.Patterns) (*Resolver, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if err := patterns.Validate(); err != nil {
		return nil, err
	}
	return &Resolver{fs: fs, patterns: patterns}, nil
}

// InlineFile returns the content of the file named by value when it exists;
// any other value is returned unchanged.
func (r *Resolver) InlineFile(value any, dataPath string) (any, error) {
	path, ok := r.filePath(value, dataPath)
	if !ok {
		return value, nil
	}
	content, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("file %s is not UTF-8 text (detected %s)", path, mimetype.Detect(content).String())
	}
	return string(content), nil
}

func (r *Resolver) filePath(value any, dataPath string) (string, bool) {
	text, ok := value.(string)
	if !ok {
		return "", false
	}
	text = strings.TrimSpace(text)
	if text == "" || strings.ContainsAny(text, "\n\r\x00") {
		return "", false
	}
	path := text
	if dataPath != "" && !filepath.IsAbs(path) {
		path = filepath.Join(dataPath, path)
	}
	info, err := r.fs.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return path, true
}

// Substitution is a prepared set of token values, ready to apply to many strings
type Substitution struct {
	re     *regexp.Regexp
	values map[string]string
}

// Prepare inlines file-backed values and compiles a matcher for exactly the given names
func (r *Resolver) Prepare(values map[string]any, dataPath string) (*Substitution, error) {
	resolved := make(map[string]string, len(values))
	names := make([]string, 0, len(values))
	for name, value := range values {
		inlined, err := r.InlineFile(value, dataPath)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve value of token %s: %w", name, err)
		}
		resolved[name] = unitconfig.ValueString(inlined)
		names = append(names, name)
	}
	re, err := r.patterns.LiteralNames(names)
	if err != nil {
		return nil, err
	}
	return &Substitution{re: re, values: resolved}, nil
}

// Apply replaces every occurrence of each prepared token in a single pass, so a
// substituted value is never scanned again. Tokens without a value stay verbatim.
func (s *Substitution) Apply(text string) string {
	if s == nil || s.re == nil || text == "" {
		return text
	}
	return token.ReplaceNames(s.re, text, func(name string) (string, bool) {
		value, ok := s.values[name]
		return value, ok
	})
}

// Substitute resolves values against dataPath and applies them to text
func (r *Resolver) Substitute(text string, values map[string]any, dataPath string) (string, error) {
	if len(values) == 0 || text == "" {
		return text, nil
	}
	sub, err := r.Prepare(values, dataPath)
	if err != nil {
		return "", err
	}
	return sub.Apply(text), nil
}

// SubstituteConfig applies the values to every token-supporting string
// attribute of every item, mutating config in place.
func (r *Resolver) SubstituteConfig(
	config unitconfig.UnitConfig,
	gen unitconfig.Generator,
	values map[string]any,
	dataPath string,
) error {
	if len(values) == 0 {
		return nil
	}
	sub, err := r.Prepare(values, dataPath)
	if err != nil {
		return err
	}
	attrs := gen.TokenAttributes()
	for _, item := range gen.CollectItems(config) {
		for _, attr := range attrs {
			text, ok := item[attr].(string)
			if !ok || text == "" {
				continue
			}
			item[attr] = sub.Apply(text)
		}
	}
	return nil
}

// InlineConfig replaces every token-supporting attribute naming a file with
// that file's content, mutating config in place.
func (r *Resolver) InlineConfig(config unitconfig.UnitConfig, gen unitconfig.Generator, dataPath string) error {
	attrs := gen.TokenAttributes()
	for _, item := range gen.CollectItems(config) {
		for _, attr := range attrs {
			value, ok := item[attr]
			if !ok || value == nil || value == "" {
				continue
			}
			inlined, err := r.InlineFile(value, dataPath)
			if err != nil {
				return fmt.Errorf("attribute %s: %w", attr, err)
			}
			item[attr] = inlined
		}
	}
	return nil
}
