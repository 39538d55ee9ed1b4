package unitconfig

import (
	"fmt"
	"strings"
)

// Category groups problems in a validation report
type Category string

const (
	CategoryShape                Category = "shape"
	CategoryTokenMismatch        Category = "token_mismatch"
	CategoryUnsupportedAttribute Category = "unsupported_attribute"
	CategoryTaskData             Category = "task_data"
)

// Categories lists every category in display order
var Categories = []Category{
	CategoryShape,
	CategoryTaskData,
	CategoryTokenMismatch,
	CategoryUnsupportedAttribute,
}

func (c Category) Title() string {
	switch c {
	case CategoryShape:
		return "Config is invalid"
	case CategoryTaskData:
		return "Task data config is invalid"
	case CategoryTokenMismatch:
		return "Token names do not match"
	case CategoryUnsupportedAttribute:
		return "Tokens in unsupported attributes"
	default:
		return string(c)
	}
}

// Problem is one validation finding
type Problem struct {
	Category Category
	Source   string
	Message  string
}

// Report aggregates every problem found during one validation run
type Report struct {
	Problems       []Problem
	Overspecified  []string
	Underspecified []string
}

func NewReport() *Report {
	return &Report{}
}

// Valid reports whether no problem was recorded
func (r *Report) Valid() bool {
	return r == nil || len(r.Problems) == 0
}

func (r *Report) Add(category Category, source, message string) {
	r.Problems = append(r.Problems, Problem{Category: category, Source: source, Message: message})
}

func (r *Report) AddAll(category Category, source string, messages []string) {
	for _, msg := range messages {
		r.Add(category, source, msg)
	}
}

// AddTokenMismatch records overspecified and underspecified token names
func (r *Report) AddTokenMismatch(overspecified, underspecified []string) {
	if len(overspecified) > 0 {
		r.Overspecified = append(r.Overspecified, overspecified...)
		r.Add(CategoryTokenMismatch, "token sets values config", fmt.Sprintf(
			"Values for the following tokens are provided in token sets values config, "+
				"but they are not defined in the unit config: %s.",
			strings.Join(overspecified, ", "),
		))
	}
	if len(underspecified) > 0 {
		r.Underspecified = append(r.Underspecified, underspecified...)
		r.Add(CategoryTokenMismatch, "unit config", fmt.Sprintf(
			"The following tokens are specified in the unit config, "+
				"but their values are not provided in the token sets values config: %s.",
			strings.Join(underspecified, ", "),
		))
	}
}

// AddUnsupported records misplaced-token errors
func (r *Report) AddUnsupported(source string, errs []*UnsupportedAttributeError) {
	for _, err := range errs {
		r.Add(CategoryUnsupportedAttribute, source, err.Error())
	}
}

// Merge appends every problem of other into r
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.Problems = append(r.Problems, other.Problems...)
	r.Overspecified = append(r.Overspecified, other.Overspecified...)
	r.Underspecified = append(r.Underspecified, other.Underspecified...)
}

// Count returns the number of problems in a category
func (r *Report) Count(category Category) int {
	n := 0
	for _, p := range r.Problems {
		if p.Category == category {
			n++
		}
	}
	return n
}

// Grouped returns problem messages keyed by category, preserving insertion order
func (r *Report) Grouped() map[Category][]string {
	grouped := make(map[Category][]string)
	for _, p := range r.Problems {
		grouped[p.Category] = append(grouped[p.Category], p.Message)
	}
	return grouped
}

// Err returns nil for a valid report, or a *ValidationError wrapping it
func (r *Report) Err() error {
	if r.Valid() {
		return nil
	}
	return &ValidationError{Report: r}
}

func (r *Report) String() string {
	if r.Valid() {
		return "no problems"
	}
	var b strings.Builder
	grouped := r.Grouped()
	first := true
	for _, category := range Categories {
		messages := grouped[category]
		if len(messages) == 0 {
			continue
		}
		if !first {
			b.WriteString("\n\n")
		}
		first = false
		b.WriteString(category.Title())
		b.WriteString(":")
		for _, msg := range messages {
			b.WriteString("\n  - ")
			b.WriteString(msg)
		}
	}
	return b.String()
}
