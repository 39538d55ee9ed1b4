package schema

import (
	"github.com/kaptinlin/jsonschema"
)

// -----------------------------------------------------------------------------
// Check interface
// -----------------------------------------------------------------------------

// Check inspects a decoded document and returns human readable problems
type Check interface {
	Check(value any) []string
}

// CheckFunc adapts a plain function to Check
type CheckFunc func(value any) []string

func (f CheckFunc) Check(value any) []string {
	return f(value)
}

// -----------------------------------------------------------------------------
// CompositeCheck
// -----------------------------------------------------------------------------

// CompositeCheck runs every check and aggregates their problems
type CompositeCheck struct {
	checks []Check
}

func NewCompositeCheck(checks ...Check) *CompositeCheck {
	return &CompositeCheck{
		checks: checks,
	}
}

func (c *CompositeCheck) AddCheck(check Check) {
	c.checks = append(c.checks, check)
}

func (c *CompositeCheck) Check(value any) []string {
	var problems []string
	for _, check := range c.checks {
		problems = append(problems, check.Check(value)...)
	}
	return problems
}

// -----------------------------------------------------------------------------
// CompiledCheck
// -----------------------------------------------------------------------------

// CompiledCheck evaluates a compiled JSON schema
type CompiledCheck struct {
	schema *jsonschema.Schema
}

func NewCompiledCheck(compiled *jsonschema.Schema) *CompiledCheck {
	return &CompiledCheck{schema: compiled}
}

func (c *CompiledCheck) Check(value any) []string {
	return Evaluate(c.schema, value)
}
