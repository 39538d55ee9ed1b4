package generator

import (
	"fmt"

	"github.com/compozy/unitgen/engine/schema"
	"github.com/compozy/unitgen/engine/unitconfig"
)

// builtinValidators are understood by the form renderer without custom code
var builtinValidators = map[string]bool{
	"required":      true,
	"minLength":     true,
	"maxLength":     true,
	"regexp":        true,
	"fileExtension": true,
}

// FormComposer describes form → sections → fieldsets → rows → fields templates
type FormComposer struct {
	*base
	opts Options
}

func NewFormComposer(opts Options) (*FormComposer, error) {
	opts, err := withDefaults(opts, DefaultTokenAttributes)
	if err != nil {
		return nil, err
	}
	g := &FormComposer{
		base: newBase(KindFormComposer, opts.TokenAttributes, &FormComposerShape{}),
		opts: opts,
	}
	g.checks.AddCheck(schema.CheckFunc(g.checkFields))
	return g, nil
}

// CollectItems returns the form, its submit button, and every section,
// fieldset, row and field, in document order.
func (g *FormComposer) CollectItems(config unitconfig.UnitConfig) []unitconfig.Item {
	form, ok := child(unitconfig.Item(config), "form")
	if !ok {
		return nil
	}
	items := []unitconfig.Item{form}
	if submit, ok := child(form, "submit_button"); ok {
		items = append(items, submit)
	}
	for _, section := range children(form, "sections") {
		items = append(items, section)
		for _, fieldset := range children(section, "fieldsets") {
			items = append(items, fieldset)
			for _, row := range children(fieldset, "rows") {
				items = append(items, row)
				items = append(items, children(row, "fields")...)
			}
		}
	}
	return items
}

func (g *FormComposer) fields(config unitconfig.UnitConfig) []unitconfig.Item {
	form, ok := child(unitconfig.Item(config), "form")
	if !ok {
		return nil
	}
	var fields []unitconfig.Item
	for _, section := range children(form, "sections") {
		for _, fieldset := range children(section, "fieldsets") {
			for _, row := range children(fieldset, "rows") {
				fields = append(fields, children(row, "fields")...)
			}
		}
	}
	return fields
}

func (g *FormComposer) checkFields(value any) []string {
	config, ok := unitconfig.AsUnitConfig(value)
	if !ok {
		return nil
	}
	var problems []string
	seen := make(map[string]bool)
	for _, field := range g.fields(config) {
		name, _ := field["name"].(string)
		if name != "" {
			if seen[name] {
				problems = append(problems, fmt.Sprintf("Field name '%s' is used more than once.", name))
			}
			seen[name] = true
		}
		if validators, ok := field["validators"].(map[string]any); ok && !g.opts.CustomValidators {
			for _, v := range sortedKeys(validators) {
				if !builtinValidators[v] {
					problems = append(problems, fmt.Sprintf(
						"Field '%s' uses custom validator '%s', but custom validators are not enabled.", name, v,
					))
				}
			}
		}
		if triggers, ok := field["triggers"].(map[string]any); ok && len(triggers) > 0 && !g.opts.CustomTriggers {
			problems = append(problems, fmt.Sprintf(
				"Field '%s' declares triggers, but custom triggers are not enabled.", name,
			))
		}
	}
	return problems
}
