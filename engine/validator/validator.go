package validator

import (
	"fmt"

	"github.com/compozy/unitgen/engine/token"
	"github.com/compozy/unitgen/engine/unitconfig"
)

const (
	sourceUnitConfig = "unit config"
	sourceTokenSets  = "token sets values config"
	sourceTaskData   = "task data config"
)

// Validator cross-checks a template against its token set values
type Validator struct {
	gen     unitconfig.Generator
	scanner *token.Scanner
}

func New(gen unitconfig.Generator, scanner *token.Scanner) *Validator {
	return &Validator{gen: gen, scanner: scanner}
}

// ValidateTokenSetValues checks the token-set-values document is an array of
// objects whose tokens_values, when present, is an object. Empty entries are legal.
func (v *Validator) ValidateTokenSetValues(raw any) (unitconfig.TokenSetValues, []string) {
	switch typed := raw.(type) {
	case nil:
		return unitconfig.TokenSetValues{}, nil
	case unitconfig.TokenSetValues:
		list := make([]any, len(typed))
		for i, e := range typed {
			list[i] = map[string]any(e)
		}
		raw = list
	}
	list, ok := unitconfig.AsList(raw)
	if !ok {
		return nil, []string{"Config must be a JSON Array."}
	}
	entries := make(unitconfig.TokenSetValues, 0, len(list))
	var problems []string
	for i, rawEntry := range list {
		obj, ok := rawEntry.(map[string]any)
		if !ok {
			problems = append(problems, fmt.Sprintf("Item #%d must be a JSON object.", i+1))
			continue
		}
		entry := unitconfig.Entry(obj)
		if tv, exists := entry[unitconfig.TokensValuesKey]; exists {
			if _, ok := tv.(map[string]any); !ok {
				problems = append(problems, fmt.Sprintf(
					"Item #%d: '%s' must be a JSON object.", i+1, unitconfig.TokensValuesKey,
				))
				continue
			}
		}
		entries = append(entries, entry)
	}
	return entries, problems
}

// Validate runs every check and aggregates all problems into one report
func (v *Validator) Validate(config unitconfig.UnitConfig, rawTokenSets any) *unitconfig.Report {
	report := unitconfig.NewReport()
	report.AddAll(unitconfig.CategoryShape, sourceUnitConfig, v.gen.ValidateShape(config))

	entries, problems := v.ValidateTokenSetValues(rawTokenSets)
	report.AddAll(unitconfig.CategoryShape, sourceTokenSets, problems)

	report.Merge(v.CheckTokens(config, entries))
	return report
}

// CheckTokens compares template token names with declared names and reports
// tokens placed in unsupported attributes
func (v *Validator) CheckTokens(config unitconfig.UnitConfig, entries unitconfig.TokenSetValues) *unitconfig.Report {
	report := unitconfig.NewReport()
	templateNames, misplaced := v.scanner.Scan(config, v.gen)
	declared := token.DeclaredNames(entries)

	report.AddTokenMismatch(
		declared.Difference(templateNames).Sorted(),
		templateNames.Difference(declared).Sorted(),
	)
	report.AddUnsupported(sourceUnitConfig, misplaced)
	return report
}

// ValidateTaskData checks an already generated artifact
func (v *Validator) ValidateTaskData(raw any) *unitconfig.Report {
	report := unitconfig.NewReport()
	list, ok := unitconfig.AsList(raw)
	if !ok {
		report.Add(unitconfig.CategoryTaskData, sourceTaskData, "Config must be a JSON Array.")
		return report
	}
	emptyReported := false
	for i, rawItem := range list {
		config, ok := unitconfig.AsUnitConfig(rawItem)
		if !ok {
			report.Add(unitconfig.CategoryTaskData, sourceTaskData, fmt.Sprintf("Item #%d must be a JSON object.", i+1))
			continue
		}
		if len(config) == 0 {
			if !emptyReported {
				report.Add(
					unitconfig.CategoryTaskData,
					sourceTaskData,
					"Task data config must contain at least one non-empty item.",
				)
				emptyReported = true
			}
			continue
		}
		for _, problem := range v.gen.ValidateShape(config) {
			report.Add(unitconfig.CategoryTaskData, sourceTaskData, fmt.Sprintf("Item #%d: %s", i+1, problem))
		}
	}
	return report
}
