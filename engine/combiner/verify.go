package combiner

import (
	"context"
	"fmt"

	"github.com/compozy/unitgen/engine/unitconfig"
	"github.com/compozy/unitgen/pkg/jsonio"
	"github.com/compozy/unitgen/pkg/logger"
	"github.com/compozy/unitgen/pkg/tokensets"
)

// VerifyInput names the documents Verify checks; empty or missing paths are skipped
type VerifyInput struct {
	TaskData            string
	UnitConfig          string
	TokenSets           string
	SeparateTokenValues string
	DataDir             string
	TaskDataOnly        bool
}

// Verify checks every existing document and aggregates all problems in one report
func (c *Combiner) Verify(ctx context.Context, in VerifyInput) *unitconfig.Report {
	report := unitconfig.NewReport()
	log := logger.FromContext(ctx)

	if jsonio.Exists(c.fs, in.TaskData) {
		raw, err := jsonio.ReadFile(c.fs, in.TaskData)
		if err != nil {
			report.Add(unitconfig.CategoryTaskData, in.TaskData, err.Error())
		} else {
			report.Merge(c.validator.ValidateTaskData(raw))
		}
		log.Debug("Verified task data", "path", in.TaskData)
	} else if in.TaskDataOnly {
		report.Add(unitconfig.CategoryTaskData, in.TaskData, fmt.Sprintf("Task data file '%s' not found.", in.TaskData))
	}
	if in.TaskDataOnly {
		return report
	}

	if jsonio.Exists(c.fs, in.SeparateTokenValues) {
		raw, err := jsonio.ReadFile(c.fs, in.SeparateTokenValues)
		if err != nil {
			report.Add(unitconfig.CategoryShape, in.SeparateTokenValues, err.Error())
		} else {
			report.Merge(verifySeparate(raw))
		}
	}

	if !jsonio.Exists(c.fs, in.UnitConfig) {
		return report
	}
	raw, err := jsonio.ReadFile(c.fs, in.UnitConfig)
	if err != nil {
		report.Add(unitconfig.CategoryShape, in.UnitConfig, err.Error())
		return report
	}
	template, ok := unitconfig.AsUnitConfig(raw)
	if !ok {
		report.Add(unitconfig.CategoryShape, "unit config", "Unit config must be a JSON object.")
		return report
	}
	if in.DataDir != "" {
		if err := c.resolver.InlineConfig(template, c.gen, in.DataDir); err != nil {
			report.Add(unitconfig.CategoryShape, in.UnitConfig, err.Error())
			return report
		}
	}
	rawTokenSets, err := jsonio.ReadOptional(c.fs, in.TokenSets)
	if err != nil {
		report.Add(unitconfig.CategoryShape, in.TokenSets, err.Error())
		return report
	}
	report.Merge(c.validator.Validate(template, rawTokenSets))
	return report
}

func verifySeparate(raw any) *unitconfig.Report {
	report := unitconfig.NewReport()
	_, problems := tokensets.Validate(raw)
	report.AddAll(unitconfig.CategoryShape, "separate token values config", problems)
	return report
}
