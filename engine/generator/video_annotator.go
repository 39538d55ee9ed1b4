package generator

import (
	"fmt"

	"github.com/compozy/unitgen/engine/schema"
	"github.com/compozy/unitgen/engine/unitconfig"
)

// VideoAnnotatorTokenAttributes adds the video URL to the default token attributes
var VideoAnnotatorTokenAttributes = []string{"help", "instruction", "label", "title", "tooltip", "video"}

// VideoAnnotator describes an annotator block with a video and segment fields
type VideoAnnotator struct {
	*base
	opts Options
}

func NewVideoAnnotator(opts Options) (*VideoAnnotator, error) {
	opts, err := withDefaults(opts, VideoAnnotatorTokenAttributes)
	if err != nil {
		return nil, err
	}
	g := &VideoAnnotator{
		base: newBase(KindVideoAnnotator, opts.TokenAttributes, &VideoAnnotatorShape{}),
		opts: opts,
	}
	g.checks.AddCheck(schema.CheckFunc(g.checkSegments))
	return g, nil
}

func (g *VideoAnnotator) CollectItems(config unitconfig.UnitConfig) []unitconfig.Item {
	annotator, ok := child(unitconfig.Item(config), "annotator")
	if !ok {
		return nil
	}
	items := []unitconfig.Item{annotator}
	if submit, ok := child(annotator, "submit_button"); ok {
		items = append(items, submit)
	}
	return append(items, children(annotator, "segment_fields")...)
}

func (g *VideoAnnotator) checkSegments(value any) []string {
	config, ok := unitconfig.AsUnitConfig(value)
	if !ok {
		return nil
	}
	annotator, ok := child(unitconfig.Item(config), "annotator")
	if !ok {
		return nil
	}
	fields := children(annotator, "segment_fields")
	var problems []string
	if g.opts.RequireSegmentFields && len(fields) == 0 {
		problems = append(problems, "Annotator must define at least one segment field.")
	}
	seen := make(map[string]bool)
	for _, field := range fields {
		name, _ := field["name"].(string)
		if name == "" {
			continue
		}
		if seen[name] {
			problems = append(problems, fmt.Sprintf("Segment field name '%s' is used more than once.", name))
		}
		seen[name] = true
	}
	return problems
}
