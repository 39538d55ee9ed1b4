package generator

import (
	"github.com/compozy/unitgen/engine/unitconfig"
)

// Items is the generic generator for configs shaped as {"items": [ {...}, ... ]}
type Items struct {
	*base
}

func NewItems(opts Options) (*Items, error) {
	opts, err := withDefaults(opts, DefaultTokenAttributes)
	if err != nil {
		return nil, err
	}
	return &Items{base: newBase(KindItems, opts.TokenAttributes, &ItemsShape{})}, nil
}

func (g *Items) CollectItems(config unitconfig.UnitConfig) []unitconfig.Item {
	return children(unitconfig.Item(config), "items")
}
