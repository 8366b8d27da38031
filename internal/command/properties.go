package command

import (
	"context"

	"github.com/1broseidon/displayctl/internal/platform"
)

// predicate is one named boolean display property.
type predicate struct {
	name string
	get  func(platform.Predicates) bool
}

// predicates is the fixed property table reported by Properties.
var predicates = []predicate{
	{"isBuiltIn", func(p platform.Predicates) bool { return p.BuiltIn }},
	{"isMain", func(p platform.Predicates) bool { return p.Main }},
	{"isMirrored", func(p platform.Predicates) bool { return p.Mirrored }},
	{"isConnected", func(p platform.Predicates) bool { return p.Connected }},
	{"isRotated", func(p platform.Predicates) bool { return p.Rotated }},
	{"isInterlaced", func(p platform.Predicates) bool { return p.Interlaced }},
	{"hasBacklight", func(p platform.Predicates) bool { return p.HasBacklight }},
	{"hasPreferredMode", func(p platform.Predicates) bool { return p.HasPreferredMode }},
	{"canChangeOrientation", func(p platform.Predicates) bool { return p.CanChangeOrientation }},
}

// PropertyNames lists the property names in table order.
func PropertyNames() []string {
	out := make([]string, len(predicates))
	for i, p := range predicates {
		out[i] = p.name
	}
	return out
}

// Properties reports every property in the table for the display.
func (e *Executor) Properties(ctx context.Context) (map[string]bool, error) {
	legacy, err := e.legacy(ctx)
	if err != nil {
		return nil, err
	}
	preds, err := legacy.Predicates(e.h.ID())
	if err != nil {
		return nil, e.translate("displayProperties", err)
	}
	out := make(map[string]bool, len(predicates))
	for _, p := range predicates {
		out[p.name] = p.get(preds)
	}
	return out, nil
}
