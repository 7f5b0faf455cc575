// Package tuning holds the per-template compositing parameters.
package tuning

import (
	"fmt"
	"sort"
)

// TemplateID names one of the fixed hero templates.
type TemplateID string

const (
	Hero1 TemplateID = "hero1"
	Hero2 TemplateID = "hero2"
)

// Templates lists every known template in display order.
var Templates = []TemplateID{Hero1, Hero2}

// ParseTemplateID validates s as a template id.
func ParseTemplateID(s string) (TemplateID, error) {
	for _, id := range Templates {
		if string(id) == s {
			return id, nil
		}
	}
	return "", fmt.Errorf("unknown template %q", s)
}

// Profile is a fully resolved set of compositing parameters.
type Profile struct {
	MaskScale      float64 `json:"maskScale" toml:"mask_scale"`
	ClipScale      float64 `json:"clipScale" toml:"clip_scale"`
	UniformScale   float64 `json:"scale" toml:"scale"`
	OffsetX        float64 `json:"offsetX" toml:"offset_x"`
	OffsetY        float64 `json:"offsetY" toml:"offset_y"`
	RemoveOriginal bool    `json:"removeOriginal" toml:"remove_original"`
}

// Default is the profile every template starts from. A missing scale means
// the identity.
func Default() Profile {
	return Profile{
		MaskScale:      1.3,
		ClipScale:      1.5,
		UniformScale:   1,
		RemoveOriginal: true,
	}
}

// Override is a partial profile. Nil fields leave the base value alone.
type Override struct {
	MaskScale      *float64 `json:"maskScale,omitempty" toml:"mask_scale"`
	ClipScale      *float64 `json:"clipScale,omitempty" toml:"clip_scale"`
	UniformScale   *float64 `json:"scale,omitempty" toml:"scale"`
	OffsetX        *float64 `json:"offsetX,omitempty" toml:"offset_x"`
	OffsetY        *float64 `json:"offsetY,omitempty" toml:"offset_y"`
	RemoveOriginal *bool    `json:"removeOriginal,omitempty" toml:"remove_original"`
}

// Empty reports whether o sets nothing.
func (o Override) Empty() bool {
	return o.MaskScale == nil && o.ClipScale == nil && o.UniformScale == nil &&
		o.OffsetX == nil && o.OffsetY == nil && o.RemoveOriginal == nil
}

// Merge overlays each override on base, field by field, in order.
func Merge(base Profile, overrides ...Override) Profile {
	p := base
	for _, o := range overrides {
		if o.MaskScale != nil {
			p.MaskScale = *o.MaskScale
		}
		if o.ClipScale != nil {
			p.ClipScale = *o.ClipScale
		}
		if o.UniformScale != nil {
			p.UniformScale = *o.UniformScale
		}
		if o.OffsetX != nil {
			p.OffsetX = *o.OffsetX
		}
		if o.OffsetY != nil {
			p.OffsetY = *o.OffsetY
		}
		if o.RemoveOriginal != nil {
			p.RemoveOriginal = *o.RemoveOriginal
		}
	}
	return p
}

// Float returns a pointer to v, for building overrides.
func Float(v float64) *float64 { return &v }

// Bool returns a pointer to v, for building overrides.
func Bool(v bool) *bool { return &v }

// Builtin returns the shipped override for id.
func Builtin(id TemplateID) Override {
	switch id {
	case Hero1:
		return Override{
			MaskScale:      Float(1.65),
			ClipScale:      Float(2.1),
			UniformScale:   Float(2.3),
			OffsetX:        Float(0),
			OffsetY:        Float(0),
			RemoveOriginal: Bool(true),
		}
	case Hero2:
		return Override{RemoveOriginal: Bool(false)}
	}
	return Override{}
}

// Source supplies stored overrides, for example from the database.
type Source interface {
	Lookup(id TemplateID) (Override, bool, error)
}

// Resolver layers Default, the builtin override, configured overrides and a
// stored override, in that order.
type Resolver struct {
	configured map[TemplateID]Override
	source     Source
}

// NewResolver creates a resolver. Both arguments may be nil.
func NewResolver(configured map[TemplateID]Override, source Source) *Resolver {
	return &Resolver{configured: configured, source: source}
}

// Resolve returns the effective profile for id.
func (r *Resolver) Resolve(id TemplateID) (Profile, error) {
	layers := []Override{Builtin(id)}
	if o, ok := r.configured[id]; ok {
		layers = append(layers, o)
	}
	if r.source != nil {
		o, ok, err := r.source.Lookup(id)
		if err != nil {
			return Profile{}, fmt.Errorf("lookup tuning for %s: %w", id, err)
		}
		if ok {
			layers = append(layers, o)
		}
	}
	return Merge(Default(), layers...), nil
}

// ConfiguredIDs returns the ids that have a configured override, sorted.
func (r *Resolver) ConfiguredIDs() []TemplateID {
	ids := make([]TemplateID, 0, len(r.configured))
	for id := range r.configured {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
