package generator

import (
	"sort"

	"github.com/gridwatch/bmrsgen/internal/spec"
)

// ModelDescriptor is the fully resolved plan for one generated model type.
type ModelDescriptor struct {
	Name        string
	Schema      *spec.SchemaDef
	Mixins      []string        // applied mixin names, most used first
	Residual    []spec.FieldDef // fields no mixin covers, document order
	EnumByField map[string]string
	EnumValues  []string // standalone enum schema
	Overridden  []string // wire names whose requiredness an override pinned
	Empty       bool
}

// SynthesizeModels assigns final names and decides mixin application for
// every schema in the graph.
//
// A field mixin applies to a model only when every one of its signatures is
// matched exactly by a field on the schema; a near miss (same names,
// different type) gets nothing. Behavior mixins apply when the keyed field
// is present directly on the schema. Covered fields are removed from the
// residual list, which keeps document order.
func SynthesizeModels(g *spec.Graph, mixins []MixinDef, enumByField map[string]string, overrides *OverrideTable, reg *Registry, rep *Report) []ModelDescriptor {
	ordered := orderMixins(mixins)
	out := make([]ModelDescriptor, 0, len(g.SchemaNames))

	for _, raw := range g.SchemaNames {
		def := g.Schemas[raw]
		name := claimName(reg, rep, spec.ModelName(raw), "model")

		md := ModelDescriptor{
			Name:        name,
			Schema:      def,
			EnumByField: make(map[string]string),
		}

		if len(def.EnumValues) > 0 {
			md.EnumValues = canonicalValues(def.EnumValues)
			out = append(out, md)
			continue
		}
		if def.Empty || len(def.Fields) == 0 {
			md.Empty = true
			rep.add(SeverityInfo, CategoryEmptySchema, raw,
				"schema has no properties; generating an empty model")
			out = append(out, md)
			continue
		}

		covered := make(map[spec.FieldSignature]bool)
		for _, m := range ordered {
			if !mixinApplies(&m, def) {
				continue
			}
			md.Mixins = append(md.Mixins, m.Name)
			for _, sig := range m.Fields {
				covered[sig] = true
			}
		}

		for _, f := range def.Fields {
			if ref, ok := enumByField[raw+"."+f.WireName]; ok {
				md.EnumByField[f.WireName] = ref
			}
			if covered[f.Signature()] {
				continue
			}
			resolved := f
			if v, ok := overrides.Lookup(raw, f.WireName); ok {
				resolved.Required = v
				md.Overridden = append(md.Overridden, f.WireName)
			} else {
				resolved.Required = ResolveRequired(overrides, raw, f.WireName, f.Required, f.Example != nil)
			}
			md.Residual = append(md.Residual, resolved)
		}
		out = append(out, md)
	}
	return out
}

// orderMixins sorts by descending consumer count, then name, so broadly
// shared mixins embed first and ordering never depends on extraction order.
func orderMixins(mixins []MixinDef) []MixinDef {
	out := append([]MixinDef(nil), mixins...)
	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i].Schemas) != len(out[j].Schemas) {
			return len(out[i].Schemas) > len(out[j].Schemas)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func mixinApplies(m *MixinDef, def *spec.SchemaDef) bool {
	if !m.FieldOnly() {
		if m.KeyWire == "" {
			return false
		}
		return def.Field(m.KeyWire) != nil
	}
	for _, sig := range m.Fields {
		f := def.Field(sig.WireName)
		if f == nil || f.Signature() != sig {
			return false
		}
	}
	return true
}
