package generator

import (
	"strings"

	"github.com/gridwatch/bmrsgen/internal/spec"
)

// MixinDef is a reusable bundle of fields and/or methods shared by multiple
// generated models.
type MixinDef struct {
	Name    string
	Fields  []spec.FieldSignature // empty for behavior-only mixins
	Schemas []string              // sorted consuming schema names
	Methods []string              // contributed behavior methods
	KeyWire string                // behavior-only: the field the methods read
}

// FieldOnly reports whether the mixin carries fields (as opposed to
// behavior only).
func (m *MixinDef) FieldOnly() bool { return len(m.Fields) > 0 }

// Covers reports whether the mixin provides the given signature.
func (m *MixinDef) Covers(sig spec.FieldSignature) bool {
	for _, s := range m.Fields {
		if s == sig {
			return true
		}
	}
	return false
}

// BehaviorRule declares a behavior-only mixin: derived accessors or
// classification predicates keyed to a field that must already exist
// directly on the consuming schema.
type BehaviorRule struct {
	Wire    string
	Methods []string
}

// behaviorMinSchemas is the floor for emitting a behavior-only mixin;
// shared behavior for a single consumer is not an abstraction.
const behaviorMinSchemas = 2

// ExtractMixins produces the run's mixin set from the frozen catalog.
//
// Pair groups are extracted first: a declared group whose members co-occur
// with identical signatures in at least k schemas becomes one paired mixin.
// Remaining single signatures meeting k become single-field mixins, skipping
// signatures a paired mixin already covers. Behavior rules come last and
// contribute method-only mixins. All naming goes through the registry so
// collisions resolve deterministically.
func ExtractMixins(cat *Catalog, k int, behaviors []BehaviorRule, reg *Registry, rep *Report) []MixinDef {
	if k < 1 {
		k = 1
	}
	var out []MixinDef
	covered := make(map[spec.FieldSignature]bool)

	for _, ps := range cat.Pairs() {
		if ps.Count < k {
			continue
		}
		base := ps.Group.Name
		if base == "" {
			base = pairBaseName(ps.Sigs)
		}
		name := claimName(reg, rep, base+"Fields", "mixin")
		out = append(out, MixinDef{
			Name:    name,
			Fields:  append([]spec.FieldSignature(nil), ps.Sigs...),
			Schemas: append([]string(nil), ps.Schemas...),
		})
		for _, sig := range ps.Sigs {
			covered[sig] = true
		}
	}

	for _, sig := range cat.Signatures() {
		if covered[sig] {
			continue
		}
		st := cat.Stat(sig)
		if st == nil || st.Count < k {
			continue
		}
		name := claimName(reg, rep, spec.ExportedName(sig.Name)+"Fields", "mixin")
		out = append(out, MixinDef{
			Name:    name,
			Fields:  []spec.FieldSignature{sig},
			Schemas: append([]string(nil), st.Schemas...),
		})
	}

	for _, rule := range behaviors {
		consumers := cat.WireConsumers(rule.Wire)
		if len(consumers) < behaviorMinSchemas {
			continue
		}
		name := claimName(reg, rep, spec.ExportedName(spec.LogicalName(rule.Wire))+"Mixin", "mixin")
		out = append(out, MixinDef{
			Name:    name,
			Schemas: append([]string(nil), consumers...),
			Methods: append([]string(nil), rule.Methods...),
			KeyWire: rule.Wire,
		})
	}

	reportConflicts(out, rep)
	return out
}

// reportConflicts flags structurally identical field mixins under different
// names. Such a pair means the threshold produced a redundant abstraction;
// it is surfaced for review, never silently deduplicated.
func reportConflicts(mixins []MixinDef, rep *Report) {
	seen := make(map[string]string)
	for i := range mixins {
		m := &mixins[i]
		if !m.FieldOnly() {
			continue
		}
		key := sigTupleKey(m.Fields)
		if prev, dup := seen[key]; dup {
			rep.add(SeverityWarning, CategoryMixinConflict, m.Name,
				"mixins %q and %q provide an identical field set; review the pair-group catalog", prev, m.Name)
			continue
		}
		seen[key] = m.Name
	}
}

func claimName(reg *Registry, rep *Report, requested, owner string) string {
	name := reg.Claim(requested, owner)
	if name != requested {
		rep.add(SeverityWarning, CategoryNameCollision, requested,
			"%s name %q already taken; assigned %q", owner, requested, name)
	}
	return name
}

// pairBaseName derives a mixin base name from the members' common leading
// snake_case segments, e.g. settlement_date + settlement_period ->
// "Settlement". Falls back to the first member's full name.
func pairBaseName(sigs []spec.FieldSignature) string {
	if len(sigs) == 0 {
		return "Pair"
	}
	common := strings.Split(sigs[0].Name, "_")
	for _, sig := range sigs[1:] {
		parts := strings.Split(sig.Name, "_")
		n := 0
		for n < len(common) && n < len(parts) && common[n] == parts[n] {
			n++
		}
		common = common[:n]
	}
	if len(common) == 0 {
		return spec.ExportedName(sigs[0].Name)
	}
	return spec.ExportedName(strings.Join(common, "_"))
}
