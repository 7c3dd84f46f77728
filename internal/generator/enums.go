package generator

import (
	"sort"
	"strings"

	"github.com/gridwatch/bmrsgen/internal/spec"
)

// EnumDef is a named string enumeration synthesized from inline value sets.
type EnumDef struct {
	Name   string
	Values []string // canonical: sorted, deduplicated
	Fields []string // "Schema.wireName" references, sorted
}

// SynthesizeEnums groups every inline string enumeration in the graph by its
// canonical value set and mints one named type per distinct set. Two fields
// with the same values share a type regardless of field name; the same field
// name with differing values yields distinct types.
//
// The returned map resolves "SchemaName.wireName" to the assigned enum name.
func SynthesizeEnums(g *spec.Graph, reg *Registry, rep *Report) ([]EnumDef, map[string]string) {
	type group struct {
		values []string
		fields []string                   // "Schema.wire" in walk order
		byName map[string]int             // logical field name -> reference count
	}
	groups := make(map[string]*group)
	var keys []string

	record := func(schemaName, wire, logical string, values []string) {
		canon := canonicalValues(values)
		if len(canon) == 0 {
			return
		}
		key := strings.Join(canon, "\x00")
		gr, ok := groups[key]
		if !ok {
			gr = &group{values: canon, byName: make(map[string]int)}
			groups[key] = gr
			keys = append(keys, key)
		}
		ref := schemaName
		if wire != "" {
			ref += "." + wire
		}
		gr.fields = append(gr.fields, ref)
		gr.byName[logical]++
	}

	for _, name := range g.SchemaNames {
		def := g.Schemas[name]
		if len(def.EnumValues) > 0 {
			// Standalone enum schema: the schema itself is the field.
			record(name, "", spec.LogicalName(name), def.EnumValues)
			continue
		}
		for _, f := range def.Fields {
			if len(f.EnumValues) > 0 {
				record(name, f.WireName, f.Name, f.EnumValues)
			}
		}
	}

	sort.Strings(keys)
	out := make([]EnumDef, 0, len(groups))
	lookup := make(map[string]string)
	for _, key := range keys {
		gr := groups[key]
		name := claimName(reg, rep, spec.ExportedName(dominantName(gr.byName))+"Enum", "enum")
		fields := append([]string(nil), gr.fields...)
		sort.Strings(fields)
		out = append(out, EnumDef{Name: name, Values: gr.values, Fields: fields})
		for _, ref := range fields {
			lookup[ref] = name
		}
	}
	return out, lookup
}

// canonicalValues sorts and deduplicates an enum value list.
func canonicalValues(values []string) []string {
	out := append([]string(nil), values...)
	sort.Strings(out)
	n := 0
	for i, v := range out {
		if i > 0 && v == out[i-1] {
			continue
		}
		out[n] = v
		n++
	}
	return out[:n]
}

// dominantName picks the most common referencing field name for a value set,
// breaking count ties lexicographically.
func dominantName(counts map[string]int) string {
	best, bestCount := "", -1
	for name, c := range counts {
		if c > bestCount || (c == bestCount && name < best) {
			best, bestCount = name, c
		}
	}
	return best
}
