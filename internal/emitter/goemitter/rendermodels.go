package goemitter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gridwatch/bmrsgen/internal/generator"
	"github.com/gridwatch/bmrsgen/internal/spec"
)

func renderEnumsGo(d *templateData) string {
	var b strings.Builder
	for _, e := range d.Plan.Enums {
		fmt.Fprintf(&b, "// %s is a bounded string value set shared by %d field(s).\n", e.Name, len(e.Fields))
		fmt.Fprintf(&b, "type %s string\n\n", e.Name)
		b.WriteString("const (\n")
		used := map[string]bool{}
		for _, v := range e.Values {
			cn := e.Name + spec.ExportedName(spec.LogicalName(v))
			for n := 2; used[cn]; n++ {
				cn = fmt.Sprintf("%s%s_%d", e.Name, spec.ExportedName(spec.LogicalName(v)), n)
			}
			used[cn] = true
			fmt.Fprintf(&b, "\t%s %s = %q\n", cn, e.Name, v)
		}
		b.WriteString(")\n\n")
		fmt.Fprintf(&b, "// Valid reports whether v is one of the declared %s values.\n", e.Name)
		fmt.Fprintf(&b, "func (v %s) Valid() bool {\n\tswitch v {\n\tcase ", e.Name)
		for i, v := range e.Values {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%q", v)
		}
		b.WriteString(":\n\t\treturn true\n\t}\n\treturn false\n}\n\n")
	}
	return header(d) + b.String()
}

func renderMixinsGo(d *templateData) string {
	var b strings.Builder
	imports := map[string]bool{}

	for _, m := range d.Plan.Mixins {
		if !m.FieldOnly() {
			continue
		}
		fmt.Fprintf(&b, "// %s is embedded by %d model(s).\n", m.Name, len(m.Schemas))
		fmt.Fprintf(&b, "type %s struct {\n", m.Name)
		for _, sig := range m.Fields {
			typ := d.sigGoType(sig.Type, sig.Array)
			if typ == "json.RawMessage" {
				imports["encoding/json"] = true
			}
			fmt.Fprintf(&b, "\t%s %s `json:%q`\n", spec.ExportedName(sig.Name), typ, sig.WireName)
		}
		b.WriteString("}\n\n")
	}

	for _, m := range d.Plan.Mixins {
		if m.FieldOnly() {
			continue
		}
		helper := behaviorHelpers[m.KeyWire]
		if helper == "" {
			continue
		}
		fmt.Fprintf(&b, "// Shared behavior for the %q field (%d consumer(s)).\n", m.KeyWire, len(m.Schemas))
		b.WriteString(helper)
		b.WriteString("\n")
		for _, imp := range behaviorHelperImports[m.KeyWire] {
			imports[imp] = true
		}
	}

	return header(d, sortedKeys(imports)...) + b.String()
}

// behaviorHelpers hold the package-level support code behind derived model
// methods, keyed by the field the behavior reads.
var behaviorHelpers = map[string]string{
	"settlementDate": `func parseSettlementDate(v string) (time.Time, error) {
	return time.Parse("2006-01-02", v)
}
`,
	"fuelType": `var renewableFuels = map[string]bool{
	"BIOMASS": true,
	"NPSHYD":  true,
	"SOLAR":   true,
	"WIND":    true,
}

func isRenewableFuel(v string) bool { return renewableFuels[strings.ToUpper(v)] }

func isInterconnectorFuel(v string) bool { return strings.HasPrefix(strings.ToUpper(v), "INT") }
`,
	"psrType": `var psrCategories = map[string]string{
	"Biomass":                         "Renewable",
	"Fossil Gas":                      "Fossil",
	"Fossil Hard coal":                "Fossil",
	"Fossil Oil":                      "Fossil",
	"Hydro Pumped Storage":            "Storage",
	"Hydro Run-of-river and poundage": "Renewable",
	"Nuclear":                         "Nuclear",
	"Solar":                           "Renewable",
	"Wind Offshore":                   "Renewable",
	"Wind Onshore":                    "Renewable",
}

func psrCategory(v string) string {
	if c, ok := psrCategories[v]; ok {
		return c
	}
	return "Other"
}
`,
	"flowDirection": `func flowDirectionIs(v, want string) bool { return strings.EqualFold(v, want) }
`,
	"publishTime": `func publishedAfter(v string, t time.Time) bool {
	pt, err := time.Parse(time.RFC3339, v)
	return err == nil && pt.After(t)
}
`,
}

var behaviorHelperImports = map[string][]string{
	"settlementDate": {"time"},
	"fuelType":       {"strings"},
	"flowDirection":  {"strings"},
	"publishTime":    {"time"},
}

func renderModelsGo(d *templateData) string {
	var b strings.Builder
	imports := map[string]bool{}

	for i := range d.Plan.Models {
		m := &d.Plan.Models[i]
		raw := m.Schema.Name

		switch {
		case len(m.EnumValues) > 0:
			if en, ok := d.Plan.EnumByField[raw]; ok {
				fmt.Fprintf(&b, "// %s aliases %s; the schema is a standalone enumeration.\n", m.Name, en)
				fmt.Fprintf(&b, "type %s = %s\n\n", m.Name, en)
			} else {
				fmt.Fprintf(&b, "type %s string\n\n", m.Name)
			}
			continue
		case m.Empty:
			fmt.Fprintf(&b, "// %s has no declared properties.\n", m.Name)
			fmt.Fprintf(&b, "type %s struct{}\n\n", m.Name)
			continue
		}

		fmt.Fprintf(&b, "// %s corresponds to %s.\n", m.Name, m.Schema.SourcePath)
		fmt.Fprintf(&b, "type %s struct {\n", m.Name)
		for _, mx := range m.Mixins {
			if d.mixins[mx].FieldOnly() {
				fmt.Fprintf(&b, "\t%s\n", mx)
			}
		}
		for _, f := range m.Residual {
			decl := d.fieldDecl(f, m.EnumByField[f.WireName])
			if strings.Contains(decl, "json.RawMessage") {
				imports["encoding/json"] = true
			}
			b.WriteString(decl)
			b.WriteString("\n")
		}
		b.WriteString("}\n\n")

		d.renderBehaviorMethods(&b, m, imports)
	}

	for _, w := range d.Plan.Wrappers {
		fmt.Fprintf(&b, "// %s is the response envelope carrying %s under \"data\".\n", w.Name, w.Item)
		fmt.Fprintf(&b, "type %s struct {\n", w.Name)
		typ := w.Item
		if w.List {
			typ = "[]" + w.Item
		}
		fmt.Fprintf(&b, "\tData %s `json:\"data\"`\n", typ)
		for _, prop := range w.Meta {
			imports["encoding/json"] = true
			fmt.Fprintf(&b, "\t%s json.RawMessage `json:\"%s,omitempty\"`\n", spec.ExportedName(spec.LogicalName(prop)), prop)
		}
		b.WriteString("}\n\n")
	}

	return header(d, sortedKeys(imports)...) + b.String()
}

// renderBehaviorMethods emits the derived methods a behavior mixin grants a
// model. A method is only emitted when the keyed field resolves to a plain
// string on this model; optional or non-string carriers are skipped.
func (d *templateData) renderBehaviorMethods(b *strings.Builder, m *generator.ModelDescriptor, imports map[string]bool) {
	for _, mx := range m.Mixins {
		def := d.mixins[mx]
		if def.FieldOnly() {
			continue
		}
		expr, ok := d.stringFieldExpr(m, def.KeyWire)
		if !ok {
			continue
		}
		for _, method := range def.Methods {
			d.renderBehaviorMethod(b, m, method, expr, imports)
		}
	}
}

func (d *templateData) renderBehaviorMethod(b *strings.Builder, m *generator.ModelDescriptor, method, expr string, imports map[string]bool) {
	recv := fmt.Sprintf("func (m %s) ", m.Name)
	switch method {
	case "SettlementKey":
		if periodExpr, ok := d.stringableFieldExpr(m, "settlementPeriod"); ok {
			imports["fmt"] = true
			fmt.Fprintf(b, "// SettlementKey identifies the settlement date and period as one key.\n")
			fmt.Fprintf(b, "%sSettlementKey() string {\n\treturn fmt.Sprintf(\"%%s:%%v\", %s, %s)\n}\n\n", recv, expr, periodExpr)
		} else {
			fmt.Fprintf(b, "%sSettlementKey() string { return %s }\n\n", recv, expr)
		}
	case "SettlementTime":
		imports["time"] = true
		fmt.Fprintf(b, "// SettlementTime parses the settlement date.\n")
		fmt.Fprintf(b, "%sSettlementTime() (time.Time, error) { return parseSettlementDate(%s) }\n\n", recv, expr)
	case "IsRenewable":
		fmt.Fprintf(b, "%sIsRenewable() bool { return isRenewableFuel(%s) }\n\n", recv, expr)
	case "IsInterconnector":
		fmt.Fprintf(b, "%sIsInterconnector() bool { return isInterconnectorFuel(%s) }\n\n", recv, expr)
	case "PsrCategory":
		fmt.Fprintf(b, "%sPsrCategory() string { return psrCategory(%s) }\n\n", recv, expr)
	case "IsOffer":
		fmt.Fprintf(b, "%sIsOffer() bool { return flowDirectionIs(%s, \"OFFER\") }\n\n", recv, expr)
	case "IsBid":
		fmt.Fprintf(b, "%sIsBid() bool { return flowDirectionIs(%s, \"BID\") }\n\n", recv, expr)
	case "PublishedAfter":
		imports["time"] = true
		fmt.Fprintf(b, "// PublishedAfter reports whether the record was published after t.\n")
		fmt.Fprintf(b, "%sPublishedAfter(t time.Time) bool { return publishedAfter(%s, t) }\n\n", recv, expr)
	}
}

// stringFieldExpr returns the accessor expression for a field when it is a
// required plain string on the model (directly or promoted from a mixin).
func (d *templateData) stringFieldExpr(m *generator.ModelDescriptor, wire string) (string, bool) {
	f := m.Schema.Field(wire)
	if f == nil || f.Type.Array || f.Type.Ref != "" || f.Type.Kind != "string" {
		return "", false
	}
	for _, rf := range m.Residual {
		if rf.WireName == wire && !rf.Required {
			return "", false
		}
	}
	acc := "m." + spec.ExportedName(f.Name)
	if m.EnumByField[wire] != "" {
		acc = "string(" + acc + ")"
	}
	return acc, true
}

// stringableFieldExpr is the relaxed form used for %v formatting: any
// required non-array scalar qualifies.
func (d *templateData) stringableFieldExpr(m *generator.ModelDescriptor, wire string) (string, bool) {
	f := m.Schema.Field(wire)
	if f == nil || f.Type.Array || f.Type.Ref != "" {
		return "", false
	}
	for _, rf := range m.Residual {
		if rf.WireName == wire && !rf.Required {
			return "", false
		}
	}
	return "m." + spec.ExportedName(f.Name), true
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
