package goemitter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gridwatch/bmrsgen/internal/generator"
	"github.com/gridwatch/bmrsgen/internal/spec"
)

// templateData carries the plan plus the lookups every renderer needs.
type templateData struct {
	Pkg    string
	Module string
	Plan   *generator.Result

	modelNames map[string]string // raw schema name -> emitted type name
	mixins     map[string]*generator.MixinDef
}

func newTemplateData(pkg, module string, plan *generator.Result) *templateData {
	d := &templateData{
		Pkg:        pkg,
		Module:     module,
		Plan:       plan,
		modelNames: make(map[string]string, len(plan.Models)),
		mixins:     make(map[string]*generator.MixinDef, len(plan.Mixins)),
	}
	for i := range plan.Models {
		m := &plan.Models[i]
		d.modelNames[m.Schema.Name] = m.Name
	}
	for i := range plan.Mixins {
		d.mixins[plan.Mixins[i].Name] = &plan.Mixins[i]
	}
	return d
}

// goType maps a field type to the emitted Go type.
func (d *templateData) goType(t spec.FieldType) string {
	base := ""
	switch {
	case t.Ref != "":
		base = d.modelNames[t.Ref]
		if base == "" {
			base = "json.RawMessage"
		}
	default:
		base = primitiveGoType(t.Kind, t.Format)
	}
	if t.Array {
		return "[]" + base
	}
	return base
}

func primitiveGoType(kind, format string) string {
	switch kind {
	case "string":
		return "string"
	case "integer":
		if format == "int32" {
			return "int32"
		}
		return "int64"
	case "number":
		if format == "float" {
			return "float32"
		}
		return "float64"
	case "boolean":
		return "bool"
	default:
		return "json.RawMessage"
	}
}

// sigGoType maps a signature's canonical type string back to a Go type.
// The canonical form is "ref:Name", "kind:format" or "kind".
func (d *templateData) sigGoType(canonical string, array bool) string {
	t := spec.FieldType{Array: array}
	if rest, ok := strings.CutPrefix(canonical, "ref:"); ok {
		t.Ref = rest
	} else if kind, format, ok := strings.Cut(canonical, ":"); ok {
		t.Kind, t.Format = kind, format
	} else {
		t.Kind = canonical
	}
	return d.goType(t)
}

// fieldDecl renders one struct field line. Optional scalar fields become
// pointers with omitempty; slices and raw payloads stay bare.
func (d *templateData) fieldDecl(f spec.FieldDef, enumType string) string {
	typ := d.goType(f.Type)
	if enumType != "" {
		typ = enumType
		if f.Type.Array {
			typ = "[]" + enumType
		}
	}
	tag := f.WireName
	if !f.Required {
		if !strings.HasPrefix(typ, "[]") && typ != "json.RawMessage" {
			typ = "*" + typ
		}
		tag += ",omitempty"
	}
	return fmt.Sprintf("\t%s %s `json:\"%s\"`", spec.ExportedName(f.Name), typ, tag)
}

func renderGoMod(d *templateData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "module %s\n\n", d.Module)
	b.WriteString("go 1.23\n\n")
	fmt.Fprintf(&b, "require %s v0.1.0\n", runtimeModule)
	return b.String()
}

func renderReadme(d *templateData) string {
	g := d.Plan.Graph
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", d.Module)
	fmt.Fprintf(&b, "Generated Go client for %s (version %s).\n\n", orUnknown(g.Title), orUnknown(g.Version))
	b.WriteString("## Contents\n\n")
	fmt.Fprintf(&b, "- `%s/models.go`: %d model types\n", d.Pkg, len(d.Plan.Models))
	fmt.Fprintf(&b, "- `%s/mixins.go`: %d shared field/behavior mixins\n", d.Pkg, len(d.Plan.Mixins))
	fmt.Fprintf(&b, "- `%s/enums.go`: %d named enumerations\n", d.Pkg, len(d.Plan.Enums))
	fmt.Fprintf(&b, "- `%s/client.go`: %d typed API methods\n\n", d.Pkg, len(d.Plan.Methods))
	b.WriteString("## Usage\n\n")
	b.WriteString("```go\n")
	fmt.Fprintf(&b, "c := %s.NewClient()\n", d.Pkg)
	b.WriteString("res, err := c.Get...(ctx, ...)\n")
	b.WriteString("if err != nil { /* transport or HTTP failure */ }\n")
	b.WriteString("if !res.Ok() { /* payload kept raw; see res.Diagnostic */ }\n")
	b.WriteString("```\n\n")
	b.WriteString("Responses decode on a parse-or-fallback basis: a payload that does not\n")
	b.WriteString("match its expected shape is returned raw, never dropped.\n")
	return b.String()
}

// renderReport writes the reviewable generation report: diagnostics grouped
// by category plus every name disambiguation performed.
func renderReport(d *templateData) string {
	var b strings.Builder
	b.WriteString("# Generation report\n\n")

	diags := d.Plan.Report.Diagnostics
	if len(diags) == 0 {
		b.WriteString("No findings.\n")
	} else {
		byCat := map[string][]generator.Diagnostic{}
		var cats []string
		for _, dg := range diags {
			if _, ok := byCat[dg.Category]; !ok {
				cats = append(cats, dg.Category)
			}
			byCat[dg.Category] = append(byCat[dg.Category], dg)
		}
		sort.Strings(cats)
		for _, cat := range cats {
			fmt.Fprintf(&b, "## %s\n\n", cat)
			for _, dg := range byCat[cat] {
				fmt.Fprintf(&b, "- [%s] %s: %s\n", dg.Severity, dg.Subject, dg.Message)
			}
			b.WriteString("\n")
		}
	}

	if len(d.Plan.Renames) > 0 {
		b.WriteString("## Renames\n\n")
		for _, r := range d.Plan.Renames {
			fmt.Fprintf(&b, "- %s %q -> %q (name held by %s)\n", r.Owner, r.Requested, r.Assigned, r.Holder)
		}
	}
	return b.String()
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unknown"
	}
	return s
}

// header renders the shared file preamble for emitted Go sources.
func header(d *templateData, imports ...string) string {
	var b strings.Builder
	b.WriteString("// Code generated by bmrsgen. DO NOT EDIT.\n\n")
	fmt.Fprintf(&b, "package %s\n\n", d.Pkg)
	if len(imports) > 0 {
		b.WriteString("import (\n")
		for _, imp := range imports {
			fmt.Fprintf(&b, "\t%q\n", imp)
		}
		b.WriteString(")\n\n")
	}
	return b.String()
}
