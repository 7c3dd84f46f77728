package generator

import (
	"sort"

	"github.com/gridwatch/bmrsgen/internal/spec"
)

// Test fixtures shared across the package tests.

func strField(schema, wire string) spec.FieldDef {
	return spec.FieldDef{
		Name:     spec.LogicalName(wire),
		WireName: wire,
		Type:     spec.FieldType{Kind: "string"},
		Schema:   schema,
	}
}

func intField(schema, wire string) spec.FieldDef {
	return spec.FieldDef{
		Name:     spec.LogicalName(wire),
		WireName: wire,
		Type:     spec.FieldType{Kind: "integer", Format: "int64"},
		Schema:   schema,
	}
}

func fieldSig(f spec.FieldDef) spec.FieldSignature {
	return f.Signature()
}

func schemaDef(name string, fields ...spec.FieldDef) *spec.SchemaDef {
	return &spec.SchemaDef{
		Name:       name,
		Fields:     fields,
		SourcePath: "#/components/schemas/" + name,
		Empty:      len(fields) == 0,
	}
}

func testGraph(defs ...*spec.SchemaDef) *spec.Graph {
	g := &spec.Graph{Schemas: make(map[string]*spec.SchemaDef)}
	for _, d := range defs {
		g.Schemas[d.Name] = d
		g.SchemaNames = append(g.SchemaNames, d.Name)
		if d.Empty {
			g.Empty = append(g.Empty, d.Name)
		}
	}
	sort.Strings(g.SchemaNames)
	return g
}
