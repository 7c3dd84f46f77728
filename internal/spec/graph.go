package spec

import (
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

const componentPrefix = "#/components/schemas/"

// BuildGraph converts an OpenAPI v3 document into the flat schema graph.
// All $ref pointers to schema components are resolved (a dangling pointer is
// a ReferenceError), allOf compositions are flattened into a single field
// list with later fragments overriding earlier ones by wire name, and
// schemas with no properties and no enum values are marked EmptySchema.
//
// The builder performs no I/O; the document is supplied already parsed.
func BuildGraph(doc *openapi3.T) (*Graph, error) {
	if doc == nil {
		return nil, &SpecError{Code: InputError, Message: "spec: nil document"}
	}

	g := &Graph{Schemas: make(map[string]*SchemaDef)}
	if doc.Info != nil {
		g.Title = strings.TrimSpace(doc.Info.Title)
		g.Version = strings.TrimSpace(doc.Info.Version)
	}

	if doc.Components != nil && doc.Components.Schemas != nil {
		names := make([]string, 0, len(doc.Components.Schemas))
		for name := range doc.Components.Schemas {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			sref := doc.Components.Schemas[name]
			if sref == nil {
				continue
			}
			def, err := buildSchemaDef(name, sref, doc)
			if err != nil {
				return nil, err
			}
			g.Schemas[name] = def
			g.SchemaNames = append(g.SchemaNames, name)
			if def.Empty {
				g.Empty = append(g.Empty, name)
			}
		}
	}

	ops, err := buildOperations(doc)
	if err != nil {
		return nil, err
	}
	g.Operations = ops

	return g, nil
}

func buildSchemaDef(name string, sref *openapi3.SchemaRef, doc *openapi3.T) (*SchemaDef, error) {
	def := &SchemaDef{
		Name:       name,
		SourcePath: componentPrefix + name,
	}

	flat, err := flattenSchema(name, sref, doc, map[string]bool{})
	if err != nil {
		return nil, err
	}
	def.Description = flat.description
	def.EnumValues = flat.enum

	for _, wire := range flat.order {
		prop := flat.props[wire]
		fd, err := buildFieldDef(name, wire, prop, flat.required[wire], doc)
		if err != nil {
			return nil, err
		}
		def.Fields = append(def.Fields, fd)
	}

	if len(def.Fields) == 0 && len(def.EnumValues) == 0 {
		def.Empty = true
	}
	return def, nil
}

// flatSchema is the intermediate result of allOf flattening: an ordered
// property list keyed by wire name plus the merged required set.
type flatSchema struct {
	order       []string
	props       map[string]*openapi3.SchemaRef
	required    map[string]bool
	enum        []string
	description string
}

// flattenSchema resolves the schema through references and allOf fragments.
// Merge policy: fragments are applied in document order and a later fragment
// wins over an earlier one with the same wire name; the field keeps its
// first-seen position.
func flattenSchema(origin string, sref *openapi3.SchemaRef, doc *openapi3.T, seen map[string]bool) (*flatSchema, error) {
	out := &flatSchema{props: make(map[string]*openapi3.SchemaRef), required: make(map[string]bool)}

	if sref == nil {
		return out, nil
	}
	if sref.Ref != "" {
		target, rawName, err := resolveRef(origin, sref.Ref, doc)
		if err != nil {
			return nil, err
		}
		if seen[rawName] {
			return nil, &SpecError{
				Code:        StructureError,
				Message:     fmt.Sprintf("spec: circular allOf composition through %q", rawName),
				Location:    origin,
				JSONPointer: componentPrefix + rawName,
			}
		}
		// Mark the ref only for the current descent path so sibling
		// fragments may share a base schema without tripping cycle
		// detection.
		seen[rawName] = true
		flat, err := flattenSchema(origin, target, doc, seen)
		delete(seen, rawName)
		return flat, err
	}
	if sref.Value == nil {
		return out, nil
	}
	v := sref.Value
	out.description = strings.TrimSpace(v.Description)

	merge := func(frag *flatSchema) {
		for _, wire := range frag.order {
			if _, exists := out.props[wire]; !exists {
				out.order = append(out.order, wire)
			}
			out.props[wire] = frag.props[wire]
			if frag.required[wire] {
				out.required[wire] = true
			}
		}
		for wire := range frag.required {
			if frag.required[wire] {
				out.required[wire] = true
			}
		}
		if out.description == "" {
			out.description = frag.description
		}
	}

	for i, frag := range v.AllOf {
		if frag == nil {
			continue
		}
		if frag.Ref == "" && frag.Value == nil {
			return nil, &SpecError{
				Code:        StructureError,
				Message:     fmt.Sprintf("spec: malformed allOf fragment %d in %q", i, origin),
				Location:    origin,
				JSONPointer: componentPrefix + origin,
			}
		}
		fragFlat, err := flattenSchema(origin, frag, doc, seen)
		if err != nil {
			return nil, err
		}
		merge(fragFlat)
	}

	// The schema's own properties are the last fragment and win over allOf.
	if len(v.Properties) > 0 {
		own := &flatSchema{props: make(map[string]*openapi3.SchemaRef), required: make(map[string]bool)}
		keys := make([]string, 0, len(v.Properties))
		for wire := range v.Properties {
			keys = append(keys, wire)
		}
		sort.Strings(keys)
		for _, wire := range keys {
			own.order = append(own.order, wire)
			own.props[wire] = v.Properties[wire]
		}
		for _, r := range v.Required {
			own.required[r] = true
		}
		merge(own)
	} else {
		for _, r := range v.Required {
			out.required[r] = true
		}
	}

	if v.Type == "string" && len(v.Enum) > 0 && len(v.Properties) == 0 {
		for _, e := range v.Enum {
			if s, ok := e.(string); ok {
				out.enum = append(out.enum, s)
			}
		}
	}

	return out, nil
}

func buildFieldDef(schemaName, wire string, pref *openapi3.SchemaRef, required bool, doc *openapi3.T) (FieldDef, error) {
	fd := FieldDef{
		Name:     LogicalName(wire),
		WireName: wire,
		Required: required,
		Schema:   schemaName,
	}
	if pref == nil {
		fd.Type = FieldType{Kind: "string"}
		return fd, nil
	}

	ft, err := fieldType(schemaName, pref, doc)
	if err != nil {
		return FieldDef{}, err
	}
	fd.Type = ft

	if pref.Value != nil {
		fd.Description = strings.TrimSpace(pref.Value.Description)
		fd.Example = pref.Value.Example
		if pref.Value.Type == "string" {
			for _, e := range pref.Value.Enum {
				if s, ok := e.(string); ok {
					fd.EnumValues = append(fd.EnumValues, s)
				}
			}
		}
	}
	return fd, nil
}

func fieldType(schemaName string, pref *openapi3.SchemaRef, doc *openapi3.T) (FieldType, error) {
	if pref.Ref != "" {
		_, rawName, err := resolveRef(schemaName, pref.Ref, doc)
		if err != nil {
			return FieldType{}, err
		}
		return FieldType{Ref: rawName}, nil
	}
	if pref.Value == nil {
		return FieldType{Kind: "string"}, nil
	}
	v := pref.Value
	if v.Type == "array" {
		if v.Items == nil {
			return FieldType{}, &SpecError{
				Code:        StructureError,
				Message:     fmt.Sprintf("spec: array field in %q is missing an item type", schemaName),
				Location:    schemaName,
				JSONPointer: componentPrefix + schemaName,
			}
		}
		item, err := fieldType(schemaName, v.Items, doc)
		if err != nil {
			return FieldType{}, err
		}
		item.Array = true
		return item, nil
	}
	kind := v.Type
	if kind == "" {
		kind = "string"
	}
	return FieldType{Kind: kind, Format: strings.TrimSpace(v.Format)}, nil
}

// resolveRef maps a local $ref pointer to its component schema, failing with
// a ReferenceError when the target does not exist.
func resolveRef(origin, ref string, doc *openapi3.T) (*openapi3.SchemaRef, string, error) {
	if !strings.HasPrefix(ref, componentPrefix) {
		// External or non-schema refs are resolved by the loader already;
		// keep the trailing segment as the name.
		idx := strings.LastIndex(ref, "/")
		return nil, ref[idx+1:], &SpecError{
			Code:        ReferenceError,
			Message:     fmt.Sprintf("spec: unsupported reference %q in %q", ref, origin),
			Location:    origin,
			JSONPointer: ref,
		}
	}
	name := strings.TrimPrefix(ref, componentPrefix)
	if doc.Components == nil || doc.Components.Schemas == nil {
		return nil, name, unresolvedRef(origin, ref)
	}
	target, ok := doc.Components.Schemas[name]
	if !ok || target == nil {
		return nil, name, unresolvedRef(origin, ref)
	}
	return target, name, nil
}

func unresolvedRef(origin, ref string) error {
	return &SpecError{
		Code:        ReferenceError,
		Message:     fmt.Sprintf("spec: unresolved reference %q in %q", ref, origin),
		Location:    origin,
		JSONPointer: ref,
	}
}

func buildOperations(doc *openapi3.T) ([]OperationDef, error) {
	if doc.Paths == nil {
		return nil, nil
	}
	pathKeys := make([]string, 0, len(doc.Paths))
	for p := range doc.Paths {
		pathKeys = append(pathKeys, p)
	}
	sort.Strings(pathKeys)

	var ops []OperationDef
	for _, p := range pathKeys {
		item := doc.Paths[p]
		if item == nil {
			continue
		}
		pairs := []struct {
			m HttpMethod
			o *openapi3.Operation
		}{
			{GET, item.Get},
			{POST, item.Post},
			{PUT, item.Put},
			{DELETE, item.Delete},
			{PATCH, item.Patch},
			{HEAD, item.Head},
			{OPTIONS, item.Options},
			{TRACE, item.Trace},
		}
		for _, pair := range pairs {
			if pair.o == nil {
				continue
			}
			op := OperationDef{
				ID:          string(pair.m) + " " + p,
				Method:      pair.m,
				Path:        p,
				Summary:     strings.TrimSpace(pair.o.Summary),
				Description: strings.TrimSpace(pair.o.Description),
			}

			params, err := mergeParameters(p, item.Parameters, pair.o.Parameters, doc)
			if err != nil {
				return nil, err
			}
			op.Parameters = params

			node, mediaType := successResponse(pair.o)
			op.Response = node
			op.MediaType = mediaType

			ops = append(ops, op)
		}
	}
	return ops, nil
}

// mergeParameters combines path-level and operation-level parameters,
// operation-level winning on (in, name), preserving document order.
func mergeParameters(path string, base, own openapi3.Parameters, doc *openapi3.T) ([]ParamDef, error) {
	type slot struct{ idx int }
	index := make(map[string]slot)
	var out []ParamDef

	add := func(pref *openapi3.ParameterRef) error {
		if pref == nil || pref.Value == nil {
			return nil
		}
		pv := pref.Value
		pd := ParamDef{
			Name:        LogicalName(pv.Name),
			WireName:    strings.TrimSpace(pv.Name),
			In:          strings.TrimSpace(pv.In),
			Required:    pv.Required,
			Description: strings.TrimSpace(pv.Description),
		}
		if pv.Schema != nil {
			ft, err := fieldType(path, pv.Schema, doc)
			if err != nil {
				return err
			}
			pd.Type = ft
		} else {
			pd.Type = FieldType{Kind: "string"}
		}
		key := pd.In + ":" + pd.WireName
		if s, ok := index[key]; ok {
			out[s.idx] = pd
			return nil
		}
		index[key] = slot{idx: len(out)}
		out = append(out, pd)
		return nil
	}

	for _, pref := range base {
		if err := add(pref); err != nil {
			return nil, err
		}
	}
	for _, pref := range own {
		if err := add(pref); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// successResponse picks the operation's first 2xx response (lowest status)
// and returns its schema node plus media type. JSON content is preferred;
// when only another content type is documented it is still recorded so the
// endpoint resolver can classify the operation as untyped.
func successResponse(op *openapi3.Operation) (*SchemaNode, string) {
	if op.Responses == nil {
		return nil, ""
	}
	codes := make([]string, 0, len(op.Responses))
	for code := range op.Responses {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var chosen *openapi3.ResponseRef
	for _, code := range codes {
		if strings.HasPrefix(code, "2") {
			chosen = op.Responses[code]
			break
		}
	}
	if chosen == nil {
		if def, ok := op.Responses["default"]; ok {
			chosen = def
		}
	}
	if chosen == nil || chosen.Value == nil || len(chosen.Value.Content) == 0 {
		return nil, ""
	}

	content := chosen.Value.Content
	if mt, ok := content["application/json"]; ok && mt != nil {
		return toNode(mt.Schema), "application/json"
	}
	mimes := make([]string, 0, len(content))
	for mime := range content {
		mimes = append(mimes, mime)
	}
	sort.Strings(mimes)
	mime := mimes[0]
	mt := content[mime]
	if mt == nil {
		return nil, mime
	}
	return toNode(mt.Schema), mime
}

func toNode(sref *openapi3.SchemaRef) *SchemaNode {
	if sref == nil {
		return nil
	}
	if sref.Ref != "" {
		return &SchemaNode{Ref: strings.TrimPrefix(sref.Ref, componentPrefix)}
	}
	if sref.Value == nil {
		return nil
	}
	v := sref.Value
	node := &SchemaNode{Kind: v.Type, Format: v.Format}
	if v.Items != nil {
		node.Items = toNode(v.Items)
	}
	if len(v.Properties) > 0 {
		node.Properties = make(map[string]*SchemaNode, len(v.Properties))
		keys := make([]string, 0, len(v.Properties))
		for name := range v.Properties {
			keys = append(keys, name)
		}
		sort.Strings(keys)
		for _, name := range keys {
			node.Properties[name] = toNode(v.Properties[name])
			node.PropOrder = append(node.PropOrder, name)
		}
	}
	return node
}
