package spec

// Schema graph definitions consumed by the generator and the emitter.

type HttpMethod string

const (
	GET     HttpMethod = "get"
	POST    HttpMethod = "post"
	PUT     HttpMethod = "put"
	DELETE  HttpMethod = "delete"
	PATCH   HttpMethod = "patch"
	HEAD    HttpMethod = "head"
	OPTIONS HttpMethod = "options"
	TRACE   HttpMethod = "trace"
)

// Graph is the flat schema/operation collection produced from one document.
// It is built in a single pass and not mutated afterwards.
type Graph struct {
	Title       string
	Version     string
	Schemas     map[string]*SchemaDef
	SchemaNames []string // sorted; iteration order for deterministic output
	Operations  []OperationDef
	Empty       []string // names of schemas marked EmptySchema
}

// SchemaDef is one canonical schema definition.
type SchemaDef struct {
	Name        string
	Fields      []FieldDef // document order
	EnumValues  []string   // set when the schema itself is a primitive enum
	SourcePath  string     // e.g. "#/components/schemas/Abuc"
	Description string
	Empty       bool // no properties and no enum values
}

// Field returns the schema's field with the given wire name, or nil.
func (s *SchemaDef) Field(wire string) *FieldDef {
	for i := range s.Fields {
		if s.Fields[i].WireName == wire {
			return &s.Fields[i]
		}
	}
	return nil
}

// FieldDef is one property of a schema. Name is the canonical snake_case
// identifier derived from WireName; the derivation is a pure function so
// alias round-tripping is lossless.
type FieldDef struct {
	Name        string // logical snake_case name
	WireName    string // original casing from the document
	Type        FieldType
	Required    bool // declared required in the document; the final flag is resolved later
	Example     any
	EnumValues  []string // bounded string value set declared inline, if any
	Description string
	Schema      string // enclosing schema name
}

// Signature returns the dedup key for this field. Two fields in different
// schemas are the same field iff their signatures are equal.
func (f *FieldDef) Signature() FieldSignature {
	return FieldSignature{
		Name:     f.Name,
		WireName: f.WireName,
		Type:     f.Type.Canonical(),
		Array:    f.Type.Array,
	}
}

// FieldSignature is the (logical name, wire name, type, array-ness) tuple.
// Comparable; used directly as a map key.
type FieldSignature struct {
	Name     string
	WireName string
	Type     string
	Array    bool
}

// FieldType is a primitive, a reference to another SchemaDef, or array-of
// either.
type FieldType struct {
	Kind   string // string|integer|number|boolean|object; empty when Ref is set
	Format string // date, date-time, int32, int64, float, double
	Ref    string // referenced schema name
	Array  bool
}

// Canonical returns the stable string form used inside signatures, e.g.
// "string", "string:date-time" or "ref:AbucDatasetRow". Array-ness is carried
// separately in the signature.
func (t FieldType) Canonical() string {
	if t.Ref != "" {
		return "ref:" + t.Ref
	}
	if t.Format != "" {
		return t.Kind + ":" + t.Format
	}
	return t.Kind
}

// OperationDef is one HTTP operation from the document's paths.
type OperationDef struct {
	ID          string // method + space + path
	Method      HttpMethod
	Path        string
	Summary     string
	Description string
	Parameters  []ParamDef  // document order; grouped later by the endpoint resolver
	Response    *SchemaNode // success response schema, nil when absent
	MediaType   string      // content type of the success response
}

// ParamDef is one operation parameter.
type ParamDef struct {
	Name        string // logical snake_case name
	WireName    string
	In          string // path|query|header
	Required    bool
	Type        FieldType
	Description string
}

// SchemaNode is a lightweight tree over an inline schema, kept for response
// shape classification. References are preserved by name, not resolved.
type SchemaNode struct {
	Ref        string
	Kind       string
	Format     string
	Items      *SchemaNode
	Properties map[string]*SchemaNode
	PropOrder  []string
}

// ResponseShape classifies an operation's success response.
type ResponseShape string

const (
	SingleModel     ResponseShape = "SingleModel"
	ListOfModel     ResponseShape = "ListOfModel"
	ListOfPrimitive ResponseShape = "ListOfPrimitive"
	WrappedModel    ResponseShape = "WrappedModel"
	Untyped         ResponseShape = "Untyped"
)
