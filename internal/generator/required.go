package generator

// Override pins a field's requiredness regardless of what the source
// document or the example heuristic would decide.
type Override struct {
	Schema string // "*" matches any schema
	Field  string // wire name
	Value  bool
}

// OverrideTable resolves field requiredness. Exact schema entries beat
// wildcard entries; both beat anything inferred from the document.
type OverrideTable struct {
	exact    map[string]bool // "Schema.field"
	wildcard map[string]bool // field
}

// NewOverrideTable builds a table from explicit entries. A later entry for
// the same key replaces an earlier one.
func NewOverrideTable(entries []Override) *OverrideTable {
	t := &OverrideTable{
		exact:    make(map[string]bool),
		wildcard: make(map[string]bool),
	}
	for _, e := range entries {
		if e.Schema == "*" || e.Schema == "" {
			t.wildcard[e.Field] = e.Value
		} else {
			t.exact[e.Schema+"."+e.Field] = e.Value
		}
	}
	return t
}

// Lookup returns the pinned value for a schema/field pair, if any.
func (t *OverrideTable) Lookup(schema, field string) (bool, bool) {
	if t == nil {
		return false, false
	}
	if v, ok := t.exact[schema+"."+field]; ok {
		return v, true
	}
	if v, ok := t.wildcard[field]; ok {
		return v, true
	}
	return false, false
}

// ResolveRequired decides whether a field is required on its model.
//
// Precedence: exact override, wildcard override, the document's declared
// required list, then the example-presence heuristic. The heuristic is
// deliberately weak evidence; a field that merely appears in the schema's
// example is treated as required only when nothing stronger speaks.
func ResolveRequired(t *OverrideTable, schema, wire string, declared bool, hasExample bool) bool {
	if v, ok := t.Lookup(schema, wire); ok {
		return v
	}
	if declared {
		return true
	}
	return hasExample
}
