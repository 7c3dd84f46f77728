package spec

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Naming rules shared by the graph builder, the generator and the emitter.
// LogicalName must stay a pure function of the wire name: the same wire name
// always yields the same logical name, so stored aliases round-trip.

var (
	camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	invalidIdent  = regexp.MustCompile(`[^a-zA-Z0-9_]`)
	repeatedUnder = regexp.MustCompile(`_+`)
)

// newTitler builds a title-casing transformer. Casers carry transform state
// and are not safe for concurrent use, so each caller gets its own.
func newTitler() cases.Caser {
	return cases.Title(language.English)
}

// goKeywords are reserved words that cannot be used as parameter identifiers
// in emitted code. Escaped with a trailing underscore.
var goKeywords = map[string]struct{}{
	"break": {}, "case": {}, "chan": {}, "const": {}, "continue": {},
	"default": {}, "defer": {}, "else": {}, "fallthrough": {}, "for": {},
	"func": {}, "go": {}, "goto": {}, "if": {}, "import": {},
	"interface": {}, "map": {}, "package": {}, "range": {}, "return": {},
	"select": {}, "struct": {}, "switch": {}, "type": {}, "var": {},
}

// LogicalName converts a wire name (typically camelCase) to the canonical
// snake_case identifier, e.g. "settlementDate" -> "settlement_date".
func LogicalName(wire string) string {
	name := camelBoundary.ReplaceAllString(wire, "${1}_${2}")
	name = strings.ToLower(name)
	name = invalidIdent.ReplaceAllString(name, "_")
	name = repeatedUnder.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")
	if name == "" {
		return "field"
	}
	return name
}

// EscapeIdent appends an underscore when the identifier is a reserved word,
// e.g. "from" stays "from" but "type" becomes "type_".
func EscapeIdent(name string) string {
	if _, reserved := goKeywords[name]; reserved {
		return name + "_"
	}
	return name
}

// ExportedName converts a snake_case logical name to an exported CamelCase
// identifier, e.g. "settlement_date" -> "SettlementDate".
func ExportedName(logical string) string {
	titler := newTitler()
	parts := strings.Split(logical, "_")
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(titler.String(p))
	}
	out := b.String()
	if out == "" {
		return "Field"
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = "X" + out
	}
	return out
}

// ParamIdent converts a snake_case logical name to a lowerCamel parameter
// identifier with reserved words escaped, e.g. "from" -> "from",
// "settlement_date" -> "settlementDate".
func ParamIdent(logical string) string {
	titler := newTitler()
	parts := strings.Split(logical, "_")
	var b strings.Builder
	for i, p := range parts {
		if p == "" {
			continue
		}
		if i == 0 {
			b.WriteString(strings.ToLower(p))
			continue
		}
		b.WriteString(titler.String(p))
	}
	out := b.String()
	if out == "" {
		out = "param"
	}
	return EscapeIdent(out)
}

// wrapperSuffixes map marker substrings in raw schema names to the suffix a
// sanitized model name receives. The upstream document reuses generic wrapper
// type names, so the marker is what keeps the flattened names unique.
var wrapperSuffixes = []struct {
	marker string
	suffix string
}{
	{"DatasetResponse-1_", "_DatasetResponse"},
	{"ResponseWithMetadata-1_", "_ResponseWithMetadata"},
	{"Response-1_", "_Response"},
}

// ModelName converts a raw schema name from the document into a valid,
// namespace-free model identifier. Dotted namespace prefixes are dropped and
// wrapper markers become suffixes, e.g.
// "Insights.Api.Models.ResponseWithMetadata-1_Abuc.AbucRow" ->
// "AbucRow_ResponseWithMetadata".
func ModelName(raw string) string {
	suffix := ""
	for _, w := range wrapperSuffixes {
		if strings.Contains(raw, w.marker) {
			suffix = w.suffix
			break
		}
	}

	name := raw
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	name = invalidIdent.ReplaceAllString(name, "_")
	name = repeatedUnder.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")
	if name == "" {
		name = "UnnamedModel"
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "Model_" + name
	}
	if name[0] >= 'a' && name[0] <= 'z' {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	return name + suffix
}
