package generator

import "fmt"

// Severity of a generation diagnostic. Warnings never abort a run; fatal
// structural problems are returned as errors instead.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Diagnostic categories.
const (
	CategoryEmptySchema   = "empty-schema"
	CategoryNameCollision = "name-collision"
	CategoryMixinConflict = "mixin-conflict"
	CategoryUntyped       = "untyped-response"
	CategoryMethodRename  = "method-rename"
)

// Diagnostic is one reviewable finding from a generation run.
type Diagnostic struct {
	Severity Severity
	Category string
	Subject  string // schema, mixin or operation the finding is about
	Message  string
}

// Report collects the diagnostics of one run for human review: EmptySchema
// markers, resolved naming collisions, and conflicting-mixin detections.
type Report struct {
	Diagnostics []Diagnostic
}

func (r *Report) add(sev Severity, category, subject, format string, args ...any) {
	r.Diagnostics = append(r.Diagnostics, Diagnostic{
		Severity: sev,
		Category: category,
		Subject:  subject,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Warnings returns the warning-severity diagnostics.
func (r *Report) Warnings() []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityWarning {
			out = append(out, d)
		}
	}
	return out
}

// Count returns the number of diagnostics in the given category.
func (r *Report) Count(category string) int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Category == category {
			n++
		}
	}
	return n
}
