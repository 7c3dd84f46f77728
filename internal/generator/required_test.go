package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOverridePrecedence(t *testing.T) {
	t.Parallel()

	table := NewOverrideTable([]Override{
		{Schema: "*", Field: "settlementDate", Value: true},
		{Schema: "Abuc", Field: "settlementDate", Value: false},
	})

	// Exact beats wildcard.
	assert.False(t, ResolveRequired(table, "Abuc", "settlementDate", true, true))
	// Wildcard applies everywhere else.
	assert.True(t, ResolveRequired(table, "Other", "settlementDate", false, false))
}

func TestDeclaredRequiredBeatsHeuristic(t *testing.T) {
	t.Parallel()

	table := NewOverrideTable(nil)
	assert.True(t, ResolveRequired(table, "Abuc", "dataset", true, false))
}

func TestExampleHeuristicIsLastResort(t *testing.T) {
	t.Parallel()

	table := NewOverrideTable(nil)
	assert.True(t, ResolveRequired(table, "Abuc", "quantity", false, true))
	assert.False(t, ResolveRequired(table, "Abuc", "quantity", false, false))
}

func TestOverrideLaterEntryWins(t *testing.T) {
	t.Parallel()

	table := NewOverrideTable([]Override{
		{Schema: "*", Field: "quantity", Value: true},
		{Schema: "*", Field: "quantity", Value: false},
	})
	v, ok := table.Lookup("Any", "quantity")
	assert.True(t, ok)
	assert.False(t, v)
}

func TestNilTableFallsThrough(t *testing.T) {
	t.Parallel()

	var table *OverrideTable
	assert.True(t, ResolveRequired(table, "A", "f", true, false))
	assert.False(t, ResolveRequired(table, "A", "f", false, false))
}
