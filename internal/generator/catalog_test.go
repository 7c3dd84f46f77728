package generator

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridwatch/bmrsgen/internal/spec"
)

func TestCatalogCountsIdenticalSignatures(t *testing.T) {
	t.Parallel()

	g := testGraph(
		schemaDef("A", strField("A", "settlementDate"), intField("A", "settlementPeriod")),
		schemaDef("B", strField("B", "settlementDate"), intField("B", "settlementPeriod")),
		schemaDef("C", strField("C", "settlementDate")),
	)
	cat := BuildCatalog(g, nil)

	dateSig := fieldSig(strField("A", "settlementDate"))
	st := cat.Stat(dateSig)
	require.NotNil(t, st)
	assert.Equal(t, 3, st.Count)
	assert.Equal(t, []string{"A", "B", "C"}, st.Schemas)

	periodSig := fieldSig(intField("A", "settlementPeriod"))
	st = cat.Stat(periodSig)
	require.NotNil(t, st)
	assert.Equal(t, 2, st.Count)
}

func TestCatalogDistinguishesTypes(t *testing.T) {
	t.Parallel()

	// Same wire name, different type: two distinct signatures.
	g := testGraph(
		schemaDef("A", strField("A", "quantity")),
		schemaDef("B", intField("B", "quantity")),
	)
	cat := BuildCatalog(g, nil)

	assert.Len(t, cat.Signatures(), 2)
	assert.Equal(t, 1, cat.Stat(fieldSig(strField("A", "quantity"))).Count)
	assert.Equal(t, 1, cat.Stat(fieldSig(intField("B", "quantity"))).Count)
	// Wire consumers ignore the type split.
	assert.Equal(t, []string{"A", "B"}, cat.WireConsumers("quantity"))
}

func TestCatalogPairsRequireIdenticalSignaturesInBothMembers(t *testing.T) {
	t.Parallel()

	g := testGraph(
		schemaDef("A", strField("A", "settlementDate"), intField("A", "settlementPeriod")),
		schemaDef("B", strField("B", "settlementDate"), intField("B", "settlementPeriod")),
		// C carries the pair but with a different period type; it joins a
		// separate pair tuple.
		schemaDef("C", strField("C", "settlementDate"), strField("C", "settlementPeriod")),
		// D has only one member of the pair.
		schemaDef("D", strField("D", "settlementDate")),
	)
	groups := []PairGroup{{Name: "Settlement", Wires: []string{"settlementDate", "settlementPeriod"}}}
	cat := BuildCatalog(g, groups)

	pairs := cat.Pairs()
	require.Len(t, pairs, 2)

	var intPair, strPair *PairStat
	for i := range pairs {
		for _, sig := range pairs[i].Sigs {
			if sig.WireName == "settlementPeriod" {
				if sig.Type == "integer:int64" {
					intPair = &pairs[i]
				} else {
					strPair = &pairs[i]
				}
			}
		}
	}
	require.NotNil(t, intPair)
	require.NotNil(t, strPair)
	assert.Equal(t, 2, intPair.Count)
	assert.Equal(t, []string{"A", "B"}, intPair.Schemas)
	assert.Equal(t, 1, strPair.Count)
	assert.Equal(t, []string{"C"}, strPair.Schemas)
}

func TestCatalogPairOrderTracksDeclarationOrder(t *testing.T) {
	t.Parallel()

	// Eleven groups so a lexicographic index key would put group ten ahead
	// of group two.
	var groups []PairGroup
	var fields []spec.FieldDef
	for i := 0; i < 11; i++ {
		wire := fmt.Sprintf("w%02d", i)
		groups = append(groups, PairGroup{Name: wire, Wires: []string{wire}})
		fields = append(fields, strField("A", wire))
	}
	g := testGraph(schemaDef("A", fields...))
	cat := BuildCatalog(g, groups)

	pairs := cat.Pairs()
	require.Len(t, pairs, 11)
	for i, ps := range pairs {
		assert.Equal(t, groups[i].Name, ps.Group.Name, "pair %d out of declaration order", i)
	}
}

func TestCatalogDeterministicOrder(t *testing.T) {
	t.Parallel()

	g := testGraph(
		schemaDef("B", strField("B", "zeta"), strField("B", "alpha")),
		schemaDef("A", strField("A", "alpha"), strField("A", "zeta")),
	)
	a := BuildCatalog(g, nil)
	b := BuildCatalog(g, nil)
	assert.Equal(t, a.Signatures(), b.Signatures())

	names := make([]string, 0, len(a.Signatures()))
	for _, sig := range a.Signatures() {
		names = append(names, sig.Name)
	}
	assert.Equal(t, []string{"alpha", "zeta"}, names)
}
