package generator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gridwatch/bmrsgen/internal/spec"
)

// PairGroup declares a small group of wire names that belong together. It is
// recognized in a schema only when every member is present; recognized
// groups are extracted before single fields so naturally coupled fields end
// up in one mixin.
type PairGroup struct {
	// Name is the base mixin name, e.g. "Settlement". Derived from the
	// members' common prefix when empty.
	Name  string
	Wires []string
}

// SignatureStat is the usage record of one field signature.
type SignatureStat struct {
	Count   int
	Schemas []string // sorted consuming schema names
}

// PairStat is the usage record of one recognized pair-group signature tuple.
// A group occurring with two different member signatures yields two stats.
type PairStat struct {
	Group   PairGroup
	Sigs    []spec.FieldSignature // one per group wire, same order
	Count   int
	Schemas []string
}

// Catalog is the frequency index over every schema's field signatures. It is
// fully built before any consumer reads it and never mutated afterwards.
type Catalog struct {
	stats map[spec.FieldSignature]*SignatureStat
	order []spec.FieldSignature
	pairs []PairStat
	wires map[string][]string // wire name -> sorted consuming schema names
}

// BuildCatalog walks every schema's field list exactly once. Signatures are
// accumulated with exact equality: a field with the same logical name but a
// different wire alias or type is a distinct signature, since alias
// mismatches indicate a real upstream inconsistency that must not be merged.
func BuildCatalog(g *spec.Graph, groups []PairGroup) *Catalog {
	c := &Catalog{
		stats: make(map[spec.FieldSignature]*SignatureStat),
		wires: make(map[string][]string),
	}

	type pairKey struct {
		group int
		sigs  string
	}
	pairHits := make(map[pairKey]*PairStat)

	for _, name := range g.SchemaNames {
		def := g.Schemas[name]
		for i := range def.Fields {
			fd := &def.Fields[i]
			sig := fd.Signature()
			st, ok := c.stats[sig]
			if !ok {
				st = &SignatureStat{}
				c.stats[sig] = st
				c.order = append(c.order, sig)
			}
			st.Count++
			st.Schemas = append(st.Schemas, name)
			c.wires[fd.WireName] = append(c.wires[fd.WireName], name)
		}

		for gi, group := range groups {
			sigs := make([]spec.FieldSignature, 0, len(group.Wires))
			complete := true
			for _, wire := range group.Wires {
				fd := def.Field(wire)
				if fd == nil {
					complete = false
					break
				}
				sigs = append(sigs, fd.Signature())
			}
			if !complete {
				continue
			}
			key := pairKey{group: gi, sigs: sigTupleKey(sigs)}
			ps, ok := pairHits[key]
			if !ok {
				ps = &PairStat{Group: group, Sigs: sigs}
				pairHits[key] = ps
			}
			ps.Count++
			ps.Schemas = append(ps.Schemas, name)
		}
	}

	// Deterministic iteration orders. Schema walks above already run in
	// sorted name order, so per-stat consumer lists are sorted.
	sort.Slice(c.order, func(i, j int) bool { return sigLess(c.order[i], c.order[j]) })

	keys := make([]string, 0, len(pairHits))
	byKey := make(map[string]*PairStat, len(pairHits))
	for k, ps := range pairHits {
		// Zero-padded so ten or more declared groups keep declaration order.
		sk := fmt.Sprintf("%06d", k.group) + "\x00" + k.sigs
		keys = append(keys, sk)
		byKey[sk] = ps
	}
	sort.Strings(keys)
	for _, k := range keys {
		c.pairs = append(c.pairs, *byKey[k])
	}

	return c
}

// Stat returns the usage record for sig, or nil when never seen.
func (c *Catalog) Stat(sig spec.FieldSignature) *SignatureStat { return c.stats[sig] }

// Signatures returns every distinct signature in deterministic order.
func (c *Catalog) Signatures() []spec.FieldSignature { return c.order }

// Pairs returns every recognized pair tuple in deterministic order.
func (c *Catalog) Pairs() []PairStat { return c.pairs }

// WireConsumers returns the sorted names of schemas containing a field with
// the given wire name, regardless of its type.
func (c *Catalog) WireConsumers(wire string) []string { return c.wires[wire] }

func sigTupleKey(sigs []spec.FieldSignature) string {
	parts := make([]string, 0, len(sigs))
	for _, s := range sigs {
		parts = append(parts, sigKey(s))
	}
	return strings.Join(parts, "\x01")
}

func sigKey(s spec.FieldSignature) string {
	arr := "0"
	if s.Array {
		arr = "1"
	}
	return s.Name + "\x00" + s.WireName + "\x00" + s.Type + "\x00" + arr
}

func sigLess(a, b spec.FieldSignature) bool { return sigKey(a) < sigKey(b) }
