package generator

import "fmt"

// Registry owns the output namespace for one generation run: mixin, enum,
// model and wrapper names all claim through it so the union of generated
// names stays collision-free. It is created at the start of a run and
// discarded at the end.
type Registry struct {
	owners  map[string]string
	renames []Rename
}

// Rename records a deterministic collision disambiguation.
type Rename struct {
	Requested string
	Assigned  string
	Owner     string // kind of the claimant, e.g. "mixin", "enum", "model"
	Holder    string // kind of the earlier claimant that held the name
}

func NewRegistry() *Registry {
	return &Registry{owners: make(map[string]string)}
}

// Claim reserves name for owner. The first claimant keeps the bare name;
// later claimants receive a numeric suffix (_2, _3, ...) in claim order, so
// repeated runs over the same input assign identical names.
func (r *Registry) Claim(name, owner string) string {
	holder, taken := r.owners[name]
	if !taken {
		r.owners[name] = owner
		return name
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s_%d", name, n)
		if _, used := r.owners[candidate]; used {
			continue
		}
		r.owners[candidate] = owner
		r.renames = append(r.renames, Rename{Requested: name, Assigned: candidate, Owner: owner, Holder: holder})
		return candidate
	}
}

// Renames returns every disambiguation performed, in claim order.
func (r *Registry) Renames() []Rename { return r.renames }
