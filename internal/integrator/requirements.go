package integrator

import (
	"slices"

	"github.com/swash-sim/swash/internal/particle"
)

// Requirements lists, per entity kind, the per-particle array names a kind
// must carry before the first timestep. External allocation logic walks it
// to preallocate storage.
//
// Only the Write category is populated by derivation from the registry: the
// stepper writes the staged buffer and the copier writes the live integral,
// so integrand and integral arrays are write-required. Read and Private are
// kept as separate categories for other consumers (e.g. kernel-derived read
// sets) to populate through their own registration path.
type Requirements struct {
	Write   map[particle.Kind][]string
	Read    map[particle.Kind][]string
	Private map[particle.Kind][]string
}

// MergeRead records externally-derived read requirements for a kind.
func (r *Requirements) MergeRead(k particle.Kind, names []string) {
	r.Read[k] = mergeSorted(r.Read[k], names)
}

// MergePrivate records externally-derived private requirements for a kind.
func (r *Requirements) MergePrivate(k particle.Kind, names []string) {
	r.Private[k] = mergeSorted(r.Private[k], names)
}

// DeriveRequirements walks the registry and computes the per-kind array
// requirements. A kind participates in a property when it appears in the
// property's eligible set or in the entity-kind requirement table. The
// particle.KindAny bucket collects arrays required of every kind.
//
// Name lists are deduplicated and sorted for deterministic output; ordering
// here is not load-bearing, unlike registration order elsewhere.
func (r *Registry) DeriveRequirements() *Requirements {
	req := &Requirements{
		Write:   make(map[particle.Kind][]string),
		Read:    make(map[particle.Kind][]string),
		Private: make(map[particle.Kind][]string),
	}

	for _, name := range r.Properties() {
		p, _ := r.Property(name)

		kinds := slices.Clone(p.Kinds)
		for _, k := range r.AcceptedKinds(name) {
			if !slices.Contains(kinds, k) {
				kinds = append(kinds, k)
			}
		}

		arrays := append(slices.Clone(p.Integrands), p.Integrals...)
		for _, k := range kinds {
			req.Write[k] = mergeSorted(req.Write[k], arrays)
		}
	}

	return req
}

func mergeSorted(dst, add []string) []string {
	for _, name := range add {
		name = particle.CanonicalName(name)
		if !slices.Contains(dst, name) {
			dst = append(dst, name)
		}
	}
	slices.Sort(dst)
	return dst
}
