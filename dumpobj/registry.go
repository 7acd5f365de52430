package dumpobj

import (
	"fmt"
	"runtime"

	"github.com/sqldef/dumpsort/util"
)

// Registry is the lookup surface a sort run needs: findByDumpId,
// findTypeByOid, findAccessMethodByOid, plus the edge-mutation primitives.
// It owns every Object for one dump run; the sort and repair passes never
// construct or destroy Objects, only mutate the edges and flags of Objects
// already in a Registry.
type Registry struct {
	byID         map[ID]*Object
	maxID        ID
	descriptions map[ID]string
}

// NewRegistry builds a Registry from a fully-populated object list. The
// loader is expected to have assigned dense IDs in [1, maxID]; NewRegistry
// does not renumber objects.
//
// Each object's Describe string is precomputed concurrently, bounded by
// GOMAXPROCS, since a catalog can carry tens of thousands of objects and
// Describe does independent per-object work (payload inspection, identifier
// quoting) with no shared state to race on.
func NewRegistry(objects []*Object) *Registry {
	r := &Registry{byID: make(map[ID]*Object, len(objects))}
	for _, o := range objects {
		r.byID[o.DumpID] = o
		if o.DumpID > r.maxID {
			r.maxID = o.DumpID
		}
	}

	descs, err := util.ConcurrentMapFuncWithError(objects, runtime.GOMAXPROCS(0), func(o *Object) (string, error) {
		return Describe(o), nil
	})
	if err == nil {
		r.descriptions = make(map[ID]string, len(objects))
		for i, o := range objects {
			r.descriptions[o.DumpID] = descs[i]
		}
	}

	return r
}

// Description returns the precomputed Describe string for id, computing it
// on the fly for a registered object that has none (if concurrent
// precomputation failed). It returns "" for an id the registry does not
// know.
func (r *Registry) Description(id ID) string {
	if s, ok := r.descriptions[id]; ok {
		return s
	}
	if o := r.byID[id]; o != nil {
		return Describe(o)
	}
	return ""
}

// MaxID returns the largest DumpID known to the registry.
func (r *Registry) MaxID() ID {
	return r.maxID
}

// FindByDumpID returns the object with the given id, or nil when id is not
// present. A nil result is not an error: edges may legitimately target
// objects outside the current sort's input set, since the set of objects
// referenced by edges is a superset of the sorted set.
func (r *Registry) FindByDumpID(id ID) *Object {
	return r.byID[id]
}

// FindTypeByOID looks up a type (or shell type) object by its catalog OID,
// for the comparator's recursive natural-key lookups. Returns nil, matching
// the comparator's contract of treating a failed
// lookup as an inconclusive comparison rather than an error.
func (r *Registry) FindTypeByOID(oid uint32) *Object {
	for _, o := range r.byID {
		if (o.Kind == KindType || o.Kind == KindShellType || o.Kind == KindDummyType) && o.CatalogID.OID == oid {
			return o
		}
	}
	return nil
}

// FindAccessMethodByOID looks up an access method object by catalog OID.
func (r *Registry) FindAccessMethodByOID(oid uint32) *Object {
	for _, o := range r.byID {
		if o.Kind == KindAccessMethod && o.CatalogID.OID == oid {
			return o
		}
	}
	return nil
}

// AddDependency adds an edge a -> target ("a must be emitted after
// target"). target need not currently exist in the registry; that is
// legal, and the edge is simply inert until/unless target is added.
func (r *Registry) AddDependency(a *Object, target ID) {
	a.AddDep(target)
}

// RemoveDependency removes the edge a -> target, if present.
func (r *Registry) RemoveDependency(a *Object, target ID) {
	a.RemoveDep(target)
}

// Objects returns every object the registry knows about, ordered by
// DumpID. Used by diagnostics and by tests; the sort itself always takes
// an explicit ordered input slice rather than iterating this map.
func (r *Registry) Objects() []*Object {
	out := make([]*Object, 0, len(r.byID))
	for _, o := range util.CanonicalMapIter(r.byID) {
		out = append(out, o)
	}
	return out
}

// ValidateInput checks the invariants a sort's input must satisfy: in-range
// DumpIDs and in-range edge targets. It returns the first InvalidInputError
// found, or nil.
func ValidateInput(objects []*Object, maxID ID) error {
	for _, o := range objects {
		if o.DumpID < 1 || o.DumpID > maxID {
			return &InvalidInputError{DumpID: o.DumpID, Reason: fmt.Sprintf("dumpId %d out of range [1, %d]", o.DumpID, maxID)}
		}
		for _, dep := range o.Deps {
			if dep < 1 || dep > maxID {
				return &InvalidInputError{DumpID: o.DumpID, Reason: fmt.Sprintf("edge target %d out of range [1, %d]", dep, maxID)}
			}
		}
	}
	return nil
}
