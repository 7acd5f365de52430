// Package looprepair implements the cycle finder and loop repair
// dispatcher: once the topological sort fails, this package locates an
// elementary cycle in the unsorted remainder and mutates the dependency
// graph according to a catalog of known schema-level repair patterns
// until no cycles remain.
package looprepair

import (
	"errors"

	"github.com/sqldef/dumpsort/dumpobj"
)

// ErrNoLoopFound reports that a pass found no cycle yet the sort had
// failed — this would indicate corruption in the search. It should be
// unreachable given a genuinely-failed topological sort, since sort
// failure implies some object's beforeConstraints never reached zero,
// which implies a cycle exists among the remainder.
var ErrNoLoopFound = errors.New("could not identify dependency loop")

// cycleFinder holds two memoization maps: processed (vertices proven
// cycle-free, or already claimed by a repaired cycle, within this pass)
// and searchFailed (keyed by node, recording the *start point* for which
// no return path was found). Tracking failures per start point this way
// avoids re-zeroing a plain visited array on every start point, an O(N)
// saving over the naive approach.
type cycleFinder struct {
	remainder map[dumpobj.ID]bool
	processed map[dumpobj.ID]bool
	searchFailed map[dumpobj.ID]dumpobj.ID

	// workspace is reused across searches from different start points and
	// holds the current path; onPath is the same path as a set, the visited
	// set that prevents infinite recursion on cycles the start point is not
	// a member of.
	workspace []dumpobj.ID
	onPath    map[dumpobj.ID]bool
}

func newCycleFinder(remainder []*dumpobj.Object) *cycleFinder {
	set := make(map[dumpobj.ID]bool, len(remainder))
	for _, o := range remainder {
		set[o.DumpID] = true
	}
	return &cycleFinder{
		remainder:    set,
		processed:    make(map[dumpobj.ID]bool),
		searchFailed: make(map[dumpobj.ID]dumpobj.ID),
		onPath:       make(map[dumpobj.ID]bool),
	}
}

// FindLoop performs a bounded DFS over the remainder that returns the
// vertices of one elementary cycle. It
// explores edges in declaration order and returns the first cycle found,
// which in practice tends to be short because at every vertex the edges
// are checked for a direct return to the start point before any transit
// vertex is explored.
//
// remainder must be the failure remainder returned by toposort.Sort; reg
// resolves dumpId edges to Objects. Returns ErrNoLoopFound if no cycle
// exists among the remainder, which should not happen for a genuine
// topological sort failure.
func FindLoop(remainder []*dumpobj.Object, reg *dumpobj.Registry) ([]*dumpobj.Object, error) {
	cf := newCycleFinder(remainder)
	for _, start := range remainder {
		if cf.processed[start.DumpID] {
			continue
		}
		cf.workspace = cf.workspace[:0]
		for k := range cf.onPath {
			delete(cf.onPath, k)
		}
		if cycle := cf.search(start.DumpID, start.DumpID, reg); cycle != nil {
			return idsToObjects(cycle, reg), nil
		}
		cf.processed[start.DumpID] = true
	}
	return nil, ErrNoLoopFound
}

// search performs the recursive DFS from current, looking for a path back
// to start. It returns the path (start ... current) if current has a
// direct edge to start, or if a deeper vertex does.
func (cf *cycleFinder) search(start, current dumpobj.ID, reg *dumpobj.Registry) []dumpobj.ID {
	cf.onPath[current] = true
	cf.workspace = append(cf.workspace, current)

	obj := reg.FindByDumpID(current)
	if obj != nil {
		// A direct edge back to start closes the loop at this depth; look for
		// one before exploring any transit vertex.
		for _, dep := range obj.Deps {
			if dep == start {
				path := append([]dumpobj.ID(nil), cf.workspace...)
				cf.onPath[current] = false
				return path
			}
		}
		for _, dep := range obj.Deps {
			if !cf.remainder[dep] {
				continue // edges leaving the remainder can't be part of this cycle
			}
			if cf.onPath[dep] {
				continue // would revisit a vertex already on this path without closing the loop
			}
			if cf.processed[dep] {
				continue
			}
			if cf.searchFailed[dep] == start {
				continue
			}
			if found := cf.search(start, dep, reg); found != nil {
				cf.onPath[current] = false
				return found
			}
		}
	}

	cf.onPath[current] = false
	cf.workspace = cf.workspace[:len(cf.workspace)-1]
	cf.searchFailed[current] = start
	return nil
}

func idsToObjects(ids []dumpobj.ID, reg *dumpobj.Registry) []*dumpobj.Object {
	out := make([]*dumpobj.Object, 0, len(ids))
	for _, id := range ids {
		if o := reg.FindByDumpID(id); o != nil {
			out = append(out, o)
		}
	}
	return out
}
