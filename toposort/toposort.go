// Package toposort implements a priority-queue topological sort: a
// Kahn-style sort run in reverse, selecting at each step the
// highest-input-index candidate whose dependents have all already been
// placed. Among all valid linearizations this is the one that
// disturbs the type/name-sorted input least, because the latest
// permissible slot for an object is unique up to cycles, whereas earliest
// permissible slots accumulate drift from prerequisites.
package toposort

import (
	"github.com/sqldef/dumpsort/dumpobj"
)

// Result is the outcome of one Sort call.
type Result struct {
	// Sorted holds the output array when the sort succeeded in full, or a
	// partially-filled array (with nils at unfilled slots) when it did
	// not — callers normally only look at Sorted when OK is true.
	Sorted []*dumpobj.Object
	OK     bool
	// Remainder holds the objects with a nonzero beforeConstraints count
	// when the sort fails: the objects that participate in, or are
	// downstream of, at least one cycle.
	Remainder []*dumpobj.Object
}

// Sort performs the topological sort over the already type/name-sorted
// input array. It never mutates the input slice.
func Sort(input []*dumpobj.Object) Result {
	n := len(input)
	if n == 0 {
		return Result{Sorted: nil, OK: true}
	}

	indexByID := make(map[dumpobj.ID]int, n)
	for i, o := range input {
		indexByID[o.DumpID] = i
	}

	// beforeConstraints[i] (indexed by input-array index, not dumpId, to
	// avoid a second map lookup per decrement) counts how many objects in
	// the input depend on input[i] — i.e. indegree when edges are
	// inverted for emission.
	beforeConstraints := make([]int, n)
	for _, o := range input {
		for _, dep := range o.Deps {
			if j, ok := indexByID[dep]; ok {
				beforeConstraints[j]++
			}
		}
	}

	seed := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if beforeConstraints[i] == 0 {
			seed = append(seed, i)
		}
	}
	h := newMaxIndexHeap(seed)

	output := make([]*dumpobj.Object, n)
	filled := make([]bool, n)
	nextSlot := n - 1 // fill right-to-left

	for h.Len() > 0 {
		idx := h.PopMax()
		output[nextSlot] = input[idx]
		filled[nextSlot] = true
		nextSlot--

		for _, dep := range input[idx].Deps {
			j, ok := indexByID[dep]
			if !ok {
				continue
			}
			beforeConstraints[j]--
			if beforeConstraints[j] == 0 {
				h.Push(j)
			}
		}
	}

	allFilled := true
	for _, f := range filled {
		if !f {
			allFilled = false
			break
		}
	}
	if allFilled {
		return Result{Sorted: output, OK: true}
	}

	var remainder []*dumpobj.Object
	for i := 0; i < n; i++ {
		if beforeConstraints[i] > 0 {
			remainder = append(remainder, input[i])
		}
	}
	return Result{Sorted: output, OK: false, Remainder: remainder}
}
