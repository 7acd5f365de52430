// Package dumpsort computes a safe emission order for a graph of dump
// objects: a stable type/name pre-sort, a priority-queue topological sort
// over the resulting dependency graph, and, when that sort finds a cycle,
// repeated cycle-finding and pattern-based repair until a full order is
// reached.
package dumpsort

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/sqldef/dumpsort/dumpobj"
	"github.com/sqldef/dumpsort/looprepair"
	"github.com/sqldef/dumpsort/tnsort"
	"github.com/sqldef/dumpsort/toposort"
)

// maxRepairPasses bounds the repair loop. Each pass strictly reduces the
// remainder's edge count (every repair pattern removes at least one edge),
// so this is a corruption backstop, not a tuning knob: a genuine input
// converges in far fewer passes than this.
const maxRepairPasses = 10000

// SortByTypeName runs the stable type/name pre-sort with no dependency
// graph consultation. Most callers want SortDependencyAware; this is
// exposed for callers that only need the priority/name ordering (e.g. a
// diagnostic dump of "preferred order" before dependencies are applied).
func SortByTypeName(objects []*dumpobj.Object, reg *dumpobj.Registry, logger *slog.Logger) []*dumpobj.Object {
	return tnsort.SortByTypeName(objects, reg, logger)
}

// SortDependencyAware computes a full safe emission order: a type/name
// pre-sort followed by topological ordering, with cycle detection and
// repair looped until the sort succeeds. objects must satisfy
// dumpobj.ValidateInput against reg.MaxID(); preBoundaryID and
// postBoundaryID name the pre-data and post-data boundary singletons that
// several repair patterns anchor on.
//
// It returns the reordered slice. Object flags (Separate, DummyView,
// PostponedDef) and dependency edges are mutated in place on the
// underlying dumpobj.Objects as repair proceeds; reg is mutated
// accordingly since it shares the same Object pointers.
func SortDependencyAware(objects []*dumpobj.Object, reg *dumpobj.Registry, preBoundaryID, postBoundaryID dumpobj.ID, logger *slog.Logger) ([]*dumpobj.Object, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := dumpobj.ValidateInput(objects, reg.MaxID()); err != nil {
		return nil, fmt.Errorf("dumpsort: %w", err)
	}

	current := tnsort.SortByTypeName(objects, reg, logger)

	repairCtx := &looprepair.Context{
		Registry:       reg,
		PreBoundaryID:  preBoundaryID,
		PostBoundaryID: postBoundaryID,
		Logger:         logger,
	}

	for pass := 0; pass < maxRepairPasses; pass++ {
		result := toposort.Sort(current)
		if result.OK {
			return result.Sorted, nil
		}

		logger.Debug("dumpsort: topological sort failed, searching for a cycle to repair",
			slog.Int("remainder_size", len(result.Remainder)))

		cycle, err := looprepair.FindLoop(result.Remainder, reg)
		if err != nil {
			if errors.Is(err, looprepair.ErrNoLoopFound) {
				return nil, fmt.Errorf("dumpsort: topological sort failed but no cycle could be located among %d remaining objects: %w", len(result.Remainder), err)
			}
			return nil, fmt.Errorf("dumpsort: %w", err)
		}

		if err := looprepair.Repair(cycle, repairCtx); err != nil {
			return nil, fmt.Errorf("dumpsort: repairing cycle: %w", err)
		}

		// Repair only mutates edges/flags; re-run the type/name sort over the
		// caller's original input slice (not reg.Objects(), which may be a
		// superset of it) for the next topological pass. The comparator reads
		// neither edges nor repair flags, so this yields the same preferred
		// order as the first pass.
		current = tnsort.SortByTypeName(objects, reg, logger)
	}

	return nil, fmt.Errorf("dumpsort: exceeded %d repair passes without converging", maxRepairPasses)
}
