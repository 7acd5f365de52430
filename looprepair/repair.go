package looprepair

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/sqldef/dumpsort/dumpobj"
)

// Context threads the pre-/post-data boundary ids and a diagnostic sink
// through the repair dispatcher, rather than via module-level globals.
type Context struct {
	Registry       *dumpobj.Registry
	PreBoundaryID  dumpobj.ID
	PostBoundaryID dumpobj.ID
	Logger         *slog.Logger
}

func (c *Context) warn(msg string) {
	if c.Logger != nil {
		c.Logger.Warn(msg)
	}
}

// Repair applies the first matching pattern from the catalog below to the
// given elementary cycle, mutating the dependency graph (and occasionally
// object flags) so that the cycle's edge count is strictly reduced. It
// always succeeds — pattern #16 is a catch-all that guarantees progress by
// removing one edge arbitrarily.
func Repair(cycle []*dumpobj.Object, ctx *Context) error {
	patterns := []func([]*dumpobj.Object, *Context) bool{
		tryTypeIOFunction,           // 1
		tryViewMatviewRuleShort,     // 2
		tryViewRuleLong,             // 3
		tryMatviewPreBoundary,       // 4
		tryMatviewStatsPostBoundary, // 5
		tryFunctionPreBoundary,      // 6
		tryTableCheckShort,          // 7
		tryTableCheckLong,           // 8
		tryTableAttrDefShort,        // 9
		tryTableAttrDefLong,         // 10
		tryPartitionedIndex,         // 11
		tryDomainCheckShort,         // 12
		tryDomainCheckLong,          // 13
		tryTableSelfLoop,            // 14
		tryCircularTableData,        // 15
	}

	for _, try := range patterns {
		if try(cycle, ctx) {
			return nil
		}
	}

	fallbackUnresolvedLoop(cycle, ctx) // 16
	return nil
}

func cycleSuccessor(cycle []*dumpobj.Object, i int) *dumpobj.Object {
	return cycle[(i+1)%len(cycle)]
}

// pairOfKinds returns the two objects of a length-2 cycle if their kinds
// match {kindA, kindB} in either order, with a assigned to kindA's role.
func pairOfKinds(cycle []*dumpobj.Object, kindA, kindB dumpobj.Kind) (a, b *dumpobj.Object, ok bool) {
	if len(cycle) != 2 {
		return nil, nil, false
	}
	x, y := cycle[0], cycle[1]
	if x.Kind == kindA && y.Kind == kindB {
		return x, y, true
	}
	if y.Kind == kindA && x.Kind == kindB {
		return y, x, true
	}
	return nil, nil, false
}

// --- Pattern 1: type <-> I/O function (length 2) ---

func tryTypeIOFunction(cycle []*dumpobj.Object, ctx *Context) bool {
	typ, fn, ok := pairOfKinds(cycle, dumpobj.KindType, dumpobj.KindFunction)
	if !ok {
		return false
	}
	shellPayload, ok := typ.Payload.(dumpobj.ShellTypePayload)
	if !ok || shellPayload.Counterpart == nil {
		return false
	}
	shell := shellPayload.Counterpart

	fn.RemoveDep(typ.DumpID)
	fn.AddDep(shell.DumpID)
	if fn.Dump&dumpobj.DumpDefinition != 0 {
		shell.Dump |= dumpobj.DumpDefinition
	}
	return true
}

// --- Pattern 2: view/matview <-> ON SELECT rule (length 2) ---

func isOnSelectRule(o *dumpobj.Object, table *dumpobj.Object) bool {
	rp, ok := o.Payload.(dumpobj.RulePayload)
	return ok && rp.EvType == '1' && rp.IsInstead && rp.RuleTable == table
}

func isViewLikeTable(o *dumpobj.Object) (dumpobj.TablePayload, bool) {
	tp, ok := o.Payload.(dumpobj.TablePayload)
	if !ok {
		return tp, false
	}
	return tp, tp.RelKind == dumpobj.RelKindView || tp.RelKind == dumpobj.RelKindMatview
}

func tryViewMatviewRuleShort(cycle []*dumpobj.Object, ctx *Context) bool {
	view, rule, ok := pairOfKinds(cycle, dumpobj.KindTable, dumpobj.KindRule)
	if !ok {
		return false
	}
	if _, isViewLike := isViewLikeTable(view); !isViewLike {
		return false
	}
	if !isOnSelectRule(rule, view) {
		return false
	}
	// Remove the rule->view edge; leave view->rule intact so the rule is
	// inlined into the view definition.
	rule.RemoveDep(view.DumpID)
	return true
}

// --- Pattern 3: view <-> rule, length > 2, not matview ---

func tryViewRuleLong(cycle []*dumpobj.Object, ctx *Context) bool {
	if len(cycle) <= 2 {
		return false
	}
	for i, o := range cycle {
		tp, isViewLike := isViewLikeTable(o)
		if !isViewLike || tp.RelKind == dumpobj.RelKindMatview {
			continue
		}
		for j, r := range cycle {
			if i == j || r.Kind != dumpobj.KindRule {
				continue
			}
			if !isOnSelectRule(r, o) {
				continue
			}
			o.RemoveDep(r.DumpID)
			o.Payload = dumpobj.TablePayload{RelKind: tp.RelKind, DummyView: true, PostponedDef: tp.PostponedDef}
			r.Separate = true
			r.AddDep(o.DumpID)
			r.AddDep(ctx.PostBoundaryID)
			return true
		}
	}
	return false
}

// --- Patterns 4 & 5: matview / matview-stats <-> boundaries, length > 2 ---

func isMatview(o *dumpobj.Object) bool {
	tp, ok := o.Payload.(dumpobj.TablePayload)
	return ok && tp.RelKind == dumpobj.RelKindMatview
}

// tryMatviewPreBoundary triggers whenever a matview and the pre-data
// boundary both sit somewhere in the cycle; the mutation always removes the
// boundary's edge to its immediate cycle successor, regardless of what that
// successor turns out to be, and only marks it postponed when the successor
// happens to be a matview or its statistics. Interconnected matview
// clusters need several passes over cycles with different boundary
// successors before every pre-data linkage is severed, so this pattern is
// expected to fire more than once for a single sort.
func tryMatviewPreBoundary(cycle []*dumpobj.Object, ctx *Context) bool {
	if len(cycle) <= 2 {
		return false
	}
	boundaryIdx := -1
	hasMatview := false
	for i, o := range cycle {
		if o.DumpID == ctx.PreBoundaryID {
			boundaryIdx = i
		}
		if isMatview(o) {
			hasMatview = true
		}
	}
	if boundaryIdx == -1 || !hasMatview {
		return false
	}

	boundary := cycle[boundaryIdx]
	succ := cycleSuccessor(cycle, boundaryIdx)
	boundary.RemoveDep(succ.DumpID)

	if tp, ok := succ.Payload.(dumpobj.TablePayload); ok && tp.RelKind == dumpobj.RelKindMatview {
		tp.PostponedDef = true
		succ.Payload = tp
	} else if rp, ok := succ.Payload.(dumpobj.RelStatsPayload); ok && rp.RelKind == dumpobj.RelKindMatview {
		rp.Postponed = true
		succ.Payload = rp
	}
	return true
}

// tryMatviewStatsPostBoundary is the post-data-boundary mirror of
// tryMatviewPreBoundary: triggers on matview-kind rel-stats plus the
// post-data boundary anywhere in the cycle, unconditionally removes the
// boundary's edge to its immediate successor, and marks that successor
// postponed only when it is matview rel-stats.
func tryMatviewStatsPostBoundary(cycle []*dumpobj.Object, ctx *Context) bool {
	if len(cycle) <= 2 {
		return false
	}
	boundaryIdx := -1
	hasMatviewStats := false
	for i, o := range cycle {
		if o.DumpID == ctx.PostBoundaryID {
			boundaryIdx = i
		}
		if rp, ok := o.Payload.(dumpobj.RelStatsPayload); ok && rp.RelKind == dumpobj.RelKindMatview {
			hasMatviewStats = true
		}
	}
	if boundaryIdx == -1 || !hasMatviewStats {
		return false
	}

	boundary := cycle[boundaryIdx]
	succ := cycleSuccessor(cycle, boundaryIdx)
	boundary.RemoveDep(succ.DumpID)

	if rp, ok := succ.Payload.(dumpobj.RelStatsPayload); ok && rp.RelKind == dumpobj.RelKindMatview {
		rp.Postponed = true
		succ.Payload = rp
	}
	return true
}

// --- Pattern 6: function <-> pre-data boundary, length > 2 ---

// tryFunctionPreBoundary triggers on a function or aggregate plus the
// pre-data boundary anywhere in the cycle; the boundary's edge to its
// immediate successor is always removed, and the successor's definition is
// marked postponed only when that successor is itself a function or
// aggregate, matching tryMatviewPreBoundary's trigger/mutation split.
func tryFunctionPreBoundary(cycle []*dumpobj.Object, ctx *Context) bool {
	if len(cycle) <= 2 {
		return false
	}
	boundaryIdx := -1
	hasFunction := false
	for i, o := range cycle {
		if o.DumpID == ctx.PreBoundaryID {
			boundaryIdx = i
		}
		if o.Kind == dumpobj.KindFunction || o.Kind == dumpobj.KindAggregate {
			hasFunction = true
		}
	}
	if boundaryIdx == -1 || !hasFunction {
		return false
	}

	boundary := cycle[boundaryIdx]
	succ := cycleSuccessor(cycle, boundaryIdx)
	boundary.RemoveDep(succ.DumpID)

	if succ.Kind == dumpobj.KindFunction || succ.Kind == dumpobj.KindAggregate {
		if fp, ok := succ.Payload.(dumpobj.FunctionPayload); ok {
			fp.PostponedDef = true
			succ.Payload = fp
		} else {
			succ.Payload = dumpobj.FunctionPayload{PostponedDef: true}
		}
	}
	return true
}

// --- Patterns 7 & 8: table <-> CHECK constraint ---

func checkConstraintOn(o *dumpobj.Object, table *dumpobj.Object) bool {
	cp, ok := o.Payload.(dumpobj.ConstraintPayload)
	return ok && cp.ContType == dumpobj.ConstraintCheck && cp.Table == table
}

func tryTableCheckShort(cycle []*dumpobj.Object, ctx *Context) bool {
	table, cons, ok := pairOfKinds(cycle, dumpobj.KindTable, dumpobj.KindConstraint)
	if !ok || !checkConstraintOn(cons, table) {
		return false
	}
	cons.RemoveDep(table.DumpID)
	return true
}

func tryTableCheckLong(cycle []*dumpobj.Object, ctx *Context) bool {
	if len(cycle) <= 2 {
		return false
	}
	for _, table := range cycle {
		if table.Kind != dumpobj.KindTable {
			continue
		}
		for _, cons := range cycle {
			if cons.Kind != dumpobj.KindConstraint || !checkConstraintOn(cons, table) {
				continue
			}
			table.RemoveDep(cons.DumpID)
			cons.Separate = true
			cons.AddDep(table.DumpID)
			cons.AddDep(ctx.PostBoundaryID)
			return true
		}
	}
	return false
}

// --- Patterns 9 & 10: table <-> attribute default ---

func attrDefOn(o *dumpobj.Object, table *dumpobj.Object) bool {
	ap, ok := o.Payload.(dumpobj.AttrDefPayload)
	return ok && ap.Table == table
}

func tryTableAttrDefShort(cycle []*dumpobj.Object, ctx *Context) bool {
	table, def, ok := pairOfKinds(cycle, dumpobj.KindTable, dumpobj.KindAttrDef)
	if !ok || !attrDefOn(def, table) {
		return false
	}
	def.RemoveDep(table.DumpID)
	return true
}

func tryTableAttrDefLong(cycle []*dumpobj.Object, ctx *Context) bool {
	if len(cycle) <= 2 {
		return false
	}
	for _, table := range cycle {
		if table.Kind != dumpobj.KindTable {
			continue
		}
		for _, def := range cycle {
			if def.Kind != dumpobj.KindAttrDef || !attrDefOn(def, table) {
				continue
			}
			table.RemoveDep(def.DumpID)
			def.Separate = true
			def.AddDep(table.DumpID)
			return true
		}
	}
	return false
}

// --- Pattern 11: partitioned index <-> child index, length 2 ---

func tryPartitionedIndex(cycle []*dumpobj.Object, ctx *Context) bool {
	if len(cycle) != 2 {
		return false
	}
	a, b := cycle[0], cycle[1]
	if a.Kind != dumpobj.KindIndex || b.Kind != dumpobj.KindIndex {
		return false
	}
	ap, aok := a.Payload.(dumpobj.IndexPayload)
	bp, bok := b.Payload.(dumpobj.IndexPayload)
	if !aok || !bok {
		return false
	}
	switch {
	case ap.ParentIndexOID != 0 && ap.ParentIndexOID == b.CatalogID.OID:
		a.RemoveDep(b.DumpID)
		return true
	case bp.ParentIndexOID != 0 && bp.ParentIndexOID == a.CatalogID.OID:
		b.RemoveDep(a.DumpID)
		return true
	default:
		return false
	}
}

// --- Patterns 12 & 13: domain <-> CHECK/NOT NULL constraint ---

func domainConstraintOn(o *dumpobj.Object, domain *dumpobj.Object) bool {
	cp, ok := o.Payload.(dumpobj.ConstraintPayload)
	return ok && (cp.ContType == dumpobj.ConstraintCheck || cp.ContType == dumpobj.ConstraintNotNull) && cp.Domain == domain
}

func tryDomainCheckShort(cycle []*dumpobj.Object, ctx *Context) bool {
	domain, cons, ok := pairOfKinds(cycle, dumpobj.KindType, dumpobj.KindConstraint)
	if !ok || !domainConstraintOn(cons, domain) {
		return false
	}
	cons.RemoveDep(domain.DumpID)
	return true
}

func tryDomainCheckLong(cycle []*dumpobj.Object, ctx *Context) bool {
	if len(cycle) <= 2 {
		return false
	}
	for _, domain := range cycle {
		if domain.Kind != dumpobj.KindType {
			continue
		}
		for _, cons := range cycle {
			if cons.Kind != dumpobj.KindConstraint || !domainConstraintOn(cons, domain) {
				continue
			}
			domain.RemoveDep(cons.DumpID)
			cons.Separate = true
			cons.AddDep(domain.DumpID)
			cons.AddDep(ctx.PostBoundaryID)
			return true
		}
	}
	return false
}

// --- Pattern 14: self-loop on a table ---

func tryTableSelfLoop(cycle []*dumpobj.Object, ctx *Context) bool {
	if len(cycle) != 1 {
		return false
	}
	o := cycle[0]
	if o.Kind != dumpobj.KindTable {
		return false
	}
	o.RemoveDep(o.DumpID)
	return true
}

// --- Pattern 15: circular FK among table-data ---

func tryCircularTableData(cycle []*dumpobj.Object, ctx *Context) bool {
	for _, o := range cycle {
		if o.Kind != dumpobj.KindTableData {
			return false
		}
	}
	names := make([]string, len(cycle))
	for i, o := range cycle {
		names[i] = o.Name
	}
	ctx.warn(fmt.Sprintf(
		"could not determine an order in which to dump the following table-data because of circular foreign keys: %s. "+
			"You might need to disable triggers with --disable-triggers, or use a non-data-only dump.",
		strings.Join(names, ", "),
	))
	cycle[0].RemoveDep(cycle[1%len(cycle)].DumpID)
	return true
}

// --- Pattern 16: no pattern matched ---

func fallbackUnresolvedLoop(cycle []*dumpobj.Object, ctx *Context) {
	descs := make([]string, len(cycle))
	for i, o := range cycle {
		descs[i] = dumpobj.Describe(o)
	}
	ctx.warn(fmt.Sprintf("could not resolve dependency loop among these items: %s", strings.Join(descs, "; ")))
	cycle[0].RemoveDep(cycle[1%len(cycle)].DumpID)
}
