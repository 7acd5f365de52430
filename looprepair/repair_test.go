package looprepair

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sqldef/dumpsort/dumpobj"
)

func testContext() *Context {
	return &Context{PreBoundaryID: 1000, PostBoundaryID: 2000}
}

func TestRepairTypeIOFunctionRoundTrip(t *testing.T) {
	shell := &dumpobj.Object{DumpID: 1, Kind: dumpobj.KindShellType, Name: "box"}
	typ := &dumpobj.Object{DumpID: 2, Kind: dumpobj.KindType, Name: "box",
		Payload: dumpobj.ShellTypePayload{Counterpart: shell}}
	fn := &dumpobj.Object{DumpID: 3, Kind: dumpobj.KindFunction, Name: "box_in",
		Dump: dumpobj.DumpDefinition, Deps: []dumpobj.ID{2}}
	typ.AddDep(3)

	cycle := []*dumpobj.Object{typ, fn}
	err := Repair(cycle, testContext())
	assert.NoError(t, err)

	assert.False(t, fn.HasDep(2))
	assert.True(t, fn.HasDep(1))
	assert.True(t, shell.Dump&dumpobj.DumpDefinition != 0)
}

func TestRepairViewRuleShortLoop(t *testing.T) {
	view := &dumpobj.Object{DumpID: 1, Kind: dumpobj.KindTable, Name: "v",
		Payload: dumpobj.TablePayload{RelKind: dumpobj.RelKindView}}
	rule := &dumpobj.Object{DumpID: 2, Kind: dumpobj.KindRule, Name: "_RETURN",
		Payload: dumpobj.RulePayload{EvType: '1', IsInstead: true, RuleTable: view},
		Deps:    []dumpobj.ID{1}}
	view.AddDep(2)

	cycle := []*dumpobj.Object{view, rule}
	err := Repair(cycle, testContext())
	assert.NoError(t, err)
	assert.False(t, rule.HasDep(1))
	assert.True(t, view.HasDep(2))
}

func TestRepairTableCheckConstraintShortLoop(t *testing.T) {
	table := &dumpobj.Object{DumpID: 1, Kind: dumpobj.KindTable, Name: "t"}
	cons := &dumpobj.Object{DumpID: 2, Kind: dumpobj.KindConstraint, Name: "t_check",
		Payload: dumpobj.ConstraintPayload{ContType: dumpobj.ConstraintCheck, Table: table},
		Deps:    []dumpobj.ID{1}}
	table.AddDep(2)

	err := Repair([]*dumpobj.Object{table, cons}, testContext())
	assert.NoError(t, err)
	assert.False(t, cons.HasDep(1))
}

func TestRepairTableAttrDefShortLoop(t *testing.T) {
	table := &dumpobj.Object{DumpID: 1, Kind: dumpobj.KindTable, Name: "t"}
	def := &dumpobj.Object{DumpID: 2, Kind: dumpobj.KindAttrDef,
		Payload: dumpobj.AttrDefPayload{Table: table, AttrNum: 1},
		Deps:    []dumpobj.ID{1}}
	table.AddDep(2)

	err := Repair([]*dumpobj.Object{table, def}, testContext())
	assert.NoError(t, err)
	assert.False(t, def.HasDep(1))
}

func TestRepairDomainCheckShortLoop(t *testing.T) {
	domain := &dumpobj.Object{DumpID: 1, Kind: dumpobj.KindType, Name: "posint"}
	cons := &dumpobj.Object{DumpID: 2, Kind: dumpobj.KindConstraint, Name: "posint_check",
		Payload: dumpobj.ConstraintPayload{ContType: dumpobj.ConstraintCheck, Domain: domain},
		Deps:    []dumpobj.ID{1}}
	domain.AddDep(2)

	err := Repair([]*dumpobj.Object{domain, cons}, testContext())
	assert.NoError(t, err)
	assert.False(t, cons.HasDep(1))
}

func TestRepairPartitionedIndexLoop(t *testing.T) {
	parent := &dumpobj.Object{DumpID: 1, Kind: dumpobj.KindIndex, Name: "p_idx",
		CatalogID: dumpobj.CatalogID{OID: 500}, Payload: dumpobj.IndexPayload{}}
	child := &dumpobj.Object{DumpID: 2, Kind: dumpobj.KindIndex, Name: "c_idx",
		Payload: dumpobj.IndexPayload{ParentIndexOID: 500},
		Deps:    []dumpobj.ID{1}}
	parent.AddDep(2)

	err := Repair([]*dumpobj.Object{parent, child}, testContext())
	assert.NoError(t, err)
	assert.False(t, child.HasDep(1))
}

func TestRepairTableSelfLoop(t *testing.T) {
	table := &dumpobj.Object{DumpID: 1, Kind: dumpobj.KindTable, Name: "t", Deps: []dumpobj.ID{1}}
	err := Repair([]*dumpobj.Object{table}, testContext())
	assert.NoError(t, err)
	assert.False(t, table.HasDep(1))
}

func TestRepairCircularTableDataWarns(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	a := &dumpobj.Object{DumpID: 1, Kind: dumpobj.KindTableData, Name: "a", Deps: []dumpobj.ID{2}}
	b := &dumpobj.Object{DumpID: 2, Kind: dumpobj.KindTableData, Name: "b", Deps: []dumpobj.ID{1}}

	ctx := testContext()
	ctx.Logger = logger
	err := Repair([]*dumpobj.Object{a, b}, ctx)
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "circular foreign keys")
	assert.False(t, a.HasDep(2))
}

func TestRepairFallbackBreaksUnresolvableLoop(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	a := &dumpobj.Object{DumpID: 1, Kind: dumpobj.KindExtension, Name: "a", Deps: []dumpobj.ID{2}}
	b := &dumpobj.Object{DumpID: 2, Kind: dumpobj.KindCollation, Name: "b", Deps: []dumpobj.ID{1}}

	ctx := testContext()
	ctx.Logger = logger
	err := Repair([]*dumpobj.Object{a, b}, ctx)
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "could not resolve dependency loop")
	assert.False(t, a.HasDep(2))
}

func TestRepairMatviewPreBoundaryLoop(t *testing.T) {
	pre := &dumpobj.Object{DumpID: 1000, Kind: dumpobj.KindPreDataBoundary, Deps: []dumpobj.ID{1}}
	mv := &dumpobj.Object{DumpID: 1, Kind: dumpobj.KindTable, Name: "mv",
		Payload: dumpobj.TablePayload{RelKind: dumpobj.RelKindMatview}, Deps: []dumpobj.ID{2}}
	mid := &dumpobj.Object{DumpID: 2, Kind: dumpobj.KindFunction, Name: "f", Deps: []dumpobj.ID{1000}}

	cycle := []*dumpobj.Object{pre, mv, mid}
	err := Repair(cycle, testContext())
	assert.NoError(t, err)
	assert.False(t, pre.HasDep(1))
	tp := mv.Payload.(dumpobj.TablePayload)
	assert.True(t, tp.PostponedDef)
}

// TestRepairMatviewPreBoundaryLoopSuccessorNotMatview exercises the
// decoupled trigger: the matview participates in the cycle but is not the
// boundary's immediate successor. The pattern must still fire (removing the
// boundary's edge to whatever its actual successor is) without marking
// anything postponed, since the successor here is not a matview.
func TestRepairMatviewPreBoundaryLoopSuccessorNotMatview(t *testing.T) {
	pre := &dumpobj.Object{DumpID: 1000, Kind: dumpobj.KindPreDataBoundary, Deps: []dumpobj.ID{1}}
	other := &dumpobj.Object{DumpID: 1, Kind: dumpobj.KindFunction, Name: "f", Deps: []dumpobj.ID{2}}
	mv := &dumpobj.Object{DumpID: 2, Kind: dumpobj.KindTable, Name: "mv",
		Payload: dumpobj.TablePayload{RelKind: dumpobj.RelKindMatview}, Deps: []dumpobj.ID{1000}}

	cycle := []*dumpobj.Object{pre, other, mv}
	err := Repair(cycle, testContext())
	assert.NoError(t, err)
	assert.False(t, pre.HasDep(1))
	tp := mv.Payload.(dumpobj.TablePayload)
	assert.False(t, tp.PostponedDef)
}

func TestRepairMatviewStatsPostBoundaryLoop(t *testing.T) {
	stats := &dumpobj.Object{DumpID: 1, Kind: dumpobj.KindRelStats, Name: "mv_stats",
		Payload: dumpobj.RelStatsPayload{RelKind: dumpobj.RelKindMatview}, Deps: []dumpobj.ID{3}}
	post := &dumpobj.Object{DumpID: 2000, Kind: dumpobj.KindPostDataBoundary, Deps: []dumpobj.ID{1}}
	other := &dumpobj.Object{DumpID: 3, Kind: dumpobj.KindConversion, Name: "c", Deps: []dumpobj.ID{2000}}

	cycle := []*dumpobj.Object{post, stats, other}
	err := Repair(cycle, testContext())
	assert.NoError(t, err)
	assert.False(t, post.HasDep(1))
	rp := stats.Payload.(dumpobj.RelStatsPayload)
	assert.True(t, rp.Postponed)
}

func TestRepairFunctionPreBoundaryLoop(t *testing.T) {
	pre := &dumpobj.Object{DumpID: 1000, Kind: dumpobj.KindPreDataBoundary, Deps: []dumpobj.ID{1}}
	fn := &dumpobj.Object{DumpID: 1, Kind: dumpobj.KindFunction, Name: "f", Deps: []dumpobj.ID{1000}}
	other := &dumpobj.Object{DumpID: 2, Kind: dumpobj.KindConversion, Name: "c"}

	cycle := []*dumpobj.Object{pre, fn, other}
	err := Repair(cycle, testContext())
	assert.NoError(t, err)
	assert.False(t, pre.HasDep(1))
	fp := fn.Payload.(dumpobj.FunctionPayload)
	assert.True(t, fp.PostponedDef)
}
