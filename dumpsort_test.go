package dumpsort

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqldef/dumpsort/dumpobj"
)

func TestSortDependencyAwareLinearChain(t *testing.T) {
	s := &dumpobj.Object{DumpID: 1, Kind: dumpobj.KindSchema, Name: "public"}
	tbl := &dumpobj.Object{DumpID: 2, Kind: dumpobj.KindTable, Name: "t",
		Payload: dumpobj.TablePayload{RelKind: dumpobj.RelKindOrdinaryTable}, Deps: []dumpobj.ID{1}}
	objs := []*dumpobj.Object{s, tbl}
	reg := dumpobj.NewRegistry(objs)

	out, err := SortDependencyAware(objs, reg, 0, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, []dumpobj.ID{1, 2}, idsOf(out))
}

func TestSortDependencyAwareTypeFunctionRoundTrip(t *testing.T) {
	shell := &dumpobj.Object{DumpID: 4, Kind: dumpobj.KindShellType, Name: "box"}
	typ := &dumpobj.Object{DumpID: 5, Kind: dumpobj.KindType, Name: "box",
		Payload: dumpobj.ShellTypePayload{Counterpart: shell}, Deps: []dumpobj.ID{6}}
	fn := &dumpobj.Object{DumpID: 6, Kind: dumpobj.KindFunction, Name: "box_in", Deps: []dumpobj.ID{5}}
	objs := []*dumpobj.Object{typ, shell, fn}
	reg := dumpobj.NewRegistry(objs)

	out, err := SortDependencyAware(objs, reg, 0, 0, nil)
	require.NoError(t, err)
	assert.False(t, fn.HasDep(5))
	assert.True(t, fn.HasDep(4))

	pos := indexOf(out)
	assert.Less(t, pos[4], pos[6])
	assert.Less(t, pos[6], pos[5])
}

func TestSortDependencyAwareMatviewThroughBoundary(t *testing.T) {
	pre := &dumpobj.Object{DumpID: 1, Kind: dumpobj.KindPreDataBoundary, Deps: []dumpobj.ID{2}}
	mv := &dumpobj.Object{DumpID: 2, Kind: dumpobj.KindTable, Name: "mv",
		Payload: dumpobj.TablePayload{RelKind: dumpobj.RelKindMatview}, Deps: []dumpobj.ID{3}}
	ix := &dumpobj.Object{DumpID: 3, Kind: dumpobj.KindIndex, Name: "mv_idx", Deps: []dumpobj.ID{1}}

	objs := []*dumpobj.Object{pre, mv, ix}
	reg := dumpobj.NewRegistry(objs)

	out, err := SortDependencyAware(objs, reg, 1, 0, nil)
	require.NoError(t, err)
	assert.Len(t, out, 3)
	tp := mv.Payload.(dumpobj.TablePayload)
	assert.True(t, tp.PostponedDef)
}

func TestSortDependencyAwareCircularFKWarnsAndConverges(t *testing.T) {
	td1 := &dumpobj.Object{DumpID: 7, Kind: dumpobj.KindTableData, Name: "orders", Deps: []dumpobj.ID{8}}
	td2 := &dumpobj.Object{DumpID: 8, Kind: dumpobj.KindTableData, Name: "customers", Deps: []dumpobj.ID{7}}
	objs := []*dumpobj.Object{td1, td2}
	reg := dumpobj.NewRegistry(objs)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	out, err := SortDependencyAware(objs, reg, 0, 0, logger)
	require.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Contains(t, buf.String(), "circular foreign keys")
}

func TestSortDependencyAwareRejectsInvalidInput(t *testing.T) {
	objs := []*dumpobj.Object{{DumpID: 99}}
	reg := dumpobj.NewRegistry([]*dumpobj.Object{{DumpID: 1}})
	_, err := SortDependencyAware(objs, reg, 0, 0, nil)
	assert.Error(t, err)
}

func TestSortByTypeNamePassthrough(t *testing.T) {
	a := &dumpobj.Object{DumpID: 1, Kind: dumpobj.KindSchema, Name: "b"}
	b := &dumpobj.Object{DumpID: 2, Kind: dumpobj.KindSchema, Name: "a"}
	out := SortByTypeName([]*dumpobj.Object{a, b}, nil, nil)
	assert.Equal(t, []dumpobj.ID{2, 1}, idsOf(out))
}

func idsOf(objs []*dumpobj.Object) []dumpobj.ID {
	out := make([]dumpobj.ID, len(objs))
	for i, o := range objs {
		out[i] = o.DumpID
	}
	return out
}

func indexOf(objs []*dumpobj.Object) map[dumpobj.ID]int {
	m := make(map[dumpobj.ID]int, len(objs))
	for i, o := range objs {
		m[o.DumpID] = i
	}
	return m
}
