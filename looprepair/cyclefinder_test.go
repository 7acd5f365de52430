package looprepair

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sqldef/dumpsort/dumpobj"
)

func TestFindLoopDirectCycle(t *testing.T) {
	a := &dumpobj.Object{DumpID: 1, Deps: []dumpobj.ID{2}}
	b := &dumpobj.Object{DumpID: 2, Deps: []dumpobj.ID{1}}
	reg := dumpobj.NewRegistry([]*dumpobj.Object{a, b})

	cycle, err := FindLoop([]*dumpobj.Object{a, b}, reg)
	assert.NoError(t, err)
	assert.Len(t, cycle, 2)
	assert.ElementsMatch(t, []dumpobj.ID{1, 2}, idsOf(cycle))
}

func TestFindLoopSelfLoop(t *testing.T) {
	a := &dumpobj.Object{DumpID: 1, Deps: []dumpobj.ID{1}}
	reg := dumpobj.NewRegistry([]*dumpobj.Object{a})

	cycle, err := FindLoop([]*dumpobj.Object{a}, reg)
	assert.NoError(t, err)
	assert.Equal(t, []dumpobj.ID{1}, idsOf(cycle))
}

func TestFindLoopPrefersShorterCycleOverLonger(t *testing.T) {
	// 1 -> 2 -> 1 (short cycle) coexists with 1 -> 3 -> 4 -> 1 (longer);
	// the direct-edge short-circuit in search() means the short cycle
	// through 2 is found first since it's checked before recursing into 3.
	a := &dumpobj.Object{DumpID: 1, Deps: []dumpobj.ID{2, 3}}
	b := &dumpobj.Object{DumpID: 2, Deps: []dumpobj.ID{1}}
	c := &dumpobj.Object{DumpID: 3, Deps: []dumpobj.ID{4}}
	d := &dumpobj.Object{DumpID: 4, Deps: []dumpobj.ID{1}}
	reg := dumpobj.NewRegistry([]*dumpobj.Object{a, b, c, d})

	cycle, err := FindLoop([]*dumpobj.Object{a, b, c, d}, reg)
	assert.NoError(t, err)
	assert.Len(t, cycle, 2)
}

func TestFindLoopNoCycleReturnsError(t *testing.T) {
	a := &dumpobj.Object{DumpID: 1}
	b := &dumpobj.Object{DumpID: 2, Deps: []dumpobj.ID{1}}
	reg := dumpobj.NewRegistry([]*dumpobj.Object{a, b})

	_, err := FindLoop([]*dumpobj.Object{a, b}, reg)
	assert.ErrorIs(t, err, ErrNoLoopFound)
}

func TestFindLoopIgnoresEdgesLeavingRemainder(t *testing.T) {
	// b depends on c, which is not part of the failed remainder (it sorted
	// fine); that edge must not be followed into infinite recursion or a
	// false cycle.
	a := &dumpobj.Object{DumpID: 1, Deps: []dumpobj.ID{2}}
	b := &dumpobj.Object{DumpID: 2, Deps: []dumpobj.ID{1, 3}}
	c := &dumpobj.Object{DumpID: 3}
	reg := dumpobj.NewRegistry([]*dumpobj.Object{a, b, c})

	cycle, err := FindLoop([]*dumpobj.Object{a, b}, reg)
	assert.NoError(t, err)
	assert.ElementsMatch(t, []dumpobj.ID{1, 2}, idsOf(cycle))
}

func idsOf(objs []*dumpobj.Object) []dumpobj.ID {
	out := make([]dumpobj.ID, len(objs))
	for i, o := range objs {
		out[i] = o.DumpID
	}
	return out
}
