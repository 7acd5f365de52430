package dumpsort

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqldef/dumpsort/dumpcfg"
	"github.com/sqldef/dumpsort/dumpobj"
	"github.com/sqldef/dumpsort/tnsort"
	"github.com/sqldef/dumpsort/viewdep"
)

func loadScenario(t *testing.T, path string) ([]*dumpobj.Object, *dumpobj.Registry) {
	t.Helper()
	g, err := dumpcfg.LoadFixture(path)
	require.NoError(t, err)
	objects, reg, err := g.Build()
	require.NoError(t, err)
	return objects, reg
}

func TestScenarioLinearChain(t *testing.T) {
	objects, reg := loadScenario(t, "testdata/linear_chain.yaml")
	out, err := SortDependencyAware(objects, reg, 0, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, []dumpobj.ID{1, 2}, idsOf(out))
}

func TestScenarioTypeFunctionRoundTrip(t *testing.T) {
	objects, reg := loadScenario(t, "testdata/type_function_round_trip.yaml")
	out, err := SortDependencyAware(objects, reg, 0, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, []dumpobj.ID{4, 6, 5}, idsOf(out))

	fn := reg.FindByDumpID(6)
	assert.False(t, fn.HasDep(5))
	assert.True(t, fn.HasDep(4))
}

func TestScenarioViewRuleDirectLoop(t *testing.T) {
	objects, reg := loadScenario(t, "testdata/view_rule_direct_loop.yaml")
	out, err := SortDependencyAware(objects, reg, 0, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, []dumpobj.ID{11, 10}, idsOf(out))

	rule := reg.FindByDumpID(11)
	assert.False(t, rule.HasDep(10))
}

func TestScenarioMatviewPreBoundary(t *testing.T) {
	objects, reg := loadScenario(t, "testdata/matview_pre_boundary.yaml")
	out, err := SortDependencyAware(objects, reg, 1, 0, nil)
	require.NoError(t, err)
	assert.Len(t, out, 3)

	mv := reg.FindByDumpID(2)
	tp := mv.Payload.(dumpobj.TablePayload)
	assert.True(t, tp.PostponedDef)
}

func TestScenarioCircularFKTableData(t *testing.T) {
	objects, reg := loadScenario(t, "testdata/circular_fk_table_data.yaml")
	out, err := SortDependencyAware(objects, reg, 0, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, []dumpobj.ID{8, 7}, idsOf(out))
}

func TestScenarioViewQueryDependencyMismatch(t *testing.T) {
	g, err := dumpcfg.LoadFixture("testdata/view_with_query.yaml")
	require.NoError(t, err)
	_, reg, err := g.Build()
	require.NoError(t, err)

	queries := g.Queries()
	require.Len(t, queries, 1)

	view := reg.FindByDumpID(4)
	require.NotNil(t, view)
	declared := make([]string, 0, len(view.Deps))
	for _, dep := range view.Deps {
		declared = append(declared, reg.FindByDumpID(dep).Name)
	}

	ok, missing, err := viewdep.Consistent(queries[4], declared)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{"orders"}, missing)
}

func TestScenarioOpclassAccessMethodTiebreak(t *testing.T) {
	objects, reg := loadScenario(t, "testdata/opclass_access_method_tiebreak.yaml")
	out := tnsort.SortByTypeName(objects, reg, nil)
	pos := indexOf(out)
	assert.Less(t, pos[4], pos[3], "btree op_class (id 4) should sort before hash op_class (id 3)")
}
