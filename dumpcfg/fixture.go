// Package dumpcfg loads serialized object graphs (YAML fixtures for tests,
// or a CLI's --file argument) into dumpobj.Object graphs, the way
// database.ParseGeneratorConfig loads a YAML config into a
// database.GeneratorConfig.
package dumpcfg

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/sqldef/dumpsort/dumpobj"
)

// FixtureObject is the YAML-serializable form of one dumpobj.Object. Most
// payload fields (function arg types, publication membership) are out of
// scope for a fixture file and left unset; the subset used by the
// cycle-repair pattern catalog (rel_kind, counterpart_of, the rule/
// constraint owner fields, access_method) is exposed directly since the
// repair test fixtures need to construct those payloads.
type FixtureObject struct {
	DumpID    int    `yaml:"dump_id"`
	Kind      string `yaml:"kind"`
	Name      string `yaml:"name"`
	Schema    string `yaml:"schema,omitempty"`
	OID       uint32 `yaml:"oid,omitempty"`
	DependsOn []int  `yaml:"depends_on,omitempty"`

	// RelKind sets dumpobj.TablePayload.RelKind for a table-kind object, or
	// dumpobj.RelStatsPayload.RelKind for a rel_stats-kind object: one of
	// "r" (ordinary table), "v" (view), "m" (matview), "p" (partitioned
	// table).
	RelKind string `yaml:"rel_kind,omitempty"`

	// CounterpartOf names the dump_id of this shell type's completing type,
	// or vice versa, wiring dumpobj.ShellTypePayload.Counterpart both ways.
	CounterpartOf int `yaml:"counterpart_of,omitempty"`

	// The following apply to kind: rule.
	RuleTable    int    `yaml:"rule_table,omitempty"`
	RuleEvType   string `yaml:"rule_ev_type,omitempty"`
	RuleInstead  bool   `yaml:"rule_is_instead,omitempty"`

	// The following apply to kind: constraint / fk_constraint.
	ConstraintType  string `yaml:"constraint_type,omitempty"`
	ConstraintTable int    `yaml:"constraint_table,omitempty"`
	ConstraintDomain int   `yaml:"constraint_domain,omitempty"`

	// AccessMethod names the dump_id of an access_method object, for
	// op_class/op_family fixtures exercising the access-method tiebreaker.
	AccessMethod int `yaml:"access_method,omitempty"`

	// Query is a view or matview's defining SQL text. It is not attached
	// to the built dumpobj.Object (query text is outside the core sort's
	// contract); Queries() exposes it separately for the viewdep
	// cross-check.
	Query string `yaml:"query,omitempty"`
}

// Queries returns the dump_id -> defining-query map for every fixture
// object with non-empty Query text, for callers that want to cross-check
// declared dependency edges against viewdep.ReferencedTables.
func (g FixtureGraph) Queries() map[dumpobj.ID]string {
	out := make(map[dumpobj.ID]string)
	for _, fo := range g.Objects {
		if fo.Query != "" {
			out[dumpobj.ID(fo.DumpID)] = fo.Query
		}
	}
	return out
}

// FixtureGraph is the top-level YAML document shape.
type FixtureGraph struct {
	Objects []FixtureObject `yaml:"objects"`
}

// LoadFixture reads and parses a YAML fixture from path.
func LoadFixture(path string) (FixtureGraph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FixtureGraph{}, fmt.Errorf("dumpcfg: reading fixture %s: %w", path, err)
	}

	var g FixtureGraph
	if err := yaml.Unmarshal(data, &g); err != nil {
		return FixtureGraph{}, fmt.Errorf("dumpcfg: parsing fixture %s: %w", path, err)
	}
	return g, nil
}

// Build converts a FixtureGraph into a slice of dumpobj.Object plus the
// Registry that owns them, resolving each object's Schema field to the
// Object named by that schema (a schema fixture entry is just a
// KindSchema object with a matching Name, the same as any other kind).
func (g FixtureGraph) Build() ([]*dumpobj.Object, *dumpobj.Registry, error) {
	objects := make([]*dumpobj.Object, 0, len(g.Objects))
	byName := make(map[string]*dumpobj.Object, len(g.Objects))

	for _, fo := range g.Objects {
		kind, ok := kindByName[fo.Kind]
		if !ok {
			return nil, nil, fmt.Errorf("dumpcfg: unknown kind %q for dump_id %d (closest known kind: %q)",
				fo.Kind, fo.DumpID, dumpobj.SuggestKind(fo.Kind))
		}
		o := &dumpobj.Object{
			DumpID:    dumpobj.ID(fo.DumpID),
			Kind:      kind,
			Name:      fo.Name,
			CatalogID: dumpobj.CatalogID{OID: fo.OID},
		}
		for _, dep := range fo.DependsOn {
			o.AddDep(dumpobj.ID(dep))
		}
		objects = append(objects, o)
		if fo.Name != "" {
			byName[fo.Name] = o
		}
	}

	byID := make(map[int]*dumpobj.Object, len(objects))
	for i, fo := range g.Objects {
		byID[fo.DumpID] = objects[i]
	}

	for i, fo := range g.Objects {
		if fo.Schema == "" {
			continue
		}
		schemaObj, ok := byName[fo.Schema]
		if !ok {
			return nil, nil, fmt.Errorf("dumpcfg: object %q references unknown schema %q", fo.Name, fo.Schema)
		}
		objects[i].Schema = schemaObj
	}

	for i, fo := range g.Objects {
		if err := applyPayload(objects[i], fo, byID); err != nil {
			return nil, nil, err
		}
	}

	return objects, dumpobj.NewRegistry(objects), nil
}

// applyPayload attaches the kind-specific payload struct described by fo's
// optional fields, resolving dump_id references against byID. Objects with
// no matching optional fields are left with a nil Payload, exactly as
// before this fixture format grew payload support.
func applyPayload(o *dumpobj.Object, fo FixtureObject, byID map[int]*dumpobj.Object) error {
	switch o.Kind {
	case dumpobj.KindTable:
		if fo.RelKind == "" {
			return nil
		}
		if len(fo.RelKind) != 1 {
			return fmt.Errorf("dumpcfg: object %q has invalid rel_kind %q", fo.Name, fo.RelKind)
		}
		o.Payload = dumpobj.TablePayload{RelKind: dumpobj.RelKind(fo.RelKind[0])}

	case dumpobj.KindRelStats:
		if fo.RelKind == "" {
			return nil
		}
		if len(fo.RelKind) != 1 {
			return fmt.Errorf("dumpcfg: object %q has invalid rel_kind %q", fo.Name, fo.RelKind)
		}
		o.Payload = dumpobj.RelStatsPayload{RelKind: dumpobj.RelKind(fo.RelKind[0])}

	case dumpobj.KindShellType, dumpobj.KindType:
		if fo.CounterpartOf == 0 {
			return nil
		}
		counterpart, ok := byID[fo.CounterpartOf]
		if !ok {
			return fmt.Errorf("dumpcfg: object %q references unknown counterpart_of dump_id %d", fo.Name, fo.CounterpartOf)
		}
		o.Payload = dumpobj.ShellTypePayload{Counterpart: counterpart}

	case dumpobj.KindRule:
		if fo.RuleTable == 0 {
			return nil
		}
		table, ok := byID[fo.RuleTable]
		if !ok {
			return fmt.Errorf("dumpcfg: rule %q references unknown rule_table dump_id %d", fo.Name, fo.RuleTable)
		}
		evType := byte('1')
		if fo.RuleEvType != "" {
			evType = fo.RuleEvType[0]
		}
		o.Payload = dumpobj.RulePayload{EvType: evType, IsInstead: fo.RuleInstead, RuleTable: table}

	case dumpobj.KindConstraint, dumpobj.KindFKConstraint:
		if fo.ConstraintType == "" {
			return nil
		}
		if len(fo.ConstraintType) != 1 {
			return fmt.Errorf("dumpcfg: constraint %q has invalid constraint_type %q", fo.Name, fo.ConstraintType)
		}
		cp := dumpobj.ConstraintPayload{ContType: dumpobj.ConstraintType(fo.ConstraintType[0])}
		if fo.ConstraintTable != 0 {
			table, ok := byID[fo.ConstraintTable]
			if !ok {
				return fmt.Errorf("dumpcfg: constraint %q references unknown constraint_table dump_id %d", fo.Name, fo.ConstraintTable)
			}
			cp.Table = table
		}
		if fo.ConstraintDomain != 0 {
			domain, ok := byID[fo.ConstraintDomain]
			if !ok {
				return fmt.Errorf("dumpcfg: constraint %q references unknown constraint_domain dump_id %d", fo.Name, fo.ConstraintDomain)
			}
			cp.Domain = domain
		}
		o.Payload = cp

	case dumpobj.KindOpClass, dumpobj.KindOpFamily:
		if fo.AccessMethod == 0 {
			return nil
		}
		am, ok := byID[fo.AccessMethod]
		if !ok {
			return fmt.Errorf("dumpcfg: object %q references unknown access_method dump_id %d", fo.Name, fo.AccessMethod)
		}
		o.Payload = dumpobj.AccessMethodPayload{AccessMethodOID: am.CatalogID.OID}
	}
	return nil
}

var kindByName = map[string]dumpobj.Kind{
	"schema":                       dumpobj.KindSchema,
	"extension":                    dumpobj.KindExtension,
	"type":                         dumpobj.KindType,
	"shell_type":                   dumpobj.KindShellType,
	"function":                     dumpobj.KindFunction,
	"aggregate":                    dumpobj.KindAggregate,
	"operator":                     dumpobj.KindOperator,
	"access_method":                dumpobj.KindAccessMethod,
	"op_class":                     dumpobj.KindOpClass,
	"op_family":                    dumpobj.KindOpFamily,
	"collation":                    dumpobj.KindCollation,
	"conversion":                   dumpobj.KindConversion,
	"table":                        dumpobj.KindTable,
	"table_attach":                 dumpobj.KindTableAttach,
	"attr_def":                     dumpobj.KindAttrDef,
	"index":                        dumpobj.KindIndex,
	"index_attach":                 dumpobj.KindIndexAttach,
	"stats_ext":                    dumpobj.KindStatsExt,
	"rule":                         dumpobj.KindRule,
	"trigger":                      dumpobj.KindTrigger,
	"constraint":                   dumpobj.KindConstraint,
	"fk_constraint":                dumpobj.KindFKConstraint,
	"proc_lang":                    dumpobj.KindProcLang,
	"cast":                         dumpobj.KindCast,
	"table_data":                   dumpobj.KindTableData,
	"sequence_set":                 dumpobj.KindSequenceSet,
	"dummy_type":                   dumpobj.KindDummyType,
	"ts_parser":                    dumpobj.KindTSParser,
	"ts_dict":                      dumpobj.KindTSDict,
	"ts_template":                  dumpobj.KindTSTemplate,
	"ts_config":                    dumpobj.KindTSConfig,
	"fdw":                          dumpobj.KindFDW,
	"foreign_server":               dumpobj.KindForeignServer,
	"default_acl":                  dumpobj.KindDefaultACL,
	"transform":                    dumpobj.KindTransform,
	"large_object":                 dumpobj.KindLargeObject,
	"large_object_data":            dumpobj.KindLargeObjectData,
	"pre_data_boundary":            dumpobj.KindPreDataBoundary,
	"post_data_boundary":           dumpobj.KindPostDataBoundary,
	"event_trigger":                dumpobj.KindEventTrigger,
	"refresh_matview":              dumpobj.KindRefreshMatview,
	"policy":                       dumpobj.KindPolicy,
	"publication":                  dumpobj.KindPublication,
	"publication_rel":              dumpobj.KindPublicationRel,
	"publication_table_in_schema":  dumpobj.KindPublicationTableInSchema,
	"rel_stats":                    dumpobj.KindRelStats,
	"subscription":                 dumpobj.KindSubscription,
	"subscription_rel":             dumpobj.KindSubscriptionRel,
}
