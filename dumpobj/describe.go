package dumpobj

import (
	"fmt"

	"github.com/sqldef/dumpsort/catshape"
)

// Describe produces a single-line human description in the style of
// pg_dump_sort.c's describeDumpableObject: the SQL-level kind word, the
// object's name where applicable, its dumpId, and its catalog OID. It is
// used by looprepair's unresolved-loop warning and by the Registry, which
// precomputes one description per object for Registry.Description.
func Describe(o *Object) string {
	word := kindWord(o)
	name := o.Name
	if name == "" {
		switch o.Kind {
		case KindCast:
			if c, ok := o.Payload.(CastPayload); ok {
				name = fmt.Sprintf("%d to %d", c.SourceTypeOID, c.TargetTypeOID)
			}
		case KindPreDataBoundary, KindPostDataBoundary:
			name = ""
		}
	}
	quoted := name
	if name != "" {
		quoted = catshape.QuoteIdentifier(name)
	}
	oid := catshape.OID(o.CatalogID.OID)

	switch {
	case o.Kind == KindPreDataBoundary || o.Kind == KindPostDataBoundary:
		return fmt.Sprintf("%s  (ID %d)", word, o.DumpID)
	case o.SchemaName() != "":
		return fmt.Sprintf("%s %s.%s  (ID %d OID %s)", word, catshape.QuoteIdentifier(o.SchemaName()), quoted, o.DumpID, oid)
	case name != "":
		return fmt.Sprintf("%s %s  (ID %d OID %s)", word, quoted, o.DumpID, oid)
	default:
		return fmt.Sprintf("%s  (ID %d OID %s)", word, o.DumpID, oid)
	}
}

// kindWord returns the SQL-level object kind word, matching
// pg_dump_sort.c's describeDumpableObject switch (e.g. "TABLE", "OPERATOR
// FAMILY", "PRE-DATA BOUNDARY"). Two kinds derive their word from payload
// fields: CAST (source and target type OIDs) and TABLE (the relkind).
func kindWord(o *Object) string {
	switch o.Kind {
	case KindSchema:
		return "SCHEMA"
	case KindExtension:
		return "EXTENSION"
	case KindType:
		return "TYPE"
	case KindShellType:
		return "SHELL TYPE"
	case KindDummyType:
		return "DUMMY TYPE"
	case KindFunction:
		return "FUNCTION"
	case KindAggregate:
		return "AGGREGATE"
	case KindOperator:
		return "OPERATOR"
	case KindAccessMethod:
		return "ACCESS METHOD"
	case KindOpClass:
		return "OPERATOR CLASS"
	case KindOpFamily:
		return "OPERATOR FAMILY"
	case KindCollation:
		return "COLLATION"
	case KindConversion:
		return "CONVERSION"
	case KindTable:
		if p, ok := o.Payload.(TablePayload); ok {
			switch p.RelKind {
			case RelKindView:
				return "VIEW"
			case RelKindMatview:
				return "MATERIALIZED VIEW"
			case RelKindSequence:
				return "SEQUENCE"
			case RelKindForeignTable:
				return "FOREIGN TABLE"
			}
		}
		return "TABLE"
	case KindTableAttach:
		return "TABLE ATTACH"
	case KindAttrDef:
		return "DEFAULT"
	case KindIndex:
		return "INDEX"
	case KindIndexAttach:
		return "INDEX ATTACH"
	case KindStatsExt:
		return "STATISTICS"
	case KindRule:
		return "RULE"
	case KindTrigger:
		return "TRIGGER"
	case KindConstraint:
		return "CONSTRAINT"
	case KindFKConstraint:
		return "FK CONSTRAINT"
	case KindProcLang:
		return "PROCEDURAL LANGUAGE"
	case KindCast:
		if c, ok := o.Payload.(CastPayload); ok {
			return fmt.Sprintf("CAST %d to %d", c.SourceTypeOID, c.TargetTypeOID)
		}
		return "CAST"
	case KindTableData:
		return "TABLE DATA"
	case KindSequenceSet:
		return "SEQUENCE SET"
	case KindTSParser:
		return "TEXT SEARCH PARSER"
	case KindTSDict:
		return "TEXT SEARCH DICTIONARY"
	case KindTSTemplate:
		return "TEXT SEARCH TEMPLATE"
	case KindTSConfig:
		return "TEXT SEARCH CONFIGURATION"
	case KindFDW:
		return "FOREIGN DATA WRAPPER"
	case KindForeignServer:
		return "FOREIGN SERVER"
	case KindDefaultACL:
		return "DEFAULT ACL"
	case KindTransform:
		return "TRANSFORM"
	case KindLargeObject:
		return "LARGE OBJECT"
	case KindLargeObjectData:
		return "LARGE OBJECT DATA"
	case KindPreDataBoundary:
		return "PRE-DATA BOUNDARY"
	case KindPostDataBoundary:
		return "POST-DATA BOUNDARY"
	case KindEventTrigger:
		return "EVENT TRIGGER"
	case KindRefreshMatview:
		return "REFRESH MATERIALIZED VIEW"
	case KindPolicy:
		return "POLICY"
	case KindPublication:
		return "PUBLICATION"
	case KindPublicationRel:
		return "PUBLICATION TABLE"
	case KindPublicationTableInSchema:
		return "PUBLICATION TABLES IN SCHEMA"
	case KindRelStats:
		return "STATISTICS DATA"
	case KindSubscription:
		return "SUBSCRIPTION"
	case KindSubscriptionRel:
		return "SUBSCRIPTION TABLE"
	default:
		return "UNKNOWN OBJECT"
	}
}
