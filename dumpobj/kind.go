package dumpobj

import (
	"github.com/agnivade/levenshtein"

	"github.com/sqldef/dumpsort/util"
)

// Kind identifies the catalog-level variant a dump Object represents. It is
// the tag half of a tagged-payload sum type: every Kind must have an entry
// in the priority table (priority.go) and a description clause
// (describe.go); the former is statically asserted in init().
type Kind int

const (
	KindSchema Kind = iota
	KindExtension
	KindType
	KindShellType
	KindFunction
	KindAggregate
	KindOperator
	KindAccessMethod
	KindOpClass
	KindOpFamily
	KindCollation
	KindConversion
	KindTable
	KindTableAttach
	KindAttrDef
	KindIndex
	KindIndexAttach
	KindStatsExt
	KindRule
	KindTrigger
	KindConstraint
	KindFKConstraint
	KindProcLang
	KindCast
	KindTableData
	KindSequenceSet
	KindDummyType
	KindTSParser
	KindTSDict
	KindTSTemplate
	KindTSConfig
	KindFDW
	KindForeignServer
	KindDefaultACL
	KindTransform
	KindLargeObject
	KindLargeObjectData
	KindPreDataBoundary
	KindPostDataBoundary
	KindEventTrigger
	KindRefreshMatview
	KindPolicy
	KindPublication
	KindPublicationRel
	KindPublicationTableInSchema
	KindRelStats
	KindSubscription
	KindSubscriptionRel

	kindSentinel // not a real kind; marks the end of the dense range
)

// numKinds is the number of real Kind values, i.e. the length the priority
// and description tables must exactly match: the priority table must carry
// an entry for every object kind.
const numKinds = int(kindSentinel)

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UNKNOWN KIND"
}

var kindNames = map[Kind]string{
	KindSchema:                   "schema",
	KindExtension:                "extension",
	KindType:                     "type",
	KindShellType:                "shell type",
	KindFunction:                 "function",
	KindAggregate:                "aggregate",
	KindOperator:                 "operator",
	KindAccessMethod:             "access method",
	KindOpClass:                  "operator class",
	KindOpFamily:                 "operator family",
	KindCollation:                "collation",
	KindConversion:               "conversion",
	KindTable:                    "table",
	KindTableAttach:              "table attach",
	KindAttrDef:                  "attribute default",
	KindIndex:                    "index",
	KindIndexAttach:              "index attach",
	KindStatsExt:                 "extended statistics",
	KindRule:                     "rule",
	KindTrigger:                  "trigger",
	KindConstraint:               "constraint",
	KindFKConstraint:             "fk constraint",
	KindProcLang:                 "procedural language",
	KindCast:                     "cast",
	KindTableData:                "table data",
	KindSequenceSet:              "sequence set",
	KindDummyType:                "dummy type",
	KindTSParser:                 "text search parser",
	KindTSDict:                   "text search dictionary",
	KindTSTemplate:               "text search template",
	KindTSConfig:                 "text search configuration",
	KindFDW:                      "foreign data wrapper",
	KindForeignServer:            "foreign server",
	KindDefaultACL:               "default acl",
	KindTransform:                "transform",
	KindLargeObject:              "large object",
	KindLargeObjectData:          "large object data",
	KindPreDataBoundary:          "pre-data boundary",
	KindPostDataBoundary:         "post-data boundary",
	KindEventTrigger:             "event trigger",
	KindRefreshMatview:           "refresh matview",
	KindPolicy:                   "policy",
	KindPublication:              "publication",
	KindPublicationRel:           "publication rel",
	KindPublicationTableInSchema: "publication table in schema",
	KindRelStats:                 "relation statistics",
	KindSubscription:             "subscription",
	KindSubscriptionRel:          "subscription rel",
}

// SuggestKind returns the known kind name closest to want by edit distance,
// for fixture input like "kind: tabel" that doesn't match any Kind exactly
// (dumpcfg.Build reports it in its unknown-kind error).
// Returns "" if kindNames is empty.
func SuggestKind(want string) string {
	best := ""
	bestDist := -1
	for _, name := range util.CanonicalMapIter(kindNames) {
		d := levenshtein.ComputeDistance(want, name)
		if bestDist == -1 || d < bestDist {
			bestDist = d
			best = name
		}
	}
	return best
}
