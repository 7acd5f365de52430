package dumpobj

// Priority is a coarse emission-order band, ascending. Every Kind has
// exactly one Priority, assigned densely so that the pre-data, data, and
// post-data sections are each a contiguous run separated by the two
// boundary kinds. Priorities must exactly mirror the section assignment an
// emitter would use; this module does not generate SQL, so there is
// nothing downstream to drift out of sync with, but the ordering below
// mirrors pg_dump's DumpableObjectType priority table.
type Priority int

// priorityTable is the static kind -> priority mapping. Within the
// pre-data band, casts are deliberately placed before
// functions: the topological sort hoists functions required by casts
// above them (and in turn hoists views depending on those functions),
// while leaving views that don't depend through a cast in their natural
// late position. Event triggers sort next-to-last and refresh-matview
// sorts last, in both cases because neither must fire against mid-restore
// state.
var priorityTable = map[Kind]Priority{
	// --- pre-data ---
	KindSchema:        1,
	KindProcLang:      2,
	KindCollation:     3,
	KindTransform:     4,
	KindExtension:     5,
	KindType:          6,
	KindShellType:     6,
	KindDummyType:     6,
	KindCast:          7,
	KindFunction:      8,
	KindAggregate:     8,
	KindAccessMethod:  9,
	KindOperator:      10,
	KindOpFamily:      11,
	KindOpClass:       11,
	KindConversion:    12,
	KindTSParser:      13,
	KindTSTemplate:    14,
	KindTSDict:        15,
	KindTSConfig:      16,
	KindFDW:           17,
	KindForeignServer: 18,
	KindTable:         19,
	KindTableAttach:   19,
	KindAttrDef:       20,

	KindPreDataBoundary: 21,

	// --- data ---
	KindTableData:       22,
	KindSequenceSet:     22,
	KindLargeObject:     22,
	KindLargeObjectData: 22,
	KindRelStats:        22,

	KindPostDataBoundary: 23,

	// --- post-data ---
	KindConstraint:               24,
	KindFKConstraint:             24,
	KindIndex:                    25,
	KindIndexAttach:              25,
	KindStatsExt:                 26,
	KindRule:                     27,
	KindTrigger:                  28,
	KindPolicy:                   29,
	KindPublication:              30,
	KindPublicationRel:           31,
	KindPublicationTableInSchema: 31,
	KindSubscription:             32,
	KindSubscriptionRel:          33,
	KindDefaultACL:               34,
	KindEventTrigger:             35,
	KindRefreshMatview:           36,
}

func init() {
	if len(priorityTable) != numKinds {
		missing := make([]Kind, 0)
		for k := Kind(0); k < Kind(numKinds); k++ {
			if _, ok := priorityTable[k]; !ok {
				missing = append(missing, k)
			}
		}
		panic(&missingPriorityError{missing: missing})
	}
}

type missingPriorityError struct {
	missing []Kind
}

func (e *missingPriorityError) Error() string {
	s := "priority table missing entries for:"
	for _, k := range e.missing {
		s += " " + k.String()
	}
	return s
}

func (e *missingPriorityError) Unwrap() error {
	return ErrMissingPriority
}

// PriorityOf returns the priority band for kind. It panics if kind has no
// entry — this should be unreachable given the init() completeness check,
// which runs once at program startup and covers every Kind value in the
// dense [0, numKinds) range.
func PriorityOf(kind Kind) Priority {
	p, ok := priorityTable[kind]
	if !ok {
		panic(&missingPriorityError{missing: []Kind{kind}})
	}
	return p
}

// PreDataBoundaryPriority and PostDataBoundaryPriority are exposed so
// callers outside this package (the repair dispatcher, tests) can compare
// against the boundary bands without hardcoding the numbers.
func PreDataBoundaryPriority() Priority  { return priorityTable[KindPreDataBoundary] }
func PostDataBoundaryPriority() Priority { return priorityTable[KindPostDataBoundary] }
