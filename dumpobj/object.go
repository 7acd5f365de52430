// Package dumpobj defines the Object model: a dense-id, typed-variant
// representation of every unit a dump tool might emit, plus the registry
// and edge-mutation primitives the sort and repair passes operate on.
package dumpobj

// ID is a dump object's dense integer identifier. IDs form the interval
// [1, MaxID] within a single registry; 0 is never a valid ID.
type ID int

// CatalogID is the last-resort comparator tie-breaker: the catalog row a
// dump object was loaded from.
type CatalogID struct {
	OID      uint32
	TableOID uint32
}

// DumpComponent names one of the pieces of an object that may or may not be
// emitted (definition, data, ACL, comments, security labels).
type DumpComponent int

const (
	DumpNone DumpComponent = 0

	DumpDefinition DumpComponent = 1 << iota
	DumpData
	DumpACL
	DumpComment
	DumpSecLabel
)

// Payload carries a kind-specific tail of fields the comparator and repair
// dispatcher need but that don't belong on every Object (argument types,
// owning table backreferences, and the like). Every concrete payload type
// implements it as a marker; the comparator and repair dispatcher recover
// the concrete type with a type switch on Object.Payload.
type Payload interface {
	isDumpObjPayload()
}

// Object is a single unit a dump run may emit. It is mutated only by this
// module (edge additions/removals and the separate/dummy-view/postponed
// flag toggles loop repair applies) and never destroyed once constructed
// by the loader.
type Object struct {
	DumpID ID
	Kind   Kind
	Name   string

	// Schema is the owning schema's Object, or nil for schema-less objects
	// (e.g. the schema objects themselves, or the boundary pseudo-objects).
	// Never forms an ownership cycle.
	Schema *Object

	CatalogID CatalogID

	// Deps holds outgoing dependency edges: Deps[i] means "this object must
	// be emitted after the object with DumpID Deps[i]". Edges may target
	// IDs that are not present in a given sort's input array (they are then
	// silently ignored) but must lie in [1, MaxID] of the owning registry.
	Deps []ID

	Dump DumpComponent

	// Separate marks an object (typically a rule, constraint, or attrdef)
	// that has been split out of its owning object's definition to be
	// emitted on its own, set by several of the loop-repair patterns. It
	// is a single flag at the Object level rather than duplicated per-kind,
	// since the same "emit separately" concept applies uniformly across
	// rule, constraint, and attrdef kinds.
	Separate bool

	Payload Payload
}

// SchemaName returns the owning schema's name, or "" if the object has no
// schema. Used by the comparator's schema-name ordering key and by Describe.
func (o *Object) SchemaName() string {
	if o.Schema == nil {
		return ""
	}
	return o.Schema.Name
}

// AddDep appends an outgoing dependency edge if it is not already present.
func (o *Object) AddDep(target ID) {
	for _, d := range o.Deps {
		if d == target {
			return
		}
	}
	o.Deps = append(o.Deps, target)
}

// RemoveDep removes an outgoing dependency edge, if present. It is a no-op
// if the edge does not exist (repair rules sometimes attempt to remove an
// edge speculatively).
func (o *Object) RemoveDep(target ID) {
	for i, d := range o.Deps {
		if d == target {
			o.Deps = append(o.Deps[:i], o.Deps[i+1:]...)
			return
		}
	}
}

// HasDep reports whether o has an outgoing edge to target.
func (o *Object) HasDep(target ID) bool {
	for _, d := range o.Deps {
		if d == target {
			return true
		}
	}
	return false
}

// --- Kind-specific payloads ---

// FunctionPayload is carried by KindFunction and KindAggregate objects.
type FunctionPayload struct {
	Arity    int
	ArgTypes []uint32 // OIDs, looked up via Registry.FindTypeByOID for the comparator's recursive key

	// PostponedDef marks that the function's definition must be emitted in
	// the post-data section, set when loop repair severs its edge to the
	// pre-data boundary.
	PostponedDef bool
}

func (FunctionPayload) isDumpObjPayload() {}

// OprKind mirrors PostgreSQL's pg_operator.oprkind: left-unary, right-unary
// (postfix), or binary/infix.
type OprKind byte

const (
	OprKindLeft   OprKind = 'l'
	OprKindRight  OprKind = 'r'
	OprKindBinary OprKind = 'b'
)

// OperatorPayload is carried by KindOperator objects.
type OperatorPayload struct {
	OprKind   OprKind
	LeftType  uint32
	RightType uint32
}

func (OperatorPayload) isDumpObjPayload() {}

// AccessMethodPayload is carried by KindOpClass and KindOpFamily objects.
type AccessMethodPayload struct {
	AccessMethodOID uint32
}

func (AccessMethodPayload) isDumpObjPayload() {}

// CollationPayload is carried by KindCollation objects.
type CollationPayload struct {
	Encoding int
}

func (CollationPayload) isDumpObjPayload() {}

// RulePayload is carried by KindRule objects.
type RulePayload struct {
	EvType    byte // '1' = ON SELECT
	IsInstead bool
	RuleTable *Object // the table/view the rule is defined on
}

func (RulePayload) isDumpObjPayload() {}

// TriggerPayload is carried by KindTrigger objects.
type TriggerPayload struct {
	Table *Object
}

func (TriggerPayload) isDumpObjPayload() {}

// PolicyPayload is carried by KindPolicy objects.
type PolicyPayload struct {
	Table *Object
}

func (PolicyPayload) isDumpObjPayload() {}

// ConstraintType mirrors pg_constraint.contype.
type ConstraintType byte

const (
	ConstraintCheck      ConstraintType = 'c'
	ConstraintNotNull    ConstraintType = 'n'
	ConstraintForeignKey ConstraintType = 'f'
	ConstraintPrimaryKey ConstraintType = 'p'
	ConstraintUnique     ConstraintType = 'u'
	ConstraintExclusion  ConstraintType = 'x'
	ConstraintTrigger    ConstraintType = 't'
)

// ConstraintPayload is carried by KindConstraint and KindFKConstraint
// objects. Exactly one of Table or Domain is set.
type ConstraintPayload struct {
	ContType ConstraintType
	Table    *Object
	Domain   *Object
}

func (ConstraintPayload) isDumpObjPayload() {}

// RelKind mirrors pg_class.relkind.
type RelKind byte

const (
	RelKindOrdinaryTable RelKind = 'r'
	RelKindView          RelKind = 'v'
	RelKindMatview       RelKind = 'm'
	RelKindIndex         RelKind = 'i'
	RelKindSequence      RelKind = 'S'
	RelKindForeignTable  RelKind = 'f'
	RelKindPartitioned   RelKind = 'p'
)

// TablePayload is carried by KindTable objects: tables, views, and
// matviews are all represented uniformly at the dump-object level,
// distinguished by RelKind.
type TablePayload struct {
	RelKind      RelKind
	DummyView    bool
	PostponedDef bool
}

func (TablePayload) isDumpObjPayload() {}

// AttrDefPayload is carried by KindAttrDef objects.
type AttrDefPayload struct {
	Table   *Object
	AttrNum int
}

func (AttrDefPayload) isDumpObjPayload() {}

// IndexPayload is carried by KindIndex objects.
type IndexPayload struct {
	ParentIndexOID uint32
}

func (IndexPayload) isDumpObjPayload() {}

// RelStatsPayload is carried by KindRelStats objects: the relation
// statistics data attached to a relation, which follow the same matview/
// post-data-boundary repair shape as the matview itself.
type RelStatsPayload struct {
	RelKind RelKind

	// Postponed marks that the stats section must be emitted in the
	// post-data section, set when loop repair severs its edge from the
	// post-data boundary.
	Postponed bool
}

func (RelStatsPayload) isDumpObjPayload() {}

// ShellTypePayload is carried by KindShellType and KindType objects that
// participate in a shell-type/completing-type pair: a shell type always
// carries a back-reference to its completing type, and vice versa.
type ShellTypePayload struct {
	// Counterpart is the shell type's completing type, or the completing
	// type's shell, depending on which side this payload is attached to.
	Counterpart *Object
}

func (ShellTypePayload) isDumpObjPayload() {}

// PublicationRelPayload is carried by KindPublicationRel and
// KindPublicationTableInSchema objects.
type PublicationRelPayload struct {
	Publication *Object
}

func (PublicationRelPayload) isDumpObjPayload() {}

// CastPayload is carried by KindCast objects, used only by Describe.
type CastPayload struct {
	SourceTypeOID uint32
	TargetTypeOID uint32
}

func (CastPayload) isDumpObjPayload() {}
