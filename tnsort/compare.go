// Package tnsort implements the type/name comparator: a total order over
// dump Objects reflecting the desired emission order before dependency
// constraints are applied.
package tnsort

import (
	"bytes"
	"log/slog"
	"sort"

	"github.com/sqldef/dumpsort/dumpobj"
)

// Comparator evaluates the full ordering. It holds the registry needed for
// the recursive (type, access-method) natural-key lookups and, optionally,
// a logger used only to note when a comparison falls through to an
// inconclusive path — production behavior never changes because of this,
// it is purely observability.
type Comparator struct {
	Registry *dumpobj.Registry
	Logger   *slog.Logger
}

// NewComparator builds a Comparator. logger may be nil, in which case
// debug-level tie-break logging is skipped entirely.
func NewComparator(reg *dumpobj.Registry, logger *slog.Logger) *Comparator {
	return &Comparator{Registry: reg, Logger: logger}
}

// Compare returns <0, 0, or >0 per the usual comparator contract, ordering
// a before b when negative. It never panics: a failed recursive lookup is
// treated as an inconclusive column and comparison proceeds to the next
// key.
func (c *Comparator) Compare(a, b *dumpobj.Object) int {
	if a == b {
		return 0
	}

	if d := cmpInt(int(dumpobj.PriorityOf(a.Kind)), int(dumpobj.PriorityOf(b.Kind))); d != 0 {
		return d
	}

	if d := c.compareSchemaName(a, b); d != 0 {
		return d
	}

	if d := bytes.Compare([]byte(a.Name), []byte(b.Name)); d != 0 {
		return d
	}

	if d := cmpInt(int(a.Kind), int(b.Kind)); d != 0 {
		return d
	}

	if d := c.compareNaturalKeyTail(a, b); d != 0 {
		return d
	}

	if d := cmpUint32(a.CatalogID.OID, b.CatalogID.OID); d != 0 {
		return d
	}
	if d := cmpUint32(a.CatalogID.TableOID, b.CatalogID.TableOID); d != 0 {
		return d
	}

	// Reached the final fallback with every key tied: catalog corruption.
	// Production behavior is to return a stable "equal" rather than
	// assert, but note it for anyone watching debug logs.
	c.debugf("tnsort: objects %d and %d compare equal through catalog OID", a.DumpID, b.DumpID)
	return 0
}

// compareSchemaName orders by schema name ascending, with NULL (no-schema)
// objects sorting after any object that does have a schema.
func (c *Comparator) compareSchemaName(a, b *dumpobj.Object) int {
	as, bs := a.Schema, b.Schema
	switch {
	case as == nil && bs == nil:
		return 0
	case as == nil:
		return 1
	case bs == nil:
		return -1
	default:
		return bytes.Compare([]byte(as.Name), []byte(bs.Name))
	}
}

// compareNaturalKeyTail dispatches the kind-specific additional keys that
// apply once priority, schema, name, and kind have all tied. Kinds without
// a listed tail compare equal here and fall through to the OID fallback.
func (c *Comparator) compareNaturalKeyTail(a, b *dumpobj.Object) int {
	if a.Kind != b.Kind {
		// These tails are defined per matching-kind pairs; for a tie
		// broken only by differing kinds there's nothing further to add.
		return 0
	}

	switch a.Kind {
	case dumpobj.KindFunction, dumpobj.KindAggregate:
		return c.compareFunctionTail(a, b)
	case dumpobj.KindOperator:
		return c.compareOperatorTail(a, b)
	case dumpobj.KindOpClass, dumpobj.KindOpFamily:
		return c.compareAccessMethodTail(a, b)
	case dumpobj.KindCollation:
		return c.compareCollationTail(a, b)
	case dumpobj.KindAttrDef:
		return c.compareAttrDefTail(a, b)
	case dumpobj.KindPolicy, dumpobj.KindRule, dumpobj.KindTrigger:
		return c.compareOwningTableNameTail(a, b)
	case dumpobj.KindPublicationRel, dumpobj.KindPublicationTableInSchema:
		return c.comparePublicationNameTail(a, b)
	case dumpobj.KindConstraint, dumpobj.KindFKConstraint:
		return c.compareConstraintTail(a, b)
	default:
		return 0
	}
}

func (c *Comparator) compareFunctionTail(a, b *dumpobj.Object) int {
	ap, aok := a.Payload.(dumpobj.FunctionPayload)
	bp, bok := b.Payload.(dumpobj.FunctionPayload)
	if !aok || !bok {
		return 0
	}
	if d := cmpInt(ap.Arity, bp.Arity); d != 0 {
		return d
	}
	n := ap.Arity
	if len(ap.ArgTypes) < n {
		n = len(ap.ArgTypes)
	}
	if len(bp.ArgTypes) < n {
		n = len(bp.ArgTypes)
	}
	for i := 0; i < n; i++ {
		if d := c.compareTypeOIDs(ap.ArgTypes[i], bp.ArgTypes[i]); d != 0 {
			return d
		}
	}
	return 0
}

func (c *Comparator) compareOperatorTail(a, b *dumpobj.Object) int {
	ap, aok := a.Payload.(dumpobj.OperatorPayload)
	bp, bok := b.Payload.(dumpobj.OperatorPayload)
	if !aok || !bok {
		return 0
	}
	// "Reversed oprkind" so that 'l' (prefix) sorts before 'r' (postfix)
	// before 'b' (infix) — ASCII order of l/r/b does not already give us
	// this, so compare against an explicit rank.
	if d := cmpInt(oprKindRank(ap.OprKind), oprKindRank(bp.OprKind)); d != 0 {
		return d
	}
	if d := c.compareTypeOIDs(ap.LeftType, bp.LeftType); d != 0 {
		return d
	}
	return c.compareTypeOIDs(ap.RightType, bp.RightType)
}

func oprKindRank(k dumpobj.OprKind) int {
	switch k {
	case dumpobj.OprKindLeft:
		return 0
	case dumpobj.OprKindRight:
		return 1
	default:
		return 2
	}
}

func (c *Comparator) compareAccessMethodTail(a, b *dumpobj.Object) int {
	ap, aok := a.Payload.(dumpobj.AccessMethodPayload)
	bp, bok := b.Payload.(dumpobj.AccessMethodPayload)
	if !aok || !bok || c.Registry == nil {
		return 0
	}
	am1 := c.Registry.FindAccessMethodByOID(ap.AccessMethodOID)
	am2 := c.Registry.FindAccessMethodByOID(bp.AccessMethodOID)
	if am1 == nil || am2 == nil {
		c.debugf("tnsort: access method lookup failed comparing %d and %d", a.DumpID, b.DumpID)
		return 0
	}
	return bytes.Compare([]byte(am1.Name), []byte(am2.Name))
}

func (c *Comparator) compareCollationTail(a, b *dumpobj.Object) int {
	ap, aok := a.Payload.(dumpobj.CollationPayload)
	bp, bok := b.Payload.(dumpobj.CollationPayload)
	if !aok || !bok {
		return 0
	}
	return cmpInt(ap.Encoding, bp.Encoding)
}

func (c *Comparator) compareAttrDefTail(a, b *dumpobj.Object) int {
	ap, aok := a.Payload.(dumpobj.AttrDefPayload)
	bp, bok := b.Payload.(dumpobj.AttrDefPayload)
	if !aok || !bok {
		return 0
	}
	return cmpInt(ap.AttrNum, bp.AttrNum)
}

func (c *Comparator) compareOwningTableNameTail(a, b *dumpobj.Object) int {
	at := owningTable(a)
	bt := owningTable(b)
	if at == nil || bt == nil {
		return 0
	}
	return bytes.Compare([]byte(at.Name), []byte(bt.Name))
}

func owningTable(o *dumpobj.Object) *dumpobj.Object {
	switch p := o.Payload.(type) {
	case dumpobj.PolicyPayload:
		return p.Table
	case dumpobj.RulePayload:
		return p.RuleTable
	case dumpobj.TriggerPayload:
		return p.Table
	}
	return nil
}

func (c *Comparator) comparePublicationNameTail(a, b *dumpobj.Object) int {
	ap, aok := a.Payload.(dumpobj.PublicationRelPayload)
	bp, bok := b.Payload.(dumpobj.PublicationRelPayload)
	if !aok || !bok || ap.Publication == nil || bp.Publication == nil {
		return 0
	}
	return bytes.Compare([]byte(ap.Publication.Name), []byte(bp.Publication.Name))
}

// compareConstraintTail sorts domain-carrying constraints before
// table-carrying constraints (mirroring CREATE DOMAIN < CREATE TABLE),
// then by the owning object's name.
func (c *Comparator) compareConstraintTail(a, b *dumpobj.Object) int {
	ap, aok := a.Payload.(dumpobj.ConstraintPayload)
	bp, bok := b.Payload.(dumpobj.ConstraintPayload)
	if !aok || !bok {
		return 0
	}
	aIsDomain := ap.Domain != nil
	bIsDomain := bp.Domain != nil
	if aIsDomain != bIsDomain {
		if aIsDomain {
			return -1
		}
		return 1
	}
	var aOwner, bOwner *dumpobj.Object
	if aIsDomain {
		aOwner, bOwner = ap.Domain, bp.Domain
	} else {
		aOwner, bOwner = ap.Table, bp.Table
	}
	if aOwner == nil || bOwner == nil {
		return 0
	}
	return bytes.Compare([]byte(aOwner.Name), []byte(bOwner.Name))
}

// compareTypeOIDs implements the recursive "(type-schema, type-name)"
// comparator used by the function/aggregate and operator tails. A failed
// lookup on either side is an inconclusive column: the comparator must not
// crash and must defer to the next key, realized here as returning 0.
func (c *Comparator) compareTypeOIDs(a, b uint32) int {
	if a == b {
		return 0
	}
	if c.Registry == nil {
		return 0
	}
	ta := c.Registry.FindTypeByOID(a)
	tb := c.Registry.FindTypeByOID(b)
	if ta == nil || tb == nil {
		c.debugf("tnsort: type lookup failed comparing oid %d and %d", a, b)
		return 0
	}
	if d := bytes.Compare([]byte(ta.SchemaName()), []byte(tb.SchemaName())); d != 0 {
		return d
	}
	return bytes.Compare([]byte(ta.Name), []byte(tb.Name))
}

func (c *Comparator) debugf(format string, args ...any) {
	if c.Logger != nil {
		c.Logger.Debug(format, slog.Any("args", args))
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpUint32(a, b uint32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// SortByTypeName is the top-level type/name pre-sort entry point: a stable
// sort by the comparator above, consulting no dependency graph at all.
func SortByTypeName(objects []*dumpobj.Object, reg *dumpobj.Registry, logger *slog.Logger) []*dumpobj.Object {
	out := make([]*dumpobj.Object, len(objects))
	copy(out, objects)
	cmp := NewComparator(reg, logger)
	sort.SliceStable(out, func(i, j int) bool {
		return cmp.Compare(out[i], out[j]) < 0
	})
	return out
}
