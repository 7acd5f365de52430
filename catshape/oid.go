// Package catshape holds small typed wrappers around raw catalog values
// (OIDs, identifiers) that a real catalog loader would hand to dumpobj,
// kept separate from dumpobj itself so the object model doesn't need to
// import a database driver just to talk about OIDs.
package catshape

import (
	"fmt"
	"strconv"

	"github.com/lib/pq"
)

// OID is a PostgreSQL object identifier, the catalog-level tie-breaker a
// loader threads into dumpobj.CatalogID. It is base-10 text, uint32-backed,
// matching how Postgres's own oid type round-trips through lib/pq so a
// loader built on that driver can hand OIDs to this module without
// conversion.
type OID uint32

// InvalidOID is PostgreSQL's reserved zero OID, used to mean "no value".
const InvalidOID OID = 0

func (o OID) String() string {
	return strconv.FormatUint(uint64(o), 10)
}

// Valid reports whether o is anything other than InvalidOID.
func (o OID) Valid() bool {
	return o != InvalidOID
}

// Uint32 converts o to the raw uint32 dumpobj.CatalogID stores, so a loader
// can populate dumpobj.CatalogID{OID: o.Uint32()} without a bare cast.
func (o OID) Uint32() uint32 {
	return uint32(o)
}

// ParseOID parses the base-10 text form Postgres uses for oid columns.
func ParseOID(s string) (OID, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("catshape: invalid oid %q: %w", s, err)
	}
	return OID(v), nil
}

// QuoteIdentifier quotes name as a SQL identifier, the same way a catalog
// loader backed by lib/pq would when composing diagnostic text.
func QuoteIdentifier(name string) string {
	return pq.QuoteIdentifier(name)
}
