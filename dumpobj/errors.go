package dumpobj

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is the sentinel compared against with errors.Is. Concrete
// failures are reported as *InvalidInputError, which wraps this sentinel.
var ErrInvalidInput = errors.New("invalid dump object input")

// InvalidInputError reports a structural problem with a sort's input: an
// out-of-range dumpId or an out-of-range edge target. These are always
// fatal — the sort does not attempt to proceed past them. A missing
// priority-table entry is not reported this way; see ErrMissingPriority.
type InvalidInputError struct {
	DumpID ID
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input at dumpId %d: %s", e.DumpID, e.Reason)
}

func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

// ErrMissingPriority is wrapped by the error the priority table's
// completeness check (init) and PriorityOf panic with when a Kind has no
// entry. Finding this at runtime indicates the priority
// table was not updated when a Kind was added. Go lacks compile-time
// exhaustiveness checks over int-backed enums, so this module asserts
// completeness once in init() instead.
var ErrMissingPriority = errors.New("priority table missing an entry for a kind")
