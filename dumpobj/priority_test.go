package dumpobj

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriorityTableCompleteness(t *testing.T) {
	assert.Equal(t, numKinds, len(priorityTable), "priority table must have exactly one entry per Kind")
}

func TestPriorityOfPanicsOnUnknownKind(t *testing.T) {
	assert.Panics(t, func() {
		PriorityOf(Kind(numKinds + 1))
	})
}

func TestCastsSortBeforeFunctions(t *testing.T) {
	assert.Less(t, int(PriorityOf(KindCast)), int(PriorityOf(KindFunction)))
}

func TestEventTriggerAndRefreshMatviewOrdering(t *testing.T) {
	// Event triggers sort next-to-last, refresh-matview sorts last, and
	// both are strictly after every other post-data kind.
	for k, p := range priorityTable {
		if k == KindEventTrigger || k == KindRefreshMatview {
			continue
		}
		if p >= PriorityOf(KindEventTrigger) {
			t.Fatalf("kind %s has priority %d not below event trigger's %d", k, p, PriorityOf(KindEventTrigger))
		}
	}
	assert.Less(t, int(PriorityOf(KindEventTrigger)), int(PriorityOf(KindRefreshMatview)))
}

func TestBoundaryBandsAreContiguous(t *testing.T) {
	pre := PreDataBoundaryPriority()
	post := PostDataBoundaryPriority()
	assert.Less(t, int(pre), int(post))

	for k, p := range priorityTable {
		switch {
		case k == KindTableData, k == KindSequenceSet, k == KindLargeObject, k == KindLargeObjectData, k == KindRelStats:
			assert.Truef(t, p > pre && p < post, "%s should sit strictly between the boundaries, got %d", k, p)
		case k == KindPreDataBoundary || k == KindPostDataBoundary:
			// boundaries themselves
		default:
			assert.Truef(t, p < pre || p > post, "%s at priority %d should be outside the data band", k, p)
		}
	}
}
