package toposort

// maxIndexHeap is a max-heap of input-array indices, used to pick the
// highest-input-index candidate whose dependents have all been placed. A
// plain max-heap of integers suffices here since the only ordering that
// matters is the input array position.
// It supports O(N) bulk-build, O(log N) pop-max, and O(log N) push.
type maxIndexHeap struct {
	data []int
}

func newMaxIndexHeap(seed []int) *maxIndexHeap {
	h := &maxIndexHeap{data: append([]int(nil), seed...)}
	// Bulk build: sift-down from the last parent to the root, O(N) total.
	for i := len(h.data)/2 - 1; i >= 0; i-- {
		h.siftDown(i)
	}
	return h
}

func (h *maxIndexHeap) Len() int { return len(h.data) }

func (h *maxIndexHeap) Push(v int) {
	h.data = append(h.data, v)
	h.siftUp(len(h.data) - 1)
}

// PopMax removes and returns the largest index in the heap. It panics if
// the heap is empty; callers must check Len() first.
func (h *maxIndexHeap) PopMax() int {
	top := h.data[0]
	last := len(h.data) - 1
	h.data[0] = h.data[last]
	h.data = h.data[:last]
	if len(h.data) > 0 {
		h.siftDown(0)
	}
	return top
}

func (h *maxIndexHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.data[parent] >= h.data[i] {
			break
		}
		h.data[parent], h.data[i] = h.data[i], h.data[parent]
		i = parent
	}
}

func (h *maxIndexHeap) siftDown(i int) {
	n := len(h.data)
	for {
		left, right := 2*i+1, 2*i+2
		largest := i
		if left < n && h.data[left] > h.data[largest] {
			largest = left
		}
		if right < n && h.data[right] > h.data[largest] {
			largest = right
		}
		if largest == i {
			break
		}
		h.data[largest], h.data[i] = h.data[i], h.data[largest]
		i = largest
	}
}
