package util

import (
	"cmp"
	"iter"
	"slices"

	"golang.org/x/sync/errgroup"
)

// TransformSlice applies the converter to each element in the input slice and returns a new slice.
func TransformSlice[T any, R any](in []T, converter func(T) R) []R {
	out := make([]R, len(in))
	for i, v := range in {
		out[i] = converter(v)
	}
	return out
}

// CanonicalMapIter returns an iterator that yields map entries in sorted key order.
// This ensures deterministic iteration over maps, which is useful for generating
// consistent output (e.g. a registry dump, or a diagnostic listing) regardless of
// Go's random map iteration order.
func CanonicalMapIter[K cmp.Ordered, T any](m map[K]T) iter.Seq2[K, T] {
	return func(yield func(K, T) bool) {
		keys := make([]K, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		for _, k := range keys {
			if !yield(k, m[k]) {
				return
			}
		}
	}
}

type concurrentOutputWithOrdering struct {
	order  int
	output any
}

// ConcurrentMapFuncWithError applies f to every input concurrently, bounded
// by concurrency (0 disables concurrency, negative means unlimited), and
// returns the outputs in the original input order. If f fails, every call
// still runs to completion and the first error is returned.
func ConcurrentMapFuncWithError[Tin any, Tout any](inputs []Tin, concurrency int, f func(Tin) (Tout, error)) ([]Tout, error) {
	eg := errgroup.Group{}
	switch {
	case concurrency == 0:
		eg.SetLimit(1)
	case concurrency > 0:
		eg.SetLimit(concurrency)
	}

	ch := make(chan concurrentOutputWithOrdering, len(inputs))

	for i := range inputs {
		order := i
		in := inputs[i]
		eg.Go(func() error {
			out, err := f(in)
			if err != nil {
				return err
			}
			ch <- concurrentOutputWithOrdering{order, out}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	close(ch)

	tmp := make([]concurrentOutputWithOrdering, 0, len(inputs))
	for t := range ch {
		tmp = append(tmp, t)
	}
	slices.SortFunc(tmp, func(a, b concurrentOutputWithOrdering) int {
		return cmp.Compare(a.order, b.order)
	})

	return TransformSlice(tmp, func(t concurrentOutputWithOrdering) Tout {
		return t.output.(Tout)
	}), nil
}
