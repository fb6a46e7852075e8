// Package heap implements a fixed-capacity binary heap on top of an
// array.Array.
//
// Ordering is entirely caller-defined: Compare(parent, child) reports whether
// parent may sit above child. MaxOf gives a max-heap, MinOf a min-heap.
// After every successful mutating call, Compare(i, 2i+1) and Compare(i, 2i+2)
// hold for every existing child.
//
// A Compare or Swap error aborts the sift in progress and is returned wrapped.
// The heap may then violate its order and should be discarded.
package heap

import (
	"cmp"

	"github.com/wippyai/fixedkit/array"
	"github.com/wippyai/fixedkit/errors"
	"github.com/wippyai/fixedkit/hook"
)

var (
	ErrFull  = errors.Sentinel(errors.PhaseHeap, errors.KindInvalidSize)
	ErrEmpty = errors.Sentinel(errors.PhaseHeap, errors.KindNotFound)
)

// CompareFunc reports whether parent may be the parent of child.
type CompareFunc[T any] func(parent, child *T) (bool, error)

// SwapFunc exchanges two elements in place.
type SwapFunc[T any] func(a, b *T) error

// MaxOf orders a max-heap: parent >= child.
func MaxOf[T cmp.Ordered]() CompareFunc[T] {
	return func(parent, child *T) (bool, error) { return *parent >= *child, nil }
}

// MinOf orders a min-heap: parent <= child.
func MinOf[T cmp.Ordered]() CompareFunc[T] {
	return func(parent, child *T) (bool, error) { return *parent <= *child, nil }
}

// By builds a CompareFunc from a key comparison; higher priority rises.
func By[T any](higher func(a, b *T) bool) CompareFunc[T] {
	return func(parent, child *T) (bool, error) { return !higher(child, parent), nil }
}

// SwapValues is the default SwapFunc.
func SwapValues[T any](a, b *T) error {
	*a, *b = *b, *a
	return nil
}

// Config holds the heap operations. Compare is required; Swap defaults to
// SwapValues. Length declares how many leading array slots already hold
// elements (call Heapify before use when they are unordered).
type Config[T any] struct {
	Compare     CompareFunc[T]
	Swap        SwapFunc[T]
	Hook        hook.Func
	HookContext any
	Name        string
	Length      int
}

// Heap is a binary heap. Not safe for concurrent use.
type Heap[T any] struct {
	arr     array.Array[T]
	compare CompareFunc[T]
	swap    SwapFunc[T]
	rep     hook.Reporter
	length  int
}

// New creates a heap over arr.
func New[T any](arr array.Array[T], cfg Config[T]) (*Heap[T], error) {
	rep := hook.NewReporter(cfg.Hook, cfg.HookContext, cfg.Name)
	if arr == nil {
		return nil, rep.Fail(errors.NilPointer(errors.PhaseHeap, "array"))
	}
	if cfg.Compare == nil {
		return nil, rep.Fail(errors.NilPointer(errors.PhaseHeap, "compare function"))
	}
	if cfg.Length < 0 || cfg.Length > arr.Cap() {
		return nil, rep.Fail(errors.InvalidSize(errors.PhaseHeap,
			"initial length %d outside capacity %d", cfg.Length, arr.Cap()))
	}
	swap := cfg.Swap
	if swap == nil {
		swap = SwapValues[T]
	}
	return &Heap[T]{
		arr:     arr,
		compare: cfg.Compare,
		swap:    swap,
		rep:     rep,
		length:  cfg.Length,
	}, nil
}

func parent(i int) int { return (i - 1) / 2 }
func left(i int) int   { return 2*i + 1 }
func right(i int) int  { return 2*i + 2 }

// Insert adds v and restores the order by sifting it up.
func (h *Heap[T]) Insert(v T) error {
	if h.length == h.arr.Cap() {
		return h.rep.Fail(errors.Full(errors.PhaseHeap, h.arr.Cap()))
	}
	if err := array.Store(h.arr, h.length, &v); err != nil {
		return h.rep.Report(err)
	}
	h.length++
	return h.rep.Report(h.siftUp(h.length - 1))
}

// Pop removes the root into *out.
func (h *Heap[T]) Pop(out *T) error {
	if h.length == 0 {
		return h.rep.Fail(errors.Empty(errors.PhaseHeap))
	}
	last := h.length - 1
	if err := h.swapAt(0, last); err != nil {
		return h.rep.Report(err)
	}
	if err := array.Load(h.arr, last, out); err != nil {
		return h.rep.Report(err)
	}
	if err := h.arr.RemoveAt(last); err != nil {
		return h.rep.Report(err)
	}
	h.length--
	if h.length > 0 {
		return h.rep.Report(h.siftDown(0))
	}
	return nil
}

// Peek copies the root into *out.
func (h *Heap[T]) Peek(out *T) error {
	if h.length == 0 {
		return h.rep.Fail(errors.Empty(errors.PhaseHeap))
	}
	return h.rep.Report(array.Load(h.arr, 0, out))
}

// Heapify establishes the order over the first Len() slots in place.
func (h *Heap[T]) Heapify() error {
	if h.length == 0 {
		return h.rep.Fail(errors.Empty(errors.PhaseHeap))
	}
	for i := parent(h.length); i >= 0; i-- {
		if err := h.siftDown(i); err != nil {
			return h.rep.Report(err)
		}
	}
	return nil
}

// Verify checks the order over the stored elements. It returns an
// errors.KindInvalidData error naming the first violating pair.
func (h *Heap[T]) Verify() error {
	for i := 0; i < h.length; i++ {
		for _, c := range [2]int{left(i), right(i)} {
			if c >= h.length {
				continue
			}
			ok, err := h.compareAt(i, c)
			if err != nil {
				return err
			}
			if !ok {
				return errors.New(errors.PhaseHeap, errors.KindInvalidData).
					Value(c).
					Detail("order violated between %d and child %d", i, c).
					Build()
			}
		}
	}
	return nil
}

// Len returns the number of stored elements.
func (h *Heap[T]) Len() int { return h.length }

// Cap returns the capacity.
func (h *Heap[T]) Cap() int { return h.arr.Cap() }

// IsEmpty reports whether the heap holds no elements.
func (h *Heap[T]) IsEmpty() bool { return h.length == 0 }

// IsFull reports whether Insert would fail.
func (h *Heap[T]) IsFull() bool { return h.length == h.arr.Cap() }

func (h *Heap[T]) siftUp(cur int) error {
	for cur > 0 {
		p := parent(cur)
		ok, err := h.compareAt(p, cur)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if err := h.swapAt(p, cur); err != nil {
			return err
		}
		cur = p
	}
	return nil
}

func (h *Heap[T]) siftDown(cur int) error {
	for {
		best := cur
		for _, c := range [2]int{left(cur), right(cur)} {
			if c >= h.length {
				continue
			}
			ok, err := h.compareAt(best, c)
			if err != nil {
				return err
			}
			if !ok {
				best = c
			}
		}
		if best == cur {
			return nil
		}
		if err := h.swapAt(cur, best); err != nil {
			return err
		}
		cur = best
	}
}

func (h *Heap[T]) compareAt(p, c int) (bool, error) {
	pp, err := h.arr.Ref(p)
	if err != nil {
		return false, err
	}
	cp, err := h.arr.Ref(c)
	if err != nil {
		return false, err
	}
	ok, err := h.compare(pp, cp)
	if err != nil {
		return false, errors.Wrap(errors.PhaseHeap, errors.KindGeneric, err, "compare")
	}
	return ok, nil
}

func (h *Heap[T]) swapAt(a, b int) error {
	if a == b {
		return nil
	}
	ap, err := h.arr.Ref(a)
	if err != nil {
		return err
	}
	bp, err := h.arr.Ref(b)
	if err != nil {
		return err
	}
	if err := h.swap(ap, bp); err != nil {
		return errors.Wrap(errors.PhaseHeap, errors.KindGeneric, err, "swap")
	}
	return nil
}
