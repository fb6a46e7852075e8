// Package queue implements a fixed-capacity FIFO on top of an array.Array.
//
// Logical index i lives at physical index (start+i) mod capacity, so
// Enqueue and Dequeue are O(1) and never move stored elements.
package queue

import (
	"github.com/wippyai/fixedkit/array"
	"github.com/wippyai/fixedkit/errors"
	"github.com/wippyai/fixedkit/hook"
)

var (
	ErrFull  = errors.Sentinel(errors.PhaseQueue, errors.KindInvalidSize)
	ErrEmpty = errors.Sentinel(errors.PhaseQueue, errors.KindNotFound)
)

// Config holds the optional failure hook and a name for diagnostics.
type Config struct {
	Hook        hook.Func
	HookContext any
	Name        string
}

// Queue is a circular FIFO. Not safe for concurrent use.
type Queue[T any] struct {
	arr    array.Array[T]
	rep    hook.Reporter
	start  int
	length int
}

// New creates an empty queue over arr.
func New[T any](arr array.Array[T], cfg Config) (*Queue[T], error) {
	rep := hook.NewReporter(cfg.Hook, cfg.HookContext, cfg.Name)
	if arr == nil {
		return nil, rep.Fail(errors.NilPointer(errors.PhaseQueue, "array"))
	}
	return &Queue[T]{arr: arr, rep: rep}, nil
}

// Enqueue appends v at the tail.
func (q *Queue[T]) Enqueue(v T) error {
	capacity := q.arr.Cap()
	if q.length == capacity {
		return q.rep.Fail(errors.Full(errors.PhaseQueue, capacity))
	}
	if err := array.Store(q.arr, (q.start+q.length)%capacity, &v); err != nil {
		return q.rep.Report(err)
	}
	q.length++
	return nil
}

// Dequeue removes the head into *out.
func (q *Queue[T]) Dequeue(out *T) error {
	if q.length == 0 {
		return q.rep.Fail(errors.Empty(errors.PhaseQueue))
	}
	if err := array.Load(q.arr, q.start, out); err != nil {
		return q.rep.Report(err)
	}
	if err := q.arr.RemoveAt(q.start); err != nil {
		return q.rep.Report(err)
	}
	q.start = (q.start + 1) % q.arr.Cap()
	q.length--
	return nil
}

// Peek copies the head into *out without removing it.
func (q *Queue[T]) Peek(out *T) error {
	if q.length == 0 {
		return q.rep.Fail(errors.Empty(errors.PhaseQueue))
	}
	return q.rep.Report(array.Load(q.arr, q.start, out))
}

// Clear resets every stored slot and empties the queue.
func (q *Queue[T]) Clear() error {
	capacity := q.arr.Cap()
	for i := 0; i < q.length; i++ {
		if err := q.arr.RemoveAt((q.start + i) % capacity); err != nil {
			return q.rep.Report(err)
		}
	}
	q.start, q.length = 0, 0
	return nil
}

// Len returns the number of queued elements.
func (q *Queue[T]) Len() int { return q.length }

// Cap returns the capacity.
func (q *Queue[T]) Cap() int { return q.arr.Cap() }

// IsEmpty reports whether the queue holds no elements.
func (q *Queue[T]) IsEmpty() bool { return q.length == 0 }

// IsFull reports whether Enqueue would fail.
func (q *Queue[T]) IsFull() bool { return q.length == q.arr.Cap() }
