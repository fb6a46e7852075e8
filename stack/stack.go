// Package stack implements a fixed-capacity LIFO on top of an array.Array.
package stack

import (
	"github.com/wippyai/fixedkit/array"
	"github.com/wippyai/fixedkit/errors"
	"github.com/wippyai/fixedkit/hook"
)

var (
	ErrFull  = errors.Sentinel(errors.PhaseStack, errors.KindInvalidSize)
	ErrEmpty = errors.Sentinel(errors.PhaseStack, errors.KindNotFound)
)

// Config holds the optional failure hook and a name for diagnostics.
type Config struct {
	Hook        hook.Func
	HookContext any
	Name        string
}

// Stack is a LIFO whose top is at index Len()-1. Not safe for concurrent use.
type Stack[T any] struct {
	arr    array.Array[T]
	rep    hook.Reporter
	length int
}

// New creates an empty stack over arr.
func New[T any](arr array.Array[T], cfg Config) (*Stack[T], error) {
	rep := hook.NewReporter(cfg.Hook, cfg.HookContext, cfg.Name)
	if arr == nil {
		return nil, rep.Fail(errors.NilPointer(errors.PhaseStack, "array"))
	}
	return &Stack[T]{arr: arr, rep: rep}, nil
}

// Push places v on top.
func (s *Stack[T]) Push(v T) error {
	if s.length == s.arr.Cap() {
		return s.rep.Fail(errors.Full(errors.PhaseStack, s.arr.Cap()))
	}
	if err := array.Store(s.arr, s.length, &v); err != nil {
		return s.rep.Report(err)
	}
	s.length++
	return nil
}

// Pop removes the top into *out.
func (s *Stack[T]) Pop(out *T) error {
	if s.length == 0 {
		return s.rep.Fail(errors.Empty(errors.PhaseStack))
	}
	top := s.length - 1
	if err := array.Load(s.arr, top, out); err != nil {
		return s.rep.Report(err)
	}
	if err := s.arr.RemoveAt(top); err != nil {
		return s.rep.Report(err)
	}
	s.length--
	return nil
}

// Peek copies the top into *out without removing it.
func (s *Stack[T]) Peek(out *T) error {
	if s.length == 0 {
		return s.rep.Fail(errors.Empty(errors.PhaseStack))
	}
	return s.rep.Report(array.Load(s.arr, s.length-1, out))
}

// Len returns the number of stacked elements.
func (s *Stack[T]) Len() int { return s.length }

// Cap returns the capacity.
func (s *Stack[T]) Cap() int { return s.arr.Cap() }

// IsEmpty reports whether the stack holds no elements.
func (s *Stack[T]) IsEmpty() bool { return s.length == 0 }

// IsFull reports whether Push would fail.
func (s *Stack[T]) IsFull() bool { return s.length == s.arr.Cap() }
