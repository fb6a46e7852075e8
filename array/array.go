// Package array defines the fixed-capacity indexed store the other
// containers are layered on, and Fixed, its implementation over a
// caller-owned slice.
package array

import (
	"github.com/wippyai/fixedkit/capability"
	"github.com/wippyai/fixedkit/errors"
	"github.com/wippyai/fixedkit/hook"
)

// Array is a fixed-capacity indexed store of T.
//
// SetAt, GetAt and RemoveAt verify the descriptor's operation table against
// Table() before the index, and only then copy or reset the slot.
type Array[T any] interface {
	Table() *capability.Table[T]
	Cap() int
	SetAt(index int, src capability.Descriptor[T]) error
	GetAt(index int, dst capability.Descriptor[T]) error
	RemoveAt(index int) error

	// Ref returns the slot itself for in-place comparison and swapping.
	Ref(index int) (*T, error)
}

// Config holds the optional failure hook and a name for diagnostics.
type Config struct {
	Hook        hook.Func
	HookContext any
	Name        string
}

// Fixed is an Array over a caller-owned []T.
type Fixed[T any] struct {
	table *capability.Table[T]
	buf   []T
	rep   hook.Reporter
}

var _ Array[int] = (*Fixed[int])(nil)

// NewFixed wraps buf; len(buf) is the capacity. buf stays owned by the caller.
func NewFixed[T any](table *capability.Table[T], buf []T, cfg Config) (*Fixed[T], error) {
	rep := hook.NewReporter(cfg.Hook, cfg.HookContext, cfg.Name)
	if table == nil {
		return nil, rep.Fail(errors.NilPointer(errors.PhaseArray, "operation table"))
	}
	if len(buf) == 0 {
		return nil, rep.Fail(errors.InvalidSize(errors.PhaseArray, "zero capacity"))
	}
	return &Fixed[T]{table: table, buf: buf, rep: rep}, nil
}

// Table returns the element operation table.
func (a *Fixed[T]) Table() *capability.Table[T] { return a.table }

// Cap returns the capacity.
func (a *Fixed[T]) Cap() int { return len(a.buf) }

// SetAt copies src into slot index.
func (a *Fixed[T]) SetAt(index int, src capability.Descriptor[T]) error {
	if err := a.admit(index, src.Table); err != nil {
		return err
	}
	return a.rep.Report(a.table.Copy(capability.Of(a.table, &a.buf[index]), src))
}

// GetAt copies slot index into dst.
func (a *Fixed[T]) GetAt(index int, dst capability.Descriptor[T]) error {
	if err := a.admit(index, dst.Table); err != nil {
		return err
	}
	return a.rep.Report(a.table.Copy(dst, capability.Of(a.table, &a.buf[index])))
}

// RemoveAt resets slot index.
func (a *Fixed[T]) RemoveAt(index int) error {
	if err := a.admit(index, a.table); err != nil {
		return err
	}
	return a.rep.Report(a.table.Reset(capability.Of(a.table, &a.buf[index])))
}

// Ref returns a pointer to slot index.
func (a *Fixed[T]) Ref(index int) (*T, error) {
	if index < 0 || index >= len(a.buf) {
		return nil, a.rep.Fail(errors.OutOfBounds(errors.PhaseArray, index, len(a.buf)))
	}
	return &a.buf[index], nil
}

func (a *Fixed[T]) admit(index int, table *capability.Table[T]) error {
	if table != a.table {
		return a.rep.Fail(errors.TypeMismatch(errors.PhaseArray, a.table.Name(), table.Name()))
	}
	if index < 0 || index >= len(a.buf) {
		return a.rep.Fail(errors.OutOfBounds(errors.PhaseArray, index, len(a.buf)))
	}
	return nil
}

// Store writes *v into slot index using the array's own table.
func Store[T any](a Array[T], index int, v *T) error {
	return a.SetAt(index, capability.Of(a.Table(), v))
}

// Load reads slot index into *out using the array's own table.
func Load[T any](a Array[T], index int, out *T) error {
	return a.GetAt(index, capability.Of(a.Table(), out))
}
