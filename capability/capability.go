package capability

import (
	"unsafe"

	"github.com/wippyai/fixedkit/errors"
)

// Table is the operation table for one element kind.
type Table[T any] struct {
	name  string
	size  uintptr
	align uintptr
	copy  func(dst, src *T)
	reset func(dst *T)
}

// TableOption customises a Table at construction.
type TableOption[T any] func(*Table[T])

// WithDefault makes Reset write v instead of the zero value.
func WithDefault[T any](v T) TableOption[T] {
	return func(t *Table[T]) {
		t.reset = func(dst *T) { *dst = v }
	}
}

// WithCopy overrides the bytewise copy.
func WithCopy[T any](fn func(dst, src *T)) TableOption[T] {
	return func(t *Table[T]) {
		t.copy = fn
	}
}

// WithReset overrides the zero reset.
func WithReset[T any](fn func(dst *T)) TableOption[T] {
	return func(t *Table[T]) {
		t.reset = fn
	}
}

// NewTable declares an element kind. By default Copy is a value copy of one
// element and Reset writes the zero value.
func NewTable[T any](name string, opts ...TableOption[T]) *Table[T] {
	var zero T
	t := &Table[T]{
		name:  name,
		size:  unsafe.Sizeof(zero),
		align: unsafe.Alignof(zero),
		copy:  func(dst, src *T) { *dst = *src },
		reset: func(dst *T) { var z T; *dst = z },
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name returns the declared element kind name.
func (t *Table[T]) Name() string {
	if t == nil {
		return "<nil>"
	}
	return t.name
}

// Size returns the element size in bytes.
func (t *Table[T]) Size() uintptr { return t.size }

// Align returns the element alignment in bytes.
func (t *Table[T]) Align() uintptr { return t.align }

// Of builds a descriptor for addr claimed by table t.
func Of[T any](t *Table[T], addr *T) Descriptor[T] {
	var zero T
	return Descriptor[T]{
		Table: t,
		Addr:  addr,
		Size:  unsafe.Sizeof(zero),
		Align: unsafe.Alignof(zero),
	}
}

// Descriptor references one element plus the table it claims to belong to.
type Descriptor[T any] struct {
	Table *Table[T]
	Addr  *T
	Size  uintptr
	Align uintptr
}

// check validates d against the expected table t.
func (t *Table[T]) check(d Descriptor[T], role string) error {
	if d.Addr == nil {
		return errors.NilPointer(errors.PhaseCapability, role)
	}
	if d.Table != t {
		return errors.TypeMismatch(errors.PhaseCapability, t.Name(), d.Table.Name())
	}
	if d.Size != t.size || d.Align != t.align {
		return errors.New(errors.PhaseCapability, errors.KindTypeMismatch).
			Type(t.name).
			Detail("descriptor %s is %d bytes aligned %d, table declares %d aligned %d",
				role, d.Size, d.Align, t.size, t.align).
			Build()
	}
	return nil
}

// Copy copies one element from src into dst. Both descriptors must belong
// to t; on mismatch nothing is written.
func (t *Table[T]) Copy(dst, src Descriptor[T]) error {
	if t == nil {
		return errors.NilPointer(errors.PhaseCapability, "operation table")
	}
	if err := t.check(dst, "destination"); err != nil {
		return err
	}
	if err := t.check(src, "source"); err != nil {
		return err
	}
	if dst.Addr != src.Addr {
		t.copy(dst.Addr, src.Addr)
	}
	return nil
}

// Reset overwrites the element with its zero or default value.
func (t *Table[T]) Reset(target Descriptor[T]) error {
	if t == nil {
		return errors.NilPointer(errors.PhaseCapability, "operation table")
	}
	if err := t.check(target, "target"); err != nil {
		return err
	}
	t.reset(target.Addr)
	return nil
}

// Copy is shorthand for dst.Table.Copy(dst, src).
func Copy[T any](dst, src Descriptor[T]) error {
	return dst.Table.Copy(dst, src)
}

// Reset is shorthand for target.Table.Reset(target).
func Reset[T any](target Descriptor[T]) error {
	return target.Table.Reset(target)
}
