package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Phase indicates which component reported the error
type Phase string

const (
	PhaseCapability Phase = "capability" // element copy/reset
	PhaseAlloc      Phase = "alloc"      // block allocator
	PhaseMemory     Phase = "memory"     // guest linear memory regions
	PhaseArray      Phase = "array"      // indexed store
	PhaseQueue      Phase = "queue"      // FIFO
	PhaseStack      Phase = "stack"      // LIFO
	PhaseHeap       Phase = "heap"       // priority queue
	PhaseMap        Phase = "hashmap"    // open addressing map
	PhaseTable      Phase = "table"      // file persistence
	PhaseBroker     Phase = "broker"     // pub/sub
	PhaseApp        Phase = "app"        // task loop
	PhaseLayout     Phase = "layout"     // YAML composition
)

// Kind categorizes the error
type Kind string

const (
	KindGeneric      Kind = "error"
	KindNilPointer   Kind = "nil_pointer"
	KindAllocation   Kind = "allocation"
	KindInvalidFree  Kind = "invalid_free"
	KindTypeMismatch Kind = "type_mismatch"
	KindInvalidSize  Kind = "invalid_size"
	KindTableFull    Kind = "table_full"
	KindNotFound     Kind = "not_found"
	KindOutOfBounds  Kind = "out_of_bounds"
	KindRefInUse     Kind = "ref_in_use"
	KindInvalidRef   Kind = "invalid_ref"
	KindInvalidData  Kind = "invalid_data"
	KindTimeout      Kind = "timeout"
	KindFile         Kind = "file"
	KindRead         Kind = "read"
	KindWrite        Kind = "write"
	KindChecksum     Kind = "checksum"
)

// Error is the structured error type used throughout the library
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Type   string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Type != "" {
		b.WriteString(": element type ")
		b.WriteString(e.Type)
	}

	if e.Detail != "" {
		if e.Type != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Status returns the taxonomy status for this error's kind.
func (e *Error) Status() Status {
	return kindStatus(e.Kind)
}

// IsKind reports whether err (or anything it wraps) is an *Error of the given kind,
// regardless of phase.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the component path, usually the container name
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Type sets the element type name
func (b *Builder) Type(t string) *Builder {
	b.err.Type = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Sentinel creates a detail-free error used as an errors.Is target
func Sentinel(phase Phase, kind Kind) *Error {
	return &Error{Phase: phase, Kind: kind}
}

// NilPointer creates a nil pointer error
func NilPointer(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilPointer,
		Detail: fmt.Sprintf("nil %s", what),
	}
}

// TypeMismatch creates an operation table mismatch error
func TypeMismatch(phase Phase, expected, got string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Type:   expected,
		Detail: fmt.Sprintf("operation table %q does not match %q", got, expected),
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, index, capacity int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("index %d out of bounds (capacity %d)", index, capacity),
		Value:  index,
	}
}

// InvalidSize creates a size or capacity violation error
func InvalidSize(phase Phase, detail string, args ...any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidSize,
		Detail: fmt.Sprintf(detail, args...),
	}
}

// Full creates a capacity exhausted error for a fixed container
func Full(phase Phase, capacity int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidSize,
		Detail: fmt.Sprintf("full (capacity %d)", capacity),
		Value:  capacity,
	}
}

// Empty creates an error for reading from an empty container
func Empty(phase Phase) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: "empty",
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what string, key any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %v not found", what, key),
		Value:  key,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
