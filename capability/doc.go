// Package capability provides the operation tables that let the fixed
// containers copy and reset caller-defined element types.
//
// A Table[T] declares an element type once: its name, size, alignment and
// the Copy/Reset operations. A Descriptor[T] is a transient reference to one
// element together with the table it claims to belong to:
//
//	var readingOps = capability.NewTable[Reading]("reading")
//
//	var r Reading
//	d := capability.Of(readingOps, &r)
//	err := readingOps.Reset(d)
//
// Generics already fix the Go type. The table pointer still identifies the
// element kind, so two tables over the same Go type (for example two message
// schemas that share a struct) are distinct and mixing them is rejected with
// errors.KindTypeMismatch before any memory is touched.
//
// Descriptors never allocate or free; they do not own the element.
package capability
