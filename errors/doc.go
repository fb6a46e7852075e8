// Package errors provides structured error types for the fixedkit containers.
//
// Errors are categorized by Phase (which component reported the error) and Kind
// (error category). Every Kind maps onto one Status of the library's status
// taxonomy, so callers that only care about the coarse outcome can use StatusOf:
//
//	if errors.StatusOf(err) == errors.StatusTableFull {
//		// back off, try again next cycle
//	}
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseAlloc, errors.KindInvalidSize).
//		Path("sensor-pool").
//		Value(24).
//		Detail("slot size is %d", 16).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.OutOfBounds(errors.PhaseArray, 10, 8)
//	err := errors.TypeMismatch(errors.PhaseArray, "reading", "sample")
//
// All errors implement the standard error interface and support errors.Is/As.
// Two *Error values match under errors.Is when their Phase and Kind agree,
// which is what makes package sentinels such as alloc.ErrExhausted work.
package errors
