// Package alloc implements a fixed-size block allocator over a caller-owned
// buffer.
//
// # Overview
//
// A Pool splits its buffer into equal slots. Slots are handed out in two
// ways: carving the next never-used slot at the end of the active region, or
// reusing the most recently freed slot (LIFO). Nothing is allocated after
// New returns; the free list and per-slot metadata are sized to the capacity
// up front.
//
//	buf := make([]byte, 16*32)
//	pool, err := alloc.New(buf, alloc.Config{SlotSize: 16, Name: "frames"})
//	if err != nil {
//	    return err
//	}
//
//	h, err := pool.Get(16)
//	if err != nil {
//	    return err // errors.KindAllocation when exhausted
//	}
//	b, _ := pool.Bytes(h)
//	copy(b, frame)
//
//	_ = pool.Put(h) // zero-fills the slot
//
// # Reference Counting
//
// Each live slot carries a reference count that starts at 1. GetRef adds a
// holder, PutRef drops one (saturating at zero). Put only succeeds at exactly
// one holder; otherwise it fails with errors.KindRefInUse and leaves the slot
// untouched.
//
// # Failure Reporting
//
// Every failing call returns an *errors.Error and, when Config.Hook is set,
// invokes the hook with the status and a message. The hook cannot change the
// outcome.
//
// # Thread Safety
//
// Pool instances are not thread-safe. Callers must synchronize access
// externally.
package alloc
