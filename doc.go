// Package fixedkit provides fixed-capacity containers and a block allocator
// that never allocate after construction.
//
// Every container works on storage the caller hands it (a slice, or a window
// of WebAssembly linear memory) and fails with a structured error instead of
// growing.
//
// # Architecture Overview
//
//	fixedkit/            Root package with the shared Sized and Allocator interfaces
//	├── errors/          Structured errors and the status taxonomy
//	├── hook/            Optional failure hook and its zap adapter
//	├── capability/      Element copy/reset tables checked on every transfer
//	├── alloc/           Fixed-slot block pool with reference counts
//	├── wasmmem/         Pools placed in wazero guest memory
//	├── array/           Indexed store the other containers sit on
//	├── queue/           Circular FIFO
//	├── stack/           LIFO
//	├── heap/            Binary heap with caller-defined order
//	├── hashmap/         Linear-probing map over two arrays
//	├── table/           Binary file persistence for arrays
//	├── broker/          Topic pub/sub with bounded per-subscriber queues
//	├── app/             Cooperative task loop
//	└── layout/          YAML descriptions of pools and capacities
//
// # Quick Start
//
//	ops := capability.NewTable[int]("int")
//	buf := make([]int, 16)
//	arr, _ := array.NewFixed(ops, buf, array.Config{})
//	q, _ := queue.New[int](arr, queue.Config{Name: "jobs"})
//
//	if err := q.Enqueue(42); errors.Is(err, queue.ErrFull) {
//	    // back off
//	}
//
// # Failure Reporting
//
// Operations return an *errors.Error whose Kind maps onto a Status
// (errors.StatusOf). A hook.Func given at construction is invoked with that
// status for every failure; it observes and cannot change the outcome.
//
// # Thread Safety
//
// Containers and pools are NOT thread-safe and should be used by a single
// goroutine, or access must be synchronized. The broker locks internally and
// is safe for concurrent use.
package fixedkit
