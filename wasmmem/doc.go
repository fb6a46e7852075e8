// Package wasmmem exposes windows of WebAssembly linear memory as fixed
// backing buffers.
//
// A guest module's linear memory is exactly the kind of caller-owned, fixed
// region the containers expect. Region wraps a wazero api.Memory window so a
// pool or array can live inside guest memory and the guest can read the
// slots directly:
//
//	sa, err := wasmmem.NewStandalone(ctx, 1)
//	if err != nil {
//	    return err
//	}
//	defer sa.Close(ctx)
//
//	region, err := wasmmem.NewRegion(sa.Memory(), 4096, 1024)
//	pool, err := region.Pool(alloc.Config{SlotSize: 32})
//	h, _ := pool.Get(32)
//	guestPtr := region.GuestAddr(h)
//
// # Memory Growth
//
// wazero returns views that alias the current memory. If the guest grows its
// memory the views may go stale, so regions are meant for memories that are
// sized once (no memory.grow after the pool is built).
package wasmmem
